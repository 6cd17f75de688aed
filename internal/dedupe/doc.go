// Package dedupe remembers recently seen event IDs so that a transport can
// drop events its upstream delivers more than once.
package dedupe
