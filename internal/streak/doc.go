// Package streak computes day-based habit streaks.
//
// Everything here works on calendar dates (Date), never on instants, so the
// time of day at which a check-in arrives has no effect on the result. The
// caller decides what "today" is, usually through a Clock bound to the
// configured time zone.
//
// # Policy
//
//   - Same day as the last check-in: the streak is unchanged.
//   - Exactly one day later: the streak grows by one.
//   - Anything else, including a "today" earlier than the last check-in:
//     the streak restarts at 1.
package streak
