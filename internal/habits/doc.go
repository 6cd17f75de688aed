// Package habits implements the habit operations behind the chat flows:
// starting a habit, checking in, viewing, resetting, listing and history.
//
// Service is the only writer of habit records. It asks its Clock for
// "today" once per operation and passes that date to the streak engine, so
// every operation is deterministic under a fixed clock.
//
// Errors returned by Service fall into a small taxonomy that the chat layer
// turns into replies:
//
//   - ErrNotFound: the owner has no habit with that name
//   - *StorageError: the underlying store failed
//   - ErrEmptyName, ErrNameTooLong: the requested name is unusable
//   - ErrBeforeStart: today precedes the habit's start date
//
// Starting a habit that already exists is not an error; StartResult.Created
// is false instead.
package habits
