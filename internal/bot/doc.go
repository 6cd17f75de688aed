// Package bot is the conversational layer of habit-streaks.
//
// A transport (Matrix, console) feeds inbound chat traffic into a Handler
// and gives it a Messenger for replies. The Handler understands three kinds
// of input:
//
//   - commands such as "!update" or "!streak reading"
//   - free text, which names a habit to start tracking
//   - menu selections, carried as action codes like "UPDATE_reading"
//
// Action codes are decoded exactly once, in ParseAction, into the Action
// variants UpdateCheckIn, ViewDetail and ResetHabit.
//
// Platforms without native buttons call HandleText for everything; the
// Handler remembers the last menu it sent to each owner and maps a numeric
// reply onto the matching option.
//
// No error is fatal here: every failure becomes a reply to the owner.
package bot
