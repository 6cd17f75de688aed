// ABOUTME: Streak engine deciding the next streak count for a check-in
// ABOUTME: Pure function of today, the last check-in day and the current count

package streak

// Outcome classifies what a check-in did to a streak.
type Outcome int

const (
	// Repeated means the habit was already checked in today.
	Repeated Outcome = iota
	// Extended means the check-in continued yesterday's streak.
	Extended
	// Restarted means the streak was broken and starts again at 1.
	Restarted
)

// String returns the outcome name used in logs.
func (o Outcome) String() string {
	switch o {
	case Repeated:
		return "repeated"
	case Extended:
		return "extended"
	case Restarted:
		return "restarted"
	default:
		return "unknown"
	}
}

// Next returns the streak count after checking in on today, given the day
// of the last check-in and the count stored with it.
//
// A today earlier than lastUpdated (clock skew, backdated rows) is treated
// like any other broken streak and yields 1.
func Next(today, lastUpdated Date, current int) int {
	n, _ := Evaluate(today, lastUpdated, current)
	return n
}

// Evaluate is Next plus the Outcome that produced the count.
func Evaluate(today, lastUpdated Date, current int) (int, Outcome) {
	switch today.DaysSince(lastUpdated) {
	case 0:
		return current, Repeated
	case 1:
		return current + 1, Extended
	default:
		return 1, Restarted
	}
}
