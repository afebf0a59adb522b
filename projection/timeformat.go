package projection

import (
	"fmt"
	"time"
)

// FormatTimestamp maps an epoch-millisecond timestamp to a display label
// relative to now. Same local calendar day gives "HH:mm", the previous day
// "Yesterday HH:mm", anything older "DD Mon, HH:mm". Both values are
// compared in now's timezone.
func FormatTimestamp(now time.Time, timestampMs int64) string {
	ts := time.UnixMilli(timestampMs).In(now.Location())
	switch {
	case sameDay(now, ts):
		return ts.Format("15:04")
	case sameDay(now.AddDate(0, 0, -1), ts):
		return fmt.Sprintf("Yesterday %s", ts.Format("15:04"))
	default:
		return ts.Format("02 Jan, 15:04")
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
