package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	now := time.Date(2026, 8, 29, 14, 0, 0, 0, loc)

	tests := []struct {
		name string
		ts   time.Time
		want string
	}{
		{"two hours ago, same day", now.Add(-2 * time.Hour), "12:00"},
		{"25 hours ago, crosses one day boundary", now.Add(-25 * time.Hour), "Yesterday 13:00"},
		{"late yesterday evening", time.Date(2026, 8, 28, 23, 50, 0, 0, loc), "Yesterday 23:50"},
		{"ten days ago", now.AddDate(0, 0, -10), "19 Aug, 14:00"},
		{"just now", now, "14:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FormatTimestamp(now, tt.ts.UnixMilli()))
		})
	}
}

func TestFormatTimestamp_ComparesInViewerTimezone(t *testing.T) {
	// 2026-08-29 01:00 in UTC+2 is still 2026-08-28 23:00 in UTC. The label
	// must follow the viewer's calendar, not the wire timezone.
	loc := time.FixedZone("UTC+2", 2*3600)
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, loc)
	ts := time.Date(2026, 8, 28, 23, 0, 0, 0, time.UTC)

	require.Equal(t, "01:00", FormatTimestamp(now, ts.UnixMilli()))
}
