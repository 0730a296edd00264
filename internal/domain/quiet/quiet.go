// Package quiet decides whether notification dispatch is currently
// suppressed by a user's quiet-hours window and, if so, when the next
// dispatch is allowed.
package quiet

import (
	"fmt"
	"time"

	"github.com/kseslo/deadliner/internal/domain/tz"
)

// Window is a recurring daily suppression window in the user's zone.
// Start and End are "HH:MM" wall-clock times. A window whose start is
// later than its end spans midnight (e.g. 22:00–06:00).
type Window struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Zone    string `json:"timezone"`
}

// ParseMinutes converts "HH:MM" to minutes since midnight, strictly.
func ParseMinutes(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, fmt.Errorf("parse %q as HH:MM: %w", hhmm, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// contains reports membership of a minute-of-day in [start, end).
// Wrap-around windows (start > end) cover [start..1440) U [0..end).
// start == end is a zero-length window and never matches.
func contains(m, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return m >= start && m < end
	}
	return m >= start || m < end
}

// IsQuietNow reports whether now falls inside the window. A disabled or
// malformed window never suppresses.
func (w Window) IsQuietNow(now time.Time) bool {
	if !w.Enabled {
		return false
	}
	start, err := ParseMinutes(w.Start)
	if err != nil {
		return false
	}
	end, err := ParseMinutes(w.End)
	if err != nil {
		return false
	}
	local := tz.ToLocal(now, w.Zone)
	return contains(local.Hour()*60+local.Minute(), start, end)
}

// NextAvailable returns now unchanged when dispatch is allowed, otherwise
// the next occurrence of the window's end time in the window zone,
// converted back to UTC. End rolls to the following day when it has
// already passed today. The result is always after now, even when the end
// wall time falls inside a DST gap.
func (w Window) NextAvailable(now time.Time) time.Time {
	if !w.IsQuietNow(now) {
		return now
	}
	end, err := ParseMinutes(w.End)
	if err != nil {
		return now
	}

	local := tz.ToLocal(now, w.Zone)
	cur := local.Hour()*60 + local.Minute()

	endToday := time.Date(local.Year(), local.Month(), local.Day(),
		end/60, end%60, 0, 0, local.Location())
	if cur >= end {
		endToday = endToday.AddDate(0, 0, 1)
	}
	if endToday.After(local) {
		return endToday.UTC()
	}

	// The end wall time does not exist today (DST spring-forward skips it)
	// and time.Date normalized it to a past instant. The window exits at
	// the forward jump; walk to the first allowed minute after now.
	t := now.Truncate(time.Minute)
	for limit := t.Add(48 * time.Hour); t.Before(limit); {
		t = t.Add(time.Minute)
		if !w.IsQuietNow(t) {
			break
		}
	}
	return t.UTC()
}
