// Package countdown computes remaining-time breakdowns and urgency
// classification for deadlines. All functions are pure: same inputs,
// same outputs, no side effects.
package countdown

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTarget is returned when a raw deadline string does not parse
// into a valid instant. Unparseable input must surface as an error, never
// silently coerce to the zero time.
var ErrInvalidTarget = errors.New("invalid deadline instant")

type Urgency string

const (
	UrgencySafe     Urgency = "safe"
	UrgencyWarning  Urgency = "warning"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyCritical Urgency = "critical"
)

// rank orders urgency levels for comparison; higher is more urgent.
func (u Urgency) rank() int {
	switch u {
	case UrgencySafe:
		return 0
	case UrgencyWarning:
		return 1
	case UrgencyUrgent:
		return 2
	case UrgencyCritical:
		return 3
	}
	return -1
}

// AtLeast reports whether u is at least as urgent as other.
func (u Urgency) AtLeast(other Urgency) bool { return u.rank() >= other.rank() }

// Result is the ephemeral projection of (target, now). It is recomputed on
// every poll tick and never persisted.
type Result struct {
	Days    int     `json:"days"`
	Hours   int     `json:"hours"`
	Minutes int     `json:"minutes"`
	Seconds int     `json:"seconds"`
	Expired bool    `json:"is_expired"`
	Urgency Urgency `json:"urgency_level"`
	Display string  `json:"display_text"`
}

// Compute breaks the remaining duration into whole days, then residual
// hours, minutes and seconds. The decomposition is hierarchical, not a set
// of independent floor divisions against the total, so the fields never
// double-count. Expired deadlines collapse to the all-zero critical state.
func Compute(target, now time.Time) Result {
	diff := target.Sub(now)
	if diff <= 0 {
		return Result{
			Expired: true,
			Urgency: UrgencyCritical,
			Display: "Expired",
		}
	}

	days := int(diff / (24 * time.Hour))
	diff -= time.Duration(days) * 24 * time.Hour
	hours := int(diff / time.Hour)
	diff -= time.Duration(hours) * time.Hour
	minutes := int(diff / time.Minute)
	diff -= time.Duration(minutes) * time.Minute
	seconds := int(diff / time.Second)

	r := Result{
		Days:    days,
		Hours:   hours,
		Minutes: minutes,
		Seconds: seconds,
	}
	r.Urgency = classify(days, hours)
	r.Display = display(r)
	return r
}

// classify picks the urgency level; first match wins.
func classify(days, hours int) Urgency {
	switch {
	case days == 0 && hours < 3:
		return UrgencyCritical
	case days == 0:
		return UrgencyUrgent
	case days <= 3:
		return UrgencyWarning
	default:
		return UrgencySafe
	}
}

func display(r Result) string {
	switch {
	case r.Days > 30:
		return fmt.Sprintf("%d days", r.Days)
	case r.Days > 0:
		return fmt.Sprintf("%dd %dh", r.Days, r.Hours)
	case r.Hours > 0:
		return fmt.Sprintf("%dh %dm", r.Hours, r.Minutes)
	default:
		return fmt.Sprintf("%dm %ds", r.Minutes, r.Seconds)
	}
}

// Parse reads a deadline instant from its wire form: RFC 3339 first, then a
// bare date (interpreted as midnight UTC). Anything else is ErrInvalidTarget.
func Parse(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTarget, raw)
}
