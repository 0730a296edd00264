package countdown

import (
	"errors"
	"testing"
	"time"
)

var base = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestCompute_HierarchicalDecomposition(t *testing.T) {
	// 90061000 ms = 1 day, 1 hour, 1 minute, 1 second.
	target := base.Add(90061000 * time.Millisecond)
	r := Compute(target, base)
	if r.Days != 1 || r.Hours != 1 || r.Minutes != 1 || r.Seconds != 1 {
		t.Fatalf("got %dd %dh %dm %ds", r.Days, r.Hours, r.Minutes, r.Seconds)
	}
	if r.Expired {
		t.Fatal("not expired")
	}
}

func TestCompute_ExpiredAtExactTarget(t *testing.T) {
	r := Compute(base, base)
	if !r.Expired {
		t.Fatal("now == target must be expired")
	}
	if r.Days != 0 || r.Hours != 0 || r.Minutes != 0 || r.Seconds != 0 {
		t.Fatal("expired state must zero all numeric fields")
	}
	if r.Urgency != UrgencyCritical {
		t.Fatalf("expired urgency: got %s", r.Urgency)
	}
}

func TestCompute_UrgencyBoundaries(t *testing.T) {
	cases := []struct {
		name string
		left time.Duration
		want Urgency
	}{
		{"just under 3h is critical", 3*time.Hour - time.Second, UrgencyCritical},
		{"exactly 3h is urgent", 3 * time.Hour, UrgencyUrgent},
		{"23h is urgent", 23 * time.Hour, UrgencyUrgent},
		{"1 day is warning", 25 * time.Hour, UrgencyWarning},
		{"3 days is warning", 3*24*time.Hour + time.Hour, UrgencyWarning},
		{"4 days is safe", 4*24*time.Hour + time.Hour, UrgencySafe},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Compute(base.Add(tc.left), base)
			if r.Urgency != tc.want {
				t.Fatalf("want %s, got %s", tc.want, r.Urgency)
			}
		})
	}
}

func TestCompute_DisplayText(t *testing.T) {
	cases := []struct {
		left time.Duration
		want string
	}{
		{45 * 24 * time.Hour, "45 days"},
		{2*24*time.Hour + 5*time.Hour, "2d 5h"},
		{3*time.Hour + 10*time.Minute, "3h 10m"},
		{5*time.Minute + 30*time.Second, "5m 30s"},
	}
	for _, tc := range cases {
		r := Compute(base.Add(tc.left), base)
		if r.Display != tc.want {
			t.Errorf("%v: want %q, got %q", tc.left, tc.want, r.Display)
		}
	}
}

func TestCompute_Monotonic(t *testing.T) {
	target := base.Add(5 * 24 * time.Hour)
	prev := Compute(target, base)
	for now := base.Add(time.Hour); now.Before(target.Add(time.Hour)); now = now.Add(37 * time.Minute) {
		cur := Compute(target, now)
		if !cur.Urgency.AtLeast(prev.Urgency) {
			t.Fatalf("urgency regressed at %s: %s after %s", now, cur.Urgency, prev.Urgency)
		}
		remPrev := time.Duration(prev.Days)*24*time.Hour + time.Duration(prev.Hours)*time.Hour +
			time.Duration(prev.Minutes)*time.Minute + time.Duration(prev.Seconds)*time.Second
		remCur := time.Duration(cur.Days)*24*time.Hour + time.Duration(cur.Hours)*time.Hour +
			time.Duration(cur.Minutes)*time.Minute + time.Duration(cur.Seconds)*time.Second
		if remCur > remPrev {
			t.Fatalf("remaining time increased at %s", now)
		}
		prev = cur
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse("2026-09-01T12:00:00Z"); err != nil {
		t.Fatalf("rfc3339: %v", err)
	}
	got, err := Parse("2026-09-01")
	if err != nil {
		t.Fatalf("date-only: %v", err)
	}
	if got.Hour() != 0 || !got.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date-only parsed to %s", got)
	}

	if _, err := Parse("not-a-date"); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("want ErrInvalidTarget, got %v", err)
	}
	if _, err := Parse(""); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("empty input must fail, got %v", err)
	}
}
