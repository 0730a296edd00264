package tz

import (
	"testing"
	"time"
)

func TestResolve_IANA(t *testing.T) {
	loc, ok := Resolve("America/New_York")
	if !ok {
		t.Fatal("expected IANA zone to resolve")
	}
	if loc.String() != "America/New_York" {
		t.Fatalf("got %s", loc)
	}
}

func TestResolve_Abbreviations(t *testing.T) {
	cases := map[string]string{
		"EST":  "America/New_York",
		"PDT":  "America/Los_Angeles",
		"IST":  "Asia/Kolkata",
		"JST":  "Asia/Tokyo",
		"AEDT": "Australia/Sydney",
		"CEST": "Europe/Paris",
	}
	for abbr, want := range cases {
		loc, ok := Resolve(abbr)
		if !ok {
			t.Errorf("%s: expected resolution", abbr)
			continue
		}
		if loc.String() != want {
			t.Errorf("%s: want %s, got %s", abbr, want, loc)
		}
	}
}

func TestResolve_UnknownFallsBack(t *testing.T) {
	loc, ok := Resolve("XQZT")
	if ok {
		t.Fatal("garbage zone must report resolution failure")
	}
	if loc != time.Local {
		t.Fatalf("fallback must be system zone, got %s", loc)
	}
}

func TestRoundTrip(t *testing.T) {
	zones := []string{"America/New_York", "Europe/London", "Asia/Tokyo", "Australia/Sydney", "UTC"}
	instants := []time.Time{
		time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC),
		time.Date(2026, time.June, 30, 23, 59, 59, 0, time.UTC),
		time.Date(2026, time.March, 8, 6, 30, 0, 0, time.UTC), // US spring-forward day
	}
	for _, z := range zones {
		for _, utcT := range instants {
			local := ToLocal(utcT, z)
			back := ToUTC(local, z)
			if !back.Equal(utcT) {
				t.Errorf("%s @ %s: round trip gave %s", z, utcT, back)
			}
		}
	}
}

func TestToLocal_DoesNotMutateInstant(t *testing.T) {
	utcT := time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)
	local := ToLocal(utcT, "Asia/Tokyo")
	if !local.Equal(utcT) {
		t.Fatal("projection must preserve the instant")
	}
	if local.Hour() != 18 {
		t.Fatalf("Tokyo wall clock: want 18h, got %dh", local.Hour())
	}
}

func TestFormat(t *testing.T) {
	utcT := time.Date(2026, time.July, 4, 16, 30, 0, 0, time.UTC)
	got := Format(utcT, "America/New_York", "2006-01-02 15:04")
	if got != "2026-07-04 12:30" {
		t.Fatalf("got %q", got)
	}
}
