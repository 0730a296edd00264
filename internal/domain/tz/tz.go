// Package tz projects stored UTC instants into wall-clock representations
// and back. Conversions are read-only: the stored instant is never mutated.
package tz

import "time"

// abbrevZones maps common timezone abbreviations to IANA identifiers.
// Abbreviations are ambiguous by nature (IST collides between India and
// Ireland), so this is best-effort: unknown names fall back to the system
// zone and the caller is told about it.
var abbrevZones = map[string]string{
	"EST":  "America/New_York",
	"EDT":  "America/New_York",
	"CST":  "America/Chicago",
	"CDT":  "America/Chicago",
	"MST":  "America/Denver",
	"MDT":  "America/Denver",
	"PST":  "America/Los_Angeles",
	"PDT":  "America/Los_Angeles",
	"GMT":  "Europe/London",
	"BST":  "Europe/London",
	"CET":  "Europe/Paris",
	"CEST": "Europe/Paris",
	"IST":  "Asia/Kolkata",
	"JST":  "Asia/Tokyo",
	"AEST": "Australia/Sydney",
	"AEDT": "Australia/Sydney",
}

// Resolve turns a zone name into a *time.Location. It accepts IANA
// identifiers first, then the abbreviation table. The second return value
// reports whether the name actually resolved; on a miss the system-local
// zone is returned so callers degrade instead of failing, but they should
// log the miss.
func Resolve(name string) (*time.Location, bool) {
	if name == "" {
		return time.Local, false
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc, true
	}
	if iana, ok := abbrevZones[name]; ok {
		if loc, err := time.LoadLocation(iana); err == nil {
			return loc, true
		}
	}
	return time.Local, false
}

// ToLocal projects a UTC instant into the wall clock of zone.
// Round-trips with ToUTC for the same zone, except for the one ambiguous
// wall-clock hour at a fall-back DST transition, where the runtime picks
// one of the two valid offsets.
func ToLocal(utc time.Time, zone string) time.Time {
	loc, _ := Resolve(zone)
	return utc.In(loc)
}

// ToUTC reinterprets the wall-clock fields of local as a time in zone and
// returns the corresponding instant in UTC.
func ToUTC(local time.Time, zone string) time.Time {
	loc, _ := Resolve(zone)
	t := time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), loc)
	return t.UTC()
}

// Format renders the instant in zone using a stdlib reference layout.
func Format(t time.Time, zone, layout string) string {
	loc, _ := Resolve(zone)
	return t.In(loc).Format(layout)
}
