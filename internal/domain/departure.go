package domain

import (
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	// TimeLayout is how departure times are stored, e.g. "10:00 AM".
	TimeLayout = "03:04 PM"
)

var timeLayouts = []string{TimeLayout, "3:04 PM", "15:04"}

// ParseDeparture combines a departure date and time in loc.
// An unparseable date or time is a ValidationError; there is no date-only
// fallback.
func ParseDeparture(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, ValidationError{Field: "departureDate", Reason: "expected YYYY-MM-DD"}
	}

	tod, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(d.Year(), d.Month(), d.Day(), tod.Hour(), tod.Minute(), 0, 0, loc), nil
}

// NormalizeTime returns clock in TimeLayout.
func NormalizeTime(clock string) (string, error) {
	tod, err := parseClock(clock)
	if err != nil {
		return "", err
	}
	return tod.Format(TimeLayout), nil
}

func parseClock(clock string) (time.Time, error) {
	s := strings.ToUpper(strings.TrimSpace(clock))
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ValidationError{Field: "departureTime", Reason: "expected hh:mm AM/PM or HH:MM"}
}

// IsExpired reports whether the departure instant is at or before now.
// The date and time are interpreted in now's location.
func IsExpired(date, clock string, now time.Time) (bool, error) {
	dep, err := ParseDeparture(date, clock, now.Location())
	if err != nil {
		return false, err
	}
	return !dep.After(now), nil
}

// Remaining is the countdown until departure.
type Remaining struct {
	Days    int  `json:"days"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Expired bool `json:"expired"`
}

func RemainingUntil(departure, now time.Time) Remaining {
	d := departure.Sub(now)
	if d <= 0 {
		return Remaining{Expired: true}
	}

	total := int(d / time.Second)
	return Remaining{
		Days:    total / 86400,
		Hours:   total % 86400 / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}
