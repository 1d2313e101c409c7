// Package timeofday converts between float hours (9.5 == 09:30) and the
// clock strings used by the booking API and doctor records.
package timeofday

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	ClockSeparator  = ":"
	RecordSeparator = "."
)

var ErrInvalidTime = errors.New("invalid time of day")

// ToTimeString formats a float hour as HH:MM.
func ToTimeString(hour float64) string {
	totalMinutes := int(math.Round(hour * 60))
	if totalMinutes < 0 {
		totalMinutes = 0
	}
	return fmt.Sprintf("%02d:%02d", totalMinutes/60, totalMinutes%60)
}

// ToFloat parses "H<sep>MM" into hour + minute/60. A value without the
// separator is read as a whole hour.
func ToFloat(s string, sep string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidTime)
	}
	if sep == "" {
		sep = ClockSeparator
	}

	hourPart, minutePart, hasMinutes := strings.Cut(s, sep)
	h, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	m := 0
	if hasMinutes {
		if m, err = strconv.Atoi(minutePart); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m > 0) {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidTime, s)
	}
	return float64(h*60+m) / 60, nil
}

// ToClockFloat parses an "HH:MM" clock string.
func ToClockFloat(s string) (float64, error) {
	return ToFloat(s, ClockSeparator)
}

// Normalize accepts either separator, picking ":" when present.
func Normalize(s string) (float64, error) {
	if strings.Contains(s, ClockSeparator) {
		return ToFloat(s, ClockSeparator)
	}
	return ToFloat(s, RecordSeparator)
}

// CurrentHour returns t's time of day at minute precision.
func CurrentHour(t time.Time) float64 {
	return float64(t.Hour()*60+t.Minute()) / 60
}

// At returns the instant on date's calendar day at the given float hour.
func At(date time.Time, hour float64) time.Time {
	y, mo, d := date.Date()
	minutes := int(math.Round(hour * 60))
	return time.Date(y, mo, d, 0, minutes, 0, 0, date.Location())
}
