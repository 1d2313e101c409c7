package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Weekday follows time.Weekday numbering: 0=Sunday..6=Saturday.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayAbbrev = [...]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.Weekday())
}

func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayAbbrev[d]
}

// ParseWeekday accepts "SUN", "Sunday" or "0" in any letter case.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.TrimSpace(s)
	if len(s) == 1 && s[0] >= '0' && s[0] <= '6' {
		return Weekday(s[0] - '0'), nil
	}
	upper := strings.ToUpper(s)
	for i, abbrev := range weekdayAbbrev {
		if upper == abbrev || upper == strings.ToUpper(time.Weekday(i).String()) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

func (d Weekday) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid weekday %d", int(d))
	}
	return json.Marshal(d.String())
}

func (d *Weekday) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if !Weekday(n).Valid() {
			return fmt.Errorf("invalid weekday %d", n)
		}
		*d = Weekday(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("weekday must be a string or number: %w", err)
	}
	parsed, err := ParseWeekday(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
