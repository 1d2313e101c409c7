// Package presentation derives immutable view models from API entities.
package presentation

import (
	"sort"
	"strings"

	"docbook/pkg/model"
	"docbook/pkg/sanitizer"
	"docbook/pkg/timeofday"
)

const noDescription = "No Description"

type HourLabel struct {
	Day   model.Weekday
	Label string
}

// DoctorProfile is a doctor prepared for display. Build it with
// NewDoctorProfile; the doctor it wraps is a copy.
type DoctorProfile struct {
	Doctor      model.Doctor
	FullAddress string
	Description string
	Hours       []HourLabel
}

func NewDoctorProfile(d model.Doctor) DoctorProfile {
	hours := make([]model.OpeningHour, len(d.OpeningHours))
	copy(hours, d.OpeningHours)
	sort.SliceStable(hours, func(i, j int) bool { return hours[i].Day < hours[j].Day })
	d.OpeningHours = hours

	labels := make([]HourLabel, 0, len(hours))
	for _, h := range hours {
		label := "Closed"
		if !h.IsClosed {
			label = timeofday.ToTimeString(h.Start.Hours()) + " - " + timeofday.ToTimeString(h.End.Hours())
		}
		labels = append(labels, HourLabel{Day: h.Day, Label: label})
	}

	description := strings.TrimSpace(d.Description)
	if description == "" {
		description = noDescription
	}

	return DoctorProfile{
		Doctor:      d,
		FullAddress: FullAddress(d.Address),
		Description: description,
		Hours:       labels,
	}
}

func NewDoctorProfiles(doctors []model.Doctor) []DoctorProfile {
	profiles := make([]DoctorProfile, 0, len(doctors))
	for _, d := range doctors {
		profiles = append(profiles, NewDoctorProfile(d))
	}
	return profiles
}

func FullAddress(a model.Address) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Line1, a.Line2, a.District} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// FilterDoctors keeps profiles whose name, description or address contain
// query, ignoring case.
func FilterDoctors(profiles []DoctorProfile, query string) []DoctorProfile {
	q := sanitizer.NormalizeKey(query)
	if q == "" {
		return append([]DoctorProfile(nil), profiles...)
	}

	matched := []DoctorProfile{}
	for _, p := range profiles {
		if strings.Contains(sanitizer.NormalizeKey(p.Doctor.Name), q) ||
			strings.Contains(sanitizer.NormalizeKey(p.Doctor.Description), q) ||
			strings.Contains(sanitizer.NormalizeKey(p.FullAddress), q) {
			matched = append(matched, p)
		}
	}
	return matched
}
