package presentation

import (
	"testing"
	"time"

	"docbook/pkg/model"
)

func sampleDoctors() []model.Doctor {
	return []model.Doctor{
		{
			ID:          "d1",
			Name:        "Dr. Alice Chan",
			Description: "Family medicine",
			Address:     model.Address{Line1: "1 Queen's Road", Line2: "Central", District: "Central and Western"},
			OpeningHours: []model.OpeningHour{
				{Day: model.Tuesday, Start: 9, End: 17},
				{Day: model.Sunday, IsClosed: true},
				{Day: model.Monday, Start: 9.5, End: 13},
			},
		},
		{
			ID:      "d2",
			Name:    "Dr. Bob Lee",
			Address: model.Address{Line1: "8 Nathan Road", District: "Yau Tsim Mong"},
		},
	}
}

func TestNewDoctorProfile(t *testing.T) {
	p := NewDoctorProfile(sampleDoctors()[0])

	if p.FullAddress != "1 Queen's Road, Central, Central and Western" {
		t.Errorf("FullAddress = %q", p.FullAddress)
	}
	if p.Description != "Family medicine" {
		t.Errorf("Description = %q", p.Description)
	}

	expected := []HourLabel{
		{Day: model.Sunday, Label: "Closed"},
		{Day: model.Monday, Label: "09:30 - 13:00"},
		{Day: model.Tuesday, Label: "09:00 - 17:00"},
	}
	if len(p.Hours) != len(expected) {
		t.Fatalf("Hours = %v, want %v", p.Hours, expected)
	}
	for i := range expected {
		if p.Hours[i] != expected[i] {
			t.Errorf("Hours[%d] = %+v, want %+v", i, p.Hours[i], expected[i])
		}
	}
}

func TestNewDoctorProfile_DoesNotAliasInput(t *testing.T) {
	doctors := sampleDoctors()
	p := NewDoctorProfile(doctors[0])
	doctors[0].OpeningHours[0].Start = 1

	if p.Doctor.OpeningHours[2].Start != 9 {
		t.Error("profile opening hours changed with the source doctor")
	}
}

func TestNewDoctorProfile_MissingParts(t *testing.T) {
	p := NewDoctorProfile(sampleDoctors()[1])
	if p.FullAddress != "8 Nathan Road, Yau Tsim Mong" {
		t.Errorf("FullAddress = %q", p.FullAddress)
	}
	if p.Description != "No Description" {
		t.Errorf("Description = %q", p.Description)
	}
}

func TestFilterDoctors(t *testing.T) {
	profiles := NewDoctorProfiles(sampleDoctors())

	tests := []struct {
		query    string
		expected []string
	}{
		{"", []string{"d1", "d2"}},
		{"alice", []string{"d1"}},
		{"FAMILY", []string{"d1"}},
		{"nathan", []string{"d2"}},
		{"dr.", []string{"d1", "d2"}},
		{"dentist", []string{}},
	}

	for _, tt := range tests {
		got := FilterDoctors(profiles, tt.query)
		if len(got) != len(tt.expected) {
			t.Errorf("FilterDoctors(%q) returned %d results, want %d", tt.query, len(got), len(tt.expected))
			continue
		}
		for i, id := range tt.expected {
			if got[i].Doctor.ID != id {
				t.Errorf("FilterDoctors(%q)[%d] = %s, want %s", tt.query, i, got[i].Doctor.ID, id)
			}
		}
	}
}

func TestDisplayStatus(t *testing.T) {
	now := time.Date(2026, time.October, 14, 11, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		booking  model.Booking
		expected model.Status
	}{
		{"future confirmed", model.Booking{Date: "2026-10-14", Start: 12, Status: model.StatusConfirmed}, model.StatusConfirmed},
		{"elapsed confirmed", model.Booking{Date: "2026-10-14", Start: 11, Status: model.StatusConfirmed}, model.StatusFinished},
		{"previous day", model.Booking{Date: "2026-10-13", Start: 16, Status: model.StatusConfirmed}, model.StatusFinished},
		{"elapsed cancelled", model.Booking{Date: "2026-10-13", Start: 9, Status: model.StatusCancelled}, model.StatusCancelled},
		{"future cancelled", model.Booking{Date: "2026-10-20", Start: 9, Status: model.StatusCancelled}, model.StatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayStatus(tt.booking, now); got != tt.expected {
				t.Errorf("DisplayStatus() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNewBookingView(t *testing.T) {
	now := time.Date(2026, time.October, 14, 8, 0, 0, 0, time.UTC)
	profile := NewDoctorProfile(sampleDoctors()[0])
	b := model.Booking{ID: "b1", Name: "Alice", DoctorID: "d1", Date: "2026-10-14", Start: 9.5, Status: model.StatusConfirmed}

	view := NewBookingView(b, &profile, now)

	if view.Start != "09:30" || view.End != "10:30" {
		t.Errorf("times = %s-%s", view.Start, view.End)
	}
	if !view.Cancellable || view.Status != model.StatusConfirmed {
		t.Errorf("expected a cancellable confirmed view, got %+v", view)
	}
	if view.DoctorName != "Dr. Alice Chan" {
		t.Errorf("DoctorName = %q", view.DoctorName)
	}
	if b.Status != model.StatusConfirmed {
		t.Error("source booking was mutated")
	}

	finished := NewBookingView(b, nil, now.Add(5*time.Hour))
	if finished.Cancellable || finished.Status != model.StatusFinished {
		t.Errorf("expected finished view, got %+v", finished)
	}
}
