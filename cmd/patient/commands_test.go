package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"docbook/internal/portal"
	"docbook/internal/store"
	"docbook/pkg/client"
	apperrors "docbook/pkg/errors"
	"docbook/pkg/logger"
	"docbook/pkg/model"

	"github.com/urfave/cli/v2"
)

// Wednesday morning.
var testNow = time.Date(2026, time.October, 14, 10, 20, 0, 0, time.UTC)

type fakeDoctors struct {
	doctors []model.Doctor
	err     error
}

func (f *fakeDoctors) GetAll(ctx context.Context) ([]model.Doctor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doctors, nil
}

func (f *fakeDoctors) GetByID(ctx context.Context, id string) (*model.Doctor, error) {
	for _, d := range f.doctors {
		if d.ID == id {
			doctor := d
			return &doctor, nil
		}
	}
	return nil, apperrors.FetchFailure("doctor", 404, nil)
}

type fakeBookings struct {
	mu       sync.Mutex
	bookings []model.Booking
}

func (f *fakeBookings) GetAll(ctx context.Context, filter client.BookingFilter) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Booking{}
	for _, b := range f.bookings {
		if filter.DoctorID == "" || b.DoctorID == filter.DoctorID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ID == id {
			booking := b
			return &booking, nil
		}
	}
	return nil, apperrors.FetchFailure("booking", 404, nil)
}

func (f *fakeBookings) Create(ctx context.Context, req model.NewBookingRequest) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := model.Booking{
		ID:       fmt.Sprintf("b-%d", len(f.bookings)+1),
		Name:     req.Name,
		DoctorID: req.DoctorID,
		Date:     req.Date,
		Start:    req.Start,
		Status:   model.StatusConfirmed,
	}
	f.bookings = append(f.bookings, b)
	return &b, nil
}

func (f *fakeBookings) UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			f.bookings[i].Status = status
			booking := f.bookings[i]
			return &booking, nil
		}
	}
	return nil, apperrors.SubmissionFailure("Booking not found", 404, nil)
}

func testDoctor() model.Doctor {
	return model.Doctor{
		ID:          "d1",
		Name:        "Dr. Chan",
		Description: "Family medicine",
		Address:     model.Address{Line1: "1 Queen's Road", District: "Central"},
		OpeningHours: []model.OpeningHour{
			{Day: model.Sunday, IsClosed: true},
			{Day: model.Wednesday, Start: 9, End: 17},
			{Day: model.Thursday, Start: 9, End: 17},
		},
	}
}

type harness struct {
	doctors  *fakeDoctors
	bookings *fakeBookings
	store    *store.MemoryStore
}

func newHarness() *harness {
	return &harness{
		doctors: &fakeDoctors{doctors: []model.Doctor{
			testDoctor(),
			{ID: "d2", Name: "Dr. Wong", Address: model.Address{Line1: "8 Nathan Road", District: "Kowloon"}},
		}},
		bookings: &fakeBookings{},
		store:    store.NewMemoryStore(),
	}
}

// run executes one CLI invocation. Each invocation gets a fresh portal over
// the same store, as separate processes would.
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	open := func(ctx context.Context) (*session, error) {
		return &session{
			portal: portal.New(h.doctors, h.bookings, h.store, portal.Options{HorizonDays: 14, Log: logger.Discard()}),
			now:    func() time.Time { return testNow },
			log:    logger.Discard(),
		}, nil
	}
	app := newApp(open, &out)
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.RunContext(context.Background(), append([]string{"patient"}, args...))
	return out.String(), err
}

func TestDoctorsCommand(t *testing.T) {
	h := newHarness()

	out, err := h.run(t, "doctors")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Dr. Chan [d1]", "1 Queen's Road, Central", "Family medicine", "WED  09:00 - 17:00", "SUN  Closed", "Dr. Wong [d2]", "No Description"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = h.run(t, "doctors", "--q", "kowloon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "Dr. Chan") || !strings.Contains(out, "Dr. Wong") {
		t.Errorf("search output = %q, want only Dr. Wong", out)
	}

	out, _ = h.run(t, "doctors", "--q", "nobody")
	if !strings.Contains(out, "No doctors found") {
		t.Errorf("empty search output = %q", out)
	}
}

func TestDoctorsCommand_FetchFailure(t *testing.T) {
	h := newHarness()
	h.doctors.err = apperrors.FetchFailure("doctors", 500, nil)

	_, err := h.run(t, "doctors")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Something went wrong. Unable to fetch doctors." {
		t.Errorf("error = %q", err.Error())
	}
	if coder, ok := err.(cli.ExitCoder); !ok || coder.ExitCode() != 1 {
		t.Errorf("error %T should carry exit code 1", err)
	}
}

func TestAvailabilityCommand(t *testing.T) {
	h := newHarness()
	h.bookings.bookings = []model.Booking{
		{ID: "x", Name: "Someone", DoctorID: "d1", Date: "2026-10-14", Start: 11, Status: model.StatusConfirmed},
	}

	out, err := h.run(t, "availability", "--doctor", "d1", "--date", "2026-10-14")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"Dr. Chan on 2026-10-14",
		"Opening hours: 09:00 - 17:00",
		"09:00  unavailable",
		"10:00  unavailable",
		"11:00  unavailable",
		"12:00  available (default)",
		"16:00  available",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAvailabilityCommand_Rejections(t *testing.T) {
	h := newHarness()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown doctor", []string{"--doctor", "nope"}, "Doctor not found"},
		{"closed day", []string{"--doctor", "d1", "--date", "2026-10-18"}, "Please choose an available date"},
		{"past date", []string{"--doctor", "d1", "--date", "2026-10-08"}, "Please choose an available date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run(t, append([]string{"availability"}, tt.args...)...)
			if err == nil || err.Error() != tt.want {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestBookListCancel(t *testing.T) {
	h := newHarness()

	out, err := h.run(t, "book", "--doctor", "d1", "--date", "2026-10-15", "--time", "09:00", "--name", "Ada")
	if err != nil {
		t.Fatalf("book: unexpected error: %v", err)
	}
	if !strings.Contains(out, "Booked Dr. Chan on 2026-10-15 at 09:00 (id b-1)") {
		t.Errorf("book output = %q", out)
	}

	out, err = h.run(t, "bookings")
	if err != nil {
		t.Fatalf("bookings: unexpected error: %v", err)
	}
	for _, want := range []string{"b-1", "2026-10-15 09:00-10:00", "confirmed", "Ada", "Dr. Chan, 1 Queen's Road, Central", "(cancellable)"} {
		if !strings.Contains(out, want) {
			t.Errorf("bookings output missing %q:\n%s", want, out)
		}
	}

	out, err = h.run(t, "cancel", "--id", "b-1")
	if err != nil {
		t.Fatalf("cancel: unexpected error: %v", err)
	}
	if !strings.Contains(out, "Cancelled booking b-1") || !strings.Contains(out, "cancel") {
		t.Errorf("cancel output = %q", out)
	}
	if strings.Contains(out, "(cancellable)") {
		t.Errorf("cancelled booking still shown as cancellable: %q", out)
	}

	_, err = h.run(t, "cancel", "--id", "b-1")
	if err == nil || err.Error() != "Only upcoming confirmed bookings can be cancelled" {
		t.Errorf("second cancel error = %v", err)
	}
}

func TestBookCommand_Rejections(t *testing.T) {
	h := newHarness()
	h.bookings.bookings = []model.Booking{
		{ID: "x", Name: "Someone", DoctorID: "d1", Date: "2026-10-15", Start: 10, Status: model.StatusConfirmed},
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"taken slot", []string{"--date", "2026-10-15", "--time", "10:00", "--name", "Ada"}, "Please choose an available time"},
		{"past slot", []string{"--date", "2026-10-14", "--time", "09:00", "--name", "Ada"}, "Please choose an available time"},
		{"outside hours", []string{"--date", "2026-10-15", "--time", "18:00", "--name", "Ada"}, "Please choose an available time"},
		{"blank name", []string{"--date", "2026-10-15", "--time", "11:00", "--name", "  "}, "Please enter your name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"book", "--doctor", "d1"}, tt.args...)
			_, err := h.run(t, args...)
			if err == nil || err.Error() != tt.want {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}

	if len(h.bookings.bookings) != 1 {
		t.Errorf("rejected bookings reached the API: %d bookings", len(h.bookings.bookings))
	}
}

func TestCancelCommand_UnknownBooking(t *testing.T) {
	h := newHarness()

	_, err := h.run(t, "cancel", "--id", "missing")
	if err == nil || err.Error() != "Booking not found" {
		t.Errorf("error = %v, want Booking not found", err)
	}
}

func TestBookingsCommand_Empty(t *testing.T) {
	h := newHarness()

	out, err := h.run(t, "bookings")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No bookings yet") {
		t.Errorf("output = %q", out)
	}
}
