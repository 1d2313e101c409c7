package portal

import (
	"context"
	"strings"
	"sync"
	"time"

	"docbook/internal/store"
	"docbook/pkg/availability"
	"docbook/pkg/client"
	apperrors "docbook/pkg/errors"
	"docbook/pkg/logger"
	"docbook/pkg/model"
	"docbook/pkg/presentation"
	"docbook/pkg/timeofday"
)

// FormState is a snapshot of the booking form.
type FormState struct {
	Doctor       presentation.DoctorProfile
	Date         string
	Time         string
	Name         string
	Availability availability.Availability
}

// BookingForm books one slot with one doctor. It recomputes availability
// whenever the date, the doctor or the fetched bookings change.
type BookingForm struct {
	mu sync.Mutex

	bookings BookingAPI
	store    store.Store
	cache    *QueryCache
	horizon  int
	log      *logger.Logger

	doctor     presentation.DoctorProfile
	confirmed  []model.Booking
	date       time.Time
	clock      string
	name       string
	now        time.Time
	state      availability.Availability
	submitting bool
}

func newBookingForm(doctor model.Doctor, bookings BookingAPI, st store.Store, cache *QueryCache, horizon int, log *logger.Logger) *BookingForm {
	return &BookingForm{
		bookings: bookings,
		store:    st,
		cache:    cache,
		horizon:  horizon,
		log:      log.With("doctor_id", doctor.ID),
		doctor:   presentation.NewDoctorProfile(doctor),
	}
}

// Open loads the doctor's bookings and selects the earliest bookable date
// with its default time.
func (f *BookingForm) Open(ctx context.Context, now time.Time) error {
	f.mu.Lock()
	f.now = now
	f.date = availability.MinSelectableDate(f.doctor.Doctor.OpeningHours, now)
	f.recomputeLocked(true)
	f.mu.Unlock()

	return f.Refresh(ctx)
}

// SetDoctor switches the form to another doctor. Responses still in flight
// for the previous doctor are discarded.
func (f *BookingForm) SetDoctor(ctx context.Context, doctor model.Doctor) error {
	f.mu.Lock()
	f.doctor = presentation.NewDoctorProfile(doctor)
	f.log = f.log.With("doctor_id", doctor.ID)
	f.confirmed = nil
	f.date = availability.MinSelectableDate(doctor.OpeningHours, f.nowLocked())
	f.recomputeLocked(true)
	f.mu.Unlock()

	return f.Refresh(ctx)
}

// Refresh refetches the doctor's bookings. The result is applied only if no
// newer fetch for the same doctor started meanwhile.
func (f *BookingForm) Refresh(ctx context.Context) error {
	f.mu.Lock()
	doctorID := f.doctor.Doctor.ID
	f.mu.Unlock()

	key := doctorBookingsKey(doctorID)
	gen := f.cache.Begin(key)

	bookings, err := f.bookings.GetAll(ctx, client.BookingFilter{DoctorID: doctorID})
	if err != nil {
		f.log.Warn("Failed to load bookings", "error", err)
		return asFetchFailure("bookings", err)
	}

	confirmed := make([]model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.IsConfirmed() && b.DoctorID == doctorID {
			confirmed = append(confirmed, b)
		}
	}

	if !f.cache.Commit(key, gen, confirmed) {
		f.log.Debug("Discarding superseded bookings response", "generation", gen)
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.doctor.Doctor.ID != doctorID {
		return nil
	}
	f.confirmed = confirmed
	f.recomputeLocked(false)
	return nil
}

// SelectDate picks a date in YYYY-MM-DD form. Closed or out-of-range
// dates are rejected.
func (f *BookingForm) SelectDate(date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.state.InRange(date) {
		return apperrors.Validation("Please choose an available date", map[string]any{"date": date})
	}
	parsed, err := model.ParseDate(date, f.nowLocked().Location())
	if err != nil {
		return apperrors.Validation("Please choose an available date", map[string]any{"date": date})
	}
	if _, open := availability.WindowForDate(f.doctor.Doctor.OpeningHours, parsed); !open {
		return apperrors.Validation("Please choose an available date", map[string]any{"date": date})
	}
	f.date = parsed
	f.recomputeLocked(true)
	return nil
}

// SelectTime picks one of the listed HH:MM slot starts.
func (f *BookingForm) SelectTime(clock string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.state.Slots.IsAvailable(clock) {
		return apperrors.Validation("Please choose an available time", map[string]any{"time": clock})
	}
	f.clock = clock
	return nil
}

func (f *BookingForm) SetName(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.name = name
}

func (f *BookingForm) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FormState{
		Doctor:       f.doctor,
		Date:         model.FormatDate(f.date),
		Time:         f.clock,
		Name:         f.name,
		Availability: f.state,
	}
}

// Submit validates the form against availability at now, creates the
// booking and records it in the store. Validation failures make no network
// call. A rejected submission leaves the form as it was.
func (f *BookingForm) Submit(ctx context.Context, now time.Time) (*model.Booking, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, apperrors.Conflict("A submission is already in progress")
	}
	chosen := f.clock
	f.now = now
	f.recomputeLocked(false)

	req, err := f.requestLocked(chosen)
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.submitting = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	booking, err := f.bookings.Create(ctx, req)
	if err != nil {
		f.log.Warn("Booking submission rejected", "error", err, "date", req.Date, "start", req.Start)
		return nil, asSubmissionFailure(err)
	}

	f.log.Info("Booking created", "booking_id", booking.ID, "date", booking.Date, "start", booking.Start)
	f.cache.Invalidate(keyBookings)

	if _, err := f.store.AddBookingID(ctx, booking.ID); err != nil {
		f.log.Error("Failed to remember booking", "booking_id", booking.ID, "error", err)
		return booking, apperrors.Internal("Booking created but could not be saved locally", err)
	}
	if err := f.store.MarkBookingsChanged(ctx); err != nil {
		f.log.Error("Failed to flag bookings changed", "error", err)
		return booking, apperrors.Internal("Booking created but could not be saved locally", err)
	}
	return booking, nil
}

func (f *BookingForm) requestLocked(clock string) (model.NewBookingRequest, error) {
	name := strings.TrimSpace(f.name)
	if name == "" {
		return model.NewBookingRequest{}, apperrors.Validation("Please enter your name", map[string]any{"name": "required"})
	}
	if clock == "" {
		return model.NewBookingRequest{}, apperrors.Validation("Please choose a time", map[string]any{"time": "required"})
	}
	if !f.state.Open || !f.state.InRange(f.state.Date) {
		return model.NewBookingRequest{}, apperrors.Validation("Please choose an available date", map[string]any{"date": f.state.Date})
	}
	if !f.state.Slots.IsAvailable(clock) {
		return model.NewBookingRequest{}, apperrors.Validation("Please choose an available time", map[string]any{"time": clock})
	}
	start, err := timeofday.ToClockFloat(clock)
	if err != nil {
		return model.NewBookingRequest{}, apperrors.Validation("Please choose a time", map[string]any{"time": clock})
	}

	return model.NewBookingRequest{
		Name:     name,
		DoctorID: f.doctor.Doctor.ID,
		Date:     f.state.Date,
		Start:    start,
	}, nil
}

// recomputeLocked rebuilds availability. resetTime moves the selection to
// the default slot; otherwise the selection is kept while still bookable.
func (f *BookingForm) recomputeLocked(resetTime bool) {
	now := f.nowLocked()
	if f.date.IsZero() {
		f.date = availability.MinSelectableDate(f.doctor.Doctor.OpeningHours, now)
	}
	f.state = availability.Compute(f.doctor.Doctor.OpeningHours, f.date, f.confirmed, now, f.horizon)
	if resetTime || !f.state.Slots.IsAvailable(f.clock) {
		f.clock = f.state.Slots.Default
	}
}

func (f *BookingForm) nowLocked() time.Time {
	if f.now.IsZero() {
		return time.Now()
	}
	return f.now
}
