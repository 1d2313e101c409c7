package portal

import (
	"context"
	"sync"
	"time"

	"docbook/internal/store"
	"docbook/pkg/client"
	apperrors "docbook/pkg/errors"
	"docbook/pkg/logger"
	"docbook/pkg/model"
	"docbook/pkg/presentation"
)

// MyBookings lists the bookings whose ids are in the store.
type MyBookings struct {
	doctors  DoctorAPI
	bookings BookingAPI
	store    store.Store
	cache    *QueryCache
	log      *logger.Logger

	mu       sync.Mutex
	order    []string
	entries  map[string]model.Booking
	profiles map[string]presentation.DoctorProfile
	loaded   bool
}

func NewMyBookings(doctors DoctorAPI, bookings BookingAPI, st store.Store, cache *QueryCache, log *logger.Logger) *MyBookings {
	return &MyBookings{
		doctors:  doctors,
		bookings: bookings,
		store:    st,
		cache:    cache,
		log:      log,
		entries:  make(map[string]model.Booking),
		profiles: make(map[string]presentation.DoctorProfile),
	}
}

// Load returns views for the stored booking ids. Bookings and doctors are
// refetched only when the changed flag is raised or nothing is cached yet;
// the flag is cleared after a successful refetch. A refetch overtaken by an
// invalidation is retried once; if that is overtaken too the previous views
// are returned and the flag stays raised.
func (m *MyBookings) Load(ctx context.Context, now time.Time) ([]presentation.BookingView, error) {
	changed, err := m.store.BookingsChanged(ctx)
	if err != nil {
		return nil, apperrors.Internal("Unable to read saved bookings", err)
	}

	m.mu.Lock()
	cached := m.loaded
	m.mu.Unlock()
	if _, ok := m.cache.Get(keyBookings); !ok {
		cached = false
	}

	if !changed && cached {
		return m.views(now), nil
	}

	committed, err := m.refetch(ctx)
	if err == nil && !committed {
		committed, err = m.refetch(ctx)
	}
	if err != nil {
		return nil, err
	}
	if !committed {
		return m.views(now), nil
	}
	if err := m.store.ClearBookingsChanged(ctx); err != nil {
		m.log.Warn("Failed to clear bookings changed flag", "error", err)
	}
	return m.views(now), nil
}

// refetch reports false when its result was superseded before Commit.
func (m *MyBookings) refetch(ctx context.Context) (bool, error) {
	ids, err := m.store.BookingIDs(ctx)
	if err != nil {
		return false, apperrors.Internal("Unable to read saved bookings", err)
	}

	gen := m.cache.Begin(keyBookings)

	var (
		wg          sync.WaitGroup
		bookings    []model.Booking
		doctors     []model.Doctor
		bookingsErr error
		doctorsErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		bookings, bookingsErr = m.bookings.GetAll(ctx, client.BookingFilter{})
	}()
	go func() {
		defer wg.Done()
		doctors, doctorsErr = m.doctors.GetAll(ctx)
	}()
	wg.Wait()

	if bookingsErr != nil {
		m.log.Warn("Failed to load bookings", "error", bookingsErr)
		return false, asFetchFailure("bookings", bookingsErr)
	}
	if doctorsErr != nil {
		m.log.Warn("Failed to load doctors", "error", doctorsErr)
		return false, asFetchFailure("doctors", doctorsErr)
	}

	byID := make(map[string]model.Booking, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
	}

	entries := make(map[string]model.Booking, len(ids))
	order := make([]string, 0, len(ids))
	for _, id := range ids {
		b, ok := byID[id]
		if !ok {
			m.log.Debug("Stored booking not returned by the API", "booking_id", id)
			continue
		}
		entries[id] = b
		order = append(order, id)
	}

	profiles := make(map[string]presentation.DoctorProfile, len(doctors))
	for _, p := range presentation.NewDoctorProfiles(doctors) {
		profiles[p.Doctor.ID] = p
	}

	if !m.cache.Commit(keyBookings, gen, order) {
		m.log.Debug("Discarding superseded my-bookings response", "generation", gen)
		return false, nil
	}

	m.mu.Lock()
	m.order = order
	m.entries = entries
	m.profiles = profiles
	m.loaded = true
	m.mu.Unlock()
	return true, nil
}

// Cancel sets a stored booking's status to cancel and updates the cached
// entry. The stored id set is left as is.
func (m *MyBookings) Cancel(ctx context.Context, id string, now time.Time) (presentation.BookingView, error) {
	m.mu.Lock()
	b, ok := m.entries[id]
	m.mu.Unlock()
	if !ok {
		return presentation.BookingView{}, apperrors.NotFoundWithID("Booking", id)
	}
	if presentation.DisplayStatus(b, now) != model.StatusConfirmed {
		return presentation.BookingView{}, apperrors.Validation("Only upcoming confirmed bookings can be cancelled", map[string]any{"id": id})
	}

	updated, err := m.bookings.UpdateStatus(ctx, id, model.StatusCancelled)
	if err != nil {
		m.log.Warn("Failed to cancel booking", "booking_id", id, "error", err)
		return presentation.BookingView{}, asSubmissionFailure(err)
	}
	m.log.Info("Booking cancelled", "booking_id", id)

	m.mu.Lock()
	m.entries[id] = *updated
	profile, hasProfile := m.profiles[updated.DoctorID]
	m.mu.Unlock()

	if hasProfile {
		return presentation.NewBookingView(*updated, &profile, now), nil
	}
	return presentation.NewBookingView(*updated, nil, now), nil
}

func (m *MyBookings) views(now time.Time) []presentation.BookingView {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]presentation.BookingView, 0, len(m.order))
	for _, id := range m.order {
		b := m.entries[id]
		if profile, ok := m.profiles[b.DoctorID]; ok {
			out = append(out, presentation.NewBookingView(b, &profile, now))
		} else {
			out = append(out, presentation.NewBookingView(b, nil, now))
		}
	}
	return out
}
