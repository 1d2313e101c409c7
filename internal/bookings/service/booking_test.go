package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	bookingserrors "docbook/internal/bookings/errors"
	"docbook/internal/bookings/repository"
	"docbook/internal/bookings/validator"
	doctorserrors "docbook/internal/doctors/errors"
	"docbook/pkg/config"
	mongotx "docbook/pkg/db/mongo"
	apperrors "docbook/pkg/errors"
	"docbook/pkg/logger"
	"docbook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockBookingRepository struct {
	mu         sync.Mutex
	bookings   map[string]*model.Booking
	seq        int
	createFunc func(ctx context.Context, b *model.Booking) error
}

func newMockBookingRepository(existing ...*model.Booking) *mockBookingRepository {
	m := &mockBookingRepository{bookings: map[string]*model.Booking{}}
	for _, b := range existing {
		m.bookings[b.ID] = b
	}
	return m
}

func (m *mockBookingRepository) Create(ctx context.Context, b *model.Booking) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, b); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	b.ID = fmt.Sprintf("b%d", m.seq)
	m.bookings[b.ID] = b
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockBookingRepository) FindAll(ctx context.Context, filter repository.Filter) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.bookings {
		if filter.DoctorID != "" && b.DoctorID != filter.DoctorID {
			continue
		}
		if filter.Date != "" && b.Date != filter.Date {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *mockBookingRepository) FindConfirmed(ctx context.Context, doctorID, date string) ([]*model.Booking, error) {
	all, _ := m.FindAll(ctx, repository.Filter{DoctorID: doctorID, Date: date})
	var out []*model.Booking
	for _, b := range all {
		if b.Status == model.StatusConfirmed {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	b.Status = status
	cp := *b
	return &cp, nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockLockRepository struct {
	mu       sync.Mutex
	held     map[string]bool
	acquired []string
}

func newMockLockRepository() *mockLockRepository {
	return &mockLockRepository{held: map[string]bool{}}
}

func (m *mockLockRepository) Create(ctx context.Context, lock *model.SlotLock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[lock.ID] {
		return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "duplicate key"}}}
	}
	m.held[lock.ID] = true
	m.acquired = append(m.acquired, lock.ID)
	return nil
}

func (m *mockLockRepository) Delete(ctx context.Context, lockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, lockID)
	return nil
}

type fakeDoctors map[string]*model.Doctor

func (f fakeDoctors) FindByID(ctx context.Context, id string) (*model.Doctor, error) {
	d, ok := f[id]
	if !ok {
		return nil, doctorserrors.ErrNotFound
	}
	return d, nil
}

type recordedEvent struct {
	eventType string
	bookingID string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType string, b *model.Booking) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{eventType: eventType, bookingID: b.ID})
}

// ────────────────────────────────────────────────
// Fixtures
// ────────────────────────────────────────────────

// Wednesday 2026-10-14, 10:20 UTC.
var testNow = time.Date(2026, time.October, 14, 10, 20, 0, 0, time.UTC)

func testDoctor() *model.Doctor {
	return &model.Doctor{
		ID:   "d1",
		Name: "Dr. Ada Park",
		OpeningHours: []model.OpeningHour{
			{Day: model.Sunday, IsClosed: true},
			{Day: model.Wednesday, Start: 9, End: 17},
			{Day: model.Thursday, Start: 9, End: 17},
		},
	}
}

type testEnv struct {
	svc       *bookingService
	repo      *mockBookingRepository
	locks     *mockLockRepository
	publisher *recordingPublisher
}

func newTestEnv(existing ...*model.Booking) *testEnv {
	cfg := &config.Config{
		Log:         logger.Discard(),
		Location:    time.UTC,
		SlotLockTTL: 30 * time.Second,
	}
	env := &testEnv{
		repo:      newMockBookingRepository(existing...),
		locks:     newMockLockRepository(),
		publisher: &recordingPublisher{},
	}
	svc := NewBookingService(
		env.repo,
		env.locks,
		fakeDoctors{"d1": testDoctor()},
		validator.NewBookingValidator(logger.Discard()),
		env.publisher,
		cfg,
	).(*bookingService)
	svc.now = func() time.Time { return testNow }
	env.svc = svc
	return env
}

func request(date string, start float64) *model.NewBookingRequest {
	return &model.NewBookingRequest{Name: "Ann Lee", DoctorID: "d1", Date: date, Start: start}
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate_Success(t *testing.T) {
	env := newTestEnv()

	req := request("2026-10-15", 10)
	req.Name = "  Ann Lee  "
	booking, err := env.svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.ID == "" {
		t.Error("expected an id")
	}
	if booking.Status != model.StatusConfirmed {
		t.Errorf("Status = %q, want confirmed", booking.Status)
	}
	if booking.Name != "Ann Lee" {
		t.Errorf("Name = %q, want trimmed", booking.Name)
	}

	if len(env.locks.acquired) != 1 || env.locks.acquired[0] != "booking_lock_d1_2026-10-15_10:00" {
		t.Errorf("acquired locks = %v", env.locks.acquired)
	}
	if len(env.locks.held) != 0 {
		t.Errorf("lock not released: %v", env.locks.held)
	}

	if len(env.publisher.events) != 1 || env.publisher.events[0].eventType != "booking.created" {
		t.Errorf("events = %+v", env.publisher.events)
	}
}

func TestCreate_LaterToday(t *testing.T) {
	env := newTestEnv()
	if _, err := env.svc.Create(context.Background(), request("2026-10-14", 11)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreate_Rejected(t *testing.T) {
	tests := []struct {
		name string
		req  *model.NewBookingRequest
		code string
	}{
		{"already started today", request("2026-10-14", 10), apperrors.CodeValidation},
		{"in the past", request("2026-10-13", 10), apperrors.CodeValidation},
		{"closed weekday", request("2026-10-18", 10), apperrors.CodeValidation},
		{"weekday without hours", request("2026-10-16", 10), apperrors.CodeValidation},
		{"before opening", request("2026-10-15", 8), apperrors.CodeValidation},
		{"at closing", request("2026-10-15", 17), apperrors.CodeValidation},
		{"half hour", request("2026-10-15", 10.5), apperrors.CodeValidation},
		{"bad date", request("15/10/2026", 10), apperrors.CodeValidation},
		{"empty name", &model.NewBookingRequest{Name: "  ", DoctorID: "d1", Date: "2026-10-15", Start: 10}, apperrors.CodeValidation},
		{"unknown doctor", &model.NewBookingRequest{Name: "Ann", DoctorID: "d9", Date: "2026-10-15", Start: 10}, apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			_, err := env.svc.Create(context.Background(), tt.req)
			if !apperrors.HasCode(err, tt.code) {
				t.Fatalf("expected %s, got %v", tt.code, err)
			}
			if len(env.repo.bookings) != 0 {
				t.Error("nothing should be stored")
			}
			if len(env.publisher.events) != 0 {
				t.Error("no event should be published")
			}
		})
	}
}

func TestCreate_Overlap(t *testing.T) {
	env := newTestEnv(&model.Booking{
		ID: "existing", DoctorID: "d1", Date: "2026-10-15", Start: 10, Status: model.StatusConfirmed,
	})

	_, err := env.svc.Create(context.Background(), request("2026-10-15", 10))
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	if appErr.Message != "This time slot has already been booked" {
		t.Errorf("Message = %q", appErr.Message)
	}
	if len(env.locks.held) != 0 {
		t.Error("lock must be released after a conflict")
	}

	if _, err := env.svc.Create(context.Background(), request("2026-10-15", 11)); err != nil {
		t.Errorf("adjacent slot should be free: %v", err)
	}
}

func TestCreate_CancelledBookingFreesSlot(t *testing.T) {
	env := newTestEnv(&model.Booking{
		ID: "old", DoctorID: "d1", Date: "2026-10-15", Start: 10, Status: model.StatusCancelled,
	})

	if _, err := env.svc.Create(context.Background(), request("2026-10-15", 10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreate_LockHeld(t *testing.T) {
	env := newTestEnv()
	env.locks.held["booking_lock_d1_2026-10-15_10:00"] = true

	_, err := env.svc.Create(context.Background(), request("2026-10-15", 10))
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestCreate_UniqueIndexViolation(t *testing.T) {
	env := newTestEnv()
	env.repo.createFunc = func(ctx context.Context, b *model.Booking) error {
		return bookingserrors.ErrSlotTaken
	}

	_, err := env.svc.Create(context.Background(), request("2026-10-15", 10))
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict || appErr.Message != "This time slot has already been booked" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreate_StorageFailure(t *testing.T) {
	env := newTestEnv()
	env.repo.createFunc = func(ctx context.Context, b *model.Booking) error {
		return errors.New("write concern timeout")
	}

	_, err := env.svc.Create(context.Background(), request("2026-10-15", 10))
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Fatalf("expected INTERNAL_ERROR, got %v", err)
	}
}

func TestCreate_ConcurrentSameSlot(t *testing.T) {
	env := newTestEnv()

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Create(context.Background(), request("2026-10-15", 10))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	success := 0
	for err := range results {
		if err == nil {
			success++
		} else if !apperrors.HasCode(err, apperrors.CodeConflict) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Errorf("expected exactly one booking, got %d", success)
	}
}

// ────────────────────────────────────────────────
// UpdateStatus / reads
// ────────────────────────────────────────────────

func TestUpdateStatus_Cancel(t *testing.T) {
	env := newTestEnv(&model.Booking{
		ID: "b1", DoctorID: "d1", Date: "2026-10-15", Start: 10, Status: model.StatusConfirmed,
	})

	booking, err := env.svc.UpdateStatus(context.Background(), "b1", &model.BookingStatusUpdate{Status: model.StatusCancelled})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != model.StatusCancelled {
		t.Errorf("Status = %q, want cancel", booking.Status)
	}
	if len(env.publisher.events) != 1 || env.publisher.events[0].eventType != "booking.cancelled" {
		t.Errorf("events = %+v", env.publisher.events)
	}

	again, err := env.svc.UpdateStatus(context.Background(), "b1", &model.BookingStatusUpdate{Status: model.StatusCancelled})
	if err != nil {
		t.Fatalf("repeat cancel should succeed: %v", err)
	}
	if again.Status != model.StatusCancelled {
		t.Errorf("Status = %q", again.Status)
	}
	if len(env.publisher.events) != 1 {
		t.Error("repeat cancel must not publish again")
	}
}

func TestUpdateStatus_Rejected(t *testing.T) {
	env := newTestEnv(&model.Booking{ID: "b1", Status: model.StatusCancelled})

	_, err := env.svc.UpdateStatus(context.Background(), "b1", &model.BookingStatusUpdate{Status: model.StatusConfirmed})
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation || appErr.HTTPStatus != 422 {
		t.Errorf("expected 422 VALIDATION_ERROR, got %v", err)
	}

	_, err = env.svc.UpdateStatus(context.Background(), "b1", &model.BookingStatusUpdate{})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("empty status: expected VALIDATION_ERROR, got %v", err)
	}

	_, err = env.svc.UpdateStatus(context.Background(), "nope", &model.BookingStatusUpdate{Status: model.StatusCancelled})
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestGetAll(t *testing.T) {
	env := newTestEnv(
		&model.Booking{ID: "b1", DoctorID: "d1", Date: "2026-10-15", Start: 10, Status: model.StatusConfirmed},
		&model.Booking{ID: "b2", DoctorID: "d2", Date: "2026-10-15", Start: 10, Status: model.StatusConfirmed},
	)

	all, err := env.svc.GetAll(context.Background(), repository.Filter{DoctorID: "d1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 || all[0].ID != "b1" {
		t.Errorf("unexpected bookings: %+v", all)
	}

	none, err := env.svc.GetAll(context.Background(), repository.Filter{DoctorID: "d3"})
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %v, %v", none, err)
	}

	_, err = env.svc.GetAll(context.Background(), repository.Filter{Date: "tomorrow"})
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestGetByID(t *testing.T) {
	env := newTestEnv(&model.Booking{ID: "b1"})

	if _, err := env.svc.GetByID(context.Background(), "b1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := env.svc.GetByID(context.Background(), ""); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}
