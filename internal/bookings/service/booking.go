package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingserrors "docbook/internal/bookings/errors"
	"docbook/internal/bookings/events"
	"docbook/internal/bookings/repository"
	"docbook/internal/bookings/validator"
	doctorserrors "docbook/internal/doctors/errors"
	"docbook/pkg/availability"
	"docbook/pkg/config"
	mongotx "docbook/pkg/db/mongo"
	apperrors "docbook/pkg/errors"
	"docbook/pkg/model"
	"docbook/pkg/sanitizer"
	"docbook/pkg/timeofday"

	"go.mongodb.org/mongo-driver/mongo"
)

const slotTakenMessage = "This time slot has already been booked"

type BookingService interface {
	Create(ctx context.Context, req *model.NewBookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, filter repository.Filter) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, update *model.BookingStatusUpdate) (*model.Booking, error)
}

// DoctorFinder resolves the doctor a booking is made against.
type DoctorFinder interface {
	FindByID(ctx context.Context, id string) (*model.Doctor, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SlotLockRepository
	doctors   DoctorFinder
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	doctors DoctorFinder,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.Noop()
	}
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		doctors:   doctors,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *bookingService) location() *time.Location {
	if s.cfg.Location != nil {
		return s.cfg.Location
	}
	return time.Local
}

func (s *bookingService) Create(ctx context.Context, req *model.NewBookingRequest) (*model.Booking, error) {
	s.sanitize(req)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	doctor, err := s.doctors.FindByID(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, doctorserrors.ErrNotFound) {
			return nil, apperrors.Validation(fmt.Sprintf("Doctor %s does not exist", req.DoctorID), map[string]any{"doctorId": req.DoctorID})
		}
		return nil, apperrors.Internal("Failed to look up doctor", err)
	}

	if err := s.checkSlot(doctor, req); err != nil {
		return nil, err
	}

	lockID, err := s.acquireSlotLock(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.lockRepo.Delete(context.WithoutCancel(ctx), lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	booking := &model.Booking{
		Name:     req.Name,
		DoctorID: req.DoctorID,
		Date:     req.Date,
		Start:    req.Start,
		Status:   model.StatusConfirmed,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifySlotFree(sessCtx, booking); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			if errors.Is(err, bookingserrors.ErrSlotTaken) {
				return apperrors.Conflict(slotTakenMessage)
			}
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			err = apperrors.Internal("Failed to create booking", err)
		}
		if !apperrors.HasCode(err, apperrors.CodeConflict) {
			s.cfg.Log.Error("Failed to create booking", "error", err)
		}
		return nil, err
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"doctor_id", booking.DoctorID,
		"date", booking.Date,
		"start", timeofday.ToTimeString(booking.Start),
		"patient_name", booking.Name,
	)
	s.publisher.Publish(ctx, events.TypeBookingCreated, booking)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}
	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, filter repository.Filter) ([]*model.Booking, error) {
	if filter.Date != "" {
		if _, err := model.ParseDate(filter.Date, s.location()); err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("Invalid date filter: %s", filter.Date))
		}
	}

	bookings, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "doctor_id", filter.DoctorID, "date", filter.Date, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return bookings, nil
}

// UpdateStatus only moves a booking to cancel. Cancelling a cancelled
// booking returns it unchanged.
func (s *bookingService) UpdateStatus(ctx context.Context, id string, update *model.BookingStatusUpdate) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if err := s.validator.ValidateStatusUpdate(update); err != nil {
		s.cfg.Log.Warn("Booking status update rejected", "id", id, "error", err)
		return nil, apperrors.Validation(err.Error(), map[string]any{"status": update.Status})
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}
	if existing.Status == model.StatusCancelled {
		return existing, nil
	}

	updated, err := s.repo.UpdateStatus(ctx, id, model.StatusCancelled)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	s.cfg.Log.Info("Booking cancelled", "id", id, "doctor_id", updated.DoctorID, "date", updated.Date)
	s.publisher.Publish(ctx, events.TypeBookingCancelled, updated)
	return updated, nil
}

// --- Helpers ---

func (s *bookingService) mapLookupError(err error, id string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	s.cfg.Log.Error("Failed to retrieve booking", "id", id, "error", err)
	return apperrors.Internal("Failed to retrieve booking", err)
}

func (s *bookingService) sanitize(req *model.NewBookingRequest) {
	req.Name = sanitizer.NormalizeName(req.Name)
	req.DoctorID = sanitizer.NormalizeID(req.DoctorID)
	req.Date = strings.TrimSpace(req.Date)
}

func (s *bookingService) validate(req *model.NewBookingRequest) error {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation(err.Error(), map[string]any{"errors": err})
	}
	return nil
}

// checkSlot verifies the requested start is a bookable slot of the doctor's
// opening window and has not started yet.
func (s *bookingService) checkSlot(doctor *model.Doctor, req *model.NewBookingRequest) error {
	date, err := model.ParseDate(req.Date, s.location())
	if err != nil {
		return apperrors.Validation(fmt.Sprintf("Invalid date: %s", req.Date), nil)
	}

	window, open := availability.WindowForDate(doctor.OpeningHours, date)
	if !open {
		return apperrors.Validation(fmt.Sprintf("Doctor is closed on %s", model.WeekdayOf(date)), nil)
	}
	if !window.Contains(req.Start) {
		return apperrors.Validation(fmt.Sprintf("Start time %s is outside opening hours %s-%s",
			timeofday.ToTimeString(req.Start),
			timeofday.ToTimeString(window.Start),
			timeofday.ToTimeString(window.End),
		), nil)
	}

	if !timeofday.At(date, req.Start).After(s.now().In(s.location())) {
		return apperrors.Validation("Start time must be in the future", nil)
	}
	return nil
}

func (s *bookingService) verifySlotFree(ctx context.Context, booking *model.Booking) error {
	existing, err := s.repo.FindConfirmed(ctx, booking.DoctorID, booking.Date)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	for _, b := range existing {
		if b.ID == booking.ID {
			continue
		}
		if overlaps(b.Start, b.End(), booking.Start, booking.End()) {
			return apperrors.Conflict(slotTakenMessage)
		}
	}
	return nil
}

func overlaps(start1, end1, start2, end2 float64) bool {
	return start1 < end2 && end1 > start2
}

func slotLockID(doctorID, date string, start float64) string {
	return fmt.Sprintf("booking_lock_%s_%s_%s", doctorID, date, timeofday.ToTimeString(start))
}

// acquireSlotLock returns a conflict when another request holds the slot.
func (s *bookingService) acquireSlotLock(ctx context.Context, req *model.NewBookingRequest) (string, error) {
	lockID := slotLockID(req.DoctorID, req.Date, req.Start)

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: s.now().UTC().Add(s.cfg.SlotLockTTL),
	}
	if err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongotx.IsDuplicateKey(err) {
			return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}
	return lockID, nil
}
