package service

import (
	"context"
	"errors"
	"strings"

	doctorserrors "docbook/internal/doctors/errors"
	"docbook/internal/doctors/repository"
	"docbook/internal/doctors/validator"
	apperrors "docbook/pkg/errors"
	"docbook/pkg/logger"
	"docbook/pkg/model"
	"docbook/pkg/sanitizer"
)

type DoctorService interface {
	GetAll(ctx context.Context) ([]*model.Doctor, error)
	GetByID(ctx context.Context, id string) (*model.Doctor, error)
	Upsert(ctx context.Context, doctor *model.Doctor) error
}

type doctorService struct {
	repo      repository.DoctorRepository
	validator *validator.DoctorValidator
	log       *logger.Logger
}

func NewDoctorService(repo repository.DoctorRepository, validator *validator.DoctorValidator, log *logger.Logger) DoctorService {
	return &doctorService{
		repo:      repo,
		validator: validator,
		log:       log,
	}
}

func (s *doctorService) GetAll(ctx context.Context) ([]*model.Doctor, error) {
	doctors, err := s.repo.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to list doctors", "error", err)
		return nil, apperrors.Internal("Failed to retrieve doctors", err)
	}
	return doctors, nil
}

func (s *doctorService) GetByID(ctx context.Context, id string) (*model.Doctor, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.InvalidInput("Doctor ID cannot be empty")
	}

	doctor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, doctorserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Doctor", id)
		}
		s.log.Error("Failed to retrieve doctor", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve doctor", err)
	}
	return doctor, nil
}

func (s *doctorService) Upsert(ctx context.Context, doctor *model.Doctor) error {
	s.sanitize(doctor)
	if err := s.validator.Validate(doctor); err != nil {
		s.log.Warn("Doctor validation failed", "id", doctor.ID, "error", err)
		return apperrors.Validation("Doctor validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Upsert(ctx, doctor); err != nil {
		return apperrors.Internal("Failed to save doctor", err)
	}

	s.log.Info("Doctor saved", "id", doctor.ID, "name", doctor.Name)
	return nil
}

func (s *doctorService) sanitize(d *model.Doctor) {
	d.ID = sanitizer.NormalizeID(d.ID)
	d.Name = sanitizer.NormalizeName(d.Name)
	d.Description = sanitizer.NormalizeDescription(d.Description)
	d.Address.Line1 = sanitizer.TrimAndNormalize(d.Address.Line1)
	d.Address.Line2 = sanitizer.TrimAndNormalize(d.Address.Line2)
	d.Address.District = sanitizer.TrimAndNormalize(d.Address.District)
}
