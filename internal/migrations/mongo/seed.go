package mongo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"docbook/pkg/logger"
	"docbook/pkg/model"
)

// DoctorSaver validates and stores one doctor.
type DoctorSaver interface {
	Upsert(ctx context.Context, doctor *model.Doctor) error
}

// ReadSeedFile decodes a JSON array of doctors. Opening hours may use
// either "HH:MM" or "H.MM" strings.
func ReadSeedFile(path string) ([]*model.Doctor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var doctors []*model.Doctor
	if err := json.Unmarshal(data, &doctors); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return doctors, nil
}

// Seed saves every doctor and stops at the first rejection.
func Seed(ctx context.Context, doctors []*model.Doctor, saver DoctorSaver, log *logger.Logger) error {
	for i, d := range doctors {
		if err := saver.Upsert(ctx, d); err != nil {
			return fmt.Errorf("doctor %d (%s): %w", i, d.Name, err)
		}
	}
	log.Info("Seeded doctors", "count", len(doctors))
	return nil
}
