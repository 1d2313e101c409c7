package portal

import (
	"context"

	"docbook/pkg/logger"
	"docbook/pkg/presentation"
)

type Directory struct {
	doctors DoctorAPI
	cache   *QueryCache
	log     *logger.Logger
}

func NewDirectory(doctors DoctorAPI, cache *QueryCache, log *logger.Logger) *Directory {
	return &Directory{doctors: doctors, cache: cache, log: log}
}

// Load fetches all doctors and caches their profiles. On failure the
// previous profiles stay cached.
func (d *Directory) Load(ctx context.Context) ([]presentation.DoctorProfile, error) {
	gen := d.cache.Begin(keyDoctors)

	doctors, err := d.doctors.GetAll(ctx)
	if err != nil {
		d.log.Warn("Failed to load doctors", "error", err)
		return nil, asFetchFailure("doctors", err)
	}

	profiles := presentation.NewDoctorProfiles(doctors)
	if !d.cache.Commit(keyDoctors, gen, profiles) {
		d.log.Debug("Discarding superseded doctors response", "generation", gen)
		return d.Profiles(), nil
	}
	return profiles, nil
}

// Profiles returns the cached profiles, nil if nothing was loaded yet.
func (d *Directory) Profiles() []presentation.DoctorProfile {
	v, ok := d.cache.Get(keyDoctors)
	if !ok {
		return nil
	}
	return v.([]presentation.DoctorProfile)
}

func (d *Directory) Search(query string) []presentation.DoctorProfile {
	return presentation.FilterDoctors(d.Profiles(), query)
}

func (d *Directory) Find(id string) (*presentation.DoctorProfile, bool) {
	for _, p := range d.Profiles() {
		if p.Doctor.ID == id {
			profile := p
			return &profile, true
		}
	}
	return nil, false
}
