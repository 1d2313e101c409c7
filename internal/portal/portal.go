// Package portal holds the patient-facing view workflows: the doctor
// directory, the booking form and the my-bookings list.
package portal

import (
	"context"

	"docbook/internal/store"
	"docbook/pkg/client"
	apperrors "docbook/pkg/errors"
	"docbook/pkg/logger"
	"docbook/pkg/model"
)

type DoctorAPI interface {
	GetAll(ctx context.Context) ([]model.Doctor, error)
	GetByID(ctx context.Context, id string) (*model.Doctor, error)
}

type BookingAPI interface {
	GetAll(ctx context.Context, filter client.BookingFilter) ([]model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	Create(ctx context.Context, req model.NewBookingRequest) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Booking, error)
}

type Options struct {
	// HorizonDays bounds how far ahead a date may be picked.
	HorizonDays int
	Log         *logger.Logger
}

// Portal wires the views to one API client, store and query cache.
type Portal struct {
	Directory  *Directory
	MyBookings *MyBookings

	doctors  DoctorAPI
	bookings BookingAPI
	store    store.Store
	cache    *QueryCache
	horizon  int
	log      *logger.Logger
}

func New(doctors DoctorAPI, bookings BookingAPI, st store.Store, opts Options) *Portal {
	if opts.Log == nil {
		opts.Log = logger.Discard()
	}
	cache := NewQueryCache()
	return &Portal{
		Directory:  NewDirectory(doctors, cache, opts.Log),
		MyBookings: NewMyBookings(doctors, bookings, st, cache, opts.Log),
		doctors:    doctors,
		bookings:   bookings,
		store:      st,
		cache:      cache,
		horizon:    opts.HorizonDays,
		log:        opts.Log,
	}
}

func (p *Portal) NewBookingForm(doctor model.Doctor) *BookingForm {
	return newBookingForm(doctor, p.bookings, p.store, p.cache, p.horizon, p.log)
}

// Watch drops cached bookings whenever the store reports a change, until
// ctx ends. onChange, if set, runs after each invalidation.
func (p *Portal) Watch(ctx context.Context, onChange func()) error {
	events, err := p.store.Subscribe(ctx)
	if err != nil {
		return err
	}
	go func() {
		for range events {
			p.cache.Invalidate(keyBookings)
			p.log.Debug("Bookings changed, cache invalidated")
			if onChange != nil {
				onChange()
			}
		}
	}()
	return nil
}

func asFetchFailure(resource string, err error) error {
	if apperrors.HasCode(err, apperrors.CodeFetchFailure) {
		return err
	}
	return apperrors.FetchFailure(resource, 0, err)
}

func asSubmissionFailure(err error) error {
	if apperrors.HasCode(err, apperrors.CodeSubmissionFailure) {
		return err
	}
	return apperrors.SubmissionFailure("", 0, err)
}
