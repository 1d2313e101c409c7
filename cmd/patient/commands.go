package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"docbook/internal/portal"
	apperrors "docbook/pkg/errors"
	"docbook/pkg/logger"
	"docbook/pkg/presentation"

	"github.com/urfave/cli/v2"
)

// session is what every command runs against.
type session struct {
	portal *portal.Portal
	now    func() time.Time
	log    *logger.Logger
	close  func()
}

type openFunc func(ctx context.Context) (*session, error)

func newApp(open openFunc, out io.Writer) *cli.App {
	return &cli.App{
		Name:   "patient",
		Usage:  "browse doctors and manage your bookings",
		Writer: out,
		Commands: []*cli.Command{
			{
				Name:  "doctors",
				Usage: "list doctors, optionally filtered by name, description or district",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "q", Usage: "search text"},
				},
				Action: withSession(open, listDoctors),
			},
			{
				Name:  "availability",
				Usage: "show bookable times for a doctor",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "doctor", Usage: "doctor id", Required: true},
					&cli.StringFlag{Name: "date", Usage: "date as YYYY-MM-DD, defaults to the earliest open day"},
				},
				Action: withSession(open, showAvailability),
			},
			{
				Name:  "book",
				Usage: "book a one hour slot",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "doctor", Usage: "doctor id", Required: true},
					&cli.StringFlag{Name: "date", Usage: "date as YYYY-MM-DD", Required: true},
					&cli.StringFlag{Name: "time", Usage: "start time as HH:MM", Required: true},
					&cli.StringFlag{Name: "name", Usage: "patient name", Required: true},
				},
				Action: withSession(open, book),
			},
			{
				Name:  "bookings",
				Usage: "list the bookings made from this machine",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "watch", Usage: "reprint whenever the bookings change"},
				},
				Action: withSession(open, listBookings),
			},
			{
				Name:  "cancel",
				Usage: "cancel one of your upcoming bookings",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "booking id", Required: true},
				},
				Action: withSession(open, cancel),
			},
		},
	}
}

func withSession(open openFunc, fn func(c *cli.Context, s *session) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := open(c.Context)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		if s.close != nil {
			defer s.close()
		}
		if err := fn(c, s); err != nil {
			return exitError(err)
		}
		return nil
	}
}

func exitError(err error) error {
	return cli.Exit(apperrors.UserMessage(err), 1)
}

func listDoctors(c *cli.Context, s *session) error {
	profiles, err := s.portal.Directory.Load(c.Context)
	if err != nil {
		return err
	}
	if q := c.String("q"); q != "" {
		profiles = s.portal.Directory.Search(q)
	}
	renderDoctors(c.App.Writer, profiles)
	return nil
}

func findDoctor(ctx context.Context, s *session, id string) (*presentation.DoctorProfile, error) {
	if _, err := s.portal.Directory.Load(ctx); err != nil {
		return nil, err
	}
	profile, ok := s.portal.Directory.Find(id)
	if !ok {
		return nil, apperrors.NotFoundWithID("Doctor", id)
	}
	return profile, nil
}

func openForm(c *cli.Context, s *session) (*portal.BookingForm, error) {
	profile, err := findDoctor(c.Context, s, c.String("doctor"))
	if err != nil {
		return nil, err
	}
	form := s.portal.NewBookingForm(profile.Doctor)
	if err := form.Open(c.Context, s.now()); err != nil {
		return nil, err
	}
	if date := c.String("date"); date != "" {
		if err := form.SelectDate(date); err != nil {
			return nil, err
		}
	}
	return form, nil
}

func showAvailability(c *cli.Context, s *session) error {
	form, err := openForm(c, s)
	if err != nil {
		return err
	}
	renderAvailability(c.App.Writer, form.State())
	return nil
}

func book(c *cli.Context, s *session) error {
	form, err := openForm(c, s)
	if err != nil {
		return err
	}
	if err := form.SelectTime(c.String("time")); err != nil {
		return err
	}
	form.SetName(c.String("name"))

	booking, err := form.Submit(c.Context, s.now())
	if booking == nil {
		return err
	}
	state := form.State()
	fmt.Fprintf(c.App.Writer, "Booked %s on %s at %s (id %s)\n",
		state.Doctor.Doctor.Name, booking.Date, c.String("time"), booking.ID)
	return err
}

func listBookings(c *cli.Context, s *session) error {
	if err := printBookings(c.Context, c.App.Writer, s); err != nil {
		return err
	}
	if !c.Bool("watch") {
		return nil
	}

	err := s.portal.Watch(c.Context, func() {
		if err := printBookings(c.Context, c.App.Writer, s); err != nil {
			s.log.Warn("Failed to reload bookings", "error", err)
		}
	})
	if err != nil {
		return apperrors.Internal("Unable to watch for booking changes", err)
	}
	<-c.Context.Done()
	return nil
}

func printBookings(ctx context.Context, w io.Writer, s *session) error {
	views, err := s.portal.MyBookings.Load(ctx, s.now())
	if err != nil {
		return err
	}
	renderBookings(w, views)
	return nil
}

func cancel(c *cli.Context, s *session) error {
	now := s.now()
	if _, err := s.portal.MyBookings.Load(c.Context, now); err != nil {
		return err
	}
	view, err := s.portal.MyBookings.Cancel(c.Context, c.String("id"), now)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Cancelled booking %s\n", view.Booking.ID)
	renderBookings(c.App.Writer, []presentation.BookingView{view})
	return nil
}
