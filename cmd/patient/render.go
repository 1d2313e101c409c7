package main

import (
	"fmt"
	"io"
	"strings"

	"docbook/internal/portal"
	"docbook/pkg/presentation"
	"docbook/pkg/timeofday"
)

func renderDoctors(w io.Writer, profiles []presentation.DoctorProfile) {
	if len(profiles) == 0 {
		fmt.Fprintln(w, "No doctors found")
		return
	}
	for i, p := range profiles {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s [%s]\n", p.Doctor.Name, p.Doctor.ID)
		fmt.Fprintf(w, "  %s\n", p.FullAddress)
		fmt.Fprintf(w, "  %s\n", p.Description)
		for _, h := range p.Hours {
			fmt.Fprintf(w, "  %s  %s\n", h.Day, h.Label)
		}
	}
}

func renderAvailability(w io.Writer, state portal.FormState) {
	a := state.Availability
	fmt.Fprintf(w, "%s on %s\n", state.Doctor.Doctor.Name, a.Date)
	fmt.Fprintf(w, "Bookable dates: %s to %s\n", a.MinDate, a.MaxDate)
	if len(a.UnavailableDates) > 0 {
		fmt.Fprintf(w, "Closed: %s\n", strings.Join(a.UnavailableDates, ", "))
	}
	if !a.Open {
		fmt.Fprintln(w, "Closed on this date")
		return
	}
	fmt.Fprintf(w, "Opening hours: %s - %s\n",
		timeofday.ToTimeString(a.Window.Start), timeofday.ToTimeString(a.Window.End))

	unavailable := make(map[string]bool, len(a.Slots.Unavailable))
	for _, u := range a.Slots.Unavailable {
		unavailable[u] = true
	}
	for _, slot := range a.Slots.Possible {
		switch {
		case unavailable[slot]:
			fmt.Fprintf(w, "  %s  unavailable\n", slot)
		case slot == a.Slots.Default:
			fmt.Fprintf(w, "  %s  available (default)\n", slot)
		default:
			fmt.Fprintf(w, "  %s  available\n", slot)
		}
	}
	if a.Slots.Default == "" {
		fmt.Fprintln(w, "No times left on this date")
	}
}

func renderBookings(w io.Writer, views []presentation.BookingView) {
	if len(views) == 0 {
		fmt.Fprintln(w, "No bookings yet")
		return
	}
	for _, v := range views {
		doctor := v.DoctorName
		if v.FullAddress != "" {
			doctor += ", " + v.FullAddress
		}
		line := fmt.Sprintf("%s  %s %s-%s  %-9s  %s  %s",
			v.Booking.ID, v.Booking.Date, v.Start, v.End, v.Status, v.Booking.Name, doctor)
		if v.Cancellable {
			line += "  (cancellable)"
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}
