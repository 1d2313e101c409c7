// Package client is the typed REST client for the booking API.
package client

import "time"

type Client struct {
	Doctors  *DoctorClient
	Bookings *BookingClient
	HTTP     *HttpClient
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	httpClient := NewHttpClient(baseURL, timeout)
	return &Client{
		Doctors:  NewDoctorClient(httpClient),
		Bookings: NewBookingClient(httpClient),
		HTTP:     httpClient,
	}
}
