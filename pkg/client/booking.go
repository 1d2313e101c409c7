package client

import (
	"context"
	"net/url"

	apperrors "docbook/pkg/errors"
	"docbook/pkg/model"

	"github.com/google/uuid"
)

const (
	bookingsResource = "bookings"
	bookingResource  = "booking"

	IdempotencyKeyHeader = "Idempotency-Key"
)

type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(httpClient *HttpClient) *BookingClient {
	return &BookingClient{httpClient: httpClient}
}

// BookingFilter narrows GET /booking. Empty fields are not sent.
type BookingFilter struct {
	DoctorID string
	Date     string
}

func (f BookingFilter) query() string {
	q := url.Values{}
	if f.DoctorID != "" {
		q.Set("doctorId", f.DoctorID)
	}
	if f.Date != "" {
		q.Set("date", f.Date)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (c *BookingClient) GetAll(ctx context.Context, filter BookingFilter) ([]model.Booking, error) {
	resp, err := c.httpClient.GET(ctx, "/booking"+filter.query())
	if err != nil {
		return nil, apperrors.FetchFailure(bookingsResource, 0, err)
	}
	if !resp.IsSuccess() {
		return nil, fetchError(bookingsResource, resp)
	}

	var bookings []model.Booking
	if err := resp.DecodeJSON(&bookings); err != nil {
		return nil, apperrors.FetchFailure(bookingsResource, resp.StatusCode, err)
	}
	return bookings, nil
}

func (c *BookingClient) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	resp, err := c.httpClient.GET(ctx, "/booking/"+url.PathEscape(id))
	if err != nil {
		return nil, apperrors.FetchFailure(bookingResource, 0, err)
	}
	if !resp.IsSuccess() {
		return nil, fetchError(bookingResource, resp)
	}

	var booking model.Booking
	if err := resp.DecodeJSON(&booking); err != nil {
		return nil, apperrors.FetchFailure(bookingResource, resp.StatusCode, err)
	}
	return &booking, nil
}

// Create submits a booking. Each call carries a fresh idempotency key so a
// transport-level resend of the same request is not booked twice.
func (c *BookingClient) Create(ctx context.Context, req model.NewBookingRequest) (*model.Booking, error) {
	headers := map[string]string{IdempotencyKeyHeader: uuid.NewString()}

	resp, err := c.httpClient.POST(ctx, "/booking", req, headers)
	if err != nil {
		return nil, apperrors.SubmissionFailure("", 0, err)
	}
	if !resp.IsSuccess() {
		return nil, apperrors.SubmissionFailure(GetErrorMessage(resp), resp.StatusCode, nil)
	}

	var booking model.Booking
	if err := resp.DecodeJSON(&booking); err != nil {
		return nil, apperrors.SubmissionFailure("", resp.StatusCode, err)
	}
	return &booking, nil
}

func (c *BookingClient) UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Booking, error) {
	body := model.BookingStatusUpdate{Status: status}

	resp, err := c.httpClient.PATCH(ctx, "/booking/"+url.PathEscape(id), body)
	if err != nil {
		return nil, apperrors.SubmissionFailure("", 0, err)
	}
	if !resp.IsSuccess() {
		return nil, apperrors.SubmissionFailure(GetErrorMessage(resp), resp.StatusCode, nil)
	}

	var booking model.Booking
	if err := resp.DecodeJSON(&booking); err != nil {
		return nil, apperrors.SubmissionFailure("", resp.StatusCode, err)
	}
	return &booking, nil
}
