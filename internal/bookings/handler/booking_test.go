package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docbook/internal/bookings/repository"
	apperrors "docbook/pkg/errors"
	"docbook/pkg/logger"
	"docbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockBookingService struct {
	createFunc       func(ctx context.Context, req *model.NewBookingRequest) (*model.Booking, error)
	getAllFunc       func(ctx context.Context, filter repository.Filter) ([]*model.Booking, error)
	updateStatusFunc func(ctx context.Context, id string, update *model.BookingStatusUpdate) (*model.Booking, error)
}

func (m *mockBookingService) Create(ctx context.Context, req *model.NewBookingRequest) (*model.Booking, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return &model.Booking{ID: "b1"}, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "b1" {
		return &model.Booking{ID: "b1", Status: model.StatusConfirmed}, nil
	}
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (m *mockBookingService) GetAll(ctx context.Context, filter repository.Filter) ([]*model.Booking, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx, filter)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingService) UpdateStatus(ctx context.Context, id string, update *model.BookingStatusUpdate) (*model.Booking, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, update)
	}
	return &model.Booking{ID: id, Status: update.Status}, nil
}

func newRouter(svc *mockBookingService) *httprouter.Router {
	router := httprouter.New()
	NewBookingHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestCreate_Returns201WithBooking(t *testing.T) {
	var got model.NewBookingRequest
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, req *model.NewBookingRequest) (*model.Booking, error) {
			got = *req
			return &model.Booking{
				ID: "b7", Name: req.Name, DoctorID: req.DoctorID, Date: req.Date, Start: req.Start,
				Status: model.StatusConfirmed,
			}, nil
		},
	}

	body := `{"name":"Ann Lee","doctorId":"d1","date":"2026-10-15","start":10}`
	req := httptest.NewRequest(http.MethodPost, "/booking", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %q)", rec.Code, rec.Body.String())
	}
	if got.DoctorID != "d1" || got.Start != 10 {
		t.Errorf("service received %+v", got)
	}

	var booking model.Booking
	if err := json.NewDecoder(rec.Body).Decode(&booking); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if booking.ID != "b7" || booking.Status != model.StatusConfirmed {
		t.Errorf("unexpected booking: %+v", booking)
	}
}

func TestCreate_ErrorsArePlainText(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, req *model.NewBookingRequest) (*model.Booking, error) {
			return nil, apperrors.Conflict("This time slot has already been booked")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/booking", strings.NewReader(`{"name":"A","doctorId":"d1","date":"2026-10-15","start":10}`))
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if rec.Body.String() != "This time slot has already been booked" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestCreate_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/booking", strings.NewReader(`{"name":`))
	rec := httptest.NewRecorder()
	newRouter(&mockBookingService{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetAll_PassesFilters(t *testing.T) {
	var got repository.Filter
	svc := &mockBookingService{
		getAllFunc: func(ctx context.Context, filter repository.Filter) ([]*model.Booking, error) {
			got = filter
			return []*model.Booking{{ID: "b1"}, {ID: "b2"}}, nil
		},
	}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/booking?doctorId=d1&date=2026-10-15", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got.DoctorID != "d1" || got.Date != "2026-10-15" {
		t.Errorf("filter = %+v", got)
	}

	var bookings []model.Booking
	if err := json.NewDecoder(rec.Body).Decode(&bookings); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(bookings) != 2 {
		t.Errorf("got %d bookings, want 2", len(bookings))
	}
}

func TestGetByID(t *testing.T) {
	router := newRouter(&mockBookingService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/booking/b1", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/booking/zz", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUpdateStatus(t *testing.T) {
	var gotID string
	var gotStatus model.Status
	svc := &mockBookingService{
		updateStatusFunc: func(ctx context.Context, id string, update *model.BookingStatusUpdate) (*model.Booking, error) {
			gotID, gotStatus = id, update.Status
			return &model.Booking{ID: id, Status: update.Status}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/booking/b1", strings.NewReader(`{"status":"cancelled"}`))
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotID != "b1" || gotStatus != model.StatusCancelled {
		t.Errorf("service got id=%q status=%q", gotID, gotStatus)
	}
	if !strings.Contains(rec.Body.String(), `"status":"cancel"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestUpdateStatus_Rejected(t *testing.T) {
	svc := &mockBookingService{
		updateStatusFunc: func(ctx context.Context, id string, update *model.BookingStatusUpdate) (*model.Booking, error) {
			return nil, apperrors.Validation(`status "confirmed" is not allowed, only "cancel"`, nil)
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/booking/b1", strings.NewReader(`{"status":"confirmed"}`))
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}
