package handler

import (
	"context"
	"net/http"

	"docbook/internal/bookings/events"
	"docbook/internal/bookings/repository"
	"docbook/internal/bookings/service"
	httputil "docbook/pkg/http"
	"docbook/pkg/logger"
	"docbook/pkg/middleware"
	"docbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

// eventContext carries the request id into published booking events.
func eventContext(r *http.Request) context.Context {
	return events.WithCorrelationID(r.Context(), middleware.RequestID(r.Context()))
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.NewBookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.Create(eventContext(r), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteCreated(w, booking)
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteOK(w, booking)
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	filter := repository.Filter{
		DoctorID: query.Get("doctorId"),
		Date:     query.Get("date"),
	}

	bookings, err := h.service.GetAll(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.log.Debug("Bookings listed", "doctor_id", filter.DoctorID, "date", filter.Date, "count", len(bookings))
	httputil.WriteOK(w, bookings)
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.BookingStatusUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.UpdateStatus(eventContext(r), ps.ByName("id"), &update)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteOK(w, booking)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/booking", h.GetAll)
	router.GET("/booking/:id", h.GetByID)
	router.POST("/booking", h.Create)
	router.PATCH("/booking/:id", h.UpdateStatus)
}
