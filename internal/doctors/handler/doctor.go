package handler

import (
	"net/http"

	"docbook/internal/doctors/service"
	httputil "docbook/pkg/http"
	"docbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type DoctorHandler struct {
	service service.DoctorService
	log     *logger.Logger
}

func NewDoctorHandler(service service.DoctorService, log *logger.Logger) *DoctorHandler {
	return &DoctorHandler{
		service: service,
		log:     log,
	}
}

func (h *DoctorHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	doctors, err := h.service.GetAll(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteOK(w, doctors)
}

func (h *DoctorHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	doctor, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteOK(w, doctor)
}

func (h *DoctorHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/doctor", h.GetAll)
	router.GET("/doctor/:id", h.GetByID)
}
