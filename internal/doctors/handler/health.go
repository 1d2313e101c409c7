package handler

import (
	"context"
	"net/http"
	"time"

	httputil "docbook/pkg/http"
	"docbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const readyTimeout = 2 * time.Second

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Check is one dependency /ready must reach.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

func MongoCheck(db Pinger) Check {
	return Check{
		Name: "mongo",
		Ping: func(ctx context.Context) error { return db.Ping(ctx, readpref.Primary()) },
	}
}

// HealthHandler answers /health unconditionally and /ready only while
// every check passes.
type HealthHandler struct {
	checks []Check
	log    *logger.Logger
}

func NewHealthHandler(log *logger.Logger, checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks, log: log}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	httputil.WriteOK(w, HealthResponse{Status: "ok"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ready", Checks: make(map[string]string, len(h.checks))}
	for _, c := range h.checks {
		if err := c.Ping(ctx); err != nil {
			h.log.Error("Readiness check failed", "check", c.Name, "error", err)
			resp.Status = "unavailable"
			resp.Checks[c.Name] = "error"
			continue
		}
		resp.Checks[c.Name] = "ok"
	}

	if resp.Status != "ready" {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	httputil.WriteOK(w, resp)
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
