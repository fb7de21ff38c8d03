package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ewilliams-labs/guessfm/internal/core/domain"
	"github.com/ewilliams-labs/guessfm/internal/core/services"
	"github.com/ewilliams-labs/guessfm/internal/worker"
)

// Prober queues preview checks and reports their results.
type Prober interface {
	Submit(job worker.Job)
	Hint(ctx context.Context, url string) (domain.PreviewHint, bool)
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc    *services.GameService // Dependency on the Core Service
	prober Prober
	router *http.ServeMux // Standard library router
}

// NewHandler initializes the HTTP adapter and sets up routes.
// prober may be nil, in which case previews are not checked.
func NewHandler(svc *services.GameService, prober Prober) *Handler {
	h := &Handler{
		svc:    svc,
		prober: prober,
		router: http.NewServeMux(),
	}

	// Register Routes
	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
// It acts as a proxy, passing the request to our internal router.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	// Health Check
	h.router.HandleFunc("GET /health", h.HealthCheck)
	// Games
	h.router.HandleFunc("POST /games", h.StartGame)
	h.router.HandleFunc("GET /games/{id}", h.GetGame)
	h.router.HandleFunc("POST /games/{id}/guesses", h.SubmitGuess)
	h.router.HandleFunc("POST /games/{id}/skip", h.SkipRound)
	h.router.HandleFunc("POST /games/{id}/next", h.NextRound)
	h.router.HandleFunc("DELETE /games/{id}", h.EndGame)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{"status": "ok", "games": h.svc.Count()})
}
