package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ewilliams-labs/guessfm/internal/core/services"
)

type startGameRequest struct {
	Artist    string `json:"artist"`
	MaxRounds int    `json:"maxRounds"`
}

type guessRequest struct {
	Guess string `json:"guess"`
}

type guessResponse struct {
	services.GuessResult
	Game gameView `json:"game"`
}

type skipResponse struct {
	Points float64  `json:"points"`
	Game   gameView `json:"game"`
}

type nextResponse struct {
	services.AdvanceResult
	Game gameView `json:"game"`
}

type endResponse struct {
	Summary services.Summary `json:"summary"`
}

// StartGame handles POST /games
func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	// 1. Decode the Request Body
	var req startGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// 2. Validate Input
	if req.MaxRounds < 0 {
		writeErrorWithCode(w, http.StatusBadRequest, "maxRounds must not be negative", errCodeValidation)
		return
	}

	// 3. Call the Service with this game's view as sink and transport
	view := newLiveView(h.prober)
	game, _, err := h.svc.StartGame(r.Context(), req.Artist, req.MaxRounds, view, view)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// 4. Return the Response
	w.Header().Set("Location", "/games/"+game.ID)
	writeJSON(w, http.StatusCreated, h.renderGame(r.Context(), game))
}

// GetGame handles GET /games/{id}
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.svc.Get(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.renderGame(r.Context(), game))
}

// SubmitGuess handles POST /games/{id}/guesses
func (h *Handler) SubmitGuess(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req guessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := r.PathValue("id")
	result, err := h.svc.SubmitGuess(id, req.Guess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	game, err := h.svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, guessResponse{GuessResult: result, Game: h.renderGame(r.Context(), game)})
}

// SkipRound handles POST /games/{id}/skip
func (h *Handler) SkipRound(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	points, err := h.svc.SkipRound(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	game, err := h.svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, skipResponse{Points: points, Game: h.renderGame(r.Context(), game)})
}

// NextRound handles POST /games/{id}/next
func (h *Handler) NextRound(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, err := h.svc.AdvanceRound(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	game, err := h.svc.Get(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nextResponse{AdvanceResult: result, Game: h.renderGame(r.Context(), game)})
}

// EndGame handles DELETE /games/{id}
func (h *Handler) EndGame(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	summary, err := h.svc.EndGame(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, endResponse{Summary: summary})
}
