package rest

import (
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"

	"github.com/ewilliams-labs/guessfm/internal/core/domain"
	"github.com/ewilliams-labs/guessfm/internal/core/ports"
	"github.com/ewilliams-labs/guessfm/internal/core/services"
)

const (
	errCodeValidation          = "VALIDATION"
	errCodeArtistNotFound      = "ARTIST_NOT_FOUND"
	errCodeNoSongs             = "NO_SONGS"
	errCodeBadCatalog          = "BAD_CATALOG"
	errCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	errCodeStateGuard          = "STATE_GUARD"
	errCodeCatalogExhausted    = "CATALOG_EXHAUSTED"
	errCodeGameNotFound        = "GAME_NOT_FOUND"
	errCodeInternal            = "INTERNAL"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("WARN rest: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeErrorWithCode(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeServiceError maps a core error to its HTTP status and error code.
func writeServiceError(w http.ResponseWriter, err error) {
	var exhausted *domain.CatalogExhaustedError
	var shapeErr *domain.DataShapeError

	switch {
	case errors.Is(err, services.ErrGameNotFound):
		writeErrorWithCode(w, http.StatusNotFound, "game not found", errCodeGameNotFound)
	case errors.Is(err, domain.ErrValidation):
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), errCodeValidation)
	case errors.Is(err, ports.ErrArtistNotFound):
		writeErrorWithCode(w, http.StatusNotFound, err.Error(), errCodeArtistNotFound)
	case errors.As(err, &exhausted):
		writeErrorWithCode(w, http.StatusConflict, err.Error(), errCodeCatalogExhausted)
	case errors.Is(err, domain.ErrNoSongsAvailable):
		writeErrorWithCode(w, http.StatusUnprocessableEntity, "no playable songs found for this artist", errCodeNoSongs)
	case errors.As(err, &shapeErr):
		log.Printf("WARN rest: %v", err)
		writeErrorWithCode(w, http.StatusBadGateway, "catalog provider returned unexpected data", errCodeBadCatalog)
	case errors.Is(err, ports.ErrNetwork):
		log.Printf("WARN rest: %v", err)
		writeErrorWithCode(w, http.StatusBadGateway, "catalog provider unavailable, try again later", errCodeUpstreamUnavailable)
	case errors.Is(err, domain.ErrStateGuard):
		writeErrorWithCode(w, http.StatusConflict, err.Error(), errCodeStateGuard)
	default:
		log.Printf("WARN rest: unhandled error: %v", err)
		writeErrorWithCode(w, http.StatusInternalServerError, "internal error", errCodeInternal)
	}
}

func isJSONContentType(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
