package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation classifies rejected user input. No state changes.
	ErrValidation = errors.New("domain: validation failed")
	// ErrStateGuard classifies operations called in the wrong lifecycle state.
	ErrStateGuard = errors.New("domain: operation not allowed in current state")
	// ErrNoSongsAvailable means the selector has nothing left to hand out.
	ErrNoSongsAvailable = errors.New("domain: no songs available")
)

// ValidationError reports user input that was refused.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("domain: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var (
	ErrEmptyGuess  = &ValidationError{Field: "guess", Reason: "please enter a guess"}
	ErrEmptyArtist = &ValidationError{Field: "artist", Reason: "please enter an artist"}
)

// StateGuardError reports a refused lifecycle operation.
type StateGuardError struct {
	Op     string
	Reason string
}

func (e *StateGuardError) Error() string {
	return fmt.Sprintf("domain: %s refused: %s", e.Op, e.Reason)
}

func (e *StateGuardError) Is(target error) bool {
	return target == ErrStateGuard
}

var (
	ErrRoundActive       = &StateGuardError{Op: "start round", Reason: "a round is already active"}
	ErrNoActiveRound     = &StateGuardError{Op: "round operation", Reason: "no active round"}
	ErrRoundLimitReached = &StateGuardError{Op: "round operation", Reason: "round limit reached"}
	ErrGameNotInProgress = &StateGuardError{Op: "game operation", Reason: "game is not in progress"}
	ErrRoundUnresolved   = &StateGuardError{Op: "advance", Reason: "current round has not been resolved"}
)

// DataShapeError reports a catalog response that does not have the expected shape.
type DataShapeError struct {
	Source string
	Err    error
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("domain: malformed %s data: %v", e.Source, e.Err)
}

func (e *DataShapeError) Unwrap() error {
	return e.Err
}

// CatalogExhaustedError is returned when every catalog track was played
// before the game reached its round limit.
type CatalogExhaustedError struct {
	Played      int
	CatalogSize int
}

func (e *CatalogExhaustedError) Error() string {
	return fmt.Sprintf("domain: catalog exhausted after %d of %d tracks", e.Played, e.CatalogSize)
}

func (e *CatalogExhaustedError) Unwrap() error {
	return ErrNoSongsAvailable
}
