package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/ewilliams-labs/guessfm/internal/core/domain"
)

var (
	// ErrArtistNotFound indicates the provider had no artist for the query.
	ErrArtistNotFound = errors.New("artist not found")
	// ErrNetwork indicates the provider could not be reached or kept failing.
	ErrNetwork = errors.New("catalog provider unavailable")
)

// ArtistNotFoundError provides context for a failed artist lookup.
type ArtistNotFoundError struct {
	Query string
}

func (e *ArtistNotFoundError) Error() string {
	if e.Query == "" {
		return ErrArtistNotFound.Error()
	}
	return fmt.Sprintf("no artist found for %q", e.Query)
}

func (e *ArtistNotFoundError) Is(target error) bool {
	return target == ErrArtistNotFound
}

// NetworkError wraps a transport failure talking to a catalog provider.
type NetworkError struct {
	Provider string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// ArtistCatalog is an artist's unfiltered song list as a provider returned it.
type ArtistCatalog struct {
	ArtistID   string
	ArtistName string
	Tracks     []domain.RawTrack
}

// CatalogProvider fetches an artist's catalog from a music metadata source.
type CatalogProvider interface {
	FetchArtistCatalog(ctx context.Context, artistName string) (ArtistCatalog, error)
}
