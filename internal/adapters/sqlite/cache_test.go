package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ewilliams-labs/guessfm/internal/core/ports"
)

type countingProvider struct {
	calls   int
	catalog ports.ArtistCatalog
	err     error
}

func (p *countingProvider) FetchArtistCatalog(context.Context, string) (ports.ArtistCatalog, error) {
	p.calls++
	return p.catalog, p.err
}

func TestCatalogCache_FetchArtistCatalog(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	inner := &countingProvider{catalog: sampleCatalog()}
	cache := NewCatalogCache(newTestAdapter(t), inner, time.Hour, clock)
	ctx := context.Background()

	// miss goes to the provider
	got, err := cache.FetchArtistCatalog(ctx, "Jack Johnson")
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if inner.calls != 1 || len(got.Tracks) != 3 {
		t.Fatalf("first fetch: calls=%d tracks=%d", inner.calls, len(got.Tracks))
	}

	// same artist, different spelling, still fresh
	now = now.Add(30 * time.Minute)
	got, err = cache.FetchArtistCatalog(ctx, "  JACK  johnson ")
	if err != nil {
		t.Fatalf("cached fetch: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("fresh entry hit the provider: calls=%d", inner.calls)
	}
	if got.ArtistName != "Jack Johnson" || len(got.Tracks) != 3 {
		t.Fatalf("cached catalog: %+v", got)
	}

	// stale entry refreshes
	now = now.Add(time.Hour)
	if _, err := cache.FetchArtistCatalog(ctx, "jack johnson"); err != nil {
		t.Fatalf("stale fetch: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("stale entry not refreshed: calls=%d", inner.calls)
	}
}

func TestCatalogCache_ProviderErrorsPassThrough(t *testing.T) {
	inner := &countingProvider{err: &ports.ArtistNotFoundError{Query: "nobody"}}
	a := newTestAdapter(t)
	cache := NewCatalogCache(a, inner, time.Hour, nil)

	if _, err := cache.FetchArtistCatalog(context.Background(), "nobody"); !errors.Is(err, ports.ErrArtistNotFound) {
		t.Fatalf("got %v, want ErrArtistNotFound", err)
	}
	if _, found, _ := a.LoadCatalog(context.Background(), "nobody"); found {
		t.Fatalf("failed lookup was cached")
	}
}

func TestCatalogCache_StoreFailureStillServes(t *testing.T) {
	inner := &countingProvider{catalog: sampleCatalog()}
	a := newTestAdapter(t)
	cache := NewCatalogCache(a, inner, time.Hour, nil)
	_ = a.Close()

	got, err := cache.FetchArtistCatalog(context.Background(), "Jack Johnson")
	if err != nil {
		t.Fatalf("fetch with closed store: %v", err)
	}
	if len(got.Tracks) != 3 || inner.calls != 1 {
		t.Fatalf("got %d tracks after %d calls", len(got.Tracks), inner.calls)
	}
}
