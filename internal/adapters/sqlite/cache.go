package sqlite

import (
	"context"
	"log"
	"time"

	"github.com/ewilliams-labs/guessfm/internal/core/domain"
	"github.com/ewilliams-labs/guessfm/internal/core/ports"
)

// CatalogCache is a read-through cache in front of another catalog provider.
// Entries are keyed by the normalized artist query and expire after ttl.
type CatalogCache struct {
	store *Adapter
	inner ports.CatalogProvider
	ttl   time.Duration
	now   func() time.Time
}

// compile-time interface assertion
var _ ports.CatalogProvider = (*CatalogCache)(nil)

// NewCatalogCache wraps inner. A nil clock uses time.Now.
func NewCatalogCache(store *Adapter, inner ports.CatalogProvider, ttl time.Duration, now func() time.Time) *CatalogCache {
	if now == nil {
		now = time.Now
	}
	return &CatalogCache{store: store, inner: inner, ttl: ttl, now: now}
}

// FetchArtistCatalog serves a fresh cached catalog or fetches and stores a new one.
// Cache read and write failures are logged; only provider errors are returned.
func (c *CatalogCache) FetchArtistCatalog(ctx context.Context, artistName string) (ports.ArtistCatalog, error) {
	key := domain.Normalize(artistName)
	if key == "" {
		return c.inner.FetchArtistCatalog(ctx, artistName)
	}

	cached, found, err := c.store.LoadCatalog(ctx, key)
	switch {
	case err != nil:
		log.Printf("WARN sqlite cache: %v", err)
	case found && c.now().Sub(cached.FetchedAt) < c.ttl:
		log.Printf("DEBUG sqlite cache: hit for %q (%d records)", key, len(cached.Catalog.Tracks)) // #nosec G706 -- key is normalized to letters, digits and spaces
		return cached.Catalog, nil
	}

	catalog, err := c.inner.FetchArtistCatalog(ctx, artistName)
	if err != nil {
		return ports.ArtistCatalog{}, err
	}

	if err := c.store.SaveCatalog(ctx, key, catalog, c.now()); err != nil {
		log.Printf("WARN sqlite cache: %v", err)
	}
	return catalog, nil
}
