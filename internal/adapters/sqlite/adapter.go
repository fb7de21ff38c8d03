// Package sqlite provides a SQLite-backed catalog cache and preview hint store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/ewilliams-labs/guessfm/internal/core/domain"
	"github.com/ewilliams-labs/guessfm/internal/core/ports"
)

// compile-time interface assertion
var _ ports.PreviewHintRepository = (*Adapter)(nil)

// Adapter stores artist catalogs and preview hints in SQLite.
type Adapter struct {
	db *sql.DB
}

// CachedCatalog is a stored catalog and the time it was fetched from the provider.
type CachedCatalog struct {
	Catalog   ports.ArtistCatalog
	FetchedAt time.Time
}

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite cache: failed to open db: %w", err)
	}
	// one connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	// Verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite cache: failed to ping db: %w", err)
	}

	adapter := &Adapter{db: db}

	if err := adapter.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite cache: migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// LoadCatalog returns the catalog stored under key. found is false when
// nothing is stored.
func (a *Adapter) LoadCatalog(ctx context.Context, key string) (cached CachedCatalog, found bool, err error) {
	var fetchedAt int64
	row := a.db.QueryRowContext(ctx, "SELECT artist_id, artist_name, fetched_at FROM artist_catalogs WHERE query_key = ?", key)
	if err := row.Scan(&cached.Catalog.ArtistID, &cached.Catalog.ArtistName, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CachedCatalog{}, false, nil
		}
		return CachedCatalog{}, false, fmt.Errorf("sqlite cache: failed to load catalog: %w", err)
	}
	cached.FetchedAt = time.UnixMilli(fetchedAt).UTC()

	rows, err := a.db.QueryContext(ctx, `
		SELECT kind, track_id, title, artist_name, preview_url, artwork_url
		FROM catalog_tracks
		WHERE query_key = ?
		ORDER BY position ASC
	`, key)
	if err != nil {
		return CachedCatalog{}, false, fmt.Errorf("sqlite cache: failed to load catalog tracks: %w", err)
	}
	defer rows.Close()

	cached.Catalog.Tracks = []domain.RawTrack{}
	for rows.Next() {
		var t domain.RawTrack
		if err := rows.Scan(&t.Kind, &t.ID, &t.Title, &t.ArtistName, &t.PreviewURL, &t.ArtworkURL); err != nil {
			return CachedCatalog{}, false, fmt.Errorf("sqlite cache: failed to scan catalog track: %w", err)
		}
		cached.Catalog.Tracks = append(cached.Catalog.Tracks, t)
	}
	if err := rows.Err(); err != nil {
		return CachedCatalog{}, false, fmt.Errorf("sqlite cache: failed to iterate catalog tracks: %w", err)
	}

	return cached, true, nil
}

// SaveCatalog replaces whatever is stored under key with catalog.
func (a *Adapter) SaveCatalog(ctx context.Context, key string, catalog ports.ArtistCatalog, fetchedAt time.Time) error {
	// 1. Start Transaction
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite cache: failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	// 2. Upsert the artist row
	queryArtist := `
		INSERT INTO artist_catalogs (query_key, artist_id, artist_name, fetched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(query_key) DO UPDATE SET
			artist_id=excluded.artist_id,
			artist_name=excluded.artist_name,
			fetched_at=excluded.fetched_at;
	`
	if _, err := tx.ExecContext(ctx, queryArtist, key, catalog.ArtistID, catalog.ArtistName, fetchedAt.UnixMilli()); err != nil {
		return fmt.Errorf("sqlite cache: failed to save catalog metadata: %w", err)
	}

	// 3. Drop the previous track list
	if _, err := tx.ExecContext(ctx, "DELETE FROM catalog_tracks WHERE query_key = ?", key); err != nil {
		return fmt.Errorf("sqlite cache: failed to clear old tracks: %w", err)
	}

	// 4. Insert tracks in provider order
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO catalog_tracks (query_key, position, kind, track_id, title, artist_name, preview_url, artwork_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("sqlite cache: failed to prepare track insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range catalog.Tracks {
		if _, err := stmt.ExecContext(ctx, key, i, t.Kind, t.ID, t.Title, t.ArtistName, t.PreviewURL, t.ArtworkURL); err != nil {
			return fmt.Errorf("sqlite cache: failed to save track %q: %w", t.ID, err)
		}
	}

	// 5. Commit Transaction
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite cache: transaction commit failed: %w", err)
	}

	return nil
}

// GetPreviewHint returns the last probe result for url.
func (a *Adapter) GetPreviewHint(ctx context.Context, url string) (domain.PreviewHint, error) {
	var hint domain.PreviewHint
	var playable int
	var checkedAt int64
	row := a.db.QueryRowContext(ctx, `
		SELECT url, playable, content_type, seconds, error, checked_at
		FROM preview_hints WHERE url = ?
	`, url)
	if err := row.Scan(&hint.URL, &playable, &hint.ContentType, &hint.Seconds, &hint.Error, &checkedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PreviewHint{}, ports.ErrHintNotFound
		}
		return domain.PreviewHint{}, fmt.Errorf("sqlite cache: failed to load preview hint: %w", err)
	}
	hint.Playable = playable != 0
	hint.CheckedAt = time.UnixMilli(checkedAt).UTC()
	return hint, nil
}

// SavePreviewHint stores or replaces the probe result for hint.URL.
func (a *Adapter) SavePreviewHint(ctx context.Context, hint domain.PreviewHint) error {
	playable := 0
	if hint.Playable {
		playable = 1
	}
	query := `
		INSERT INTO preview_hints (url, playable, content_type, seconds, error, checked_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			playable=excluded.playable,
			content_type=excluded.content_type,
			seconds=excluded.seconds,
			error=excluded.error,
			checked_at=excluded.checked_at;
	`
	if _, err := a.db.ExecContext(ctx, query, hint.URL, playable, hint.ContentType, hint.Seconds, hint.Error, hint.CheckedAt.UnixMilli()); err != nil {
		return fmt.Errorf("sqlite cache: failed to save preview hint: %w", err)
	}
	return nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS artist_catalogs (
		query_key TEXT PRIMARY KEY,
		artist_id TEXT NOT NULL,
		artist_name TEXT NOT NULL,
		fetched_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS catalog_tracks (
		query_key TEXT NOT NULL,
		position INTEGER NOT NULL,
		kind TEXT NOT NULL,
		track_id TEXT NOT NULL,
		title TEXT NOT NULL,
		artist_name TEXT NOT NULL,
		preview_url TEXT NOT NULL DEFAULT '',
		artwork_url TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (query_key, position),
		FOREIGN KEY(query_key) REFERENCES artist_catalogs(query_key) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS preview_hints (
		url TEXT PRIMARY KEY,
		playable INTEGER NOT NULL,
		content_type TEXT NOT NULL DEFAULT '',
		seconds REAL NOT NULL DEFAULT 0,
		checked_at INTEGER NOT NULL
	);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	// databases created before probe errors were recorded
	if _, err := a.db.Exec("ALTER TABLE preview_hints ADD COLUMN error TEXT NOT NULL DEFAULT ''"); err != nil {
		if !isDuplicateColumnError(err) {
			return err
		}
	}

	return nil
}

func isDuplicateColumnError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate column") || strings.Contains(err.Error(), "already exists"))
}
