package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ewilliams-labs/guessfm/internal/adapters/httpretry"
	"github.com/ewilliams-labs/guessfm/internal/adapters/itunes"
	"github.com/ewilliams-labs/guessfm/internal/adapters/rest"
	"github.com/ewilliams-labs/guessfm/internal/adapters/spotify"
	"github.com/ewilliams-labs/guessfm/internal/adapters/sqlite"
	"github.com/ewilliams-labs/guessfm/internal/config"
	"github.com/ewilliams-labs/guessfm/internal/core/ports"
	"github.com/ewilliams-labs/guessfm/internal/core/services"
	"github.com/ewilliams-labs/guessfm/internal/worker"
)

func main() {
	// 1. Configuration (.env + environment)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Initialize "Driven" Adapters (The Tools)
	// -- Catalog Provider
	limiter := httpretry.PerMinute(cfg.HTTP.RatePerMinute)

	var catalog ports.CatalogProvider
	switch cfg.CatalogProvider {
	case config.ProviderSpotify:
		httpClient := spotify.NewAuthHTTPClient(ctx, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.TokenURL)
		doer := httpretry.New("spotify adapter", httpClient, cfg.HTTP.MaxRetries, cfg.HTTP.RetryBackoff, limiter)
		catalog = spotify.NewClient(doer, cfg.Spotify.BaseURL)
	default:
		doer := httpretry.New("itunes adapter", nil, cfg.HTTP.MaxRetries, cfg.HTTP.RetryBackoff, limiter)
		catalog = itunes.NewClient(doer, cfg.ITunes.BaseURL, cfg.ITunes.SongLimit, cfg.ITunes.Country)
	}
	log.Printf("INFO catalog provider: %s", cfg.CatalogProvider)

	// -- Storage (catalog cache + preview hints)
	var hints ports.PreviewHintRepository
	switch cfg.StorageDriver {
	case config.StorageSQLite:
		dbAdapter, err := sqlite.NewAdapter(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize database: %v", err)
		}
		defer dbAdapter.Close()
		catalog = sqlite.NewCatalogCache(dbAdapter, catalog, cfg.CacheTTL, nil)
		hints = dbAdapter
	default:
		hints = worker.NewMemoryHints()
	}

	// 3. Initialize Core Logic (The Driver)
	svc := services.NewGameService(catalog, services.GameConfig{
		RoundCap:         cfg.Game.MaxRounds,
		Policy:           cfg.Game.ExhaustionPolicy,
		ExcludedKeywords: cfg.Game.ExcludedKeywords,
	})

	// 4. Background preview probes
	pool := worker.NewPool(hints, cfg.PreviewQueue)
	pool.Start(cfg.PreviewWorkers)
	defer pool.Stop()

	go sweepIdleGames(ctx, svc, cfg.Game.IdleTimeout)

	// 5. Initialize "Driving" Adapter (The Interface)
	handler := rest.NewHandler(svc, pool)

	// 6. Start the Server
	addr := ":" + cfg.Port
	log.Println("------------------------------------------------")
	log.Printf("🎵 guessfm API is running on http://localhost%s", addr)
	log.Println("------------------------------------------------")

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
}

// sweepIdleGames drops abandoned games until ctx is done.
func sweepIdleGames(ctx context.Context, svc *services.GameService, idle time.Duration) {
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.Sweep(idle)
		}
	}
}
