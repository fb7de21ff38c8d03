package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ewilliams-labs/guessfm/internal/core/domain"
)

const (
	ProviderITunes  = "itunes"
	ProviderSpotify = "spotify"

	StorageSQLite = "sqlite"
	StorageNone   = "none"
)

// Config is the process configuration read from the environment.
type Config struct {
	Port string

	CatalogProvider string
	ITunes          ITunesConfig
	Spotify         SpotifyConfig
	HTTP            HTTPConfig

	StorageDriver string
	SQLitePath    string
	CacheTTL      time.Duration

	Game GameConfig

	PreviewWorkers int
	PreviewQueue   int
}

type ITunesConfig struct {
	BaseURL   string
	SongLimit int
	Country   string
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
}

// HTTPConfig controls outbound requests to catalog providers.
type HTTPConfig struct {
	MaxRetries    int
	RetryBackoff  time.Duration
	RatePerMinute int
}

type GameConfig struct {
	MaxRounds        int
	ExhaustionPolicy domain.ExhaustionPolicy
	ExcludedKeywords []string
	IdleTimeout      time.Duration
}

// Load reads an optional .env file from the working directory and then the
// process environment. Variables already set in the environment win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("WARN config: failed to read .env: %v", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment alone.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		CatalogProvider: strings.ToLower(getEnv("CATALOG_PROVIDER", ProviderITunes)),
		ITunes: ITunesConfig{
			BaseURL:   getEnv("ITUNES_BASE_URL", "https://itunes.apple.com"),
			SongLimit: getPositiveInt("ITUNES_SONG_LIMIT", 200),
			Country:   getEnv("ITUNES_COUNTRY", "US"),
		},
		Spotify: SpotifyConfig{
			ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
			ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
			BaseURL:      getEnv("SPOTIFY_BASE_URL", "https://api.spotify.com/v1"),
			TokenURL:     getEnv("SPOTIFY_TOKEN_URL", "https://accounts.spotify.com/api/token"),
		},
		HTTP: HTTPConfig{
			MaxRetries:    getPositiveInt("HTTP_MAX_RETRIES", 3),
			RetryBackoff:  time.Duration(getPositiveInt("HTTP_RETRY_BACKOFF_MS", 500)) * time.Millisecond,
			RatePerMinute: getPositiveInt("HTTP_RATE_PER_MINUTE", 20),
		},
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageSQLite)),
		SQLitePath:    getEnv("SQLITE_PATH", "guessfm.db"),
		CacheTTL:      getDuration("CATALOG_CACHE_TTL", 24*time.Hour),
		Game: GameConfig{
			MaxRounds:        getPositiveInt("GAME_MAX_ROUNDS", 15),
			ExcludedKeywords: getList("GAME_EXCLUDED_KEYWORDS", domain.DefaultExcludedKeywords),
			IdleTimeout:      getDuration("GAME_IDLE_TIMEOUT", 30*time.Minute),
		},
		PreviewWorkers: getPositiveInt("PREVIEW_WORKERS", 2),
		PreviewQueue:   getPositiveInt("PREVIEW_QUEUE", 100),
	}

	policy, err := domain.ParseExhaustionPolicy(strings.ToLower(os.Getenv("GAME_EXHAUSTION_POLICY")))
	if err != nil {
		return Config{}, fmt.Errorf("config: GAME_EXHAUSTION_POLICY: %w", err)
	}
	cfg.Game.ExhaustionPolicy = policy

	switch cfg.CatalogProvider {
	case ProviderITunes:
	case ProviderSpotify:
		if cfg.Spotify.ClientID == "" || cfg.Spotify.ClientSecret == "" {
			return Config{}, errors.New("config: SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are required for the spotify provider")
		}
	default:
		return Config{}, fmt.Errorf("config: unknown CATALOG_PROVIDER %q", cfg.CatalogProvider)
	}

	switch cfg.StorageDriver {
	case StorageSQLite, StorageNone:
	default:
		return Config{}, fmt.Errorf("config: unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getPositiveInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return parsed
		}
		log.Printf("WARN config: ignoring invalid %s=%q", key, raw)
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			return parsed
		}
		log.Printf("WARN config: ignoring invalid %s=%q", key, raw)
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
