package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ewilliams-labs/guessfm/internal/core/domain"
	"github.com/ewilliams-labs/guessfm/internal/core/ports"
)

// ErrGameNotFound indicates an unknown or expired game id.
var ErrGameNotFound = errors.New("service: game not found")

// GameConfig holds the game rules shared by every game a GameService starts.
type GameConfig struct {
	RoundCap         int
	Policy           domain.ExhaustionPolicy
	ExcludedKeywords []string
	Rules            *domain.ScoringRules
	Clock            domain.Clock
	// NewRand supplies a random source per game. Nil uses a fresh seeded PCG.
	NewRand func() domain.RandomSource
}

// Game is one running game and the catalog it was started from.
type Game struct {
	ID          string
	ArtistID    string
	ArtistName  string
	Suggestions []string
	Session     *Session
	// Sink and Playback are the per-game adapters passed to StartGame.
	Sink     ports.PresentationSink
	Playback ports.PlaybackTransport

	mu         sync.Mutex
	lastActive time.Time
}

func (g *Game) touch(now time.Time) {
	g.mu.Lock()
	g.lastActive = now
	g.mu.Unlock()
}

func (g *Game) idleSince() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastActive
}

// GameService starts games from a catalog provider and keeps them by id.
type GameService struct {
	catalog ports.CatalogProvider
	cfg     GameConfig

	mu    sync.RWMutex
	games map[string]*Game
}

// NewGameService constructs a GameService.
func NewGameService(catalog ports.CatalogProvider, cfg GameConfig) *GameService {
	if cfg.ExcludedKeywords == nil {
		cfg.ExcludedKeywords = domain.DefaultExcludedKeywords
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &GameService{
		catalog: catalog,
		cfg:     cfg,
		games:   make(map[string]*Game),
	}
}

// StartGame fetches the artist's catalog, filters it and opens the first round.
// sink and playback receive this game's updates; either may be nil.
func (s *GameService) StartGame(ctx context.Context, artistName string, maxRounds int, sink ports.PresentationSink, playback ports.PlaybackTransport) (*Game, domain.Track, error) {
	artistName = strings.TrimSpace(artistName)
	if artistName == "" {
		return nil, domain.Track{}, domain.ErrEmptyArtist
	}

	result, err := s.catalog.FetchArtistCatalog(ctx, artistName)
	if err != nil {
		return nil, domain.Track{}, fmt.Errorf("service: failed to load catalog: %w", err)
	}

	tracks, err := domain.FilterCatalog(result.Tracks, result.ArtistName, s.cfg.ExcludedKeywords)
	if err != nil {
		return nil, domain.Track{}, fmt.Errorf("service: failed to filter catalog: %w", err)
	}
	if len(tracks) == 0 {
		return nil, domain.Track{}, fmt.Errorf("service: no playable songs for %q: %w", result.ArtistName, domain.ErrNoSongsAvailable)
	}

	opts := SessionOptions{
		RoundCap: s.cfg.RoundCap,
		Policy:   s.cfg.Policy,
		Rules:    s.cfg.Rules,
		Clock:    s.cfg.Clock,
		Sink:     sink,
		Playback: playback,
	}
	if s.cfg.NewRand != nil {
		opts.Rand = s.cfg.NewRand()
	}
	session := NewSession(opts)

	first, err := session.Start(tracks, maxRounds)
	if err != nil {
		return nil, domain.Track{}, fmt.Errorf("service: failed to start game: %w", err)
	}

	game := &Game{
		ID:          uuid.NewString(),
		ArtistID:    result.ArtistID,
		ArtistName:  result.ArtistName,
		Suggestions: domain.Suggestions(tracks),
		Session:     session,
		Sink:        sink,
		Playback:    playback,
		lastActive:  s.cfg.Clock(),
	}

	s.mu.Lock()
	s.games[game.ID] = game
	s.mu.Unlock()

	log.Printf("INFO service: game %s started for %q (%d songs, %d rounds)", game.ID, game.ArtistName, len(tracks), session.Score().MaxRounds)
	return game, first, nil
}

// Get returns a running game.
func (s *GameService) Get(id string) (*Game, error) {
	s.mu.RLock()
	game, ok := s.games[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrGameNotFound
	}
	game.touch(s.cfg.Clock())
	return game, nil
}

// SubmitGuess forwards a guess to the game's session.
func (s *GameService) SubmitGuess(id string, text string) (GuessResult, error) {
	game, err := s.Get(id)
	if err != nil {
		return GuessResult{}, err
	}
	return game.Session.SubmitGuess(text)
}

// SkipRound skips the game's current round.
func (s *GameService) SkipRound(id string) (float64, error) {
	game, err := s.Get(id)
	if err != nil {
		return 0, err
	}
	return game.Session.SkipRound()
}

// AdvanceRound moves the game to its next round or completes it.
func (s *GameService) AdvanceRound(id string) (AdvanceResult, error) {
	game, err := s.Get(id)
	if err != nil {
		return AdvanceResult{}, err
	}
	return game.Session.AdvanceRound()
}

// EndGame finishes the game and forgets it.
func (s *GameService) EndGame(id string) (Summary, error) {
	game, err := s.Get(id)
	if err != nil {
		return Summary{}, err
	}
	summary, err := game.Session.End()
	if err != nil {
		return Summary{}, err
	}

	s.mu.Lock()
	delete(s.games, id)
	s.mu.Unlock()
	return summary, nil
}

// Sweep forgets games with no activity for longer than idle and returns how
// many were dropped.
func (s *GameService) Sweep(idle time.Duration) int {
	cutoff := s.cfg.Clock().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for id, game := range s.games {
		if game.idleSince().Before(cutoff) {
			delete(s.games, id)
			dropped++
		}
	}
	if dropped > 0 {
		log.Printf("INFO service: swept %d idle games", dropped)
	}
	return dropped
}

// Count returns the number of games held in memory.
func (s *GameService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}
