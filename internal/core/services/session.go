package services

import (
	"errors"
	"log"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/ewilliams-labs/guessfm/internal/core/domain"
	"github.com/ewilliams-labs/guessfm/internal/core/ports"
)

const (
	// DefaultRoundCap is the longest game allowed when nothing else is configured.
	DefaultRoundCap = 15

	closeGuessSimilarity = 0.85
)

// Phase is the lifecycle state of a Session.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseComplete   Phase = "complete"
)

// SessionOptions configures a Session. Zero values fall back to defaults.
type SessionOptions struct {
	RoundCap int
	Policy   domain.ExhaustionPolicy
	Rules    *domain.ScoringRules
	Clock    domain.Clock
	Rand     domain.RandomSource
	Sink     ports.PresentationSink
	Playback ports.PlaybackTransport
}

// GuessResult is the outcome of one submitted guess.
type GuessResult struct {
	Correct bool    `json:"correct"`
	Close   bool    `json:"close"`
	Points  float64 `json:"points"`
}

// Summary is the final result of a game.
type Summary struct {
	Total           float64 `json:"total"`
	BestStreak      int     `json:"bestStreak"`
	RoundsCompleted int     `json:"roundsCompleted"`
}

// AdvanceResult tells the caller whether a new round started or the game ended.
type AdvanceResult struct {
	Complete   bool         `json:"complete"`
	Reshuffled bool         `json:"reshuffled"`
	Track      domain.Track `json:"-"`
	Summary    *Summary     `json:"summary,omitempty"`
}

// Session runs one game: it draws tracks, checks guesses and keeps score.
// All methods are serialized; a call arriving while another is running waits
// for it and then sees the updated state.
type Session struct {
	mu sync.Mutex

	roundCap int
	policy   domain.ExhaustionPolicy
	rules    domain.ScoringRules
	clock    domain.Clock
	rng      domain.RandomSource
	sink     ports.PresentationSink
	playback ports.PlaybackTransport

	phase    Phase
	selector *domain.RoundSelector
	scorer   *domain.ScoringEngine
	current  *domain.Track
}

// NewSession creates a session in the NotStarted phase.
func NewSession(opts SessionOptions) *Session {
	s := &Session{
		roundCap: opts.RoundCap,
		policy:   opts.Policy,
		rules:    domain.DefaultScoringRules(),
		clock:    opts.Clock,
		rng:      opts.Rand,
		sink:     opts.Sink,
		playback: opts.Playback,
		phase:    PhaseNotStarted,
	}
	if s.roundCap <= 0 {
		s.roundCap = DefaultRoundCap
	}
	if s.policy == "" {
		s.policy = domain.ExhaustionStop
	}
	if opts.Rules != nil {
		s.rules = *opts.Rules
	}
	if s.rng == nil {
		// #nosec G404 -- track order only needs to be unpredictable to players
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.sink == nil {
		s.sink = nopSink{}
	}
	if s.playback == nil {
		s.playback = nopPlayback{}
	}
	return s
}

// Start resets all game state for catalog and opens the first round.
// maxRounds <= 0 asks for the configured cap.
func (s *Session) Start(catalog []domain.Track, maxRounds int) (domain.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(catalog) == 0 {
		return domain.Track{}, domain.ErrNoSongsAvailable
	}

	rounds := s.roundCap
	if maxRounds > 0 && maxRounds < rounds {
		rounds = maxRounds
	}
	if s.policy == domain.ExhaustionStop && len(catalog) < rounds {
		rounds = len(catalog)
	}

	s.playback.Pause()
	s.selector = domain.NewRoundSelector(catalog, s.rng)
	s.scorer = domain.NewScoringEngine(rounds, s.rules, s.clock, s.sink.ScoreChanged)
	s.current = nil
	s.phase = PhaseInProgress
	s.sink.ScoreChanged(s.scorer.Snapshot())

	track, _, err := s.drawLocked()
	if err != nil {
		s.phase = PhaseNotStarted
		return domain.Track{}, err
	}
	return track, nil
}

// SubmitGuess checks text against the current track. A wrong guess leaves the
// round open for another try.
func (s *Session) SubmitGuess(text string) (GuessResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActiveLocked(); err != nil {
		return GuessResult{}, err
	}
	if strings.TrimSpace(text) == "" {
		return GuessResult{}, domain.ErrEmptyGuess
	}
	if err := s.scorer.NoteAttempt(); err != nil {
		return GuessResult{}, err
	}

	guess := domain.Normalize(text)
	title := domain.Normalize(s.current.Title)
	if guess != title {
		return GuessResult{Close: isCloseGuess(guess, title)}, nil
	}

	record, err := s.scorer.FinalizeRound(domain.OutcomeCorrect)
	if err != nil {
		return GuessResult{}, err
	}
	s.revealLocked()
	return GuessResult{Correct: true, Points: record.PointsAwarded}, nil
}

// SkipRound gives up on the current round and returns the (negative) points.
func (s *Session) SkipRound() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActiveLocked(); err != nil {
		return 0, err
	}
	record, err := s.scorer.FinalizeRound(domain.OutcomeSkip)
	if err != nil {
		return 0, err
	}
	s.revealLocked()
	return record.PointsAwarded, nil
}

// AdvanceRound opens the next round, or completes the game once the round
// limit is reached.
func (s *Session) AdvanceRound() (AdvanceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return AdvanceResult{}, domain.ErrGameNotInProgress
	}
	if s.scorer.Active() {
		return AdvanceResult{}, domain.ErrRoundUnresolved
	}

	if s.scorer.LimitReached() {
		s.phase = PhaseComplete
		summary := s.summaryLocked()
		log.Printf("INFO service: game complete with %.0f points over %d rounds", summary.Total, summary.RoundsCompleted)
		return AdvanceResult{Complete: true, Summary: &summary}, nil
	}

	track, reshuffled, err := s.drawLocked()
	if err != nil {
		return AdvanceResult{}, err
	}
	return AdvanceResult{Track: track, Reshuffled: reshuffled}, nil
}

// End finishes the game early. An unresolved round is dropped without scoring.
func (s *Session) End() (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseNotStarted:
		return Summary{}, domain.ErrGameNotInProgress
	case PhaseInProgress:
		s.scorer.Abandon()
		s.playback.Pause()
		s.phase = PhaseComplete
	}
	return s.summaryLocked(), nil
}

// Phase returns the lifecycle state.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Score returns a snapshot of the score state.
func (s *Session) Score() domain.ScoreState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scorer == nil {
		return domain.ScoreState{History: []domain.RoundRecord{}}
	}
	return s.scorer.Snapshot()
}

// CurrentTrack returns the track of the latest round and whether that round
// is still waiting for an answer.
func (s *Session) CurrentTrack() (track domain.Track, active bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.Track{}, false, false
	}
	return *s.current, s.scorer.Active(), true
}

func (s *Session) requireActiveLocked() error {
	if s.phase != PhaseInProgress {
		return domain.ErrGameNotInProgress
	}
	if !s.scorer.Active() {
		return domain.ErrNoActiveRound
	}
	return nil
}

func (s *Session) drawLocked() (domain.Track, bool, error) {
	reshuffled := false
	track, err := s.selector.Next()
	if errors.Is(err, domain.ErrNoSongsAvailable) && s.policy == domain.ExhaustionReshuffle && s.selector.CatalogSize() > 0 {
		log.Printf("INFO service: all %d songs played, reshuffling", s.selector.CatalogSize())
		s.selector.Reset()
		reshuffled = true
		track, err = s.selector.Next()
	}
	if errors.Is(err, domain.ErrNoSongsAvailable) {
		return domain.Track{}, false, &domain.CatalogExhaustedError{
			Played:      s.selector.Played(),
			CatalogSize: s.selector.CatalogSize(),
		}
	}
	if err != nil {
		return domain.Track{}, false, err
	}

	if err := s.scorer.StartRound(track.ID); err != nil {
		return domain.Track{}, false, err
	}
	s.current = &track
	s.playback.Play(track.PreviewURL)
	s.sink.RoundChanged(ports.RoundStarted, track)
	return track, reshuffled, nil
}

func (s *Session) revealLocked() {
	s.playback.Pause()
	s.sink.RoundChanged(ports.RoundRevealed, *s.current)
}

func (s *Session) summaryLocked() Summary {
	st := s.scorer.Snapshot()
	return Summary{
		Total:           st.Total,
		BestStreak:      st.BestStreak,
		RoundsCompleted: st.RoundsCompleted,
	}
}

func isCloseGuess(guess, title string) bool {
	if guess == "" || title == "" {
		return false
	}
	return strutil.Similarity(guess, title, metrics.NewJaroWinkler()) >= closeGuessSimilarity
}

type nopSink struct{}

func (nopSink) ScoreChanged(domain.ScoreState)              {}
func (nopSink) RoundChanged(ports.RoundPhase, domain.Track) {}

type nopPlayback struct{}

func (nopPlayback) Play(string) {}
func (nopPlayback) Pause()      {}
