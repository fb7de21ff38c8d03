package domain

import (
	"math"
	"time"
)

// Outcome is how a round was resolved.
type Outcome string

const (
	OutcomeCorrect Outcome = "correct"
	OutcomeSkip    Outcome = "skip"
)

// ScoringRules holds the scoring constants.
type ScoringRules struct {
	BasePoints           float64
	TimePenaltyPerSecond float64
	AttemptPenalty       float64
	StreakBonusRate      float64
	SkipPenalty          float64
}

// DefaultScoringRules returns the standard rules: 100 points, minus 2 per
// second and 10 per extra attempt, plus 10% per streak step, 30 off for a skip.
func DefaultScoringRules() ScoringRules {
	return ScoringRules{
		BasePoints:           100,
		TimePenaltyPerSecond: 2,
		AttemptPenalty:       10,
		StreakBonusRate:      0.1,
		SkipPenalty:          30,
	}
}

// Points computes the signed score delta for one round. streak is the streak
// before this round counts; a correct answer is never worth less than zero.
func (r ScoringRules) Points(outcome Outcome, elapsed time.Duration, attempts int, streak int) float64 {
	if outcome == OutcomeSkip {
		return -r.SkipPenalty
	}
	if attempts < 1 {
		attempts = 1
	}
	raw := r.BasePoints -
		r.TimePenaltyPerSecond*elapsed.Seconds() -
		r.AttemptPenalty*float64(attempts-1)
	return math.Max(0, raw*(1+r.StreakBonusRate*float64(streak)))
}

// Clock returns the current time.
type Clock func() time.Time

// RoundRecord is the result of one finished round.
type RoundRecord struct {
	TrackID        string    `json:"trackId"`
	PointsAwarded  float64   `json:"pointsAwarded"`
	ElapsedSeconds float64   `json:"elapsedSeconds"`
	Attempts       int       `json:"attempts"`
	Outcome        Outcome   `json:"outcome"`
	CompletedAt    time.Time `json:"completedAt"`
}

// ActiveRound is the round currently waiting for a guess or skip.
type ActiveRound struct {
	StartedAt     time.Time `json:"startedAt"`
	TrackID       string    `json:"trackId"`
	AttemptsSoFar int       `json:"attemptsSoFar"`
}

// ScoreState is the cumulative score of one game.
// RoundsCompleted counts a round from the moment it starts, so during the
// last round it already equals MaxRounds.
type ScoreState struct {
	Total           float64       `json:"total"`
	RoundsCompleted int           `json:"roundsCompleted"`
	MaxRounds       int           `json:"maxRounds"`
	CurrentStreak   int           `json:"currentStreak"`
	BestStreak      int           `json:"bestStreak"`
	History         []RoundRecord `json:"history"`
	ActiveRound     *ActiveRound  `json:"activeRound,omitempty"`
}

// ScoringEngine owns a ScoreState and the round lifecycle
// Idle -> Active (StartRound) -> Idle (FinalizeRound).
type ScoringEngine struct {
	rules    ScoringRules
	now      Clock
	onChange func(ScoreState)
	state    ScoreState
}

// NewScoringEngine creates an engine for a game of maxRounds rounds.
// onChange, when set, receives a snapshot after every score mutation.
func NewScoringEngine(maxRounds int, rules ScoringRules, now Clock, onChange func(ScoreState)) *ScoringEngine {
	if now == nil {
		now = time.Now
	}
	return &ScoringEngine{
		rules:    rules,
		now:      now,
		onChange: onChange,
		state: ScoreState{
			MaxRounds: maxRounds,
			History:   []RoundRecord{},
		},
	}
}

// StartRound opens a round for trackID.
func (e *ScoringEngine) StartRound(trackID string) error {
	if e.state.ActiveRound != nil {
		return ErrRoundActive
	}
	if e.state.RoundsCompleted >= e.state.MaxRounds {
		return ErrRoundLimitReached
	}

	e.state.RoundsCompleted++
	e.state.ActiveRound = &ActiveRound{
		StartedAt: e.now(),
		TrackID:   trackID,
	}
	e.notify()
	return nil
}

// NoteAttempt counts one guess against the active round.
func (e *ScoringEngine) NoteAttempt() error {
	if e.state.ActiveRound == nil {
		return ErrNoActiveRound
	}
	e.state.ActiveRound.AttemptsSoFar++
	return nil
}

// FinalizeRound scores and closes the active round. A second call for the
// same round, or a call past the round limit, changes nothing and returns an
// error instead of a score delta.
func (e *ScoringEngine) FinalizeRound(outcome Outcome) (RoundRecord, error) {
	active := e.state.ActiveRound
	if active == nil {
		return RoundRecord{}, ErrNoActiveRound
	}
	if e.state.RoundsCompleted > e.state.MaxRounds {
		return RoundRecord{}, ErrRoundLimitReached
	}

	now := e.now()
	elapsed := now.Sub(active.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	attempts := active.AttemptsSoFar
	if outcome == OutcomeCorrect && attempts < 1 {
		attempts = 1
	}

	points := e.rules.Points(outcome, elapsed, attempts, e.state.CurrentStreak)
	e.state.Total = math.Max(0, e.state.Total+points)

	switch outcome {
	case OutcomeCorrect:
		e.state.CurrentStreak++
		if e.state.CurrentStreak > e.state.BestStreak {
			e.state.BestStreak = e.state.CurrentStreak
		}
	case OutcomeSkip:
		e.state.CurrentStreak = 0
	}

	record := RoundRecord{
		TrackID:        active.TrackID,
		PointsAwarded:  points,
		ElapsedSeconds: elapsed.Seconds(),
		Attempts:       attempts,
		Outcome:        outcome,
		CompletedAt:    now,
	}
	e.state.History = append(e.state.History, record)
	e.state.ActiveRound = nil
	e.notify()
	return record, nil
}

// Abandon drops the active round without scoring it.
func (e *ScoringEngine) Abandon() {
	if e.state.ActiveRound == nil {
		return
	}
	e.state.ActiveRound = nil
	e.notify()
}

// Active reports whether a round is waiting to be resolved.
func (e *ScoringEngine) Active() bool {
	return e.state.ActiveRound != nil
}

// LimitReached reports whether no further round may start.
func (e *ScoringEngine) LimitReached() bool {
	return e.state.RoundsCompleted >= e.state.MaxRounds
}

// Snapshot returns a copy of the current state safe to hand to other goroutines.
func (e *ScoringEngine) Snapshot() ScoreState {
	s := e.state
	s.History = make([]RoundRecord, len(e.state.History))
	copy(s.History, e.state.History)
	if e.state.ActiveRound != nil {
		ar := *e.state.ActiveRound
		s.ActiveRound = &ar
	}
	return s
}

func (e *ScoringEngine) notify() {
	if e.onChange != nil {
		e.onChange(e.Snapshot())
	}
}
