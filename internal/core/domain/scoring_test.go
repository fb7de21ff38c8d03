package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

func TestScoringRules_Points(t *testing.T) {
	rules := DefaultScoringRules()
	tests := []struct {
		name     string
		outcome  Outcome
		elapsed  time.Duration
		attempts int
		streak   int
		want     float64
	}{
		{name: "instant first try", outcome: OutcomeCorrect, elapsed: 0, attempts: 1, streak: 0, want: 100},
		{name: "time penalty", outcome: OutcomeCorrect, elapsed: 5 * time.Second, attempts: 1, streak: 0, want: 90},
		{name: "attempt penalty", outcome: OutcomeCorrect, elapsed: 0, attempts: 3, streak: 0, want: 80},
		{name: "streak bonus", outcome: OutcomeCorrect, elapsed: 10 * time.Second, attempts: 2, streak: 3, want: 91},
		{name: "zero attempts counts as one", outcome: OutcomeCorrect, elapsed: 0, attempts: 0, streak: 0, want: 100},
		{name: "never negative", outcome: OutcomeCorrect, elapsed: 2 * time.Minute, attempts: 1, streak: 4, want: 0},
		{name: "skip penalty", outcome: OutcomeSkip, elapsed: time.Second, attempts: 2, streak: 5, want: -30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules.Points(tt.outcome, tt.elapsed, tt.attempts, tt.streak)
			if !floatEquals(got, tt.want) {
				t.Fatalf("points: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoringEngine_PerfectRound(t *testing.T) {
	clock := newFakeClock()
	e := NewScoringEngine(1, DefaultScoringRules(), clock.Now, nil)

	if err := e.StartRound("t1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.NoteAttempt(); err != nil {
		t.Fatalf("attempt: %v", err)
	}
	rec, err := e.FinalizeRound(OutcomeCorrect)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !floatEquals(rec.PointsAwarded, 100) {
		t.Fatalf("points: got %v, want 100", rec.PointsAwarded)
	}

	s := e.Snapshot()
	if s.Total != 100 || s.CurrentStreak != 1 || s.BestStreak != 1 || s.RoundsCompleted != 1 {
		t.Fatalf("unexpected state: %+v", s)
	}
	if len(s.History) != 1 || s.History[0].TrackID != "t1" || s.History[0].Attempts != 1 {
		t.Fatalf("unexpected history: %+v", s.History)
	}
	if s.ActiveRound != nil {
		t.Fatalf("round still active after finalize")
	}
}

func TestScoringEngine_SkipPenaltyFloorsAtZero(t *testing.T) {
	clock := newFakeClock()
	e := NewScoringEngine(5, DefaultScoringRules(), clock.Now, nil)

	_ = e.StartRound("t1")
	_ = e.NoteAttempt()
	clock.Advance(10 * time.Second)
	if _, err := e.FinalizeRound(OutcomeCorrect); err != nil {
		t.Fatalf("finalize correct: %v", err)
	}
	if got := e.Snapshot().Total; !floatEquals(got, 80) {
		t.Fatalf("total after correct: got %v, want 80", got)
	}

	_ = e.StartRound("t2")
	rec, err := e.FinalizeRound(OutcomeSkip)
	if err != nil {
		t.Fatalf("finalize skip: %v", err)
	}
	if rec.PointsAwarded != -30 {
		t.Fatalf("skip points: got %v, want -30", rec.PointsAwarded)
	}
	s := e.Snapshot()
	if !floatEquals(s.Total, 50) || s.CurrentStreak != 0 || s.BestStreak != 1 {
		t.Fatalf("after skip: %+v", s)
	}

	for _, id := range []string{"t3", "t4"} {
		_ = e.StartRound(id)
		if _, err := e.FinalizeRound(OutcomeSkip); err != nil {
			t.Fatalf("skip %s: %v", id, err)
		}
		if e.Snapshot().Total < 0 {
			t.Fatalf("total went negative")
		}
	}
	if got := e.Snapshot().Total; got != 0 {
		t.Fatalf("total: got %v, want 0", got)
	}
}

func TestScoringEngine_Streaks(t *testing.T) {
	clock := newFakeClock()
	e := NewScoringEngine(10, DefaultScoringRules(), clock.Now, nil)

	play := func(id string, outcome Outcome) RoundRecord {
		t.Helper()
		if err := e.StartRound(id); err != nil {
			t.Fatalf("start %s: %v", id, err)
		}
		_ = e.NoteAttempt()
		rec, err := e.FinalizeRound(outcome)
		if err != nil {
			t.Fatalf("finalize %s: %v", id, err)
		}
		return rec
	}

	for i, id := range []string{"a", "b", "c"} {
		rec := play(id, OutcomeCorrect)
		want := 100 * (1 + 0.1*float64(i))
		if !floatEquals(rec.PointsAwarded, want) {
			t.Fatalf("round %s: got %v, want %v (bonus uses streak before increment)", id, rec.PointsAwarded, want)
		}
	}
	s := e.Snapshot()
	if s.CurrentStreak != 3 || s.BestStreak != 3 {
		t.Fatalf("after 3 correct: streak=%d best=%d", s.CurrentStreak, s.BestStreak)
	}

	play("d", OutcomeSkip)
	play("e", OutcomeCorrect)
	s = e.Snapshot()
	if s.CurrentStreak != 1 || s.BestStreak != 3 {
		t.Fatalf("after skip and correct: streak=%d best=%d", s.CurrentStreak, s.BestStreak)
	}
}

func TestScoringEngine_StateGuards(t *testing.T) {
	clock := newFakeClock()
	var notifications int
	e := NewScoringEngine(1, DefaultScoringRules(), clock.Now, func(ScoreState) { notifications++ })

	if err := e.NoteAttempt(); !errors.Is(err, ErrNoActiveRound) {
		t.Fatalf("attempt without round: got %v", err)
	}
	if _, err := e.FinalizeRound(OutcomeCorrect); !errors.Is(err, ErrStateGuard) {
		t.Fatalf("finalize without round: got %v", err)
	}

	if err := e.StartRound("t1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.StartRound("t2"); !errors.Is(err, ErrRoundActive) {
		t.Fatalf("second start: got %v", err)
	}
	if _, err := e.FinalizeRound(OutcomeSkip); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	before := e.Snapshot()
	if _, err := e.FinalizeRound(OutcomeCorrect); !errors.Is(err, ErrNoActiveRound) {
		t.Fatalf("double finalize: got %v", err)
	}
	if err := e.StartRound("t3"); !errors.Is(err, ErrRoundLimitReached) {
		t.Fatalf("start past limit: got %v", err)
	}
	after := e.Snapshot()
	if before.Total != after.Total || len(before.History) != len(after.History) || before.RoundsCompleted != after.RoundsCompleted {
		t.Fatalf("refused operations mutated state: before %+v after %+v", before, after)
	}
	if notifications != 2 {
		t.Fatalf("notifications: got %d, want 2", notifications)
	}
}

func TestScoringEngine_SnapshotIsolation(t *testing.T) {
	e := NewScoringEngine(2, DefaultScoringRules(), newFakeClock().Now, nil)
	_ = e.StartRound("t1")

	s := e.Snapshot()
	s.ActiveRound.AttemptsSoFar = 99
	s.History = append(s.History, RoundRecord{TrackID: "x"})

	if got := e.Snapshot(); got.ActiveRound.AttemptsSoFar != 0 || len(got.History) != 0 {
		t.Fatalf("snapshot shares memory with engine: %+v", got)
	}
}

func TestScoringEngine_Abandon(t *testing.T) {
	e := NewScoringEngine(2, DefaultScoringRules(), newFakeClock().Now, nil)
	_ = e.StartRound("t1")
	e.Abandon()

	s := e.Snapshot()
	if s.ActiveRound != nil || len(s.History) != 0 || s.Total != 0 {
		t.Fatalf("abandon scored or kept the round: %+v", s)
	}
}
