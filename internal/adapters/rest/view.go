package rest

import (
	"context"
	"sync"

	"github.com/ewilliams-labs/guessfm/internal/core/domain"
	"github.com/ewilliams-labs/guessfm/internal/core/ports"
	"github.com/ewilliams-labs/guessfm/internal/core/services"
	"github.com/ewilliams-labs/guessfm/internal/worker"
)

// liveView is a game's presentation sink and playback transport. The HTTP
// client polls it instead of receiving pushes: it records what should be
// playing and the latest round transition.
type liveView struct {
	prober Prober

	mu         sync.Mutex
	nowPlaying string
	phase      ports.RoundPhase
	roundTrack domain.Track
	score      domain.ScoreState
	updates    int
}

var (
	_ ports.PresentationSink  = (*liveView)(nil)
	_ ports.PlaybackTransport = (*liveView)(nil)
)

func newLiveView(prober Prober) *liveView {
	return &liveView{prober: prober}
}

func (v *liveView) ScoreChanged(state domain.ScoreState) {
	v.mu.Lock()
	v.score = state
	v.updates++
	v.mu.Unlock()
}

func (v *liveView) RoundChanged(phase ports.RoundPhase, track domain.Track) {
	v.mu.Lock()
	v.phase = phase
	v.roundTrack = track
	v.updates++
	v.mu.Unlock()

	if phase == ports.RoundStarted && v.prober != nil {
		v.prober.Submit(worker.Job{TrackID: track.ID, PreviewURL: track.PreviewURL})
	}
}

func (v *liveView) Play(url string) {
	v.mu.Lock()
	v.nowPlaying = url
	v.mu.Unlock()
}

func (v *liveView) Pause() {
	v.mu.Lock()
	v.nowPlaying = ""
	v.mu.Unlock()
}

type liveSnapshot struct {
	nowPlaying string
	phase      ports.RoundPhase
	track      domain.Track
	score      domain.ScoreState
	updates    int
}

func (v *liveView) snapshot() liveSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return liveSnapshot{
		nowPlaying: v.nowPlaying,
		phase:      v.phase,
		track:      v.roundTrack,
		score:      v.score,
		updates:    v.updates,
	}
}

// gameView is the JSON representation of a game.
type gameView struct {
	ID          string               `json:"id"`
	Artist      string               `json:"artist"`
	Phase       services.Phase       `json:"phase"`
	Score       scoreView            `json:"score"`
	Round       *roundView           `json:"round,omitempty"`
	History     []domain.RoundRecord `json:"history"`
	Suggestions []string             `json:"suggestions"`
	Updates     int                  `json:"updates"`
}

type scoreView struct {
	Total           float64 `json:"total"`
	RoundsCompleted int     `json:"roundsCompleted"`
	MaxRounds       int     `json:"maxRounds"`
	CurrentStreak   int     `json:"currentStreak"`
	BestStreak      int     `json:"bestStreak"`
}

// roundView describes the latest round. Track stays empty until the round
// is revealed so the title cannot be read from the response.
type roundView struct {
	Number     int                 `json:"number"`
	State      ports.RoundPhase    `json:"state"`
	Attempts   int                 `json:"attempts"`
	NowPlaying string              `json:"nowPlaying,omitempty"`
	Preview    *domain.PreviewHint `json:"preview,omitempty"`
	Track      *revealedTrack      `json:"track,omitempty"`
}

type revealedTrack struct {
	Title      string `json:"title"`
	ArtistName string `json:"artistName"`
	ArtworkURL string `json:"artworkUrl,omitempty"`
}

func (h *Handler) renderGame(ctx context.Context, game *services.Game) gameView {
	session := game.Session
	score := session.Score()
	track, active, hasRound := session.CurrentTrack()
	phase := ports.RoundRevealed
	if active {
		phase = ports.RoundStarted
	}
	nowPlaying := ""

	// the sink saw the same transitions under the session lock; prefer what it rendered
	view := gameView{ID: game.ID, Artist: game.ArtistName, Phase: session.Phase()}
	if lv, ok := game.Sink.(*liveView); ok {
		live := lv.snapshot()
		view.Updates = live.updates
		nowPlaying = live.nowPlaying
		if live.updates > 0 {
			score.Total = live.score.Total
			score.RoundsCompleted = live.score.RoundsCompleted
			score.MaxRounds = live.score.MaxRounds
			score.CurrentStreak = live.score.CurrentStreak
			score.BestStreak = live.score.BestStreak
		}
		if live.phase != "" {
			phase = live.phase
			track = live.track
		}
	}

	view.Score = scoreView{
		Total:           score.Total,
		RoundsCompleted: score.RoundsCompleted,
		MaxRounds:       score.MaxRounds,
		CurrentStreak:   score.CurrentStreak,
		BestStreak:      score.BestStreak,
	}
	view.History = score.History
	view.Suggestions = game.Suggestions

	if !hasRound {
		return view
	}

	round := &roundView{
		Number:     score.RoundsCompleted,
		State:      phase,
		NowPlaying: nowPlaying,
	}
	if phase == ports.RoundStarted {
		if score.ActiveRound != nil {
			round.Attempts = score.ActiveRound.AttemptsSoFar
		}
	} else {
		round.Track = &revealedTrack{
			Title:      track.Title,
			ArtistName: track.ArtistName,
			ArtworkURL: track.ArtworkURL,
		}
		if n := len(score.History); n > 0 {
			round.Attempts = score.History[n-1].Attempts
		}
	}
	if h.prober != nil {
		if hint, ok := h.prober.Hint(ctx, track.PreviewURL); ok {
			round.Preview = &hint
		}
	}
	view.Round = round
	return view
}
