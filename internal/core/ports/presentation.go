package ports

import "github.com/ewilliams-labs/guessfm/internal/core/domain"

// RoundPhase identifies a round transition.
type RoundPhase string

const (
	// RoundStarted fires when a new track is put in play; its title must stay hidden.
	RoundStarted RoundPhase = "started"
	// RoundRevealed fires when the round is resolved and the track can be shown.
	RoundRevealed RoundPhase = "revealed"
)

// PresentationSink receives game updates for rendering. Return values are not
// consumed and implementations must not call back into the game.
type PresentationSink interface {
	ScoreChanged(state domain.ScoreState)
	RoundChanged(phase RoundPhase, track domain.Track)
}
