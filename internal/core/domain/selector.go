package domain

import "fmt"

// ExhaustionPolicy decides what happens once every catalog track was played.
type ExhaustionPolicy string

const (
	// ExhaustionStop ends the supply of songs.
	ExhaustionStop ExhaustionPolicy = "stop"
	// ExhaustionReshuffle forgets the play history and starts a new shuffled cycle.
	ExhaustionReshuffle ExhaustionPolicy = "reshuffle"
)

// ParseExhaustionPolicy converts a configuration value into a policy.
func ParseExhaustionPolicy(raw string) (ExhaustionPolicy, error) {
	switch p := ExhaustionPolicy(raw); p {
	case ExhaustionStop, ExhaustionReshuffle:
		return p, nil
	case "":
		return ExhaustionStop, nil
	default:
		return "", fmt.Errorf("domain: unknown exhaustion policy %q", raw)
	}
}

// RandomSource picks a uniform integer in [0, n). *math/rand/v2.Rand satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// RoundSelector hands out catalog tracks without repeats. It keeps a shuffled
// queue of unplayed tracks and refills it from whatever has not been played
// once the queue runs dry.
type RoundSelector struct {
	catalog []Track
	rng     RandomSource
	played  map[string]struct{}
	queue   []Track
}

// NewRoundSelector builds a selector over catalog. The catalog slice is
// copied; tracks repeating an earlier id are ignored.
func NewRoundSelector(catalog []Track, rng RandomSource) *RoundSelector {
	seen := make(map[string]struct{}, len(catalog))
	c := make([]Track, 0, len(catalog))
	for _, t := range catalog {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		c = append(c, t)
	}
	return &RoundSelector{
		catalog: c,
		rng:     rng,
		played:  make(map[string]struct{}, len(c)),
	}
}

// Next draws the next unplayed track and marks it played.
// It returns ErrNoSongsAvailable when the catalog is empty or fully played.
func (s *RoundSelector) Next() (Track, error) {
	if len(s.catalog) == 0 || s.Exhausted() {
		return Track{}, ErrNoSongsAvailable
	}

	if len(s.queue) == 0 {
		s.refill()
	}

	t := s.queue[0]
	s.queue = s.queue[1:]
	s.played[t.ID] = struct{}{}
	return t, nil
}

// Exhausted reports whether every catalog track has been played.
func (s *RoundSelector) Exhausted() bool {
	return len(s.played) >= len(s.catalog)
}

// Played returns how many distinct tracks have been handed out.
func (s *RoundSelector) Played() int {
	return len(s.played)
}

// Remaining returns the number of tracks still queued for the current cycle.
func (s *RoundSelector) Remaining() int {
	return len(s.queue)
}

// CatalogSize returns the number of tracks the selector draws from.
func (s *RoundSelector) CatalogSize() int {
	return len(s.catalog)
}

// Reset forgets the play history so the whole catalog is eligible again.
func (s *RoundSelector) Reset() {
	s.played = make(map[string]struct{}, len(s.catalog))
	s.queue = nil
}

func (s *RoundSelector) refill() {
	queue := make([]Track, 0, len(s.catalog)-len(s.played))
	for _, t := range s.catalog {
		if _, ok := s.played[t.ID]; !ok {
			queue = append(queue, t)
		}
	}
	// Fisher-Yates
	for i := len(queue) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		queue[i], queue[j] = queue[j], queue[i]
	}
	s.queue = queue
}
