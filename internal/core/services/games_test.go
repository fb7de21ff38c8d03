package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ewilliams-labs/guessfm/internal/core/domain"
	"github.com/ewilliams-labs/guessfm/internal/core/ports"
)

type mockCatalog struct {
	result  ports.ArtistCatalog
	err     error
	queries []string
}

func (m *mockCatalog) FetchArtistCatalog(_ context.Context, artistName string) (ports.ArtistCatalog, error) {
	m.queries = append(m.queries, artistName)
	return m.result, m.err
}

func rawTrack(id, title string) domain.RawTrack {
	return domain.RawTrack{
		Kind:       domain.RawKindTrack,
		ID:         id,
		Title:      title,
		ArtistName: "Queen",
		PreviewURL: "https://audio.test/" + id + ".m4a",
	}
}

func queenCatalog() ports.ArtistCatalog {
	return ports.ArtistCatalog{
		ArtistID:   "3296287",
		ArtistName: "Queen",
		Tracks: []domain.RawTrack{
			rawTrack("1", "Bohemian Rhapsody"),
			rawTrack("2", "Under Pressure (Remix)"),
			rawTrack("3", "Somebody to Love"),
			rawTrack("4", "Queen Medley"),
			{Kind: "music-video", ID: "5", Title: "Radio Ga Ga", PreviewURL: "https://audio.test/5.m4v"},
		},
	}
}

func newTestService(catalog ports.CatalogProvider, clock *fakeClock) *GameService {
	return NewGameService(catalog, GameConfig{
		Clock:   clock.Now,
		NewRand: func() domain.RandomSource { return firstPick{} },
	})
}

func TestGameService_StartGame(t *testing.T) {
	catalog := &mockCatalog{result: queenCatalog()}
	svc := newTestService(catalog, newFakeClock())

	game, first, err := svc.StartGame(context.Background(), "  queen ", 10, nil, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(catalog.queries) != 1 || catalog.queries[0] != "queen" {
		t.Fatalf("provider queries: %v", catalog.queries)
	}
	if game.ID == "" || game.ArtistName != "Queen" || game.ArtistID != "3296287" {
		t.Fatalf("game: %+v", game)
	}
	if first.ID != "1" && first.ID != "3" {
		t.Fatalf("first track %q was not in the filtered catalog", first.ID)
	}
	// remix, artist-name and non-track records are filtered, leaving two songs
	if got := game.Session.Score().MaxRounds; got != 2 {
		t.Fatalf("max rounds: got %d, want 2", got)
	}
	if len(game.Suggestions) != 2 {
		t.Fatalf("suggestions: %v", game.Suggestions)
	}
	if svc.Count() != 1 {
		t.Fatalf("count: got %d", svc.Count())
	}
}

func TestGameService_StartGameErrors(t *testing.T) {
	tests := []struct {
		name    string
		artist  string
		catalog *mockCatalog
		wantErr error
	}{
		{
			name:    "empty artist",
			artist:  "   ",
			catalog: &mockCatalog{},
			wantErr: domain.ErrEmptyArtist,
		},
		{
			name:    "artist not found",
			artist:  "Nobody",
			catalog: &mockCatalog{err: &ports.ArtistNotFoundError{Query: "Nobody"}},
			wantErr: ports.ErrArtistNotFound,
		},
		{
			name:    "network failure",
			artist:  "Queen",
			catalog: &mockCatalog{err: &ports.NetworkError{Provider: "itunes", Err: errors.New("connection refused")}},
			wantErr: ports.ErrNetwork,
		},
		{
			name:   "nothing playable",
			artist: "Queen",
			catalog: &mockCatalog{result: ports.ArtistCatalog{
				ArtistName: "Queen",
				Tracks:     []domain.RawTrack{rawTrack("1", "Song (Instrumental)")},
			}},
			wantErr: domain.ErrNoSongsAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.catalog, newFakeClock())
			_, _, err := svc.StartGame(context.Background(), tt.artist, 5, nil, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			if svc.Count() != 0 {
				t.Fatalf("failed start registered a game")
			}
		})
	}
}

func TestGameService_StartGameBadCatalogShape(t *testing.T) {
	catalog := &mockCatalog{result: ports.ArtistCatalog{
		ArtistName: "Queen",
		Tracks:     []domain.RawTrack{rawTrack("", "No Id")},
	}}
	svc := newTestService(catalog, newFakeClock())

	_, _, err := svc.StartGame(context.Background(), "Queen", 5, nil, nil)
	var shapeErr *domain.DataShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("got %v, want DataShapeError", err)
	}
}

func TestGameService_PlayThrough(t *testing.T) {
	svc := newTestService(&mockCatalog{result: queenCatalog()}, newFakeClock())
	game, first, err := svc.StartGame(context.Background(), "Queen", 1, nil, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	res, err := svc.SubmitGuess(game.ID, first.Title)
	if err != nil || !res.Correct {
		t.Fatalf("guess: %+v %v", res, err)
	}
	adv, err := svc.AdvanceRound(game.ID)
	if err != nil || !adv.Complete {
		t.Fatalf("advance: %+v %v", adv, err)
	}

	summary, err := svc.EndGame(game.ID)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if summary.Total != 100 {
		t.Fatalf("summary: %+v", summary)
	}
	if _, err := svc.Get(game.ID); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("game still registered after end: %v", err)
	}
}

func TestGameService_UnknownGame(t *testing.T) {
	svc := newTestService(&mockCatalog{}, newFakeClock())

	if _, err := svc.SubmitGuess("missing", "x"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("guess: got %v", err)
	}
	if _, err := svc.SkipRound("missing"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("skip: got %v", err)
	}
	if _, err := svc.AdvanceRound("missing"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("advance: got %v", err)
	}
	if _, err := svc.EndGame("missing"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("end: got %v", err)
	}
}

func TestGameService_Sweep(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(&mockCatalog{result: queenCatalog()}, clock)

	stale, _, err := svc.StartGame(context.Background(), "Queen", 2, nil, nil)
	if err != nil {
		t.Fatalf("start stale: %v", err)
	}
	clock.Advance(20 * time.Minute)
	fresh, _, err := svc.StartGame(context.Background(), "Queen", 2, nil, nil)
	if err != nil {
		t.Fatalf("start fresh: %v", err)
	}

	if dropped := svc.Sweep(10 * time.Minute); dropped != 1 {
		t.Fatalf("dropped: got %d, want 1", dropped)
	}
	if _, err := svc.Get(stale.ID); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("stale game survived: %v", err)
	}
	if _, err := svc.Get(fresh.ID); err != nil {
		t.Fatalf("fresh game swept: %v", err)
	}
}
