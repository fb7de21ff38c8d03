package domain

import (
	"errors"
	"reflect"
	"testing"
)

func rawSong(id, title string) RawTrack {
	return RawTrack{
		Kind:       RawKindTrack,
		ID:         id,
		Title:      title,
		ArtistName: "Artist Name",
		PreviewURL: "https://audio.test/" + id + ".m4a",
	}
}

func titles(tracks []Track) []string {
	out := make([]string, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, t.Title)
	}
	return out
}

func TestFilterCatalog(t *testing.T) {
	tests := []struct {
		name     string
		raw      []RawTrack
		artist   string
		keywords []string
		want     []string
	}{
		{
			name:     "drops remixes and self-titled tracks",
			raw:      []RawTrack{rawSong("1", "Song (Remix)"), rawSong("2", "Song"), rawSong("3", "Artist Name")},
			artist:   "Artist Name",
			keywords: DefaultExcludedKeywords,
			want:     []string{"Song"},
		},
		{
			name: "drops records without preview or of another kind",
			raw: []RawTrack{
				{Kind: "artist", ID: "a1", Title: "Wrapper"},
				{Kind: RawKindTrack, ID: "4", Title: "Silent"},
				rawSong("5", "Loud"),
			},
			artist:   "Someone",
			keywords: DefaultExcludedKeywords,
			want:     []string{"Loud"},
		},
		{
			name:     "keyword match ignores case and accents",
			raw:      []RawTrack{rawSong("1", "Blue (INSTRUMÉNTAL)"), rawSong("2", "Red")},
			artist:   "Someone",
			keywords: []string{"Instrumental"},
			want:     []string{"Red"},
		},
		{
			name:     "preserves input order",
			raw:      []RawTrack{rawSong("3", "C"), rawSong("1", "A"), rawSong("2", "B")},
			artist:   "Someone",
			keywords: nil,
			want:     []string{"C", "A", "B"},
		},
		{
			name:     "empty artist name excludes nothing",
			raw:      []RawTrack{rawSong("1", "A"), rawSong("2", "B")},
			artist:   "",
			keywords: nil,
			want:     []string{"A", "B"},
		},
		{
			name:     "repeated ids keep the first record",
			raw:      []RawTrack{rawSong("1", "First"), rawSong("1", "Again"), rawSong("2", "Second")},
			artist:   "Someone",
			keywords: nil,
			want:     []string{"First", "Second"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterCatalog(tt.raw, tt.artist, tt.keywords)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(titles(got), tt.want) {
				t.Fatalf("titles: got %v, want %v", titles(got), tt.want)
			}
			for _, tr := range got {
				if !tr.IsPlayable {
					t.Fatalf("track %q not marked playable", tr.Title)
				}
			}
		})
	}
}

func TestFilterCatalog_MissingID(t *testing.T) {
	raw := []RawTrack{rawSong("1", "Fine"), rawSong("", "Broken")}

	_, err := FilterCatalog(raw, "Someone", nil)
	var shapeErr *DataShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected DataShapeError, got %v", err)
	}
}

func TestSuggestions(t *testing.T) {
	catalog := []Track{
		{ID: "1", Title: "Hello"},
		{ID: "2", Title: "hello!"},
		{ID: "3", Title: "Goodbye"},
		{ID: "4", Title: "Héllo"},
	}

	got := Suggestions(catalog)
	want := []string{"Hello", "Goodbye"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("suggestions: got %v, want %v", got, want)
	}
}
