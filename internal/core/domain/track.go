package domain

// Track represents a playable song in a game catalog.
type Track struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ArtistName string `json:"artistName"`
	PreviewURL string `json:"previewUrl"`
	ArtworkURL string `json:"artworkUrl"`
	IsPlayable bool   `json:"isPlayable"`
}

// RawTrack is a catalog record as a provider returned it, before filtering.
// Kind is "track" for songs; providers use other kinds for artist or
// collection wrapper records mixed into the same result list.
type RawTrack struct {
	Kind       string
	ID         string
	Title      string
	ArtistName string
	PreviewURL string
	ArtworkURL string
}

// RawKindTrack marks a raw record that describes a single song.
const RawKindTrack = "track"

// Suggestions returns the catalog titles to offer as guess completions.
// Titles that normalize to the same text are offered once, keeping the first.
func Suggestions(catalog []Track) []string {
	seen := make(map[string]struct{}, len(catalog))
	out := make([]string, 0, len(catalog))
	for _, t := range catalog {
		key := Normalize(t.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t.Title)
	}
	return out
}
