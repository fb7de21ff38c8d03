package domain

import (
	"fmt"
	"strings"
)

// DefaultExcludedKeywords drops alternate versions of songs from a catalog.
var DefaultExcludedKeywords = []string{"remix", "instrumental"}

// FilterCatalog keeps the raw records usable for gameplay, in input order.
// A record survives when it is a track with a preview, its normalized title
// contains none of the excluded keywords and does not contain the artist name.
func FilterCatalog(raw []RawTrack, artistName string, excludedKeywords []string) ([]Track, error) {
	normalizedArtist := Normalize(artistName)

	keywords := make([]string, 0, len(excludedKeywords))
	for _, k := range excludedKeywords {
		if nk := Normalize(k); nk != "" {
			keywords = append(keywords, nk)
		}
	}

	seen := make(map[string]struct{}, len(raw))
	tracks := make([]Track, 0, len(raw))
	for i, r := range raw {
		if r.Kind != RawKindTrack || strings.TrimSpace(r.PreviewURL) == "" {
			continue
		}
		if r.ID == "" {
			return nil, &DataShapeError{Source: "catalog", Err: fmt.Errorf("record %d (%q) has no id", i, r.Title)}
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}

		title := Normalize(r.Title)
		if containsAny(title, keywords) {
			continue
		}
		if normalizedArtist != "" && strings.Contains(title, normalizedArtist) {
			continue
		}

		seen[r.ID] = struct{}{}
		tracks = append(tracks, Track{
			ID:         r.ID,
			Title:      r.Title,
			ArtistName: r.ArtistName,
			PreviewURL: r.PreviewURL,
			ArtworkURL: r.ArtworkURL,
			IsPlayable: true,
		})
	}

	return tracks, nil
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
