package spotify

import (
	"strings"

	"github.com/ewilliams-labs/guessfm/internal/core/domain"
)

// mapTrackToRaw converts a Spotify track into a raw catalog record.
func mapTrackToRaw(st spotifyTrack) domain.RawTrack {
	// 1. Flatten Artists (List -> String)
	var artistNames []string
	for _, a := range st.Artists {
		artistNames = append(artistNames, a.Name)
	}

	// 2. Largest album image; Spotify lists them widest first
	coverURL := ""
	if len(st.Album.Images) > 0 {
		coverURL = st.Album.Images[0].URL
	}

	preview := ""
	if st.PreviewURL != nil {
		preview = *st.PreviewURL
	}

	kind := st.Type
	if kind == "" {
		kind = domain.RawKindTrack
	}

	return domain.RawTrack{
		Kind:       kind,
		ID:         st.ID,
		Title:      st.Name,
		ArtistName: strings.Join(artistNames, ", "),
		PreviewURL: preview,
		ArtworkURL: coverURL,
	}
}
