package itunes

import (
	"strconv"
	"strings"

	"github.com/ewilliams-labs/guessfm/internal/core/domain"
)

const (
	thumbArtworkSize  = "100x100"
	revealArtworkSize = "600x600"
)

// mapResultToRaw converts an iTunes record into a raw track. Only song tracks
// get the track kind; music videos, artist and collection records keep their
// own kind so the catalog filter drops them.
func mapResultToRaw(r itunesResult) domain.RawTrack {
	kind := r.WrapperType
	if r.WrapperType == wrapperTrack {
		if r.Kind == kindSong {
			kind = domain.RawKindTrack
		} else {
			kind = r.Kind
		}
	}

	id := ""
	if r.TrackID != 0 {
		id = strconv.FormatInt(r.TrackID, 10)
	}

	return domain.RawTrack{
		Kind:       kind,
		ID:         id,
		Title:      r.TrackName,
		ArtistName: r.ArtistName,
		PreviewURL: r.PreviewURL,
		ArtworkURL: upscaleArtwork(r.ArtworkURL100),
	}
}

// upscaleArtwork swaps the thumbnail size in an artwork URL for the reveal size.
func upscaleArtwork(u string) string {
	return strings.Replace(u, thumbArtworkSize, revealArtworkSize, 1)
}
