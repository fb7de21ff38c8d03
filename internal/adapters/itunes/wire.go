package itunes

// searchResponse is the envelope shared by the iTunes search and lookup endpoints.
type searchResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []itunesResult `json:"results"`
}

// itunesResult is one search or lookup record. Artist and track records share
// the shape; which fields are set depends on wrapperType.
type itunesResult struct {
	WrapperType   string `json:"wrapperType"`
	Kind          string `json:"kind,omitempty"`
	ArtistID      int64  `json:"artistId"`
	ArtistName    string `json:"artistName"`
	TrackID       int64  `json:"trackId,omitempty"`
	TrackName     string `json:"trackName,omitempty"`
	PreviewURL    string `json:"previewUrl,omitempty"`
	ArtworkURL100 string `json:"artworkUrl100,omitempty"`
}

const (
	wrapperArtist = "artist"
	wrapperTrack  = "track"
	kindSong      = "song"
)
