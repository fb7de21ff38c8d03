package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/ewilliams-labs/guessfm/internal/adapters/httpretry"
	"github.com/ewilliams-labs/guessfm/internal/core/domain"
	"github.com/ewilliams-labs/guessfm/internal/core/ports"
)

const (
	providerName  = "spotify"
	defaultMarket = "US"
)

// Client is a catalog provider backed by the Spotify Web API.
type Client struct {
	doer    *httpretry.Doer
	baseURL string
	market  string
}

// compile-time interface assertion
var _ ports.CatalogProvider = (*Client)(nil)

// NewClient constructs a new Spotify client. The doer's HTTP client must
// already attach credentials; see NewAuthHTTPClient.
func NewClient(doer *httpretry.Doer, baseURL string) *Client {
	if doer == nil {
		doer = httpretry.New("spotify adapter", nil, 0, 0, nil)
	}
	return &Client{
		doer:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		market:  defaultMarket,
	}
}

// NewAuthHTTPClient returns an HTTP client that fetches and refreshes an app
// token with the client-credentials flow.
func NewAuthHTTPClient(ctx context.Context, clientID, clientSecret, tokenURL string) *http.Client {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	httpClient := cfg.Client(ctx)
	httpClient.Timeout = 15 * time.Second
	return httpClient
}

// FetchArtistCatalog resolves an artist by name and returns their top tracks.
// Spotify caps top tracks at 10, so games against this provider are short.
func (c *Client) FetchArtistCatalog(ctx context.Context, artistName string) (ports.ArtistCatalog, error) {
	// 1. Search for the artist to get their ID
	artist, err := c.searchArtist(ctx, artistName)
	if err != nil {
		return ports.ArtistCatalog{}, err
	}

	// 2. Fetch the artist's top tracks
	tracks, err := c.getTopTracks(ctx, artist.ID)
	if err != nil {
		return ports.ArtistCatalog{}, err
	}

	raw := make([]domain.RawTrack, len(tracks))
	for i, st := range tracks {
		raw[i] = mapTrackToRaw(st)
	}

	return ports.ArtistCatalog{
		ArtistID:   artist.ID,
		ArtistName: artist.Name,
		Tracks:     raw,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("spotify adapter: failed to create request: %w", err)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return &ports.NetworkError{Provider: providerName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ports.NetworkError{Provider: providerName, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.DataShapeError{Source: providerName, Err: err}
	}
	return nil
}
