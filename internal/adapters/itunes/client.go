package itunes

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ewilliams-labs/guessfm/internal/adapters/httpretry"
	"github.com/ewilliams-labs/guessfm/internal/core/domain"
	"github.com/ewilliams-labs/guessfm/internal/core/ports"
)

const (
	providerName     = "itunes"
	defaultSongLimit = 200
	defaultCountry   = "US"
)

// Client is a catalog provider backed by the iTunes Search API.
type Client struct {
	doer      *httpretry.Doer
	baseURL   string
	songLimit int
	country   string
}

// compile-time interface assertion
var _ ports.CatalogProvider = (*Client)(nil)

// NewClient constructs an iTunes client. songLimit <= 0 and an empty country
// use the API defaults this client was written against.
func NewClient(doer *httpretry.Doer, baseURL string, songLimit int, country string) *Client {
	if doer == nil {
		doer = httpretry.New("itunes adapter", nil, 0, 0, nil)
	}
	if songLimit <= 0 {
		songLimit = defaultSongLimit
	}
	if country == "" {
		country = defaultCountry
	}
	return &Client{
		doer:      doer,
		baseURL:   strings.TrimRight(baseURL, "/"),
		songLimit: songLimit,
		country:   country,
	}
}

// FetchArtistCatalog finds the best matching artist and returns their songs.
func (c *Client) FetchArtistCatalog(ctx context.Context, artistName string) (ports.ArtistCatalog, error) {
	// 1. Resolve the artist
	artist, err := c.searchArtist(ctx, artistName)
	if err != nil {
		return ports.ArtistCatalog{}, err
	}

	// 2. Look up their songs
	results, err := c.lookupSongs(ctx, artist.ArtistID)
	if err != nil {
		return ports.ArtistCatalog{}, err
	}

	tracks := make([]domain.RawTrack, 0, len(results))
	for _, r := range results {
		if r.WrapperType == wrapperArtist {
			continue
		}
		tracks = append(tracks, mapResultToRaw(r))
	}

	log.Printf("DEBUG itunes adapter: %d records for artist %q (%d)", len(tracks), artist.ArtistName, artist.ArtistID) // #nosec G706 -- artist name comes from the provider response
	return ports.ArtistCatalog{
		ArtistID:   strconv.FormatInt(artist.ArtistID, 10),
		ArtistName: artist.ArtistName,
		Tracks:     tracks,
	}, nil
}

func (c *Client) searchArtist(ctx context.Context, artistName string) (itunesResult, error) {
	searchURL, err := url.Parse(fmt.Sprintf("%s/search", c.baseURL))
	if err != nil {
		return itunesResult{}, fmt.Errorf("itunes adapter: invalid search url: %w", err)
	}

	query := searchURL.Query()
	query.Set("term", artistName)
	query.Set("entity", "musicArtist")
	query.Set("limit", "1")
	query.Set("country", c.country)
	searchURL.RawQuery = query.Encode()

	var body searchResponse
	if err := c.getJSON(ctx, searchURL.String(), &body); err != nil {
		return itunesResult{}, err
	}

	for _, r := range body.Results {
		if r.WrapperType == wrapperArtist && r.ArtistID != 0 {
			return r, nil
		}
	}
	return itunesResult{}, &ports.ArtistNotFoundError{Query: artistName}
}

func (c *Client) lookupSongs(ctx context.Context, artistID int64) ([]itunesResult, error) {
	lookupURL, err := url.Parse(fmt.Sprintf("%s/lookup", c.baseURL))
	if err != nil {
		return nil, fmt.Errorf("itunes adapter: invalid lookup url: %w", err)
	}

	query := lookupURL.Query()
	query.Set("id", strconv.FormatInt(artistID, 10))
	query.Set("entity", "song")
	query.Set("limit", strconv.Itoa(c.songLimit))
	query.Set("country", c.country)
	lookupURL.RawQuery = query.Encode()

	var body searchResponse
	if err := c.getJSON(ctx, lookupURL.String(), &body); err != nil {
		return nil, err
	}
	return body.Results, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("itunes adapter: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

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
