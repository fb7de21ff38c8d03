package spotify

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/ewilliams-labs/guessfm/internal/core/ports"
)

// searchArtist searches for an artist by name and returns the best match.
func (c *Client) searchArtist(ctx context.Context, artistName string) (spotifyArtist, error) {
	searchURL, err := url.Parse(fmt.Sprintf("%s/search", c.baseURL))
	if err != nil {
		return spotifyArtist{}, fmt.Errorf("spotify adapter: invalid search url: %w", err)
	}

	query := searchURL.Query()
	query.Set("q", artistName)
	query.Set("type", "artist")
	query.Set("limit", "1")
	query.Set("market", c.market)
	searchURL.RawQuery = query.Encode()

	log.Printf("DEBUG spotify adapter: artist search URL: %s", searchURL.String()) // #nosec G706 -- URL is internally constructed from trusted baseURL

	var searchBody struct {
		Artists struct {
			Items []spotifyArtist `json:"items"`
		} `json:"artists"`
	}
	if err := c.getJSON(ctx, searchURL.String(), &searchBody); err != nil {
		return spotifyArtist{}, err
	}

	if len(searchBody.Artists.Items) == 0 || searchBody.Artists.Items[0].ID == "" {
		return spotifyArtist{}, &ports.ArtistNotFoundError{Query: artistName}
	}

	return searchBody.Artists.Items[0], nil
}

// getTopTracks fetches an artist's top tracks from Spotify.
func (c *Client) getTopTracks(ctx context.Context, artistID string) ([]spotifyTrack, error) {
	topTracksURL := fmt.Sprintf("%s/artists/%s/top-tracks?market=%s", c.baseURL, url.PathEscape(artistID), url.QueryEscape(c.market))

	var body struct {
		Tracks []spotifyTrack `json:"tracks"`
	}
	if err := c.getJSON(ctx, topTracksURL, &body); err != nil {
		return nil, err
	}

	return body.Tracks, nil
}
