// Spotify implementation of the catalog Client.
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/search
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sakif/playlistify/internal/apperror"
	"github.com/sakif/playlistify/internal/model"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// searchLimit caps how many hits one search returns. The selection UI
	// shows a single page — pagination is deliberately out of scope.
	searchLimit = 20
)

// spotifyImage represents an image resource.
type spotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// spotifyArtist is the slice of the artist object we care about.
type spotifyArtist struct {
	Name string `json:"name"`
}

// spotifyAlbum is the slice of the album object we care about.
type spotifyAlbum struct {
	Name   string         `json:"name"`
	Images []spotifyImage `json:"images"`
}

// spotifyTrack represents one search hit. Spotify returns a much larger
// object — we only unmarshal the fields the normalized TrackRecord needs.
type spotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []spotifyArtist `json:"artists"`
	Album        spotifyAlbum    `json:"album"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

// spotifySearchResponse is the /v1/search envelope for type=track.
type spotifySearchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

// SpotifyClient talks to the Spotify Web API using the Client Credentials
// flow — app-level auth, no user consent screen, which is all a catalog
// search needs.
type SpotifyClient struct {
	creds   *clientcredentials.Config
	http    *http.Client
	baseURL string
}

// SpotifyOption customises a SpotifyClient. Only tests use these — they
// point the client at an httptest server.
type SpotifyOption func(*SpotifyClient)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) SpotifyOption {
	return func(c *SpotifyClient) { c.baseURL = u }
}

// WithTokenURL overrides the token endpoint used by the handshake.
func WithTokenURL(u string) SpotifyOption {
	return func(c *SpotifyClient) { c.creds.TokenURL = u }
}

// NewSpotifyClient creates a client with the given app credentials.
// Register an app at https://developer.spotify.com/dashboard to get them.
func NewSpotifyClient(clientID, clientSecret string, opts ...SpotifyOption) *SpotifyClient {
	c := &SpotifyClient{
		creds: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     spotifyTokenURL,
		},
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: spotifyBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// compile-time check that *SpotifyClient implements Client
var _ Client = (*SpotifyClient)(nil)

// Handshake exchanges the app credentials for a bearer token.
//
// CLIENT CREDENTIALS FLOW:
// A server-to-server POST to the token endpoint with the app's id/secret.
// No redirect, no user involvement — the token grants access to public
// catalog data only. oauth2/clientcredentials handles the POST body and
// the Basic auth header for us.
//
// The caller stores the token (and its expiry) in the user's session; we
// don't cache it here. A failed handshake is reported as the catalog being
// unavailable.
func (c *SpotifyClient) Handshake(ctx context.Context) (Token, error) {
	tok, err := c.creds.Token(ctx)
	if err != nil {
		return Token{}, apperror.Unavailable("catalog", fmt.Sprintf("token handshake failed: %v", err))
	}

	return Token{
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.Expiry,
	}, nil
}

// Search runs a track search and normalizes the hits.
//
// Any failure on the way — building the request, transport, a non-200
// status (including 401 for an expired token), or an undecodable body —
// comes back as apperror.ErrUnavailable. The search page shows an empty
// result list with a notice in that case; nothing crashes.
func (c *SpotifyClient) Search(ctx context.Context, accessToken, query string) ([]model.TrackRecord, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", fmt.Sprint(searchLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: building search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperror.Unavailable("catalog", fmt.Sprintf("search request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Unavailable("catalog", fmt.Sprintf("search returned status %d", resp.StatusCode))
	}

	var body spotifySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperror.Unavailable("catalog", fmt.Sprintf("decoding search response: %v", err))
	}

	records := make([]model.TrackRecord, 0, len(body.Tracks.Items))
	for _, t := range body.Tracks.Items {
		records = append(records, normalizeTrack(t))
	}

	return records, nil
}

// normalizeTrack flattens one provider hit into a TrackRecord:
// artists joined into one display string, first album image (Spotify orders
// images largest-first) or empty when the album has none.
func normalizeTrack(t spotifyTrack) model.TrackRecord {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}

	image := ""
	if len(t.Album.Images) > 0 {
		image = t.Album.Images[0].URL
	}

	return model.TrackRecord{
		Title:       t.Name,
		CatalogID:   t.ID,
		AlbumName:   t.Album.Name,
		AlbumImage:  image,
		Artists:     strings.Join(names, ", "),
		ExternalURL: t.ExternalURLs.Spotify,
	}
}
