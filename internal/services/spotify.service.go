package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"tunedex/config"

	logger "github.com/Bparsons0904/goLogger"
)

const defaultSpotifyAPIBaseURL = "https://api.spotify.com/v1"

// SpotifyTrack is the external candidate shape consumed by the queue builder.
type SpotifyTrack struct {
	ID         string
	Title      string
	Artists    []string
	ArtworkURL *string
	PreviewURL *string

	// GenreTags is filled in best-effort by the tag lookup collaborator
	// after selection; the source API itself does not return genres per
	// track.
	GenreTags []string
}

// TimeRange selects the listening-history window for top-track fetches.
type TimeRange string

const (
	RangeShortTerm  TimeRange = "short_term"
	RangeMediumTerm TimeRange = "medium_term"
	RangeLongTerm   TimeRange = "long_term"
)

// SpotifyClient is the candidate-source collaborator contract. Services
// depend on this interface so tests inject fakes.
type SpotifyClient interface {
	TopTracks(ctx context.Context, token string, window TimeRange, limit int) ([]SpotifyTrack, error)
	RecentlyPlayed(ctx context.Context, token string, limit int) ([]SpotifyTrack, error)
	TopArtistIDs(ctx context.Context, token string, limit int) ([]string, error)
	Recommendations(ctx context.Context, token string, seedArtistIDs []string, limit int) ([]SpotifyTrack, error)
}

// SpotifyService is the HTTP implementation of SpotifyClient against the Web
// API.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

func NewSpotifyService(config config.Config) *SpotifyService {
	baseURL := config.SpotifyAPIBaseURL
	if baseURL == "" {
		baseURL = defaultSpotifyAPIBaseURL
	}

	return &SpotifyService{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: logger.New("spotifyService"),
	}
}

type spotifyImage struct {
	URL string `json:"url"`
}

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyAlbum struct {
	Images []spotifyImage `json:"images"`
}

type spotifyTrackPayload struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []spotifyArtist `json:"artists"`
	Album      spotifyAlbum    `json:"album"`
	PreviewURL *string         `json:"preview_url"`
}

type topTracksResponse struct {
	Items []spotifyTrackPayload `json:"items"`
}

type recentlyPlayedResponse struct {
	Items []struct {
		Track spotifyTrackPayload `json:"track"`
	} `json:"items"`
}

type topArtistsResponse struct {
	Items []spotifyArtist `json:"items"`
}

type recommendationsResponse struct {
	Tracks []spotifyTrackPayload `json:"tracks"`
}

func (s *SpotifyService) TopTracks(
	ctx context.Context,
	token string,
	window TimeRange,
	limit int,
) ([]SpotifyTrack, error) {
	log := s.log.Function("TopTracks")

	endpoint := fmt.Sprintf(
		"%s/me/top/tracks?time_range=%s&limit=%d",
		s.baseURL, window, limit,
	)

	var payload topTracksResponse
	if err := s.getJSON(ctx, token, endpoint, &payload); err != nil {
		return nil, log.Err("failed to fetch top tracks", err, "window", window)
	}

	return convertTracks(payload.Items), nil
}

func (s *SpotifyService) RecentlyPlayed(
	ctx context.Context,
	token string,
	limit int,
) ([]SpotifyTrack, error) {
	log := s.log.Function("RecentlyPlayed")

	endpoint := fmt.Sprintf("%s/me/player/recently-played?limit=%d", s.baseURL, limit)

	var payload recentlyPlayedResponse
	if err := s.getJSON(ctx, token, endpoint, &payload); err != nil {
		return nil, log.Err("failed to fetch recently played", err)
	}

	tracks := make([]spotifyTrackPayload, 0, len(payload.Items))
	for _, item := range payload.Items {
		tracks = append(tracks, item.Track)
	}

	return convertTracks(tracks), nil
}

func (s *SpotifyService) TopArtistIDs(
	ctx context.Context,
	token string,
	limit int,
) ([]string, error) {
	log := s.log.Function("TopArtistIDs")

	endpoint := fmt.Sprintf("%s/me/top/artists?limit=%d", s.baseURL, limit)

	var payload topArtistsResponse
	if err := s.getJSON(ctx, token, endpoint, &payload); err != nil {
		return nil, log.Err("failed to fetch top artists", err)
	}

	ids := make([]string, 0, len(payload.Items))
	for _, artist := range payload.Items {
		if artist.ID != "" {
			ids = append(ids, artist.ID)
		}
	}

	return ids, nil
}

func (s *SpotifyService) Recommendations(
	ctx context.Context,
	token string,
	seedArtistIDs []string,
	limit int,
) ([]SpotifyTrack, error) {
	log := s.log.Function("Recommendations")

	if len(seedArtistIDs) == 0 {
		return nil, nil
	}

	// The API accepts at most five seeds.
	if len(seedArtistIDs) > 5 {
		seedArtistIDs = seedArtistIDs[:5]
	}

	endpoint := fmt.Sprintf(
		"%s/recommendations?seed_artists=%s&limit=%d",
		s.baseURL, url.QueryEscape(strings.Join(seedArtistIDs, ",")), limit,
	)

	var payload recommendationsResponse
	if err := s.getJSON(ctx, token, endpoint, &payload); err != nil {
		return nil, log.Err("failed to fetch recommendations", err, "seeds", len(seedArtistIDs))
	}

	return convertTracks(payload.Tracks), nil
}

func (s *SpotifyService) getJSON(
	ctx context.Context,
	token string,
	endpoint string,
	out any,
) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func convertTracks(payloads []spotifyTrackPayload) []SpotifyTrack {
	tracks := make([]SpotifyTrack, 0, len(payloads))
	for _, p := range payloads {
		if p.ID == "" {
			continue
		}

		artists := make([]string, 0, len(p.Artists))
		for _, artist := range p.Artists {
			if artist.Name != "" {
				artists = append(artists, artist.Name)
			}
		}

		var artwork *string
		if len(p.Album.Images) > 0 && p.Album.Images[0].URL != "" {
			u := p.Album.Images[0].URL
			artwork = &u
		}

		tracks = append(tracks, SpotifyTrack{
			ID:         p.ID,
			Title:      p.Name,
			Artists:    artists,
			ArtworkURL: artwork,
			PreviewURL: p.PreviewURL,
		})
	}

	return tracks
}
