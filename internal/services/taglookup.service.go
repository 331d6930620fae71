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
	"tunedex/internal/database"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	TAG_LOOKUP_CACHE_PREFIX = "tag_lookups"
	TAG_LOOKUP_CACHE_EXPIRY = 7 * 24 * time.Hour
)

// TagLookup is the secondary tag/preview collaborator. Both operations are
// best-effort and never abort a queue build: absence of data is a valid,
// silent result.
type TagLookup interface {
	Lookup(ctx context.Context, artist, title string) TagLookupResult
}

type TagLookupResult struct {
	Tags       []string `json:"tags"`
	PreviewURL *string  `json:"previewUrl,omitempty"`
}

// TagLookupService resolves genre tags and preview URLs from a secondary
// catalog API, cached process-wide in valkey by normalized (artist, title).
// The cache client is constructor-injected so tests run against a fresh one.
type TagLookupService struct {
	baseURL    string
	cache      database.CacheClient
	httpClient *http.Client
	log        logger.Logger
}

func NewTagLookupService(config config.Config, cache database.CacheClient) *TagLookupService {
	return &TagLookupService{
		baseURL: strings.TrimRight(config.TagLookupBaseURL, "/"),
		cache:   cache,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: logger.New("tagLookupService"),
	}
}

// NormalizeLookupKey builds the cache key for an (artist, title) pair.
// Case and surrounding whitespace are ignored so UI-sourced and API-sourced
// spellings hit the same entry.
func NormalizeLookupKey(artist, title string) string {
	return strings.ToLower(strings.TrimSpace(artist)) + "|" + strings.ToLower(strings.TrimSpace(title))
}

type tagLookupResponse struct {
	Genres  []string `json:"genres"`
	Preview *string  `json:"preview"`
}

func (s *TagLookupService) Lookup(ctx context.Context, artist, title string) TagLookupResult {
	log := s.log.Function("Lookup")

	if s.baseURL == "" || title == "" {
		return TagLookupResult{}
	}

	key := NormalizeLookupKey(artist, title)

	var cached TagLookupResult
	found, err := database.NewCacheBuilder(s.cache, key).
		WithContext(ctx).
		WithHash(TAG_LOOKUP_CACHE_PREFIX).
		Get(&cached)
	if err != nil {
		log.Warn("failed to read tag lookup cache", "key", key, "error", err)
	}

	if found {
		return cached
	}

	result := s.fetch(ctx, artist, title, log)

	err = database.NewCacheBuilder(s.cache, key).
		WithContext(ctx).
		WithHash(TAG_LOOKUP_CACHE_PREFIX).
		WithStruct(result).
		WithTTL(TAG_LOOKUP_CACHE_EXPIRY).
		Set()
	if err != nil {
		log.Warn("failed to cache tag lookup", "key", key, "error", err)
	}

	return result
}

func (s *TagLookupService) fetch(
	ctx context.Context,
	artist, title string,
	log logger.Logger,
) TagLookupResult {
	endpoint := fmt.Sprintf(
		"%s/lookup?artist=%s&track=%s",
		s.baseURL, url.QueryEscape(artist), url.QueryEscape(title),
	)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		log.Warn("failed to build tag lookup request", "error", err)
		return TagLookupResult{}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Warn("tag lookup request failed", "artist", artist, "title", title, "error", err)
		return TagLookupResult{}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		log.Warn("tag lookup returned non-200", "status", resp.StatusCode, "title", title)
		return TagLookupResult{}
	}

	var payload tagLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Warn("failed to decode tag lookup response", "error", err)
		return TagLookupResult{}
	}

	return TagLookupResult{
		Tags:       payload.Genres,
		PreviewURL: payload.Preview,
	}
}
