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
	. "tunedex/internal/models"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	spotifyTokenEndpoint = "https://accounts.spotify.com/api/token"

	SPOTIFY_TOKEN_CACHE_PREFIX = "spotify_tokens"

	sessionTokenLifetime = 24 * time.Hour
)

// SessionService owns two credential concerns: app session JWTs for request
// auth, and Spotify access tokens refreshed transparently from the user's
// stored refresh token. "No credential" (unlinked account) is distinct from
// "credential present but refresh failed".
type SessionService struct {
	config     config.Config
	cache      database.CacheClient
	httpClient *http.Client
	log        logger.Logger
}

func NewSessionService(config config.Config, cache database.CacheClient) *SessionService {
	return &SessionService{
		config: config,
		cache:  cache,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: logger.New("sessionService"),
	}
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// IssueSessionToken mints a signed app session token for the user.
func (s *SessionService) IssueSessionToken(userID uuid.UUID) (string, error) {
	log := s.log.Function("IssueSessionToken")

	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTokenLifetime)),
			Issuer:    "tunedex",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SessionSecret))
	if err != nil {
		return "", log.Err("failed to sign session token", err, "userID", userID)
	}

	return signed, nil
}

// ValidateSessionToken verifies a session JWT and returns the user ID it was
// issued for.
func (s *SessionService) ValidateSessionToken(tokenString string) (uuid.UUID, error) {
	log := s.log.Function("ValidateSessionToken")

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(s.config.SessionSecret), nil
		},
		jwt.WithIssuer("tunedex"),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, err
	}
	if !token.Valid {
		return uuid.Nil, log.ErrMsg("invalid session token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, log.Err("invalid session subject", err)
	}

	return userID, nil
}

type spotifyTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// ValidToken returns a usable Spotify access token for the user, refreshing
// through the accounts endpoint when nothing valid is cached. Returns
// ErrNoCredential when the account is not linked.
func (s *SessionService) ValidToken(ctx context.Context, user *User) (string, error) {
	log := s.log.Function("ValidToken")

	if user.SpotifyRefreshToken == "" {
		return "", ErrNoCredential
	}

	var cached string
	found, err := database.NewCacheBuilder(s.cache, user.ID).
		WithContext(ctx).
		WithHash(SPOTIFY_TOKEN_CACHE_PREFIX).
		Get(&cached)
	if err != nil {
		log.Warn("failed to read token cache", "userID", user.ID, "error", err)
	}

	if found && cached != "" {
		return cached, nil
	}

	token, expiresIn, err := s.refreshAccessToken(ctx, user.SpotifyRefreshToken)
	if err != nil {
		return "", log.Err("failed to refresh spotify token", err, "userID", user.ID)
	}

	// Expire the cache a minute early so we never hand out a nearly dead
	// token.
	ttl := time.Duration(expiresIn)*time.Second - time.Minute
	if ttl < time.Minute {
		ttl = time.Minute
	}

	err = database.NewCacheBuilder(s.cache, user.ID).
		WithContext(ctx).
		WithHash(SPOTIFY_TOKEN_CACHE_PREFIX).
		WithStruct(token).
		WithTTL(ttl).
		Set()
	if err != nil {
		log.Warn("failed to cache spotify token", "userID", user.ID, "error", err)
	}

	return token, nil
}

func (s *SessionService) refreshAccessToken(
	ctx context.Context,
	refreshToken string,
) (string, int, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(
		ctx,
		"POST",
		spotifyTokenEndpoint,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.config.SpotifyClientID, s.config.SpotifyClientSecret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("token refresh returned status %d", resp.StatusCode)
	}

	var payload spotifyTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", 0, err
	}

	if payload.AccessToken == "" {
		return "", 0, fmt.Errorf("token refresh returned empty access token")
	}

	return payload.AccessToken, payload.ExpiresIn, nil
}
