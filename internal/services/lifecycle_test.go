package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"
	"tunedex/internal/repositories"

	. "tunedex/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// In-memory collaborators standing in for the gorm-backed repositories so the
// queue lifecycle can be exercised end to end.

type fakeTransactor struct{}

func (f *fakeTransactor) Execute(
	ctx context.Context,
	fn func(context.Context, *gorm.DB) error,
) error {
	return fn(ctx, nil)
}

type fakeQueueRepo struct {
	queues map[uuid.UUID]*DailyQueue
	items  map[uuid.UUID]*DailyQueueItem

	readErr      error
	missNextRead bool
	loseComplete bool

	creates   int
	completes int
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{
		queues: map[uuid.UUID]*DailyQueue{},
		items:  map[uuid.UUID]*DailyQueueItem{},
	}
}

func (f *fakeQueueRepo) withItems(q *DailyQueue) *DailyQueue {
	out := *q
	out.Items = nil
	for _, item := range f.items {
		if item.QueueID == q.ID {
			out.Items = append(out.Items, *item)
		}
	}
	sort.Slice(out.Items, func(i, j int) bool {
		return out.Items[i].Position < out.Items[j].Position
	})
	return &out
}

func (f *fakeQueueRepo) GetByUserAndDate(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	date time.Time,
) (*DailyQueue, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	if f.missNextRead {
		f.missNextRead = false
		return nil, gorm.ErrRecordNotFound
	}
	for _, q := range f.queues {
		if q.UserID == userID && q.Date.Equal(date) {
			return f.withItems(q), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeQueueRepo) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	queueID uuid.UUID,
) (*DailyQueue, error) {
	q, ok := f.queues[queueID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f.withItems(q), nil
}

func (f *fakeQueueRepo) GetItem(
	ctx context.Context,
	tx *gorm.DB,
	itemID uuid.UUID,
) (*DailyQueueItem, error) {
	item, ok := f.items[itemID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *item
	return &out, nil
}

func (f *fakeQueueRepo) Create(ctx context.Context, tx *gorm.DB, queue *DailyQueue) error {
	f.creates++
	for _, q := range f.queues {
		if q.UserID == queue.UserID && q.Date.Equal(queue.Date) {
			return gorm.ErrDuplicatedKey
		}
	}
	stored := *queue
	stored.ID = uuid.New()
	queue.ID = stored.ID
	f.queues[stored.ID] = &stored
	return nil
}

func (f *fakeQueueRepo) CreateItems(
	ctx context.Context,
	tx *gorm.DB,
	items []*DailyQueueItem,
) error {
	for _, item := range items {
		stored := *item
		stored.ID = uuid.New()
		item.ID = stored.ID
		f.items[stored.ID] = &stored
	}
	return nil
}

func (f *fakeQueueRepo) SetItemScore(
	ctx context.Context,
	tx *gorm.DB,
	itemID uuid.UUID,
	score int,
	ratedAt time.Time,
) (int, error) {
	item, ok := f.items[itemID]
	if !ok || item.Score != nil || item.Skipped {
		return 0, nil
	}
	s := score
	at := ratedAt
	item.Score = &s
	item.RatedAt = &at
	return 1, nil
}

func (f *fakeQueueRepo) SetItemSkipped(
	ctx context.Context,
	tx *gorm.DB,
	itemID uuid.UUID,
) (int, error) {
	item, ok := f.items[itemID]
	if !ok || item.Score != nil || item.Skipped {
		return 0, nil
	}
	item.Skipped = true
	return 1, nil
}

func (f *fakeQueueRepo) Complete(
	ctx context.Context,
	tx *gorm.DB,
	queueID uuid.UUID,
	mood string,
	completedAt time.Time,
) (bool, error) {
	f.completes++
	q, ok := f.queues[queueID]
	if !ok || q.CompletedAt != nil {
		return false, nil
	}
	m := mood
	at := completedAt
	q.Mood = &m
	q.CompletedAt = &at
	return !f.loseComplete, nil
}

func (f *fakeQueueRepo) ClearQueueCache(ctx context.Context, userID uuid.UUID, date time.Time) error {
	return nil
}

type fakeTrackRepo struct {
	bySpotifyID map[string]*Track
	dropAll     bool
}

func newFakeTrackRepo() *fakeTrackRepo {
	return &fakeTrackRepo{bySpotifyID: map[string]*Track{}}
}

func (f *fakeTrackRepo) UpsertBySpotifyID(ctx context.Context, tx *gorm.DB, tracks []*Track) error {
	for _, track := range tracks {
		if existing, ok := f.bySpotifyID[track.SpotifyID]; ok {
			track.ID = existing.ID
			continue
		}
		stored := *track
		stored.ID = uuid.New()
		track.ID = stored.ID
		f.bySpotifyID[stored.SpotifyID] = &stored
	}
	return nil
}

func (f *fakeTrackRepo) GetBySpotifyIDs(
	ctx context.Context,
	tx *gorm.DB,
	spotifyIDs []string,
) (map[string]*Track, error) {
	result := map[string]*Track{}
	if f.dropAll {
		return result, nil
	}
	for _, id := range spotifyIDs {
		if track, ok := f.bySpotifyID[id]; ok {
			result[id] = track
		}
	}
	return result, nil
}

type fakeRatingRepo struct {
	ratings map[string]*Rating
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: map[string]*Rating{}}
}

func (f *fakeRatingRepo) Upsert(ctx context.Context, tx *gorm.DB, rating *Rating) error {
	key := rating.UserID.String() + "|" + rating.TrackID.String()
	stored := *rating
	f.ratings[key] = &stored
	return nil
}

func (f *fakeRatingRepo) GetUserRatings(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) ([]*Rating, error) {
	out := make([]*Rating, 0, len(f.ratings))
	for _, rating := range f.ratings {
		if rating.UserID == userID {
			out = append(out, rating)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RatedAt.Before(out[j].RatedAt) })
	return out, nil
}

type fakePlaylistRepo struct {
	byQueueID map[uuid.UUID]*DailyPlaylist
	items     map[uuid.UUID][]*DailyPlaylistItem
	creates   int
}

func newFakePlaylistRepo() *fakePlaylistRepo {
	return &fakePlaylistRepo{
		byQueueID: map[uuid.UUID]*DailyPlaylist{},
		items:     map[uuid.UUID][]*DailyPlaylistItem{},
	}
}

func (f *fakePlaylistRepo) GetByQueueID(
	ctx context.Context,
	tx *gorm.DB,
	queueID uuid.UUID,
) (*DailyPlaylist, error) {
	playlist, ok := f.byQueueID[queueID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *playlist
	out.Items = nil
	for _, item := range f.items[playlist.ID] {
		out.Items = append(out.Items, *item)
	}
	sort.Slice(out.Items, func(i, j int) bool {
		return out.Items[i].Position < out.Items[j].Position
	})
	return &out, nil
}

func (f *fakePlaylistRepo) Create(
	ctx context.Context,
	tx *gorm.DB,
	playlist *DailyPlaylist,
) error {
	f.creates++
	if _, ok := f.byQueueID[playlist.QueueID]; ok {
		return gorm.ErrDuplicatedKey
	}
	stored := *playlist
	stored.ID = uuid.New()
	playlist.ID = stored.ID
	f.byQueueID[stored.QueueID] = &stored
	return nil
}

func (f *fakePlaylistRepo) CreateItems(
	ctx context.Context,
	tx *gorm.DB,
	items []*DailyPlaylistItem,
) error {
	for _, item := range items {
		stored := *item
		stored.ID = uuid.New()
		item.ID = stored.ID
		f.items[stored.PlaylistID] = append(f.items[stored.PlaylistID], &stored)
	}
	return nil
}

type fakeSpotify struct {
	mu     sync.Mutex
	tracks []SpotifyTrack
	calls  int
}

func (f *fakeSpotify) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSpotify) TopTracks(
	ctx context.Context,
	token string,
	window TimeRange,
	limit int,
) ([]SpotifyTrack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.tracks, nil
}

func (f *fakeSpotify) RecentlyPlayed(
	ctx context.Context,
	token string,
	limit int,
) ([]SpotifyTrack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil, nil
}

func (f *fakeSpotify) TopArtistIDs(ctx context.Context, token string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil, nil
}

func (f *fakeSpotify) Recommendations(
	ctx context.Context,
	token string,
	seedArtistIDs []string,
	limit int,
) ([]SpotifyTrack, error) {
	return nil, nil
}

type fakeTags struct{}

func (f *fakeTags) Lookup(ctx context.Context, artist, title string) TagLookupResult {
	return TagLookupResult{}
}

type fakeCredentials struct {
	err error
}

func (f *fakeCredentials) ValidToken(ctx context.Context, user *User) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token", nil
}

type lifecycleFixture struct {
	queueRepo    *fakeQueueRepo
	trackRepo    *fakeTrackRepo
	ratingRepo   *fakeRatingRepo
	playlistRepo *fakePlaylistRepo
	spotify      *fakeSpotify
	credentials  *fakeCredentials

	queue      *QueueService
	rating     *RatingService
	completion *CompletionService
}

func newLifecycleFixture(tracks []SpotifyTrack) *lifecycleFixture {
	fx := &lifecycleFixture{
		queueRepo:    newFakeQueueRepo(),
		trackRepo:    newFakeTrackRepo(),
		ratingRepo:   newFakeRatingRepo(),
		playlistRepo: newFakePlaylistRepo(),
		spotify:      &fakeSpotify{tracks: tracks},
		credentials:  &fakeCredentials{},
	}

	repos := repositories.Repository{
		Track:         fx.trackRepo,
		Rating:        fx.ratingRepo,
		DailyQueue:    fx.queueRepo,
		DailyPlaylist: fx.playlistRepo,
	}

	playlistService := NewPlaylistService(repos)
	fx.completion = NewCompletionService(repos, playlistService, nil)
	fx.queue = NewQueueService(repos, &fakeTransactor{}, fx.spotify, &fakeTags{}, fx.credentials, nil)
	fx.rating = NewRatingService(repos, fx.completion, &fakeTransactor{}, nil)

	return fx
}

func candidatePool(n int) []SpotifyTrack {
	tracks := make([]SpotifyTrack, 0, n)
	for i := range n {
		tracks = append(tracks, SpotifyTrack{
			ID:      fmt.Sprintf("track-%d", i),
			Title:   fmt.Sprintf("Track %d", i),
			Artists: []string{fmt.Sprintf("Artist %d", i)},
		})
	}
	return tracks
}

func testUser() *User {
	return &User{
		BaseUUIDModel:       BaseUUIDModel{ID: uuid.New()},
		Timezone:            "UTC",
		SpotifyRefreshToken: "refresh",
	}
}

func TestEnsureDailyQueue_BuildsOncePerDay(t *testing.T) {
	fx := newLifecycleFixture(candidatePool(15))
	user := testUser()
	ctx := context.Background()

	first, err := fx.queue.EnsureDailyQueue(ctx, user)
	require.NoError(t, err)
	require.Len(t, first.Items, DailyQueueSize)

	for i, item := range first.Items {
		assert.Equal(t, i, item.Position)
		assert.Nil(t, item.Score)
		assert.False(t, item.Skipped)
	}

	fetches := fx.spotify.fetchCount()

	second, err := fx.queue.EnsureDailyQueue(ctx, user)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "second build of the same day must return the same queue")
	assert.Equal(t, fetches, fx.spotify.fetchCount(), "existing queue must not refetch candidates")
	assert.Equal(t, 1, fx.queueRepo.creates)
}

func TestEnsureDailyQueue_ShortPoolYieldsShortQueue(t *testing.T) {
	fx := newLifecycleFixture(candidatePool(4))
	user := testUser()

	queue, err := fx.queue.EnsureDailyQueue(context.Background(), user)
	require.NoError(t, err)
	assert.Len(t, queue.Items, 4)
}

func TestEnsureDailyQueue_NoCredential(t *testing.T) {
	fx := newLifecycleFixture(candidatePool(15))
	fx.credentials.err = ErrNoCredential

	_, err := fx.queue.EnsureDailyQueue(context.Background(), testUser())
	assert.ErrorIs(t, err, ErrNoCredential)
	assert.Equal(t, 0, fx.spotify.fetchCount())
}

func TestEnsureDailyQueue_ReadFailureIsBuildFailed(t *testing.T) {
	fx := newLifecycleFixture(candidatePool(15))
	fx.queueRepo.readErr = gorm.ErrInvalidDB

	_, err := fx.queue.EnsureDailyQueue(context.Background(), testUser())
	assert.ErrorIs(t, err, ErrBuildFailed)
}

func TestEnsureDailyQueue_LostRaceReturnsWinner(t *testing.T) {
	fx := newLifecycleFixture(candidatePool(15))
	user := testUser()
	today := user.LocalDay(time.Now())

	winner := &DailyQueue{
		BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
		UserID:        user.ID,
		Date:          today,
	}
	fx.queueRepo.queues[winner.ID] = winner

	// The initial idempotency read misses, the insert then collides with the
	// concurrently created row.
	fx.queueRepo.missNextRead = true

	queue, err := fx.queue.EnsureDailyQueue(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, queue.ID, "losing builder must return the winner's queue")
}

func TestEnsureDailyQueue_UnresolvedCatalogFailsBuild(t *testing.T) {
	fx := newLifecycleFixture(candidatePool(15))
	fx.trackRepo.dropAll = true

	_, err := fx.queue.EnsureDailyQueue(context.Background(), testUser())
	assert.ErrorIs(t, err, ErrBuildFailed, "a queue with zero items must never be committed")
}

func (fx *lifecycleFixture) seedResolvedQueue(
	t *testing.T,
	userID uuid.UUID,
	resolutions []DailyQueueItem,
) uuid.UUID {
	t.Helper()

	queueID := uuid.New()
	fx.queueRepo.queues[queueID] = &DailyQueue{
		BaseUUIDModel: BaseUUIDModel{ID: queueID},
		UserID:        userID,
		Date:          time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}

	for i := range resolutions {
		item := resolutions[i]
		item.ID = uuid.New()
		item.QueueID = queueID
		item.Position = i
		if item.TrackID == uuid.Nil {
			item.TrackID = uuid.New()
		}
		fx.queueRepo.items[item.ID] = &item
	}

	return queueID
}

func TestCompletionCheck_CompletesExactlyOnce(t *testing.T) {
	fx := newLifecycleFixture(nil)
	user := testUser()

	queueID := fx.seedResolvedQueue(t, user.ID, []DailyQueueItem{
		{Score: intPtr(8)},
		{Score: intPtr(9)},
		{Skipped: true},
		{Score: intPtr(6)},
	})
	ctx := context.Background()

	status, err := fx.completion.Check(ctx, queueID)
	require.NoError(t, err)

	assert.Equal(t, QueueStateCompleted, status.State)
	require.NotNil(t, status.Mood)
	assert.Equal(t, "bright", *status.Mood)
	require.NotNil(t, status.PlaylistID)
	assert.Equal(t, 1, fx.queueRepo.completes)
	assert.Equal(t, 1, fx.playlistRepo.creates)

	playlist, err := fx.playlistRepo.GetByQueueID(ctx, nil, queueID)
	require.NoError(t, err)
	require.Len(t, playlist.Items, 2)
	assert.Equal(t, 9, playlist.Items[0].Score)
	assert.Equal(t, 8, playlist.Items[1].Score)

	// A later check short-circuits on the completion timestamp: no second
	// transition, no second materialization.
	again, err := fx.completion.Check(ctx, queueID)
	require.NoError(t, err)
	assert.Equal(t, QueueStateCompleted, again.State)
	assert.Equal(t, status.PlaylistID, again.PlaylistID)
	assert.Equal(t, 1, fx.queueRepo.completes)
	assert.Equal(t, 1, fx.playlistRepo.creates)
}

func TestCompletionCheck_UnresolvedItemsStayInProgress(t *testing.T) {
	fx := newLifecycleFixture(nil)
	user := testUser()

	queueID := fx.seedResolvedQueue(t, user.ID, []DailyQueueItem{
		{Score: intPtr(8)},
		{},
	})

	status, err := fx.completion.Check(context.Background(), queueID)
	require.NoError(t, err)

	assert.Equal(t, QueueStateInProgress, status.State)
	assert.Equal(t, 1, status.Rated)
	assert.Equal(t, 2, status.Total)
	assert.Equal(t, 0, fx.queueRepo.completes)
	assert.Equal(t, 0, fx.playlistRepo.creates)
}

func TestCompletionCheck_ConcurrentCompletionLoses(t *testing.T) {
	fx := newLifecycleFixture(nil)
	user := testUser()

	queueID := fx.seedResolvedQueue(t, user.ID, []DailyQueueItem{
		{Score: intPtr(9)},
		{Score: intPtr(8)},
	})

	// The concurrent winner already materialized its playlist.
	existing := &DailyPlaylist{
		BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
		QueueID:       queueID,
		UserID:        user.ID,
		Mood:          "hype",
	}
	fx.playlistRepo.byQueueID[queueID] = existing
	fx.queueRepo.loseComplete = true

	status, err := fx.completion.Check(context.Background(), queueID)
	require.NoError(t, err)

	assert.Equal(t, QueueStateCompleted, status.State)
	require.NotNil(t, status.PlaylistID)
	assert.Equal(t, existing.ID, *status.PlaylistID)
	assert.Equal(t, 0, fx.playlistRepo.creates, "loser must not materialize a second playlist")
}

func TestRate_IdenticalRetryIsIdempotent(t *testing.T) {
	fx := newLifecycleFixture(candidatePool(2))
	user := testUser()
	ctx := context.Background()

	queue, err := fx.queue.EnsureDailyQueue(ctx, user)
	require.NoError(t, err)
	require.Len(t, queue.Items, 2)

	first := queue.Items[0].ID
	second := queue.Items[1].ID

	status, err := fx.rating.Rate(ctx, user, first, 8)
	require.NoError(t, err)
	assert.Equal(t, QueueStateInProgress, status.State)

	// Same item, same score: the retry of a delivered mutation succeeds.
	status, err = fx.rating.Rate(ctx, user, first, 8)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Rated)

	// A different score conflicts with the final first resolution.
	_, err = fx.rating.Rate(ctx, user, first, 5)
	assert.ErrorIs(t, err, ErrMutationFailed)

	// Rating a skipped item is a conflict too, even retried.
	_, err = fx.rating.Skip(ctx, user, second)
	require.NoError(t, err)
	_, err = fx.rating.Rate(ctx, user, second, 8)
	assert.ErrorIs(t, err, ErrMutationFailed)
}

func TestRate_OtherUsersItemIsNotFound(t *testing.T) {
	fx := newLifecycleFixture(candidatePool(3))
	owner := testUser()
	ctx := context.Background()

	queue, err := fx.queue.EnsureDailyQueue(ctx, owner)
	require.NoError(t, err)

	_, err = fx.rating.Rate(ctx, testUser(), queue.Items[0].ID, 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDailyFlow_RoundTrip(t *testing.T) {
	fx := newLifecycleFixture(candidatePool(15))
	user := testUser()
	ctx := context.Background()

	queue, err := fx.queue.EnsureDailyQueue(ctx, user)
	require.NoError(t, err)
	require.Len(t, queue.Items, DailyQueueSize)

	scores := []int{8, 7, 9, 7, 8, 0, 7, 9, 8, 7} // 0 marks a skip
	var status QueueStatus
	for i, item := range queue.Items {
		if scores[i] == 0 {
			status, err = fx.rating.Skip(ctx, user, item.ID)
		} else {
			status, err = fx.rating.Rate(ctx, user, item.ID, scores[i])
		}
		require.NoError(t, err)
	}

	// Resolving the final item flips the queue to completed with a mood.
	assert.Equal(t, QueueStateCompleted, status.State)
	require.NotNil(t, status.Mood)
	assert.Equal(t, "bright", *status.Mood)
	require.NotNil(t, status.PlaylistID)

	playlist, err := fx.playlistRepo.GetByQueueID(ctx, nil, queue.ID)
	require.NoError(t, err)
	require.Len(t, playlist.Items, 9, "all nine rated items scored 7+")

	for i, item := range playlist.Items {
		assert.Equal(t, i, item.Position)
		if i > 0 {
			assert.GreaterOrEqual(t, playlist.Items[i-1].Score, item.Score)
		}
	}

	ratings, err := fx.ratingRepo.GetUserRatings(ctx, nil, user.ID)
	require.NoError(t, err)
	assert.Len(t, ratings, 9, "skipped items never reach the rating history")
}
