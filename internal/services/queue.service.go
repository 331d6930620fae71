package services

import (
	"context"
	"math/rand"
	"time"
	"tunedex/internal/repositories"

	. "tunedex/internal/models"

	logger "github.com/Bparsons0904/goLogger"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// DailyQueueSize is the target queue length; smaller pools yield shorter
	// queues rather than failing.
	DailyQueueSize = 10

	candidateFetchLimit = 50
	recommendationSeeds = 5
)

// CredentialProvider supplies a valid external-source token for a user.
type CredentialProvider interface {
	ValidToken(ctx context.Context, user *User) (string, error)
}

// QueueService builds the once-per-day candidate queue. Construction is
// idempotent per (user, local calendar day): an existing queue short-circuits
// the build, and the unique (user, date) index backstops concurrent builds.
type QueueService struct {
	queueRepo          repositories.DailyQueueRepository
	trackRepo          repositories.TrackRepository
	transactionService Transactor
	spotify            SpotifyClient
	tags               TagLookup
	credentials        CredentialProvider
	db                 *gorm.DB
	log                logger.Logger
}

func NewQueueService(
	repos repositories.Repository,
	transactionService Transactor,
	spotify SpotifyClient,
	tags TagLookup,
	credentials CredentialProvider,
	db *gorm.DB,
) *QueueService {
	return &QueueService{
		queueRepo:          repos.DailyQueue,
		trackRepo:          repos.Track,
		transactionService: transactionService,
		spotify:            spotify,
		tags:               tags,
		credentials:        credentials,
		db:                 db,
		log:                logger.New("queueService"),
	}
}

// EnsureDailyQueue returns the queue for the user's current local day,
// building it on first access. Returns ErrNoCredential when the user has no
// linked source and ErrBuildFailed when sourcing or persistence fails.
func (s *QueueService) EnsureDailyQueue(ctx context.Context, user *User) (*DailyQueue, error) {
	log := s.log.Function("EnsureDailyQueue")

	today := user.LocalDay(time.Now())

	queue, err := s.queueRepo.GetByUserAndDate(ctx, s.db, user.ID, today)
	if err == nil {
		return queue, nil
	}
	if err != gorm.ErrRecordNotFound {
		log.Er("queue read failed", err, "userID", user.ID)
		return nil, ErrBuildFailed
	}

	token, err := s.credentials.ValidToken(ctx, user)
	if err != nil {
		if err == ErrNoCredential {
			return nil, ErrNoCredential
		}
		log.Warn("credential refresh failed", "userID", user.ID, "error", err)
		return nil, ErrBuildFailed
	}

	selection := s.selectCandidates(ctx, token, user)
	if len(selection) == 0 {
		log.Warn("candidate pool empty after dedup", "userID", user.ID)
		return nil, ErrBuildFailed
	}

	s.attachTags(ctx, selection)

	if err := s.persistQueue(ctx, user, today, selection); err != nil {
		if err == gorm.ErrDuplicatedKey {
			// A concurrent build won the (user, date) race; the winner's
			// queue is the queue.
			log.Info("concurrent queue build detected, re-reading", "userID", user.ID)
		} else {
			log.Er("queue persistence failed", err, "userID", user.ID)
			return nil, ErrBuildFailed
		}
	}

	queue, err = s.queueRepo.GetByUserAndDate(ctx, s.db, user.ID, today)
	if err != nil {
		return nil, ErrBuildFailed
	}

	log.Info(
		"daily queue ready",
		"userID", user.ID,
		"queueID", queue.ID,
		"items", len(queue.Items),
	)
	return queue, nil
}

// selectCandidates casts the wide net: broad listening history across three
// time windows, recent plays, and similarity-seeded recommendations keyed off
// the user's top artists. Individual source failures narrow the pool instead
// of aborting the build.
func (s *QueueService) selectCandidates(
	ctx context.Context,
	token string,
	user *User,
) []SpotifyTrack {
	log := s.log.Function("selectCandidates")

	var (
		topShort, topMedium, topLong []SpotifyTrack
		recent, similar              []SpotifyTrack
	)

	var g errgroup.Group

	g.Go(func() (err error) {
		topShort, err = s.spotify.TopTracks(ctx, token, RangeShortTerm, candidateFetchLimit)
		return err
	})
	g.Go(func() (err error) {
		topMedium, err = s.spotify.TopTracks(ctx, token, RangeMediumTerm, candidateFetchLimit)
		return err
	})
	g.Go(func() (err error) {
		topLong, err = s.spotify.TopTracks(ctx, token, RangeLongTerm, candidateFetchLimit)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.spotify.RecentlyPlayed(ctx, token, candidateFetchLimit)
		return err
	})
	g.Go(func() error {
		// Seed fetch and recommendation call are dependent, so they run
		// sequentially inside one goroutine.
		seeds, err := s.spotify.TopArtistIDs(ctx, token, recommendationSeeds)
		if err != nil {
			return err
		}
		similar, err = s.spotify.Recommendations(ctx, token, seeds, candidateFetchLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Warn("one or more candidate sources failed", "userID", user.ID, "error", err)
	}

	pool := make([]SpotifyTrack, 0,
		len(topShort)+len(topMedium)+len(topLong)+len(recent)+len(similar))
	pool = append(pool, topShort...)
	pool = append(pool, topMedium...)
	pool = append(pool, topLong...)
	pool = append(pool, recent...)
	pool = append(pool, similar...)

	deduped := dedupeByID(pool)

	return sampleQueue(deduped, DailyQueueSize, nil)
}

// attachTags resolves genre tags (and missing preview URLs) for the selected
// tracks. Lookup failures leave the tag set empty; they never abort a build.
func (s *QueueService) attachTags(ctx context.Context, selection []SpotifyTrack) {
	for i := range selection {
		artist := ""
		if len(selection[i].Artists) > 0 {
			artist = selection[i].Artists[0]
		}

		result := s.tags.Lookup(ctx, artist, selection[i].Title)
		selection[i].GenreTags = result.Tags
		if selection[i].PreviewURL == nil && result.PreviewURL != nil {
			selection[i].PreviewURL = result.PreviewURL
		}
	}
}

// persistQueue commits the build: catalog upsert, catalog re-read for
// internal IDs, queue row, and bulk items — queue and items last so a
// half-finished build is never returned as valid on the next read.
func (s *QueueService) persistQueue(
	ctx context.Context,
	user *User,
	today time.Time,
	selection []SpotifyTrack,
) error {
	log := s.log.Function("persistQueue")

	return s.transactionService.Execute(ctx, func(txCtx context.Context, tx *gorm.DB) error {
		catalog := make([]*Track, 0, len(selection))
		spotifyIDs := make([]string, 0, len(selection))
		for _, candidate := range selection {
			catalog = append(catalog, &Track{
				SpotifyID:  candidate.ID,
				Title:      candidate.Title,
				Artists:    datatypes.NewJSONSlice(candidate.Artists),
				ArtworkURL: candidate.ArtworkURL,
				PreviewURL: candidate.PreviewURL,
				GenreTags:  datatypes.NewJSONSlice(candidate.GenreTags),
			})
			spotifyIDs = append(spotifyIDs, candidate.ID)
		}

		if err := s.trackRepo.UpsertBySpotifyID(txCtx, tx, catalog); err != nil {
			return err
		}

		byID, err := s.trackRepo.GetBySpotifyIDs(txCtx, tx, spotifyIDs)
		if err != nil {
			return err
		}

		queue := &DailyQueue{
			UserID: user.ID,
			Date:   today,
		}
		if err := s.queueRepo.Create(txCtx, tx, queue); err != nil {
			return err
		}

		items := make([]*DailyQueueItem, 0, len(selection))
		position := 0
		for _, candidate := range selection {
			track, ok := byID[candidate.ID]
			if !ok {
				log.Warn("selection missing catalog row, dropping", "spotifyID", candidate.ID)
				continue
			}
			items = append(items, &DailyQueueItem{
				QueueID:  queue.ID,
				TrackID:  track.ID,
				Position: position,
			})
			position++
		}

		if len(items) == 0 {
			// Committing a zero-item queue would leave the day stuck in
			// "building" with no path to completion or rebuild.
			return log.ErrMsg("no selections resolved to catalog rows")
		}

		return s.queueRepo.CreateItems(txCtx, tx, items)
	})
}

// dedupeByID removes duplicate external track IDs from the pool, preserving
// first-seen order.
func dedupeByID(pool []SpotifyTrack) []SpotifyTrack {
	seen := make(map[string]bool, len(pool))
	deduped := make([]SpotifyTrack, 0, len(pool))

	for _, track := range pool {
		if track.ID == "" || seen[track.ID] {
			continue
		}
		seen[track.ID] = true
		deduped = append(deduped, track)
	}

	return deduped
}

// sampleQueue uniformly shuffles the pool (full Fisher-Yates) and takes the
// first n. A nil rng uses the global source.
func sampleQueue(pool []SpotifyTrack, n int, rng *rand.Rand) []SpotifyTrack {
	shuffled := make([]SpotifyTrack, len(pool))
	copy(shuffled, pool)

	swap := func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	if rng != nil {
		rng.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}

	if len(shuffled) > n {
		shuffled = shuffled[:n]
	}

	return shuffled
}
