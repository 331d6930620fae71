package services

import (
	"context"
	"sort"
	"tunedex/internal/repositories"

	. "tunedex/internal/models"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlaylistScoreThreshold is the inclusion floor: only items the user scored
// 7 or higher make the day's playlist. Consuming UI copy must say "scored
// 7+" to match.
const PlaylistScoreThreshold = 7

// PlaylistService materializes the derived daily playlist for a completed
// queue. A playlist exists at most once per queue; the materialize race
// resolves through the unique queue index.
type PlaylistService struct {
	playlistRepo repositories.DailyPlaylistRepository
	log          logger.Logger
}

func NewPlaylistService(repos repositories.Repository) *PlaylistService {
	return &PlaylistService{
		playlistRepo: repos.DailyPlaylist,
		log:          logger.New("playlistService"),
	}
}

// Materialize creates the playlist and its items from the queue's resolved
// set. When a concurrent completion already created it, the existing playlist
// is returned instead.
func (s *PlaylistService) Materialize(
	ctx context.Context,
	tx *gorm.DB,
	queue *DailyQueue,
	mood string,
) (*DailyPlaylist, error) {
	log := s.log.Function("Materialize")

	playlist := &DailyPlaylist{
		QueueID: queue.ID,
		UserID:  queue.UserID,
		Mood:    mood,
	}

	if err := s.playlistRepo.Create(ctx, tx, playlist); err != nil {
		if err == gorm.ErrDuplicatedKey {
			log.Info("playlist already materialized by concurrent completion", "queueID", queue.ID)
			return s.playlistRepo.GetByQueueID(ctx, tx, queue.ID)
		}
		return nil, err
	}

	items := playlistItemsFor(playlist.ID, queue.Items)
	if err := s.playlistRepo.CreateItems(ctx, tx, items); err != nil {
		return nil, err
	}

	playlist.Items = make([]DailyPlaylistItem, 0, len(items))
	for _, item := range items {
		playlist.Items = append(playlist.Items, *item)
	}

	log.Info(
		"materialized daily playlist",
		"queueID", queue.ID,
		"mood", mood,
		"items", len(items),
	)
	return playlist, nil
}

// playlistItemsFor applies the inclusion rule and ordering: non-skipped items
// scored at or above the threshold, strictly descending by score, ties broken
// deterministically by original queue position, positions reassigned 0..k-1.
// An empty result is valid; the playlist row itself still exists.
func playlistItemsFor(playlistID uuid.UUID, queueItems []DailyQueueItem) []*DailyPlaylistItem {
	qualifying := make([]DailyQueueItem, 0, len(queueItems))
	for _, item := range queueItems {
		if item.Skipped || item.Score == nil {
			continue
		}
		if *item.Score < PlaylistScoreThreshold {
			continue
		}
		qualifying = append(qualifying, item)
	}

	sort.SliceStable(qualifying, func(i, j int) bool {
		if *qualifying[i].Score != *qualifying[j].Score {
			return *qualifying[i].Score > *qualifying[j].Score
		}
		return qualifying[i].Position < qualifying[j].Position
	})

	items := make([]*DailyPlaylistItem, 0, len(qualifying))
	for position, item := range qualifying {
		items = append(items, &DailyPlaylistItem{
			PlaylistID: playlistID,
			TrackID:    item.TrackID,
			Score:      *item.Score,
			Position:   position,
		})
	}

	return items
}
