package services

import (
	"context"
	"time"
	"tunedex/internal/mood"
	"tunedex/internal/repositories"

	. "tunedex/internal/models"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompletionService is the queue state machine's completion detector. It
// re-runs after every rate/skip mutation as a cheap idempotent poll: once the
// queue's completion timestamp is set, every later check short-circuits.
type CompletionService struct {
	queueRepo       repositories.DailyQueueRepository
	playlistRepo    repositories.DailyPlaylistRepository
	playlistService *PlaylistService
	db              *gorm.DB
	log             logger.Logger
}

func NewCompletionService(
	repos repositories.Repository,
	playlistService *PlaylistService,
	db *gorm.DB,
) *CompletionService {
	return &CompletionService{
		queueRepo:       repos.DailyQueue,
		playlistRepo:    repos.DailyPlaylist,
		playlistService: playlistService,
		db:              db,
		log:             logger.New("completionService"),
	}
}

// Check evaluates the queue's resolution state and, the first time every item
// is resolved, derives the day's mood, marks the queue complete, and
// materializes the playlist. Returns the derived status either way.
func (s *CompletionService) Check(ctx context.Context, queueID uuid.UUID) (QueueStatus, error) {
	log := s.log.Function("Check")

	queue, err := s.queueRepo.GetByID(ctx, s.db, queueID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return QueueStatus{}, ErrNotFound
		}
		return QueueStatus{}, err
	}

	if queue.CompletedAt != nil {
		return s.completedStatus(ctx, queue), nil
	}

	status := queue.Status(nil)
	if status.State != QueueStateInProgress || status.Rated < status.Total {
		return status, nil
	}

	label := mood.Classify(resolvedScores(queue.Items))

	won, err := s.queueRepo.Complete(ctx, s.db, queueID, string(label), time.Now())
	if err != nil {
		return QueueStatus{}, err
	}

	if err := s.queueRepo.ClearQueueCache(ctx, queue.UserID, queue.Date); err != nil {
		log.Warn("failed to clear queue cache", "queueID", queueID, "error", err)
	}

	if !won {
		// A concurrent last-item resolution already completed the queue.
		// That race outcome is swallowed, never surfaced.
		log.Info("queue completed concurrently", "queueID", queueID)
		queue, err = s.queueRepo.GetByID(ctx, s.db, queueID)
		if err != nil {
			return QueueStatus{}, err
		}
		return s.completedStatus(ctx, queue), nil
	}

	moodLabel := string(label)
	queue.Mood = &moodLabel

	playlist, err := s.playlistService.Materialize(ctx, s.db, queue, moodLabel)
	if err != nil {
		// The completion timestamp is already the gate other readers use;
		// the materializer's insert is not retried automatically.
		log.Er("playlist materialization failed", err, "queueID", queueID)
		return QueueStatus{
			State: QueueStateCompleted,
			Rated: len(queue.Items),
			Total: len(queue.Items),
			Mood:  queue.Mood,
		}, nil
	}

	log.Info(
		"queue completed",
		"queueID", queueID,
		"mood", moodLabel,
		"playlistID", playlist.ID,
	)

	return QueueStatus{
		State:      QueueStateCompleted,
		Rated:      len(queue.Items),
		Total:      len(queue.Items),
		Mood:       queue.Mood,
		PlaylistID: &playlist.ID,
	}, nil
}

func (s *CompletionService) completedStatus(ctx context.Context, queue *DailyQueue) QueueStatus {
	log := s.log.Function("completedStatus")

	var playlistID *uuid.UUID
	playlist, err := s.playlistRepo.GetByQueueID(ctx, s.db, queue.ID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Warn("failed to read playlist for completed queue", "queueID", queue.ID, "error", err)
		}
	} else {
		playlistID = &playlist.ID
	}

	return queue.Status(playlistID)
}

// resolvedScores collects scores from resolved, non-skipped items. A skipped
// item contributes nothing even if it somehow also carries a score.
func resolvedScores(items []DailyQueueItem) []int {
	scores := make([]int, 0, len(items))
	for _, item := range items {
		if item.Skipped || item.Score == nil {
			continue
		}
		scores = append(scores, *item.Score)
	}
	return scores
}
