package services

import (
	"context"
	"time"
	"tunedex/internal/repositories"

	. "tunedex/internal/models"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RatingService records rating and skip decisions against single queue items.
// Each mutation targets one row by primary key; no cross-item coordination is
// needed, and the completion check runs after every mutation.
type RatingService struct {
	queueRepo          repositories.DailyQueueRepository
	ratingRepo         repositories.RatingRepository
	completionService  *CompletionService
	transactionService Transactor
	db                 *gorm.DB
	log                logger.Logger
}

func NewRatingService(
	repos repositories.Repository,
	completionService *CompletionService,
	transactionService Transactor,
	db *gorm.DB,
) *RatingService {
	return &RatingService{
		queueRepo:          repos.DailyQueue,
		ratingRepo:         repos.Rating,
		completionService:  completionService,
		transactionService: transactionService,
		db:                 db,
		log:                logger.New("ratingService"),
	}
}

// Rate resolves a pending queue item with a 1-10 score and mirrors it into
// the permanent rating history in the same transaction. Strict: a write that
// does not persist fails the call and skips the mirror. Re-issuing an
// identical rate call is idempotent, so a client retry after a lost response
// succeeds.
func (s *RatingService) Rate(
	ctx context.Context,
	user *User,
	itemID uuid.UUID,
	score int,
) (QueueStatus, error) {
	log := s.log.Function("Rate")

	if score < MinScore || score > MaxScore {
		return QueueStatus{}, ErrInvalidScore
	}

	item, queue, err := s.ownedItem(ctx, user, itemID)
	if err != nil {
		return QueueStatus{}, err
	}

	now := time.Now()

	err = s.transactionService.Execute(ctx, func(txCtx context.Context, tx *gorm.DB) error {
		rows, err := s.queueRepo.SetItemScore(txCtx, tx, itemID, score, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			// Zero rows can mean the item is already resolved, which is
			// exactly what a client retry after a lost response looks like.
			// Re-issuing the same score is harmless; anything else conflicts
			// with the final first resolution.
			current, readErr := s.queueRepo.GetItem(txCtx, tx, itemID)
			if readErr != nil {
				return ErrMutationFailed
			}
			if current.Skipped || current.Score == nil || *current.Score != score {
				return ErrMutationFailed
			}
		}

		return s.ratingRepo.Upsert(txCtx, tx, &Rating{
			UserID:  user.ID,
			TrackID: item.TrackID,
			Score:   score,
			RatedAt: now,
		})
	})
	if err != nil {
		if err == ErrMutationFailed {
			return QueueStatus{}, ErrMutationFailed
		}
		log.Er("rating transaction failed", err, "itemID", itemID, "userID", user.ID)
		return QueueStatus{}, ErrMutationFailed
	}

	if err := s.queueRepo.ClearQueueCache(ctx, queue.UserID, queue.Date); err != nil {
		log.Warn("failed to clear queue cache", "queueID", queue.ID, "error", err)
	}

	log.Info("rated queue item", "itemID", itemID, "userID", user.ID, "score", score)

	return s.completionService.Check(ctx, queue.ID)
}

// Skip marks a pending item skipped. Best-effort: a failed update is logged
// and the completion check still runs, so the caller is not hard-failed.
func (s *RatingService) Skip(
	ctx context.Context,
	user *User,
	itemID uuid.UUID,
) (QueueStatus, error) {
	log := s.log.Function("Skip")

	_, queue, err := s.ownedItem(ctx, user, itemID)
	if err != nil {
		return QueueStatus{}, err
	}

	rows, err := s.queueRepo.SetItemSkipped(ctx, s.db, itemID)
	if err != nil {
		log.Warn("skip update failed", "itemID", itemID, "error", err)
	} else if rows == 0 {
		log.Warn("skip matched no pending item", "itemID", itemID)
	}

	if err := s.queueRepo.ClearQueueCache(ctx, queue.UserID, queue.Date); err != nil {
		log.Warn("failed to clear queue cache", "queueID", queue.ID, "error", err)
	}

	return s.completionService.Check(ctx, queue.ID)
}

func (s *RatingService) ownedItem(
	ctx context.Context,
	user *User,
	itemID uuid.UUID,
) (*DailyQueueItem, *DailyQueue, error) {
	item, err := s.queueRepo.GetItem(ctx, s.db, itemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	queue, err := s.queueRepo.GetByID(ctx, s.db, item.QueueID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	if queue.UserID != user.ID {
		return nil, nil, ErrNotFound
	}

	return item, queue, nil
}
