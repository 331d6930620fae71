package jobs

import (
	"context"
	"fmt"
	"tunedex/internal/database"
	"tunedex/internal/logger"
	"tunedex/internal/repositories"
	"tunedex/internal/services"
)

// DailyQueueJob prebuilds daily queues for every linked user so the first
// morning request is a cache hit. It calls the same idempotent ensure path
// the HTTP surface uses; a user who already opened the app today is a no-op.
type DailyQueueJob struct {
	queueService *services.QueueService
	userRepo     repositories.UserRepository
	db           database.DB
	log          logger.Logger
	schedule     services.Schedule
}

func NewDailyQueueJob(
	queueService *services.QueueService,
	userRepo repositories.UserRepository,
	db database.DB,
	schedule services.Schedule,
) *DailyQueueJob {
	return &DailyQueueJob{
		queueService: queueService,
		userRepo:     userRepo,
		db:           db,
		log:          logger.New("dailyQueueJob"),
		schedule:     schedule,
	}
}

func (j *DailyQueueJob) Name() string {
	return "DailyQueuePrebuild"
}

func (j *DailyQueueJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	log.Info("Starting daily queue prebuild")

	users, err := j.userRepo.GetLinkedUsers(ctx, j.db.SQL)
	if err != nil {
		return log.Err("failed to get linked users", err)
	}

	successCount := 0
	failureCount := 0

	for _, user := range users {
		_, err := j.queueService.EnsureDailyQueue(ctx, user)
		if err != nil {
			if err == services.ErrNoCredential {
				// Linked flag and refresh token disagree; nothing to build.
				log.Warn("linked user has no usable credential", "userID", user.ID)
				continue
			}
			log.Warn("failed to prebuild queue for user", "userID", user.ID, "error", err)
			failureCount++
			continue
		}
		successCount++
	}

	log.Info(
		"completed daily queue prebuild",
		"totalUsers", len(users),
		"successful", successCount,
		"failed", failureCount,
	)

	if failureCount > 0 {
		return fmt.Errorf("failed to prebuild queues for %d/%d users", failureCount, len(users))
	}

	return nil
}

func (j *DailyQueueJob) Schedule() services.Schedule {
	return j.schedule
}
