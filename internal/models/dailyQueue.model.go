package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyQueue is one user's curated queue for one calendar day. The
// (user_id, date) unique index is the idempotency backstop for concurrent
// builds: the second insert fails and the caller re-reads the winner.
type DailyQueue struct {
	BaseUUIDModel
	UserID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_daily_queues_user_date,composite:0" json:"userId"`
	User        User             `gorm:"foreignKey:UserID"                                                     json:"user"`
	Date        time.Time        `gorm:"type:date;not null;uniqueIndex:idx_daily_queues_user_date,composite:1" json:"date"`
	Mood        *string          `gorm:"type:varchar(20)"                                                      json:"mood,omitempty"`
	CompletedAt *time.Time       `gorm:"type:timestamp"                                                        json:"completedAt,omitempty"`
	Items       []DailyQueueItem `gorm:"foreignKey:QueueID"                                                    json:"items"`
}

// DailyQueueItem is one track slot in a queue. Exactly one of score-present,
// skipped, or neither (pending) describes its resolution state; the first
// resolution is final for completion counting.
type DailyQueueItem struct {
	BaseUUIDModel
	QueueID uuid.UUID  `gorm:"type:uuid;not null;index" json:"queueId"`
	TrackID uuid.UUID  `gorm:"type:uuid;not null"       json:"trackId"`
	Track   Track      `gorm:"foreignKey:TrackID"       json:"track"`
	Position int       `gorm:"type:int;not null"        json:"position"`
	Score    *int      `gorm:"type:int"                 json:"score,omitempty"`
	Skipped  bool      `gorm:"type:bool;default:false"  json:"skipped"`
	RatedAt  *time.Time `gorm:"type:timestamp"          json:"ratedAt,omitempty"`
}

func (i *DailyQueueItem) Resolved() bool {
	return i.Score != nil || i.Skipped
}

type QueueState string

const (
	QueueStateBuilding   QueueState = "building"
	QueueStateInProgress QueueState = "in_progress"
	QueueStateCompleted  QueueState = "completed"
)

// QueueStatus is the explicit read-time state union derived from the stored
// nullable fields, so callers don't scatter null checks.
type QueueStatus struct {
	State      QueueState `json:"state"`
	Rated      int        `json:"rated"`
	Total      int        `json:"total"`
	Mood       *string    `json:"mood,omitempty"`
	PlaylistID *uuid.UUID `json:"playlistId,omitempty"`
}

// Status derives the queue's lifecycle state. The completion timestamp is the
// gate: a set CompletedAt means completed regardless of item counts.
func (q *DailyQueue) Status(playlistID *uuid.UUID) QueueStatus {
	if q.CompletedAt != nil {
		return QueueStatus{
			State:      QueueStateCompleted,
			Rated:      len(q.Items),
			Total:      len(q.Items),
			Mood:       q.Mood,
			PlaylistID: playlistID,
		}
	}

	if len(q.Items) == 0 {
		return QueueStatus{State: QueueStateBuilding}
	}

	resolved := 0
	for _, item := range q.Items {
		if item.Resolved() {
			resolved++
		}
	}

	return QueueStatus{
		State: QueueStateInProgress,
		Rated: resolved,
		Total: len(q.Items),
	}
}
