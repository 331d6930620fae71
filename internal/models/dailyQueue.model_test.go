package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestDailyQueueItem_Resolved(t *testing.T) {
	assert.False(t, (&DailyQueueItem{}).Resolved())
	assert.True(t, (&DailyQueueItem{Score: intPtr(5)}).Resolved())
	assert.True(t, (&DailyQueueItem{Skipped: true}).Resolved())
	assert.True(t, (&DailyQueueItem{Score: intPtr(5), Skipped: true}).Resolved())
}

func TestDailyQueue_Status(t *testing.T) {
	mood := "bright"
	completedAt := time.Now()
	playlistID := uuid.New()

	tests := []struct {
		name       string
		queue      DailyQueue
		playlistID *uuid.UUID
		expected   QueueStatus
	}{
		{
			name:     "No items means still building",
			queue:    DailyQueue{},
			expected: QueueStatus{State: QueueStateBuilding},
		},
		{
			name: "Unresolved items in progress",
			queue: DailyQueue{
				Items: []DailyQueueItem{
					{Score: intPtr(8)},
					{Skipped: true},
					{},
				},
			},
			expected: QueueStatus{State: QueueStateInProgress, Rated: 2, Total: 3},
		},
		{
			name: "Completion timestamp wins over item counts",
			queue: DailyQueue{
				CompletedAt: &completedAt,
				Mood:        &mood,
				Items: []DailyQueueItem{
					{Score: intPtr(8)},
					{Skipped: true},
				},
			},
			playlistID: &playlistID,
			expected: QueueStatus{
				State:      QueueStateCompleted,
				Rated:      2,
				Total:      2,
				Mood:       &mood,
				PlaylistID: &playlistID,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.queue.Status(tt.playlistID))
		})
	}
}
