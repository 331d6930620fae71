package services

import (
	"testing"

	. "tunedex/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func queueItem(position int, score *int, skipped bool) DailyQueueItem {
	return DailyQueueItem{
		TrackID:  uuid.New(),
		Position: position,
		Score:    score,
		Skipped:  skipped,
	}
}

func intPtr(v int) *int { return &v }

func TestPlaylistItemsFor_OrderingAndPositions(t *testing.T) {
	playlistID := uuid.New()
	queueItems := []DailyQueueItem{
		queueItem(0, intPtr(7), false),
		queueItem(1, intPtr(10), false),
		queueItem(2, intPtr(9), false),
		queueItem(3, intPtr(7), false),
	}

	items := playlistItemsFor(playlistID, queueItems)
	assert.Len(t, items, 4)

	// Descending score, queue position breaks the 7/7 tie.
	assert.Equal(t, 10, items[0].Score)
	assert.Equal(t, 9, items[1].Score)
	assert.Equal(t, 7, items[2].Score)
	assert.Equal(t, 7, items[3].Score)
	assert.Equal(t, queueItems[0].TrackID, items[2].TrackID)
	assert.Equal(t, queueItems[3].TrackID, items[3].TrackID)

	// Positions are reassigned contiguously from zero.
	for i, item := range items {
		assert.Equal(t, i, item.Position)
		assert.Equal(t, playlistID, item.PlaylistID)
	}
}

func TestPlaylistItemsFor_ThresholdExclusion(t *testing.T) {
	items := playlistItemsFor(uuid.New(), []DailyQueueItem{
		queueItem(0, intPtr(6), false),
		queueItem(1, intPtr(7), false),
		queueItem(2, intPtr(1), false),
	})

	assert.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Score)
}

func TestPlaylistItemsFor_SkippedNeverQualifies(t *testing.T) {
	items := playlistItemsFor(uuid.New(), []DailyQueueItem{
		queueItem(0, intPtr(10), true),
		queueItem(1, nil, true),
		queueItem(2, nil, false),
	})

	assert.Empty(t, items, "an empty playlist is a valid result")
}

func TestResolvedScores(t *testing.T) {
	scores := resolvedScores([]DailyQueueItem{
		queueItem(0, intPtr(8), false),
		queueItem(1, nil, true),
		queueItem(2, intPtr(5), true),
		queueItem(3, nil, false),
		queueItem(4, intPtr(3), false),
	})

	// Skipped items stay out of the mood input even when a score is set.
	assert.Equal(t, []int{8, 3}, scores)
}
