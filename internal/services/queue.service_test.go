package services

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeByID(t *testing.T) {
	tests := []struct {
		name     string
		pool     []SpotifyTrack
		expected []string
	}{
		{
			name:     "Empty pool",
			pool:     []SpotifyTrack{},
			expected: []string{},
		},
		{
			name: "No duplicates preserves order",
			pool: []SpotifyTrack{
				{ID: "a"}, {ID: "b"}, {ID: "c"},
			},
			expected: []string{"a", "b", "c"},
		},
		{
			name: "First occurrence wins",
			pool: []SpotifyTrack{
				{ID: "a", Title: "kept"},
				{ID: "b"},
				{ID: "a", Title: "dropped"},
			},
			expected: []string{"a", "b"},
		},
		{
			name: "Blank IDs dropped",
			pool: []SpotifyTrack{
				{ID: ""}, {ID: "a"}, {ID: ""},
			},
			expected: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deduped := dedupeByID(tt.pool)

			ids := make([]string, 0, len(deduped))
			for _, track := range deduped {
				ids = append(ids, track.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestDedupeByID_FirstOccurrenceKeepsAttributes(t *testing.T) {
	pool := []SpotifyTrack{
		{ID: "a", Title: "first seen"},
		{ID: "a", Title: "later duplicate"},
	}

	deduped := dedupeByID(pool)
	assert.Len(t, deduped, 1)
	assert.Equal(t, "first seen", deduped[0].Title)
}

func TestSampleQueue(t *testing.T) {
	pool := make([]SpotifyTrack, 0, 50)
	for i := range 50 {
		pool = append(pool, SpotifyTrack{ID: string(rune('0' + i%10)) + "-" + string(rune('a'+i%26))})
	}

	rng := rand.New(rand.NewSource(42))
	selection := sampleQueue(pool, DailyQueueSize, rng)
	assert.Len(t, selection, DailyQueueSize)

	// Every selected track comes from the pool, no duplicates introduced.
	poolIDs := make(map[string]int)
	for _, track := range pool {
		poolIDs[track.ID]++
	}
	seen := make(map[string]int)
	for _, track := range selection {
		seen[track.ID]++
		assert.Contains(t, poolIDs, track.ID)
	}
	for id, count := range seen {
		assert.LessOrEqual(t, count, poolIDs[id], "selection over-drew track %s", id)
	}
}

func TestSampleQueue_ShortPool(t *testing.T) {
	pool := []SpotifyTrack{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	rng := rand.New(rand.NewSource(1))
	selection := sampleQueue(pool, DailyQueueSize, rng)
	assert.Len(t, selection, 3, "short pool yields a short queue, not an error")

	assert.Empty(t, sampleQueue(nil, DailyQueueSize, rng))
}

func TestSampleQueue_DoesNotMutatePool(t *testing.T) {
	pool := []SpotifyTrack{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	original := make([]SpotifyTrack, len(pool))
	copy(original, pool)

	rng := rand.New(rand.NewSource(7))
	for range 20 {
		sampleQueue(pool, 2, rng)
	}
	assert.Equal(t, original, pool)
}

func TestSampleQueue_DeterministicWithSeed(t *testing.T) {
	pool := make([]SpotifyTrack, 0, 20)
	for i := range 20 {
		pool = append(pool, SpotifyTrack{ID: string(rune('a' + i))})
	}

	first := sampleQueue(pool, 5, rand.New(rand.NewSource(99)))
	second := sampleQueue(pool, 5, rand.New(rand.NewSource(99)))
	assert.Equal(t, first, second)
}
