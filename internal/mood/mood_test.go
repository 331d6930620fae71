package mood

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		scores   []int
		expected Label
	}{
		{
			name:     "Empty scores defaults to mixed",
			scores:   []int{},
			expected: Mixed,
		},
		{
			name:     "Nil scores defaults to mixed",
			scores:   nil,
			expected: Mixed,
		},
		{
			name:     "Consistent high scores",
			scores:   []int{9, 9, 9, 9},
			expected: Hype,
		},
		{
			name:     "High mean but wild spread",
			scores:   []int{1, 10, 1, 10},
			expected: Mixed,
		},
		{
			name:     "Consistent middling scores",
			scores:   []int{5, 6, 5, 6},
			expected: Chill,
		},
		{
			name:     "Mean exactly at hype boundary",
			scores:   []int{8, 8, 8},
			expected: Hype,
		},
		{
			name:     "Mean just below hype boundary",
			scores:   []int{8, 8, 7},
			expected: Bright,
		},
		{
			name:     "Consistent low scores",
			scores:   []int{2, 3, 2, 3},
			expected: Moody,
		},
		{
			name:     "Mean at chill boundary",
			scores:   []int{4, 5},
			expected: Chill,
		},
		{
			name:     "Single score",
			scores:   []int{10},
			expected: Hype,
		},
		{
			name:     "Spread exactly at threshold is mixed",
			scores:   []int{3, 8},
			expected: Mixed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.scores))
		})
	}
}

func TestDistribution(t *testing.T) {
	mean, stddev := distribution([]int{1, 10, 1, 10})
	assert.InDelta(t, 5.5, mean, 0.0001)
	assert.InDelta(t, 4.5, stddev, 0.0001)

	mean, stddev = distribution([]int{7, 7, 7})
	assert.InDelta(t, 7.0, mean, 0.0001)
	assert.InDelta(t, 0.0, stddev, 0.0001)
}
