// Package mood reduces a day's resolved scores to one categorical label.
// It operates purely on the score distribution so it works even when the
// source API returns no per-track audio features.
package mood

import "math"

type Label string

const (
	Hype   Label = "hype"
	Bright Label = "bright"
	Chill  Label = "chill"
	Moody  Label = "moody"
	Mixed  Label = "mixed"
)

// spreadThreshold is the population standard deviation above which a day is
// classified as inconsistent regardless of its mean.
const spreadThreshold = 2.5

// Classify maps the resolved, non-skipped scores of a completed queue to a
// label. An empty slice (user skipped everything) defaults to Mixed.
func Classify(scores []int) Label {
	if len(scores) == 0 {
		return Mixed
	}

	mean, stddev := distribution(scores)

	if stddev >= spreadThreshold {
		return Mixed
	}

	switch {
	case mean >= 8:
		return Hype
	case mean >= 6.5:
		return Bright
	case mean >= 4.5:
		return Chill
	default:
		return Moody
	}
}

func distribution(scores []int) (mean, stddev float64) {
	sum := 0
	for _, s := range scores {
		sum += s
	}
	mean = float64(sum) / float64(len(scores))

	variance := 0.0
	for _, s := range scores {
		d := float64(s) - mean
		variance += d * d
	}
	variance /= float64(len(scores))

	return mean, math.Sqrt(variance)
}
