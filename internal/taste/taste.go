// Package taste aggregates a user's full rating history into ranked
// per-artist and per-genre summaries. Ranking uses a shrinkage estimator so a
// one-hit wonder with a single lucky 10 cannot outrank an artist with ten
// consistently good ratings.
package taste

import "sort"

const (
	// PriorStrength is roughly how many ratings' worth of regression toward
	// the global mean each entity starts with.
	PriorStrength = 3

	// DefaultGlobalMean is the neutral prior used when a user has zero
	// ratings.
	DefaultGlobalMean = 6.5

	TopArtists = 7
	TopGenres  = 10
)

// RatedTrack is one entry of the rating history together with the track
// attributes the ranker aggregates over.
type RatedTrack struct {
	Score      int
	Artists    []string
	Genres     []string
	ArtworkURL *string
}

// Entity is an aggregate for a single artist or genre name.
type Entity struct {
	Name     string   `json:"name"`
	Count    int      `json:"count"`
	Average  float64  `json:"average"`
	Adjusted float64  `json:"adjusted"`
	ImageURL *string  `json:"imageUrl,omitempty"`
}

// GlobalMean is the mean score across the entire history, or
// DefaultGlobalMean for an empty history.
func GlobalMean(ratings []RatedTrack) float64 {
	if len(ratings) == 0 {
		return DefaultGlobalMean
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Score
	}
	return float64(sum) / float64(len(ratings))
}

// Adjusted computes the shrinkage estimate for an entity with the given score
// sum and occurrence count.
func Adjusted(sum, count int, globalMean float64) float64 {
	return (float64(sum) + PriorStrength*globalMean) / (float64(count) + PriorStrength)
}

// RankArtists ranks every distinct artist appearing in at least one rating.
// The result is untruncated; callers take the top N they display.
func RankArtists(ratings []RatedTrack) []Entity {
	return rank(ratings, func(r RatedTrack) []string { return r.Artists })
}

// RankGenres ranks every distinct genre tag appearing in at least one rating.
func RankGenres(ratings []RatedTrack) []Entity {
	return rank(ratings, func(r RatedTrack) []string { return r.Genres })
}

// Top returns at most n leading entities.
func Top(entities []Entity, n int) []Entity {
	if len(entities) <= n {
		return entities
	}
	return entities[:n]
}

type accumulator struct {
	sum   int
	count int
	image *string
}

func rank(ratings []RatedTrack, names func(RatedTrack) []string) []Entity {
	globalMean := GlobalMean(ratings)

	byName := make(map[string]*accumulator)
	order := make([]string, 0)

	for _, rating := range ratings {
		for _, name := range names(rating) {
			if name == "" {
				continue
			}
			acc, exists := byName[name]
			if !exists {
				// The representative image is the first-encountered
				// contributing track's artwork, not the highest-scored one.
				acc = &accumulator{image: rating.ArtworkURL}
				byName[name] = acc
				order = append(order, name)
			}
			acc.sum += rating.Score
			acc.count++
		}
	}

	entities := make([]Entity, 0, len(order))
	for _, name := range order {
		acc := byName[name]
		entities = append(entities, Entity{
			Name:     name,
			Count:    acc.count,
			Average:  float64(acc.sum) / float64(acc.count),
			Adjusted: Adjusted(acc.sum, acc.count, globalMean),
			ImageURL: acc.image,
		})
	}

	sort.SliceStable(entities, func(i, j int) bool {
		if entities[i].Adjusted != entities[j].Adjusted {
			return entities[i].Adjusted > entities[j].Adjusted
		}
		if entities[i].Count != entities[j].Count {
			return entities[i].Count > entities[j].Count
		}
		return entities[i].Average > entities[j].Average
	})

	return entities
}
