package taste

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestGlobalMean(t *testing.T) {
	assert.Equal(t, DefaultGlobalMean, GlobalMean(nil))
	assert.Equal(t, DefaultGlobalMean, GlobalMean([]RatedTrack{}))

	ratings := []RatedTrack{
		{Score: 4},
		{Score: 8},
	}
	assert.InDelta(t, 6.0, GlobalMean(ratings), 0.0001)
}

func TestAdjusted_ShrinksTowardGlobalMean(t *testing.T) {
	globalMean := 6.5

	// A single perfect score lands well below a raw 10.
	single := Adjusted(10, 1, globalMean)
	assert.Less(t, single, 10.0)
	assert.Greater(t, single, globalMean)

	// Ten perfect scores barely shrink at all.
	many := Adjusted(100, 10, globalMean)
	assert.Greater(t, many, single)
	assert.Less(t, many, 10.0)
}

func TestRankArtists_SingleLuckyTenLosesToConsistency(t *testing.T) {
	ratings := []RatedTrack{
		{Score: 10, Artists: []string{"One Hit"}},
	}
	for range 10 {
		ratings = append(ratings, RatedTrack{Score: 8, Artists: []string{"Steady"}})
	}
	for range 5 {
		ratings = append(ratings, RatedTrack{Score: 3, Artists: []string{"Filler"}})
	}

	// Global mean is 105/16 = 6.5625, so One Hit's single 10 shrinks to
	// ~7.42 while Steady's ten 8s hold at ~7.67.
	entities := RankArtists(ratings)
	assert.Len(t, entities, 3)
	assert.Equal(t, "Steady", entities[0].Name)
	assert.Equal(t, "One Hit", entities[1].Name)
	assert.Equal(t, "Filler", entities[2].Name)
	assert.Greater(t, entities[0].Adjusted, entities[1].Adjusted)
	assert.Greater(t, 10.0, entities[1].Adjusted)
}

func TestRankArtists_TieBreaks(t *testing.T) {
	// Identical score sets yield identical adjusted values; count then
	// average break the tie.
	ratings := []RatedTrack{
		{Score: 8, Artists: []string{"Alpha", "Beta"}},
		{Score: 8, Artists: []string{"Alpha", "Beta"}},
		{Score: 8, Artists: []string{"Alpha"}},
		{Score: 8, Artists: []string{"Beta"}},
	}

	entities := RankArtists(ratings)
	assert.Len(t, entities, 2)
	// Fully tied entities keep their first-seen order.
	assert.Equal(t, "Alpha", entities[0].Name)
	assert.Equal(t, "Beta", entities[1].Name)

	ratings = append(ratings, RatedTrack{Score: 8, Artists: []string{"Beta"}})
	entities = RankArtists(ratings)
	assert.Equal(t, "Beta", entities[0].Name, "higher count should win the tie")
}

func TestRankArtists_RepresentativeImage(t *testing.T) {
	ratings := []RatedTrack{
		{Score: 3, Artists: []string{"Band"}, ArtworkURL: strPtr("first.jpg")},
		{Score: 10, Artists: []string{"Band"}, ArtworkURL: strPtr("best.jpg")},
	}

	entities := RankArtists(ratings)
	assert.Len(t, entities, 1)
	assert.NotNil(t, entities[0].ImageURL)
	assert.Equal(t, "first.jpg", *entities[0].ImageURL)
}

func TestRankGenres_IgnoresEmptyNames(t *testing.T) {
	ratings := []RatedTrack{
		{Score: 7, Genres: []string{"indie", ""}},
		{Score: 9, Genres: []string{"indie"}},
	}

	entities := RankGenres(ratings)
	assert.Len(t, entities, 1)
	assert.Equal(t, "indie", entities[0].Name)
	assert.Equal(t, 2, entities[0].Count)
	assert.InDelta(t, 8.0, entities[0].Average, 0.0001)
}

func TestRank_EmptyHistory(t *testing.T) {
	assert.Empty(t, RankArtists(nil))
	assert.Empty(t, RankGenres(nil))
}

func TestTop(t *testing.T) {
	entities := []Entity{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	assert.Len(t, Top(entities, 2), 2)
	assert.Len(t, Top(entities, 3), 3)
	assert.Len(t, Top(entities, 10), 3)
	assert.Empty(t, Top(nil, TopArtists))
}
