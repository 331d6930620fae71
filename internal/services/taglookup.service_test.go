package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLookupKey(t *testing.T) {
	assert.Equal(t, "boards of canada|roygbiv", NormalizeLookupKey("Boards of Canada", "ROYGBIV"))
	assert.Equal(t, "artist|title", NormalizeLookupKey("  Artist  ", " Title"))
	assert.Equal(t, "|", NormalizeLookupKey("", ""))

	// Same track from two sources with different casing hits one cache entry.
	assert.Equal(
		t,
		NormalizeLookupKey("MF DOOM", "Rapp Snitch Knishes"),
		NormalizeLookupKey("mf doom", "rapp snitch knishes "),
	)
}
