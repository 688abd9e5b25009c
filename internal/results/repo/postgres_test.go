package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bichoplay/settlement-engine/pkg/contracts/events"
)

func entries(positions ...int) []events.DrawEntry {
	out := make([]events.DrawEntry, len(positions))
	for i, p := range positions {
		out[i] = events.DrawEntry{Position: p, Number: "1234"}
	}
	return out
}

func TestValidateEntries(t *testing.T) {
	assert.NoError(t, validateEntries(entries(1, 2, 3, 4, 5, 6, 7)))
	assert.NoError(t, validateEntries(entries(3, 1, 2))) // ordem de chegada livre
	assert.NoError(t, validateEntries(entries(1)))

	assert.Error(t, validateEntries(nil), "empty batch")
	assert.Error(t, validateEntries(entries(1, 1, 2)), "duplicate position")
	assert.Error(t, validateEntries(entries(1, 2, 4)), "gap in positions")
	assert.Error(t, validateEntries(entries(0, 1)), "0-indexed positions")
}
