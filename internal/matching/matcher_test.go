package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 10, 11, 30, 0, 0, time.UTC)

func TestSettlementWindow_Anchored(t *testing.T) {
	cfg := DefaultConfig()
	sched := &Schedule{
		CloseTime:  base,
		ResultTime: base.Add(20 * time.Minute),
	}

	w := cfg.SettlementWindow(sched, base.Add(-time.Hour))
	assert.Equal(t, base, w.Start)
	assert.Equal(t, base.Add(20*time.Minute).Add(time.Hour), w.End)
	assert.False(t, w.Fallback)
}

func TestSettlementWindow_Fallback(t *testing.T) {
	cfg := DefaultConfig()
	created := base

	w := cfg.SettlementWindow(nil, created)
	assert.Equal(t, created.Add(-2*time.Hour), w.Start)
	assert.Equal(t, created.Add(time.Hour), w.End)
	assert.True(t, w.Fallback, "heuristic window must be flagged for audit")

	// agenda incompleta também cai no fallback
	w = cfg.SettlementWindow(&Schedule{CloseTime: base}, created)
	assert.True(t, w.Fallback)
}

func TestFindBatch_IdentityAndSlot(t *testing.T) {
	cfg := DefaultConfig()
	w := Window{Start: base, End: base.Add(2 * time.Hour)}

	batches := []Batch{
		{ID: "other-lottery", Lottery: "FEDERAL", TimeSlot: "11:30", ObservedAt: base.Add(time.Minute), Numbers: []int{1, 2, 3}},
		{ID: "other-slot", Lottery: "PT-RJ", TimeSlot: "18:00", ObservedAt: base.Add(time.Minute), Numbers: []int{1, 2, 3}},
		{ID: "match", Lottery: "PT Rio de Janeiro", TimeSlot: "11h30", ObservedAt: base.Add(time.Minute), Numbers: []int{1, 2, 3}},
	}

	got, err := cfg.FindBatch("PT RIO", "11:30", w, batches)
	require.NoError(t, err)
	assert.Equal(t, "match", got.ID)
}

// Um lote coletado antes do fechamento oficial nunca liquida a aposta.
func TestFindBatch_WindowAnchoring(t *testing.T) {
	cfg := DefaultConfig()
	w := Window{Start: base, End: base.Add(2 * time.Hour)}

	early := []Batch{{
		ID: "early", Lottery: "PT RIO", TimeSlot: "11:30",
		ObservedAt: base.Add(-time.Minute), Numbers: []int{1, 2, 3},
	}}
	_, err := cfg.FindBatch("PT RIO", "11:30", w, early)
	assert.ErrorIs(t, err, ErrNoResult)

	late := []Batch{{
		ID: "late", Lottery: "PT RIO", TimeSlot: "11:30",
		ObservedAt: base.Add(3 * time.Hour), Numbers: []int{1, 2, 3},
	}}
	_, err = cfg.FindBatch("PT RIO", "11:30", w, late)
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestFindBatch_SlotTolerance(t *testing.T) {
	cfg := DefaultConfig() // ±30min
	w := Window{Start: base.Add(-time.Hour), End: base.Add(2 * time.Hour)}

	batches := []Batch{{
		ID: "skewed", Lottery: "PT RIO", TimeSlot: "11:00",
		ObservedAt: base, Numbers: []int{1, 2, 3},
	}}

	got, err := cfg.FindBatch("PT RIO", "11:30", w, batches)
	require.NoError(t, err)
	assert.Equal(t, "skewed", got.ID)

	cfg.SlotToleranceMinutes = 10
	_, err = cfg.FindBatch("PT RIO", "11:30", w, batches)
	assert.ErrorIs(t, err, ErrNoResult)
}

// Ingestões duplicadas: vence a mais completa, com desempate pela mais recente.
func TestFindBatch_DuplicateResolution(t *testing.T) {
	cfg := DefaultConfig()
	w := Window{Start: base, End: base.Add(2 * time.Hour)}

	batches := []Batch{
		{ID: "partial", Lottery: "PT RIO", TimeSlot: "11:30", ObservedAt: base.Add(30 * time.Minute), Numbers: []int{1, 2, 3, 4, 5}},
		{ID: "full-old", Lottery: "PT RIO", TimeSlot: "11:30", ObservedAt: base.Add(10 * time.Minute), Numbers: []int{1, 2, 3, 4, 5, 6, 7}},
		{ID: "full-new", Lottery: "PT RIO", TimeSlot: "11:30", ObservedAt: base.Add(20 * time.Minute), Numbers: []int{1, 2, 3, 4, 5, 6, 7}},
	}

	got, err := cfg.FindBatch("PT RIO", "11:30", w, batches)
	require.NoError(t, err)
	assert.Equal(t, "full-new", got.ID)
}

func TestFindBatch_Empty(t *testing.T) {
	cfg := DefaultConfig()
	_, err := cfg.FindBatch("PT RIO", "11:30", Window{Start: base, End: base.Add(time.Hour)}, nil)
	assert.ErrorIs(t, err, ErrNoResult)
}
