package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/bichoplay/settlement-engine/internal/matching"
	"github.com/bichoplay/settlement-engine/pkg/contracts/events"
)

// BatchRepo persiste lotes de resultado de sorteio e a agenda oficial das
// extrações. Os lotes são append-only: o core nunca altera um lote ingerido.
type BatchRepo struct{ db *sql.DB }

func NewBatchRepo(db *sql.DB) *BatchRepo { return &BatchRepo{db: db} }

// InsertBatch grava um lote completo (cabeçalho + prêmios) numa transação.
// Valida a invariante de posições: 1..N únicas, sem lacunas.
func (r *BatchRepo) InsertBatch(ctx context.Context, b events.DrawResultBatch) (string, error) {
	if err := validateEntries(b.Entries); err != nil {
		return "", err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO draw_batches (id, lottery, time_slot, source, observed_at)
		VALUES ($1,$2,$3,$4,$5)`,
		id, b.Lottery, b.TimeSlot, b.Source, b.ObservedAt); err != nil {
		return "", fmt.Errorf("insert batch: %w", err)
	}

	for _, e := range b.Entries {
		n, err := strconv.Atoi(e.Number)
		if err != nil || n < 0 || n > 9999 {
			return "", fmt.Errorf("bad drawn number %q at position %d", e.Number, e.Position)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO draw_entries (batch_id, position, number)
			VALUES ($1,$2,$3)`,
			id, e.Position, n); err != nil {
			return "", fmt.Errorf("insert entry: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// RecentBatches carrega os lotes coletados a partir de since, com os prêmios
// ordenados por posição.
func (r *BatchRepo) RecentBatches(ctx context.Context, since time.Time) ([]matching.Batch, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT b.id, b.lottery, b.time_slot, b.observed_at, e.number
		FROM draw_batches b
		JOIN draw_entries e ON e.batch_id = b.id
		WHERE b.observed_at >= $1
		ORDER BY b.id, e.position`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []matching.Batch
	var cur *matching.Batch
	for rows.Next() {
		var id, lottery, slot string
		var observed time.Time
		var number int
		if err := rows.Scan(&id, &lottery, &slot, &observed, &number); err != nil {
			return nil, err
		}
		if cur == nil || cur.ID != id {
			out = append(out, matching.Batch{
				ID: id, Lottery: lottery, TimeSlot: slot, ObservedAt: observed,
			})
			cur = &out[len(out)-1]
		}
		cur.Numbers = append(cur.Numbers, number)
	}
	return out, rows.Err()
}

// Schedule retorna os horários oficiais de uma extração, ou nil se a banca
// não tem agenda cadastrada para o horário.
func (r *BatchRepo) Schedule(ctx context.Context, lottery, timeSlot string) (*matching.Schedule, error) {
	var s matching.Schedule
	err := r.db.QueryRowContext(ctx, `
		SELECT close_time, result_time
		FROM lottery_schedules
		WHERE lottery=$1 AND time_slot=$2`,
		matching.NormalizeLottery(lottery), timeSlot).
		Scan(&s.CloseTime, &s.ResultTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertSchedule cadastra ou atualiza a agenda oficial de uma extração
func (r *BatchRepo) UpsertSchedule(ctx context.Context, lottery, timeSlot string, closeTime, resultTime time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lottery_schedules (lottery, time_slot, close_time, result_time)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (lottery, time_slot) DO UPDATE SET
		  close_time  = EXCLUDED.close_time,
		  result_time = EXCLUDED.result_time`,
		matching.NormalizeLottery(lottery), timeSlot, closeTime, resultTime)
	return err
}

// validateEntries garante posições 1..N únicas e sem lacunas.
func validateEntries(entries []events.DrawEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("batch has no entries")
	}
	seen := make(map[int]bool, len(entries))
	for _, e := range entries {
		if e.Position < 1 || e.Position > len(entries) {
			return fmt.Errorf("position %d out of range 1..%d", e.Position, len(entries))
		}
		if seen[e.Position] {
			return fmt.Errorf("duplicate position %d", e.Position)
		}
		seen[e.Position] = true
	}
	return nil
}
