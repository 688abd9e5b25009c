package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bichoplay/settlement-engine/internal/settlement"
)

// WagerRepo implementa operações de persistência de apostas em banco Postgres
type WagerRepo struct{ db *sql.DB }

// NewWagerRepo retorna uma instância do repositório de apostas
func NewWagerRepo(db *sql.DB) *WagerRepo { return &WagerRepo{db: db} }

// CreatePending insere uma nova aposta com status PENDING
func (r *WagerRepo) CreatePending(ctx context.Context, w *settlement.Wager) (string, error) {
	id := uuid.NewString()
	groups := make([]int64, len(w.Groups))
	for i, g := range w.Groups {
		groups[i] = int64(g)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wagers
		  (id, external_id, user_id, lottery, time_slot, modality, groups, number,
		   stake_cents, divide_each, odd_override, pos_from, pos_to, status, review, created_at)
		VALUES ($1,NULLIF($2,''),$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,'PENDING',false,NOW())`,
		id, w.ExternalID, w.UserID, w.Lottery, w.TimeSlot, w.Modality,
		pq.Array(groups), w.Number, w.StakeCents, w.DivideEach, w.OddOverride,
		w.PosFrom, w.PosTo,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetByExternalID retorna o id interno de uma aposta pela chave de
// idempotência do upstream, ou "" se não existir.
func (r *WagerRepo) GetByExternalID(ctx context.Context, externalID string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM wagers WHERE external_id=$1`, externalID).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return id, err
}

// PendingWagers retorna as apostas pendentes que não estão em revisão manual
func (r *WagerRepo) PendingWagers(ctx context.Context) ([]settlement.Wager, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, COALESCE(external_id,''), user_id, lottery, time_slot, modality,
		       groups, number, stake_cents, divide_each, odd_override,
		       pos_from, pos_to, created_at
		FROM wagers
		WHERE status='PENDING' AND review=false
		ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []settlement.Wager
	for rows.Next() {
		var w settlement.Wager
		var groups pq.Int64Array
		if err := rows.Scan(
			&w.ID, &w.ExternalID, &w.UserID, &w.Lottery, &w.TimeSlot, &w.Modality,
			&groups, &w.Number, &w.StakeCents, &w.DivideEach, &w.OddOverride,
			&w.PosFrom, &w.PosTo, &w.CreatedAt,
		); err != nil {
			return nil, err
		}
		w.Status = settlement.StatusPending
		w.Groups = make([]int, len(groups))
		for i, g := range groups {
			w.Groups[i] = int(g)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// FlagForReview tira a aposta da liquidação automática até correção manual
func (r *WagerRepo) FlagForReview(ctx context.Context, wagerID, reason string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE wagers SET review=true, review_reason=$1 WHERE id=$2`,
		reason, wagerID)
	return err
}

// ClearReview devolve uma aposta corrigida para a fila de liquidação
func (r *WagerRepo) ClearReview(ctx context.Context, wagerID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE wagers SET review=false, review_reason=NULL WHERE id=$1 AND status='PENDING'`,
		wagerID)
	return err
}
