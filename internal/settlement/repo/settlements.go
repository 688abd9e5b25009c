package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bichoplay/settlement-engine/internal/settlement"
	walletrepo "github.com/bichoplay/settlement-engine/internal/wallet/repo"
)

// SettlementRepo persiste liquidações. unique(wager_id) na tabela settlements
// é a guarda de exatamente-uma liquidação mesmo com workers concorrentes.
type SettlementRepo struct{ db *sql.DB }

func NewSettlementRepo(db *sql.DB) *SettlementRepo { return &SettlementRepo{db: db} }

// Exists verifica se a aposta já tem registro de liquidação
func (r *SettlementRepo) Exists(ctx context.Context, wagerID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM settlements WHERE wager_id=$1`, wagerID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Apply grava o desfecho numa única transação: registro de liquidação,
// status terminal da aposta e crédito do prêmio. Se outro worker liquidou
// primeiro, o ON CONFLICT transforma a reaplicação em no-op.
func (r *SettlementRepo) Apply(ctx context.Context, w settlement.Wager, s settlement.Settlement, settledAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO settlements
		  (id, wager_id, batch_id, hits, payout_cents, outcome, fallback_window, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (wager_id) DO NOTHING`,
		s.ID, s.WagerID, s.BatchID, s.Hits, s.PayoutCents, string(s.Outcome),
		s.FallbackWindow, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert settlement: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if inserted == 0 {
		// já liquidada por outro ciclo/worker
		return tx.Commit()
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE wagers SET status=$1, settled_at=$2 WHERE id=$3 AND status='PENDING'`,
		string(s.Outcome), settledAt, s.WagerID); err != nil {
		return fmt.Errorf("update wager status: %w", err)
	}

	if s.Outcome == settlement.StatusWon && s.PayoutCents > 0 {
		desc := "settlement:" + s.WagerID
		if _, err = walletrepo.CreditTx(ctx, tx, w.UserID, s.PayoutCents, desc); err != nil {
			return fmt.Errorf("credit payout: %w", err)
		}
	}

	return tx.Commit()
}

// ListFallback lista liquidações feitas sob janela heurística, para auditoria
func (r *SettlementRepo) ListFallback(ctx context.Context, since time.Time) ([]settlement.Settlement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, wager_id, batch_id, hits, payout_cents, outcome, fallback_window, created_at
		FROM settlements
		WHERE fallback_window=true AND created_at >= $1
		ORDER BY created_at`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []settlement.Settlement
	for rows.Next() {
		var s settlement.Settlement
		var outcome string
		if err := rows.Scan(&s.ID, &s.WagerID, &s.BatchID, &s.Hits, &s.PayoutCents,
			&outcome, &s.FallbackWindow, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Outcome = settlement.Status(outcome)
		out = append(out, s)
	}
	return out, rows.Err()
}
