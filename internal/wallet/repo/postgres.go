package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// Postgres implementa operações de carteira em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Credit incrementa o saldo da carteira e registra a operação no ledger.
// Garante lock pessimista na linha da carteira.
func (p *Postgres) Credit(ctx context.Context, userID string, amount int64, description string) (newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	newBalance, err = CreditTx(ctx, tx, userID, amount, description)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// CreditTx credita dentro de uma transação existente. Usado pela liquidação
// para manter registro de liquidação, status da aposta e crédito do prêmio
// atômicos.
func CreditTx(ctx context.Context, tx *sql.Tx, userID string, amount int64, description string) (int64, error) {
	id, _, err := getOrCreate(ctx, tx, userID)
	if err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1 WHERE id=$2`,
		amount, id); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, description) VALUES($1,'CREDIT',$2,$3)`,
		id, amount, description); err != nil {
		return 0, err
	}

	var newBalance int64
	if err = tx.QueryRowContext(ctx, `SELECT balance_cents FROM wallets WHERE id=$1`, id).Scan(&newBalance); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// getOrCreate resolve a carteira do usuário com lock pessimista, criando-a
// zerada se não existir.
func getOrCreate(ctx context.Context, tx *sql.Tx, userID string) (walletID string, balance int64, err error) {
	err = tx.QueryRowContext(ctx,
		`SELECT id, balance_cents FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).
		Scan(&walletID, &balance)
	if err == sql.ErrNoRows {
		walletID = uuid.New().String()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_cents, version) VALUES($1,$2,0,1)`,
			walletID, userID); err != nil {
			return "", 0, err
		}
		return walletID, 0, nil
	}
	if err != nil {
		return "", 0, err
	}
	return walletID, balance, nil
}
