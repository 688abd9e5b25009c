package repo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bichoplay/settlement-engine/internal/settlement"
)

func testSettlement(outcome settlement.Status, payout int64) settlement.Settlement {
	return settlement.Settlement{
		ID:          "set-1",
		WagerID:     "wager-1",
		BatchID:     "batch-1",
		Hits:        1,
		PayoutCents: payout,
		Outcome:     outcome,
		CreatedAt:   time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC),
	}
}

func TestExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT 1 FROM settlements").
		WithArgs("wager-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM settlements").
		WithArgs("wager-2").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	r := NewSettlementRepo(db)
	ok, err := r.Exists(context.Background(), "wager-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Exists(context.Background(), "wager-2")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyWonCreditsWalletInSameTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO settlements").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE wagers SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, balance_cents FROM wallets").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "balance_cents"}).AddRow("wal-1", int64(0)))
	mock.ExpectExec("UPDATE wallets SET balance_cents").
		WithArgs(int64(18000), "wal-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO wallet_ledger").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT balance_cents FROM wallets").
		WithArgs("wal-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(int64(18000)))
	mock.ExpectCommit()

	r := NewSettlementRepo(db)
	w := settlement.Wager{ID: "wager-1", UserID: "user-1"}
	err = r.Apply(context.Background(), w, testSettlement(settlement.StatusWon, 18000), time.Now())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyLostSkipsCredit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO settlements").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE wagers SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := NewSettlementRepo(db)
	w := settlement.Wager{ID: "wager-1", UserID: "user-1"}
	err = r.Apply(context.Background(), w, testSettlement(settlement.StatusLost, 0), time.Now())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyConflictIsNoOp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// outro worker já liquidou: insert não afeta linha e nada mais roda
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO settlements").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	r := NewSettlementRepo(db)
	w := settlement.Wager{ID: "wager-1", UserID: "user-1"}
	err = r.Apply(context.Background(), w, testSettlement(settlement.StatusWon, 18000), time.Now())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListFallbackReturnsAuditRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	createdAt := time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "wager_id", "batch_id", "hits", "payout_cents", "outcome", "fallback_window", "created_at",
	}).AddRow("set-1", "wager-1", "batch-1", 1, int64(18000), "WON", true, createdAt)
	mock.ExpectQuery("FROM settlements").WillReturnRows(rows)

	r := NewSettlementRepo(db)
	out, err := r.ListFallback(context.Background(), createdAt.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, settlement.StatusWon, out[0].Outcome)
	assert.True(t, out[0].FallbackWindow)
	require.NoError(t, mock.ExpectationsWereMet())
}
