package repo

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditExistingWallet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, balance_cents FROM wallets").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "balance_cents"}).AddRow("wal-1", int64(500)))
	mock.ExpectExec("UPDATE wallets SET balance_cents").
		WithArgs(int64(1000), "wal-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO wallet_ledger").
		WithArgs("wal-1", int64(1000), "settlement:wager-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT balance_cents FROM wallets").
		WithArgs("wal-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(int64(1500)))
	mock.ExpectCommit()

	p := NewPostgres(db)
	newBalance, err := p.Credit(context.Background(), "user-1", 1000, "settlement:wager-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), newBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditCreatesWalletWhenMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, balance_cents FROM wallets").
		WithArgs("user-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "balance_cents"}))
	mock.ExpectExec("INSERT INTO wallets").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE wallets SET balance_cents").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO wallet_ledger").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT balance_cents FROM wallets").
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(int64(1000)))
	mock.ExpectCommit()

	p := NewPostgres(db)
	newBalance, err := p.Credit(context.Background(), "user-2", 1000, "manual credit")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), newBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}
