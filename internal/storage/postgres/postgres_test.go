package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transaction-aggregator/internal/domain"
	"transaction-aggregator/internal/storage/mock"
)

// fakeRow feeds Scan from a fixed column list, in select order.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case **string:
			if r.values[i] == nil {
				*p = nil
			} else {
				s := r.values[i].(string)
				*p = &s
			}
		case *time.Time:
			*p = r.values[i].(time.Time)
		default:
			return errors.New("unexpected scan target")
		}
	}
	return nil
}

func row(amount, typ, category, source string, balance any) fakeRow {
	return fakeRow{values: []any{
		"TXN00000001", "CUST001", amount, typ, category, "Checkers Payment", "Checkers",
		time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), source, balance,
	}}
}

func TestScanTransaction(t *testing.T) {
	tx, err := scanTransaction(row("1250.50", "debit", "Groceries", "bank_account", "28749.50"))
	require.NoError(t, err)
	assert.Equal(t, "1250.5", tx.Amount.String())
	assert.Equal(t, domain.Debit, tx.Type)
	assert.Equal(t, domain.Groceries, tx.Category)
	assert.Equal(t, domain.BankAccount, tx.Source)
	require.NotNil(t, tx.Merchant)
	assert.Equal(t, "Checkers", *tx.Merchant)
	require.NotNil(t, tx.BalanceAfter)
	assert.Equal(t, "28749.5", tx.BalanceAfter.String())

	tx, err = scanTransaction(row("10", "credit", "Salary", "mobile_wallet", nil))
	require.NoError(t, err)
	assert.Nil(t, tx.BalanceAfter)
}

func TestScanTransactionRejectsBadColumns(t *testing.T) {
	_, err := scanTransaction(row("ten", "debit", "Groceries", "bank_account", nil))
	assert.ErrorContains(t, err, "amount")

	_, err = scanTransaction(row("1", "refund", "Groceries", "bank_account", nil))
	assert.ErrorIs(t, err, domain.ErrUnknownType)

	_, err = scanTransaction(row("1", "debit", "Lottery", "bank_account", nil))
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)

	_, err = scanTransaction(row("1", "debit", "Groceries", "cash", nil))
	assert.ErrorIs(t, err, domain.ErrUnknownSource)

	_, err = scanTransaction(fakeRow{err: pgx.ErrNoRows})
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

// Runs against a migrated database when TEST_DATABASE_URL is set.
func TestStorageRoundTrip(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, `TRUNCATE transactions`)
	require.NoError(t, err)

	opts := mock.DefaultOptions()
	opts.Days = 5
	opts.Now = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	generated := mock.Generate(opts)

	s := NewStorage(pool)
	n, err := s.InsertTransactions(ctx, generated)
	require.NoError(t, err)
	assert.Equal(t, int64(len(generated)), n)

	n, err = s.InsertTransactions(ctx, generated[:3])
	require.NoError(t, err)
	assert.Zero(t, n, "re-inserting is a no-op")

	all, err := s.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(generated))
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Timestamp.After(all[i-1].Timestamp))
	}

	got, err := s.FindByID(ctx, generated[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Amount.Equal(generated[0].Amount))

	missing, err := s.FindByID(ctx, "INVALID_ID")
	require.NoError(t, err)
	assert.Nil(t, missing)

	customers, err := s.CustomerIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"CUST001", "CUST002", "CUST003"}, customers)
}
