// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"transaction-aggregator/internal/domain"
	"transaction-aggregator/internal/storage"
)

type Storage struct {
	db *pgxpool.Pool
}

func NewStorage(db *pgxpool.Pool) *Storage {
	return &Storage{db: db}
}

// Numerics travel as text both ways so no precision is lost to float conversion.
const selectColumns = `
	SELECT id, customer_id, amount::text, type, category, description, merchant,
	       "timestamp", source, balance_after::text
	FROM transactions`

func (s *Storage) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := s.db.Query(ctx, selectColumns+` ORDER BY "timestamp" DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	slog.Debug("Loaded transactions from postgres", "count", len(txns))
	return txns, nil
}

func (s *Storage) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := s.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (s *Storage) CustomerIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT customer_id FROM transactions ORDER BY customer_id`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect customers: %w", err)
	}
	return ids, nil
}

// InsertTransactions writes records in one batch; existing ids are left untouched.
func (s *Storage) InsertTransactions(ctx context.Context, txns []domain.Transaction) (int64, error) {
	for _, t := range txns {
		if err := t.Validate(); err != nil {
			return 0, err
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, t := range txns {
		var balance *string
		if t.BalanceAfter != nil {
			b := t.BalanceAfter.String()
			balance = &b
		}
		batch.Queue(`
			INSERT INTO transactions (id, customer_id, amount, type, category, description,
			                          merchant, "timestamp", source, balance_after)
			VALUES ($1, $2, $3::text::numeric, $4, $5, $6, $7, $8, $9, $10::text::numeric)
			ON CONFLICT (id) DO NOTHING
		`, t.ID, t.CustomerID, t.Amount.String(), string(t.Type), string(t.Category), t.Description,
			t.Merchant, t.Timestamp, string(t.Source), balance)
	}

	results := tx.SendBatch(ctx, batch)
	var inserted int64
	for range txns {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, fmt.Errorf("insert transaction: %w", err)
		}
		inserted += tag.RowsAffected()
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	slog.Info("Inserted transactions", "requested", len(txns), "inserted", inserted)
	return inserted, nil
}

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var (
		t                     domain.Transaction
		amount, typ, cat, src string
		balance               *string
	)
	err := row.Scan(&t.ID, &t.CustomerID, &amount, &typ, &cat, &t.Description, &t.Merchant,
		&t.Timestamp, &src, &balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return t, err
		}
		return t, fmt.Errorf("scan transaction: %w", err)
	}

	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return t, fmt.Errorf("transaction %s: amount %q: %w", t.ID, amount, err)
	}
	if balance != nil {
		b, err := decimal.NewFromString(*balance)
		if err != nil {
			return t, fmt.Errorf("transaction %s: balance_after %q: %w", t.ID, *balance, err)
		}
		t.BalanceAfter = &b
	}
	if t.Type, err = domain.ParseTransactionType(typ); err != nil {
		return t, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	if t.Category, err = domain.ParseCategory(cat); err != nil {
		return t, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	if t.Source, err = domain.ParseSource(src); err != nil {
		return t, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	return t, nil
}

var (
	_ storage.TransactionSource = (*Storage)(nil)
	_ storage.TransactionWriter = (*Storage)(nil)
)
