// internal/storage/storage.go
package storage

import (
	"context"

	"transaction-aggregator/internal/domain"
)

// TransactionSource supplies the full, read-only record set to the aggregation engine.
// Transactions are returned newest first. FindByID returns nil, nil when the id is unknown.
type TransactionSource interface {
	Transactions(ctx context.Context) ([]domain.Transaction, error)
	FindByID(ctx context.Context, id string) (*domain.Transaction, error)
	CustomerIDs(ctx context.Context) ([]string, error)
}

// TransactionWriter is implemented by sources that can be seeded.
type TransactionWriter interface {
	InsertTransactions(ctx context.Context, txns []domain.Transaction) (int64, error)
}
