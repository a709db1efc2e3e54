package aggregation

import (
	"time"

	"github.com/shopspring/decimal"

	"transaction-aggregator/internal/domain"
	"transaction-aggregator/internal/storage/mock"
)

var refNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

func tx(id, customer, amount string, typ domain.TransactionType, cat domain.Category, at time.Time) domain.Transaction {
	return domain.Transaction{
		ID:          id,
		CustomerID:  customer,
		Amount:      dec(amount),
		Type:        typ,
		Category:    cat,
		Description: id,
		Timestamp:   at,
		Source:      domain.BankAccount,
	}
}

// generated returns the mock feed anchored at refNow.
func generated() []domain.Transaction {
	opts := mock.DefaultOptions()
	opts.Now = refNow
	return mock.Generate(opts)
}
