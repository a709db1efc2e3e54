// internal/aggregation/query.go

// Package aggregation is the query and metrics engine. Every function takes the record set
// explicitly and never mutates it, so calls can run concurrently against one snapshot.
package aggregation

import (
	"time"

	"github.com/shopspring/decimal"

	"transaction-aggregator/internal/domain"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Criteria narrows a record set. Nil / empty / !Valid fields are ignored.
type Criteria struct {
	CustomerID string
	StartDate  *time.Time
	EndDate    *time.Time
	Category   *domain.Category
	Source     *domain.Source
	Type       *domain.TransactionType
	MinAmount  decimal.NullDecimal
	MaxAmount  decimal.NullDecimal
}

// Matches reports whether t satisfies every active predicate. Date and amount bounds are inclusive.
func (c Criteria) Matches(t domain.Transaction) bool {
	if c.CustomerID != "" && t.CustomerID != c.CustomerID {
		return false
	}
	if c.StartDate != nil && t.Timestamp.Before(*c.StartDate) {
		return false
	}
	if c.EndDate != nil && t.Timestamp.After(*c.EndDate) {
		return false
	}
	if c.Category != nil && t.Category != *c.Category {
		return false
	}
	if c.Source != nil && t.Source != *c.Source {
		return false
	}
	if c.Type != nil && t.Type != *c.Type {
		return false
	}
	if c.MinAmount.Valid && t.Amount.LessThan(c.MinAmount.Decimal) {
		return false
	}
	if c.MaxAmount.Valid && t.Amount.GreaterThan(c.MaxAmount.Decimal) {
		return false
	}
	return true
}

// Filter returns every matching record in input order.
func Filter(records []domain.Transaction, c Criteria) []domain.Transaction {
	out := make([]domain.Transaction, 0)
	for _, t := range records {
		if !c.Matches(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Query filters, then skips offset records and takes at most limit.
// A non-positive limit yields no records; a negative offset counts as zero.
func Query(records []domain.Transaction, c Criteria, limit, offset int) []domain.Transaction {
	return paginate(Filter(records, c), limit, offset)
}

func paginate(txns []domain.Transaction, limit, offset int) []domain.Transaction {
	if limit <= 0 {
		return []domain.Transaction{}
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(txns) {
		return []domain.Transaction{}
	}
	txns = txns[offset:]
	if limit < len(txns) {
		txns = txns[:limit]
	}
	return txns
}

func customerRange(customerID string, start, end *time.Time) Criteria {
	return Criteria{CustomerID: customerID, StartDate: start, EndDate: end}
}
