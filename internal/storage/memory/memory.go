// internal/storage/memory/memory.go
package memory

import (
	"context"
	"fmt"
	"sort"

	"transaction-aggregator/internal/domain"
	"transaction-aggregator/internal/storage"
)

// Storage holds an immutable snapshot of transactions sorted newest first.
// Nothing mutates it after NewStorage, so it is safe for concurrent readers without locking.
type Storage struct {
	txns      []domain.Transaction
	byID      map[string]int
	customers []string
}

func NewStorage(txns []domain.Transaction) (*Storage, error) {
	sorted := make([]domain.Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	byID := make(map[string]int, len(sorted))
	seen := make(map[string]struct{})
	var customers []string
	for i, t := range sorted {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate transaction id %q", t.ID)
		}
		byID[t.ID] = i
		if _, ok := seen[t.CustomerID]; !ok {
			seen[t.CustomerID] = struct{}{}
			customers = append(customers, t.CustomerID)
		}
	}
	sort.Strings(customers)

	return &Storage{txns: sorted, byID: byID, customers: customers}, nil
}

// Transactions returns a copy so callers can't reorder the snapshot.
func (s *Storage) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	out := make([]domain.Transaction, len(s.txns))
	copy(out, s.txns)
	return out, nil
}

func (s *Storage) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	t := s.txns[i]
	return &t, nil
}

func (s *Storage) CustomerIDs(ctx context.Context) ([]string, error) {
	out := make([]string, len(s.customers))
	copy(out, s.customers)
	return out, nil
}

func (s *Storage) Len() int {
	return len(s.txns)
}

var _ storage.TransactionSource = (*Storage)(nil)
