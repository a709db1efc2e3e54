package aggregation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transaction-aggregator/internal/domain"
)

func TestFilterEveryResultMatches(t *testing.T) {
	records := generated()
	start := refNow.AddDate(0, 0, -30)
	end := refNow.AddDate(0, 0, -5)

	criteria := []Criteria{
		{},
		{CustomerID: "CUST001"},
		{CustomerID: "CUST002", Category: ptr(domain.Dining)},
		{Source: ptr(domain.MobileWallet)},
		{StartDate: &start, EndDate: &end},
		{Type: ptr(domain.Credit), CustomerID: "CUST003"},
		{MinAmount: decimal.NewNullDecimal(dec("100")), MaxAmount: decimal.NewNullDecimal(dec("1000"))},
		{CustomerID: "CUST001", StartDate: &start, Category: ptr(domain.Transport), Source: ptr(domain.BankAccount)},
		{CustomerID: "NOBODY"},
	}

	ids := make(map[string]struct{}, len(records))
	for _, r := range records {
		ids[r.ID] = struct{}{}
	}

	for _, c := range criteria {
		got := Filter(records, c)
		for _, r := range got {
			_, ok := ids[r.ID]
			require.True(t, ok, "result must come from the store")
			require.True(t, c.Matches(r))
			if c.CustomerID != "" {
				assert.Equal(t, c.CustomerID, r.CustomerID)
			}
			if c.StartDate != nil {
				assert.False(t, r.Timestamp.Before(*c.StartDate))
			}
			if c.EndDate != nil {
				assert.False(t, r.Timestamp.After(*c.EndDate))
			}
			if c.MinAmount.Valid {
				assert.True(t, r.Amount.GreaterThanOrEqual(c.MinAmount.Decimal))
			}
			if c.MaxAmount.Valid {
				assert.True(t, r.Amount.LessThanOrEqual(c.MaxAmount.Decimal))
			}
		}

		// every record left out fails at least one predicate
		matched := 0
		for _, r := range records {
			if c.Matches(r) {
				matched++
			}
		}
		assert.Equal(t, matched, len(got))
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	records := generated()
	got := Filter(records, Criteria{CustomerID: "CUST002"})
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Timestamp.After(got[i-1].Timestamp))
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	records := generated()
	before := make([]string, len(records))
	for i, r := range records {
		before[i] = r.ID
	}

	out := Filter(records, Criteria{Category: ptr(domain.Groceries)})
	if len(out) > 0 {
		out[0].ID = "mutated"
	}

	for i, r := range records {
		require.Equal(t, before[i], r.ID)
	}
}

func TestZeroAmountBoundsApply(t *testing.T) {
	at := refNow
	records := []domain.Transaction{
		tx("free", "C1", "0.00", domain.Debit, domain.Other, at),
		tx("paid", "C1", "5.00", domain.Debit, domain.Other, at.Add(-time.Minute)),
	}

	got := Filter(records, Criteria{MaxAmount: decimal.NewNullDecimal(decimal.Zero)})
	require.Len(t, got, 1)
	assert.Equal(t, "free", got[0].ID)

	got = Filter(records, Criteria{MinAmount: decimal.NewNullDecimal(decimal.Zero)})
	assert.Len(t, got, 2)

	got = Filter(records, Criteria{})
	assert.Len(t, got, 2, "absent bounds are a no-op")
}

func TestQueryPaginationIsContiguous(t *testing.T) {
	records := generated()
	c := Criteria{CustomerID: "CUST001"}
	full := Filter(records, c)
	const limit = 25
	require.Greater(t, len(full), 2*limit)

	first := Query(records, c, limit, 0)
	second := Query(records, c, limit, limit)
	require.Len(t, first, limit)
	require.Len(t, second, limit)

	seen := map[string]bool{}
	for _, r := range first {
		seen[r.ID] = true
	}
	for _, r := range second {
		assert.False(t, seen[r.ID], "pages must be disjoint")
	}

	joined := append(append([]domain.Transaction{}, first...), second...)
	for i := range joined {
		assert.Equal(t, full[i].ID, joined[i].ID)
	}
}

func TestQueryLimitAndOffsetEdges(t *testing.T) {
	records := generated()
	total := len(Filter(records, Criteria{}))

	assert.Empty(t, Query(records, Criteria{}, 0, 0))
	assert.Empty(t, Query(records, Criteria{}, -5, 0))
	assert.Empty(t, Query(records, Criteria{}, 10, total))
	assert.Len(t, Query(records, Criteria{}, 10, -3), 10)
	assert.Len(t, Query(records, Criteria{}, total+100, 0), total)
	assert.Len(t, Query(records, Criteria{}, 10, total-4), 4)
}

func TestFilterEmptyStore(t *testing.T) {
	got := Filter(nil, Criteria{CustomerID: "C1"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
