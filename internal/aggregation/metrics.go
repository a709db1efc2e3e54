// internal/aggregation/metrics.go
package aggregation

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"transaction-aggregator/internal/domain"
)

const (
	MinTrendMonths     = 1
	MaxTrendMonths     = 24
	DefaultTrendMonths = 6

	// A trend "month" is a fixed 30 days, not a calendar month.
	trendMonthSpan = 30 * 24 * time.Hour
)

var ErrInvalidMonths = errors.New("months out of range")

// Summarize totals credits and debits for a customer, optionally within [start, end].
func Summarize(records []domain.Transaction, customerID string, start, end *time.Time) domain.Summary {
	txns := Filter(records, customerRange(customerID, start, end))

	credits := decimal.Zero
	debits := decimal.Zero
	categories := make(map[domain.Category]domain.CategoryTotal)

	for _, t := range txns {
		switch t.Type {
		case domain.Credit:
			credits = credits.Add(t.Amount)
		case domain.Debit:
			debits = debits.Add(t.Amount)
			ct := categories[t.Category]
			ct.Amount = ct.Amount.Add(t.Amount)
			ct.Count++
			categories[t.Category] = ct
		}
	}

	return domain.Summary{
		TotalTransactions: len(txns),
		TotalCredits:      credits,
		TotalDebits:       debits,
		NetAmount:         credits.Sub(debits),
		Categories:        categories,
	}
}

// BreakdownByCategory distributes a customer's debit spending over categories,
// largest first. Equal totals keep the order in which the category was first seen.
func BreakdownByCategory(records []domain.Transaction, customerID string, start, end *time.Time) []domain.CategoryBreakdown {
	txns := Filter(records, customerRange(customerID, start, end))

	totalSpent := decimal.Zero
	var order []domain.Category
	totals := make(map[domain.Category]domain.CategoryTotal)

	for _, t := range txns {
		if !t.IsDebit() {
			continue
		}
		totalSpent = totalSpent.Add(t.Amount)
		ct, seen := totals[t.Category]
		if !seen {
			order = append(order, t.Category)
		}
		ct.Amount = ct.Amount.Add(t.Amount)
		ct.Count++
		totals[t.Category] = ct
	}

	breakdown := make([]domain.CategoryBreakdown, 0, len(order))
	for _, cat := range order {
		ct := totals[cat]
		breakdown = append(breakdown, domain.CategoryBreakdown{
			Category:         cat,
			TotalAmount:      ct.Amount,
			TransactionCount: ct.Count,
			Percentage:       percentage(ct.Amount, totalSpent),
		})
	}

	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].TotalAmount.GreaterThan(breakdown[j].TotalAmount)
	})
	return breakdown
}

// percentage converts to float only here, for display; 0 when total is zero.
func percentage(part, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 0
	}
	p := part.InexactFloat64() / total.InexactFloat64() * 100
	return math.Round(p*100) / 100
}

type monthKey struct {
	year  int
	month time.Month
}

type monthTotals struct {
	credits decimal.Decimal
	debits  decimal.Decimal
	count   int
}

// MonthlyTrends buckets a customer's transactions in [now - months*30d, now] by calendar
// (year, month), oldest first. Months without transactions are absent. The 30-day window
// can reach into one extra calendar month; only the newest `months` buckets are returned.
func MonthlyTrends(records []domain.Transaction, customerID string, months int, now time.Time) ([]domain.MonthlyTrend, error) {
	if months < MinTrendMonths || months > MaxTrendMonths {
		return nil, fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidMonths, months, MinTrendMonths, MaxTrendMonths)
	}

	end := now
	start := end.Add(-time.Duration(months) * trendMonthSpan)
	txns := Filter(records, customerRange(customerID, &start, &end))

	buckets := make(map[monthKey]*monthTotals)
	for _, t := range txns {
		key := monthKey{year: t.Timestamp.Year(), month: t.Timestamp.Month()}
		b, ok := buckets[key]
		if !ok {
			b = &monthTotals{credits: decimal.Zero, debits: decimal.Zero}
			buckets[key] = b
		}
		switch t.Type {
		case domain.Credit:
			b.credits = b.credits.Add(t.Amount)
		case domain.Debit:
			b.debits = b.debits.Add(t.Amount)
		}
		b.count++
	}

	keys := make([]monthKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})
	if len(keys) > months {
		keys = keys[len(keys)-months:]
	}

	trends := make([]domain.MonthlyTrend, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		trends = append(trends, domain.MonthlyTrend{
			Month:            k.month.String(),
			Year:             k.year,
			TotalCredits:     b.credits,
			TotalDebits:      b.debits,
			NetAmount:        b.credits.Sub(b.debits),
			TransactionCount: b.count,
		})
	}
	return trends, nil
}
