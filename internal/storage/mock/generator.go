// internal/storage/mock/generator.go
package mock

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"transaction-aggregator/internal/domain"
)

type template struct {
	amount      string
	typ         domain.TransactionType
	category    domain.Category
	description string
	merchant    string
	source      domain.Source
}

// Templates per channel: bank account, credit card, mobile wallet.
var templates = []template{
	{"25000.00", domain.Credit, domain.Salary, "Salary Payment", "Employer Corp", domain.BankAccount},
	{"1250.50", domain.Debit, domain.Groceries, "Checkers Payment", "Checkers", domain.BankAccount},
	{"850.00", domain.Debit, domain.Utilities, "Electricity Payment", "City Power", domain.BankAccount},
	{"450.00", domain.Debit, domain.Transport, "Petrol Purchase", "Shell", domain.BankAccount},

	{"599.99", domain.Debit, domain.Shopping, "Online Purchase", "Takealot", domain.CreditCard},
	{"280.00", domain.Debit, domain.Dining, "Restaurant Payment", "Wimpy", domain.CreditCard},
	{"1500.00", domain.Debit, domain.Entertainment, "Movie & Concert", "Ster Kinekor", domain.CreditCard},

	{"50.00", domain.Debit, domain.Transport, "Taxi Fare", "Bolt", domain.MobileWallet},
	{"150.00", domain.Debit, domain.Dining, "Food Delivery", "Uber Eats", domain.MobileWallet},
	{"500.00", domain.Credit, domain.Transfer, "Transfer from Friend", "", domain.MobileWallet},

	{"350.00", domain.Debit, domain.Healthcare, "Doctor Consultation", "Medi Clinic", domain.BankAccount},
	{"2000.00", domain.Debit, domain.Investment, "Unit Trust Purchase", "Capitec Investment", domain.BankAccount},
}

type Options struct {
	Customers      []string
	Days           int
	Seed           uint64
	OpeningBalance decimal.Decimal
	Now            time.Time
}

func DefaultOptions() Options {
	return Options{
		Customers:      []string{"CUST001", "CUST002", "CUST003"},
		Days:           90,
		Seed:           42,
		OpeningBalance: decimal.NewFromInt(30000),
		Now:            time.Now(),
	}
}

// Generate produces 2–5 transactions per customer per day going back opts.Days days,
// each at a random hour of that day, sorted newest first. The same options always yield
// the same records.
func Generate(opts Options) []domain.Transaction {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	var txns []domain.Transaction
	id := 1

	for _, customer := range opts.Customers {
		balance := opts.OpeningBalance
		for day := 0; day < opts.Days; day++ {
			n := 2 + rng.IntN(4)
			for range n {
				tpl := templates[rng.IntN(len(templates))]
				at := opts.Now.AddDate(0, 0, -day).Add(-time.Duration(rng.IntN(24)) * time.Hour)

				amount := decimal.RequireFromString(tpl.amount)
				if tpl.typ == domain.Debit {
					balance = balance.Sub(amount)
				} else {
					balance = balance.Add(amount)
				}
				after := balance.Round(2)

				var merchant *string
				if tpl.merchant != "" {
					m := tpl.merchant
					merchant = &m
				}

				txns = append(txns, domain.Transaction{
					ID:           fmt.Sprintf("TXN%08d", id),
					CustomerID:   customer,
					Amount:       amount,
					Type:         tpl.typ,
					Category:     tpl.category,
					Description:  tpl.description,
					Merchant:     merchant,
					Timestamp:    at,
					Source:       tpl.source,
					BalanceAfter: &after,
				})
				id++
			}
		}
	}

	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Timestamp.After(txns[j].Timestamp)
	})
	return txns
}
