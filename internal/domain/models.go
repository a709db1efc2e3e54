// internal/domain/models.go
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownType     = errors.New("unknown transaction type")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownSource   = errors.New("unknown data source")
	ErrInvalidAmount   = errors.New("amount must be non-negative")
	ErrInvalidRecord   = errors.New("invalid transaction")
)

type TransactionType string

const (
	Credit TransactionType = "credit"
	Debit  TransactionType = "debit"
)

type Category string

const (
	Groceries     Category = "Groceries"
	Transport     Category = "Transport"
	Entertainment Category = "Entertainment"
	Utilities     Category = "Utilities"
	Healthcare    Category = "Healthcare"
	Shopping      Category = "Shopping"
	Dining        Category = "Dining"
	Transfer      Category = "Transfer"
	Salary        Category = "Salary"
	Investment    Category = "Investment"
	Other         Category = "Other"
)

// Categories lists every category in declaration order.
var Categories = []Category{
	Groceries, Transport, Entertainment, Utilities, Healthcare,
	Shopping, Dining, Transfer, Salary, Investment, Other,
}

type Source string

const (
	BankAccount  Source = "bank_account"
	CreditCard   Source = "credit_card"
	MobileWallet Source = "mobile_wallet"
)

var Sources = []Source{BankAccount, CreditCard, MobileWallet}

func (t TransactionType) Valid() bool {
	switch t {
	case Credit, Debit:
		return true
	}
	return false
}

func (c Category) Valid() bool {
	switch c {
	case Groceries, Transport, Entertainment, Utilities, Healthcare,
		Shopping, Dining, Transfer, Salary, Investment, Other:
		return true
	}
	return false
}

func (s Source) Valid() bool {
	switch s {
	case BankAccount, CreditCard, MobileWallet:
		return true
	}
	return false
}

func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// ParseCategory is case-insensitive: "groceries" and "Groceries" are the same category.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

func ParseSource(s string) (Source, error) {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	if !src.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
	}
	return src, nil
}

func (t *TransactionType) UnmarshalText(b []byte) error {
	v, err := ParseTransactionType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (s *Source) UnmarshalText(b []byte) error {
	v, err := ParseSource(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Transaction is immutable once loaded into a store.
type Transaction struct {
	ID           string           `json:"id"`
	CustomerID   string           `json:"customer_id"`
	Amount       decimal.Decimal  `json:"amount"`
	Type         TransactionType  `json:"type"`
	Category     Category         `json:"category"`
	Description  string           `json:"description"`
	Merchant     *string          `json:"merchant"`
	Timestamp    time.Time        `json:"timestamp"`
	Source       Source           `json:"source"`
	BalanceAfter *decimal.Decimal `json:"balance_after"`
}

func (t Transaction) IsCredit() bool { return t.Type == Credit }

func (t Transaction) IsDebit() bool { return t.Type == Debit }

// Validate reports the first broken field of a record coming from a data source.
func (t Transaction) Validate() error {
	switch {
	case strings.TrimSpace(t.ID) == "":
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	case strings.TrimSpace(t.CustomerID) == "":
		return fmt.Errorf("%w: %s: empty customer_id", ErrInvalidRecord, t.ID)
	case t.Amount.IsNegative():
		return fmt.Errorf("%w: %s: %w", ErrInvalidRecord, t.ID, ErrInvalidAmount)
	case !t.Type.Valid():
		return fmt.Errorf("%w: %s: %w %q", ErrInvalidRecord, t.ID, ErrUnknownType, t.Type)
	case !t.Category.Valid():
		return fmt.Errorf("%w: %s: %w %q", ErrInvalidRecord, t.ID, ErrUnknownCategory, t.Category)
	case !t.Source.Valid():
		return fmt.Errorf("%w: %s: %w %q", ErrInvalidRecord, t.ID, ErrUnknownSource, t.Source)
	case t.Timestamp.IsZero():
		return fmt.Errorf("%w: %s: zero timestamp", ErrInvalidRecord, t.ID)
	}
	return nil
}

// CategoryTotal is the debit amount and count for one category.
type CategoryTotal struct {
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

type Summary struct {
	TotalTransactions int                        `json:"total_transactions"`
	TotalCredits      decimal.Decimal            `json:"total_credits"`
	TotalDebits       decimal.Decimal            `json:"total_debits"`
	NetAmount         decimal.Decimal            `json:"net_amount"`
	Categories        map[Category]CategoryTotal `json:"categories"`
}

type CategoryBreakdown struct {
	Category         Category        `json:"category"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TransactionCount int             `json:"transaction_count"`
	Percentage       float64         `json:"percentage"`
}

type MonthlyTrend struct {
	Month            string          `json:"month"`
	Year             int             `json:"year"`
	TotalCredits     decimal.Decimal `json:"total_credits"`
	TotalDebits      decimal.Decimal `json:"total_debits"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	TransactionCount int             `json:"transaction_count"`
}
