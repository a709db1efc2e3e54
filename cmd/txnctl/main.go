// cmd/txnctl/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"transaction-aggregator/internal/aggregation"
	"transaction-aggregator/internal/bootstrap"
	"transaction-aggregator/internal/config"
	"transaction-aggregator/internal/domain"
	"transaction-aggregator/internal/storage"
	val "transaction-aggregator/internal/validator"
)

func main() {
	_ = godotenv.Load()
	decimal.MarshalJSONWithoutQuotes = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore is replaced in tests.
var openStore = func(ctx context.Context) (storage.TransactionSource, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	bootstrap.SetupLogger(cfg.LogLevel)
	return bootstrap.OpenSource(ctx, cfg)
}

var now = time.Now

var rootCmd = &cobra.Command{
	Use:   "txnctl",
	Short: "Query and aggregate customer transactions",
	Long: `txnctl runs the transaction aggregation engine against the configured
data source (DATA_SOURCE=mock|postgres) and prints the result as JSON.`,
	SilenceUsage: true,
}

var (
	customerID string
	startDate  string
	endDate    string

	category  string
	source    string
	txnType   string
	minAmount string
	maxAmount string
	limit     int
	offset    int

	months int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions matching the given filters, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := listCriteria()
		if err != nil {
			return err
		}
		records, err := loadRecords(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), aggregation.Query(records, c, limit, offset))
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Credits, debits, net and per-category spending for a customer",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, end, err := dateRange()
		if err != nil {
			return err
		}
		records, err := loadRecords(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), aggregation.Summarize(records, customerID, start, end))
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Spending by category, largest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, end, err := dateRange()
		if err != nil {
			return err
		}
		records, err := loadRecords(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), aggregation.BreakdownByCategory(records, customerID, start, end))
	},
}

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Monthly credit and debit totals over the last N months",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadRecords(cmd.Context())
		if err != nil {
			return err
		}
		trends, err := aggregation.MonthlyTrends(records, customerID, months, now())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), trends)
	},
}

var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "List known customer ids",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		ids, err := store.CustomerIDs(cmd.Context())
		if err != nil {
			return err
		}
		if ids == nil {
			ids = []string{}
		}
		return printJSON(cmd.OutOrStdout(), map[string][]string{"customers": ids})
	},
}

var getCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		t, err := store.FindByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("transaction %s not found", args[0])
		}
		return printJSON(cmd.OutOrStdout(), t)
	},
}

func init() {
	for _, c := range []*cobra.Command{listCmd, summaryCmd, categoriesCmd, trendsCmd} {
		c.Flags().StringVar(&customerID, "customer", "", "customer id")
	}
	for _, c := range []*cobra.Command{listCmd, summaryCmd, categoriesCmd} {
		c.Flags().StringVar(&startDate, "start", "", "start date (YYYY-MM-DD or RFC3339)")
		c.Flags().StringVar(&endDate, "end", "", "end date, inclusive (YYYY-MM-DD or RFC3339)")
	}
	for _, c := range []*cobra.Command{summaryCmd, categoriesCmd, trendsCmd} {
		_ = c.MarkFlagRequired("customer")
	}

	listCmd.Flags().StringVar(&category, "category", "", "category, e.g. Groceries")
	listCmd.Flags().StringVar(&source, "source", "", "bank_account, credit_card or mobile_wallet")
	listCmd.Flags().StringVar(&txnType, "type", "", "credit or debit")
	listCmd.Flags().StringVar(&minAmount, "min", "", "minimum amount, inclusive")
	listCmd.Flags().StringVar(&maxAmount, "max", "", "maximum amount, inclusive")
	listCmd.Flags().IntVar(&limit, "limit", aggregation.DefaultLimit, "page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "records to skip")

	trendsCmd.Flags().IntVar(&months, "months", aggregation.DefaultTrendMonths, "months to look back (1-24)")

	rootCmd.AddCommand(listCmd, summaryCmd, categoriesCmd, trendsCmd, customersCmd, getCmd)
}

func loadRecords(ctx context.Context) ([]domain.Transaction, error) {
	store, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	return store.Transactions(ctx)
}

func dateRange() (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if startDate != "" {
		t, err := val.ParseDate(startDate, false)
		if err != nil {
			return nil, nil, fmt.Errorf("--start: %w", err)
		}
		start = &t
	}
	if endDate != "" {
		t, err := val.ParseDate(endDate, true)
		if err != nil {
			return nil, nil, fmt.Errorf("--end: %w", err)
		}
		end = &t
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, fmt.Errorf("--start must not be after --end")
	}
	return start, end, nil
}

func listCriteria() (aggregation.Criteria, error) {
	if limit < 1 || limit > aggregation.MaxLimit {
		return aggregation.Criteria{}, fmt.Errorf("--limit must be between 1 and %d", aggregation.MaxLimit)
	}
	if offset < 0 {
		return aggregation.Criteria{}, fmt.Errorf("--offset must not be negative")
	}

	start, end, err := dateRange()
	if err != nil {
		return aggregation.Criteria{}, err
	}
	c := aggregation.Criteria{CustomerID: customerID, StartDate: start, EndDate: end}

	if category != "" {
		v, err := domain.ParseCategory(category)
		if err != nil {
			return c, err
		}
		c.Category = &v
	}
	if source != "" {
		v, err := domain.ParseSource(source)
		if err != nil {
			return c, err
		}
		c.Source = &v
	}
	if txnType != "" {
		v, err := domain.ParseTransactionType(txnType)
		if err != nil {
			return c, err
		}
		c.Type = &v
	}
	if c.MinAmount, err = amountFlag("--min", minAmount); err != nil {
		return c, err
	}
	if c.MaxAmount, err = amountFlag("--max", maxAmount); err != nil {
		return c, err
	}
	return c, nil
}

func amountFlag(name, s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.NullDecimal{}, fmt.Errorf("%s must be a non-negative number", name)
	}
	return decimal.NewNullDecimal(d), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
