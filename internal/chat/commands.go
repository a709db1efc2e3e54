// internal/chat/commands.go
package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"transaction-aggregator/internal/aggregation"
	"transaction-aggregator/internal/storage"
	val "transaction-aggregator/internal/validator"
)

const helpText = "🏦 *Transaction aggregator*\n\n" +
	"Commands:\n" +
	"`/customers` — list customers\n" +
	"`/summary CUST001 [from] [to]` — credits, debits and net\n" +
	"`/categories CUST001 [from] [to]` — spending by category\n" +
	"`/trends CUST001 [months]` — monthly totals (1-24, default 6)\n" +
	"`/txn TXN00000001` — show one transaction\n\n" +
	"Dates are YYYY-MM-DD."

var printer = message.NewPrinter(language.English)

// Bot answers chat commands from a read-only transaction source.
type Bot struct {
	store storage.TransactionSource
	now   func() time.Time
}

func NewBot(store storage.TransactionSource) *Bot {
	return &Bot{store: store, now: time.Now}
}

// Reply turns one incoming message into the text to send back.
// Usage mistakes come back as a message; only store failures are errors.
func (b *Bot) Reply(ctx context.Context, text string) (string, error) {
	fields := strings.Fields(Normalize(text))
	if len(fields) == 0 {
		return "Unknown command. Send /help", nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/start", "/help":
		return helpText, nil
	case "/customers":
		return b.customers(ctx)
	case "/summary":
		return b.summary(ctx, args)
	case "/categories":
		return b.categories(ctx, args)
	case "/trends":
		return b.trends(ctx, args)
	case "/txn":
		return b.transaction(ctx, args)
	}
	return "Unknown command. Send /help", nil
}

func (b *Bot) customers(ctx context.Context) (string, error) {
	ids, err := b.store.CustomerIDs(ctx)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "📭 No customers", nil
	}
	for i, id := range ids {
		ids[i] = Escape(id)
	}
	return "👥 *Customers*\n" + strings.Join(ids, "\n"), nil
}

func (b *Bot) summary(ctx context.Context, args []string) (string, error) {
	customer, start, end, msg := customerRangeArgs("/summary", args)
	if msg != "" {
		return msg, nil
	}
	records, err := b.store.Transactions(ctx)
	if err != nil {
		return "", err
	}

	s := aggregation.Summarize(records, customer, start, end)
	if s.TotalTransactions == 0 {
		return fmt.Sprintf("📭 No transactions for %s", Escape(customer)), nil
	}

	lines := []string{
		fmt.Sprintf("📊 *Summary for %s*", Escape(customer)),
		fmt.Sprintf("Transactions: %d", s.TotalTransactions),
		"Credits: " + FormatAmount(s.TotalCredits),
		"Debits: " + FormatAmount(s.TotalDebits),
		"Net: " + FormatAmount(s.NetAmount),
	}
	return strings.Join(lines, "\n"), nil
}

func (b *Bot) categories(ctx context.Context, args []string) (string, error) {
	customer, start, end, msg := customerRangeArgs("/categories", args)
	if msg != "" {
		return msg, nil
	}
	records, err := b.store.Transactions(ctx)
	if err != nil {
		return "", err
	}

	breakdown := aggregation.BreakdownByCategory(records, customer, start, end)
	if len(breakdown) == 0 {
		return fmt.Sprintf("📭 No spending for %s", Escape(customer)), nil
	}

	lines := []string{fmt.Sprintf("🧾 *Spending by category for %s*", Escape(customer))}
	for _, e := range breakdown {
		lines = append(lines, fmt.Sprintf("- %s: %s (%d, %.2f%%)",
			e.Category, FormatAmount(e.TotalAmount), e.TransactionCount, e.Percentage))
	}
	return strings.Join(lines, "\n"), nil
}

func (b *Bot) trends(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 || len(args) > 2 {
		return "❌ Usage: `/trends CUST001 [months]`", nil
	}
	months := aggregation.DefaultTrendMonths
	if len(args) == 2 {
		m, err := strconv.Atoi(args[1])
		if err != nil {
			return "❌ months must be a number", nil
		}
		months = m
	}

	records, err := b.store.Transactions(ctx)
	if err != nil {
		return "", err
	}
	trends, err := aggregation.MonthlyTrends(records, args[0], months, b.now())
	if errors.Is(err, aggregation.ErrInvalidMonths) {
		return fmt.Sprintf("❌ months must be between %d and %d", aggregation.MinTrendMonths, aggregation.MaxTrendMonths), nil
	}
	if err != nil {
		return "", err
	}
	if len(trends) == 0 {
		return fmt.Sprintf("📭 No transactions for %s", Escape(args[0])), nil
	}

	lines := []string{fmt.Sprintf("📈 *Monthly trends for %s*", Escape(args[0]))}
	for _, tr := range trends {
		lines = append(lines, fmt.Sprintf("- %s %d: in %s, out %s, net %s",
			tr.Month, tr.Year, FormatAmount(tr.TotalCredits), FormatAmount(tr.TotalDebits), FormatAmount(tr.NetAmount)))
	}
	return strings.Join(lines, "\n"), nil
}

func (b *Bot) transaction(ctx context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "❌ Usage: `/txn TXN00000001`", nil
	}
	t, err := b.store.FindByID(ctx, args[0])
	if err != nil {
		return "", err
	}
	if t == nil {
		return fmt.Sprintf("📭 Transaction %s not found", Escape(args[0])), nil
	}

	merchant := "-"
	if t.Merchant != nil {
		merchant = *t.Merchant
	}
	lines := []string{
		fmt.Sprintf("🧾 *%s*", Escape(t.ID)),
		"Customer: " + Escape(t.CustomerID),
		fmt.Sprintf("%s %s", t.Type, FormatAmount(t.Amount)),
		Escape(fmt.Sprintf("%s, %s", t.Category, t.Source)),
		Escape(fmt.Sprintf("%s (%s)", t.Description, merchant)),
		t.Timestamp.Format("2006-01-02 15:04"),
	}
	return strings.Join(lines, "\n"), nil
}

func customerRangeArgs(cmd string, args []string) (string, *time.Time, *time.Time, string) {
	if len(args) == 0 || len(args) > 3 {
		return "", nil, nil, fmt.Sprintf("❌ Usage: `%s CUST001 [from] [to]`", cmd)
	}
	var start, end *time.Time
	if len(args) >= 2 {
		t, err := val.ParseDate(args[1], false)
		if err != nil {
			return "", nil, nil, "❌ from must be YYYY-MM-DD"
		}
		start = &t
	}
	if len(args) == 3 {
		t, err := val.ParseDate(args[2], true)
		if err != nil {
			return "", nil, nil, "❌ to must be YYYY-MM-DD"
		}
		end = &t
	}
	return args[0], start, end, ""
}

// Escape quotes Markdown markers in values echoed into a Markdown reply.
func Escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// FormatAmount renders a currency amount rounded to cents with thousands separators.
func FormatAmount(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	cents := d.Sub(whole).Shift(2).Round(0).IntPart()
	w := whole.IntPart()
	if cents == 100 {
		w++
		cents = 0
	}
	return printer.Sprintf("%sR %d.%02d", sign, w, cents)
}

// Normalize repairs windows-1251 input that arrives as invalid UTF-8 and collapses whitespace.
func Normalize(s string) string {
	if !utf8.ValidString(s) {
		if fixed, err := charmap.Windows1251.NewDecoder().String(s); err == nil && utf8.ValidString(fixed) {
			s = fixed
		} else {
			s = strings.ToValidUTF8(s, "")
		}
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
