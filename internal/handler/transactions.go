// internal/handler/transactions.go
package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"transaction-aggregator/internal/aggregation"
	"transaction-aggregator/internal/domain"
	"transaction-aggregator/internal/storage"
	val "transaction-aggregator/internal/validator"
)

const (
	ServiceName    = "Capitec Transaction Aggregation API"
	ServiceVersion = "1.0.0"
)

type TransactionHandler struct {
	store storage.TransactionSource
	now   func() time.Time
}

func NewTransactionHandler(store storage.TransactionSource) *TransactionHandler {
	return &TransactionHandler{store: store, now: time.Now}
}

// Register mounts every route on the router.
func (h *TransactionHandler) Register(router gin.IRouter) {
	router.GET("/", h.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/transactions", h.ListTransactions)
		v1.GET("/transactions/:id", h.GetTransaction)
		v1.GET("/summary", h.GetSummary)
		v1.GET("/categories", h.GetCategoryBreakdown)
		v1.GET("/trends", h.GetMonthlyTrends)
		v1.GET("/customers", h.ListCustomers)
	}
}

// Health godoc
// @Summary Service status
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *TransactionHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":   ServiceName,
		"status":    "operational",
		"version":   ServiceVersion,
		"timestamp": h.now().Format(time.RFC3339),
	})
}

// ListTransactions godoc
// @Summary Filtered, paginated transactions
// @Param customer_id query string false "Customer ID"
// @Param start_date query string false "Start date (ISO format)"
// @Param end_date query string false "End date (ISO format)"
// @Param category query string false "Transaction category"
// @Param source query string false "Data source"
// @Param type query string false "credit or debit"
// @Param min_amount query string false "Minimum amount"
// @Param max_amount query string false "Maximum amount"
// @Param limit query int false "Results limit (1-1000)"
// @Param offset query int false "Results offset"
// @Success 200 {array} domain.Transaction
// @Failure 400 {object} map[string]string
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var req ListTransactionsRequest
	if !bindQuery(c, &req) {
		return
	}

	criteria, err := req.criteria()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, ok := h.records(c)
	if !ok {
		return
	}

	txns := aggregation.Query(records, criteria, req.Limit, req.Offset)
	slog.Info("Retrieved transactions", "count", len(txns), "customer_id", req.CustomerID)
	c.JSON(http.StatusOK, txns)
}

// GetTransaction godoc
// @Summary Single transaction by id
// @Param id path string true "Transaction ID"
// @Success 200 {object} domain.Transaction
// @Failure 404 {object} map[string]string
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id := c.Param("id")

	txn, err := h.store.FindByID(c.Request.Context(), id)
	if err != nil {
		slog.Error("FindByID failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	if txn == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}
	c.JSON(http.StatusOK, txn)
}

// GetSummary godoc
// @Summary Credits, debits, net and debit totals per category
// @Param customer_id query string true "Customer ID"
// @Param start_date query string false "Start date (ISO format)"
// @Param end_date query string false "End date (ISO format)"
// @Success 200 {object} domain.Summary
// @Failure 400 {object} map[string]string
// @Router /api/v1/summary [get]
func (h *TransactionHandler) GetSummary(c *gin.Context) {
	var req CustomerRangeRequest
	if !bindQuery(c, &req) {
		return
	}
	start, end, err := req.bounds()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, ok := h.records(c)
	if !ok {
		return
	}

	summary := aggregation.Summarize(records, req.CustomerID, start, end)
	slog.Info("Generated summary", "customer_id", req.CustomerID, "transactions", summary.TotalTransactions)
	c.JSON(http.StatusOK, summary)
}

// GetCategoryBreakdown godoc
// @Summary Debit spending per category with percentages
// @Param customer_id query string true "Customer ID"
// @Param start_date query string false "Start date (ISO format)"
// @Param end_date query string false "End date (ISO format)"
// @Success 200 {array} domain.CategoryBreakdown
// @Failure 400 {object} map[string]string
// @Router /api/v1/categories [get]
func (h *TransactionHandler) GetCategoryBreakdown(c *gin.Context) {
	var req CustomerRangeRequest
	if !bindQuery(c, &req) {
		return
	}
	start, end, err := req.bounds()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, ok := h.records(c)
	if !ok {
		return
	}

	breakdown := aggregation.BreakdownByCategory(records, req.CustomerID, start, end)
	slog.Info("Generated category breakdown", "customer_id", req.CustomerID, "categories", len(breakdown))
	c.JSON(http.StatusOK, breakdown)
}

// GetMonthlyTrends godoc
// @Summary Credits, debits and net per calendar month
// @Param customer_id query string true "Customer ID"
// @Param months query int false "Number of months to analyze (1-24)"
// @Success 200 {array} domain.MonthlyTrend
// @Failure 400 {object} map[string]string
// @Router /api/v1/trends [get]
func (h *TransactionHandler) GetMonthlyTrends(c *gin.Context) {
	var req TrendsRequest
	if !bindQuery(c, &req) {
		return
	}

	records, ok := h.records(c)
	if !ok {
		return
	}

	trends, err := aggregation.MonthlyTrends(records, req.CustomerID, req.Months, h.now())
	if err != nil {
		if errors.Is(err, aggregation.ErrInvalidMonths) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.Error("MonthlyTrends failed", "error", err, "customer_id", req.CustomerID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	slog.Info("Generated trends", "customer_id", req.CustomerID, "months", req.Months, "buckets", len(trends))
	c.JSON(http.StatusOK, trends)
}

// ListCustomers godoc
// @Summary Distinct customer ids
// @Success 200 {object} map[string][]string
// @Router /api/v1/customers [get]
func (h *TransactionHandler) ListCustomers(c *gin.Context) {
	customers, err := h.store.CustomerIDs(c.Request.Context())
	if err != nil {
		slog.Error("CustomerIDs failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	if customers == nil {
		customers = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (h *TransactionHandler) records(c *gin.Context) ([]domain.Transaction, bool) {
	records, err := h.store.Transactions(c.Request.Context())
	if err != nil {
		slog.Error("Loading transactions failed", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return nil, false
	}
	return records, true
}

// === DTO ===

type CustomerRangeRequest struct {
	CustomerID string `form:"customer_id" validate:"required,notblank"`
	StartDate  string `form:"start_date" validate:"omitempty,isodate"`
	EndDate    string `form:"end_date" validate:"omitempty,isodate"`
}

type ListTransactionsRequest struct {
	CustomerID string `form:"customer_id" validate:"omitempty,notblank"`
	StartDate  string `form:"start_date" validate:"omitempty,isodate"`
	EndDate    string `form:"end_date" validate:"omitempty,isodate"`
	Category   string `form:"category" validate:"omitempty,category"`
	Source     string `form:"source" validate:"omitempty,source"`
	Type       string `form:"type" validate:"omitempty,txntype"`
	MinAmount  string `form:"min_amount" validate:"omitempty,amount"`
	MaxAmount  string `form:"max_amount" validate:"omitempty,amount"`
	Limit      int    `form:"limit,default=100" validate:"gte=1,lte=1000"`
	Offset     int    `form:"offset,default=0" validate:"gte=0"`
}

type TrendsRequest struct {
	CustomerID string `form:"customer_id" validate:"required,notblank"`
	Months     int    `form:"months,default=6" validate:"gte=1,lte=24"`
}

func (r CustomerRangeRequest) bounds() (*time.Time, *time.Time, error) {
	return dateBounds(r.StartDate, r.EndDate)
}

func (r ListTransactionsRequest) criteria() (aggregation.Criteria, error) {
	start, end, err := dateBounds(r.StartDate, r.EndDate)
	if err != nil {
		return aggregation.Criteria{}, err
	}
	crit := aggregation.Criteria{
		CustomerID: strings.TrimSpace(r.CustomerID),
		StartDate:  start,
		EndDate:    end,
	}

	if r.Category != "" {
		cat, err := domain.ParseCategory(r.Category)
		if err != nil {
			return crit, err
		}
		crit.Category = &cat
	}
	if r.Source != "" {
		src, err := domain.ParseSource(r.Source)
		if err != nil {
			return crit, err
		}
		crit.Source = &src
	}
	if r.Type != "" {
		typ, err := domain.ParseTransactionType(r.Type)
		if err != nil {
			return crit, err
		}
		crit.Type = &typ
	}
	if crit.MinAmount, err = optionalAmount("min_amount", r.MinAmount); err != nil {
		return crit, err
	}
	if crit.MaxAmount, err = optionalAmount("max_amount", r.MaxAmount); err != nil {
		return crit, err
	}
	if crit.MinAmount.Valid && crit.MaxAmount.Valid && crit.MinAmount.Decimal.GreaterThan(crit.MaxAmount.Decimal) {
		return crit, fmt.Errorf("min_amount must not exceed max_amount")
	}
	return crit, nil
}

// optionalAmount keeps presence separate from value: "0" is a real bound.
func optionalAmount(name, s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%s must be a decimal number", name)
	}
	return decimal.NewNullDecimal(d), nil
}

func dateBounds(startStr, endStr string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if startStr != "" {
		t, err := val.ParseDate(startStr, false)
		if err != nil {
			return nil, nil, fmt.Errorf("start_date: %w", err)
		}
		start = &t
	}
	if endStr != "" {
		t, err := val.ParseDate(endStr, true)
		if err != nil {
			return nil, nil, fmt.Errorf("end_date: %w", err)
		}
		end = &t
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, fmt.Errorf("start_date must not be after end_date")
	}
	return start, end, nil
}

func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return false
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func validateStruct(v any) error {
	if err := val.Validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		var errs []string
		for _, e := range verrs {
			errs = append(errs, fieldErrorToString(e))
		}
		return fmt.Errorf("invalid input: %s", strings.Join(errs, "; "))
	}
	return nil
}

func fieldErrorToString(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", e.Field())
	case "isodate":
		return fmt.Sprintf("%s must be an ISO date (YYYY-MM-DD or RFC3339)", e.Field())
	case "amount":
		return fmt.Sprintf("%s must be a non-negative decimal", e.Field())
	case "category":
		return fmt.Sprintf("%s must be one of %s", e.Field(), joinValues(domain.Categories))
	case "source":
		return fmt.Sprintf("%s must be one of %s", e.Field(), joinValues(domain.Sources))
	case "txntype":
		return fmt.Sprintf("%s must be credit or debit", e.Field())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", e.Field())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}

func joinValues[T ~string](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
