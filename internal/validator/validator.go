// internal/validator/validator.go
package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"transaction-aggregator/internal/domain"
)

var Validate *validator.Validate

var nonBlank = regexp.MustCompile(`\S`)

var ErrBadDate = errors.New("date must be RFC3339 or YYYY-MM-DD")

// Accepted date layouts, most specific first. Layouts without an offset are read in time.Local.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

func init() {
	Validate = validator.New()

	// report query parameter names ("customer_id") instead of Go field names
	Validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = Validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return nonBlank.MatchString(fl.Field().String())
	})

	_ = Validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String(), false)
		return err == nil
	})

	// "amount": non-negative decimal string such as "100" or "1250.50"
	_ = Validate.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		return err == nil && !d.IsNegative()
	})

	_ = Validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseCategory(fl.Field().String())
		return err == nil
	})

	_ = Validate.RegisterValidation("source", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseSource(fl.Field().String())
		return err == nil
	})

	_ = Validate.RegisterValidation("txntype", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseTransactionType(fl.Field().String())
		return err == nil
	})
}

// ParseDate reads an ISO date or date-time. With endOfDay set, a bare YYYY-MM-DD
// becomes the last nanosecond of that day so it works as an inclusive upper bound.
func ParseDate(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err != nil {
			continue
		}
		if layout == time.DateOnly && endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return t, nil
	}
	return time.Time{}, ErrBadDate
}
