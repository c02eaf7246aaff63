package service

import (
	"encoding/json"
	"strings"
	"time"

	"go-credit-inventory/internal/model"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

// NumberField keeps the raw text of a numeric input, so a value that is not a
// number surfaces as a ValidationError rather than a decoding failure.
// It accepts JSON numbers and JSON strings.
type NumberField string

func (n *NumberField) UnmarshalJSON(b []byte) error {
	raw := string(b)
	if raw == "null" {
		*n = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NumberField(s)
		return nil
	}
	*n = NumberField(raw)
	return nil
}

// moneyPlaces matches the decimal(14,2) money columns
const moneyPlaces = 2

// parseAmount treats an absent value as zero and anything non-numeric as invalid.
// Amounts finer than a cent are rejected so the stored value is the one checked.
func parseAmount(field string, n NumberField) (decimal.Decimal, error) {
	return parseDecimal(field, n, moneyPlaces)
}

func parseDecimal(field string, n NumberField, places int32) (decimal.Decimal, error) {
	text := strings.TrimSpace(string(n))
	if text == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, invalid(field, "must be a number, got %q", text)
	}
	if !d.Equal(d.Truncate(places)) {
		return decimal.Zero, invalid(field, "at most %d decimal places allowed, got %q", places, text)
	}
	return d, nil
}

// ConvertCurrency converts a primary-currency amount at rate, rounded to two
// decimals for display. ok is false when the input is empty or not a number, so
// callers can tell "no value yet" apart from zero.
func ConvertCurrency(amountPrimary string, rate decimal.Decimal) (converted decimal.Decimal, ok bool) {
	text := strings.TrimSpace(amountPrimary)
	if text == "" {
		return decimal.Decimal{}, false
	}
	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return convert(amount, rate), true
}

func convert(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(2)
}

// parseDate accepts most common date spellings and stores them as YYYY-MM-DD
func parseDate(field, text, fallback string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback, nil
	}
	t, err := dateparse.ParseAny(text)
	if err != nil {
		return "", invalid(field, "unrecognised date %q", text)
	}
	return t.Format(model.DateLayout), nil
}

func dateOf(t time.Time) string {
	return t.Format(model.DateLayout)
}
