package sanitize

import (
	"math"
	"strconv"
	"strings"

	"github.com/panelkit/flyout/core/schema"
)

// Money is a cleaned price configuration. Amount is integer minor units
// (cents); Currency and Interval are validated against closed enumerations
// and nulled out when unrecognized.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency,omitempty"`
	Interval string `json:"interval,omitempty"`
}

// currencies is the closed set of accepted ISO currency codes.
var currencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "CAD": true, "AUD": true,
	"NZD": true, "CHF": true, "SEK": true, "DKK": true, "NOK": true,
}

// intervals is the closed set of accepted recurrence intervals.
var intervals = map[string]bool{
	"day": true, "week": true, "month": true, "year": true,
}

// Price cleans a price value. A scalar decimal string yields integer cents
// directly; a map-shaped value ({amount, currency, interval}) yields a full
// Money record.
func Price(raw any, field schema.Declaration) any {
	switch v := raw.(type) {
	case map[string]any:
		return Money{
			Amount:   Cents(scalarString(v["amount"])),
			Currency: CurrencyCode(scalarString(v["currency"])),
			Interval: Interval(scalarString(v["interval"])),
		}
	case map[string]string:
		return Money{
			Amount:   Cents(v["amount"]),
			Currency: CurrencyCode(v["currency"]),
			Interval: Interval(v["interval"]),
		}
	default:
		return Cents(strings.TrimSpace(scalarString(raw)))
	}
}

// Cents converts a decimal amount string into integer minor units by
// multiplying by 100 and rounding (never truncating): "19.99" → 1999,
// "19.999" → 2000. Invalid input yields 0.
func Cents(amount string) int64 {
	s := strings.TrimSpace(amount)
	if s == "" {
		return 0
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}

	return int64(math.Round(f * 100))
}

// CurrencyCode validates a currency code against the closed enumeration,
// returning "" for unrecognized codes.
func CurrencyCode(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if !currencies[c] {
		return ""
	}
	return c
}

// Interval validates a recurrence interval against the closed enumeration,
// returning "" for unrecognized values.
func Interval(interval string) string {
	i := strings.ToLower(strings.TrimSpace(interval))
	if !intervals[i] {
		return ""
	}
	return i
}
