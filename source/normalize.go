package source

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"recommend-service/model"
)

const nanosPerUnit = 1_000_000_000

var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
}

// NormalizePrice parses a free-form price string ("$24.95", "109.99", "109")
// into canonical Money. The fractional part is scaled to nine decimal digits
// with half-up rounding.
func NormalizePrice(raw string) (model.Money, error) {
	s := strings.TrimSpace(raw)
	currency := "USD"
	for sym, code := range currencySymbols {
		if strings.HasPrefix(s, sym) {
			currency = code
			s = strings.TrimSpace(strings.TrimPrefix(s, sym))
			break
		}
	}
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return model.Money{}, fmt.Errorf("%w: empty price", ErrMalformedResponse)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return model.Money{}, fmt.Errorf("%w: unparseable price %q", ErrMalformedResponse, raw)
	}
	if d.IsNegative() {
		return model.Money{}, fmt.Errorf("%w: negative price %q", ErrMalformedResponse, raw)
	}

	units := d.IntPart()
	// Decimal.Round is half away from zero, which is half-up for the
	// non-negative values allowed here.
	nanos := d.Sub(decimal.NewFromInt(units)).Shift(9).Round(0).IntPart()
	if nanos >= nanosPerUnit {
		units++
		nanos -= nanosPerUnit
	}

	return model.Money{CurrencyCode: currency, Units: units, Nanos: int32(nanos)}, nil
}

// AbsoluteURL resolves a possibly relative image path against the source
// base URL. Absolute URLs pass through unchanged.
func AbsoluteURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	b, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// CleanName trims a product name and collapses internal whitespace runs to
// single spaces. Empty names come back empty so callers can reject them.
func CleanName(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
