package bank

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseEuropeanAmount reads amounts written with "." as thousands separator
// and "," as decimal separator, e.g. "1.234,56", "-588,74" or "450,00 EUR".
func parseEuropeanAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "EUR"))
	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	return decimal.NewFromString(clean)
}
