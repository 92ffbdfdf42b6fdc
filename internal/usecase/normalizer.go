package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/MarcoRizz95/ComparatorePrezzi-Supermercati/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	nonDigitRegex  = regexp.MustCompile(`[^0-9]`)
	priceCharRegex = regexp.MustCompile(`[^0-9,.\-]`)
)

// taxIDLength is the padded length of an Italian P.IVA
const taxIDLength = 11

// NormalizeTaxID canonicalizes a raw tax identifier: every non-digit character
// is stripped and the result is left-padded with zeros to 11 characters.
// Returns "" when the input carries no digits at all. Total and idempotent.
func NormalizeTaxID(raw string) string {
	digits := nonDigitRegex.ReplaceAllString(raw, "")
	if digits == "" {
		return ""
	}
	if len(digits) < taxIDLength {
		digits = strings.Repeat("0", taxIDLength-len(digits)) + digits
	}
	return digits
}

// NormalizePrice parses a monetary string that may mix thousands separators,
// currency symbols and stray OCR letters ("€ 1.234,56", "2,50 EUR"). It never
// fails: anything unparsable resolves to 0.0 so one bad field cannot block a
// whole receipt.
func NormalizePrice(raw string) float64 {
	cleaned := priceCharRegex.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0
	}

	if strings.Contains(cleaned, ",") {
		// Comma is the decimal separator; any dots are thousands separators.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		if idx := strings.LastIndex(cleaned, ","); idx >= 0 {
			cleaned = cleaned[:idx] + "." + cleaned[idx+1:]
		}
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

// NormalizeQuantity converts a net-content amount into one of the canonical
// units (KG, L, PZ). Gram and milliliter denominations are scaled; unknown
// labels pass the amount through with an unset unit so the product stays
// listed but is ranked by raw unit price.
func NormalizeQuantity(amount float64, unitLabel string) (float64, domain.Unit) {
	switch strings.ToUpper(strings.TrimSpace(unitLabel)) {
	case "KG":
		return amount, domain.UnitKilogram
	case "G", "GR":
		return amount / 1000, domain.UnitKilogram
	case "HG": // etto, common on Italian deli receipts
		return amount / 10, domain.UnitKilogram
	case "L", "LT":
		return amount, domain.UnitLiter
	case "ML":
		return amount / 1000, domain.UnitLiter
	case "CL":
		return amount / 100, domain.UnitLiter
	case "PZ", "PZ.", "PEZZO", "PEZZI", "CONF":
		return amount, domain.UnitPiece
	default:
		return amount, domain.UnitUnknown
	}
}

// NormalizeName canonicalizes a product label for catalog matching: trimmed,
// uppercased, inner whitespace collapsed.
func NormalizeName(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), " "))
}
