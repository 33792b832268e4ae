// Package normalizer turns the display text of the today's-price table into
// typed values. Nothing here returns an error: text that does not parse is NULL.
package normalizer

import (
	"strings"

	"github.com/shopspring/decimal"

	"nepse-stock-scryper/internal/ingestion/dto"
)

// maxExponent bounds the decimal exponent; the table never shows more than a
// few fractional digits and nothing near 10^20.
const maxExponent = 20

func clean(text string) string {
	return strings.ReplaceAll(strings.TrimSpace(text), ",", "")
}

// ParseDecimalOrNull parses "1,234.50" style text. Empty or non-numeric text is NULL,
// and so is scientific notation or anything with an exponent outside ±maxExponent.
func ParseDecimalOrNull(text string) decimal.NullDecimal {
	s := clean(text)
	if s == "" || strings.ContainsAny(s, "eE") {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	if e := d.Exponent(); e > maxExponent || e < -maxExponent {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// ParseIntegerOrNull parses a whole number. Text with a fractional part is
// truncated toward zero, so "1,200.00" is 1200.
func ParseIntegerOrNull(text string) *int64 {
	d := ParseDecimalOrNull(text)
	if !d.Valid {
		return nil
	}
	t := d.Decimal.Truncate(0)
	if !t.BigInt().IsInt64() {
		return nil
	}
	v := t.IntPart()
	return &v
}

// ParsePercentOrNull parses "12.3%" or "-0.5 %" as a plain number.
func ParsePercentOrNull(text string) decimal.NullDecimal {
	s := strings.TrimSpace(text)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	return ParseDecimalOrNull(s)
}

// Normalize converts every numeric field of a scraped row.
func Normalize(row dto.ScrapedRow) dto.NormalizedRow {
	return dto.NormalizedRow{
		CompanySymbol: NormalizeSymbol(row.CompanySymbol),
		LTP:           ParseDecimalOrNull(row.LTP),
		Change:        ParseDecimalOrNull(row.DifferenceRs),
		ChangePercent: ParsePercentOrNull(row.ChangePercent),
		OpenPrice:     ParseDecimalOrNull(row.OpenPrice),
		HighPrice:     ParseDecimalOrNull(row.HighPrice),
		LowPrice:      ParseDecimalOrNull(row.LowPrice),
		QtyTraded:     ParseIntegerOrNull(row.QtyTraded),
		Turnover:      ParseDecimalOrNull(row.Turnover),
		PrevClosing:   ParseDecimalOrNull(row.PrevClosing),
	}
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
