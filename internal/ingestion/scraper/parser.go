package scraper

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"nepse-stock-scryper/internal/ingestion/dto"
)

var (
	// ErrNoRowsFound means no table rows matched any known selector.
	ErrNoRowsFound = errors.New("no table rows found on the page")
	// ErrNoValidRowsExtracted means rows matched but none had a symbol and enough cells.
	ErrNoValidRowsExtracted = errors.New("table rows found but no valid rows extracted")
)

// minCells is the number of cells a row needs; the trailing difference column is optional.
const minCells = 10

// rowSelectors are tried in order; the first one matching at least one row wins.
var rowSelectors = []string{
	"app-today-price table tbody tr",
	".table-responsive table tbody tr",
	"table tbody tr",
}

// Parse reads a rendered today's-price page and extracts its rows.
func Parse(r io.Reader) ([]dto.ScrapedRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return ParseDocument(doc)
}

// ParseHTML is Parse over a string.
func ParseHTML(html string) ([]dto.ScrapedRow, error) {
	return Parse(strings.NewReader(html))
}

// ParseDocument extracts rows from an already parsed document.
func ParseDocument(doc *goquery.Document) ([]dto.ScrapedRow, error) {
	var rows *goquery.Selection
	for _, sel := range rowSelectors {
		rows = doc.Find(sel)
		if rows.Length() > 0 {
			break
		}
	}
	if rows == nil || rows.Length() == 0 {
		return nil, ErrNoRowsFound
	}

	result := make([]dto.ScrapedRow, 0, rows.Length())
	rows.Each(func(_ int, tr *goquery.Selection) {
		row, ok := extractRow(tr)
		if ok {
			result = append(result, row)
		}
	})

	if len(result) == 0 {
		return nil, fmt.Errorf("%w (%d rows inspected)", ErrNoValidRowsExtracted, rows.Length())
	}
	return result, nil
}

func extractRow(tr *goquery.Selection) (dto.ScrapedRow, bool) {
	tds := tr.Find("td")
	if tds.Length() < minCells {
		return dto.ScrapedRow{}, false
	}

	cell := func(i int) string {
		if i >= tds.Length() {
			return ""
		}
		return strings.TrimSpace(tds.Eq(i).Text())
	}

	symbolCell := tds.Eq(1)
	symbol := strings.TrimSpace(symbolCell.Find("a").First().Text())
	if symbol == "" {
		symbol = strings.TrimSpace(symbolCell.Text())
	}
	if symbol == "" {
		return dto.ScrapedRow{}, false
	}

	return dto.ScrapedRow{
		SN:            cell(0),
		CompanySymbol: symbol,
		LTP:           cell(2),
		ChangePercent: cell(3),
		OpenPrice:     cell(4),
		HighPrice:     cell(5),
		LowPrice:      cell(6),
		QtyTraded:     cell(7),
		Turnover:      cell(8),
		PrevClosing:   cell(9),
		DifferenceRs:  cell(10),
	}, true
}
