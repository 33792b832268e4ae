// Package source fetches the NEPSE today's-price table, either as rendered
// HTML or as rows produced by an external scraper process.
package source

import "context"

// PageSource fetches the today's-price page as HTML.
type PageSource interface {
	Name() string
	FetchHTML(ctx context.Context) (string, error)
}
