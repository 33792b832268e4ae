package dto

// ScrapedRow is one row of the NEPSE today's-price table, exactly as scraped.
// The JSON keys are the wire contract shared with the external scraper process.
type ScrapedRow struct {
	SN            string `json:"s_n"`
	CompanySymbol string `json:"companySymbol" validate:"required,max=20"`
	LTP           string `json:"ltp"`
	ChangePercent string `json:"changePercent"`
	OpenPrice     string `json:"openPrice"`
	HighPrice     string `json:"highPrice"`
	LowPrice      string `json:"lowPrice"`
	QtyTraded     string `json:"qtyTraded"`
	Turnover      string `json:"turnover"`
	PrevClosing   string `json:"prevClosing"`
	DifferenceRs  string `json:"differenceRs"`
}

// ProcessDiagnostic is what the scraper process writes to stderr when it fails.
type ProcessDiagnostic struct {
	Error   string      `json:"error" validate:"required"`
	Details interface{} `json:"details,omitempty"`
	Message string      `json:"message,omitempty"`
}
