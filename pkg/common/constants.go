package common

const (
	RedisStreamIngestionCompleted = "ingestion.completed"
	RedisKeyScrapeRunLog          = "scrape.run.log"

	NepseTodayPriceURL = "https://nepalstock.com.np/today-price"

	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// HeaderIngestionSource tells the ingestion endpoint who sent the rows.
	HeaderIngestionSource = "X-Ingestion-Source"

	// IngestPath is the ingestion entry point, relative to the API root.
	IngestPath = "/api/v1/scrape/today-price"
)
