package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"nepse-stock-scryper/internal/ingestion/config"
	"nepse-stock-scryper/internal/ingestion/scraper"
	"nepse-stock-scryper/internal/ingestion/source"
	"nepse-stock-scryper/pkg/logger"
)

var (
	configPath string
	sourceName string
	pageURL    string
	timeout    time.Duration
	exitCode   int
)

// diagnostic is written to stderr on failure; the ingestion service's trigger reads it back.
type diagnostic struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
}

func runScrape(cmd *cobra.Command, args []string) {
	exitCode = scrape()
}

// scrape returns the process exit code.
func scrape() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		writeDiagnostic(os.Stderr, diagnostic{Error: "Invalid configuration", Details: err.Error()})
		return 1
	}
	if pageURL != "" {
		cfg.Scraper.URL = pageURL
	}
	if timeout > 0 {
		cfg.Scraper.Timeout = timeout
	}

	appLogger, err := logger.New(cfg.Logger.Level, "console", logger.WithOutput(os.Stderr))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	var src source.PageSource
	switch sourceName {
	case "http":
		src = source.NewHTTPSource(cfg.Scraper, appLogger)
	case "browser":
		src = source.NewBrowserSource(cfg.Scraper, appLogger)
	default:
		writeDiagnostic(os.Stderr, diagnostic{Error: "Invalid source", Details: fmt.Sprintf("unknown source %q, want http or browser", sourceName)})
		return 1
	}

	return run(ctx, src, os.Stdout, os.Stderr)
}

// run fetches and parses the page, printing the rows to stdout. It returns the process exit code.
func run(ctx context.Context, src source.PageSource, stdout, stderr io.Writer) int {
	html, err := src.FetchHTML(ctx)
	if err != nil {
		writeDiagnostic(stderr, diagnostic{
			Error:   "Scraping failed",
			Details: err.Error(),
			Message: fmt.Sprintf("could not fetch the page with the %s source", src.Name()),
		})
		return 1
	}

	rows, err := scraper.ParseHTML(html)
	if err != nil {
		d := diagnostic{Error: "Scraping failed", Details: err.Error()}
		if errors.Is(err, scraper.ErrNoRowsFound) {
			d.Message = "the today's-price table was not found on the page"
		}
		writeDiagnostic(stderr, d)
		return 1
	}

	if err := json.NewEncoder(stdout).Encode(rows); err != nil {
		writeDiagnostic(stderr, diagnostic{Error: "Failed to write output", Details: err.Error()})
		return 1
	}
	return 0
}

func writeDiagnostic(w io.Writer, d diagnostic) {
	_ = json.NewEncoder(w).Encode(d)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "scraper",
		Short: "Scrapes NEPSE today's prices and prints them as a JSON array",
		Run:   runScrape,
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-ingestion.yaml", "Path to the configuration file")
	rootCmd.Flags().StringVar(&sourceName, "source", "browser", "Page source: browser or http")
	rootCmd.Flags().StringVar(&pageURL, "url", "", "Override the today's-price page URL")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 0, "Override the page load timeout")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing scraper CLI: %s\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}
