package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"nepse-stock-scryper/internal/trigger"
	"nepse-stock-scryper/pkg/logger"
)

var (
	targetURL string
	timeout   time.Duration
	raw       bool
	exitCode  int
)

func runTrigger(cmd *cobra.Command, args []string) {
	exitCode = callTrigger()
}

func callTrigger() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger, err := logger.New("info", "console", logger.WithOutput(os.Stderr))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Triggering today's price scrape", logger.StringField("url", targetURL))

	resp, err := trigger.NewClient(targetURL, timeout).Trigger(ctx)
	if err != nil {
		appLogger.Error("Trigger request failed", logger.ErrorField(err))
		return 1
	}

	appLogger.Info("Trigger responded", logger.IntField("status", resp.StatusCode))
	if raw {
		fmt.Println(string(resp.Body))
	} else {
		fmt.Println(resp.Pretty())
	}
	if !resp.OK() {
		appLogger.Error("Scrape did not succeed", logger.IntField("status", resp.StatusCode))
	}
	return resp.ExitCode()
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "trigger",
		Short: "Calls the ingestion service's process trigger and prints the result",
		Run:   runTrigger,
	}

	rootCmd.Flags().StringVarP(&targetURL, "url", "u", trigger.DefaultURL, "Trigger endpoint URL")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "Request timeout")
	rootCmd.Flags().BoolVar(&raw, "raw", false, "Print the response body without formatting")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing trigger CLI: %s\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}
