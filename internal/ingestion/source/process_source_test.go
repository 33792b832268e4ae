package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nepse-stock-scryper/pkg/logger"
)

// TestHelperProcess is not a real test. It is re-executed as the scraper
// command by the tests below.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	mode := ""
	for i, arg := range os.Args {
		if arg == "--" && i+1 < len(os.Args) {
			mode = os.Args[i+1]
			break
		}
	}

	switch mode {
	case "rows":
		fmt.Fprint(os.Stdout, `[{"s_n":"1","companySymbol":"NABIL","ltp":"1,000.00","changePercent":"1.5","openPrice":"990","highPrice":"1,010","lowPrice":"985","qtyTraded":"12,345","turnover":"12,345,000.50","prevClosing":"985.20","differenceRs":"14.80"}]`)
		fmt.Fprintln(os.Stderr, "rendered page in 3.2s")
	case "empty":
		fmt.Fprint(os.Stdout, `[]`)
	case "fail":
		fmt.Fprintln(os.Stderr, "starting browser")
		fmt.Fprintln(os.Stderr, `{"error":"Failed to scrape","details":"timeout waiting for table","message":"context deadline exceeded"}`)
		os.Exit(1)
	case "fail-plain":
		fmt.Fprintln(os.Stderr, "segmentation fault")
		os.Exit(2)
	case "object":
		fmt.Fprint(os.Stdout, `{"companySymbol":"NABIL"}`)
	case "unknown-field":
		fmt.Fprint(os.Stdout, `[{"companySymbol":"NABIL","volume":"12"}]`)
	case "blank-symbol":
		fmt.Fprint(os.Stdout, `[{"companySymbol":""}]`)
	case "sleep":
		time.Sleep(10 * time.Second)
	}
	os.Exit(0)
}

func helperSource(mode string, timeout time.Duration) *ProcessSource {
	return NewProcessSource(ProcessConfig{
		Command: os.Args[0],
		Args:    []string{"-test.run=TestHelperProcess", "--", mode},
		Env:     []string{"GO_WANT_HELPER_PROCESS=1"},
		Timeout: timeout,
	}, nil, logger.NewNop())
}

func TestProcessSource_Rows(t *testing.T) {
	out, err := helperSource("rows", 30*time.Second).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "NABIL", out.Rows[0].CompanySymbol)
	assert.Equal(t, "14.80", out.Rows[0].DifferenceRs)
	assert.Equal(t, "rendered page in 3.2s", out.Stderr)
}

func TestProcessSource_Empty(t *testing.T) {
	out, err := helperSource("empty", 30*time.Second).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out.Rows)
}

func TestProcessSource_ExitWithDiagnostic(t *testing.T) {
	_, err := helperSource("fail", 30*time.Second).Run(context.Background())

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.ExitCode)
	require.NotNil(t, exitErr.Diagnostic)
	assert.Equal(t, "Failed to scrape", exitErr.Diagnostic.Error)
	assert.Equal(t, "timeout waiting for table", exitErr.Diagnostic.Details)
	assert.Contains(t, exitErr.Stderr, "starting browser")
}

func TestProcessSource_ExitWithoutDiagnostic(t *testing.T) {
	_, err := helperSource("fail-plain", 30*time.Second).Run(context.Background())

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.ExitCode)
	assert.Nil(t, exitErr.Diagnostic)
	assert.Equal(t, "segmentation fault", exitErr.Stderr)
}

func TestProcessSource_MalformedOutput(t *testing.T) {
	for _, mode := range []string{"object", "unknown-field", "blank-symbol"} {
		t.Run(mode, func(t *testing.T) {
			_, err := helperSource(mode, 30*time.Second).Run(context.Background())
			var decodeErr *DecodeError
			assert.True(t, errors.As(err, &decodeErr), "got %v", err)
		})
	}
}

func TestProcessSource_CommandNotFound(t *testing.T) {
	src := NewProcessSource(ProcessConfig{Command: "nepse-scraper-does-not-exist"}, nil, logger.NewNop())
	_, err := src.Run(context.Background())
	assert.True(t, errors.Is(err, ErrCommandUnavailable))
}

func TestProcessSource_Timeout(t *testing.T) {
	_, err := helperSource("sleep", 200*time.Millisecond).Run(context.Background())

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestParseDiagnostic(t *testing.T) {
	p := NewProcessSource(ProcessConfig{}, nil, logger.NewNop())

	assert.Nil(t, p.ParseDiagnostic(""))
	assert.Nil(t, p.ParseDiagnostic("plain text"))
	assert.Nil(t, p.ParseDiagnostic(`{"message":"no error key"}`))

	d := p.ParseDiagnostic(`{"error":"boom"}`)
	require.NotNil(t, d)
	assert.Equal(t, "boom", d.Error)
}
