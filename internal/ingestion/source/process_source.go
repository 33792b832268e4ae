package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"nepse-stock-scryper/internal/ingestion/dto"
	"nepse-stock-scryper/pkg/logger"
)

// ErrCommandUnavailable means the scraper command could not be started at all.
var ErrCommandUnavailable = errors.New("scraper command could not be started")

// ExitError is returned when the scraper process ran and exited non-zero.
type ExitError struct {
	ExitCode   int
	Stderr     string
	Diagnostic *dto.ProcessDiagnostic
	Err        error
}

func (e *ExitError) Error() string {
	if e.Diagnostic != nil {
		return fmt.Sprintf("scraper exited with code %d: %s", e.ExitCode, e.Diagnostic.Error)
	}
	return fmt.Sprintf("scraper exited with code %d", e.ExitCode)
}

func (e *ExitError) Unwrap() error { return e.Err }

// DecodeError is returned when the process succeeded but stdout was not a valid row array.
type DecodeError struct {
	Stderr string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid scraper output: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ProcessConfig describes the scraper command.
type ProcessConfig struct {
	Command string
	Args    []string
	Env     []string
	Timeout time.Duration
}

// ProcessOutput is what a successful scraper run produced.
type ProcessOutput struct {
	Rows   []dto.ScrapedRow
	Stderr string
}

// ProcessSource runs an external scraper that prints a JSON array of rows on stdout.
type ProcessSource struct {
	cfg      ProcessConfig
	validate *validator.Validate
	logger   *logger.Logger
}

// NewProcessSource creates a new ProcessSource.
func NewProcessSource(cfg ProcessConfig, validate *validator.Validate, logger *logger.Logger) *ProcessSource {
	if validate == nil {
		validate = validator.New()
	}
	return &ProcessSource{cfg: cfg, validate: validate, logger: logger}
}

// Run executes the scraper and decodes its output.
func (p *ProcessSource) Run(ctx context.Context) (*ProcessOutput, error) {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.cfg.Command, p.cfg.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if len(p.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), p.cfg.Env...)
	}

	start := time.Now()
	err := cmd.Run()
	stderrText := strings.TrimSpace(stderr.String())
	if stderrText != "" {
		p.logger.Warn("Scraper process wrote to stderr", logger.StringField("stderr", stderrText))
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			if ctx.Err() != nil {
				err = fmt.Errorf("%w: %v", ctx.Err(), err)
			}
			p.logger.Error("Scraper process failed", logger.ErrorField(err), logger.IntField("exit_code", exitErr.ExitCode()))
			return nil, &ExitError{
				ExitCode:   exitErr.ExitCode(),
				Stderr:     stderrText,
				Diagnostic: p.ParseDiagnostic(stderrText),
				Err:        err,
			}
		case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
			p.logger.Error("Scraper command unavailable", logger.ErrorField(err), logger.StringField("command", p.cfg.Command))
		default:
			p.logger.Error("Scraper command failed to start", logger.ErrorField(err), logger.StringField("command", p.cfg.Command))
		}
		return nil, fmt.Errorf("%w: %v", ErrCommandUnavailable, err)
	}

	rows, err := p.decodeRows(stdout.Bytes())
	if err != nil {
		p.logger.Error("Scraper output rejected", logger.ErrorField(err))
		return nil, &DecodeError{Stderr: stderrText, Err: err}
	}

	p.logger.Info("Scraper process finished",
		logger.IntField("rows", len(rows)),
		logger.Field("duration", time.Since(start)),
	)
	return &ProcessOutput{Rows: rows, Stderr: stderrText}, nil
}

func (p *ProcessSource) decodeRows(stdout []byte) ([]dto.ScrapedRow, error) {
	trimmed := bytes.TrimSpace(stdout)
	if len(trimmed) == 0 {
		return nil, errors.New("empty output")
	}
	if trimmed[0] != '[' {
		return nil, errors.New("output is not a JSON array")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	var rows []dto.ScrapedRow
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the JSON array")
	}

	for i := range rows {
		if err := p.validate.Struct(rows[i]); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return rows, nil
}

// ParseDiagnostic reads the {error, details, message} object the scraper
// writes on failure. Log lines around it are skipped.
func (p *ProcessSource) ParseDiagnostic(stderr string) *dto.ProcessDiagnostic {
	if stderr == "" {
		return nil
	}
	if d := p.decodeDiagnostic(stderr); d != nil {
		return d
	}

	var last *dto.ProcessDiagnostic
	scanner := bufio.NewScanner(strings.NewReader(stderr))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if d := p.decodeDiagnostic(scanner.Text()); d != nil {
			last = d
		}
	}
	return last
}

func (p *ProcessSource) decodeDiagnostic(text string) *dto.ProcessDiagnostic {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") {
		return nil
	}
	var d dto.ProcessDiagnostic
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return nil
	}
	if err := p.validate.Struct(d); err != nil {
		return nil
	}
	return &d
}

