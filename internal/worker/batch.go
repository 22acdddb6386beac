package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/factlens/internal/pipeline"
)

// Checker runs one input through a submission
type Checker interface {
	Check(ctx context.Context, input string) (*pipeline.Result, error)
}

// CheckResult is the outcome of one batch input
type CheckResult struct {
	Input  string
	Result *pipeline.Result
	Error  error
}

// GetError returns the submission error
func (r *CheckResult) GetError() error {
	return r.Error
}

// BatchProcessor checks many inputs concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int
	limiter     *Limiter
	limitURL    string
}

// NewBatchProcessor creates a batch processor. When limiter is set, every
// submission waits on the limiter for limitURL's host (the service endpoint).
func NewBatchProcessor(checker Checker, concurrency int, limiter *Limiter, limitURL string) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
		limiter:     limiter,
		limitURL:    limitURL,
	}
}

// ProcessInputs checks every input and returns results in input order
func (b *BatchProcessor) ProcessInputs(ctx context.Context, inputs []string) []*CheckResult {
	if len(inputs) == 0 {
		return []*CheckResult{}
	}

	results := Run(ctx, b.concurrency, inputs, func(ctx context.Context, input string) *CheckResult {
		if b.limiter != nil && b.limitURL != "" {
			if err := b.limiter.Wait(ctx, b.limitURL); err != nil {
				return &CheckResult{Input: input, Error: fmt.Errorf("rate limit: %w", err)}
			}
		}

		res, err := b.checker.Check(ctx, input)
		return &CheckResult{Input: input, Result: res, Error: err}
	})

	for i, r := range results {
		if r == nil {
			results[i] = &CheckResult{Input: inputs[i], Error: ctx.Err()}
		}
	}

	return results
}

// ProcessFile reads inputs from a file and checks them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CheckResult, error) {
	inputs, err := ReadInputsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read inputs: %w", err)
	}

	return b.ProcessInputs(ctx, inputs), nil
}

// ReadInputsFromFile reads one input per line.
// Blank lines and lines starting with # are skipped; duplicates are dropped.
func ReadInputsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var inputs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			inputs = append(inputs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return inputs, nil
}
