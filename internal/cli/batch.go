package cli

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factlens/internal/app"
	"github.com/ppiankov/factlens/internal/logger"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/pipeline"
	"github.com/ppiankov/factlens/internal/render"
	"github.com/ppiankov/factlens/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Fact-check many inputs from a file in parallel",
	Long: `Batch checks every input in a file concurrently:
- One input (text or URL) per line; blank lines and # comments are skipped
- Duplicate lines are checked once
- Requests to the backend are rate limited per host
- One JSON document per input is written to the output directory

Example:
  factlens batch inputs.txt
  factlens batch inputs.txt --concurrency 4 --output-dir ./results`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent submissions (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./factlens-results", "output directory for results")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
}

// controllerChecker gives every input its own controller, since a
// controller accepts one submission at a time
type controllerChecker struct {
	cfg     *model.Config
	backend app.Backend
	log     logger.Logger
}

func (c *controllerChecker) Check(ctx context.Context, input string) (*pipeline.Result, error) {
	return newController(c.cfg, c.backend, c.log, nil).Check(ctx, input)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, log, backend, err := setup("")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	workers := concurrency
	if workers <= 0 {
		workers = cfg.Concurrency.Workers
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// Service submissions share one host limit; the direct backend
	// limits its own page fetches
	var limiter *worker.Limiter
	limitURL := ""
	if cfg.Backend == "service" {
		limiter = worker.NewLimiter(cfg.Fetch.RequestsPerSecond, cfg.Fetch.Burst)
		limitURL = cfg.Service.BaseURL
	}

	processor := worker.NewBatchProcessor(&controllerChecker{cfg: cfg, backend: backend, log: log}, workers, limiter, limitURL)

	log.Info("Starting batch",
		logger.String("file", file),
		logger.Int("workers", workers),
		logger.String("output_dir", outputDir),
	)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	failures := 0
	for _, result := range results {
		path := filepath.Join(outputDir, resultFilename(result.Input))

		nodes := render.ErrorNodes(result.Error)
		if result.Error == nil {
			nodes = result.Result.Nodes
		} else {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Input, result.Error)
		}

		if err := writeJSON(path, nodes); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Input, err)
			continue
		}
		if result.Error == nil {
			fmt.Fprintf(os.Stderr, "✓ %s (%d claims)\n", result.Input, len(result.Result.Claims))
		}
	}

	fmt.Fprintf(os.Stderr, "\n  Total:     %d inputs\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", len(results)-failures)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failures)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)

	return nil
}

func writeJSON(path string, nodes []render.Node) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return render.NewJSONSink(f, true).Render(nodes)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// resultFilename derives a stable, filesystem-safe name for an input
func resultFilename(input string) string {
	slug := strings.Trim(unsafeChars.ReplaceAllString(input, "-"), "-.")
	if len(slug) > 60 {
		slug = slug[:60]
	}

	sum := sha256.Sum256([]byte(input))
	suffix := hex.EncodeToString(sum[:4])
	if slug == "" {
		return suffix + ".json"
	}
	return slug + "-" + suffix + ".json"
}
