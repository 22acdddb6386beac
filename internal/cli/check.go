package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factlens/internal/app"
	"github.com/ppiankov/factlens/internal/render"
)

// ErrReported marks a failure that was already rendered to the user
var ErrReported = errors.New("fact-check failed")

var (
	checkImage   string
	checkJSON    string
	checkHTML    string
	checkQuiet   bool
	checkTimeout time.Duration
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [text or URL...]",
	Short: "Fact-check text, a URL or an image",
	Long: `Check submits one input and prints a verdict for every claim found.

Arguments are joined with spaces. A single http(s) URL is fetched and
analyzed; anything else is checked as text. --image takes precedence over
text input.

Example:
  factlens check "The Great Wall of China is visible from space"
  factlens check https://example.com/story --json result.json
  factlens check --image screenshot.png --html result.html`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkImage, "image", "", "image file to fact-check")
	checkCmd.Flags().StringVar(&checkJSON, "json", "", "write the rendered result as JSON to this path")
	checkCmd.Flags().StringVar(&checkHTML, "html", "", "write the rendered result as an HTML fragment to this path")
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "do not print the result to the terminal")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 3*time.Minute, "overall timeout for the check")
}

func runCheck(cmd *cobra.Command, args []string) (err error) {
	cfg, log, backend, err := setup("")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	var sinks render.MultiSink
	if !checkQuiet {
		sinks = append(sinks, render.NewTextSink(cmd.OutOrStdout()))
	}

	var files []io.Closer
	defer func() {
		for _, f := range files {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close output: %w", closeErr)
			}
		}
	}()

	if checkJSON != "" {
		f, err := os.Create(checkJSON)
		if err != nil {
			return fmt.Errorf("create JSON output: %w", err)
		}
		files = append(files, f)
		sinks = append(sinks, render.NewJSONSink(f, true))
	}
	if checkHTML != "" {
		f, err := os.Create(checkHTML)
		if err != nil {
			return fmt.Errorf("create HTML output: %w", err)
		}
		files = append(files, f)
		sinks = append(sinks, render.NewHTMLSink(f))
	}

	controller := newController(cfg, backend, log, nil)
	sub := app.Submission{
		Input:     strings.Join(args, " "),
		ImagePath: checkImage,
	}

	result, err := controller.Submit(ctx, sub, sinks)
	if err != nil {
		var validation *app.ValidationError
		if errors.As(err, &validation) || errors.Is(err, app.ErrSubmissionInFlight) {
			return err
		}
		return ErrReported
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ %d claims checked\n", len(result.Claims))
		if checkJSON != "" {
			fmt.Fprintf(os.Stderr, "✓ JSON written to %s\n", checkJSON)
		}
		if checkHTML != "" {
			fmt.Fprintf(os.Stderr, "✓ HTML written to %s\n", checkHTML)
		}
	}

	return nil
}
