// Package app holds the submission controller shared by the CLI and the web UI.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/factlens/internal/classify"
	"github.com/ppiankov/factlens/internal/client"
	"github.com/ppiankov/factlens/internal/logger"
	"github.com/ppiankov/factlens/internal/metrics"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/pipeline"
	"github.com/ppiankov/factlens/internal/render"
)

// Backend performs the network call for one request
type Backend interface {
	Check(ctx context.Context, req model.Request) (*model.ResponseEnvelope, error)
}

// Submission is one user-initiated check: free-form input or an image
type Submission struct {
	Input string
	// ImagePath is read from disk; ImageData is already loaded bytes
	ImagePath string
	ImageData []byte
}

// Controller runs submissions through the backend and the pipeline.
// It allows one outstanding submission at a time.
type Controller struct {
	backend       Backend
	classifier    *classify.Classifier
	pipeline      *pipeline.Pipeline
	log           logger.Logger
	metrics       *metrics.Metrics
	maxImageBytes int64
	busy          atomic.Bool
}

// Options configures a Controller
type Options struct {
	Backend       Backend
	Classifier    *classify.Classifier
	Logger        logger.Logger
	Metrics       *metrics.Metrics
	MaxImageBytes int64
}

// NewController creates a controller
func NewController(opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = classify.New(classify.RuleAnchored)
	}
	maxImage := opts.MaxImageBytes
	if maxImage <= 0 {
		maxImage = model.MaxImageBytes
	}

	return &Controller{
		backend:       opts.Backend,
		classifier:    classifier,
		pipeline:      pipeline.NewPipeline(log, opts.Metrics),
		log:           log,
		metrics:       opts.Metrics,
		maxImageBytes: maxImage,
	}
}

// Busy reports whether a submission is in flight
func (c *Controller) Busy() bool {
	return c.busy.Load()
}

// BuildRequest validates a submission and builds the outbound payload.
// An image takes precedence over text input.
func (c *Controller) BuildRequest(sub Submission) (model.Request, error) {
	switch {
	case len(sub.ImageData) > 0:
		dataURL, err := EncodeImage(sub.ImageData, c.maxImageBytes)
		if err != nil {
			return model.Request{}, err
		}
		return model.Request{ImageDataURL: dataURL}, nil
	case sub.ImagePath != "":
		dataURL, err := LoadImage(sub.ImagePath, c.maxImageBytes)
		if err != nil {
			return model.Request{}, err
		}
		return model.Request{ImageDataURL: dataURL}, nil
	}

	input := strings.TrimSpace(sub.Input)
	if input == "" {
		return model.Request{}, invalid("", ErrEmptyInput)
	}
	return c.classifier.Classify(input).Request(), nil
}

// Submit validates the submission, calls the backend and renders the result
// to sink. Validation errors are returned without touching the sink; backend
// failures render a single error node and are returned as well.
func (c *Controller) Submit(ctx context.Context, sub Submission, sink render.Sink) (*pipeline.Result, error) {
	if !c.busy.CompareAndSwap(false, true) {
		c.metrics.Failure("busy")
		return nil, ErrSubmissionInFlight
	}
	defer c.busy.Store(false)

	log := c.log.With(logger.RequestID(uuid.NewString()))

	req, err := c.BuildRequest(sub)
	if err != nil {
		c.metrics.Failure("validation")
		log.Debug("submission rejected", logger.Error(err))
		return nil, err
	}

	kind := req.Kind()
	c.metrics.Submission(string(kind))
	log.Info("submitting", logger.String("kind", string(kind)))

	start := time.Now()
	env, err := c.backend.Check(ctx, req)
	elapsed := time.Since(start)
	c.metrics.ObserveService(elapsed)

	if err != nil {
		c.metrics.Failure(failureClass(err))
		log.Error("fact-check failed", logger.Error(err), logger.Duration("elapsed", elapsed))

		failure := fmt.Errorf("failed to fact-check: %w", err)
		if sink != nil {
			if renderErr := sink.Render(render.ErrorNodes(failure)); renderErr != nil {
				log.Warn("failed to render error", logger.Error(renderErr))
			}
		}
		return nil, failure
	}

	log.Info("fact-check complete",
		logger.Int("claims", len(env.Claims)),
		logger.Duration("elapsed", elapsed),
	)

	if sink == nil {
		return c.pipeline.Process(*env), nil
	}

	result, err := c.pipeline.Render(*env, sink)
	if err != nil {
		return result, fmt.Errorf("render: %w", err)
	}
	return result, nil
}

// Check runs free-form input through Submit without a sink
func (c *Controller) Check(ctx context.Context, input string) (*pipeline.Result, error) {
	return c.Submit(ctx, Submission{Input: input}, nil)
}

// failureClass labels a backend error for metrics
func failureClass(err error) string {
	var serviceErr *client.ServiceError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.As(err, &serviceErr):
		return "service"
	default:
		return "transport"
	}
}
