// Package direct checks submissions against a chat model without the remote
// fact-checking service, assembling the same response envelope.
package direct

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/factlens/internal/extract"
	"github.com/ppiankov/factlens/internal/logger"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/util"
)

// UploadedImageRef is the image reference for claims from an uploaded image
const UploadedImageRef = "uploaded image"

// minFallbackWords is the shortest text checked as one claim when claim
// extraction finds nothing
const minFallbackWords = 6

const (
	sourceText  = "text"
	sourceImage = "image"
)

// ErrNoText is returned for a text submission that is blank after cleanup
var ErrNoText = errors.New("no text provided")

// ClaimChecker extracts and verifies claims
type ClaimChecker interface {
	ExtractClaims(ctx context.Context, text string, maxClaims int) ([]string, error)
	ExtractImageClaims(ctx context.Context, imageURL string, maxClaims int) ([]string, error)
	CheckClaim(ctx context.Context, claim string) (*model.RawVerdict, error)
}

// Extractor pulls text and images from a URL
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (*extract.Content, error)
}

// Options configures a Backend
type Options struct {
	Checker   ClaimChecker
	Extractor Extractor
	Logger    logger.Logger
	Limits    model.LLMConfig
	Workers   int
	// FailedVerdict builds the record for a claim whose check failed
	FailedVerdict func(error) *model.RawVerdict
}

// Backend implements the submission backend on top of a chat model
type Backend struct {
	checker   ClaimChecker
	extractor Extractor
	log       logger.Logger
	limits    model.LLMConfig
	workers   int
	failed    func(error) *model.RawVerdict
	now       func() time.Time
}

// New creates a direct backend
func New(opts Options) *Backend {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	failed := opts.FailedVerdict
	if failed == nil {
		failed = defaultFailedVerdict
	}

	return &Backend{
		checker:   opts.Checker,
		extractor: opts.Extractor,
		log:       log,
		limits:    opts.Limits,
		workers:   workers,
		failed:    failed,
		now:       time.Now,
	}
}

// Check runs one request and returns the assembled envelope
func (b *Backend) Check(ctx context.Context, req model.Request) (*model.ResponseEnvelope, error) {
	switch req.Kind() {
	case model.RequestImage:
		return b.checkImage(ctx, req.ImageDataURL)
	case model.RequestURL:
		return b.checkURL(ctx, req.URL)
	default:
		return b.checkText(ctx, req.Text)
	}
}

func (b *Backend) checkText(ctx context.Context, text string) (*model.ResponseEnvelope, error) {
	text = util.CleanText(text)
	if text == "" {
		return nil, ErrNoText
	}

	pending, err := b.textClaims(ctx, text)
	if err != nil {
		return nil, err
	}

	return b.envelope(text, b.verifyAll(ctx, pending)), nil
}

func (b *Backend) checkImage(ctx context.Context, dataURL string) (*model.ResponseEnvelope, error) {
	claims, err := b.checker.ExtractImageClaims(ctx, dataURL, b.limits.MaxImageClaims)
	if err != nil {
		return nil, err
	}

	pending := make([]pendingClaim, 0, len(claims))
	for _, claim := range claims {
		pending = append(pending, pendingClaim{text: claim, sourceType: sourceImage, imageURL: UploadedImageRef})
	}

	env := b.envelope("", b.verifyAll(ctx, pending))
	env.ImagesProcessed = 1
	return env, nil
}

func (b *Backend) checkURL(ctx context.Context, rawURL string) (*model.ResponseEnvelope, error) {
	content, err := b.extractor.Extract(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	b.log.Debug("Extracted page",
		logger.String("url", content.URL),
		logger.String("platform", string(content.Platform)),
		logger.Int("text_chars", len(content.Text)),
		logger.Int("images", len(content.Images)),
	)

	var pending []pendingClaim
	if content.Text != "" {
		textClaims, err := b.textClaims(ctx, content.Text)
		if err != nil {
			return nil, err
		}
		pending = append(pending, textClaims...)
	}

	images := content.Images
	if len(images) > b.limits.MaxImages {
		images = images[:b.limits.MaxImages]
	}

	processed := 0
	for _, img := range images {
		claims, err := b.checker.ExtractImageClaims(ctx, img, b.limits.MaxImageClaims)
		if err != nil {
			b.log.Warn("Image claim extraction failed",
				logger.String("image_url", img),
				logger.Error(err),
			)
			continue
		}
		processed++
		for _, claim := range claims {
			pending = append(pending, pendingClaim{text: claim, sourceType: sourceImage, imageURL: img})
		}
	}

	env := b.envelope(content.Text, b.verifyAll(ctx, pending))
	env.SourceURL = content.URL
	env.SourceTitle = content.Title
	env.Platform = string(content.Platform)
	env.ImagesProcessed = processed
	if content.Detection.Detected && len(content.Images) == 0 {
		env.ImageDetectionMessage = content.Detection.Message
	}
	return env, nil
}

// textClaims extracts claims, falling back to the whole text when it is
// long enough to hold one
func (b *Backend) textClaims(ctx context.Context, text string) ([]pendingClaim, error) {
	claims, err := b.checker.ExtractClaims(ctx, text, b.limits.MaxClaims)
	if err != nil {
		return nil, err
	}
	if len(claims) == 0 && len(strings.Fields(text)) >= minFallbackWords {
		claims = []string{text}
	}

	pending := make([]pendingClaim, 0, len(claims))
	for _, claim := range claims {
		if strings.TrimSpace(claim) == "" {
			continue
		}
		pending = append(pending, pendingClaim{text: claim, sourceType: sourceText})
	}
	return pending, nil
}

func (b *Backend) envelope(text string, records []model.RawClaimResult) *model.ResponseEnvelope {
	return &model.ResponseEnvelope{
		OriginalText: text,
		ClaimsFound:  len(records),
		Claims:       records,
		Timestamp:    float64(b.now().UnixMilli()) / 1000,
	}
}

func defaultFailedVerdict(err error) *model.RawVerdict {
	verdict := "ERROR"
	return &model.RawVerdict{
		Verdict:     &verdict,
		Explanation: fmt.Sprintf("Failed to verify claim: %v", err),
		Sources:     []any{},
	}
}
