package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/factlens/internal/classify"
	"github.com/ppiankov/factlens/internal/client"
	"github.com/ppiankov/factlens/internal/metrics"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/render"
)

// pngHeader is enough for content sniffing
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeBackend struct {
	mu       sync.Mutex
	requests []model.Request
	env      *model.ResponseEnvelope
	err      error
	block    chan struct{}
}

func (f *fakeBackend) Check(ctx context.Context, req model.Request) (*model.ResponseEnvelope, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.env, nil
}

type captureSink struct {
	calls int
	nodes []render.Node
}

func (c *captureSink) Render(nodes []render.Node) error {
	c.calls++
	c.nodes = nodes
	return nil
}

func strPtr(s string) *string { return &s }

func TestController_SubmitText(t *testing.T) {
	backend := &fakeBackend{env: &model.ResponseEnvelope{
		Claims: []model.RawClaimResult{{Claim: strPtr("c"), Result: &model.RawVerdict{Verdict: strPtr("TRUE")}}},
	}}
	m := metrics.MustNew()
	ctrl := NewController(Options{Backend: backend, Metrics: m})

	sink := &captureSink{}
	result, err := ctrl.Submit(context.Background(), Submission{Input: "  The sky is blue  "}, sink)
	require.NoError(t, err)

	require.Len(t, backend.requests, 1)
	assert.Equal(t, model.Request{Text: "The sky is blue"}, backend.requests[0])
	require.Len(t, result.Claims, 1)
	assert.Equal(t, model.VerdictTrue, result.Claims[0].VerdictCategory)
	assert.Equal(t, 1, sink.calls)
	assert.False(t, ctrl.Busy())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("text")))
}

func TestController_SubmitURL(t *testing.T) {
	backend := &fakeBackend{env: &model.ResponseEnvelope{}}
	ctrl := NewController(Options{Backend: backend})

	_, err := ctrl.Submit(context.Background(), Submission{Input: "https://example.com/post"}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.Request{URL: "https://example.com/post"}, backend.requests[0])
}

func TestController_EmbeddedRule(t *testing.T) {
	backend := &fakeBackend{env: &model.ResponseEnvelope{}}
	ctrl := NewController(Options{Backend: backend, Classifier: classify.New(classify.RuleEmbedded)})

	_, err := ctrl.Check(context.Background(), "is this real? https://example.com/post")
	require.NoError(t, err)
	assert.Equal(t, model.Request{URL: "https://example.com/post"}, backend.requests[0])
}

func TestController_EmptyInput(t *testing.T) {
	backend := &fakeBackend{}
	ctrl := NewController(Options{Backend: backend})

	sink := &captureSink{}
	_, err := ctrl.Submit(context.Background(), Submission{Input: " \n\t "}, sink)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, backend.requests)
	assert.Equal(t, 0, sink.calls)
}

func TestController_TransportFailureRendersOneErrorNode(t *testing.T) {
	backend := &fakeBackend{err: &client.TransportError{StatusCode: 500, Body: "boom"}}
	ctrl := NewController(Options{Backend: backend})

	sink := &captureSink{}
	result, err := ctrl.Submit(context.Background(), Submission{Input: "claim"}, sink)

	require.Error(t, err)
	assert.Nil(t, result)
	var tErr *client.TransportError
	assert.ErrorAs(t, err, &tErr)

	require.Len(t, sink.nodes, 1)
	assert.Equal(t, render.KindError, sink.nodes[0].Kind)
	assert.Equal(t, "failed to fact-check: service returned HTTP 500: boom", sink.nodes[0].Message)
}

func TestController_RejectsConcurrentSubmission(t *testing.T) {
	backend := &fakeBackend{env: &model.ResponseEnvelope{}, block: make(chan struct{})}
	ctrl := NewController(Options{Backend: backend})

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Check(context.Background(), "first")
		done <- err
	}()

	require.Eventually(t, ctrl.Busy, time.Second, 5*time.Millisecond)

	_, err := ctrl.Check(context.Background(), "second")
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(backend.block)
	require.NoError(t, <-done)
	assert.False(t, ctrl.Busy())

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Len(t, backend.requests, 1)
}

func TestController_ImageData(t *testing.T) {
	backend := &fakeBackend{env: &model.ResponseEnvelope{}}
	ctrl := NewController(Options{Backend: backend})

	_, err := ctrl.Submit(context.Background(), Submission{Input: "ignored", ImageData: pngHeader}, nil)
	require.NoError(t, err)

	req := backend.requests[0]
	assert.Equal(t, model.RequestImage, req.Kind())
	assert.True(t, strings.HasPrefix(req.ImageDataURL, "data:image/png;base64,"))
	assert.Empty(t, req.Text)
}

func TestController_ImageTooLarge(t *testing.T) {
	ctrl := NewController(Options{Backend: &fakeBackend{}, MaxImageBytes: 8})

	_, err := ctrl.Submit(context.Background(), Submission{ImageData: pngHeader}, nil)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()

	png := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(png, pngHeader, 0o600))
	dataURL, err := LoadImage(png, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))

	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("just words"), 0o600))
	_, err = LoadImage(text, 0)
	assert.ErrorIs(t, err, ErrNotAnImage)

	big := filepath.Join(dir, "big.png")
	require.NoError(t, os.WriteFile(big, append(pngHeader, bytes.Repeat([]byte{0}, 64)...), 0o600))
	_, err = LoadImage(big, 32)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, err = LoadImage(filepath.Join(dir, "missing.png"), 0)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestValidationError_Message(t *testing.T) {
	assert.Equal(t, "please enter text/URL or upload an image", invalid("", ErrEmptyInput).Error())
	assert.Equal(t, "image: image file is too large", invalid("image", ErrImageTooLarge).Error())
	assert.True(t, errors.Is(invalid("image", ErrNotAnImage), ErrNotAnImage))
}
