package direct

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/factlens/internal/extract"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/normalize"
)

type fakeChecker struct {
	mu          sync.Mutex
	claims      []string
	claimsErr   error
	imageClaims map[string][]string
	failFor     string
	checked     []string
	imageCalls  []string
}

func (f *fakeChecker) ExtractClaims(ctx context.Context, text string, maxClaims int) ([]string, error) {
	return f.claims, f.claimsErr
}

func (f *fakeChecker) ExtractImageClaims(ctx context.Context, imageURL string, maxClaims int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageCalls = append(f.imageCalls, imageURL)
	if claims, ok := f.imageClaims[imageURL]; ok {
		return claims, nil
	}
	return nil, errors.New("vision model unavailable")
}

func (f *fakeChecker) CheckClaim(ctx context.Context, claim string) (*model.RawVerdict, error) {
	f.mu.Lock()
	f.checked = append(f.checked, claim)
	f.mu.Unlock()

	if claim == f.failFor {
		return nil, errors.New("upstream 503")
	}
	// Later claims finish first to exercise ordering
	time.Sleep(time.Duration(10-len(claim)%10) * time.Millisecond)
	verdict := "TRUE"
	return &model.RawVerdict{Verdict: &verdict, Explanation: "ok: " + claim}, nil
}

type fakeExtractor struct {
	content *extract.Content
	err     error
}

func (f *fakeExtractor) Extract(ctx context.Context, rawURL string) (*extract.Content, error) {
	return f.content, f.err
}

func limits() model.LLMConfig {
	return model.LLMConfig{MaxClaims: 6, MaxImageClaims: 4, MaxImages: 1}
}

func newBackend(c ClaimChecker, e Extractor) *Backend {
	b := New(Options{Checker: c, Extractor: e, Limits: limits(), Workers: 3})
	b.now = func() time.Time { return time.Unix(1700000000, 0) }
	return b
}

func TestBackend_TextPreservesClaimOrder(t *testing.T) {
	c := &fakeChecker{claims: []string{"a", "bb", "ccc", "dddd"}}

	env, err := newBackend(c, nil).Check(context.Background(), model.Request{Text: "  some   text "})
	require.NoError(t, err)

	assert.Equal(t, "some text", env.OriginalText)
	assert.Equal(t, 4, env.ClaimsFound)
	assert.Equal(t, float64(1700000000), env.Timestamp)
	require.Len(t, env.Claims, 4)
	for i, want := range []string{"a", "bb", "ccc", "dddd"} {
		assert.Equal(t, want, *env.Claims[i].Claim)
		assert.Equal(t, "text", *env.Claims[i].SourceType)
		assert.Nil(t, env.Claims[i].ImageURL)
		assert.Equal(t, "ok: "+want, env.Claims[i].Result.Explanation)
	}
}

func TestBackend_TextFallsBackToWholeText(t *testing.T) {
	c := &fakeChecker{}

	env, err := newBackend(c, nil).Check(context.Background(), model.Request{Text: "The river flooded the town last spring"})
	require.NoError(t, err)
	require.Len(t, env.Claims, 1)
	assert.Equal(t, "The river flooded the town last spring", *env.Claims[0].Claim)

	env, err = newBackend(c, nil).Check(context.Background(), model.Request{Text: "too short"})
	require.NoError(t, err)
	assert.Empty(t, env.Claims)
}

func TestBackend_TextErrors(t *testing.T) {
	_, err := newBackend(&fakeChecker{}, nil).Check(context.Background(), model.Request{Text: " \n "})
	assert.ErrorIs(t, err, ErrNoText)

	boom := errors.New("bad api key")
	_, err = newBackend(&fakeChecker{claimsErr: boom}, nil).Check(context.Background(), model.Request{Text: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestBackend_FailedCheckBecomesErrorVerdict(t *testing.T) {
	c := &fakeChecker{claims: []string{"fine", "broken"}, failFor: "broken"}

	env, err := newBackend(c, nil).Check(context.Background(), model.Request{Text: "x"})
	require.NoError(t, err)
	require.Len(t, env.Claims, 2)

	failed := normalize.Normalize(env.Claims[1])
	assert.Equal(t, "broken", failed.ClaimText)
	assert.Equal(t, "ERROR", failed.VerdictLabel)
	assert.Equal(t, model.VerdictUnknown, failed.VerdictCategory)
	assert.Contains(t, failed.ExplanationText, "upstream 503")
}

func TestBackend_UploadedImage(t *testing.T) {
	dataURL := "data:image/png;base64,AAAA"
	c := &fakeChecker{imageClaims: map[string][]string{dataURL: {"Chart shows 40% growth", "Logo is NASA"}}}

	env, err := newBackend(c, nil).Check(context.Background(), model.Request{ImageDataURL: dataURL})
	require.NoError(t, err)

	assert.Equal(t, 1, env.ImagesProcessed)
	require.Len(t, env.Claims, 2)
	for _, rec := range env.Claims {
		assert.Equal(t, "image", *rec.SourceType)
		assert.Equal(t, UploadedImageRef, *rec.ImageURL)
	}
}

func TestBackend_URL(t *testing.T) {
	content := &extract.Content{
		URL:      "https://example.com/post",
		Title:    "Post title",
		Text:     "The bridge opened in 1932 and carries ten lanes.",
		Images:   []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
		Platform: extract.PlatformReddit,
	}
	c := &fakeChecker{
		claims:      []string{"The bridge opened in 1932"},
		imageClaims: map[string][]string{"https://cdn.example.com/a.jpg": {"Sign reads 1932"}},
	}

	env, err := newBackend(c, &fakeExtractor{content: content}).Check(context.Background(), model.Request{URL: "example.com/post"})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/post", env.SourceURL)
	assert.Equal(t, "Post title", env.SourceTitle)
	assert.Equal(t, "reddit", env.Platform)
	assert.Equal(t, 1, env.ImagesProcessed)
	assert.Empty(t, env.ImageDetectionMessage)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg"}, c.imageCalls, "only max_images images are analyzed")

	require.Len(t, env.Claims, 2)
	assert.Equal(t, "text", *env.Claims[0].SourceType)
	assert.Equal(t, "image", *env.Claims[1].SourceType)
	assert.Equal(t, "https://cdn.example.com/a.jpg", *env.Claims[1].ImageURL)
}

func TestBackend_URLImageNotice(t *testing.T) {
	content := &extract.Content{
		URL:       "https://x.com/u/status/1",
		Text:      "Look at this pic.twitter.com/abc",
		Platform:  extract.PlatformTwitter,
		Detection: extract.ImageDetection{Detected: true, Message: extract.ImagesInaccessibleMessage},
	}

	env, err := newBackend(&fakeChecker{}, &fakeExtractor{content: content}).Check(context.Background(), model.Request{URL: content.URL})
	require.NoError(t, err)
	assert.Equal(t, extract.ImagesInaccessibleMessage, env.ImageDetectionMessage)
	assert.Equal(t, 0, env.ImagesProcessed)
}

func TestBackend_URLExtractFailure(t *testing.T) {
	boom := errors.New("fetch failed")
	_, err := newBackend(&fakeChecker{}, &fakeExtractor{err: boom}).Check(context.Background(), model.Request{URL: "https://example.com"})
	assert.ErrorIs(t, err, boom)
}

func TestBackend_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &fakeChecker{claims: []string{"one", "two"}}
	env, err := newBackend(c, nil).Check(ctx, model.Request{Text: "x"})
	require.NoError(t, err)
	require.Len(t, env.Claims, 2)
	for _, rec := range env.Claims {
		require.NotNil(t, rec.Claim)
		require.NotNil(t, rec.Result)
		assert.False(t, strings.TrimSpace(*rec.Claim) == "")
	}
}
