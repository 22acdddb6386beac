// Package adapters extracts content from URLs, with platform-specific
// extractors in front of a generic HTML extractor.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/factlens/internal/extract"
	"github.com/ppiankov/factlens/internal/fetch"
	"github.com/ppiankov/factlens/internal/util"
)

// minPlatformText is the shortest platform text that skips the HTML fetch
const minPlatformText = 80

// ErrInvalidURL rejects anything but absolute http(s) URLs
var ErrInvalidURL = errors.New("invalid URL: only http(s) URLs are supported")

// Fetcher retrieves a URL body
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Page, error)
}

// Adapter defines the interface for platform-specific extractors
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter can handle the given platform
	CanHandle(platform extract.Platform) bool

	// Extract returns whatever the platform exposes for the URL
	Extract(ctx context.Context, rawURL string) (*extract.Content, error)
}

// Registry manages platform adapters and the generic fallback
type Registry struct {
	adapters []Adapter
	generic  *GenericAdapter
}

// NewRegistry creates a registry with the built-in adapters
func NewRegistry(fetcher Fetcher) *Registry {
	registry := &Registry{
		generic: NewGenericAdapter(fetcher),
	}

	registry.Register(NewRedditAdapter(fetcher))
	registry.Register(NewOEmbedAdapter(fetcher, extract.PlatformYouTube, YouTubeOEmbedEndpoint))
	registry.Register(NewOEmbedAdapter(fetcher, extract.PlatformTikTok, TikTokOEmbedEndpoint))

	return registry
}

// Register registers a new adapter ahead of the generic fallback
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// FindAdapter finds the platform adapter, or nil when only the generic
// extractor applies
func (r *Registry) FindAdapter(platform extract.Platform) Adapter {
	for _, adapter := range r.adapters {
		if adapter.CanHandle(platform) {
			return adapter
		}
	}
	return nil
}

// Extract gathers text, title and images for a URL. Platform data is used
// first; the page HTML fills in when the platform text is thin.
func (r *Registry) Extract(ctx context.Context, rawURL string) (*extract.Content, error) {
	pageURL := extract.NormalizeURL(rawURL)
	if !extract.IsValidURL(pageURL) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	platform := extract.DetectPlatform(pageURL)

	if extract.IsImageLike(pageURL) {
		images := []string{pageURL}
		return &extract.Content{
			URL:       pageURL,
			Images:    images,
			Platform:  platform,
			Detection: extract.DetectImages(pageURL, "", images),
		}, nil
	}

	content := &extract.Content{URL: pageURL, Platform: platform}

	if adapter := r.FindAdapter(platform); adapter != nil {
		if found, err := adapter.Extract(ctx, pageURL); err == nil {
			content.Text = found.Text
			content.Title = found.Title
			content.Images = append(content.Images, found.Images...)
		}
	}

	if len(strings.TrimSpace(content.Text)) < minPlatformText {
		page, err := r.generic.Extract(ctx, pageURL)
		switch {
		case err == nil:
			if content.Title == "" {
				content.Title = page.Title
			}
			if page.Text != "" {
				content.Text = page.Text
			}
			content.Images = append(content.Images, page.Images...)
		case content.Text == "" && len(content.Images) == 0:
			return nil, fmt.Errorf("extract %s: %w", pageURL, err)
		}
	}

	content.Text = util.CleanText(content.Text)
	if content.Text == "" {
		content.Text = content.Title
	}
	content.Text = util.Truncate(content.Text, extract.MaxTextChars)

	var images []string
	for _, img := range util.Dedupe(content.Images) {
		if extract.IsImageLike(img) {
			images = append(images, img)
		}
	}
	if len(images) > extract.MaxImages {
		images = images[:extract.MaxImages]
	}
	content.Images = images
	content.Detection = extract.DetectImages(pageURL, content.Text, images)

	return content, nil
}
