package adapters

import (
	"context"

	"github.com/ppiankov/factlens/internal/extract"
)

// GenericAdapter extracts from the page HTML itself
type GenericAdapter struct {
	fetcher Fetcher
}

// NewGenericAdapter creates a new generic adapter
func NewGenericAdapter(fetcher Fetcher) *GenericAdapter {
	return &GenericAdapter{fetcher: fetcher}
}

// Name returns the adapter name
func (a *GenericAdapter) Name() string {
	return "generic"
}

// CanHandle always returns true (fallback adapter)
func (a *GenericAdapter) CanHandle(platform extract.Platform) bool {
	return true
}

// Extract fetches the page and picks the readable body, then JSON-LD text,
// then the meta description
func (a *GenericAdapter) Extract(ctx context.Context, rawURL string) (*extract.Content, error) {
	page, err := a.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	finalURL := page.FinalURL
	if finalURL == "" {
		finalURL = rawURL
	}

	doc, err := extract.ParseHTML(page.HTML, finalURL)
	if err != nil {
		return nil, err
	}

	text := doc.BodyText
	if extract.LooksBlocked(text) {
		switch {
		case doc.JSONLDText != "":
			text = doc.JSONLDText
		case doc.Description != "":
			text = doc.Description
		}
	}

	return &extract.Content{
		URL:    finalURL,
		Title:  doc.Title,
		Text:   text,
		Images: doc.Images,
	}, nil
}
