package adapters

import (
	"context"
	"fmt"
	"net/url"

	"github.com/antonholmquist/jason"

	"github.com/ppiankov/factlens/internal/extract"
)

const (
	YouTubeOEmbedEndpoint = "https://www.youtube.com/oembed"
	TikTokOEmbedEndpoint  = "https://www.tiktok.com/oembed"
)

// OEmbedAdapter reads a title and thumbnail from an oEmbed endpoint
type OEmbedAdapter struct {
	fetcher  Fetcher
	platform extract.Platform
	endpoint string
}

// NewOEmbedAdapter creates an adapter for one platform's oEmbed endpoint
func NewOEmbedAdapter(fetcher Fetcher, platform extract.Platform, endpoint string) *OEmbedAdapter {
	return &OEmbedAdapter{fetcher: fetcher, platform: platform, endpoint: endpoint}
}

func (a *OEmbedAdapter) Name() string {
	return "oembed:" + string(a.platform)
}

func (a *OEmbedAdapter) CanHandle(platform extract.Platform) bool {
	return platform == a.platform
}

func (a *OEmbedAdapter) Extract(ctx context.Context, rawURL string) (*extract.Content, error) {
	q := url.Values{}
	q.Set("url", rawURL)
	q.Set("format", "json")

	page, err := a.fetcher.Fetch(ctx, a.endpoint+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	data, err := jason.NewObjectFromBytes([]byte(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("decode oembed: %w", err)
	}

	title, _ := data.GetString("title")
	text := title
	if text == "" {
		text, _ = data.GetString("author_name")
	}

	var images []string
	if thumb, err := data.GetString("thumbnail_url"); err == nil && thumb != "" {
		images = append(images, thumb)
	}

	return &extract.Content{URL: rawURL, Title: title, Text: text, Images: images}, nil
}
