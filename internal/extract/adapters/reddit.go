package adapters

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/antonholmquist/jason"

	"github.com/ppiankov/factlens/internal/extract"
	"github.com/ppiankov/factlens/internal/util"
)

// RedditAdapter reads posts through reddit's public JSON view
type RedditAdapter struct {
	fetcher Fetcher
}

// NewRedditAdapter creates a new reddit adapter
func NewRedditAdapter(fetcher Fetcher) *RedditAdapter {
	return &RedditAdapter{fetcher: fetcher}
}

func (a *RedditAdapter) Name() string {
	return "reddit"
}

func (a *RedditAdapter) CanHandle(platform extract.Platform) bool {
	return platform == extract.PlatformReddit
}

// Extract returns the post title, self text and media URLs
func (a *RedditAdapter) Extract(ctx context.Context, rawURL string) (*extract.Content, error) {
	jsonURL, err := RedditJSONURL(rawURL)
	if err != nil {
		return nil, err
	}

	page, err := a.fetcher.Fetch(ctx, jsonURL)
	if err != nil {
		return nil, err
	}

	listings, err := jason.NewValueFromBytes([]byte(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("decode reddit listing: %w", err)
	}
	items, err := listings.Array()
	if err != nil || len(items) == 0 {
		return nil, fmt.Errorf("unexpected reddit listing shape")
	}
	listing, err := items[0].Object()
	if err != nil {
		return nil, fmt.Errorf("unexpected reddit listing shape")
	}
	children, err := listing.GetObjectArray("data", "children")
	if err != nil || len(children) == 0 {
		return nil, fmt.Errorf("reddit listing has no post")
	}
	post, err := children[0].GetObject("data")
	if err != nil {
		return nil, fmt.Errorf("reddit listing has no post")
	}

	title, _ := post.GetString("title")
	body, _ := post.GetString("selftext")

	return &extract.Content{
		URL:    rawURL,
		Title:  title,
		Text:   util.CleanText(title + " " + body),
		Images: redditImages(post),
	}, nil
}

func redditImages(post *jason.Object) []string {
	var images []string

	if dest, err := post.GetString("url_overridden_by_dest"); err == nil && extract.IsImageLike(dest) {
		images = append(images, dest)
	}

	if previews, err := post.GetObjectArray("preview", "images"); err == nil {
		for _, img := range previews {
			if src, err := img.GetString("source", "url"); err == nil && src != "" {
				images = append(images, unescapeAmp(src))
			}
		}
	}

	if media, err := post.GetObject("media_metadata"); err == nil {
		entries := media.Map()
		ids := make([]string, 0, len(entries))
		for id := range entries {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			obj, err := entries[id].Object()
			if err != nil {
				continue
			}
			if kind, _ := obj.GetString("e"); kind != "Image" {
				continue
			}
			src, err := obj.GetString("s", "u")
			if err != nil || src == "" {
				src, _ = obj.GetString("s", "gif")
			}
			if src != "" {
				images = append(images, unescapeAmp(src))
			}
		}
	}

	return images
}

// RedditJSONURL converts a post URL to its .json listing URL
func RedditJSONURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	path := strings.TrimSuffix(u.Path, "/")
	if !strings.HasSuffix(path, ".json") {
		path += ".json"
	}
	u.Path = path

	q := u.Query()
	q.Set("raw_json", "1")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func unescapeAmp(s string) string {
	return strings.ReplaceAll(s, "&amp;", "&")
}
