// Package extract pulls fact-checkable text and image references out of
// web pages.
package extract

import (
	"net/url"
	"regexp"
	"strings"
)

// Platform identifies the social or media site a URL belongs to
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformReddit    Platform = "reddit"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformGeneric   Platform = "generic"
)

// MaxTextChars bounds the extracted page text
const MaxTextChars = 12000

// MaxImages bounds the image URLs kept per page
const MaxImages = 10

// ImagesInaccessibleMessage asks for a screenshot when a post shows images
// that could not be extracted
const ImagesInaccessibleMessage = "Images detected in this post, but they cannot be accessed directly from the URL. " +
	"Please provide a screenshot of the image for visual fact-checking."

// Content is what was extracted from one URL
type Content struct {
	URL       string
	Title     string
	Text      string
	Images    []string
	Platform  Platform
	Detection ImageDetection
}

// ImageDetection reports whether a page appears to carry images
type ImageDetection struct {
	HasImages bool
	Detected  bool
	Message   string
}

var platformHosts = []struct {
	platform Platform
	hosts    []string
}{
	{PlatformTwitter, []string{"twitter.com", "x.com"}},
	{PlatformReddit, []string{"reddit.com", "redd.it"}},
	{PlatformTikTok, []string{"tiktok.com"}},
	{PlatformYouTube, []string{"youtube.com", "youtu.be"}},
	{PlatformInstagram, []string{"instagram.com"}},
	{PlatformFacebook, []string{"facebook.com", "fb.com"}},
}

// DetectPlatform classifies a URL by host
func DetectPlatform(rawURL string) Platform {
	u, err := url.Parse(rawURL)
	if err != nil {
		return PlatformGeneric
	}
	host := strings.ToLower(u.Host)
	for _, p := range platformHosts {
		for _, h := range p.hosts {
			if strings.Contains(host, h) {
				return p.platform
			}
		}
	}
	return PlatformGeneric
}

var (
	imageExt   = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp|svg)$`)
	imageHosts = []string{
		"pbs.twimg.com",
		"i.redd.it",
		"preview.redd.it",
		"external-preview.redd.it",
		"i.imgur.com",
		"imgur.com",
		"cdninstagram.com",
		"fbcdn.net",
		"media.tumblr.com",
		"media.discordapp.net",
	}
	imageHints = []*regexp.Regexp{
		regexp.MustCompile(`(?i)pic\.twitter\.com`),
		regexp.MustCompile(`(?i)pbs\.twimg\.com`),
		regexp.MustCompile(`(?i)i\.redd\.it`),
		regexp.MustCompile(`(?i)preview\.redd\.it`),
		regexp.MustCompile(`(?i)imgur\.com`),
		regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp|svg)`),
		regexp.MustCompile(`(?i)redditmedia\.com`),
		regexp.MustCompile(`(?i)redditstatic\.com`),
		regexp.MustCompile(`(?i)external-preview\.redd\.it`),
		regexp.MustCompile(`(?i)images\.redd\.it`),
		regexp.MustCompile(`(?i)media\.redd\.it`),
	}
)

// IsImageLike reports whether a URL points at an image file or image host
func IsImageLike(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if imageExt.MatchString(u.Path) {
		return true
	}
	for _, h := range imageHosts {
		if strings.Contains(u.Host, h) {
			return true
		}
	}
	return false
}

// DetectImages decides whether a post shows images, and whether the user
// should be asked for a screenshot because none could be extracted
func DetectImages(pageURL, text string, images []string) ImageDetection {
	hinted := false
	for _, p := range imageHints {
		if p.MatchString(pageURL) || p.MatchString(text) {
			hinted = true
			break
		}
	}

	d := ImageDetection{
		HasImages: len(images) > 0,
		Detected:  len(images) > 0 || hinted,
	}
	if d.Detected && !d.HasImages {
		d.Message = ImagesInaccessibleMessage
	}
	return d
}

var boilerplateMarkers = []string{
	"enable javascript",
	"javascript is not available",
	"please enable cookies",
	"sign in",
	"you’re being redirected",
	"you are being redirected",
	"access denied",
	"verify you are a human",
}

// LooksBlocked reports whether text is too short or looks like an
// interstitial instead of page content
func LooksBlocked(text string) bool {
	if len(text) < 200 {
		return true
	}
	lowered := strings.ToLower(text)
	for _, marker := range boilerplateMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// NormalizeURL adds https:// when the input has no scheme.
// Inputs with any other scheme are returned unchanged for IsValidURL to reject.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	if hasScheme.MatchString(rawURL) {
		return rawURL
	}
	return "https://" + rawURL
}

var hasScheme = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// IsValidURL accepts absolute http(s) URLs with a host
func IsValidURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
