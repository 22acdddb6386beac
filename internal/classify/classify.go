// Package classify decides whether free-form input is a URL or plain text.
package classify

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
)

// Kind is the classification of an input
type Kind string

const (
	KindURL  Kind = "url"
	KindText Kind = "text"
)

// Input is a classified submission
type Input struct {
	Kind  Kind
	Value string
}

// Rule selects how URLs are recognised
type Rule int

const (
	// RuleAnchored treats the input as a URL only if the whole trimmed input is one
	RuleAnchored Rule = iota
	// RuleEmbedded submits the first URL token found anywhere in the input
	RuleEmbedded
)

var (
	anchoredURL = regexp.MustCompile(`(?i)^https?://[\w.-]+(?:\.[\w.-]+)+[\w\-._~:/?#\[\]@!$&'()*+,;=%]*$`)
	embeddedURL = regexp.MustCompile(`(?i)https?://[\w.-]+(?:\.[\w.-]+)+[\w\-._~:/?#\[\]@!$&'()*+,;=%]*`)
)

// Classifier applies exactly one URL rule
type Classifier struct {
	rule Rule
}

// New creates a classifier using the given rule
func New(rule Rule) *Classifier {
	return &Classifier{rule: rule}
}

// Classify returns the kind and value of the input.
// Callers reject empty input before classifying.
func (c *Classifier) Classify(input string) Input {
	trimmed := strings.TrimSpace(input)

	switch c.rule {
	case RuleEmbedded:
		if u := FirstURL(trimmed); u != "" {
			return Input{Kind: KindURL, Value: u}
		}
	default:
		if anchoredURL.MatchString(trimmed) && hasAuthority(trimmed) {
			return Input{Kind: KindURL, Value: trimmed}
		}
	}

	return Input{Kind: KindText, Value: trimmed}
}

// Classify classifies with the anchored rule
func Classify(input string) Input {
	return New(RuleAnchored).Classify(input)
}

// FirstURL returns the first syntactically valid URL token in s, or ""
func FirstURL(s string) string {
	for _, candidate := range embeddedURL.FindAllString(s, -1) {
		candidate = strings.TrimRight(candidate, ".,;:!?)'")
		if hasAuthority(candidate) {
			return candidate
		}
	}
	return ""
}

// Request builds the outbound payload for a classified input
func (in Input) Request() model.Request {
	if in.Kind == KindURL {
		return model.Request{URL: in.Value}
	}
	return model.Request{Text: in.Value}
}

func hasAuthority(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
