package normalize

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
)

const (
	maxPathChars  = 28
	keptPathChars = 25
	ellipsis      = "…"
)

// BuildSources converts raw source entries into citations.
// Non-strings and blank entries are dropped; order is preserved and
// positions are counted over the kept entries.
func BuildSources(raw []any) []model.SourceRef {
	refs := make([]model.SourceRef, 0, len(raw))
	for _, entry := range usableSources(raw) {
		refs = append(refs, NewSourceRef(entry, len(refs)+1))
	}
	return refs
}

// NewSourceRef derives a citation from a raw value and its 1-based position
func NewSourceRef(raw string, position int) model.SourceRef {
	if label, ok := LinkLabel(raw); ok {
		return model.SourceRef{RawValue: raw, DisplayLabel: label, IsLink: true}
	}
	return model.SourceRef{
		RawValue:     raw,
		DisplayLabel: fmt.Sprintf("Source %d", position),
		IsLink:       false,
	}
}

// LinkLabel returns "host/path" for an absolute http(s) URL.
// The www. prefix is dropped and paths longer than 28 characters are cut
// to 25 followed by an ellipsis.
func LinkLabel(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		return "", false
	}

	path := strings.TrimSuffix(u.EscapedPath(), "/")
	if runes := []rune(path); len(runes) > maxPathChars {
		path = string(runes[:keptPathChars]) + ellipsis
	}

	return host + path, true
}

func usableSources(raw []any) []string {
	var out []string
	for _, entry := range raw {
		s, ok := entry.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
