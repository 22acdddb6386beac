package render

import (
	"fmt"
	"strings"

	"github.com/ppiankov/factlens/internal/group"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/normalize"
)

// Fixed messages
const (
	NoClaimsMessage   = "No factual claims found to verify."
	TextSectionTitle  = "Text claims"
	ImageSectionTitle = "Image claims"
)

// Build converts one response and its grouped claims into render nodes.
// An empty claim list yields a single info node and nothing else.
func Build(env model.ResponseEnvelope, grouped group.Grouped) []Node {
	if grouped.Empty() {
		return []Node{{Kind: KindInfo, Message: Escape(NoClaimsMessage)}}
	}

	var nodes []Node

	if url := strings.TrimSpace(env.SourceURL); url != "" {
		nodes = append(nodes, Node{Kind: KindBanner, Banner: buildBanner(env, url)})
	}

	if msg := strings.TrimSpace(env.ImageDetectionMessage); msg != "" {
		nodes = append(nodes, Node{Kind: KindNotice, Message: Escape(msg)})
	}

	if len(grouped.Text) > 0 && len(grouped.Images) > 0 {
		nodes = append(nodes, Node{
			Kind:    KindTextSection,
			Section: &Section{Title: TextSectionTitle, Count: len(grouped.Text)},
		})
	}

	for i, claim := range grouped.Text {
		nodes = append(nodes, claimNode(claim, i+1))
	}

	for _, img := range grouped.Images {
		nodes = append(nodes, Node{
			Kind: KindImageSection,
			Section: &Section{
				Title:    ImageSectionTitle,
				ImageRef: EscapeAttr(img.Ref),
				Preview:  img.HasRef && Previewable(img.Ref),
				Count:    len(img.Claims),
			},
		})
		for i, claim := range img.Claims {
			nodes = append(nodes, claimNode(claim, i+1))
		}
	}

	return nodes
}

// Previewable reports whether an image reference can be shown inline
func Previewable(ref string) bool {
	lower := strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:image/")
}

// ErrorNodes builds the single node shown for a failed submission
func ErrorNodes(err error) []Node {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return []Node{{Kind: KindError, Message: Escape(msg)}}
}

// ImagesSuffix pluralizes the analyzed image count; zero yields ""
func ImagesSuffix(n int) string {
	switch {
	case n <= 0:
		return ""
	case n == 1:
		return "1 image analyzed"
	default:
		return fmt.Sprintf("%d images analyzed", n)
	}
}

// buildBanner links the source only for absolute http(s) URLs
func buildBanner(env model.ResponseEnvelope, url string) *Banner {
	href := ""
	if _, ok := normalize.LinkLabel(url); ok {
		href = EscapeAttr(url)
	}
	return &Banner{
		URL:          Escape(url),
		Href:         href,
		Title:        Escape(strings.TrimSpace(env.SourceTitle)),
		Platform:     Escape(strings.TrimSpace(env.Platform)),
		ImagesSuffix: ImagesSuffix(env.ImagesProcessed),
	}
}

func claimNode(claim model.NormalizedClaim, index int) Node {
	icon := IconText
	if claim.OriginKind == model.OriginImage {
		icon = IconImage
	}

	sources := make([]Source, 0, len(claim.Sources))
	for _, ref := range claim.Sources {
		src := Source{Label: Escape(ref.DisplayLabel), IsLink: ref.IsLink}
		if ref.IsLink {
			src.Href = EscapeAttr(ref.RawValue)
		}
		sources = append(sources, src)
	}

	return Node{
		Kind: KindClaim,
		Claim: &Claim{
			Index:       index,
			Icon:        icon,
			Text:        Escape(claim.ClaimText),
			Verdict:     Escape(claim.VerdictLabel),
			Style:       string(claim.VerdictCategory),
			Confidence:  Escape(claim.ConfidenceDisplay()),
			Explanation: Escape(claim.ExplanationText),
			Sources:     sources,
			SourcesHTML: sourcesHTML(sources),
		},
	}
}

// sourcesHTML renders the citation list; labels and hrefs are already escaped
func sourcesHTML(sources []Source) string {
	if len(sources) == 0 {
		return ""
	}

	items := make([]string, 0, len(sources))
	for _, src := range sources {
		if src.IsLink {
			items = append(items, fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener" class="source-link">%s</a>`, src.Href, src.Label))
			continue
		}
		items = append(items, fmt.Sprintf(`<span class="source-label">%s</span>`, src.Label))
	}

	return strings.Join(items, ", ")
}
