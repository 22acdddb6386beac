package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/k3a/html2text"
)

// Sink materializes render nodes
type Sink interface {
	Render(nodes []Node) error
}

// verdictMarks maps a verdict style to its terminal mark
var verdictMarks = map[string]string{
	"true":    "✓",
	"false":   "✗",
	"partial": "◐",
	"unknown": "?",
}

// TextSink writes a plain-text rendering for terminals
type TextSink struct {
	w io.Writer
}

// NewTextSink creates a terminal sink writing to w
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// Render writes every node as plain text
func (s *TextSink) Render(nodes []Node) error {
	var b strings.Builder

	for _, n := range nodes {
		switch n.Kind {
		case KindBanner:
			line := "🔗 Source: " + plain(n.Banner.URL)
			if n.Banner.ImagesSuffix != "" {
				line += " (" + n.Banner.ImagesSuffix + ")"
			}
			b.WriteString(line + "\n")
			if n.Banner.Title != "" {
				b.WriteString("   Title: " + plain(n.Banner.Title) + "\n")
			}
			if n.Banner.Platform != "" {
				b.WriteString("   Platform: " + plain(n.Banner.Platform) + "\n")
			}
			b.WriteString("\n")
		case KindNotice:
			b.WriteString("ℹ️  " + plain(n.Message) + "\n\n")
		case KindTextSection:
			fmt.Fprintf(&b, "── %s (%d) ──\n\n", n.Section.Title, n.Section.Count)
		case KindImageSection:
			title := n.Section.Title
			if n.Section.Preview {
				title += ": " + plain(n.Section.ImageRef)
			}
			fmt.Fprintf(&b, "── %s (%d) ──\n\n", title, n.Section.Count)
		case KindClaim:
			writeClaimText(&b, n.Claim)
		case KindInfo:
			b.WriteString(plain(n.Message) + "\n")
		case KindError:
			b.WriteString("❌ Error: " + plain(n.Message) + "\n")
		}
	}

	_, err := io.WriteString(s.w, b.String())
	return err
}

func writeClaimText(b *strings.Builder, c *Claim) {
	mark, ok := verdictMarks[c.Style]
	if !ok {
		mark = verdictMarks["unknown"]
	}

	fmt.Fprintf(b, "[%d] %s %s (confidence: %s)\n", c.Index, mark, plain(c.Verdict), plain(c.Confidence))
	fmt.Fprintf(b, "    Claim: %s\n", plain(c.Text))
	fmt.Fprintf(b, "    Analysis: %s\n", plain(c.Explanation))

	if len(c.Sources) > 0 {
		labels := make([]string, 0, len(c.Sources))
		for _, src := range c.Sources {
			if src.IsLink {
				labels = append(labels, fmt.Sprintf("%s <%s>", plain(src.Label), Unescape(src.Href)))
				continue
			}
			labels = append(labels, plain(src.Label))
		}
		fmt.Fprintf(b, "    Sources: %s\n", strings.Join(labels, ", "))
	}
	b.WriteString("\n")
}

// plain decodes escaped node text for terminal output
func plain(s string) string {
	return strings.TrimSpace(html2text.HTML2Text(s))
}

// JSONSink writes the nodes as one JSON document
type JSONSink struct {
	w      io.Writer
	indent bool
}

// NewJSONSink creates a JSON sink; indent pretty-prints the document
func NewJSONSink(w io.Writer, indent bool) *JSONSink {
	return &JSONSink{w: w, indent: indent}
}

// Document is the JSON sink output
type Document struct {
	Nodes []Node `json:"nodes"`
}

// Render encodes the nodes
func (s *JSONSink) Render(nodes []Node) error {
	enc := json.NewEncoder(s.w)
	// node text is already HTML-escaped
	enc.SetEscapeHTML(false)
	if s.indent {
		enc.SetIndent("", "  ")
	}
	if nodes == nil {
		nodes = []Node{}
	}
	if err := enc.Encode(Document{Nodes: nodes}); err != nil {
		return fmt.Errorf("failed to encode nodes: %w", err)
	}
	return nil
}

// HTMLSink writes an HTML fragment
type HTMLSink struct {
	w io.Writer
}

// NewHTMLSink creates an HTML fragment sink writing to w
func NewHTMLSink(w io.Writer) *HTMLSink {
	return &HTMLSink{w: w}
}

// Render writes the fragment
func (s *HTMLSink) Render(nodes []Node) error {
	_, err := io.WriteString(s.w, HTMLFragment(nodes))
	return err
}

// HTMLFragment renders nodes as result markup.
// Node text is already escaped and is inserted verbatim.
func HTMLFragment(nodes []Node) string {
	var b strings.Builder

	for _, n := range nodes {
		switch n.Kind {
		case KindBanner:
			b.WriteString(`<div class="source-banner"><i class="fas fa-link"></i> <span>Source:</span> `)
			if n.Banner.Href != "" {
				fmt.Fprintf(&b, `<a href="%s" target="_blank" rel="noopener">%s</a>`, n.Banner.Href, n.Banner.URL)
			} else {
				fmt.Fprintf(&b, `<span class="source-url">%s</span>`, n.Banner.URL)
			}
			if n.Banner.ImagesSuffix != "" {
				fmt.Fprintf(&b, ` <span class="images-analyzed">(%s)</span>`, n.Banner.ImagesSuffix)
			}
			b.WriteString("</div>\n")
			if n.Banner.Title != "" {
				fmt.Fprintf(&b, `<div class="source-title"><i class="fas fa-file-lines"></i> <strong>Title:</strong> %s</div>`+"\n", n.Banner.Title)
			}
			if n.Banner.Platform != "" {
				fmt.Fprintf(&b, `<div class="source-platform"><strong>Platform:</strong> %s</div>`+"\n", n.Banner.Platform)
			}
		case KindNotice:
			fmt.Fprintf(&b, `<div class="notice"><i class="fas fa-circle-info"></i> %s</div>`+"\n", n.Message)
		case KindTextSection:
			fmt.Fprintf(&b, `<h3 class="section-header"><i class="fas %s"></i> %s</h3>`+"\n", IconText, n.Section.Title)
		case KindImageSection:
			fmt.Fprintf(&b, `<h3 class="section-header"><i class="fas %s"></i> %s</h3>`+"\n", IconImage, n.Section.Title)
			if n.Section.Preview {
				fmt.Fprintf(&b, `<div class="image-preview"><img src="%s" alt="Analyzed image" loading="lazy"></div>`+"\n", n.Section.ImageRef)
			}
		case KindClaim:
			writeClaimHTML(&b, n.Claim)
		case KindInfo:
			fmt.Fprintf(&b, "<p>%s</p>\n", n.Message)
		case KindError:
			b.WriteString(`<div class="claim-result false"><div class="explanation"><i class="fas fa-exclamation-triangle"></i> `)
			fmt.Fprintf(&b, "<strong>Error:</strong> %s</div></div>\n", n.Message)
		}
	}

	return b.String()
}

func writeClaimHTML(b *strings.Builder, c *Claim) {
	fmt.Fprintf(b, `<div class="claim-result %s">`+"\n", c.Style)
	fmt.Fprintf(b, `<div class="claim-text"><i class="fas %s"></i> <strong>Claim %d:</strong> %s</div>`+"\n", c.Icon, c.Index, c.Text)
	fmt.Fprintf(b, `<div class="verdict %s">%s</div>`+"\n", c.Style, c.Verdict)
	fmt.Fprintf(b, `<div class="confidence"><i class="fas fa-chart-bar"></i> <strong>Confidence:</strong> %s</div>`+"\n", c.Confidence)
	fmt.Fprintf(b, `<div class="explanation"><i class="fas fa-info-circle"></i> <strong>Analysis:</strong> %s</div>`+"\n", c.Explanation)
	if c.SourcesHTML != "" {
		fmt.Fprintf(b, `<div class="sources"><i class="fas fa-link"></i> <strong>Sources:</strong> %s</div>`+"\n", c.SourcesHTML)
	}
	b.WriteString("</div>\n")
}

// MultiSink renders the same nodes to every sink in order
type MultiSink []Sink

// Render stops at the first failing sink
func (m MultiSink) Render(nodes []Node) error {
	for _, s := range m {
		if err := s.Render(nodes); err != nil {
			return err
		}
	}
	return nil
}
