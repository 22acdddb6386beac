// Package render turns grouped claims into render nodes and materializes
// them for the terminal, JSON files and HTML.
//
// Every string a node carries is already HTML-escaped. Sinks that produce
// plain text decode the entities again.
package render

// Kind identifies a render node
type Kind string

const (
	KindBanner       Kind = "banner"
	KindNotice       Kind = "notice"
	KindTextSection  Kind = "text_section"
	KindImageSection Kind = "image_section"
	KindClaim        Kind = "claim"
	KindInfo         Kind = "info"
	KindError        Kind = "error"
)

// Origin icon tags
const (
	IconText  = "fa-file-lines"
	IconImage = "fa-image"
)

// Node is one instruction for a render sink.
// Exactly one of Banner, Section or Claim is set for the matching kinds;
// Message is set for notice, info and error nodes.
type Node struct {
	Kind    Kind     `json:"kind"`
	Banner  *Banner  `json:"banner,omitempty"`
	Section *Section `json:"section,omitempty"`
	Claim   *Claim   `json:"claim,omitempty"`
	Message string   `json:"message,omitempty"`
}

// Banner describes the analyzed source page
type Banner struct {
	URL      string `json:"url"`
	Href     string `json:"href,omitempty"` // empty unless the URL is http(s)
	Title    string `json:"title,omitempty"`
	Platform string `json:"platform,omitempty"`
	// ImagesSuffix is "1 image analyzed" or "N images analyzed", empty when none
	ImagesSuffix string `json:"images_suffix,omitempty"`
}

// Section is a group header
type Section struct {
	Title string `json:"title"`
	// ImageRef and Preview are set for image sections only
	ImageRef string `json:"image_ref,omitempty"`
	Preview  bool   `json:"preview"`
	Count    int    `json:"count"`
}

// Claim is one rendered claim
type Claim struct {
	Index       int      `json:"index"` // 1-based within its group
	Icon        string   `json:"icon"`
	Text        string   `json:"text"`
	Verdict     string   `json:"verdict"`
	Style       string   `json:"style"`
	Confidence  string   `json:"confidence"`
	Explanation string   `json:"explanation"`
	Sources     []Source `json:"sources"`
	// SourcesHTML is the ready-made citation list markup, empty without sources
	SourcesHTML string `json:"sources_html,omitempty"`
}

// Source is one rendered citation
type Source struct {
	Label  string `json:"label"`
	Href   string `json:"href,omitempty"`
	IsLink bool   `json:"is_link"`
}
