package extract

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/antonholmquist/jason"
	"github.com/k3a/html2text"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/ppiankov/factlens/internal/util"
)

// minArticleChars is the shortest <article>/<main> text preferred over the
// whole body
const minArticleChars = 200

var metaImageKeys = []string{"og:image", "og:image:secure_url", "twitter:image", "twitter:image:src"}

var jsonLDTextKeys = []string{"articleBody", "text", "description", "headline", "name"}

// Document is the parsed view of an HTML page
type Document struct {
	Title       string
	Description string
	BodyText    string
	JSONLDText  string
	Images      []string
}

var stripPolicy = newStripPolicy()

func newStripPolicy() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}

// ParseHTML extracts metadata, readable text and image URLs from a page.
// Relative image URLs are resolved against pageURL.
func ParseHTML(htmlContent, pageURL string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	doc.Title, doc.Description = metaText(root)

	jsonLD := jsonLDObjects(root)
	doc.JSONLDText = jsonLDText(jsonLD)
	doc.BodyText = bodyText(root)

	var images []string
	for _, key := range metaImageKeys {
		if v := metaContent(root, key); v != "" {
			images = append(images, v)
		}
	}
	images = append(images, jsonLDImages(jsonLD)...)
	images = append(images, imgSources(root)...)

	for _, img := range images {
		if resolved := resolveURL(base, img); resolved != "" {
			doc.Images = append(doc.Images, resolved)
		}
	}
	doc.Images = util.Dedupe(doc.Images)

	return doc, nil
}

// StripMarkup converts an HTML fragment to plain text
func StripMarkup(fragment string) string {
	return util.CleanText(html2text.HTML2Text(stripPolicy.Sanitize(fragment)))
}

func metaText(root *html.Node) (title, description string) {
	title = metaContent(root, "og:title")
	if title == "" {
		if n := findFirst(root, isElement("title")); n != nil {
			title = util.CleanText(textOf(n))
		}
	}

	for _, key := range []string{"og:description", "description", "twitter:description"} {
		if description = metaContent(root, key); description != "" {
			break
		}
	}
	return title, description
}

// metaContent returns the content of a <meta> with a matching property or name
func metaContent(root *html.Node, key string) string {
	n := findFirst(root, func(n *html.Node) bool {
		if !isElement("meta")(n) {
			return false
		}
		return strings.EqualFold(attr(n, "property"), key) || strings.EqualFold(attr(n, "name"), key)
	})
	if n == nil {
		return ""
	}
	return strings.TrimSpace(attr(n, "content"))
}

// bodyText prefers the first <article> or <main> with enough text, then
// the whole <body>
func bodyText(root *html.Node) string {
	for _, tag := range []string{"article", "main"} {
		if n := findFirst(root, isElement(tag)); n != nil {
			if text := StripMarkup(render(n)); len(text) >= minArticleChars {
				return text
			}
		}
	}

	if n := findFirst(root, isElement("body")); n != nil {
		return StripMarkup(render(n))
	}
	return StripMarkup(render(root))
}

func imgSources(root *html.Node) []string {
	var images []string
	for _, img := range findAll(root, isElement("img")) {
		src := firstNonEmpty(attr(img, "src"), attr(img, "data-src"), attr(img, "data-original"))
		if src == "" {
			src = largestSrcset(attr(img, "srcset"))
		}
		if src != "" {
			images = append(images, src)
		}
	}
	return images
}

// largestSrcset returns the last candidate of a srcset attribute
func largestSrcset(srcset string) string {
	var last string
	for _, part := range strings.Split(srcset, ",") {
		if fields := strings.Fields(part); len(fields) > 0 {
			last = fields[0]
		}
	}
	return last
}

func jsonLDObjects(root *html.Node) []*jason.Object {
	var objects []*jason.Object
	scripts := findAll(root, func(n *html.Node) bool {
		return isElement("script")(n) && strings.EqualFold(attr(n, "type"), "application/ld+json")
	})

	for _, script := range scripts {
		raw := strings.TrimSpace(textOf(script))
		if raw == "" {
			continue
		}
		value, err := jason.NewValueFromBytes([]byte(raw))
		if err != nil {
			continue
		}
		if obj, err := value.Object(); err == nil {
			objects = append(objects, obj)
			continue
		}
		if items, err := value.Array(); err == nil {
			for _, item := range items {
				if obj, err := item.Object(); err == nil {
					objects = append(objects, obj)
				}
			}
		}
	}
	return objects
}

func jsonLDText(objects []*jason.Object) string {
	var texts []string
	for _, obj := range objects {
		for _, key := range jsonLDTextKeys {
			if s, err := obj.GetString(key); err == nil && strings.TrimSpace(s) != "" {
				texts = append(texts, strings.TrimSpace(s))
			}
		}
		if s, err := obj.GetString("mainEntityOfPage", "name"); err == nil && strings.TrimSpace(s) != "" {
			texts = append(texts, strings.TrimSpace(s))
		}
	}
	return util.CleanText(strings.Join(texts, " "))
}

func jsonLDImages(objects []*jason.Object) []string {
	var images []string
	for _, obj := range objects {
		for _, key := range []string{"image", "thumbnailUrl"} {
			value, err := obj.GetValue(key)
			if err != nil {
				continue
			}
			if s, err := value.String(); err == nil {
				images = append(images, s)
				continue
			}
			if items, err := value.Array(); err == nil {
				for _, item := range items {
					if s, err := item.String(); err == nil {
						images = append(images, s)
					}
				}
				continue
			}
			if o, err := value.Object(); err == nil {
				if s, err := o.GetString("url"); err == nil {
					images = append(images, s)
				} else if s, err := o.GetString("contentUrl"); err == nil {
					images = append(images, s)
				}
			}
		}
	}
	return images
}

// resolveURL resolves a relative URL against a base URL, keeping only http(s)
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "data:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

func render(n *html.Node) string {
	var buf bytes.Buffer
	_ = html.Render(&buf, n)
	return buf.String()
}

func isElement(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textOf concatenates the raw text children of n
func textOf(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			buf.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

func findAll(n *html.Node, predicate func(*html.Node) bool) []*html.Node {
	var results []*html.Node

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if predicate(node) {
			results = append(results, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return results
}

func findFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	var result *html.Node

	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if predicate(node) {
			result = node
			return true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	walk(n)
	return result
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
