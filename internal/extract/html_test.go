package extract

import (
	"strings"
	"testing"
)

const articlePage = `<!DOCTYPE html>
<html>
<head>
	<title>Fallback title</title>
	<meta property="og:title" content="Study finds coffee extends life">
	<meta name="description" content="A summary of the study.">
	<meta property="og:image" content="/img/cover.jpg">
	<meta name="twitter:image" content="https://cdn.example.com/cover.jpg">
	<script type="application/ld+json">{"@type": "NewsArticle", "headline": "Coffee study", "image": ["https://cdn.example.com/ld.png"]}</script>
	<script>var tracking = "should not appear";</script>
</head>
<body>
	<nav>Home | News</nav>
	<article>
		<p>Researchers followed 500,000 adults for ten years and found that moderate coffee drinkers had a lower risk of death.</p>
		<p>The effect held after adjusting for smoking &amp; diet, according to the authors, who cautioned that the study was observational.</p>
		<img src="chart.png" alt="chart">
		<img data-src="https://cdn.example.com/lazy.webp">
		<img srcset="small.jpg 480w, large.jpg 1080w">
	</article>
</body>
</html>`

func TestParseHTML_Article(t *testing.T) {
	doc, err := ParseHTML(articlePage, "https://news.example.com/2024/coffee")
	if err != nil {
		t.Fatalf("ParseHTML() error = %v", err)
	}

	if doc.Title != "Study finds coffee extends life" {
		t.Errorf("Title = %q", doc.Title)
	}
	if doc.Description != "A summary of the study." {
		t.Errorf("Description = %q", doc.Description)
	}
	if !strings.Contains(doc.BodyText, "500,000 adults") {
		t.Errorf("BodyText missing article text: %q", doc.BodyText)
	}
	if strings.Contains(doc.BodyText, "Home | News") {
		t.Errorf("BodyText should prefer the article over the body: %q", doc.BodyText)
	}
	if strings.Contains(doc.BodyText, "tracking") {
		t.Errorf("BodyText contains script content: %q", doc.BodyText)
	}
	if !strings.Contains(doc.BodyText, "smoking & diet") {
		t.Errorf("BodyText should decode entities: %q", doc.BodyText)
	}
	if doc.JSONLDText != "Coffee study" {
		t.Errorf("JSONLDText = %q", doc.JSONLDText)
	}

	want := []string{
		"https://news.example.com/img/cover.jpg",
		"https://cdn.example.com/cover.jpg",
		"https://cdn.example.com/ld.png",
		"https://news.example.com/2024/chart.png",
		"https://cdn.example.com/lazy.webp",
		"https://news.example.com/2024/large.jpg",
	}
	if len(doc.Images) != len(want) {
		t.Fatalf("Images = %v, want %v", doc.Images, want)
	}
	for i := range want {
		if doc.Images[i] != want[i] {
			t.Errorf("Images[%d] = %s, want %s", i, doc.Images[i], want[i])
		}
	}
}

func TestParseHTML_ShortArticleFallsBackToBody(t *testing.T) {
	page := `<html><head><title> Plain  page </title></head><body><p>Intro paragraph.</p><main>Short.</main></body></html>`

	doc, err := ParseHTML(page, "https://example.com/")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Plain page" {
		t.Errorf("Title = %q", doc.Title)
	}
	if !strings.Contains(doc.BodyText, "Intro paragraph.") || !strings.Contains(doc.BodyText, "Short.") {
		t.Errorf("BodyText = %q", doc.BodyText)
	}
}

func TestParseHTML_JSONLDArray(t *testing.T) {
	page := `<html><head><script type="application/ld+json">[{"articleBody": "Body one."}, {"image": {"url": "https://x.org/a.jpg"}, "mainEntityOfPage": {"name": "Entity"}}, "ignored"]</script></head><body></body></html>`

	doc, err := ParseHTML(page, "https://x.org/")
	if err != nil {
		t.Fatal(err)
	}
	if doc.JSONLDText != "Body one. Entity" {
		t.Errorf("JSONLDText = %q", doc.JSONLDText)
	}
	if len(doc.Images) != 1 || doc.Images[0] != "https://x.org/a.jpg" {
		t.Errorf("Images = %v", doc.Images)
	}
}

func TestStripMarkup(t *testing.T) {
	got := StripMarkup(`<p>One</p><p>Two &amp; three</p><style>p{}</style>`)
	if got != "One Two & three" {
		t.Errorf("StripMarkup() = %q", got)
	}
}
