package web

import (
	"embed"
	"html/template"
	"io"

	"github.com/ppiankov/factlens/internal/render"
	"github.com/ppiankov/factlens/internal/theme"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// pageData feeds the index template
type pageData struct {
	Theme   theme.Theme
	Input   string
	Results template.HTML
}

// fragment renders nodes as trusted markup. Node text is escaped when the
// nodes are built.
func fragment(nodes []render.Node) template.HTML {
	if len(nodes) == 0 {
		return ""
	}
	return template.HTML(render.HTMLFragment(nodes)) //nolint:gosec // node text is pre-escaped
}

func writePage(w io.Writer, data pageData) error {
	return pageTemplate.Execute(w, data)
}
