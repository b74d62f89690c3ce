package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pdftools/backend/internal/models"
)

// Page template names.
const (
	PageHome       = "home"
	PageImageTools = "image_tools"
	PagePricing    = "pricing"
	PageTool       = "tool"
	PageNotFound   = "not_found"
)

var pageNames = []string{PageHome, PageImageTools, PagePricing, PageTool, PageNotFound}

// Renderer implements echo.Renderer over the embedded templates. Every page
// is parsed together with the shared layout and executed through "base".
type Renderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

var funcMap = template.FuncMap{
	"lower": strings.ToLower,
	"join":  strings.Join,
	"add":   func(a, b int) int { return a + b },
	"stepState": func(current models.Step, index int) string {
		switch i := current.Index(); {
		case index < i:
			return "done"
		case index == i:
			return "active"
		default:
			return "todo"
		}
	},
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	return newRenderer(templateFiles)
}

func newRenderer(files fs.FS) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcMap).ParseFS(files, "templates/base.tmpl", "templates/"+name+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes the named page into w.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "base", data)
}
