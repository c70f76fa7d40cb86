package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
)

//go:embed assets
var assets embed.FS

// TemplatesFS returns the embedded page templates.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(assets, "assets/templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// StaticFS returns the embedded css and javascript.
func StaticFS() fs.FS {
	sub, err := fs.Sub(assets, "assets/static")
	if err != nil {
		panic(err)
	}
	return sub
}

// TemplateEngine handles HTML template rendering
type TemplateEngine struct {
	fsys      fs.FS
	templates *template.Template
	reload    bool // dev mode: reload on each request
}

// NewTemplateEngine creates a new template engine over fsys.
// Layout templates live at the root of fsys, pages under pages/.
func NewTemplateEngine(fsys fs.FS, reload bool) *TemplateEngine {
	return &TemplateEngine{
		fsys:   fsys,
		reload: reload,
	}
}

// Load parses the layout templates
func (te *TemplateEngine) Load() error {
	tmpl := template.New("").Funcs(template.FuncMap{
		"lower": strings.ToLower,
	})

	matches, err := fs.Glob(te.fsys, "*.html")
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no layout templates found")
	}

	tmpl, err = tmpl.ParseFS(te.fsys, matches...)
	if err != nil {
		return err
	}

	te.templates = tmpl
	return nil
}

// Render renders a page inside the layout
func (te *TemplateEngine) Render(w io.Writer, name string, data interface{}) error {
	tmpl, err := te.page(name)
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

// RenderContent renders only the content template without layout
func (te *TemplateEngine) RenderContent(w io.Writer, name string, data interface{}) error {
	tmpl, err := te.page(name)
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, "content", data)
}

func (te *TemplateEngine) page(name string) (*template.Template, error) {
	if te.reload || te.templates == nil {
		if err := te.Load(); err != nil {
			return nil, err
		}
	}

	// Clone base templates and parse page-specific template
	tmpl, err := te.templates.Clone()
	if err != nil {
		return nil, err
	}

	return tmpl.ParseFS(te.fsys, path.Join("pages", name+".html"))
}
