// internal/view/render.go
//
// View engine: template lookup, func-map injection, and an LRU of parsed
// *template.Template* sets.
//
// Public helpers
// --------------
//   - Render         – write rendered HTML to an http.ResponseWriter.
//   - RenderToString – return template.HTML (SVG cards, e-mails).
//
// Each page is parsed together with every file under "layouts/" so pages
// can call {{ template "layout" . }} and define their own blocks.
//
// execName() chooses the template to execute:
//   – If the set defines a non-empty "<name>", we run that.
//   – Else we run the page file "<name>.html" itself.
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"sync"

	"github.com/yanizio/storefront/internal/cache"
)

// Engine renders templates from one file system.
type Engine struct {
	fsys  fs.FS
	funcs template.FuncMap

	mu   sync.Mutex
	sets *cache.LRU[string, *template.Template]
}

// New returns an engine reading fsys.  funcs is merged over the built-ins.
func New(fsys fs.FS, funcs template.FuncMap) *Engine {
	fm := template.FuncMap{"dict": dict}
	for k, v := range funcs {
		fm[k] = v
	}
	return &Engine{fsys: fsys, funcs: fm, sets: cache.New[string, *template.Template](64)}
}

// Render executes name and streams it to w with status.
func (e *Engine) Render(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := e.execute(&buf, name, data); err != nil {
		return err
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// RenderToString executes name and returns the output.
func (e *Engine) RenderToString(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := e.execute(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (e *Engine) execute(w io.Writer, name string, data any) error {
	t, err := e.load(name)
	if err != nil {
		return err
	}
	return t.ExecuteTemplate(w, execName(t, name), data)
}

// load returns the parsed set for name, parsing on first use.
func (e *Engine) load(name string) (*template.Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.sets.Get(name); ok {
		return t, nil
	}

	t := template.New(name).Funcs(e.funcs)
	if layouts, _ := fs.Glob(e.fsys, "layouts/*.html"); len(layouts) > 0 {
		if _, err := t.ParseFS(e.fsys, layouts...); err != nil {
			return nil, fmt.Errorf("parse layouts: %w", err)
		}
	}
	if _, err := t.ParseFS(e.fsys, "pages/"+name+".html"); err != nil {
		return nil, fmt.Errorf("parse page %s: %w", name, err)
	}
	e.sets.Add(name, t)
	return t, nil
}

// execName picks the template name to execute: a non-empty {{ define }}
// of name wins, otherwise the page file itself.
func execName(t *template.Template, name string) string {
	if tmpl := t.Lookup(name); tmpl != nil && tmpl.Tree != nil &&
		tmpl.Tree.Root != nil && len(tmpl.Tree.Root.Nodes) > 0 {
		return name
	}
	return name + ".html"
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}
