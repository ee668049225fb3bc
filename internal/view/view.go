// Package view renders the activity board as HTML.
//
// Every render is a full replacement built from one board snapshot. Values
// reach the markup only through html/template, so names, descriptions and
// participant emails are escaped for the context they land in.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"time"

	"github.com/pscheid92/signupboard/internal/domain"
	"github.com/pscheid92/signupboard/web"
)

const (
	pageTemplate     = "page.html"
	fragmentTemplate = "fragment.html"
	confirmTemplate  = "confirm.html"
)

// PageData is everything the page and fragment templates read.
type PageData struct {
	Board      domain.Board
	LoadFailed bool
	Notice     domain.Notice
	// Email and Selected pre-fill the signup form.
	Email    string
	Selected string

	CSRFToken string
	// NoticeHideAfterMs delays the CSS hide of a shown notice. Zero means
	// the renderer's configured duration.
	NoticeHideAfterMs int64
}

// ConfirmData feeds the removal confirmation page.
type ConfirmData struct {
	Activity  string
	Email     string
	Prompt    string
	CSRFToken string
}

// Renderer executes the board templates.
type Renderer struct {
	tmpl       *template.Template
	noticeHide time.Duration
}

// New parses the embedded templates.
func New(noticeHide time.Duration) (*Renderer, error) {
	return NewFromFS(web.TemplateFiles, noticeHide)
}

// NewFromFS parses templates/*.html from fsys.
func NewFromFS(fsys fs.FS, noticeHide time.Duration) (*Renderer, error) {
	tmpl, err := template.New("signupboard").Funcs(template.FuncMap{
		"pathEscape": url.PathEscape,
	}).ParseFS(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, noticeHide: noticeHide}, nil
}

// Page renders the full document.
func (r *Renderer) Page(w io.Writer, data PageData) error {
	return r.execute(w, pageTemplate, r.withDefaults(data))
}

// Fragment renders the notice area, activity list and select options only.
func (r *Renderer) Fragment(w io.Writer, data PageData) error {
	return r.execute(w, fragmentTemplate, r.withDefaults(data))
}

// Confirm renders the removal confirmation step.
func (r *Renderer) Confirm(w io.Writer, data ConfirmData) error {
	return r.execute(w, confirmTemplate, data)
}

func (r *Renderer) withDefaults(data PageData) PageData {
	if data.NoticeHideAfterMs == 0 {
		data.NoticeHideAfterMs = r.noticeHide.Milliseconds()
	}
	return data
}

// execute renders into a buffer first so a template error never leaves a
// half-written document behind.
func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
