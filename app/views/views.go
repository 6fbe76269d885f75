// Package views renders the blog's HTML pages from embedded templates.
package views

import (
	"bytes"
	"crypto/md5"
	"embed"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"quill/app/forms"
	"quill/app/models"
	"quill/app/richtext"
)

//go:embed templates/*.html static/*
var files embed.FS

var pages = []string{"index", "post", "make-post", "register", "login", "about", "contact", "error"}

// Page is the data every template receives.
type Page struct {
	Title       string
	CurrentUser *models.User
	IsAdmin     bool
	Flashes     []string

	Form   interface{}
	Errors forms.Errors

	Posts  []*models.Post
	Post   *models.Post
	IsEdit bool

	Status  int
	Message string
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses every page together with the shared layout.
func New() (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New("layout").Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		templates[page] = tmpl
	}
	return &Renderer{templates: templates}, nil
}

// Render executes page into a buffer and then writes it with status, so a
// template error never leaves a half written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data *Page) error {
	tmpl, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown template %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Static serves the embedded stylesheet and images.
func Static() http.Handler {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

var funcs = template.FuncMap{
	"gravatar": Gravatar,
	// post bodies and comments are sanitized before they are stored
	"safe":    func(s string) template.HTML { return template.HTML(s) },
	"excerpt": richtext.Excerpt,
	"year":    func() int { return time.Now().Year() },
}

// Gravatar returns the avatar URL for email, rated g with the retro fallback.
func Gravatar(email string, size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=%d&d=retro&r=g", hex.EncodeToString(sum[:]), size)
}
