package controllers

import (
	"net/http"

	"quill/app/auth"
	"quill/app/views"

	"github.com/sirupsen/logrus"
)

// PageController serves the static pages
type PageController struct {
	base
}

// NewPageController creates a new PageController
func NewPageController(renderer *views.Renderer, sessions *auth.SessionManager, log logrus.FieldLogger) *PageController {
	return &PageController{base: base{views: renderer, sessions: sessions, log: log}}
}

func (c *PageController) About(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, "about", c.page(w, r, "About"))
}

func (c *PageController) Contact(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, "contact", c.page(w, r, "Contact"))
}

// NotFound renders the 404 page for unknown routes
func (c *PageController) NotFound(w http.ResponseWriter, r *http.Request) {
	c.sendError(w, r, "Page not found", http.StatusNotFound)
}
