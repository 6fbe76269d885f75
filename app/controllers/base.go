package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"quill/app/auth"
	"quill/app/views"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// base carries what every HTML controller needs to answer a request.
type base struct {
	views    *views.Renderer
	sessions *auth.SessionManager
	log      logrus.FieldLogger
}

// page starts the template data for r, consuming pending flash messages.
func (b *base) page(w http.ResponseWriter, r *http.Request, title string) *views.Page {
	user := auth.UserFromContext(r.Context())
	return &views.Page{
		Title:       title,
		CurrentUser: user,
		IsAdmin:     user.IsAdmin(),
		Flashes:     b.sessions.Flashes(w, r),
	}
}

func (b *base) render(w http.ResponseWriter, r *http.Request, status int, name string, data *views.Page) {
	if err := b.views.Render(w, status, name, data); err != nil {
		b.log.WithError(err).WithField("template", name).Error("template error")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// flashRedirect queues message and sends the browser to target.
func (b *base) flashRedirect(w http.ResponseWriter, r *http.Request, message, target string) {
	if err := b.sessions.Flash(w, r, message); err != nil {
		b.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (b *base) sendError(w http.ResponseWriter, r *http.Request, message string, status int) {
	data := b.page(w, r, http.StatusText(status))
	data.Status = status
	data.Message = message
	b.render(w, r, status, "error", data)
}

func (b *base) serverError(w http.ResponseWriter, r *http.Request, err error) {
	b.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// pathID reads the numeric {id} route variable.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	return id, err == nil && id > 0
}

// Helper methods for consistent JSON response handling

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func sendJSONError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, map[string]string{"error": message})
}
