package controllers

import (
	"errors"
	"net/http"

	"quill/app/auth"
	"quill/app/forms"
	"quill/app/services"
	"quill/app/views"

	"github.com/sirupsen/logrus"
)

// CommentController handles comment submissions on a post page
type CommentController struct {
	base
	commentService *services.CommentService
	postService    *services.PostService
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService, postService *services.PostService, renderer *views.Renderer, sessions *auth.SessionManager, log logrus.FieldLogger) *CommentController {
	return &CommentController{
		base:           base{views: renderer, sessions: sessions, log: log},
		commentService: commentService,
		postService:    postService,
	}
}

// Create adds the current user's comment and shows the post again.
// Anonymous visitors are sent to the login page and nothing is stored.
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		cc.sendError(w, r, "Post not found", http.StatusNotFound)
		return
	}

	post, err := cc.postService.GetPost(r.Context(), id)
	if errors.Is(err, services.ErrPostNotFound) {
		cc.sendError(w, r, "Post not found", http.StatusNotFound)
		return
	}
	if err != nil {
		cc.serverError(w, r, err)
		return
	}

	form := forms.ParseCommentForm(r)
	if errs := forms.Validate(form); errs != nil {
		renderPost(&cc.base, w, r, post, form, errs)
		return
	}

	user := auth.UserFromContext(r.Context())
	if user == nil {
		cc.flashRedirect(w, r, FlashLoginRequired, "/login")
		return
	}

	_, err = cc.commentService.CreateComment(r.Context(), user, id, form.Text)
	switch {
	case errors.Is(err, services.ErrInvalidContent):
		renderPost(&cc.base, w, r, post, form, forms.Errors{"comment_text": "Comment is empty or contains only disallowed markup."})
		return
	case errors.Is(err, services.ErrPostNotFound):
		cc.sendError(w, r, "Post not found", http.StatusNotFound)
		return
	case err != nil:
		cc.serverError(w, r, err)
		return
	}

	// reload so the new comment is listed
	post, err = cc.postService.GetPost(r.Context(), id)
	if err != nil {
		cc.serverError(w, r, err)
		return
	}
	renderPost(&cc.base, w, r, post, &forms.CommentForm{}, nil)
}
