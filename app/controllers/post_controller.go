package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"quill/app/auth"
	"quill/app/forms"
	"quill/app/models"
	"quill/app/services"
	"quill/app/views"

	"github.com/sirupsen/logrus"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	base
	postService *services.PostService
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, renderer *views.Renderer, sessions *auth.SessionManager, log logrus.FieldLogger) *PostController {
	return &PostController{
		base:        base{views: renderer, sessions: sessions, log: log},
		postService: postService,
	}
}

// Index handles listing all posts
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.ListPosts(r.Context())
	if err != nil {
		pc.serverError(w, r, err)
		return
	}

	data := pc.page(w, r, "")
	data.Posts = posts
	pc.render(w, r, http.StatusOK, "index", data)
}

// Show handles displaying a single post with its comments
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		pc.sendError(w, r, "Post not found", http.StatusNotFound)
		return
	}

	post, err := pc.postService.GetPost(r.Context(), id)
	if errors.Is(err, services.ErrPostNotFound) {
		pc.sendError(w, r, "Post not found", http.StatusNotFound)
		return
	}
	if err != nil {
		pc.serverError(w, r, err)
		return
	}

	renderPost(&pc.base, w, r, post, &forms.CommentForm{}, nil)
}

// renderPost shows post with the comment form in the given state.
func renderPost(b *base, w http.ResponseWriter, r *http.Request, post *models.Post, form *forms.CommentForm, errs forms.Errors) {
	data := b.page(w, r, post.Title)
	data.Post = post
	data.Form = form
	data.Errors = errs
	b.render(w, r, http.StatusOK, "post", data)
}

// New displays the form for creating a new post and creates it
func (pc *PostController) New(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		pc.renderForm(w, r, &forms.PostForm{}, nil, false)
		return
	}

	form := forms.ParsePostForm(r)
	if errs := forms.Validate(form); errs != nil {
		pc.renderForm(w, r, form, errs, false)
		return
	}

	_, err := pc.postService.CreatePost(r.Context(), auth.UserFromContext(r.Context()), postInput(form))
	if errs := formErrors(err); errs != nil {
		pc.renderForm(w, r, form, errs, false)
		return
	}
	if !pc.handled(w, r, err) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// Edit pre-populates the form with a post and saves changes to it
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		pc.sendError(w, r, "Post not found", http.StatusNotFound)
		return
	}

	post, err := pc.postService.GetPost(r.Context(), id)
	if pc.handled(w, r, err) {
		return
	}

	if r.Method != http.MethodPost {
		form := &forms.PostForm{Title: post.Title, Subtitle: post.Subtitle, ImgURL: post.ImgURL, Body: post.Body}
		pc.renderForm(w, r, form, nil, true)
		return
	}

	form := forms.ParsePostForm(r)
	if errs := forms.Validate(form); errs != nil {
		pc.renderForm(w, r, form, errs, true)
		return
	}

	_, err = pc.postService.UpdatePost(r.Context(), id, auth.UserFromContext(r.Context()), postInput(form))
	if errs := formErrors(err); errs != nil {
		pc.renderForm(w, r, form, errs, true)
		return
	}
	if !pc.handled(w, r, err) {
		http.Redirect(w, r, "/post/"+strconv.Itoa(id), http.StatusSeeOther)
	}
}

// Delete handles deleting a post and its comments
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		pc.sendError(w, r, "Post not found", http.StatusNotFound)
		return
	}

	err := pc.postService.DeletePost(r.Context(), id, auth.UserFromContext(r.Context()))
	if !pc.handled(w, r, err) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (pc *PostController) renderForm(w http.ResponseWriter, r *http.Request, form *forms.PostForm, errs forms.Errors, edit bool) {
	title := "New Post"
	if edit {
		title = "Edit Post"
	}
	data := pc.page(w, r, title)
	data.Form, data.Errors, data.IsEdit = form, errs, edit
	pc.render(w, r, http.StatusOK, "make-post", data)
}

// handled writes the response for a service error and reports whether it did.
func (pc *PostController) handled(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, services.ErrPostNotFound):
		pc.sendError(w, r, "Post not found", http.StatusNotFound)
	case errors.Is(err, services.ErrForbidden):
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	default:
		pc.serverError(w, r, err)
	}
	return true
}

// formErrors turns content errors into messages beside the form fields.
func formErrors(err error) forms.Errors {
	switch {
	case errors.Is(err, services.ErrDuplicateTitle):
		return forms.Errors{"title": "A post with this title already exists."}
	case errors.Is(err, services.ErrInvalidContent):
		return forms.Errors{"body": "Content is empty or contains only disallowed markup."}
	}
	return nil
}

func postInput(form *forms.PostForm) services.PostInput {
	return services.PostInput{
		Title:    form.Title,
		Subtitle: form.Subtitle,
		ImgURL:   form.ImgURL,
		Body:     form.Body,
	}
}
