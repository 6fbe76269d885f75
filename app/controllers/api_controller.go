package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"quill/app/auth"
	"quill/app/forms"
	"quill/app/models"
	"quill/app/services"

	"github.com/sirupsen/logrus"
)

// APIController serves the JSON API under /api
type APIController struct {
	postService    *services.PostService
	commentService *services.CommentService
	userService    *services.UserService
	tokens         *auth.TokenIssuer
	tokenExpiry    time.Duration
	log            logrus.FieldLogger
}

// NewAPIController creates a new APIController
func NewAPIController(postService *services.PostService, commentService *services.CommentService, userService *services.UserService, tokens *auth.TokenIssuer, tokenExpiry time.Duration, log logrus.FieldLogger) *APIController {
	return &APIController{
		postService:    postService,
		commentService: commentService,
		userService:    userService,
		tokens:         tokens,
		tokenExpiry:    tokenExpiry,
		log:            log,
	}
}

// ListPosts returns every post with its author
func (c *APIController) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := c.postService.ListPosts(r.Context())
	if err != nil {
		c.internalError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

// ShowPost returns one post with its comments
func (c *APIController) ShowPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		sendJSONError(w, http.StatusNotFound, "Post not found")
		return
	}

	post, err := c.postService.GetPost(r.Context(), id)
	if errors.Is(err, services.ErrPostNotFound) {
		sendJSONError(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		c.internalError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// ListComments returns the comments of one post, oldest first
func (c *APIController) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		sendJSONError(w, http.StatusNotFound, "Post not found")
		return
	}

	comments, err := c.commentService.ListComments(r.Context(), id)
	if errors.Is(err, services.ErrPostNotFound) {
		sendJSONError(w, http.StatusNotFound, "Post not found")
		return
	}
	if err != nil {
		c.internalError(w, err)
		return
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// IssueToken exchanges email and password for a bearer token
func (c *APIController) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	form := &forms.LoginForm{Email: req.Email, Password: req.Password}
	if errs := forms.Validate(form); errs != nil {
		sendJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Validation failed", "fields": errs})
		return
	}

	user, err := c.userService.Authenticate(r.Context(), form.Email, form.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		sendJSONError(w, http.StatusUnauthorized, FlashBadLogin)
		return
	}
	if err != nil {
		c.internalError(w, err)
		return
	}

	token, err := c.tokens.Issue(user.ID)
	if err != nil {
		c.internalError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"token_type": "Bearer",
		"expires_in": int(c.tokenExpiry.Seconds()),
	})
}

// CreateComment adds a comment as the bearer of the request's token
func (c *APIController) CreateComment(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		sendJSONError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, ok := pathID(r)
	if !ok {
		sendJSONError(w, http.StatusNotFound, "Post not found")
		return
	}

	var form forms.CommentForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if errs := forms.Validate(&form); errs != nil {
		sendJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "Validation failed", "fields": errs})
		return
	}

	comment, err := c.commentService.CreateComment(r.Context(), user, id, form.Text)
	switch {
	case errors.Is(err, services.ErrPostNotFound):
		sendJSONError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, services.ErrInvalidContent):
		sendJSONError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		c.internalError(w, err)
	default:
		sendJSON(w, http.StatusCreated, comment)
	}
}

func (c *APIController) internalError(w http.ResponseWriter, err error) {
	c.log.WithError(err).Error("api request failed")
	sendJSONError(w, http.StatusInternalServerError, "Internal server error")
}
