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

// Flash messages shown after failed account actions.
const (
	FlashEmailTaken    = "This email is already registered! Please register a different email address or log in instead."
	FlashBadLogin      = "Email or Password is incorrect. Please try again."
	FlashLoginRequired = "You need to login to leave comments."
)

// AuthController handles registration, login and logout
type AuthController struct {
	base
	userService *services.UserService
}

// NewAuthController creates a new AuthController
func NewAuthController(userService *services.UserService, renderer *views.Renderer, sessions *auth.SessionManager, log logrus.FieldLogger) *AuthController {
	return &AuthController{
		base:        base{views: renderer, sessions: sessions, log: log},
		userService: userService,
	}
}

// Register shows the sign up form and creates accounts
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		data := c.page(w, r, "Register")
		data.Form = &forms.RegisterForm{}
		c.render(w, r, http.StatusOK, "register", data)
		return
	}

	form := forms.ParseRegisterForm(r)
	if errs := forms.Validate(form); errs != nil {
		data := c.page(w, r, "Register")
		data.Form, data.Errors = form, errs
		c.render(w, r, http.StatusOK, "register", data)
		return
	}

	user, err := c.userService.Register(r.Context(), form.Email, form.Password, form.Name)
	if errors.Is(err, services.ErrEmailTaken) {
		c.flashRedirect(w, r, FlashEmailTaken, "/register")
		return
	}
	if err != nil {
		c.serverError(w, r, err)
		return
	}

	if err := c.sessions.Login(w, r, user.ID); err != nil {
		c.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Login shows the login form and authenticates users
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		data := c.page(w, r, "Log In")
		data.Form = &forms.LoginForm{}
		c.render(w, r, http.StatusOK, "login", data)
		return
	}

	form := forms.ParseLoginForm(r)
	if errs := forms.Validate(form); errs != nil {
		data := c.page(w, r, "Log In")
		data.Form, data.Errors = form, errs
		c.render(w, r, http.StatusOK, "login", data)
		return
	}

	user, err := c.userService.Authenticate(r.Context(), form.Email, form.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.flashRedirect(w, r, FlashBadLogin, "/login")
		return
	}
	if err != nil {
		c.serverError(w, r, err)
		return
	}

	if err := c.sessions.Login(w, r, user.ID); err != nil {
		c.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout ends the session, whether or not anyone was logged in
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := c.sessions.Logout(w, r); err != nil {
		c.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
