// Package forms decodes and validates the HTML forms of the blog.
package forms

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Messages shown next to invalid fields.
const (
	MsgRequired = "This field is required."
	MsgEmail    = "Must be a valid email address, i.e. your_email@email.com"
	MsgURL      = "Invalid URL."
	MsgTooLong  = "Field is too long."
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their form name, not the Go field name
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// Errors maps a form field name to the message to display beside it.
type Errors map[string]string

// Validate runs the struct's validate tags and returns per-field messages,
// or nil when the form is valid.
func Validate(form interface{}) Errors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return Errors{"": err.Error()}
	}

	out := Errors{}
	for _, fe := range fieldErrors {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "email":
		return MsgEmail
	case "url":
		return MsgURL
	case "max":
		return MsgTooLong
	default:
		return "Invalid value."
	}
}

// field reads a trimmed form value.
func field(r *http.Request, name string) string {
	return strings.TrimSpace(r.PostFormValue(name))
}

// RegisterForm is submitted to create an account.
type RegisterForm struct {
	Email    string `form:"email" validate:"required,email,max=100"`
	Password string `form:"password" validate:"required"`
	Name     string `form:"name" validate:"required,max=100"`
}

// ParseRegisterForm reads a RegisterForm from r. The password is kept verbatim.
func ParseRegisterForm(r *http.Request) *RegisterForm {
	return &RegisterForm{
		Email:    field(r, "email"),
		Password: r.PostFormValue("password"),
		Name:     field(r, "name"),
	}
}

// LoginForm is submitted to authenticate.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// ParseLoginForm reads a LoginForm from r.
func ParseLoginForm(r *http.Request) *LoginForm {
	return &LoginForm{
		Email:    field(r, "email"),
		Password: r.PostFormValue("password"),
	}
}

// PostForm creates or edits a post.
type PostForm struct {
	Title    string `form:"title" validate:"required,max=250"`
	Subtitle string `form:"subtitle" validate:"required,max=250"`
	ImgURL   string `form:"img_url" validate:"required,url,max=500"`
	Body     string `form:"body" validate:"required"`
}

// ParsePostForm reads a PostForm from r.
func ParsePostForm(r *http.Request) *PostForm {
	return &PostForm{
		Title:    field(r, "title"),
		Subtitle: field(r, "subtitle"),
		ImgURL:   field(r, "img_url"),
		Body:     field(r, "body"),
	}
}

// CommentForm adds a comment to a post.
type CommentForm struct {
	Text string `form:"comment_text" json:"text" validate:"required"`
}

// ParseCommentForm reads a CommentForm from r.
func ParseCommentForm(r *http.Request) *CommentForm {
	return &CommentForm{Text: field(r, "comment_text")}
}
