package services

import "errors"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPostNotFound       = errors.New("post not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateTitle     = errors.New("a post with this title already exists")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("only the admin may manage posts")
	ErrInvalidContent     = errors.New("invalid content")
)
