package services

import (
	"context"
	"errors"
	"fmt"

	"quill/app/auth"
	"quill/app/models"
	"quill/app/repositories"

	"github.com/sirupsen/logrus"
)

// UserService handles registration and authentication
type UserService struct {
	userRepo repositories.UserRepository
	hasher   *auth.Hasher
	log      logrus.FieldLogger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.UserRepository, hasher *auth.Hasher, log logrus.FieldLogger) *UserService {
	return &UserService{userRepo: userRepo, hasher: hasher, log: log}
}

// Register creates an account. ErrEmailTaken is returned when the email is
// in use, including when a concurrent registration wins the race.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	logCtx := s.log.WithField("email", email)

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		logCtx.Info("registration rejected: email taken")
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: email, Password: hash, Name: name}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEntry) {
			logCtx.Info("registration rejected: email taken concurrently")
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logCtx.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Authenticate returns the user owning email when password matches.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	logCtx := s.log.WithField("email", email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		logCtx.Info("login failed: unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := s.hasher.Verify(user.Password, password)
	if err != nil {
		logCtx.WithError(err).Warn("stored password hash is unreadable")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		logCtx.Info("login failed: wrong password")
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser loads a user by ID
func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
