package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quill/app/models"
	"quill/app/repositories"
	"quill/app/richtext"

	"github.com/sirupsen/logrus"
)

// PostInput is the editable content of a post.
type PostInput struct {
	Title    string
	Subtitle string
	ImgURL   string
	Body     string
}

// PostService handles business logic for blog posts
type PostService struct {
	postRepo    repositories.PostRepository
	commentRepo repositories.CommentRepository
	log         logrus.FieldLogger
	now         func() time.Time
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository, log logrus.FieldLogger) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		log:         log,
		now:         time.Now,
	}
}

// SetClock replaces the time source used to date new posts.
func (s *PostService) SetClock(now func() time.Time) {
	s.now = now
}

// CreatePost publishes a post by author dated today.
func (s *PostService) CreatePost(ctx context.Context, author *models.User, input PostInput) (*models.Post, error) {
	if !author.IsAdmin() {
		return nil, ErrForbidden
	}

	post := &models.Post{}
	if err := s.apply(post, author, input); err != nil {
		return nil, err
	}
	post.Stamp(s.now())

	// Validate post
	if err := validatePost(post); err != nil {
		return nil, err
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEntry) {
			return nil, ErrDuplicateTitle
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.log.WithFields(logrus.Fields{"post_id": post.ID, "author_id": author.ID}).Info("post created")
	return post, nil
}

// GetPost retrieves a post by ID with its comments
func (s *PostService) GetPost(ctx context.Context, id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	// Get comments for post
	comments, err := s.commentRepo.ListByPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	post.Comments = nil
	for _, comment := range comments {
		if err := post.AddComment(comment); err != nil {
			return nil, err
		}
	}
	return post, nil
}

// ListPosts retrieves every post with its author, oldest first
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// UpdatePost overwrites a post's content and hands authorship to editor.
// The publication date is kept.
func (s *PostService) UpdatePost(ctx context.Context, id int, editor *models.User, input PostInput) (*models.Post, error) {
	if !editor.IsAdmin() {
		return nil, ErrForbidden
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	if err := s.apply(post, editor, input); err != nil {
		return nil, err
	}
	if err := validatePost(post); err != nil {
		return nil, err
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateEntry):
			return nil, ErrDuplicateTitle
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.log.WithFields(logrus.Fields{"post_id": post.ID, "author_id": editor.ID}).Info("post updated")
	return post, nil
}

// DeletePost deletes a post and all its comments
func (s *PostService) DeletePost(ctx context.Context, id int, actor *models.User) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	if err := s.postRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.log.WithField("post_id", id).Info("post deleted")
	return nil
}

func (s *PostService) apply(post *models.Post, author *models.User, input PostInput) error {
	body, err := richtext.Sanitize(input.Body)
	if err != nil {
		return fmt.Errorf("failed to sanitize body: %w", err)
	}
	post.Title = input.Title
	post.Subtitle = input.Subtitle
	post.ImgURL = input.ImgURL
	post.Body = body
	return post.SetAuthor(author)
}

// validatePost validates a post's fields
func validatePost(post *models.Post) error {
	if post.Body == "" {
		return fmt.Errorf("%w: body is empty after removing unsafe markup", ErrInvalidContent)
	}
	if err := post.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	return nil
}
