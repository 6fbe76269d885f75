package services

import (
	"context"
	"errors"
	"fmt"

	"quill/app/models"
	"quill/app/repositories"
	"quill/app/richtext"

	"github.com/sirupsen/logrus"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
	log         logrus.FieldLogger
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, log logrus.FieldLogger) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		log:         log,
	}
}

// CreateComment adds author's comment to the post. Anonymous callers get
// ErrUnauthenticated and nothing is stored.
func (s *CommentService) CreateComment(ctx context.Context, author *models.User, postID int, text string) (*models.Comment, error) {
	if author == nil {
		return nil, ErrUnauthenticated
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	clean, err := richtext.Sanitize(text)
	if err != nil {
		return nil, fmt.Errorf("failed to sanitize comment: %w", err)
	}

	comment := &models.Comment{Text: clean}
	if err := comment.SetPost(post); err != nil {
		return nil, err
	}
	if err := comment.SetAuthor(author); err != nil {
		return nil, err
	}
	if err := comment.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.log.WithFields(logrus.Fields{"comment_id": comment.ID, "post_id": postID, "author_id": author.ID}).Info("comment created")
	return comment, nil
}

// ListComments retrieves the comments of a post, oldest first
func (s *CommentService) ListComments(ctx context.Context, postID int) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
