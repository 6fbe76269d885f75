package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quill/app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// isDuplicateEntryError matches unique violations from sqlite, mysql and
// postgres for drivers that do not translate them to gorm.ErrDuplicatedKey.
func isDuplicateEntryError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// translateError maps gorm errors onto the repository sentinels.
func translateError(err error, action string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isDuplicateEntryError(err):
		return ErrDuplicateEntry
	default:
		return fmt.Errorf("failed to %s: %w", action, err)
	}
}

// GormUserRepository implements UserRepository on a SQL database
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error, "create user")
}

func (r *GormUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateError(err, "get user")
	}
	return &user, nil
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err, "get user by email")
	}
	return &user, nil
}

// GormPostRepository implements PostRepository on a SQL database
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GormPostRepository
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
	return translateError(err, "create post")
}

func (r *GormPostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		return nil, translateError(err, "get post")
	}
	return &post, nil
}

func (r *GormPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).Preload("Author").Order("id").Find(&posts).Error; err != nil {
		return nil, translateError(err, "list posts")
	}
	return posts, nil
}

func (r *GormPostRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Post
		if err := tx.Select("id").First(&existing, post.ID).Error; err != nil {
			return err
		}
		return tx.Model(&existing).Updates(map[string]interface{}{
			"title":     post.Title,
			"subtitle":  post.Subtitle,
			"date":      post.Date,
			"body":      post.Body,
			"img_url":   post.ImgURL,
			"author_id": post.AuthorID,
		}).Error
	})
	return translateError(err, "update post")
}

func (r *GormPostRepository) Delete(ctx context.Context, id int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Post
		if err := tx.Select("id").First(&existing, id).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&existing).Error
	})
	return translateError(err, "delete post")
}

// GormCommentRepository implements CommentRepository on a SQL database
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Create stores a comment after checking that its post and author exist,
// so stores without foreign key enforcement behave the same.
func (r *GormCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Post{}, comment.PostID).Error; err != nil {
			return err
		}
		if err := tx.Select("id").First(&models.User{}, comment.AuthorID).Error; err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(comment).Error
	})
	return translateError(err, "create comment")
}

func (r *GormCommentRepository) ListByPost(ctx context.Context, postID int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).Preload("Author").Where("post_id = ?", postID).Order("id").Find(&comments).Error
	if err != nil {
		return nil, translateError(err, "list comments")
	}
	return comments, nil
}
