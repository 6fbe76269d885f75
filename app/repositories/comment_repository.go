package repositories

import (
	"context"
	"fmt"

	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// Create creates a new comment. Both the post and the author must exist.
func (r *BadgerCommentRepository) Create(_ context.Context, comment *models.Comment) error {
	return update(r.db, func(txn *badger.Txn) error {
		if _, err := txn.Get(entityKey(PostKeyPrefix, comment.PostID)); err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrNotFound
			}
			return err
		}
		if _, err := loadUser(txn, comment.AuthorID); err != nil {
			return err
		}

		id, err := getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}
		comment.ID = id

		record := *comment
		record.Author = nil
		// Save comment with post ID in key for efficient listing
		return setEntity(txn, commentKey(comment.PostID, id), record)
	})
}

// ListByPost retrieves all comments for a post in ID order
func (r *BadgerCommentRepository) ListByPost(_ context.Context, postID int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		authors := authorCache{}
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := commentPrefix(postID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var comment models.Comment
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &comment)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal comment: %w", err)
			}
			if comment.Author, err = authors.get(txn, comment.AuthorID); err != nil {
				return err
			}
			comments = append(comments, &comment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}
