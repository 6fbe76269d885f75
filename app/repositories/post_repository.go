package repositories

import (
	"context"
	"fmt"

	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// stored strips relations, they are resolved on read.
func stored(post *models.Post) models.Post {
	out := *post
	out.Author = nil
	out.Comments = nil
	return out
}

// Create creates a new post
func (r *BadgerPostRepository) Create(_ context.Context, post *models.Post) error {
	return update(r.db, func(txn *badger.Txn) error {
		indexKey := PostTitleIndexPrefix + post.Title
		existing, err := lookupIndex(txn, indexKey)
		if err != nil {
			return err
		}
		if existing != 0 {
			return ErrDuplicateEntry
		}

		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		if err := setEntity(txn, entityKey(PostKeyPrefix, id), stored(post)); err != nil {
			return err
		}
		return txn.Set([]byte(indexKey), encodeID(id))
	})
}

// GetByID retrieves a post by ID together with its author
func (r *BadgerPostRepository) GetByID(_ context.Context, id int) (*models.Post, error) {
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		if err := getEntity(txn, entityKey(PostKeyPrefix, id), &post); err != nil {
			return err
		}
		author, err := authorCache{}.get(txn, post.AuthorID)
		if err != nil {
			return err
		}
		post.Author = author
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List retrieves all posts in ID order
func (r *BadgerPostRepository) List(_ context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		authors := authorCache{}
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			if post.Author, err = authors.get(txn, post.AuthorID); err != nil {
				return err
			}
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Update overwrites an existing post, moving its title index if needed
func (r *BadgerPostRepository) Update(_ context.Context, post *models.Post) error {
	return update(r.db, func(txn *badger.Txn) error {
		var existing models.Post
		if err := getEntity(txn, entityKey(PostKeyPrefix, post.ID), &existing); err != nil {
			return err
		}

		if existing.Title != post.Title {
			indexKey := PostTitleIndexPrefix + post.Title
			owner, err := lookupIndex(txn, indexKey)
			if err != nil {
				return err
			}
			if owner != 0 && owner != post.ID {
				return ErrDuplicateEntry
			}
			if err := txn.Delete([]byte(PostTitleIndexPrefix + existing.Title)); err != nil {
				return err
			}
			if err := txn.Set([]byte(indexKey), encodeID(post.ID)); err != nil {
				return err
			}
		}

		return setEntity(txn, entityKey(PostKeyPrefix, post.ID), stored(post))
	})
}

// Delete deletes a post and its comments in one transaction
func (r *BadgerPostRepository) Delete(_ context.Context, id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		var post models.Post
		if err := getEntity(txn, entityKey(PostKeyPrefix, id), &post); err != nil {
			return err
		}

		var commentKeys [][]byte
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		prefix := commentPrefix(id)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			commentKeys = append(commentKeys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range commentKeys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		if err := txn.Delete([]byte(PostTitleIndexPrefix + post.Title)); err != nil {
			return err
		}
		return txn.Delete(entityKey(PostKeyPrefix, id))
	})
}
