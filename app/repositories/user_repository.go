package repositories

import (
	"context"
	"fmt"

	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// userRecord is the stored form of a user. models.User hides the password
// hash from JSON, so it cannot be persisted as is.
type userRecord struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r userRecord) toModel() *models.User {
	return &models.User{ID: r.ID, Email: r.Email, Password: r.Password, Name: r.Name}
}

// BadgerUserRepository implements UserRepository using BadgerDB
type BadgerUserRepository struct {
	db *badger.DB
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

// Create stores a new user, rejecting an email that is already taken
func (r *BadgerUserRepository) Create(_ context.Context, user *models.User) error {
	return update(r.db, func(txn *badger.Txn) error {
		indexKey := UserEmailIndexPrefix + user.Email
		existing, err := lookupIndex(txn, indexKey)
		if err != nil {
			return err
		}
		if existing != 0 {
			return ErrDuplicateEntry
		}

		id, err := getNextID(txn, UserSeqKey)
		if err != nil {
			return err
		}

		record := userRecord{ID: id, Email: user.Email, Password: user.Password, Name: user.Name}
		if err := setEntity(txn, entityKey(UserKeyPrefix, id), record); err != nil {
			return err
		}
		if err := txn.Set([]byte(indexKey), encodeID(id)); err != nil {
			return err
		}
		user.ID = id
		return nil
	})
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(_ context.Context, id int) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = loadUser(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail retrieves a user through the email index
func (r *BadgerUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := lookupIndex(txn, UserEmailIndexPrefix+email)
		if err != nil {
			return err
		}
		if id == 0 {
			return ErrNotFound
		}
		user, err = loadUser(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func loadUser(txn *badger.Txn, id int) (*models.User, error) {
	var record userRecord
	if err := getEntity(txn, entityKey(UserKeyPrefix, id), &record); err != nil {
		if err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	return record.toModel(), nil
}

// authorCache memoizes author lookups within one transaction.
type authorCache map[int]*models.User

func (c authorCache) get(txn *badger.Txn, id int) (*models.User, error) {
	if user, ok := c[id]; ok {
		return user, nil
	}
	user, err := loadUser(txn, id)
	if err == ErrNotFound {
		// A dangling author is shown as unknown rather than failing the page.
		user, err = nil, nil
	}
	if err != nil {
		return nil, err
	}
	c[id] = user
	return user, nil
}
