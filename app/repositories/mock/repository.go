package mock

import (
	"context"
	"sort"
	"sync"

	"quill/app/models"
	"quill/app/repositories"
)

// DB is an in-memory stand-in for a database shared by the mock repositories.
type DB struct {
	mutex sync.RWMutex

	users    map[int]models.User
	posts    map[int]models.Post
	comments map[int]models.Comment

	nextUserID    int
	nextPostID    int
	nextCommentID int
}

// NewDB returns an empty in-memory database.
func NewDB() *DB {
	db := &DB{}
	db.Clear()
	return db
}

// Clear drops all data and resets the ID sequences.
func (db *DB) Clear() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.users = make(map[int]models.User)
	db.posts = make(map[int]models.Post)
	db.comments = make(map[int]models.Comment)
	db.nextUserID, db.nextPostID, db.nextCommentID = 1, 1, 1
}

// Store returns a repositories.Store backed by db.
func (db *DB) Store() *repositories.Store {
	return &repositories.Store{
		Location: repositories.Location{Backend: "memory"},
		Users:    &UserRepository{db: db},
		Posts:    &PostRepository{db: db},
		Comments: &CommentRepository{db: db},
	}
}

// CommentCount returns how many comments are stored.
func (db *DB) CommentCount() int {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return len(db.comments)
}

// UserCount returns how many users are stored.
func (db *DB) UserCount() int {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return len(db.users)
}

func (db *DB) author(id int) *models.User {
	user, ok := db.users[id]
	if !ok {
		return nil
	}
	return &user
}

// UserRepository implementation
type UserRepository struct{ db *DB }

func NewUserRepository(db *DB) *UserRepository { return &UserRepository{db: db} }

func (m *UserRepository) Create(_ context.Context, user *models.User) error {
	m.db.mutex.Lock()
	defer m.db.mutex.Unlock()
	for _, existing := range m.db.users {
		if existing.Email == user.Email {
			return repositories.ErrDuplicateEntry
		}
	}
	user.ID = m.db.nextUserID
	m.db.nextUserID++
	m.db.users[user.ID] = *user
	return nil
}

func (m *UserRepository) GetByID(_ context.Context, id int) (*models.User, error) {
	m.db.mutex.RLock()
	defer m.db.mutex.RUnlock()
	if user := m.db.author(id); user != nil {
		return user, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.db.mutex.RLock()
	defer m.db.mutex.RUnlock()
	for _, user := range m.db.users {
		if user.Email == email {
			found := user
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// PostRepository implementation
type PostRepository struct{ db *DB }

func NewPostRepository(db *DB) *PostRepository { return &PostRepository{db: db} }

func (m *PostRepository) titleTaken(title string, except int) bool {
	for id, post := range m.db.posts {
		if post.Title == title && id != except {
			return true
		}
	}
	return false
}

func (m *PostRepository) Create(_ context.Context, post *models.Post) error {
	m.db.mutex.Lock()
	defer m.db.mutex.Unlock()
	if m.titleTaken(post.Title, 0) {
		return repositories.ErrDuplicateEntry
	}
	post.ID = m.db.nextPostID
	m.db.nextPostID++
	record := *post
	record.Author, record.Comments = nil, nil
	m.db.posts[post.ID] = record
	return nil
}

func (m *PostRepository) GetByID(_ context.Context, id int) (*models.Post, error) {
	m.db.mutex.RLock()
	defer m.db.mutex.RUnlock()
	post, exists := m.db.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	post.Author = m.db.author(post.AuthorID)
	return &post, nil
}

func (m *PostRepository) List(_ context.Context) ([]*models.Post, error) {
	m.db.mutex.RLock()
	defer m.db.mutex.RUnlock()
	posts := make([]*models.Post, 0, len(m.db.posts))
	for _, post := range m.db.posts {
		post := post
		post.Author = m.db.author(post.AuthorID)
		posts = append(posts, &post)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts, nil
}

func (m *PostRepository) Update(_ context.Context, post *models.Post) error {
	m.db.mutex.Lock()
	defer m.db.mutex.Unlock()
	if _, exists := m.db.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	if m.titleTaken(post.Title, post.ID) {
		return repositories.ErrDuplicateEntry
	}
	record := *post
	record.Author, record.Comments = nil, nil
	m.db.posts[post.ID] = record
	return nil
}

func (m *PostRepository) Delete(_ context.Context, id int) error {
	m.db.mutex.Lock()
	defer m.db.mutex.Unlock()
	if _, exists := m.db.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	for commentID, comment := range m.db.comments {
		if comment.PostID == id {
			delete(m.db.comments, commentID)
		}
	}
	delete(m.db.posts, id)
	return nil
}

// CommentRepository implementation
type CommentRepository struct{ db *DB }

func NewCommentRepository(db *DB) *CommentRepository { return &CommentRepository{db: db} }

func (m *CommentRepository) Create(_ context.Context, comment *models.Comment) error {
	m.db.mutex.Lock()
	defer m.db.mutex.Unlock()
	if _, exists := m.db.posts[comment.PostID]; !exists {
		return repositories.ErrNotFound
	}
	if _, exists := m.db.users[comment.AuthorID]; !exists {
		return repositories.ErrNotFound
	}
	comment.ID = m.db.nextCommentID
	m.db.nextCommentID++
	record := *comment
	record.Author = nil
	m.db.comments[comment.ID] = record
	return nil
}

func (m *CommentRepository) ListByPost(_ context.Context, postID int) ([]*models.Comment, error) {
	m.db.mutex.RLock()
	defer m.db.mutex.RUnlock()
	var comments []*models.Comment
	for _, comment := range m.db.comments {
		if comment.PostID == postID {
			comment := comment
			comment.Author = m.db.author(comment.AuthorID)
			comments = append(comments, &comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}
