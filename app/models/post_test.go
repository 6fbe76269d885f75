package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validPost() *Post {
	return &Post{
		Title:    "The Life of Cactus",
		Subtitle: "Who knew that cacti lived such interesting lives.",
		Date:     "October 20, 2020",
		Body:     "<p>Nori grape silver beet broccoli kombu beet greens fava bean.</p>",
		ImgURL:   "https://images.unsplash.com/photo-1530482054429-cc491f61333b",
		AuthorID: 1,
	}
}

func TestPostValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Post)
		wantErr bool
	}{
		{name: "valid post", mutate: func(p *Post) {}},
		{name: "missing title", mutate: func(p *Post) { p.Title = "" }, wantErr: true},
		{name: "title too long", mutate: func(p *Post) { p.Title = string(make([]byte, 251)) }, wantErr: true},
		{name: "missing subtitle", mutate: func(p *Post) { p.Subtitle = "" }, wantErr: true},
		{name: "missing body", mutate: func(p *Post) { p.Body = "" }, wantErr: true},
		{name: "image url not a url", mutate: func(p *Post) { p.ImgURL = "cactus.jpg" }, wantErr: true},
		{name: "no author", mutate: func(p *Post) { p.AuthorID = 0 }, wantErr: true},
		{name: "no date", mutate: func(p *Post) { p.Date = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := validPost()
			tt.mutate(post)
			err := post.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostStamp(t *testing.T) {
	post := &Post{}
	post.Stamp(time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, "March 05, 2024", post.Date)
}

func TestPostSetAuthor(t *testing.T) {
	post := validPost()

	t.Run("set valid author", func(t *testing.T) {
		author := &User{ID: 2, Name: "Bob"}
		assert.NoError(t, post.SetAuthor(author))
		assert.Equal(t, 2, post.AuthorID)
		assert.Equal(t, author, post.Author)
	})

	t.Run("set nil author", func(t *testing.T) {
		assert.Error(t, post.SetAuthor(nil))
	})
}

func TestPostAddComment(t *testing.T) {
	post := validPost()
	post.ID = 4

	comment := &Comment{Text: "Nice"}
	assert.NoError(t, post.AddComment(comment))
	assert.Equal(t, 4, comment.PostID)
	assert.Len(t, post.Comments, 1)

	assert.Error(t, post.AddComment(nil))
}
