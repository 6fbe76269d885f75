package models

import (
	"errors"
	"time"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	return validate.Struct(p)
}

// Stamp sets the publication date from t.
func (p *Post) Stamp(t time.Time) {
	p.Date = t.Format(DateLayout)
}

// SetAuthor sets the author and updates the AuthorID
func (p *Post) SetAuthor(author *User) error {
	if author == nil {
		return errors.New("author cannot be nil")
	}
	p.Author = author
	p.AuthorID = author.ID
	return nil
}

// AddComment adds a comment to the post
func (p *Post) AddComment(comment *Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}

	comment.PostID = p.ID
	p.Comments = append(p.Comments, comment)
	return nil
}
