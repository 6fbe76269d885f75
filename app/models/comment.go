package models

import "errors"

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	return validate.Struct(c)
}

// SetPost links the comment to its post.
func (c *Comment) SetPost(post *Post) error {
	if post == nil {
		return errors.New("post cannot be nil")
	}
	c.PostID = post.ID
	return nil
}

// SetAuthor sets the author and updates the AuthorID
func (c *Comment) SetAuthor(author *User) error {
	if author == nil {
		return errors.New("author cannot be nil")
	}
	c.Author = author
	c.AuthorID = author.ID
	return nil
}
