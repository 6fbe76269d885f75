package models

import "github.com/go-playground/validator/v10"

// AdminID is the id of the single account allowed to manage posts.
const AdminID = 1

// DateLayout is how a post's publication date is stored and shown.
const DateLayout = "January 02, 2006"

var validate = validator.New()

// User is a registered reader or author.
type User struct {
	ID       int    `gorm:"primaryKey" json:"id" validate:"gte=0"`
	Email    string `gorm:"size:100;uniqueIndex;not null" json:"email" validate:"required,email,max=100"`
	Password string `gorm:"size:200;not null" json:"-" validate:"required"`
	Name     string `gorm:"size:100;not null" json:"name" validate:"required,max=100"`
}

// Post is a blog article. Its comments are removed with it.
type Post struct {
	ID       int        `gorm:"primaryKey" json:"id" validate:"gte=0"`
	Title    string     `gorm:"size:250;uniqueIndex;not null" json:"title" validate:"required,max=250"`
	Subtitle string     `gorm:"size:250;not null" json:"subtitle" validate:"required,max=250"`
	Date     string     `gorm:"size:250;not null" json:"date" validate:"required"`
	Body     string     `gorm:"type:text;not null" json:"body" validate:"required"`
	ImgURL   string     `gorm:"column:img_url;size:500;not null" json:"img_url" validate:"required,url,max=500"`
	AuthorID int        `gorm:"index;not null" json:"author_id" validate:"gt=0"`
	Author   *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty" validate:"-"`
	Comments []*Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty" validate:"-"`
}

// TableName keeps the table name used by earlier deployments.
func (Post) TableName() string {
	return "blog_posts"
}

// Comment is a reader's remark on a post.
type Comment struct {
	ID       int    `gorm:"primaryKey" json:"id" validate:"gte=0"`
	Text     string `gorm:"type:text;not null" json:"text" validate:"required"`
	AuthorID int    `gorm:"index;not null" json:"author_id" validate:"gt=0"`
	Author   *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty" validate:"-"`
	PostID   int    `gorm:"index;not null" json:"post_id" validate:"gt=0"`
}
