package models

// Validate checks the user's stored fields.
func (u *User) Validate() error {
	return validate.Struct(u)
}

// IsAdmin reports whether u may create, edit and delete posts.
// A nil user is anonymous and never an admin.
func (u *User) IsAdmin() bool {
	return u != nil && u.ID == AdminID
}
