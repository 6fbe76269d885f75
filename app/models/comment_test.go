package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommentValidation(t *testing.T) {
	tests := []struct {
		name    string
		comment *Comment
		wantErr bool
	}{
		{
			name:    "valid comment",
			comment: &Comment{Text: "<p>Great read</p>", AuthorID: 2, PostID: 1},
		},
		{
			name:    "empty text",
			comment: &Comment{Text: "", AuthorID: 2, PostID: 1},
			wantErr: true,
		},
		{
			name:    "missing author",
			comment: &Comment{Text: "Hi", PostID: 1},
			wantErr: true,
		},
		{
			name:    "missing post",
			comment: &Comment{Text: "Hi", AuthorID: 2},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.comment.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCommentSetPost(t *testing.T) {
	comment := &Comment{Text: "Test Comment"}

	t.Run("set valid post", func(t *testing.T) {
		err := comment.SetPost(&Post{ID: 3})
		assert.NoError(t, err)
		assert.Equal(t, 3, comment.PostID)
	})

	t.Run("set nil post", func(t *testing.T) {
		assert.Error(t, comment.SetPost(nil))
	})
}

func TestCommentSetAuthor(t *testing.T) {
	comment := &Comment{Text: "Test Comment"}
	assert.NoError(t, comment.SetAuthor(&User{ID: 5}))
	assert.Equal(t, 5, comment.AuthorID)
	assert.Error(t, comment.SetAuthor(nil))
}
