package forms

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func postRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestRegisterForm(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		want   Errors
	}{
		{
			name:   "valid",
			values: url.Values{"email": {" ann@example.com "}, "password": {"pw"}, "name": {"Ann"}},
			want:   nil,
		},
		{
			name:   "all missing",
			values: url.Values{},
			want:   Errors{"email": MsgRequired, "password": MsgRequired, "name": MsgRequired},
		},
		{
			name:   "bad email",
			values: url.Values{"email": {"ann"}, "password": {"pw"}, "name": {"Ann"}},
			want:   Errors{"email": MsgEmail},
		},
		{
			name:   "whitespace name",
			values: url.Values{"email": {"ann@example.com"}, "password": {"pw"}, "name": {"   "}},
			want:   Errors{"name": MsgRequired},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := ParseRegisterForm(postRequest(tt.values))
			assert.Equal(t, tt.want, Validate(form))
		})
	}

	form := ParseRegisterForm(postRequest(url.Values{"email": {" ann@example.com "}, "password": {" pw "}}))
	assert.Equal(t, "ann@example.com", form.Email)
	assert.Equal(t, " pw ", form.Password)
}

func TestLoginForm(t *testing.T) {
	form := ParseLoginForm(postRequest(url.Values{"email": {"not-an-email"}, "password": {""}}))
	assert.Equal(t, Errors{"email": MsgEmail, "password": MsgRequired}, Validate(form))
}

func TestPostForm(t *testing.T) {
	valid := url.Values{
		"title":    {"The Life of Cactus"},
		"subtitle": {"Who knew"},
		"img_url":  {"https://images.unsplash.com/photo.jpg"},
		"body":     {"<p>Body</p>"},
	}
	assert.Nil(t, Validate(ParsePostForm(postRequest(valid))))

	badURL := url.Values{}
	for k, v := range valid {
		badURL[k] = v
	}
	badURL.Set("img_url", "cactus.jpg")
	assert.Equal(t, Errors{"img_url": MsgURL}, Validate(ParsePostForm(postRequest(badURL))))

	longTitle := url.Values{}
	for k, v := range valid {
		longTitle[k] = v
	}
	longTitle.Set("title", strings.Repeat("a", 251))
	assert.Equal(t, Errors{"title": MsgTooLong}, Validate(ParsePostForm(postRequest(longTitle))))
}

func TestCommentForm(t *testing.T) {
	assert.Equal(t, Errors{"comment_text": MsgRequired}, Validate(ParseCommentForm(postRequest(url.Values{}))))
	assert.Nil(t, Validate(ParseCommentForm(postRequest(url.Values{"comment_text": {"Nice post"}}))))
}
