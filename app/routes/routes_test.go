package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"quill/app/controllers"
	"quill/app/forms"
	"quill/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstUserIsAdmin(t *testing.T) {
	app := newTestApp(t)

	ann := app.browser(t)
	resp := ann.register("ann@example.com", "Ann")
	assert.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, "/", resp.location)

	user, err := app.store.Users.GetByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.NotEqual(t, "password", user.Password)

	assert.Equal(t, http.StatusOK, ann.get("/new-post").status)
	resp = ann.post("/new-post", postValues("The Life of Cactus"))
	assert.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, "/", resp.location)

	posts := app.posts(t)
	require.Len(t, posts, 1)
	assert.Equal(t, user.ID, posts[0].AuthorID)
	assert.NotEmpty(t, posts[0].Date)

	bob := app.browser(t)
	bob.register("bob@example.com", "Bob")
	postID := posts[0].ID

	t.Run("reader is forbidden from admin routes", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, bob.get("/new-post").status)
		assert.Equal(t, http.StatusForbidden, bob.post("/new-post", postValues("Bob was here")).status)
		assert.Equal(t, http.StatusForbidden, bob.get("/edit-post/1").status)
		assert.Equal(t, http.StatusForbidden, bob.post("/edit-post/1", postValues("Hijacked")).status)
		assert.Equal(t, http.StatusForbidden, bob.get("/delete/1").status)

		posts := app.posts(t)
		require.Len(t, posts, 1)
		assert.Equal(t, "The Life of Cactus", posts[0].Title)
	})

	t.Run("anonymous is forbidden, not redirected", func(t *testing.T) {
		anon := app.browser(t)
		resp := anon.get("/delete/1")
		assert.Equal(t, http.StatusForbidden, resp.status)
		assert.Empty(t, resp.location)
		// the guard runs before the lookup
		assert.Equal(t, http.StatusForbidden, anon.get("/edit-post/999").status)
	})

	t.Run("front page shows admin controls only to the admin", func(t *testing.T) {
		assert.Contains(t, ann.get("/").body, "/delete/1")
		page := bob.get("/")
		assert.Contains(t, page.body, "The Life of Cactus")
		assert.NotContains(t, page.body, "/delete/1")
	})

	t.Run("edit overwrites the post and keeps the date", func(t *testing.T) {
		form := ann.get("/edit-post/1")
		assert.Equal(t, http.StatusOK, form.status)
		assert.Contains(t, form.body, `value="The Life of Cactus"`)

		values := postValues("The Life of Cactus")
		values.Set("subtitle", "Revised subtitle")
		resp := ann.post("/edit-post/1", values)
		assert.Equal(t, http.StatusSeeOther, resp.status)
		assert.Equal(t, "/post/1", resp.location)

		post, err := app.store.Posts.GetByID(context.Background(), postID)
		require.NoError(t, err)
		assert.Equal(t, "Revised subtitle", post.Subtitle)
		assert.Equal(t, posts[0].Date, post.Date)
	})

	t.Run("duplicate title re-renders the form", func(t *testing.T) {
		resp := ann.post("/new-post", postValues("The Life of Cactus"))
		assert.Equal(t, http.StatusOK, resp.status)
		assert.Contains(t, resp.body, "A post with this title already exists.")
		assert.Len(t, app.posts(t), 1)
	})

	t.Run("invalid post form re-renders with messages", func(t *testing.T) {
		values := postValues("Another")
		values.Set("img_url", "not a url")
		resp := ann.post("/new-post", values)
		assert.Equal(t, http.StatusOK, resp.status)
		assert.Contains(t, resp.body, forms.MsgURL)
		assert.Len(t, app.posts(t), 1)
	})
}

func TestRegistration(t *testing.T) {
	app := newTestApp(t)
	app.browser(t).register("ann@example.com", "Ann")

	t.Run("duplicate email", func(t *testing.T) {
		b := app.browser(t)
		resp := b.register("ann@example.com", "Impostor")
		assert.Equal(t, http.StatusSeeOther, resp.status)
		assert.Equal(t, "/register", resp.location)

		_, err := app.store.Users.GetByID(context.Background(), 2)
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		page := b.get("/register")
		assert.Contains(t, page.body, controllers.FlashEmailTaken)
		assert.NotContains(t, page.body, "Log Out")
	})

	t.Run("invalid form", func(t *testing.T) {
		resp := app.browser(t).register("not-an-email", "")
		assert.Equal(t, http.StatusOK, resp.status)
		assert.Contains(t, resp.body, forms.MsgEmail)
		assert.Contains(t, resp.body, forms.MsgRequired)
	})
}

func TestLoginAndLogout(t *testing.T) {
	app := newTestApp(t)
	app.browser(t).register("ann@example.com", "Ann")

	for name, creds := range map[string][2]string{
		"wrong password": {"ann@example.com", "nope"},
		"unknown email":  {"nobody@example.com", "password"},
	} {
		t.Run(name, func(t *testing.T) {
			b := app.browser(t)
			resp := b.login(creds[0], creds[1])
			assert.Equal(t, http.StatusSeeOther, resp.status)
			assert.Equal(t, "/login", resp.location)

			page := b.get("/login")
			assert.Contains(t, page.body, controllers.FlashBadLogin)
			assert.NotContains(t, b.get("/").body, "Log Out")
		})
	}

	t.Run("correct credentials then logout", func(t *testing.T) {
		b := app.browser(t)
		resp := b.login("ann@example.com", "password")
		assert.Equal(t, http.StatusSeeOther, resp.status)
		assert.Equal(t, "/", resp.location)
		assert.Contains(t, b.get("/").body, "Log Out")
		assert.Equal(t, http.StatusOK, b.get("/new-post").status)

		resp = b.get("/logout")
		assert.Equal(t, http.StatusSeeOther, resp.status)
		assert.Equal(t, "/", resp.location)
		assert.NotContains(t, b.get("/").body, "Log Out")
		assert.Equal(t, http.StatusForbidden, b.get("/new-post").status)
	})

	t.Run("logout while anonymous", func(t *testing.T) {
		resp := app.browser(t).get("/logout")
		assert.Equal(t, http.StatusSeeOther, resp.status)
	})
}

func TestComments(t *testing.T) {
	app := newTestApp(t)
	ann := app.browser(t)
	ann.register("ann@example.com", "Ann")
	ann.post("/new-post", postValues("Commented"))

	t.Run("anonymous comment is refused", func(t *testing.T) {
		anon := app.browser(t)
		resp := anon.post("/post/1", url.Values{"comment_text": {"Hello"}})
		assert.Equal(t, http.StatusSeeOther, resp.status)
		assert.Equal(t, "/login", resp.location)
		assert.Empty(t, app.comments(t, 1))
		assert.Contains(t, anon.get("/login").body, controllers.FlashLoginRequired)
	})

	t.Run("empty comment re-renders", func(t *testing.T) {
		resp := ann.post("/post/1", url.Values{"comment_text": {"  "}})
		assert.Equal(t, http.StatusOK, resp.status)
		assert.Contains(t, resp.body, forms.MsgRequired)
		assert.Empty(t, app.comments(t, 1))
	})

	t.Run("reader comment is stored and shown", func(t *testing.T) {
		bob := app.browser(t)
		bob.register("bob@example.com", "Bob")
		resp := bob.post("/post/1", url.Values{"comment_text": {"<p>Lovely cactus</p><script>alert(1)</script>"}})
		assert.Equal(t, http.StatusOK, resp.status)
		assert.Contains(t, resp.body, "<p>Lovely cactus</p>")
		assert.NotContains(t, resp.body, "alert(1)")
		assert.Contains(t, resp.body, "gravatar.com/avatar/")

		comments := app.comments(t, 1)
		require.Len(t, comments, 1)
		assert.Equal(t, 2, comments[0].AuthorID)
	})

	t.Run("comment on missing post", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, ann.post("/post/999", url.Values{"comment_text": {"Hi"}}).status)
	})
}

func TestDeleteCascadesComments(t *testing.T) {
	app := newTestApp(t)
	ann := app.browser(t)
	ann.register("ann@example.com", "Ann")
	ann.post("/new-post", postValues("Doomed"))
	ann.post("/new-post", postValues("Survivor"))
	ann.post("/post/1", url.Values{"comment_text": {"first"}})
	ann.post("/post/1", url.Values{"comment_text": {"second"}})
	ann.post("/post/2", url.Values{"comment_text": {"stays"}})
	require.Len(t, app.comments(t, 1), 2)

	resp := ann.get("/delete/1")
	assert.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, "/", resp.location)

	posts := app.posts(t)
	require.Len(t, posts, 1)
	assert.Equal(t, "Survivor", posts[0].Title)
	assert.Empty(t, app.comments(t, 1))
	assert.Len(t, app.comments(t, 2), 1)

	assert.Equal(t, http.StatusNotFound, ann.get("/delete/1").status)
	assert.Equal(t, http.StatusNotFound, ann.get("/post/1").status)
	assert.Equal(t, http.StatusNotFound, ann.get("/edit-post/1").status)
}

func TestStaticPagesAndAssets(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	tests := []struct {
		path   string
		status int
		text   string
	}{
		{path: "/", status: http.StatusOK, text: "No posts yet."},
		{path: "/about", status: http.StatusOK, text: "About Me"},
		{path: "/contact", status: http.StatusOK, text: "Contact Me"},
		{path: "/static/styles.css", status: http.StatusOK, text: ".container"},
		{path: "/post/1", status: http.StatusNotFound, text: "Post not found"},
		{path: "/nowhere", status: http.StatusNotFound, text: "Page not found"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := b.get(tt.path)
			assert.Equal(t, tt.status, resp.status)
			assert.Contains(t, resp.body, tt.text)
		})
	}

}

func TestAPI(t *testing.T) {
	app := newTestApp(t)
	ann := app.browser(t)
	ann.register("ann@example.com", "Ann")
	ann.post("/new-post", postValues("Via API"))
	app.browser(t).register("bob@example.com", "Bob")

	client := app.browser(t)

	t.Run("list posts", func(t *testing.T) {
		resp := client.get("/api/posts")
		assert.Equal(t, http.StatusOK, resp.status)
		assert.Equal(t, "application/json", resp.header.Get("Content-Type"))

		var body struct {
			Posts []struct {
				ID     int    `json:"id"`
				Title  string `json:"title"`
				Author struct {
					Name     string `json:"name"`
					Password string `json:"password"`
				} `json:"author"`
			} `json:"posts"`
		}
		require.NoError(t, json.Unmarshal([]byte(resp.body), &body))
		require.Len(t, body.Posts, 1)
		assert.Equal(t, "Via API", body.Posts[0].Title)
		assert.Equal(t, "Ann", body.Posts[0].Author.Name)
		assert.Empty(t, body.Posts[0].Author.Password)
	})

	t.Run("missing post", func(t *testing.T) {
		resp := client.get("/api/posts/999")
		assert.Equal(t, http.StatusNotFound, resp.status)
		assert.JSONEq(t, `{"error":"Post not found"}`, resp.body)
		assert.Equal(t, http.StatusNotFound, client.get("/api/unknown").status)
	})

	t.Run("token with bad credentials", func(t *testing.T) {
		resp := client.postJSON("/api/token", "", map[string]string{"email": "bob@example.com", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, resp.status)
	})

	t.Run("comment requires a token", func(t *testing.T) {
		resp := client.postJSON("/api/posts/1/comments", "", map[string]string{"text": "hi"})
		assert.Equal(t, http.StatusUnauthorized, resp.status)
		resp = client.postJSON("/api/posts/1/comments", "garbage", map[string]string{"text": "hi"})
		assert.Equal(t, http.StatusUnauthorized, resp.status)
		assert.Empty(t, app.comments(t, 1))
	})

	t.Run("comment with a token", func(t *testing.T) {
		resp := client.postJSON("/api/token", "", map[string]string{"email": "bob@example.com", "password": "password"})
		require.Equal(t, http.StatusOK, resp.status)
		var token struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal([]byte(resp.body), &token))
		require.NotEmpty(t, token.Token)

		resp = client.postJSON("/api/posts/1/comments", token.Token, map[string]string{"text": "From the API"})
		assert.Equal(t, http.StatusCreated, resp.status)
		comments := app.comments(t, 1)
		require.Len(t, comments, 1)
		assert.Equal(t, 2, comments[0].AuthorID)

		resp = client.postJSON("/api/posts/999/comments", token.Token, map[string]string{"text": "lost"})
		assert.Equal(t, http.StatusNotFound, resp.status)
		resp = client.postJSON("/api/posts/1/comments", token.Token, map[string]string{"text": ""})
		assert.Equal(t, http.StatusBadRequest, resp.status)

		show := client.get("/api/posts/1")
		assert.Contains(t, show.body, "From the API")
	})
}

func TestNotFoundPageKeepsSessionUser(t *testing.T) {
	app := newTestApp(t)
	ann := app.browser(t)
	ann.register("ann@example.com", "Ann")

	resp := ann.get("/nowhere")
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Contains(t, resp.body, "Page not found")
	assert.Contains(t, resp.body, "Log Out")
	assert.NotContains(t, resp.body, `href="/login"`)
}
