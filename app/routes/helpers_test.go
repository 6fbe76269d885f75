package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quill/app/config"
	"quill/app/models"
	"quill/app/repositories"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	server *httptest.Server
	store  *repositories.Store
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:             "test",
		SecretKey:          "test-secret",
		SessionMaxAge:      time.Hour,
		TokenExpiry:        time.Hour,
		PasswordIterations: 1000,
		RateLimitMax:       10,
		RateLimitWindow:    time.Minute,
	}
}

// newTestApp serves the full router over a fresh sqlite database.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	store, err := repositories.Open(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "posts.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	router, err := SetupRoutes(Dependencies{Config: testConfig(), Log: log, Store: store})
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testApp{server: server, store: store}
}

// browser is a client with its own cookie jar that does not follow redirects.
type browser struct {
	t      *testing.T
	app    *testApp
	client *http.Client
}

func (app *testApp) browser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:   t,
		app: app,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type page struct {
	status   int
	location string
	header   http.Header
	body     string
}

func (b *browser) do(req *http.Request) page {
	b.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return page{
		status:   resp.StatusCode,
		location: resp.Header.Get("Location"),
		header:   resp.Header,
		body:     string(body),
	}
}

func (b *browser) get(path string) page {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.app.server.URL+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) page {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.app.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) postJSON(path, token string, payload interface{}) page {
	b.t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(b.t, err)
	req, err := http.NewRequest(http.MethodPost, b.app.server.URL+path, strings.NewReader(string(data)))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return b.do(req)
}

func (b *browser) register(email, name string) page {
	b.t.Helper()
	return b.post("/register", url.Values{"email": {email}, "password": {"password"}, "name": {name}})
}

func (b *browser) login(email, password string) page {
	b.t.Helper()
	return b.post("/login", url.Values{"email": {email}, "password": {password}})
}

func postValues(title string) url.Values {
	return url.Values{
		"title":    {title},
		"subtitle": {"Who knew that cacti lived such interesting lives."},
		"img_url":  {"https://images.unsplash.com/photo-1530482054429-cc491f61333b"},
		"body":     {"<p>Nori grape silver beet broccoli kombu beet greens.</p>"},
	}
}

func (app *testApp) posts(t *testing.T) []*models.Post {
	t.Helper()
	posts, err := app.store.Posts.List(context.Background())
	require.NoError(t, err)
	return posts
}

func (app *testApp) comments(t *testing.T, postID int) []*models.Comment {
	t.Helper()
	comments, err := app.store.Comments.ListByPost(context.Background(), postID)
	require.NoError(t, err)
	return comments
}
