package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "session"
	userIDKey   = "user_id"
)

// SessionOptions tune the session cookie.
type SessionOptions struct {
	MaxAge time.Duration
	Secure bool
}

// SessionManager keeps the logged in user and flash messages in a signed cookie.
type SessionManager struct {
	store sessions.Store
}

// NewSessionManager signs cookies with secret.
func NewSessionManager(secret string, opts SessionOptions) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

// session returns the request's session. A cookie that fails verification
// yields a fresh, empty session.
func (m *SessionManager) session(r *http.Request) *sessions.Session {
	session, err := m.store.Get(r, sessionName)
	if err != nil && session == nil {
		session = sessions.NewSession(m.store, sessionName)
	}
	return session
}

// Login marks userID as authenticated for subsequent requests.
func (m *SessionManager) Login(w http.ResponseWriter, r *http.Request, userID int) error {
	session := m.session(r)
	session.Values[userIDKey] = userID
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Logout forgets the authenticated user. Pending flashes survive.
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	session := m.session(r)
	delete(session.Values, userIDKey)
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// UserID returns the authenticated user's ID, if any.
func (m *SessionManager) UserID(r *http.Request) (int, bool) {
	id, ok := m.session(r).Values[userIDKey].(int)
	return id, ok && id > 0
}

// Flash queues a one-time message for the next rendered page.
func (m *SessionManager) Flash(w http.ResponseWriter, r *http.Request, message string) error {
	session := m.session(r)
	session.AddFlash(message)
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Flashes pops the queued messages. It writes a cookie header, so it must
// run before the response body.
func (m *SessionManager) Flashes(w http.ResponseWriter, r *http.Request) []string {
	session := m.session(r)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			messages = append(messages, s)
		}
	}
	// a failed save only means the flashes may show twice
	_ = session.Save(r, w)
	return messages
}
