package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"quill/app/auth"
	"quill/app/models"

	"github.com/sirupsen/logrus"
)

// UserLoader resolves a user ID to a user.
type UserLoader interface {
	GetUser(ctx context.Context, id int) (*models.User, error)
}

// CurrentUser loads the session's user into the request context. Sessions
// pointing at a user that no longer exists are treated as anonymous.
func CurrentUser(sessions *auth.SessionManager, users UserLoader, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := sessions.UserID(r); ok {
				user, err := users.GetUser(r.Context(), id)
				if err != nil {
					log.WithError(err).WithField("user_id", id).Warn("session user could not be loaded")
				} else {
					r = r.WithContext(auth.WithUser(r.Context(), user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin answers 403 unless the current user is the admin.
// Anonymous requests are forbidden too, not redirected to login.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.UserFromContext(r.Context()).IsAdmin() {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BearerAuth authenticates API requests carrying "Authorization: Bearer <token>".
// Requests without the header pass through anonymously; a bad token is a 401.
func BearerAuth(tokens *auth.TokenIssuer, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found {
				unauthorized(w, "authorization header must use the Bearer scheme")
				return
			}
			userID, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}
			user, err := users.GetUser(r.Context(), userID)
			if err != nil {
				unauthorized(w, "token user no longer exists")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
