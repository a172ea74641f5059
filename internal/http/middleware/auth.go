package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/jsierra/portfolio-accounts/internal/auth"
	"github.com/jsierra/portfolio-accounts/internal/httputil"
)

type contextKey string

const userIDKey contextKey = "user_id"

// SessionVerifier checks a session token and returns the user ID it belongs
// to. Implemented by auth.SessionService.
type SessionVerifier interface {
	Verify(tokenString string) (*auth.SessionClaims, int64, error)
}

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "portfolio_session"

// Auth requires a valid session on every request it wraps. The token is read
// from the Authorization header (Bearer scheme) or, failing that, from the
// session cookie. The authenticated user ID is stored on the request context.
func Auth(sessions SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if cookie, err := r.Cookie(SessionCookieName); err == nil {
					token = cookie.Value
				}
			}
			if token == "" {
				httputil.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}

			_, userID, err := sessions.Verify(token)
			if err != nil {
				httputil.Error(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID returns the authenticated user ID stored by Auth, or false when
// the request did not pass through it.
func GetUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
