package domain

import "time"

// Session is the explicit session object returned by a successful login.
// The routing layer decides how to persist it (cookie, response body).
type Session struct {
	Token     string
	UserID    int64
	Name      string
	ExpiresAt time.Time
}
