package domain

import "time"

// ResetToken represents a row in the password_reset_tokens table.
// A token is single-use: it flips Used exactly once, either when consumed
// for a password change or when a newer token supersedes it.
type ResetToken struct {
	ID        int64
	UserID    int64
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
}

// IsExpired reports whether the token has expired at the given instant.
// A token is still accepted at exactly ExpiresAt.
func (t *ResetToken) IsExpired(at time.Time) bool {
	return at.After(t.ExpiresAt)
}

// IsValid reports whether the token can still be consumed at the given instant.
func (t *ResetToken) IsValid(at time.Time) bool {
	return !t.Used && !t.IsExpired(at)
}
