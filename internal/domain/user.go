package domain

import "time"

// User represents an account row in the usuarios table.
type User struct {
	ID                  int64
	Name                string
	Email               string
	PasswordHash        string
	RegisteredAt        time.Time
	LastLoginAt         *time.Time
	Active              bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
}

// IsLocked reports whether the account lockout is still in effect at the
// given instant. A nil LockedUntil means the account was never locked or
// the lock was cleared by a successful login.
func (u *User) IsLocked(at time.Time) bool {
	if u.LockedUntil == nil {
		return false
	}
	return at.Before(*u.LockedUntil)
}
