package auth

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jsierra/portfolio-accounts/internal/domain"
	"github.com/jsierra/portfolio-accounts/internal/repository"
)

// Default lockout policy, matching the original site's behavior.
const (
	DefaultMaxFailedLogins = 5
	DefaultLockoutDuration = 30 * time.Minute
)

// OutcomeStatus classifies the result of an authentication attempt.
type OutcomeStatus int

const (
	OutcomeSuccess OutcomeStatus = iota
	OutcomeLocked
	OutcomeInactive
	OutcomeBadCredential
	OutcomeUnknownUser
)

// Outcome is the result of an authentication attempt. Callers must present
// OutcomeUnknownUser and OutcomeBadCredential with identical wording so the
// response does not reveal whether the account exists.
type Outcome struct {
	Status OutcomeStatus

	// User is set on OutcomeSuccess.
	User *domain.User

	// RetryAfter is set on OutcomeLocked: the instant the lockout lifts.
	RetryAfter time.Time

	// AttemptsRemaining is set on OutcomeBadCredential.
	AttemptsRemaining int
}

// GuardConfig holds lockout policy settings.
type GuardConfig struct {
	MaxFailedLogins int
	LockoutDuration time.Duration
}

// AccountGuard authenticates users and enforces the brute-force lockout:
// after MaxFailedLogins consecutive failures the account rejects all login
// attempts until LockoutDuration has passed.
type AccountGuard struct {
	config GuardConfig
	db     *sql.DB
	users  *repository.UsersRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewAccountGuard creates a new account guard.
func NewAccountGuard(config GuardConfig, db *sql.DB, users *repository.UsersRepository, logger *slog.Logger) *AccountGuard {
	if config.MaxFailedLogins == 0 {
		config.MaxFailedLogins = DefaultMaxFailedLogins
	}
	if config.LockoutDuration == 0 {
		config.LockoutDuration = DefaultLockoutDuration
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountGuard{
		config: config,
		db:     db,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates a new account with a hashed credential.
// The caller is expected to have validated and normalized the fields.
func (g *AccountGuard) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	email = NormalizeEmail(email)

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		RegisteredAt: g.now(),
		Active:       true,
	}

	if err := g.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			g.logger.Warn("registration with duplicate email", "email", email)
		}
		return nil, err
	}

	g.securityEvent(ctx, "USER_REGISTERED", user.ID, "email", email)
	return user, nil
}

// Authenticate verifies an email/password pair and returns the outcome.
// The lookup and every counter mutation happen inside one transaction with
// the user row locked, so concurrent attempts on the same account cannot
// lose updates to the failed-attempt counter.
//
// The returned error is reserved for persistence failures; all policy
// rejections are expressed through the Outcome.
func (g *AccountGuard) Authenticate(ctx context.Context, email, password string) (*Outcome, error) {
	email = NormalizeEmail(email)

	var out *Outcome
	err := repository.Tx(ctx, g.db, func(tx *sql.Tx) error {
		user, err := g.users.GetByEmailForUpdateTx(ctx, tx, email)
		if errors.Is(err, domain.ErrUserNotFound) {
			g.securityEvent(ctx, "LOGIN_USER_NOT_FOUND", 0, "email", email)
			out = &Outcome{Status: OutcomeUnknownUser}
			return nil
		}
		if err != nil {
			return err
		}

		now := g.now()

		// A locked account rejects the attempt outright; the counter is
		// not touched while the lock is in effect.
		if user.IsLocked(now) {
			g.securityEvent(ctx, "LOGIN_BLOCKED_ACCOUNT", user.ID, "email", email)
			out = &Outcome{Status: OutcomeLocked, RetryAfter: *user.LockedUntil}
			return nil
		}

		if !user.Active {
			g.securityEvent(ctx, "LOGIN_INACTIVE_ACCOUNT", user.ID, "email", email)
			out = &Outcome{Status: OutcomeInactive}
			return nil
		}

		if VerifyPassword(password, user.PasswordHash) {
			if err := g.users.RecordLoginTx(ctx, tx, user.ID, now); err != nil {
				return err
			}
			user.FailedLoginAttempts = 0
			user.LockedUntil = nil
			user.LastLoginAt = &now

			g.securityEvent(ctx, "LOGIN_SUCCESS", user.ID, "email", email)
			out = &Outcome{Status: OutcomeSuccess, User: user}
			return nil
		}

		attempts := user.FailedLoginAttempts + 1
		var lockedUntil *time.Time
		if attempts >= g.config.MaxFailedLogins {
			t := now.Add(g.config.LockoutDuration)
			lockedUntil = &t
		}

		if err := g.users.SetLockoutStateTx(ctx, tx, user.ID, attempts, lockedUntil); err != nil {
			return err
		}

		if lockedUntil != nil {
			g.securityEvent(ctx, "ACCOUNT_LOCKED", user.ID, "email", email, "attempts", attempts)
			out = &Outcome{Status: OutcomeLocked, RetryAfter: *lockedUntil}
		} else {
			remaining := g.config.MaxFailedLogins - attempts
			g.securityEvent(ctx, "LOGIN_FAILED", user.ID, "email", email, "attempt", attempts)
			out = &Outcome{Status: OutcomeBadCredential, AttemptsRemaining: remaining}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetUserByID retrieves a user by ID.
func (g *AccountGuard) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	return g.users.GetByID(ctx, userID)
}

func (g *AccountGuard) securityEvent(ctx context.Context, event string, userID int64, args ...any) {
	attrs := append([]any{"event", event}, args...)
	if userID != 0 {
		attrs = append(attrs, "user_id", userID)
	}
	g.logger.InfoContext(ctx, "security event", attrs...)
}
