package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsierra/portfolio-accounts/internal/domain"
	"github.com/jsierra/portfolio-accounts/internal/repository"
)

// DefaultResetTokenTTL is how long a reset token stays valid.
const DefaultResetTokenTTL = 24 * time.Hour

// ResetMailer sends the password-reset notification. Implemented by
// notification.EmailService.
type ResetMailer interface {
	SendPasswordResetEmail(to, name, resetURL string) error
}

// ResetConfig holds reset token settings.
type ResetConfig struct {
	TokenTTL time.Duration

	// BaseURL is the public site URL embedded in reset links.
	BaseURL string
}

// ResetTokenManager issues, validates, and consumes single-use, time-limited
// password-reset tokens. At most one unused, unexpired token is valid per
// user: issuing a new one marks all prior unused tokens as used.
type ResetTokenManager struct {
	config ResetConfig
	db     *sql.DB
	tokens *repository.ResetTokensRepository
	users  *repository.UsersRepository
	mailer ResetMailer
	logger *slog.Logger
	now    func() time.Time
}

// NewResetTokenManager creates a new reset token manager. mailer may be nil
// when no SMTP server is configured; reset requests then fail with
// domain.ErrEmailDelivery.
func NewResetTokenManager(
	config ResetConfig,
	db *sql.DB,
	tokens *repository.ResetTokensRepository,
	users *repository.UsersRepository,
	mailer ResetMailer,
	logger *slog.Logger,
) *ResetTokenManager {
	if config.TokenTTL == 0 {
		config.TokenTTL = DefaultResetTokenTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResetTokenManager{
		config: config,
		db:     db,
		tokens: tokens,
		users:  users,
		mailer: mailer,
		logger: logger,
		now:    time.Now,
	}
}

// RequestReset issues a fresh reset token for the account behind email and
// sends it by mail. An unknown email returns nil without creating a token,
// so the caller's response cannot reveal whether the account exists.
//
// A send failure returns domain.ErrEmailDelivery, which callers surface as a
// distinct error. That does leak account existence on delivery failure; the
// tradeoff is recorded in DESIGN.md.
func (m *ResetTokenManager) RequestReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	user, err := m.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		m.logger.InfoContext(ctx, "security event", "event", "PASSWORD_RESET_UNKNOWN_EMAIL", "email", email)
		return nil
	}
	if err != nil {
		return err
	}

	rawToken, err := GenerateResetToken()
	if err != nil {
		return err
	}

	now := m.now()
	token := &domain.ResetToken{
		UserID:    user.ID,
		Token:     rawToken,
		CreatedAt: now,
		ExpiresAt: now.Add(m.config.TokenTTL),
	}

	// Supersede any earlier token and store the new one atomically.
	err = repository.Tx(ctx, m.db, func(tx *sql.Tx) error {
		if err := m.tokens.InvalidateUnusedTx(ctx, tx, user.ID); err != nil {
			return fmt.Errorf("failed to invalidate previous tokens: %w", err)
		}
		if err := m.tokens.CreateTx(ctx, tx, token); err != nil {
			return fmt.Errorf("failed to create token: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if m.mailer == nil {
		m.logger.WarnContext(ctx, "reset requested but no mailer configured", "user_id", user.ID)
		return domain.ErrEmailDelivery
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", m.config.BaseURL, rawToken)
	if err := m.mailer.SendPasswordResetEmail(user.Email, user.Name, resetURL); err != nil {
		m.logger.ErrorContext(ctx, "failed to send password reset email", "error", err, "user_id", user.ID)
		return domain.ErrEmailDelivery
	}

	m.logger.InfoContext(ctx, "security event", "event", "PASSWORD_RESET_REQUESTED", "user_id", user.ID)
	return nil
}

// ValidateToken checks a token without consuming it and returns the owning
// user ID. Rejections are domain.ErrResetTokenInvalid, ErrResetTokenUsed, or
// ErrResetTokenExpired.
func (m *ResetTokenManager) ValidateToken(ctx context.Context, rawToken string) (int64, error) {
	token, err := m.tokens.GetByToken(ctx, rawToken)
	if errors.Is(err, domain.ErrResetTokenNotFound) {
		return 0, domain.ErrResetTokenInvalid
	}
	if err != nil {
		return 0, err
	}

	if token.Used {
		return 0, domain.ErrResetTokenUsed
	}
	if token.IsExpired(m.now()) {
		return 0, domain.ErrResetTokenExpired
	}
	return token.UserID, nil
}

// ConsumeToken re-validates the token and then atomically overwrites the
// user's credential and marks the token used. Time may have passed since the
// caller validated the token, so the checks run again under a row lock.
func (m *ResetTokenManager) ConsumeToken(ctx context.Context, rawToken, newPassword string) error {
	// Hash outside the transaction: bcrypt is deliberately slow.
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	var userID int64
	err = repository.Tx(ctx, m.db, func(tx *sql.Tx) error {
		token, err := m.tokens.GetByTokenForUpdateTx(ctx, tx, rawToken)
		if errors.Is(err, domain.ErrResetTokenNotFound) {
			return domain.ErrResetTokenInvalid
		}
		if err != nil {
			return err
		}

		if token.Used {
			return domain.ErrResetTokenUsed
		}
		if token.IsExpired(m.now()) {
			return domain.ErrResetTokenExpired
		}

		if err := m.users.UpdatePasswordTx(ctx, tx, token.UserID, hash); err != nil {
			return err
		}
		if err := m.tokens.MarkUsedTx(ctx, tx, token.ID); err != nil {
			return err
		}
		userID = token.UserID
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "security event", "event", "PASSWORD_RESET_COMPLETED", "user_id", userID)
	return nil
}

// SweepExpired deletes tokens that are expired or already used and returns
// the number of rows removed. Invoked once at process start.
func (m *ResetTokenManager) SweepExpired(ctx context.Context) (int64, error) {
	n, err := m.tokens.DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		m.logger.InfoContext(ctx, "removed expired reset tokens", "count", n)
	}
	return n, nil
}
