package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jsierra/portfolio-accounts/internal/domain"
)

const resetTokenColumns = `id, user_id, token, created_at, expires_at, used`

// ResetTokensRepository handles persistence for the password_reset_tokens table.
type ResetTokensRepository struct {
	db *sql.DB
}

// NewResetTokensRepository creates a new reset tokens repository.
func NewResetTokensRepository(db *sql.DB) *ResetTokensRepository {
	return &ResetTokensRepository{db: db}
}

// CreateTx inserts a new reset token and fills in its generated ID.
func (r *ResetTokensRepository) CreateTx(ctx context.Context, q Querier, token *domain.ResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (user_id, token, created_at, expires_at, used)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return q.QueryRowContext(ctx, query,
		token.UserID, token.Token, token.CreatedAt, token.ExpiresAt, token.Used,
	).Scan(&token.ID)
}

// GetByToken retrieves a reset token by its exact token string.
func (r *ResetTokensRepository) GetByToken(ctx context.Context, rawToken string) (*domain.ResetToken, error) {
	query := `SELECT ` + resetTokenColumns + ` FROM password_reset_tokens WHERE token = $1`
	return scanResetToken(r.db.QueryRowContext(ctx, query, rawToken))
}

// GetByTokenForUpdateTx retrieves a reset token with a row lock so that
// concurrent consumption attempts serialize on the used flag.
func (r *ResetTokensRepository) GetByTokenForUpdateTx(ctx context.Context, q Querier, rawToken string) (*domain.ResetToken, error) {
	query := `SELECT ` + resetTokenColumns + ` FROM password_reset_tokens WHERE token = $1 FOR UPDATE`
	return scanResetToken(q.QueryRowContext(ctx, query, rawToken))
}

// MarkUsedTx marks a reset token as used. The used flag never reverts.
func (r *ResetTokensRepository) MarkUsedTx(ctx context.Context, q Querier, tokenID int64) error {
	query := `UPDATE password_reset_tokens SET used = TRUE WHERE id = $1 AND used = FALSE`
	result, err := q.ExecContext(ctx, query, tokenID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrResetTokenNotFound
	}
	return nil
}

// InvalidateUnusedTx marks all still-unused tokens of a user as used.
// Called before issuing a fresh token so at most one token is valid per user.
func (r *ResetTokensRepository) InvalidateUnusedTx(ctx context.Context, q Querier, userID int64) error {
	query := `UPDATE password_reset_tokens SET used = TRUE WHERE user_id = $1 AND used = FALSE`
	_, err := q.ExecContext(ctx, query, userID)
	return err
}

// DeleteExpired removes tokens that are expired or already used and returns
// the number of rows deleted.
func (r *ResetTokensRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM password_reset_tokens WHERE expires_at < $1 OR used = TRUE`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanResetToken(row *sql.Row) (*domain.ResetToken, error) {
	token := &domain.ResetToken{}
	err := row.Scan(
		&token.ID, &token.UserID, &token.Token,
		&token.CreatedAt, &token.ExpiresAt, &token.Used,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrResetTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}
