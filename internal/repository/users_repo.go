package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/jsierra/portfolio-accounts/internal/domain"
)

const userColumns = `id, nombre, correo, contraseña, fecha_registro, ultimo_acceso, activo, intentos_login, bloqueado_hasta`

// UsersRepository handles persistence for the usuarios table.
type UsersRepository struct {
	db *sql.DB
}

// NewUsersRepository creates a new users repository.
func NewUsersRepository(db *sql.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

// Create inserts a new user and fills in its generated ID.
// A duplicate email maps to domain.ErrUserAlreadyExists.
func (r *UsersRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO usuarios (nombre, correo, contraseña, fecha_registro, activo, intentos_login)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.RegisteredAt, user.Active, user.FailedLoginAttempts,
	).Scan(&user.ID)
	if isUniqueViolation(err) {
		return domain.ErrUserAlreadyExists
	}
	return err
}

// GetByEmail retrieves a user by normalized email.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios WHERE correo = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetByEmailForUpdateTx retrieves a user by email with a row lock, so that
// concurrent login attempts on the same account serialize on the counter.
func (r *UsersRepository) GetByEmailForUpdateTx(ctx context.Context, q Querier, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios WHERE correo = $1 FOR UPDATE`
	return scanUser(q.QueryRowContext(ctx, query, email))
}

// GetByID retrieves a user by ID.
func (r *UsersRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// ExistsByEmail checks if a user exists by email.
func (r *UsersRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM usuarios WHERE correo = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	return exists, err
}

// RecordLoginTx clears the failed-attempt counter and lockout and stamps the
// last-login time after a successful authentication.
func (r *UsersRepository) RecordLoginTx(ctx context.Context, q Querier, userID int64, at time.Time) error {
	query := `
		UPDATE usuarios
		SET intentos_login = 0, bloqueado_hasta = NULL, ultimo_acceso = $2
		WHERE id = $1
	`
	return execAffectingOne(ctx, q, query, userID, at)
}

// SetLockoutStateTx writes back the failed-attempt counter and, when the
// threshold was reached, the lockout expiry.
func (r *UsersRepository) SetLockoutStateTx(ctx context.Context, q Querier, userID int64, attempts int, lockedUntil *time.Time) error {
	query := `
		UPDATE usuarios
		SET intentos_login = $2, bloqueado_hasta = $3
		WHERE id = $1
	`
	return execAffectingOne(ctx, q, query, userID, attempts, lockedUntil)
}

// UpdatePasswordTx overwrites the stored credential hash.
func (r *UsersRepository) UpdatePasswordTx(ctx context.Context, q Querier, userID int64, passwordHash string) error {
	query := `UPDATE usuarios SET contraseña = $2 WHERE id = $1`
	return execAffectingOne(ctx, q, query, userID, passwordHash)
}

// List returns all users, most recently registered first.
func (r *UsersRepository) List(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM usuarios ORDER BY fecha_registro DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user := &domain.User{}
		if err := rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.PasswordHash,
			&user.RegisteredAt, &user.LastLoginAt, &user.Active,
			&user.FailedLoginAttempts, &user.LockedUntil,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.RegisteredAt, &user.LastLoginAt, &user.Active,
		&user.FailedLoginAttempts, &user.LockedUntil,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func execAffectingOne(ctx context.Context, q Querier, query string, args ...any) error {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
