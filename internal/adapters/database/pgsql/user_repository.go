package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/testaro/testaro_backend/internal/apperrors"
	"github.com/testaro/testaro_backend/internal/core/domain"
	portsrepo "github.com/testaro/testaro_backend/internal/core/ports/repositories"
)

// Secret columns (password_hash and the reset_* group) only appear in the
// WithSecrets finders; the public column list is the default projection.
const (
	publicColumns = `user_id, email, provider, provider_user_id, display_name, avatar_url, created_at, updated_at`
	secretColumns = publicColumns + `, password_hash, reset_token_hash, reset_token_expires_at, reset_attempts, last_reset_request_at`
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure UserRepository implements the full repository facade
var _ portsrepo.UserRepositoryFacade = (*UserRepository)(nil)

func (r *UserRepository) SaveUser(ctx context.Context, user domain.User) error {
	query := `
        INSERT INTO users (user_id, email, provider, provider_user_id, display_name, avatar_url,
                           password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
    `
	_, err := r.db.Exec(ctx, query,
		user.UserID,
		user.Email,
		user.Provider,
		user.ProviderUserID,
		user.DisplayName,
		user.AvatarURL,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", translateError(err))
	}
	return nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + publicColumns + ` FROM users WHERE user_id = $1;`
	return r.scanPublic(r.db.QueryRow(ctx, query, userID))
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	// Exact match; emails are stored case-sensitive without normalization.
	query := `SELECT ` + publicColumns + ` FROM users WHERE email = $1;`
	return r.scanPublic(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) FindUserByProviderDetails(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
	query := `SELECT ` + publicColumns + ` FROM users WHERE provider = $1 AND provider_user_id = $2;`
	return r.scanPublic(r.db.QueryRow(ctx, query, provider, providerUserID))
}

func (r *UserRepository) FindUserByEmailWithSecrets(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + secretColumns + ` FROM users WHERE email = $1;`
	return r.scanWithSecrets(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) FindUserByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	// Both conditions in one lookup: an expired token is indistinguishable
	// from an unknown one.
	query := `SELECT ` + secretColumns + ` FROM users WHERE reset_token_hash = $1 AND reset_token_expires_at > $2;`
	return r.scanWithSecrets(r.db.QueryRow(ctx, query, tokenHash, now))
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID string, tokenHash string, expiresAt time.Time, attempts int, requestedAt time.Time) error {
	query := `
        UPDATE users
        SET reset_token_hash = $1, reset_token_expires_at = $2, reset_attempts = $3,
            last_reset_request_at = $4, updated_at = $4
        WHERE user_id = $5;
    `
	cmdTag, err := r.db.Exec(ctx, query, tokenHash, expiresAt, attempts, requestedAt, userID)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user not found for reset token update: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) UpdatePasswordAndClearResetToken(ctx context.Context, userID string, passwordHash string) error {
	// One statement so the token becomes unusable in the same instant the
	// new password lands.
	query := `
        UPDATE users
        SET password_hash = $1, reset_token_hash = NULL, reset_token_expires_at = NULL,
            reset_attempts = 0, last_reset_request_at = NULL, updated_at = $2
        WHERE user_id = $3;
    `
	cmdTag, err := r.db.Exec(ctx, query, passwordHash, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user not found for password update: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) scanPublic(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.UserID,
		&user.Email,
		&user.Provider,
		&user.ProviderUserID,
		&user.DisplayName,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) scanWithSecrets(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.UserID,
		&user.Email,
		&user.Provider,
		&user.ProviderUserID,
		&user.DisplayName,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.PasswordHash,
		&user.ResetTokenHash,
		&user.ResetTokenExpiresAt,
		&user.ResetAttempts,
		&user.LastResetRequestAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}
	return &user, nil
}

// translateError maps PostgreSQL constraint violations to the sentinel
// errors the service layer classifies on.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation: email or (provider, provider_user_id)
			return fmt.Errorf("%v: %w", pgErr.ConstraintName, apperrors.ErrDuplicate)
		case "23502", "23514": // not_null_violation, check_violation
			return fmt.Errorf("%v: %w", pgErr.ConstraintName, apperrors.ErrValidation)
		}
	}
	return err
}
