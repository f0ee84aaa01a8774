package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hanifnr/edocs/internal/database"
	"github.com/hanifnr/edocs/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanUserRow populates a User model from a database row
func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User

	err := scanner.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.RoleID,
		&user.IsActive, &user.FailedAttemptCount,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, role_id, is_active, failed_attempt_count, created_at, updated_at
		FROM users WHERE username = $1
	`

	return scanUserRow(r.pool.QueryRow(ctx, query, username))
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, username, password_hash, role_id, is_active, failed_attempt_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, username, password_hash, role_id, is_active, failed_attempt_count, created_at, updated_at
	`

	createdUser, err := scanUserRow(r.pool.QueryRow(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.RoleID,
		user.IsActive, user.FailedAttemptCount, user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		return nil, err
	}

	return createdUser, nil
}

// UpdateLoginState persists the failed-attempt counter and active flag in a
// single statement. The previous counter value acts as an optimistic guard:
// two concurrent wrong-password attempts cannot silently overwrite each
// other's increment; the loser of the race gets ErrConflict.
func (r *UserRepository) UpdateLoginState(ctx context.Context, id string, prevCount, newCount int, isActive bool) error {
	query := `
		UPDATE users
		SET failed_attempt_count = $1, is_active = $2, updated_at = $3
		WHERE id = $4 AND failed_attempt_count = $5
	`

	result, err := r.pool.Exec(ctx, query, newCount, isActive, time.Now(), id, prevCount)
	if err != nil {
		return fmt.Errorf("failed to update login state: %w", database.MapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return models.ErrConflict
	}

	return nil
}
