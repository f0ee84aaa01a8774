package repositories

import (
	"context"

	"github.com/hanifnr/edocs/internal/database"
	"github.com/hanifnr/edocs/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RoleRepository handles role data access
type RoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(db *database.DB) *RoleRepository {
	return &RoleRepository{pool: db.Pool}
}

func scanRoleRow(scanner rowScanner) (*models.Role, error) {
	var role models.Role

	err := scanner.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &role, nil
}

func (r *RoleRepository) GetByID(ctx context.Context, id int) (*models.Role, error) {
	query := `SELECT id, name, created_at, updated_at FROM roles WHERE id = $1`

	return scanRoleRow(r.pool.QueryRow(ctx, query, id))
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	query := `SELECT id, name, created_at, updated_at FROM roles WHERE name = $1`

	return scanRoleRow(r.pool.QueryRow(ctx, query, name))
}
