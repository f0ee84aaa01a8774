package repositories

import (
	"context"
	"fmt"

	"github.com/hanifnr/edocs/internal/database"
	"github.com/hanifnr/edocs/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLogRepository handles audit log data access. The underlying table is
// append-only: rows are created by the auth flow and never updated or deleted.
type AuditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository creates a new AuditLogRepository
func NewAuditLogRepository(db *database.DB) *AuditLogRepository {
	return &AuditLogRepository{pool: db.Pool}
}

func scanAuditLogRow(row rowScanner) (*models.AuditLog, error) {
	var log models.AuditLog

	err := row.Scan(
		&log.ID, &log.ActorID, &log.ActionType, &log.TableName,
		&log.RecordID, &log.IPAddress, &log.Details, &log.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &log, nil
}

// Create appends a new audit log entry
func (r *AuditLogRepository) Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	query := `
		INSERT INTO audit_logs (actor_id, action_type, table_name, record_id, ip_address, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, actor_id, action_type, table_name, record_id, ip_address, details, created_at
	`

	result, err := scanAuditLogRow(r.pool.QueryRow(
		ctx, query,
		log.ActorID, log.ActionType, log.TableName, log.RecordID, log.IPAddress, log.Details,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create audit log: %w", err)
	}

	return result, nil
}

// ListRecent retrieves the newest audit events joined with the actor account,
// sorted descending by creation time.
func (r *AuditLogRepository) ListRecent(ctx context.Context, limit int) ([]*models.AuditLogEntry, error) {
	query := `
		SELECT a.id, a.actor_id, a.action_type, a.table_name, a.record_id,
		       a.ip_address, a.details, a.created_at,
		       u.username, ro.name
		FROM audit_logs a
		LEFT JOIN users u ON a.actor_id = u.id
		LEFT JOIN roles ro ON u.role_id = ro.id
		ORDER BY a.created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.AuditLogEntry, 0)

	for rows.Next() {
		var entry models.AuditLogEntry

		err := rows.Scan(
			&entry.ID, &entry.ActorID, &entry.ActionType, &entry.TableName,
			&entry.RecordID, &entry.IPAddress, &entry.Details, &entry.CreatedAt,
			&entry.ActorUsername, &entry.ActorRole,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", database.MapPostgresError(err))
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log rows: %w", err)
	}

	return entries, nil
}
