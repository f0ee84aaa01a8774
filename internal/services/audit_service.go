package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hanifnr/edocs/internal/models"
	pkglogger "github.com/hanifnr/edocs/pkg/logger"
)

// MaxAuditListLimit caps the number of rows returned by the audit listing.
const MaxAuditListLimit = 100

// AuditLogStore defines the persistence interface for audit events
type AuditLogStore interface {
	Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)
	ListRecent(ctx context.Context, limit int) ([]*models.AuditLogEntry, error)
}

// AuditService appends security events with a dual-write pattern: an
// immediate structured-log mirror plus database persistence. Persistence is
// best-effort; a failed audit write never changes the caller's outcome.
type AuditService struct {
	repo   AuditLogStore
	logger *slog.Logger
	mirror *pkglogger.AuditLogger
}

// NewAuditService creates a new AuditService
func NewAuditService(repo AuditLogStore, logger *slog.Logger) *AuditService {
	return &AuditService{
		repo:   repo,
		logger: logger,
		mirror: pkglogger.NewAuditLogger(logger),
	}
}

// Record appends one audit event. It never returns an error: audit emission
// must not block or roll back the security decision it describes.
func (s *AuditService) Record(ctx context.Context, log *models.AuditLog) {
	actorID := ""
	if log.ActorID != nil {
		actorID = log.ActorID.String()
	}
	ipAddress := ""
	if log.IPAddress != nil {
		ipAddress = *log.IPAddress
	}

	s.mirror.LogSecurityEvent(log.ActionType, actorID, ipAddress, log.Details)

	if _, err := s.repo.Create(ctx, log); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist audit log",
			slog.String("action_type", log.ActionType),
			slog.Any("error", err),
		)
	}
}

// ListRecent returns up to MaxAuditListLimit newest events joined with actor
// details, and records the access itself as a VIEW_AUDIT_LOGS event.
func (s *AuditService) ListRecent(ctx context.Context, actor *models.TokenClaims, ipAddress string) ([]*models.AuditLogEntry, error) {
	entries, err := s.repo.ListRecent(ctx, MaxAuditListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	viewEvent := &models.AuditLog{
		ActionType: models.AuditActionViewAuditLogs,
		Details: models.AuditDetails{
			"endpoint":      "/api/audit",
			"recordsViewed": len(entries),
		},
	}
	tableName := models.AuditTableAuditLogs
	viewEvent.TableName = &tableName
	if actor != nil {
		if id, err := uuid.Parse(actor.UserID); err == nil {
			viewEvent.ActorID = &id
		}
	}
	if ipAddress != "" {
		viewEvent.IPAddress = &ipAddress
	}

	s.Record(ctx, viewEvent)

	return entries, nil
}
