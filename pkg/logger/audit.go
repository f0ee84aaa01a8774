package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditLogger mirrors security audit events to structured logs. The durable
// audit trail lives in the database; this is the operational copy.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogSecurityEvent logs a security-relevant event with its action type and context.
// Failure-class events (failed logins, lockouts, blocked attempts) log at WARN.
func (al *AuditLogger) LogSecurityEvent(actionType, actorID, ipAddress string, details map[string]interface{}) {
	attrs := []slog.Attr{
		slog.String("audit_type", "security"),
		slog.String("action_type", actionType),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if actorID != "" {
		attrs = append(attrs, slog.String("actor_id", actorID))
	}
	if ipAddress != "" {
		attrs = append(attrs, slog.String("ip_address", ipAddress))
	}
	if len(details) > 0 {
		attrs = append(attrs, slog.Any("details", details))
	}

	level := slog.LevelInfo
	switch actionType {
	case "LOGIN_FAILED", "LOGIN_BLOCKED_INACTIVE", "ACCOUNT_LOCKED":
		level = slog.LevelWarn
	}

	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}
