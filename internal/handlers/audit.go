package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hanifnr/edocs/internal/auth"
	"github.com/hanifnr/edocs/internal/models"
	pkghttp "github.com/hanifnr/edocs/pkg/http"
)

// AuditReaderInterface defines the read side of the audit trail
type AuditReaderInterface interface {
	ListRecent(ctx context.Context, actor *models.TokenClaims, ipAddress string) ([]*models.AuditLogEntry, error)
}

// AuditHandler handles audit log HTTP requests
type AuditHandler struct {
	service  AuditReaderInterface
	ipConfig *pkghttp.IPConfig
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service AuditReaderInterface, ipConfig *pkghttp.IPConfig) *AuditHandler {
	return &AuditHandler{
		service:  service,
		ipConfig: ipConfig,
	}
}

// AuditLogResponse represents an audit log entry in HTTP responses
type AuditLogResponse struct {
	ID            string                 `json:"id"`
	ActionType    string                 `json:"action_type"`
	ActorID       *string                `json:"actor_id,omitempty"`
	ActorUsername *string                `json:"actor_username,omitempty"`
	ActorRole     *string                `json:"actor_role,omitempty"`
	TableName     *string                `json:"table_name,omitempty"`
	RecordID      *string                `json:"record_id,omitempty"`
	IPAddress     *string                `json:"ip_address,omitempty"`
	Details       map[string]interface{} `json:"details,omitempty"`
	CreatedAt     string                 `json:"created_at"`
}

// AuditListResponse represents the audit listing payload
type AuditListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}

// ListAuditLogs returns the newest audit events, newest first (admin only)
// @Summary List audit logs
// @Produce json
// @Success 200 {object} AuditListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /audit [get]
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	entries, err := h.service.ListRecent(r.Context(), claims, ipAddress)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to retrieve audit logs")
		return
	}

	logs := make([]AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		logs = append(logs, toAuditLogResponse(entry))
	}

	writeJSON(w, http.StatusOK, AuditListResponse{
		Logs:  logs,
		Total: len(logs),
	})
}

func toAuditLogResponse(entry *models.AuditLogEntry) AuditLogResponse {
	resp := AuditLogResponse{
		ID:            entry.ID.String(),
		ActionType:    entry.ActionType,
		ActorUsername: entry.ActorUsername,
		ActorRole:     entry.ActorRole,
		TableName:     entry.TableName,
		IPAddress:     entry.IPAddress,
		Details:       entry.Details,
		CreatedAt:     entry.CreatedAt.Format(time.RFC3339),
	}
	if entry.ActorID != nil {
		id := entry.ActorID.String()
		resp.ActorID = &id
	}
	if entry.RecordID != nil {
		id := entry.RecordID.String()
		resp.RecordID = &id
	}
	return resp
}
