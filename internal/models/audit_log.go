package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Action types for audit logging. The set is closed for the auth subsystem;
// other subsystems may register their own action types.
const (
	AuditActionUserLogin            = "USER_LOGIN"
	AuditActionLoginFailed          = "LOGIN_FAILED"
	AuditActionLoginBlockedInactive = "LOGIN_BLOCKED_INACTIVE"
	AuditActionAccountLocked        = "ACCOUNT_LOCKED"
	AuditActionUserLogout           = "USER_LOGOUT"
	AuditActionSessionCheck         = "SESSION_CHECK"
	AuditActionViewAuditLogs        = "VIEW_AUDIT_LOGS"
)

// Subject tables
const (
	AuditTableUsers     = "users"
	AuditTableAuditLogs = "audit_logs"
)

type AuditLog struct {
	ID         uuid.UUID    `db:"id"`
	ActorID    *uuid.UUID   `db:"actor_id"`
	ActionType string       `db:"action_type"`
	TableName  *string      `db:"table_name"`
	RecordID   *uuid.UUID   `db:"record_id"`
	IPAddress  *string      `db:"ip_address"`
	Details    AuditDetails `db:"details"`
	CreatedAt  time.Time    `db:"created_at"`
}

// AuditLogEntry is a listing row joined with the actor account.
type AuditLogEntry struct {
	AuditLog
	ActorUsername *string
	ActorRole     *string
}

// AuditDetails holds the structured details payload; its schema varies by action type
type AuditDetails map[string]interface{}

// Scan implements sql.Scanner for JSONB
func (d *AuditDetails) Scan(value interface{}) error {
	if value == nil {
		*d = make(AuditDetails)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return ErrBadRequest
	}

	var m map[string]interface{}
	if err := json.Unmarshal(bytes, &m); err != nil {
		return err
	}
	*d = AuditDetails(m)
	return nil
}

// Value implements driver.Valuer for JSONB
func (d AuditDetails) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// MarshalJSON implements json.Marshaler
func (d AuditDetails) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}(d))
}

// UnmarshalJSON implements json.Unmarshaler
func (d *AuditDetails) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*d = AuditDetails(m)
	return nil
}
