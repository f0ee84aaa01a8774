package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hanifnr/edocs/internal/models"
	pkgauth "github.com/hanifnr/edocs/pkg/auth"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByUsernameFunc    func(ctx context.Context, username string) (*models.User, error)
	UpdateLoginStateFunc func(ctx context.Context, id string, prevCount, newCount int, isActive bool) error

	// UpdateCalls records every UpdateLoginState invocation
	UpdateCalls []LoginStateUpdate
}

// LoginStateUpdate captures the arguments of one UpdateLoginState call
type LoginStateUpdate struct {
	ID        string
	PrevCount int
	NewCount  int
	IsActive  bool
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) UpdateLoginState(ctx context.Context, id string, prevCount, newCount int, isActive bool) error {
	m.UpdateCalls = append(m.UpdateCalls, LoginStateUpdate{
		ID:        id,
		PrevCount: prevCount,
		NewCount:  newCount,
		IsActive:  isActive,
	})
	if m.UpdateLoginStateFunc != nil {
		return m.UpdateLoginStateFunc(ctx, id, prevCount, newCount, isActive)
	}
	return nil
}

// MockRoleRepository implements RoleRepository for testing
type MockRoleRepository struct {
	GetByIDFunc func(ctx context.Context, id int) (*models.Role, error)
}

func (m *MockRoleRepository) GetByID(ctx context.Context, id int) (*models.Role, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

// MockTokenIssuer implements TokenIssuer for testing
type MockTokenIssuer struct {
	GenerateTokenFunc func(userID string, roleID int, roleName, username string) (string, error)
}

func (m *MockTokenIssuer) GenerateToken(userID string, roleID int, roleName, username string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, roleID, roleName, username)
	}
	return "test-token", nil
}

// MockAuditRecorder implements AuditRecorder and captures every event
type MockAuditRecorder struct {
	Events []*models.AuditLog
}

func (m *MockAuditRecorder) Record(ctx context.Context, log *models.AuditLog) {
	m.Events = append(m.Events, log)
}

// ByAction returns the captured events with the given action type
func (m *MockAuditRecorder) ByAction(actionType string) []*models.AuditLog {
	var out []*models.AuditLog
	for _, e := range m.Events {
		if e.ActionType == actionType {
			out = append(out, e)
		}
	}
	return out
}

// MockAuditLogStore implements AuditLogStore for testing
type MockAuditLogStore struct {
	CreateFunc     func(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)
	ListRecentFunc func(ctx context.Context, limit int) ([]*models.AuditLogEntry, error)

	Created []*models.AuditLog
}

func (m *MockAuditLogStore) Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	m.Created = append(m.Created, log)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	return log, nil
}

func (m *MockAuditLogStore) ListRecent(ctx context.Context, limit int) ([]*models.AuditLogEntry, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit)
	}
	return []*models.AuditLogEntry{}, nil
}

// NewTestUser builds an active user with a real bcrypt hash of the given password
func NewTestUser(username, password string, failedCount int) *models.User {
	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	now := time.Now()
	return &models.User{
		ID:                 uuid.New().String(),
		Username:           username,
		PasswordHash:       hash,
		RoleID:             1,
		IsActive:           true,
		FailedAttemptCount: failedCount,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
