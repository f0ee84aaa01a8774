package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/google/uuid"
	"github.com/hanifnr/edocs/internal/auth"
	"github.com/hanifnr/edocs/internal/models"
	"github.com/hanifnr/edocs/internal/services"
	pkghttp "github.com/hanifnr/edocs/pkg/http"
)

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc  func(ctx context.Context, username, password, ipAddress string) (*services.LoginResponse, error)
	LogoutFunc func(ctx context.Context, identity *models.TokenClaims, ipAddress string)
	MeFunc     func(ctx context.Context, identity *models.TokenClaims, ipAddress string) *services.Identity

	LogoutCalls int
}

func (m *MockAuthService) Login(ctx context.Context, username, password, ipAddress string) (*services.LoginResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password, ipAddress)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) Logout(ctx context.Context, identity *models.TokenClaims, ipAddress string) {
	m.LogoutCalls++
	if m.LogoutFunc != nil {
		m.LogoutFunc(ctx, identity, ipAddress)
	}
}

func (m *MockAuthService) Me(ctx context.Context, identity *models.TokenClaims, ipAddress string) *services.Identity {
	if m.MeFunc != nil {
		return m.MeFunc(ctx, identity, ipAddress)
	}
	return &services.Identity{
		ID:       identity.UserID,
		Username: identity.Username,
		RoleID:   identity.RoleID,
		RoleName: identity.RoleName,
	}
}

// MockAuditReader implements AuditReaderInterface for testing
type MockAuditReader struct {
	ListRecentFunc func(ctx context.Context, actor *models.TokenClaims, ipAddress string) ([]*models.AuditLogEntry, error)
}

func (m *MockAuditReader) ListRecent(ctx context.Context, actor *models.TokenClaims, ipAddress string) ([]*models.AuditLogEntry, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, actor, ipAddress)
	}
	return []*models.AuditLogEntry{}, nil
}

func testIPConfig() *pkghttp.IPConfig {
	return &pkghttp.IPConfig{}
}

func testClaims(roleName string) *models.TokenClaims {
	return &models.TokenClaims{
		UserID:   uuid.New().String(),
		RoleID:   1,
		RoleName: roleName,
		Username: "budi",
	}
}

// authedRequest builds a request carrying claims the way the auth middleware would
func authedRequest(method, target string, claims *models.TokenClaims) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if claims == nil {
		return req
	}
	ctx := context.WithValue(req.Context(), auth.UserContextKey, claims)
	return req.WithContext(ctx)
}
