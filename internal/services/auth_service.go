package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hanifnr/edocs/internal/auth"
	"github.com/hanifnr/edocs/internal/models"
	pkgauth "github.com/hanifnr/edocs/pkg/auth"
)

// UserRepository defines the credential-store interface used by the auth flow
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateLoginState(ctx context.Context, id string, prevCount, newCount int, isActive bool) error
}

// RoleRepository defines the role lookup interface
type RoleRepository interface {
	GetByID(ctx context.Context, id int) (*models.Role, error)
}

// TokenIssuer mints signed session tokens
type TokenIssuer interface {
	GenerateToken(userID string, roleID int, roleName, username string) (string, error)
}

// AuditRecorder appends audit events, best-effort
type AuditRecorder interface {
	Record(ctx context.Context, log *models.AuditLog)
}

// AuthService orchestrates the login flow: credential lookup, active check,
// password verification, lockout policy application, token issuance, and the
// audit emission required on every branch.
type AuthService struct {
	users  UserRepository
	roles  RoleRepository
	tokens TokenIssuer
	audit  AuditRecorder
	policy LockoutPolicy
	timing *auth.TimingDelay
	logger *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserRepository, roles RoleRepository, tokens TokenIssuer, audit AuditRecorder, policy LockoutPolicy, timing *auth.TimingDelay, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		roles:  roles,
		tokens: tokens,
		audit:  audit,
		policy: policy,
		timing: timing,
		logger: logger,
	}
}

// UserProjection is the minimal user shape returned on successful login
type UserProjection struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	RoleID   int    `json:"roleId"`
}

// LoginResponse is the successful login payload
type LoginResponse struct {
	Token string          `json:"token"`
	User  *UserProjection `json:"user"`
}

// Identity is the caller projection returned by Me
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	RoleID   int    `json:"roleId"`
	RoleName string `json:"roleName"`
}

// Login authenticates a user and returns a session token.
// Error taxonomy: ErrInvalidCredentials (unknown user or wrong password),
// ErrAccountDisabled (inactive at request time), *AccountLockedError (this
// attempt tripped the threshold), ErrInternalServer (store/hash/token fault).
func (s *AuthService) Login(ctx context.Context, username, password, ipAddress string) (*LoginResponse, error) {
	start := time.Now()

	if username = strings.TrimSpace(username); username == "" {
		s.logger.Warn("login attempt with empty username")
		s.timing.WaitFrom(start, false)
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Account identity unknown: no audit entry is written. Response
			// shape and timing stay uniform with the wrong-password branch.
			s.logger.Info("login failed: invalid credentials")
			s.timing.WaitFrom(start, false)
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to get user by username", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !user.IsActive {
		s.logger.Info("login blocked: account inactive", slog.String("user_id", user.ID))
		s.recordAudit(ctx, user, models.AuditActionLoginBlockedInactive, ipAddress, models.AuditDetails{
			"username": user.Username,
			"reason":   "account disabled or locked",
		})
		s.timing.WaitFrom(start, false)
		return nil, models.ErrAccountDisabled
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, s.applyLockout(ctx, start, user, ipAddress)
	}

	// Success: reset the failed-attempt counter, but only when a write is due
	if decision := s.policy.OnSuccess(); user.FailedAttemptCount != decision.NextCount {
		if err := s.users.UpdateLoginState(ctx, user.ID, user.FailedAttemptCount, decision.NextCount, true); err != nil {
			s.logger.Error("failed to reset failed-attempt counter",
				slog.String("user_id", user.ID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
	}

	roleName := s.resolveRoleName(ctx, user.RoleID)

	token, err := s.tokens.GenerateToken(user.ID, user.RoleID, roleName, user.Username)
	if err != nil {
		s.logger.Error("failed to generate session token",
			slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.recordAudit(ctx, user, models.AuditActionUserLogin, ipAddress, models.AuditDetails{
		"username": user.Username,
		"role":     roleName,
	})

	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("role", roleName))

	return &LoginResponse{
		Token: token,
		User: &UserProjection{
			ID:       user.ID,
			Username: user.Username,
			RoleID:   user.RoleID,
		},
	}, nil
}

// applyLockout handles a wrong-password attempt: it persists the policy
// decision, emits the mandated audit event, and maps the outcome to an error.
func (s *AuthService) applyLockout(ctx context.Context, start time.Time, user *models.User, ipAddress string) error {
	decision := s.policy.OnFailedAttempt(user.FailedAttemptCount)

	if err := s.users.UpdateLoginState(ctx, user.ID, user.FailedAttemptCount, decision.NextCount, !decision.LockAccount); err != nil {
		s.logger.Error("failed to persist login state",
			slog.String("user_id", user.ID), slog.Any("error", err))
		s.timing.WaitFrom(start, false)
		return models.ErrInternalServer
	}

	if decision.LockAccount {
		s.logger.Warn("account locked after repeated failed logins",
			slog.String("user_id", user.ID),
			slog.Int("attempts", decision.NextCount))
		s.recordAudit(ctx, user, models.AuditActionAccountLocked, ipAddress, models.AuditDetails{
			"username": user.Username,
			"attempts": decision.NextCount,
			"status":   "LOCKED",
		})
		s.timing.WaitFrom(start, false)
		return &models.AccountLockedError{Threshold: s.policy.Threshold}
	}

	s.logger.Info("login failed: invalid credentials",
		slog.String("user_id", user.ID),
		slog.Int("attempt_count", decision.NextCount))
	s.recordAudit(ctx, user, models.AuditActionLoginFailed, ipAddress, models.AuditDetails{
		"reason":       "incorrect password attempt",
		"attemptCount": decision.NextCount,
	})
	s.timing.WaitFrom(start, false)
	return models.ErrInvalidCredentials
}

// Logout acknowledges a logout. The audit write is fire-and-forget: a failing
// sink never blocks the response.
func (s *AuthService) Logout(ctx context.Context, identity *models.TokenClaims, ipAddress string) {
	if identity == nil {
		return
	}

	entry := &models.AuditLog{
		ActionType: models.AuditActionUserLogout,
		Details: models.AuditDetails{
			"detail": "manual logout from client",
		},
	}
	if id, err := uuid.Parse(identity.UserID); err == nil {
		entry.ActorID = &id
		entry.RecordID = &id
	}
	tableName := models.AuditTableUsers
	entry.TableName = &tableName
	if ipAddress != "" {
		entry.IPAddress = &ipAddress
	}

	s.audit.Record(ctx, entry)
	s.logger.Info("user logged out", slog.String("user_id", identity.UserID))
}

// Me returns the caller's identity projection and records the session check.
func (s *AuthService) Me(ctx context.Context, identity *models.TokenClaims, ipAddress string) *Identity {
	entry := &models.AuditLog{
		ActionType: models.AuditActionSessionCheck,
		Details: models.AuditDetails{
			"endpoint": "/api/auth/me",
		},
	}
	if id, err := uuid.Parse(identity.UserID); err == nil {
		entry.ActorID = &id
		entry.RecordID = &id
	}
	tableName := models.AuditTableUsers
	entry.TableName = &tableName
	if ipAddress != "" {
		entry.IPAddress = &ipAddress
	}

	s.audit.Record(ctx, entry)

	return &Identity{
		ID:       identity.UserID,
		Username: identity.Username,
		RoleID:   identity.RoleID,
		RoleName: identity.RoleName,
	}
}

// resolveRoleName maps a role id to its name, defaulting to viewer when the
// lookup fails. The fallback is deliberate: a missing role must not block an
// otherwise valid login.
func (s *AuthService) resolveRoleName(ctx context.Context, roleID int) string {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil || role == nil {
		s.logger.Warn("role lookup failed, defaulting to viewer",
			slog.Int("role_id", roleID))
		return models.RoleViewer
	}
	return strings.ToLower(role.Name)
}

func (s *AuthService) recordAudit(ctx context.Context, user *models.User, actionType, ipAddress string, details models.AuditDetails) {
	entry := &models.AuditLog{
		ActionType: actionType,
		Details:    details,
	}
	if id, err := uuid.Parse(user.ID); err == nil {
		entry.ActorID = &id
		entry.RecordID = &id
	}
	tableName := models.AuditTableUsers
	entry.TableName = &tableName
	if ipAddress != "" {
		entry.IPAddress = &ipAddress
	}

	s.audit.Record(ctx, entry)
}
