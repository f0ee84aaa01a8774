package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/hanifnr/edocs/internal/auth"
	"github.com/hanifnr/edocs/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testThreshold = 3

type authFixture struct {
	users   *MockUserRepository
	roles   *MockRoleRepository
	tokens  *MockTokenIssuer
	audit   *MockAuditRecorder
	service *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		users:  &MockUserRepository{},
		roles:  &MockRoleRepository{},
		tokens: &MockTokenIssuer{},
		audit:  &MockAuditRecorder{},
	}
	f.roles.GetByIDFunc = func(ctx context.Context, id int) (*models.Role, error) {
		return &models.Role{ID: id, Name: models.RoleEditor}, nil
	}
	f.service = NewAuthService(
		f.users,
		f.roles,
		f.tokens,
		f.audit,
		LockoutPolicy{Threshold: testThreshold},
		auth.NewTimingDelay(auth.TimingConfig{}),
		slog.Default(),
	)
	return f
}

// ============================================================================
// Login: lookup and active check
// ============================================================================

func TestAuthService_Login_UnknownUsername(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.service.Login(context.Background(), "ghost", "whatever", "203.0.113.1")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	// Account identity unknown: nothing may reach the audit sink
	assert.Empty(t, f.audit.Events)
	assert.Empty(t, f.users.UpdateCalls)
}

func TestAuthService_Login_EmptyUsername(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.service.Login(context.Background(), "   ", "whatever", "")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	assert.Empty(t, f.audit.Events)
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	f := newAuthFixture(t)
	user := NewTestUser("budi", "Correct-Password-1", 0)
	user.IsActive = false
	f.users.GetByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		return user, nil
	}

	// Password correctness is irrelevant for a disabled account
	resp, err := f.service.Login(context.Background(), "budi", "Correct-Password-1", "203.0.113.1")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, models.ErrAccountDisabled)

	events := f.audit.ByAction(models.AuditActionLoginBlockedInactive)
	require.Len(t, events, 1)
	assert.Equal(t, "budi", events[0].Details["username"])
	require.NotNil(t, events[0].IPAddress)
	assert.Equal(t, "203.0.113.1", *events[0].IPAddress)

	// The counter is never touched on a disabled account
	assert.Empty(t, f.users.UpdateCalls)
}

func TestAuthService_Login_StoreFault(t *testing.T) {
	f := newAuthFixture(t)
	f.users.GetByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		return nil, fmt.Errorf("connection refused")
	}

	resp, err := f.service.Login(context.Background(), "budi", "pw", "")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, models.ErrInternalServer)
	assert.Empty(t, f.audit.Events)
}

// ============================================================================
// Login: wrong password and lockout
// ============================================================================

func TestAuthService_Login_WrongPassword_IncrementsCounter(t *testing.T) {
	f := newAuthFixture(t)
	user := NewTestUser("budi", "Correct-Password-1", 0)
	f.users.GetByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		return user, nil
	}

	resp, err := f.service.Login(context.Background(), "budi", "wrong", "203.0.113.1")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	require.Len(t, f.users.UpdateCalls, 1)
	update := f.users.UpdateCalls[0]
	assert.Equal(t, user.ID, update.ID)
	assert.Equal(t, 0, update.PrevCount)
	assert.Equal(t, 1, update.NewCount)
	assert.True(t, update.IsActive)

	events := f.audit.ByAction(models.AuditActionLoginFailed)
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].Details["attemptCount"])
	assert.Empty(t, f.audit.ByAction(models.AuditActionAccountLocked))
}

func TestAuthService_Login_WrongPassword_LocksAtThreshold(t *testing.T) {
	f := newAuthFixture(t)
	user := NewTestUser("budi", "Correct-Password-1", testThreshold-1)
	f.users.GetByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		return user, nil
	}

	resp, err := f.service.Login(context.Background(), "budi", "wrong", "203.0.113.1")

	assert.Nil(t, resp)

	var locked *models.AccountLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, testThreshold, locked.Threshold)
	assert.Contains(t, err.Error(), "3")

	require.Len(t, f.users.UpdateCalls, 1)
	update := f.users.UpdateCalls[0]
	assert.Equal(t, testThreshold-1, update.PrevCount)
	assert.Equal(t, testThreshold, update.NewCount)
	assert.False(t, update.IsActive, "lock must be persisted with the increment")

	events := f.audit.ByAction(models.AuditActionAccountLocked)
	require.Len(t, events, 1)
	assert.Equal(t, "budi", events[0].Details["username"])
	assert.Equal(t, testThreshold, events[0].Details["attempts"])
	assert.Equal(t, "LOCKED", events[0].Details["status"])
	assert.Empty(t, f.audit.ByAction(models.AuditActionLoginFailed))
}

func TestAuthService_Login_WrongPassword_PersistFailure(t *testing.T) {
	f := newAuthFixture(t)
	user := NewTestUser("budi", "Correct-Password-1", 0)
	f.users.GetByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		return user, nil
	}
	f.users.UpdateLoginStateFunc = func(ctx context.Context, id string, prevCount, newCount int, isActive bool) error {
		return errors.New("write failed")
	}

	resp, err := f.service.Login(context.Background(), "budi", "wrong", "")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, models.ErrInternalServer)
	assert.Empty(t, f.audit.Events, "no audit event without a persisted state change")
}

func TestAuthService_Login_ConcurrentIncrementConflict(t *testing.T) {
	f := newAuthFixture(t)
	user := NewTestUser("budi", "Correct-Password-1", 1)
	f.users.GetByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		return user, nil
	}
	// A concurrent attempt already bumped the counter: the optimistic guard
	// rejects this write and the fault surfaces immediately, no retry.
	f.users.UpdateLoginStateFunc = func(ctx context.Context, id string, prevCount, newCount int, isActive bool) error {
		return models.ErrConflict
	}

	resp, err := f.service.Login(context.Background(), "budi", "wrong", "")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, models.ErrInternalServer)
}

// ============================================================================
// Login: success
// ============================================================================

func TestAuthService_Login_Success_ResetsCounter(t *testing.T) {
	f := newAuthFixture(t)
	user := NewTestUser("budi", "Correct-Password-1", testThreshold-1)
	f.users.GetByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		return user, nil
	}

	resp, err := f.service.Login(context.Background(), "budi", "Correct-Password-1", "203.0.113.1")

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "test-token", resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.Equal(t, "budi", resp.User.Username)
	assert.Equal(t, user.RoleID, resp.User.RoleID)

	require.Len(t, f.users.UpdateCalls, 1)
	update := f.users.UpdateCalls[0]
	assert.Equal(t, testThreshold-1, update.PrevCount)
	assert.Equal(t, 0, update.NewCount)
	assert.True(t, update.IsActive)

	events := f.audit.ByAction(models.AuditActionUserLogin)
	require.Len(t, events, 1)
	assert.Equal(t, "budi", events[0].Details["username"])
	assert.Equal(t, models.RoleEditor, events[0].Details["role"])
	assert.Len(t, f.audit.Events, 1, "success emits exactly one event")
}

func TestAuthService_Login_Success_NoResetWriteAtZero(t *testing.T) {
	f := newAuthFixture(t)
	user := NewTestUser("budi", "Correct-Password-1", 0)
	f.users.GetByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		return user, nil
	}

	resp, err := f.service.Login(context.Background(), "budi", "Correct-Password-1", "")

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Empty(t, f.users.UpdateCalls, "no reset write when the counter is already zero")
	assert.Len(t, f.audit.ByAction(models.AuditActionUserLogin), 1)
}

func TestAuthService_Login_RoleLookupFallsBackToViewer(t *testing.T) {
	f := newAuthFixture(t)
	user := NewTestUser("budi", "Correct-Password-1", 0)
	f.users.GetByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		return user, nil
	}
	f.roles.GetByIDFunc = func(ctx context.Context, id int) (*models.Role, error) {
		return nil, models.ErrNotFound
	}

	var issuedRole string
	f.tokens.GenerateTokenFunc = func(userID string, roleID int, roleName, username string) (string, error) {
		issuedRole = roleName
		return "t", nil
	}

	resp, err := f.service.Login(context.Background(), "budi", "Correct-Password-1", "")

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, models.RoleViewer, issuedRole)

	events := f.audit.ByAction(models.AuditActionUserLogin)
	require.Len(t, events, 1)
	assert.Equal(t, models.RoleViewer, events[0].Details["role"])
}

func TestAuthService_Login_TokenFault(t *testing.T) {
	f := newAuthFixture(t)
	user := NewTestUser("budi", "Correct-Password-1", 0)
	f.users.GetByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		return user, nil
	}
	f.tokens.GenerateTokenFunc = func(userID string, roleID int, roleName, username string) (string, error) {
		return "", errors.New("signing failed")
	}

	resp, err := f.service.Login(context.Background(), "budi", "Correct-Password-1", "")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, models.ErrInternalServer)
	assert.Empty(t, f.audit.ByAction(models.AuditActionUserLogin))
}

// ============================================================================
// Full lockout scenario (threshold=3)
// ============================================================================

func TestAuthService_Login_LockoutScenario(t *testing.T) {
	f := newAuthFixture(t)
	user := NewTestUser("budi", "Correct-Password-1", 0)
	f.users.GetByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		copied := *user
		return &copied, nil
	}
	// Stateful store: persisted decisions feed the next attempt
	f.users.UpdateLoginStateFunc = func(ctx context.Context, id string, prevCount, newCount int, isActive bool) error {
		require.Equal(t, user.FailedAttemptCount, prevCount)
		user.FailedAttemptCount = newCount
		user.IsActive = isActive
		return nil
	}

	ctx := context.Background()

	_, err := f.service.Login(ctx, "budi", "wrong", "")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	assert.Equal(t, 1, user.FailedAttemptCount)
	assert.True(t, user.IsActive)

	_, err = f.service.Login(ctx, "budi", "wrong", "")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	assert.Equal(t, 2, user.FailedAttemptCount)
	assert.True(t, user.IsActive)

	_, err = f.service.Login(ctx, "budi", "wrong", "")
	var locked *models.AccountLockedError
	require.ErrorAs(t, err, &locked)
	assert.Contains(t, err.Error(), "3")
	assert.Equal(t, 3, user.FailedAttemptCount)
	assert.False(t, user.IsActive)

	// A fourth attempt is blocked regardless of password correctness
	_, err = f.service.Login(ctx, "budi", "Correct-Password-1", "")
	assert.ErrorIs(t, err, models.ErrAccountDisabled)
	assert.Equal(t, 3, user.FailedAttemptCount)

	assert.Len(t, f.audit.ByAction(models.AuditActionLoginFailed), 2)
	assert.Len(t, f.audit.ByAction(models.AuditActionAccountLocked), 1)
	assert.Len(t, f.audit.ByAction(models.AuditActionLoginBlockedInactive), 1)
}

// ============================================================================
// Logout and Me
// ============================================================================

func TestAuthService_Logout_RecordsAuditEvent(t *testing.T) {
	f := newAuthFixture(t)
	user := NewTestUser("budi", "pw-Irrelevant-1", 0)
	claims := &models.TokenClaims{UserID: user.ID, RoleID: 1, RoleName: models.RoleViewer, Username: "budi"}

	f.service.Logout(context.Background(), claims, "203.0.113.1")

	events := f.audit.ByAction(models.AuditActionUserLogout)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].ActorID)
	assert.Equal(t, user.ID, events[0].ActorID.String())
}

func TestAuthService_Logout_FailingSinkDoesNotPanic(t *testing.T) {
	// Wire a real AuditService over a failing store: logout must complete.
	store := &MockAuditLogStore{
		CreateFunc: func(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
			return nil, errors.New("sink unavailable")
		},
	}
	audit := NewAuditService(store, slog.Default())
	service := NewAuthService(
		&MockUserRepository{},
		&MockRoleRepository{},
		&MockTokenIssuer{},
		audit,
		LockoutPolicy{Threshold: testThreshold},
		auth.NewTimingDelay(auth.TimingConfig{}),
		slog.Default(),
	)

	claims := &models.TokenClaims{UserID: NewTestUser("budi", "pw-Irrelevant-1", 0).ID, Username: "budi"}

	assert.NotPanics(t, func() {
		service.Logout(context.Background(), claims, "")
	})
	assert.Len(t, store.Created, 1, "the write is attempted even though it fails")
}

func TestAuthService_Me_EmitsSessionCheck(t *testing.T) {
	f := newAuthFixture(t)
	user := NewTestUser("budi", "pw-Irrelevant-1", 0)
	claims := &models.TokenClaims{UserID: user.ID, RoleID: 2, RoleName: models.RoleEditor, Username: "budi"}

	identity := f.service.Me(context.Background(), claims, "203.0.113.1")

	require.NotNil(t, identity)
	assert.Equal(t, user.ID, identity.ID)
	assert.Equal(t, "budi", identity.Username)
	assert.Equal(t, 2, identity.RoleID)
	assert.Equal(t, models.RoleEditor, identity.RoleName)

	events := f.audit.ByAction(models.AuditActionSessionCheck)
	require.Len(t, events, 1)
	assert.Equal(t, "/api/auth/me", events[0].Details["endpoint"])
}
