package integration

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanifnr/edocs/internal/models"
	"github.com/hanifnr/edocs/internal/repositories"
	"github.com/hanifnr/edocs/internal/services"
)

// TestAuditListingCapAndOrdering seeds more rows than the listing cap and
// verifies the result is capped and newest-first with no ties out of order.
func TestAuditListingCapAndOrdering(t *testing.T) {
	testDB, _ := setupSuite(t)
	ctx := context.Background()

	admin, err := SeedUser(ctx, testDB.DB, TestUsername("auditor"), TestPassword, models.RoleAdmin)
	require.NoError(t, err)

	// 120 rows, one second apart, so every created_at is distinct
	_, err = testDB.Pool.Exec(ctx,
		`INSERT INTO audit_logs (action_type, created_at)
		 SELECT 'USER_LOGIN', NOW() - (g || ' seconds')::interval
		 FROM generate_series(1, 120) g`)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditService := services.NewAuditService(repositories.NewAuditLogRepository(testDB.DB), logger)

	claims := &models.TokenClaims{
		UserID:   admin.ID,
		RoleName: models.RoleAdmin,
		Username: admin.Username,
	}
	entries, err := auditService.ListRecent(ctx, claims, "192.0.2.50")
	require.NoError(t, err)

	assert.Len(t, entries, services.MaxAuditListLimit)
	for i := 1; i < len(entries); i++ {
		assert.Truef(t, entries[i-1].CreatedAt.After(entries[i].CreatedAt),
			"entry %d (%s) not newer than entry %d (%s)",
			i-1, entries[i-1].CreatedAt, i, entries[i].CreatedAt)
	}
}
