package integration

import (
	"context"
	"testing"
	"time"

	"github.com/mvaldes/almacen/internal/auth"
	"github.com/mvaldes/almacen/internal/database"
	"github.com/mvaldes/almacen/internal/models"
	"github.com/mvaldes/almacen/internal/services"
	pkglogger "github.com/mvaldes/almacen/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *services.AuthService {
	t.Helper()

	logger := TestLogger()
	userRepo, _, attemptRepo := NewRepositories(testDB.DB)
	runner := database.NewTxRunner(testDB.DB, logger, "test")
	tokens := auth.NewTokenManager("integration-test-secret-of-decent-length", 15*time.Minute, 24*time.Hour)

	return services.NewAuthService(userRepo, attemptRepo, runner, tokens, logger, pkglogger.NewAuditLogger(logger))
}

func TestLockout_FiveFailuresBlocksCorrectPassword(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testDB.CleanupTables(ctx))

	const password = "Correct1Password"
	user, err := SeedUser(ctx, testDB.Pool, "lockout@example.com", password)
	require.NoError(t, err)

	svc := newAuthService(t)

	for i := 0; i < 5; i++ {
		_, err := svc.Login(ctx, user.Email, "wrong-password", "10.0.0.1")
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	}

	// the block set on the fifth failure wins over valid credentials
	_, err = svc.Login(ctx, user.Email, password, "10.0.0.1")
	require.ErrorIs(t, err, models.ErrAccountLocked)

	var locked *models.AccountLockedError
	require.ErrorAs(t, err, &locked)
	assert.Greater(t, locked.RetryAfterSeconds, 0)
}

func TestLockout_ExpiredBlockKeepsCounter(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testDB.CleanupTables(ctx))

	const password = "Correct1Password"
	user, err := SeedUser(ctx, testDB.Pool, "expiry@example.com", password)
	require.NoError(t, err)

	svc := newAuthService(t)
	_, _, attemptRepo := NewRepositories(testDB.DB)

	for i := 0; i < 5; i++ {
		_, _ = svc.Login(ctx, user.Email, "wrong-password", "10.0.0.1")
	}

	blocked, err := attemptRepo.IsBlocked(ctx, user.Email)
	require.NoError(t, err)
	require.True(t, blocked)

	// an expired window lifts the block but the counter survives, so the
	// very next failure re-blocks immediately
	require.NoError(t, ExpireBlock(ctx, testDB.Pool, user.Email))

	blocked, err = attemptRepo.IsBlocked(ctx, user.Email)
	require.NoError(t, err)
	assert.False(t, blocked)

	_, err = svc.Login(ctx, user.Email, "wrong-password", "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	blocked, err = attemptRepo.IsBlocked(ctx, user.Email)
	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestLockout_SuccessResetsCounter(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testDB.CleanupTables(ctx))

	const password = "Correct1Password"
	user, err := SeedUser(ctx, testDB.Pool, "reset@example.com", password)
	require.NoError(t, err)

	svc := newAuthService(t)
	_, _, attemptRepo := NewRepositories(testDB.DB)

	for i := 0; i < 3; i++ {
		_, _ = svc.Login(ctx, user.Email, "wrong-password", "10.0.0.1")
	}

	attempt, err := attemptRepo.FindByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.NotNil(t, attempt)
	assert.Equal(t, 3, attempt.Attempts)

	resp, err := svc.Login(ctx, user.Email, password, "10.0.0.1")
	require.NoError(t, err)
	assert.NotNil(t, resp.Tokens)

	attempt, err = attemptRepo.FindByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.NotNil(t, attempt)
	assert.Equal(t, 0, attempt.Attempts)
	assert.Nil(t, attempt.BlockedUntil)

	// after the reset, five fresh failures are needed before a new block
	_, err = svc.Login(ctx, user.Email, "wrong-password", "10.0.0.1")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	blocked, err := attemptRepo.IsBlocked(ctx, user.Email)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestLockout_UnknownIdentityIsTracked(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testDB.CleanupTables(ctx))

	svc := newAuthService(t)
	_, _, attemptRepo := NewRepositories(testDB.DB)

	for i := 0; i < 5; i++ {
		_, err := svc.Login(ctx, "ghost@example.com", "whatever", "10.0.0.1")
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	}

	blocked, err := attemptRepo.IsBlocked(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.True(t, blocked, "nonexistent identities block the same way real ones do")
}
