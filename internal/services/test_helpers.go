package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/mvaldes/almacen/internal/database"
	"github.com/mvaldes/almacen/internal/models"
	"github.com/mvaldes/almacen/internal/repositories"
	pkglogger "github.com/mvaldes/almacen/pkg/logger"
	"github.com/jackc/pgx/v5"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAudit() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(newTestLogger())
}

// MockTxRunner implements TransactionRunner without a database. It invokes
// the unit of work with a nil transaction and resolves its outcome the same
// way the real runner does, recording each operation name.
type MockTxRunner struct {
	Operations []string
	BeginErr   error
}

func (m *MockTxRunner) RunMutation(ctx context.Context, operation string, fn database.MutationFunc) database.Result {
	m.Operations = append(m.Operations, operation)

	if m.BeginErr != nil {
		return database.Result{Success: false, Message: m.BeginErr.Error()}
	}

	outcome, err := fn(ctx, nil)
	if err != nil {
		return database.Result{Success: false, Message: err.Error()}
	}
	if outcome.IsRollback() {
		message := outcome.RollbackReason()
		if message == "" {
			message = operation + " was rolled back"
		}
		return database.Result{Success: false, Data: outcome.Payload(), Message: message}
	}
	return database.Result{Success: true, Data: outcome.Payload(), Message: operation + " completed"}
}

func (m *MockTxRunner) RunQuery(ctx context.Context, operation string, fn database.QueryFunc) database.Result {
	m.Operations = append(m.Operations, operation)

	data, err := fn(ctx)
	if err != nil {
		return database.Result{Success: false, Message: err.Error()}
	}
	return database.Result{Success: true, Data: data, Message: operation + " completed"}
}

// MockUserStore implements repositories.UserStore for testing
type MockUserStore struct {
	GetByIDFunc          func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc       func(ctx context.Context, email string) (*models.User, error)
	GetActiveByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	ListFunc             func(ctx context.Context, limit, offset int) ([]*models.User, error)
	CreateFunc           func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc           func(ctx context.Context, id string, user *models.User) (*models.User, error)
	SoftDeleteFunc       func(ctx context.Context, id string) (bool, error)
	UpdateLastLoginFunc  func(ctx context.Context, id string) error
}

func (m *MockUserStore) WithTx(tx pgx.Tx) repositories.UserStore { return m }

func (m *MockUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserStore) GetActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetActiveByEmailFunc != nil {
		return m.GetActiveByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserStore) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockUserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserStore) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserStore) SoftDelete(ctx context.Context, id string) (bool, error) {
	if m.SoftDeleteFunc != nil {
		return m.SoftDeleteFunc(ctx, id)
	}
	return false, nil
}

func (m *MockUserStore) UpdateLastLogin(ctx context.Context, id string) error {
	if m.UpdateLastLoginFunc != nil {
		return m.UpdateLastLoginFunc(ctx, id)
	}
	return nil
}

// MockLoginAttemptStore implements repositories.LoginAttemptStore for testing
type MockLoginAttemptStore struct {
	FindByEmailFunc           func(ctx context.Context, email string) (*models.LoginAttempt, error)
	IsBlockedFunc             func(ctx context.Context, email string) (bool, error)
	RemainingBlockSecondsFunc func(ctx context.Context, email string) (int, error)
	RecordFailureFunc         func(ctx context.Context, email, ip string) (*models.LoginAttempt, error)
	ResetFunc                 func(ctx context.Context, email string) (bool, error)
	PurgeStaleFunc            func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *MockLoginAttemptStore) WithTx(tx pgx.Tx) repositories.LoginAttemptStore { return m }

func (m *MockLoginAttemptStore) FindByEmail(ctx context.Context, email string) (*models.LoginAttempt, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockLoginAttemptStore) IsBlocked(ctx context.Context, email string) (bool, error) {
	if m.IsBlockedFunc != nil {
		return m.IsBlockedFunc(ctx, email)
	}
	return false, nil
}

func (m *MockLoginAttemptStore) RemainingBlockSeconds(ctx context.Context, email string) (int, error) {
	if m.RemainingBlockSecondsFunc != nil {
		return m.RemainingBlockSecondsFunc(ctx, email)
	}
	return 0, nil
}

func (m *MockLoginAttemptStore) RecordFailure(ctx context.Context, email, ip string) (*models.LoginAttempt, error) {
	if m.RecordFailureFunc != nil {
		return m.RecordFailureFunc(ctx, email, ip)
	}
	return &models.LoginAttempt{Email: email, Attempts: 1}, nil
}

func (m *MockLoginAttemptStore) Reset(ctx context.Context, email string) (bool, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, email)
	}
	return true, nil
}

func (m *MockLoginAttemptStore) PurgeStale(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.PurgeStaleFunc != nil {
		return m.PurgeStaleFunc(ctx, cutoff)
	}
	return 0, nil
}

// MockProductStore implements repositories.ProductStore for testing
type MockProductStore struct {
	GetByIDFunc          func(ctx context.Context, id string) (*models.Product, error)
	GetByIDForUpdateFunc func(ctx context.Context, id string) (*models.Product, error)
	ListFunc             func(ctx context.Context, filter repositories.ProductFilter) ([]*models.Product, error)
	CreateFunc           func(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateFunc           func(ctx context.Context, id string, product *models.Product) (*models.Product, error)
	SetStockFunc         func(ctx context.Context, id string, stock int) error
	SoftDeleteFunc       func(ctx context.Context, id string) (bool, error)
	StatsFunc            func(ctx context.Context) (*models.ProductStats, error)
}

func (m *MockProductStore) WithTx(tx pgx.Tx) repositories.ProductStore { return m }

func (m *MockProductStore) GetByID(ctx context.Context, id string) (*models.Product, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockProductStore) GetByIDForUpdate(ctx context.Context, id string) (*models.Product, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockProductStore) List(ctx context.Context, filter repositories.ProductFilter) ([]*models.Product, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []*models.Product{}, nil
}

func (m *MockProductStore) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, product)
	}
	return nil, models.ErrInternalServer
}

func (m *MockProductStore) Update(ctx context.Context, id string, product *models.Product) (*models.Product, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, product)
	}
	return nil, models.ErrInternalServer
}

func (m *MockProductStore) SetStock(ctx context.Context, id string, stock int) error {
	if m.SetStockFunc != nil {
		return m.SetStockFunc(ctx, id, stock)
	}
	return nil
}

func (m *MockProductStore) SoftDelete(ctx context.Context, id string) (bool, error) {
	if m.SoftDeleteFunc != nil {
		return m.SoftDeleteFunc(ctx, id)
	}
	return false, nil
}

func (m *MockProductStore) Stats(ctx context.Context) (*models.ProductStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &models.ProductStats{}, nil
}

// MockTokenIssuer implements TokenIssuer for testing
type MockTokenIssuer struct {
	GenerateTokenPairFunc    func(user *models.User) (*models.TokenPair, error)
	ValidateTokenFunc        func(token string) (*models.TokenClaims, error)
	ValidateRefreshTokenFunc func(token string) (*models.TokenClaims, error)
}

func (m *MockTokenIssuer) GenerateTokenPair(user *models.User) (*models.TokenPair, error) {
	if m.GenerateTokenPairFunc != nil {
		return m.GenerateTokenPairFunc(user)
	}
	return &models.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (m *MockTokenIssuer) ValidateToken(token string) (*models.TokenClaims, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(token)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockTokenIssuer) ValidateRefreshToken(token string) (*models.TokenClaims, error) {
	if m.ValidateRefreshTokenFunc != nil {
		return m.ValidateRefreshTokenFunc(token)
	}
	return nil, models.ErrUnauthorized
}
