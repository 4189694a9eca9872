package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mvaldes/almacen/internal/database"
	"github.com/mvaldes/almacen/internal/models"
	"github.com/mvaldes/almacen/internal/repositories"
	pkgauth "github.com/mvaldes/almacen/pkg/auth"
	pkglogger "github.com/mvaldes/almacen/pkg/logger"
	"github.com/jackc/pgx/v5"
)

// TokenIssuer generates and validates token pairs. *auth.TokenManager
// implements it.
type TokenIssuer interface {
	GenerateTokenPair(user *models.User) (*models.TokenPair, error)
	ValidateToken(token string) (*models.TokenClaims, error)
	ValidateRefreshToken(token string) (*models.TokenClaims, error)
}

// AuthResponse is returned by login, register and refresh
type AuthResponse struct {
	User   *UserResponse     `json:"user"`
	Tokens *models.TokenPair `json:"tokens"`
}

// UserResponse is the public shape of a user
type UserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// AuthService handles authentication business logic. The lockout state is
// read before credentials are checked and mutated inside the transactional
// boundary, so a blocked identity is rejected regardless of password
// correctness.
type AuthService struct {
	users    repositories.UserStore
	attempts repositories.LoginAttemptStore
	runner   TransactionRunner
	tokens   TokenIssuer
	logger   *slog.Logger
	audit    *pkglogger.AuditLogger
}

func NewAuthService(
	users repositories.UserStore,
	attempts repositories.LoginAttemptStore,
	runner TransactionRunner,
	tokens TokenIssuer,
	logger *slog.Logger,
	audit *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		users:    users,
		attempts: attempts,
		runner:   runner,
		tokens:   tokens,
		logger:   logger,
		audit:    audit,
	}
}

// Login authenticates a user. Order matters: the lockout check runs first,
// so a locked account is reported as locked even when the password is
// correct; a failed attempt increments the counter; a success resets it.
func (s *AuthService) Login(ctx context.Context, email, password, ipAddress string) (*AuthResponse, error) {
	blocked, err := s.attempts.IsBlocked(ctx, email)
	if err != nil {
		// Fail open on storage errors so an outage cannot lock everyone out
		s.logger.Error("lockout check failed",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
		blocked = false
	}

	if blocked {
		remaining, err := s.attempts.RemainingBlockSeconds(ctx, email)
		if err != nil {
			remaining = 0
		}
		s.audit.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login",
			Email:         email,
			IPAddress:     ipAddress,
			Success:       false,
			FailureReason: "account_locked",
		})
		return nil, &models.AccountLockedError{RetryAfterSeconds: remaining}
	}

	user, err := s.users.GetActiveByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("user lookup failed", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if user == nil || errors.Is(err, models.ErrNotFound) {
		s.recordFailure(ctx, email, ipAddress, "unknown_user")
		return nil, models.ErrUnauthorized
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.recordFailure(ctx, email, ipAddress, "wrong_password")
		return nil, models.ErrUnauthorized
	}

	s.clearFailures(ctx, user)

	tokens, err := s.tokens.GenerateTokenPair(user)
	if err != nil {
		s.logger.Error("token generation failed", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login",
		UserID:    user.ID,
		Email:     email,
		IPAddress: ipAddress,
		Success:   true,
	})

	return &AuthResponse{User: toUserResponse(user), Tokens: tokens}, nil
}

// Register creates a new account and returns a token pair
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResponse, error) {
	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, models.ErrBadRequest
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("user lookup failed", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if existing != nil {
		return nil, models.ErrConflict
	}

	passwordHash, err := pkgauth.HashPassword(password)
	if err != nil {
		return nil, models.ErrInternalServer
	}

	result := s.runner.RunMutation(ctx, "registerUser", func(ctx context.Context, tx pgx.Tx) (database.Outcome, error) {
		user, err := s.users.WithTx(tx).Create(ctx, &models.User{
			Email:        email,
			PasswordHash: passwordHash,
			Name:         name,
			Role:         "user",
		})
		if errors.Is(err, models.ErrConflict) {
			return database.Rollback(ReasonEmailTaken, nil), nil
		}
		if err != nil {
			return database.Outcome{}, err
		}
		return database.Commit(user), nil
	})

	if !result.Success {
		if result.Message == ReasonEmailTaken {
			return nil, models.ErrConflict
		}
		return nil, models.ErrInternalServer
	}

	user := result.Data.(*models.User)
	tokens, err := s.tokens.GenerateTokenPair(user)
	if err != nil {
		s.logger.Error("token generation failed", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "register",
		UserID:    user.ID,
		Email:     email,
		Success:   true,
	})

	return &AuthResponse{User: toUserResponse(user), Tokens: tokens}, nil
}

// RefreshToken exchanges a valid refresh token for a new pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, models.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, models.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, models.ErrUnauthorized
	}

	tokens, err := s.tokens.GenerateTokenPair(user)
	if err != nil {
		return nil, models.ErrInternalServer
	}

	return &AuthResponse{User: toUserResponse(user), Tokens: tokens}, nil
}

// VerifyToken reports whether an access token is valid and owned by an
// active user
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*UserResponse, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil || claims.Type != "access" {
		return nil, models.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, models.ErrUnauthorized
	}

	return toUserResponse(user), nil
}

// recordFailure increments the attempt counter inside the transactional
// boundary. Failures here are logged and swallowed: a broken counter must
// not change the "invalid credentials" outcome.
func (s *AuthService) recordFailure(ctx context.Context, email, ipAddress, reason string) {
	result := s.runner.RunMutation(ctx, "recordLoginFailure", func(ctx context.Context, tx pgx.Tx) (database.Outcome, error) {
		attempt, err := s.attempts.WithTx(tx).RecordFailure(ctx, email, ipAddress)
		if err != nil {
			return database.Outcome{}, err
		}
		return database.Commit(attempt), nil
	})

	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "login",
		Email:         email,
		IPAddress:     ipAddress,
		Success:       false,
		FailureReason: reason,
	})

	if result.Success {
		if attempt, ok := result.Data.(*models.LoginAttempt); ok && attempt.Blocked(time.Now()) {
			s.audit.LogAccountLockout(email, ipAddress, attempt.Attempts, attempt.RemainingBlock(time.Now()))
		}
	}
}

// clearFailures resets the counter and records the login timestamp in one
// transaction
func (s *AuthService) clearFailures(ctx context.Context, user *models.User) {
	result := s.runner.RunMutation(ctx, "resetLoginFailures", func(ctx context.Context, tx pgx.Tx) (database.Outcome, error) {
		if _, err := s.attempts.WithTx(tx).Reset(ctx, user.Email); err != nil {
			return database.Outcome{}, err
		}
		if err := s.users.WithTx(tx).UpdateLastLogin(ctx, user.ID); err != nil {
			return database.Outcome{}, err
		}
		return database.Commit(nil), nil
	})

	if !result.Success {
		s.logger.Error("failed to reset login attempts",
			slog.String("email", pkglogger.SanitizedEmail(user.Email)),
			slog.String("message", result.Message))
	}
}
