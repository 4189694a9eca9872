package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mvaldes/almacen/internal/database"
	"github.com/mvaldes/almacen/internal/models"
	"github.com/mvaldes/almacen/internal/repositories"
	pkgauth "github.com/mvaldes/almacen/pkg/auth"
	"github.com/jackc/pgx/v5"
)

// CreateUserInput carries validated fields for admin user creation
type CreateUserInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// UpdateUserInput carries validated fields for user updates
type UpdateUserInput struct {
	Email string
	Name  string
	Role  string
}

// UserService handles user management business logic
type UserService struct {
	users  repositories.UserStore
	runner TransactionRunner
	logger *slog.Logger
}

func NewUserService(users repositories.UserStore, runner TransactionRunner, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		runner: runner,
		logger: logger,
	}
}

// GetUser retrieves an active user by ID
func (s *UserService) GetUser(ctx context.Context, id string) database.Result {
	return s.runner.RunQuery(ctx, "getUser", func(ctx context.Context) (any, error) {
		user, err := s.users.GetByID(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			return nil, errors.New(ReasonUserNotFound)
		}
		if err != nil {
			return nil, err
		}
		return toUserResponse(user), nil
	})
}

// ListUsers retrieves active users with pagination
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) database.Result {
	return s.runner.RunQuery(ctx, "listUsers", func(ctx context.Context) (any, error) {
		users, err := s.users.List(ctx, limit, offset)
		if err != nil {
			return nil, err
		}

		responses := make([]*UserResponse, 0, len(users))
		for _, user := range users {
			responses = append(responses, toUserResponse(user))
		}
		return responses, nil
	})
}

// CreateUser creates a user with the given role (admin operation)
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) database.Result {
	passwordHash, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		s.logger.Error("password hashing failed", slog.Any("error", err))
		return database.Result{Success: false, Message: "could not process password"}
	}

	return s.runner.RunMutation(ctx, "createUser", func(ctx context.Context, tx pgx.Tx) (database.Outcome, error) {
		user, err := s.users.WithTx(tx).Create(ctx, &models.User{
			Email:        input.Email,
			PasswordHash: passwordHash,
			Name:         input.Name,
			Role:         input.Role,
		})
		if errors.Is(err, models.ErrConflict) {
			return database.Rollback(ReasonEmailTaken, nil), nil
		}
		if err != nil {
			return database.Outcome{}, err
		}
		return database.Commit(toUserResponse(user)), nil
	})
}

// UpdateUser modifies user fields
func (s *UserService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) database.Result {
	return s.runner.RunMutation(ctx, "updateUser", func(ctx context.Context, tx pgx.Tx) (database.Outcome, error) {
		user, err := s.users.WithTx(tx).Update(ctx, id, &models.User{
			Email: input.Email,
			Name:  input.Name,
			Role:  input.Role,
		})
		if errors.Is(err, models.ErrNotFound) {
			return database.Rollback(ReasonUserNotFound, nil), nil
		}
		if errors.Is(err, models.ErrConflict) {
			return database.Rollback(ReasonEmailTaken, nil), nil
		}
		if err != nil {
			return database.Outcome{}, err
		}
		return database.Commit(toUserResponse(user)), nil
	})
}

// DeleteUser soft-deletes a user
func (s *UserService) DeleteUser(ctx context.Context, id string) database.Result {
	return s.runner.RunMutation(ctx, "deleteUser", func(ctx context.Context, tx pgx.Tx) (database.Outcome, error) {
		deleted, err := s.users.WithTx(tx).SoftDelete(ctx, id)
		if err != nil {
			return database.Outcome{}, err
		}
		if !deleted {
			return database.Rollback(ReasonUserNotFound, nil), nil
		}
		return database.Commit(map[string]string{"id": id}), nil
	})
}
