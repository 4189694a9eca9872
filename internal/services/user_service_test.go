package services

import (
	"context"
	"testing"

	"github.com/mvaldes/almacen/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(users *MockUserStore, runner *MockTxRunner) *UserService {
	return NewUserService(users, runner, newTestLogger())
}

func TestCreateUser(t *testing.T) {
	var createdRole string
	users := &MockUserStore{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			user.ID = "user-3"
			createdRole = user.Role
			return user, nil
		},
	}
	runner := &MockTxRunner{}

	svc := newUserService(users, runner)
	result := svc.CreateUser(context.Background(), CreateUserInput{
		Email:    "carol@example.com",
		Password: "Str0ngPass!word",
		Name:     "Carol",
		Role:     "admin",
	})

	require.True(t, result.Success)
	resp := result.Data.(*UserResponse)
	assert.Equal(t, "user-3", resp.ID)
	assert.Equal(t, "admin", createdRole)
	assert.Equal(t, []string{"createUser"}, runner.Operations)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	users := &MockUserStore{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			return nil, models.ErrConflict
		},
	}

	svc := newUserService(users, &MockTxRunner{})
	result := svc.CreateUser(context.Background(), CreateUserInput{
		Email:    "carol@example.com",
		Password: "Str0ngPass!word",
		Name:     "Carol",
		Role:     "user",
	})

	assert.False(t, result.Success)
	assert.Equal(t, ReasonEmailTaken, result.Message)
}

func TestUpdateUser_NotFound(t *testing.T) {
	users := &MockUserStore{
		UpdateFunc: func(ctx context.Context, id string, user *models.User) (*models.User, error) {
			return nil, models.ErrNotFound
		},
	}

	svc := newUserService(users, &MockTxRunner{})
	result := svc.UpdateUser(context.Background(), "missing", UpdateUserInput{Name: "X"})

	assert.False(t, result.Success)
	assert.Equal(t, ReasonUserNotFound, result.Message)
}

func TestDeleteUser(t *testing.T) {
	users := &MockUserStore{
		SoftDeleteFunc: func(ctx context.Context, id string) (bool, error) {
			return true, nil
		},
	}

	svc := newUserService(users, &MockTxRunner{})
	result := svc.DeleteUser(context.Background(), "user-1")

	assert.True(t, result.Success)
	assert.Equal(t, map[string]string{"id": "user-1"}, result.Data)
}

func TestDeleteUser_Missing(t *testing.T) {
	svc := newUserService(&MockUserStore{}, &MockTxRunner{})
	result := svc.DeleteUser(context.Background(), "missing")

	assert.False(t, result.Success)
	assert.Equal(t, ReasonUserNotFound, result.Message)
}

func TestGetUser(t *testing.T) {
	users := &MockUserStore{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Email: "alice@example.com", IsActive: true}, nil
		},
	}

	svc := newUserService(users, &MockTxRunner{})
	result := svc.GetUser(context.Background(), "user-1")

	require.True(t, result.Success)
	assert.Equal(t, "user-1", result.Data.(*UserResponse).ID)
}

func TestListUsers(t *testing.T) {
	users := &MockUserStore{
		ListFunc: func(ctx context.Context, limit, offset int) ([]*models.User, error) {
			return []*models.User{
				{ID: "a"}, {ID: "b"},
			}, nil
		},
	}

	svc := newUserService(users, &MockTxRunner{})
	result := svc.ListUsers(context.Background(), 20, 0)

	require.True(t, result.Success)
	assert.Len(t, result.Data.([]*UserResponse), 2)
}
