package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mvaldes/almacen/internal/database"
	"github.com/mvaldes/almacen/internal/models"
	"github.com/mvaldes/almacen/internal/services"
	"github.com/stretchr/testify/assert"
)

func adminClaims() *models.TokenClaims {
	return &models.TokenClaims{Type: "access", UserID: "admin-1", Role: "admin"}
}

func userClaims(id string) *models.TokenClaims {
	return &models.TokenClaims{Type: "access", UserID: id, Role: "user"}
}

func TestGetUserHandler_SelfAccess(t *testing.T) {
	svc := &MockUserService{
		GetUserFunc: func(ctx context.Context, id string) database.Result {
			return database.Result{Success: true, Data: &services.UserResponse{ID: id}}
		},
	}
	h := NewUserHandler(svc)

	r := withURLParam(newRequest(http.MethodGet, "/users/user-1", ""), "id", "user-1")
	r = withClaims(r, userClaims("user-1"))

	w := httptest.NewRecorder()
	h.GetUser(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetUserHandler_OtherUserForbidden(t *testing.T) {
	h := NewUserHandler(&MockUserService{})

	r := withURLParam(newRequest(http.MethodGet, "/users/user-2", ""), "id", "user-2")
	r = withClaims(r, userClaims("user-1"))

	w := httptest.NewRecorder()
	h.GetUser(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetUserHandler_AdminCanFetchAnyone(t *testing.T) {
	svc := &MockUserService{
		GetUserFunc: func(ctx context.Context, id string) database.Result {
			return database.Result{Success: true, Data: &services.UserResponse{ID: id}}
		},
	}
	h := NewUserHandler(svc)

	r := withURLParam(newRequest(http.MethodGet, "/users/user-2", ""), "id", "user-2")
	r = withClaims(r, adminClaims())

	w := httptest.NewRecorder()
	h.GetUser(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetUserHandler_NoClaims(t *testing.T) {
	h := NewUserHandler(&MockUserService{})

	r := withURLParam(newRequest(http.MethodGet, "/users/user-1", ""), "id", "user-1")

	w := httptest.NewRecorder()
	h.GetUser(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateUserHandler_InvalidRole(t *testing.T) {
	h := NewUserHandler(&MockUserService{})

	w := httptest.NewRecorder()
	h.CreateUser(w, newRequest(http.MethodPost, "/users",
		`{"email":"x@example.com","password":"Str0ngPass!word","name":"X","role":"superuser"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateUserHandler_DuplicateEmail(t *testing.T) {
	svc := &MockUserService{
		CreateUserFunc: func(ctx context.Context, input services.CreateUserInput) database.Result {
			return database.Result{Success: false, Message: services.ReasonEmailTaken}
		},
	}
	h := NewUserHandler(svc)

	w := httptest.NewRecorder()
	h.CreateUser(w, newRequest(http.MethodPost, "/users",
		`{"email":"x@example.com","password":"Str0ngPass!word","name":"X","role":"user"}`))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteUserHandler_SelfDeleteRejected(t *testing.T) {
	h := NewUserHandler(&MockUserService{})

	r := withURLParam(newRequest(http.MethodDelete, "/users/admin-1", ""), "id", "admin-1")
	r = withClaims(r, adminClaims())

	w := httptest.NewRecorder()
	h.DeleteUser(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteUserHandler_NotFound(t *testing.T) {
	svc := &MockUserService{
		DeleteUserFunc: func(ctx context.Context, id string) database.Result {
			return database.Result{Success: false, Message: services.ReasonUserNotFound}
		},
	}
	h := NewUserHandler(svc)

	r := withURLParam(newRequest(http.MethodDelete, "/users/missing", ""), "id", "missing")
	r = withClaims(r, adminClaims())

	w := httptest.NewRecorder()
	h.DeleteUser(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListUsersHandler_LimitClamped(t *testing.T) {
	var gotLimit int
	svc := &MockUserService{
		ListUsersFunc: func(ctx context.Context, limit, offset int) database.Result {
			gotLimit = limit
			return database.Result{Success: true, Data: []*services.UserResponse{}}
		},
	}
	h := NewUserHandler(svc)

	w := httptest.NewRecorder()
	h.ListUsers(w, newRequest(http.MethodGet, "/users?limit=5000", ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100, gotLimit)
}
