package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mvaldes/almacen/internal/auth"
	"github.com/mvaldes/almacen/internal/database"
	"github.com/mvaldes/almacen/internal/services"
	pkghttp "github.com/mvaldes/almacen/pkg/http"
)

// UserServiceInterface defines the user management logic the handler needs
type UserServiceInterface interface {
	GetUser(ctx context.Context, id string) database.Result
	ListUsers(ctx context.Context, limit, offset int) database.Result
	CreateUser(ctx context.Context, input services.CreateUserInput) database.Result
	UpdateUser(ctx context.Context, id string, input services.UpdateUserInput) database.Result
	DeleteUser(ctx context.Context, id string) database.Result
}

// UserHandler handles user management endpoints
type UserHandler struct {
	service UserServiceInterface
}

func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// CreateUserRequest is the request body for admin user creation
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Role     string `json:"role" validate:"required,oneof=user admin"`
}

// UpdateUserRequest is the request body for user updates
type UpdateUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=1,max=120"`
	Role  string `json:"role" validate:"required,oneof=user admin"`
}

// GetUser returns a single user. Non-admins can only fetch themselves.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}
	if claims.Role != "admin" && claims.UserID != id {
		pkghttp.WriteForbidden(w, "access denied")
		return
	}

	writeResult(w, http.StatusOK, h.service.GetUser(r.Context(), id))
}

// ListUsers returns a page of users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20, 100)
	offset := queryInt(r, "offset", 0, 1<<30)

	writeResult(w, http.StatusOK, h.service.ListUsers(r.Context(), limit, offset))
}

// CreateUser creates a user with an explicit role
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result := h.service.CreateUser(r.Context(), services.CreateUserInput{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
		Name:     strings.TrimSpace(req.Name),
		Role:     req.Role,
	})
	writeResult(w, http.StatusCreated, result)
}

// UpdateUser modifies a user's profile fields
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result := h.service.UpdateUser(r.Context(), id, services.UpdateUserInput{
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Name:  strings.TrimSpace(req.Name),
		Role:  req.Role,
	})
	writeResult(w, http.StatusOK, result)
}

// DeleteUser soft-deletes a user
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	claims := auth.GetUserFromContext(r)
	if claims != nil && claims.UserID == id {
		pkghttp.WriteBadRequest(w, "cannot delete own account")
		return
	}

	writeResult(w, http.StatusOK, h.service.DeleteUser(r.Context(), id))
}

// queryInt reads a bounded non-negative integer query parameter
func queryInt(r *http.Request, name string, def, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}
