package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mvaldes/almacen/internal/models"
	"github.com/mvaldes/almacen/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginHandler_Success(t *testing.T) {
	svc := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
			assert.Equal(t, "alice@example.com", email)
			return &services.AuthResponse{
				User:   &services.UserResponse{ID: "user-1", Email: email},
				Tokens: &models.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
			}, nil
		},
	}
	h := NewAuthHandler(svc, nil)

	w := httptest.NewRecorder()
	h.Login(w, newRequest(http.MethodPost, "/auth/login",
		`{"email":"Alice@Example.com","password":"secret"}`))

	require.Equal(t, http.StatusOK, w.Code)

	var resp services.AuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "user-1", resp.User.ID)
	assert.Equal(t, "access", resp.Tokens.AccessToken)
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{}, nil)

	w := httptest.NewRecorder()
	h.Login(w, newRequest(http.MethodPost, "/auth/login",
		`{"email":"alice@example.com","password":"wrong"}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginHandler_LockedAccount(t *testing.T) {
	svc := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
			return nil, &models.AccountLockedError{RetryAfterSeconds: 540}
		},
	}
	h := NewAuthHandler(svc, nil)

	w := httptest.NewRecorder()
	h.Login(w, newRequest(http.MethodPost, "/auth/login",
		`{"email":"alice@example.com","password":"correct-password"}`))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "540", w.Header().Get("Retry-After"))
}

func TestLoginHandler_MalformedBody(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{}, nil)

	w := httptest.NewRecorder()
	h.Login(w, newRequest(http.MethodPost, "/auth/login", `{not json`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginHandler_MissingEmail(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{}, nil)

	w := httptest.NewRecorder()
	h.Login(w, newRequest(http.MethodPost, "/auth/login", `{"password":"secret"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	svc := &MockAuthService{
		RegisterFunc: func(ctx context.Context, email, password, name string) (*services.AuthResponse, error) {
			return nil, models.ErrConflict
		},
	}
	h := NewAuthHandler(svc, nil)

	w := httptest.NewRecorder()
	h.Register(w, newRequest(http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","password":"Str0ngPass!word","name":"Alice"}`))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterHandler_Success(t *testing.T) {
	svc := &MockAuthService{
		RegisterFunc: func(ctx context.Context, email, password, name string) (*services.AuthResponse, error) {
			return &services.AuthResponse{
				User:   &services.UserResponse{ID: "user-2", Email: email, Name: name},
				Tokens: &models.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
			}, nil
		},
	}
	h := NewAuthHandler(svc, nil)

	w := httptest.NewRecorder()
	h.Register(w, newRequest(http.MethodPost, "/auth/register",
		`{"email":"bob@example.com","password":"Str0ngPass!word","name":"Bob"}`))

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRefreshHandler_InvalidToken(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{}, nil)

	w := httptest.NewRecorder()
	h.Refresh(w, newRequest(http.MethodPost, "/auth/refresh",
		`{"refresh_token":"expired"}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyHandler_MissingBearer(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{}, nil)

	w := httptest.NewRecorder()
	h.Verify(w, newRequest(http.MethodGet, "/auth/verify", ""))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyHandler_Valid(t *testing.T) {
	svc := &MockAuthService{
		VerifyTokenFunc: func(ctx context.Context, token string) (*services.UserResponse, error) {
			return &services.UserResponse{ID: "user-1"}, nil
		},
	}
	h := NewAuthHandler(svc, nil)

	r := newRequest(http.MethodGet, "/auth/verify", "")
	r.Header.Set("Authorization", "Bearer some-token")

	w := httptest.NewRecorder()
	h.Verify(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, true, body["valid"])
}
