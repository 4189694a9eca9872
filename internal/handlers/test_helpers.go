package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mvaldes/almacen/internal/auth"
	"github.com/mvaldes/almacen/internal/database"
	"github.com/mvaldes/almacen/internal/models"
	"github.com/mvaldes/almacen/internal/repositories"
	"github.com/mvaldes/almacen/internal/services"
)

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc        func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error)
	RegisterFunc     func(ctx context.Context, email, password, name string) (*services.AuthResponse, error)
	RefreshTokenFunc func(ctx context.Context, refreshToken string) (*services.AuthResponse, error)
	VerifyTokenFunc  func(ctx context.Context, token string) (*services.UserResponse, error)
}

func (m *MockAuthService) Login(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, ipAddress)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthService) Register(ctx context.Context, email, password, name string) (*services.AuthResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password, name)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*services.AuthResponse, error) {
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, refreshToken)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthService) VerifyToken(ctx context.Context, token string) (*services.UserResponse, error) {
	if m.VerifyTokenFunc != nil {
		return m.VerifyTokenFunc(ctx, token)
	}
	return nil, models.ErrUnauthorized
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	GetUserFunc    func(ctx context.Context, id string) database.Result
	ListUsersFunc  func(ctx context.Context, limit, offset int) database.Result
	CreateUserFunc func(ctx context.Context, input services.CreateUserInput) database.Result
	UpdateUserFunc func(ctx context.Context, id string, input services.UpdateUserInput) database.Result
	DeleteUserFunc func(ctx context.Context, id string) database.Result
}

func (m *MockUserService) GetUser(ctx context.Context, id string) database.Result {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, id)
	}
	return database.Result{Success: false, Message: services.ReasonUserNotFound}
}

func (m *MockUserService) ListUsers(ctx context.Context, limit, offset int) database.Result {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, limit, offset)
	}
	return database.Result{Success: true, Data: []*services.UserResponse{}}
}

func (m *MockUserService) CreateUser(ctx context.Context, input services.CreateUserInput) database.Result {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, input)
	}
	return database.Result{Success: false, Message: "not implemented"}
}

func (m *MockUserService) UpdateUser(ctx context.Context, id string, input services.UpdateUserInput) database.Result {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, id, input)
	}
	return database.Result{Success: false, Message: "not implemented"}
}

func (m *MockUserService) DeleteUser(ctx context.Context, id string) database.Result {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, id)
	}
	return database.Result{Success: false, Message: "not implemented"}
}

// MockProductService implements ProductServiceInterface for testing
type MockProductService struct {
	ListProductsFunc  func(ctx context.Context, filter repositories.ProductFilter) database.Result
	GetProductFunc    func(ctx context.Context, id string) database.Result
	StatsFunc         func(ctx context.Context) database.Result
	CreateProductFunc func(ctx context.Context, input services.CreateProductInput) database.Result
	UpdateProductFunc func(ctx context.Context, id string, input services.UpdateProductInput) database.Result
	UpdateStockFunc   func(ctx context.Context, id string, quantity int, op models.StockOperation) database.Result
	DeleteProductFunc func(ctx context.Context, id string) database.Result
}

func (m *MockProductService) ListProducts(ctx context.Context, filter repositories.ProductFilter) database.Result {
	if m.ListProductsFunc != nil {
		return m.ListProductsFunc(ctx, filter)
	}
	return database.Result{Success: true, Data: []*models.Product{}}
}

func (m *MockProductService) GetProduct(ctx context.Context, id string) database.Result {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, id)
	}
	return database.Result{Success: false, Message: services.ReasonProductNotFound}
}

func (m *MockProductService) Stats(ctx context.Context) database.Result {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return database.Result{Success: true, Data: &models.ProductStats{}}
}

func (m *MockProductService) CreateProduct(ctx context.Context, input services.CreateProductInput) database.Result {
	if m.CreateProductFunc != nil {
		return m.CreateProductFunc(ctx, input)
	}
	return database.Result{Success: false, Message: "not implemented"}
}

func (m *MockProductService) UpdateProduct(ctx context.Context, id string, input services.UpdateProductInput) database.Result {
	if m.UpdateProductFunc != nil {
		return m.UpdateProductFunc(ctx, id, input)
	}
	return database.Result{Success: false, Message: "not implemented"}
}

func (m *MockProductService) UpdateStock(ctx context.Context, id string, quantity int, op models.StockOperation) database.Result {
	if m.UpdateStockFunc != nil {
		return m.UpdateStockFunc(ctx, id, quantity, op)
	}
	return database.Result{Success: false, Message: "not implemented"}
}

func (m *MockProductService) DeleteProduct(ctx context.Context, id string) database.Result {
	if m.DeleteProductFunc != nil {
		return m.DeleteProductFunc(ctx, id)
	}
	return database.Result{Success: false, Message: "not implemented"}
}

// newRequest builds a request with an optional JSON body and URL params
func newRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	return r
}

// withURLParam attaches a chi route parameter to the request context
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withClaims attaches authenticated user claims to the request context
func withClaims(r *http.Request, claims *models.TokenClaims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), auth.UserContextKey, claims))
}
