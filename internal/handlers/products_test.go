package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mvaldes/almacen/internal/database"
	"github.com/mvaldes/almacen/internal/models"
	"github.com/mvaldes/almacen/internal/repositories"
	"github.com/mvaldes/almacen/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateStockHandler_Success(t *testing.T) {
	svc := &MockProductService{
		UpdateStockFunc: func(ctx context.Context, id string, quantity int, op models.StockOperation) database.Result {
			assert.Equal(t, "prod-1", id)
			assert.Equal(t, 3, quantity)
			assert.Equal(t, models.StockSubtract, op)
			return database.Result{
				Success: true,
				Data:    &models.StockChange{ProductID: id, OldStock: 10, NewStock: 7},
				Message: "updateStock completed",
			}
		},
	}
	h := NewProductHandler(svc)

	r := withURLParam(newRequest(http.MethodPatch, "/products/prod-1/stock",
		`{"quantity":3,"operation":"subtract"}`), "id", "prod-1")

	w := httptest.NewRecorder()
	h.UpdateStock(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var result database.Result
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.True(t, result.Success)
}

func TestUpdateStockHandler_InsufficientStock(t *testing.T) {
	svc := &MockProductService{
		UpdateStockFunc: func(ctx context.Context, id string, quantity int, op models.StockOperation) database.Result {
			return database.Result{
				Success: false,
				Data:    map[string]int{"current_stock": 3, "requested": 10},
				Message: services.ReasonInsufficientStock,
			}
		},
	}
	h := NewProductHandler(svc)

	r := withURLParam(newRequest(http.MethodPatch, "/products/prod-1/stock",
		`{"quantity":10,"operation":"subtract"}`), "id", "prod-1")

	w := httptest.NewRecorder()
	h.UpdateStock(w, r)

	require.Equal(t, http.StatusConflict, w.Code)

	var result database.Result
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.False(t, result.Success)

	detail := result.Data.(map[string]any)
	assert.Equal(t, float64(3), detail["current_stock"])
	assert.Equal(t, float64(10), detail["requested"])
}

func TestUpdateStockHandler_UnknownOperationRejected(t *testing.T) {
	h := NewProductHandler(&MockProductService{})

	r := withURLParam(newRequest(http.MethodPatch, "/products/prod-1/stock",
		`{"quantity":1,"operation":"divide"}`), "id", "prod-1")

	w := httptest.NewRecorder()
	h.UpdateStock(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProductHandler_NegativePriceRejected(t *testing.T) {
	h := NewProductHandler(&MockProductService{})

	w := httptest.NewRecorder()
	h.CreateProduct(w, newRequest(http.MethodPost, "/products",
		`{"name":"Widget","price":-5,"stock":1,"category":"tools"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProductHandler_Success(t *testing.T) {
	svc := &MockProductService{
		CreateProductFunc: func(ctx context.Context, input services.CreateProductInput) database.Result {
			assert.Equal(t, "Widget", input.Name)
			return database.Result{
				Success: true,
				Data:    &models.Product{ID: "prod-9", Name: input.Name},
				Message: "createProduct completed",
			}
		},
	}
	h := NewProductHandler(svc)

	w := httptest.NewRecorder()
	h.CreateProduct(w, newRequest(http.MethodPost, "/products",
		`{"name":"Widget","price":9.99,"stock":5,"category":"tools"}`))

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestGetProductHandler_NotFound(t *testing.T) {
	h := NewProductHandler(&MockProductService{})

	r := withURLParam(newRequest(http.MethodGet, "/products/missing", ""), "id", "missing")

	w := httptest.NewRecorder()
	h.GetProduct(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListProductsHandler_CategoryFilter(t *testing.T) {
	var got repositories.ProductFilter
	svc := &MockProductService{
		ListProductsFunc: func(ctx context.Context, filter repositories.ProductFilter) database.Result {
			got = filter
			return database.Result{Success: true, Data: []*models.Product{}}
		},
	}
	h := NewProductHandler(svc)

	w := httptest.NewRecorder()
	h.ListProducts(w, newRequest(http.MethodGet, "/products?category=tools&limit=5", ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tools", got.Category)
	assert.Equal(t, 5, got.Limit)
}

func TestStatsHandler(t *testing.T) {
	svc := &MockProductService{
		StatsFunc: func(ctx context.Context) database.Result {
			return database.Result{Success: true, Data: &models.ProductStats{Total: 3}}
		},
	}
	h := NewProductHandler(svc)

	w := httptest.NewRecorder()
	h.Stats(w, newRequest(http.MethodGet, "/products/stats", ""))

	assert.Equal(t, http.StatusOK, w.Code)
}
