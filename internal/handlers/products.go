package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mvaldes/almacen/internal/database"
	"github.com/mvaldes/almacen/internal/models"
	"github.com/mvaldes/almacen/internal/repositories"
	"github.com/mvaldes/almacen/internal/services"
	pkghttp "github.com/mvaldes/almacen/pkg/http"
)

// ProductServiceInterface defines the product logic the handler needs
type ProductServiceInterface interface {
	ListProducts(ctx context.Context, filter repositories.ProductFilter) database.Result
	GetProduct(ctx context.Context, id string) database.Result
	Stats(ctx context.Context) database.Result
	CreateProduct(ctx context.Context, input services.CreateProductInput) database.Result
	UpdateProduct(ctx context.Context, id string, input services.UpdateProductInput) database.Result
	UpdateStock(ctx context.Context, id string, quantity int, op models.StockOperation) database.Result
	DeleteProduct(ctx context.Context, id string) database.Result
}

// ProductHandler handles inventory endpoints
type ProductHandler struct {
	service ProductServiceInterface
}

func NewProductHandler(service ProductServiceInterface) *ProductHandler {
	return &ProductHandler{service: service}
}

// CreateProductRequest is the request body for product creation
type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Category    string  `json:"category" validate:"required,min=1,max=100"`
}

// UpdateProductRequest is the request body for product updates
type UpdateProductRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Category    string  `json:"category" validate:"required,min=1,max=100"`
}

// UpdateStockRequest is the request body for stock adjustments
type UpdateStockRequest struct {
	Quantity  int    `json:"quantity" validate:"gte=0"`
	Operation string `json:"operation" validate:"required,oneof=add subtract set"`
}

// ListProducts returns active products, optionally filtered by category
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ProductFilter{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Limit:    queryInt(r, "limit", 50, 200),
		Offset:   queryInt(r, "offset", 0, 1<<30),
	}
	writeResult(w, http.StatusOK, h.service.ListProducts(r.Context(), filter))
}

// GetProduct returns a single product
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeResult(w, http.StatusOK, h.service.GetProduct(r.Context(), id))
}

// Stats returns inventory aggregates
func (h *ProductHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeResult(w, http.StatusOK, h.service.Stats(r.Context()))
}

// CreateProduct inserts a new product
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result := h.service.CreateProduct(r.Context(), services.CreateProductInput{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    strings.TrimSpace(req.Category),
	})
	writeResult(w, http.StatusCreated, result)
}

// UpdateProduct modifies product fields other than stock
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result := h.service.UpdateProduct(r.Context(), id, services.UpdateProductInput{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Category:    strings.TrimSpace(req.Category),
	})
	writeResult(w, http.StatusOK, result)
}

// UpdateStock applies an add, subtract or set operation to inventory
func (h *ProductHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result := h.service.UpdateStock(r.Context(), id, req.Quantity, models.StockOperation(req.Operation))
	writeResult(w, http.StatusOK, result)
}

// DeleteProduct soft-deletes a product
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeResult(w, http.StatusOK, h.service.DeleteProduct(r.Context(), id))
}
