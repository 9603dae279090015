package transport

import (
	"errors"
	"net/http"
	"strconv"

	"retail-catalog/internal/domain"
	"retail-catalog/internal/middleware"
	"retail-catalog/internal/repository"
	"retail-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	CategoryID  string  `json:"category_id" validate:"required,uuid"`
	BrandID     string  `json:"brand_id" validate:"required,uuid"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Stock       *int    `json:"stock" validate:"required,min=0"`
	ImageURL    string  `json:"image_url"`
}

// UpdateProductRequest represents a sparse product update payload.
// Absent fields are left unchanged.
type UpdateProductRequest struct {
	Code        *string  `json:"code"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	CategoryID  *string  `json:"category_id" validate:"omitempty,uuid"`
	BrandID     *string  `json:"brand_id" validate:"omitempty,uuid"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Stock       *int     `json:"stock" validate:"omitempty,min=0"`
	ImageURL    *string  `json:"image_url"`
}

// AdjustStockRequest represents a signed stock adjustment payload
type AdjustStockRequest struct {
	Delta    *int    `json:"delta" validate:"required"`
	BranchID *string `json:"branch_id" validate:"omitempty,uuid"`
}

// CreateProductResponse echoes the validated values back with the new id
type CreateProductResponse struct {
	ID    string  `json:"id"`
	Code  string  `json:"code"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// UpdateProductResponse returns the applied change set
type UpdateProductResponse struct {
	Message string               `json:"message"`
	Changes domain.ProductUpdate `json:"changes"`
}

// AdjustStockResponse returns the resulting quantities
type AdjustStockResponse struct {
	Stock       int  `json:"stock"`
	BranchStock *int `json:"branch_stock,omitempty"`
}

// BranchAvailabilityResponse returns the per-branch quantity
type BranchAvailabilityResponse struct {
	ProductID string `json:"product_id"`
	BranchID  string `json:"branch_id"`
	Stock     int    `json:"stock"`
}

// ProductHandler handles HTTP requests for catalog and inventory operations
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Patch("/{id}/stock", h.AdjustStock)
		r.Get("/{id}/availability", h.BranchAvailability)
	})
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product creation validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.ProductInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  uuid.MustParse(req.CategoryID),
		BrandID:     uuid.MustParse(req.BrandID),
		Price:       req.Price,
		Stock:       *req.Stock,
		ImageURL:    req.ImageURL,
	}

	product, err := h.catalogService.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, r, err, "failed to create product")
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("code", product.Code),
	)

	middleware.RespondWithJSON(w, http.StatusCreated, CreateProductResponse{
		ID:    product.ID.String(),
		Code:  product.Code,
		Price: product.Price,
		Stock: product.Stock,
	})
}

// List handles filtered catalog listing
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.ProductFilter{}

	if v := r.URL.Query().Get("category"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category filter")
			return
		}
		filter.CategoryID = &id
	}
	if v := r.URL.Query().Get("brand"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid brand filter")
			return
		}
		filter.BrandID = &id
	}
	if v := r.URL.Query().Get("stock_min"); v != "" {
		minStock, err := parseIntParam(v)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid stock_min filter")
			return
		}
		filter.MinStock = &minStock
	}

	products, err := h.catalogService.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get handles single product retrieval, optionally with price history
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseProductID(w, r)
	if !ok {
		return
	}

	includeHistory := r.URL.Query().Get("history") == "true"

	product, err := h.catalogService.Get(r.Context(), id, includeHistory)
	if err != nil {
		h.respondError(w, r, err, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Update handles sparse product updates
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseProductID(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product update validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update := domain.ProductUpdate{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	}
	if req.CategoryID != nil {
		categoryID := uuid.MustParse(*req.CategoryID)
		update.CategoryID = &categoryID
	}
	if req.BrandID != nil {
		brandID := uuid.MustParse(*req.BrandID)
		update.BrandID = &brandID
	}

	changes, err := h.catalogService.Update(r.Context(), id, update)
	if err != nil {
		h.respondError(w, r, err, "failed to update product")
		return
	}

	h.logger.Info("Product updated", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, UpdateProductResponse{
		Message: "product updated",
		Changes: *changes,
	})
}

// Delete handles product deletion
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseProductID(w, r)
	if !ok {
		return
	}

	if err := h.catalogService.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// AdjustStock handles signed stock adjustments, optionally scoped to a branch
func (h *ProductHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseProductID(w, r)
	if !ok {
		return
	}

	var req AdjustStockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Stock adjustment validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "delta must be a valid integer")
		return
	}

	var branchID *uuid.UUID
	if req.BranchID != nil {
		parsed := uuid.MustParse(*req.BranchID)
		branchID = &parsed
	}

	adjustment, err := h.catalogService.AdjustStock(r.Context(), id, *req.Delta, branchID)
	if err != nil {
		h.respondError(w, r, err, "failed to adjust stock")
		return
	}

	response := AdjustStockResponse{Stock: adjustment.Stock}
	if adjustment.Branch != nil {
		response.BranchStock = &adjustment.Branch.Stock
	}

	h.logger.Info("Stock adjusted",
		zap.String("product_id", id.String()),
		zap.Int("delta", adjustment.Delta),
		zap.Int("stock", adjustment.Stock),
	)
	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// BranchAvailability handles per-branch stock reads
func (h *ProductHandler) BranchAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseProductID(w, r)
	if !ok {
		return
	}

	branchParam := r.URL.Query().Get("branch")
	if branchParam == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "branch is required")
		return
	}

	branchID, err := uuid.Parse(branchParam)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid branch identifier")
		return
	}

	availability, err := h.catalogService.BranchAvailability(r.Context(), id, branchID)
	if err != nil {
		h.respondError(w, r, err, "failed to get branch availability")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, BranchAvailabilityResponse{
		ProductID: availability.ProductID.String(),
		BranchID:  availability.BranchID.String(),
		Stock:     availability.Stock,
	})
}

// parseProductID extracts and parses the product id path parameter
func (h *ProductHandler) parseProductID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service and repository errors to HTTP status codes.
// Unrecognized store errors are logged in full but surfaced as a generic
// message so internal diagnostics do not leak to callers.
func (h *ProductHandler) respondError(w http.ResponseWriter, r *http.Request, err error, logMessage string) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		h.logger.Debug(logMessage, zap.Error(err))
		middleware.RespondWithErrorDetails(w, http.StatusBadRequest, validationErr.Message,
			map[string]interface{}{"field": validationErr.Field})

	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")

	case errors.Is(err, repository.ErrBranchStockNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found in the specified branch")

	case errors.Is(err, repository.ErrProductReferenced):
		middleware.RespondWithError(w, http.StatusBadRequest,
			"cannot delete: product is associated with sales or inventory")

	default:
		h.logger.Error(logMessage,
			zap.Error(err),
			zap.String("path", r.URL.Path),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, logMessage)
	}
}

func parseIntParam(v string) (int, error) {
	return strconv.Atoi(v)
}
