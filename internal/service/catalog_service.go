package service

import (
	"context"
	"fmt"
	"time"

	"retail-catalog/internal/domain"
	"retail-catalog/internal/repository"

	"github.com/google/uuid"
)

const (
	// DefaultImageURL is assigned when a product is created without an image
	DefaultImageURL = "default-product.jpg"
)

// ValidationError reports a malformed, missing or out-of-range input field.
// The caller can always recover by resubmitting corrected input.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ProductInput carries the fields for creating a product
type ProductInput struct {
	Code        string
	Name        string
	Description string
	CategoryID  uuid.UUID
	BrandID     uuid.UUID
	Price       float64
	Stock       int
	ImageURL    string
}

// StockAdjustment is the outcome of applying a signed delta to a product's
// global stock, plus the branch-level state when a branch was named.
type StockAdjustment struct {
	ProductID uuid.UUID                  `json:"product_id"`
	Delta     int                        `json:"delta"`
	Stock     int                        `json:"stock"`
	Branch    *domain.BranchAvailability `json:"branch,omitempty"`
}

// CatalogService defines the interface for catalog and inventory business logic
type CatalogService interface {
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID, includeHistory bool) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) (*domain.ProductUpdate, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int, branchID *uuid.UUID) (*StockAdjustment, error)
	BranchAvailability(ctx context.Context, productID, branchID uuid.UUID) (*domain.BranchAvailability, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	historyRepo repository.PriceHistoryRepository
	branchRepo  repository.BranchAvailabilityRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	productRepo repository.ProductRepository,
	historyRepo repository.PriceHistoryRepository,
	branchRepo repository.BranchAvailabilityRepository,
) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		historyRepo: historyRepo,
		branchRepo:  branchRepo,
	}
}

// Create validates the input, applies defaults and persists a new product.
// No price history entry is written on the initial insert: the ledger starts
// at the first price-changing update.
func (s *catalogService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}
	if input.CategoryID == uuid.Nil {
		return nil, &ValidationError{Field: "category_id", Message: "category is required"}
	}
	if input.BrandID == uuid.Nil {
		return nil, &ValidationError{Field: "brand_id", Message: "brand is required"}
	}
	if input.Price <= 0 {
		return nil, &ValidationError{Field: "price", Message: "price must be a number greater than 0"}
	}
	if input.Stock < 0 {
		return nil, &ValidationError{Field: "stock", Message: "stock must be an integer greater than or equal to 0"}
	}

	now := time.Now()

	code := input.Code
	if code == "" {
		code = fmt.Sprintf("PROD-%d", now.UnixMilli())
	}

	imageURL := input.ImageURL
	if imageURL == "" {
		imageURL = DefaultImageURL
	}

	product := &domain.Product{
		ID:          uuid.New(),
		Code:        code,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		CategoryID:  input.CategoryID,
		BrandID:     input.BrandID,
		ImageURL:    imageURL,
		Stock:       input.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// List returns all products matching the filter
func (s *catalogService) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Get returns a product by ID, optionally with its full price history
// attached oldest-to-newest. A product with no recorded price changes gets
// an empty history, not an error.
func (s *catalogService) Get(ctx context.Context, id uuid.UUID, includeHistory bool) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if includeHistory {
		history, err := s.historyRepo.ListFor(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load price history: %w", err)
		}
		product.PriceHistory = history
	}

	return product, nil
}

// Update validates and applies a sparse change set. A present price is
// re-validated and, on success, appended to the price history ledger. A
// present stock is a full overwrite of the global quantity. Returns the
// applied change set.
func (s *catalogService) Update(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) (*domain.ProductUpdate, error) {
	if update.Price != nil && *update.Price <= 0 {
		return nil, &ValidationError{Field: "price", Message: "price must be a number greater than 0"}
	}
	if update.Stock != nil && *update.Stock < 0 {
		return nil, &ValidationError{Field: "stock", Message: "stock must be an integer greater than or equal to 0"}
	}
	if update.Name != nil && *update.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "name must not be empty"}
	}

	if err := s.productRepo.Update(ctx, id, update); err != nil {
		return nil, err
	}

	if update.Price != nil {
		if err := s.historyRepo.Append(ctx, id, *update.Price, time.Now()); err != nil {
			return nil, fmt.Errorf("failed to record price change: %w", err)
		}
	}

	return &update, nil
}

// Delete removes a product. Deletion is refused while any sale line or
// branch availability row still references it.
func (s *catalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// AdjustStock applies a signed delta to the product's global stock. When a
// branch is named, the same delta is applied to that branch's availability
// row (created lazily on first use) and the branch state is returned along
// with the new global quantity. Results are not clamped at zero; a negative
// quantity is recorded as a back-order state for the caller to interpret.
func (s *catalogService) AdjustStock(ctx context.Context, id uuid.UUID, delta int, branchID *uuid.UUID) (*StockAdjustment, error) {
	if branchID != nil && *branchID == uuid.Nil {
		return nil, &ValidationError{Field: "branch_id", Message: "branch must not be empty"}
	}

	stock, err := s.productRepo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}

	adjustment := &StockAdjustment{
		ProductID: id,
		Delta:     delta,
		Stock:     stock,
	}

	if branchID != nil {
		branch, err := s.branchRepo.ApplyDelta(ctx, id, *branchID, delta)
		if err != nil {
			return nil, err
		}
		adjustment.Branch = branch
	}

	return adjustment, nil
}

// BranchAvailability returns the stock quantity recorded for a product at a
// branch. The branch is required: there is no "all branches" default.
func (s *catalogService) BranchAvailability(ctx context.Context, productID, branchID uuid.UUID) (*domain.BranchAvailability, error) {
	if branchID == uuid.Nil {
		return nil, &ValidationError{Field: "branch_id", Message: "branch is required"}
	}

	return s.branchRepo.Get(ctx, productID, branchID)
}
