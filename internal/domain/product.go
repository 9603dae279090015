package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog with its global stock quantity
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Code        string    `json:"code" db:"code"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	CategoryID  uuid.UUID `json:"category_id" db:"category_id"`
	BrandID     uuid.UUID `json:"brand_id" db:"brand_id"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	Stock       int       `json:"stock" db:"stock"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// PriceHistory is attached on demand by Get when history is requested
	PriceHistory []*PriceHistoryEntry `json:"price_history,omitempty" db:"-"`
}

// Category represents a product category (externally managed, referenced only)
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Brand represents a product brand (externally managed, referenced only)
type Brand struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PriceHistoryEntry records one price a product has held. Entries are
// immutable: they are appended on every price change and never updated
// or deleted.
type PriceHistoryEntry struct {
	ID          int64     `json:"id" db:"id"`
	ProductID   uuid.UUID `json:"product_id" db:"product_id"`
	Price       float64   `json:"price" db:"price"`
	EffectiveAt time.Time `json:"effective_at" db:"effective_at"`
}

// BranchAvailability is the stock quantity of one product at one branch.
// The row is created lazily on the first adjustment naming the branch.
// Branch stock and global stock are independent counters.
type BranchAvailability struct {
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	BranchID  uuid.UUID `json:"branch_id" db:"branch_id"`
	Stock     int       `json:"stock" db:"stock"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProductFilter narrows a catalog listing. Filters combine with logical AND;
// a nil field means "no constraint".
type ProductFilter struct {
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
	MinStock   *int
}

// ProductUpdate is a sparse change set for a product. Only non-nil fields
// are written; a present Stock is a full overwrite of the global quantity,
// not a delta.
type ProductUpdate struct {
	Code        *string    `json:"code,omitempty"`
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	BrandID     *uuid.UUID `json:"brand_id,omitempty"`
	Price       *float64   `json:"price,omitempty"`
	Stock       *int       `json:"stock,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty"`
}

// IsEmpty reports whether the change set contains no fields.
func (u *ProductUpdate) IsEmpty() bool {
	return u.Code == nil && u.Name == nil && u.Description == nil &&
		u.CategoryID == nil && u.BrandID == nil && u.Price == nil &&
		u.Stock == nil && u.ImageURL == nil
}
