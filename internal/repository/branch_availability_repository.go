package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"retail-catalog/internal/domain"

	"github.com/google/uuid"
)

var (
	// ErrBranchStockNotFound means the product has no availability row for
	// the requested branch. Distinct from ErrProductNotFound: the product
	// may exist in the catalog without ever having been stocked there.
	ErrBranchStockNotFound = errors.New("product not found in branch availability index")
)

// BranchAvailabilityRepository defines the interface for per-branch stock rows.
// Rows are created lazily on the first adjustment naming a branch and are
// never implicitly deleted.
type BranchAvailabilityRepository interface {
	Get(ctx context.Context, productID, branchID uuid.UUID) (*domain.BranchAvailability, error)
	Upsert(ctx context.Context, productID, branchID uuid.UUID, quantity int) (*domain.BranchAvailability, error)
	ApplyDelta(ctx context.Context, productID, branchID uuid.UUID, delta int) (*domain.BranchAvailability, error)
}

type branchAvailabilityRepository struct {
	db *sql.DB
}

// NewBranchAvailabilityRepository creates a new instance of BranchAvailabilityRepository
func NewBranchAvailabilityRepository(db *sql.DB) BranchAvailabilityRepository {
	return &branchAvailabilityRepository{db: db}
}

// Get retrieves the stock quantity recorded for a (product, branch) pair
func (r *branchAvailabilityRepository) Get(ctx context.Context, productID, branchID uuid.UUID) (*domain.BranchAvailability, error) {
	query := `
		SELECT product_id, branch_id, stock, updated_at
		FROM branch_availability
		WHERE product_id = $1 AND branch_id = $2
	`

	availability := &domain.BranchAvailability{}
	err := r.db.QueryRowContext(ctx, query, productID, branchID).Scan(
		&availability.ProductID,
		&availability.BranchID,
		&availability.Stock,
		&availability.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBranchStockNotFound
		}
		return nil, fmt.Errorf("failed to get branch availability: %w", err)
	}

	return availability, nil
}

// Upsert creates the (product, branch) pairing on first use, otherwise
// overwrites the recorded quantity.
func (r *branchAvailabilityRepository) Upsert(ctx context.Context, productID, branchID uuid.UUID, quantity int) (*domain.BranchAvailability, error) {
	query := `
		INSERT INTO branch_availability (product_id, branch_id, stock, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, branch_id)
		DO UPDATE SET stock = EXCLUDED.stock, updated_at = now()
		RETURNING product_id, branch_id, stock, updated_at
	`

	return r.scanUpsert(r.db.QueryRowContext(ctx, query, productID, branchID, quantity))
}

// ApplyDelta adds a signed delta to the branch quantity, creating the row
// from the delta if it does not exist yet. The arithmetic happens in a single
// statement so concurrent deltas on the same pair are never lost.
func (r *branchAvailabilityRepository) ApplyDelta(ctx context.Context, productID, branchID uuid.UUID, delta int) (*domain.BranchAvailability, error) {
	query := `
		INSERT INTO branch_availability (product_id, branch_id, stock, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, branch_id)
		DO UPDATE SET stock = branch_availability.stock + EXCLUDED.stock, updated_at = now()
		RETURNING product_id, branch_id, stock, updated_at
	`

	return r.scanUpsert(r.db.QueryRowContext(ctx, query, productID, branchID, delta))
}

func (r *branchAvailabilityRepository) scanUpsert(row *sql.Row) (*domain.BranchAvailability, error) {
	availability := &domain.BranchAvailability{}
	err := row.Scan(
		&availability.ProductID,
		&availability.BranchID,
		&availability.Stock,
		&availability.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert branch availability: %w", err)
	}
	return availability, nil
}
