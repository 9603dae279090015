package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"retail-catalog/internal/domain"

	"github.com/google/uuid"
)

// PriceHistoryRepository defines the interface for the append-only price
// ledger. There is deliberately no update or delete: every price a product
// has ever held stays on record.
type PriceHistoryRepository interface {
	Append(ctx context.Context, productID uuid.UUID, price float64, effectiveAt time.Time) error
	ListFor(ctx context.Context, productID uuid.UUID) ([]*domain.PriceHistoryEntry, error)
}

type priceHistoryRepository struct {
	db *sql.DB
}

// NewPriceHistoryRepository creates a new instance of PriceHistoryRepository
func NewPriceHistoryRepository(db *sql.DB) PriceHistoryRepository {
	return &priceHistoryRepository{db: db}
}

// Append inserts a new ledger entry for a product
func (r *priceHistoryRepository) Append(ctx context.Context, productID uuid.UUID, price float64, effectiveAt time.Time) error {
	query := `
		INSERT INTO price_history (product_id, price, effective_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, productID, price, effectiveAt)
	if err != nil {
		return fmt.Errorf("failed to append price history entry: %w", err)
	}

	return nil
}

// ListFor retrieves all ledger entries for a product, oldest first. A product
// with no recorded price changes yields an empty slice, not an error.
func (r *priceHistoryRepository) ListFor(ctx context.Context, productID uuid.UUID) ([]*domain.PriceHistoryEntry, error) {
	query := `
		SELECT id, product_id, price, effective_at
		FROM price_history
		WHERE product_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list price history: %w", err)
	}
	defer rows.Close()

	entries := []*domain.PriceHistoryEntry{}
	for rows.Next() {
		entry := &domain.PriceHistoryEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.ProductID,
			&entry.Price,
			&entry.EffectiveAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price history: %w", err)
	}

	return entries, nil
}
