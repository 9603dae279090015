package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"retail-catalog/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")

	// ErrProductReferenced is returned when a delete is blocked because a
	// sale line or a branch availability row still references the product.
	ErrProductReferenced = errors.New("product is referenced by sales or inventory records")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, code, name, description, price, category_id, brand_id, image_url, stock, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Code,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.CategoryID,
		&product.BrandID,
		&product.ImageURL,
		&product.Stock,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, code, name, description, price, category_id, brand_id, image_url, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Code,
		product.Name,
		product.Description,
		product.Price,
		product.CategoryID,
		product.BrandID,
		product.ImageURL,
		product.Stock,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update applies a sparse change set to an existing product. Only the fields
// present in the change set are written; everything else is left untouched.
func (r *productRepository) Update(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) error {
	setClauses := []string{}
	args := []interface{}{id}
	argIndex := 2

	addSet := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if update.Code != nil {
		addSet("code", *update.Code)
	}
	if update.Name != nil {
		addSet("name", *update.Name)
	}
	if update.Description != nil {
		addSet("description", *update.Description)
	}
	if update.CategoryID != nil {
		addSet("category_id", *update.CategoryID)
	}
	if update.BrandID != nil {
		addSet("brand_id", *update.BrandID)
	}
	if update.Price != nil {
		addSet("price", *update.Price)
	}
	if update.Stock != nil {
		// Full overwrite of the global quantity, not a delta
		addSet("stock", *update.Stock)
	}
	if update.ImageURL != nil {
		addSet("image_url", *update.ImageURL)
	}

	if len(setClauses) == 0 {
		// Nothing to write; still report missing products
		_, err := r.FindByID(ctx, id)
		return err
	}

	setClauses = append(setClauses, "updated_at = now()")

	query := fmt.Sprintf(`UPDATE products SET %s WHERE id = $1`, strings.Join(setClauses, ", "))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product. The reference check and the delete run in one
// transaction so a reference cannot appear between the check and the removal.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	var referenced bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM sale_items WHERE product_id = $1)
		    OR EXISTS (SELECT 1 FROM branch_availability WHERE product_id = $1)
	`, id).Scan(&referenced)
	if err != nil {
		return fmt.Errorf("failed to check product references: %w", err)
	}
	if referenced {
		return ErrProductReferenced
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete transaction: %w", err)
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves products matching the filter. Filter fields combine with
// logical AND; an empty filter returns the full catalog.
func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	whereClauses := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.CategoryID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}
	if filter.BrandID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("brand_id = $%d", argIndex))
		args = append(args, *filter.BrandID)
		argIndex++
	}
	if filter.MinStock != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("stock >= $%d", argIndex))
		args = append(args, *filter.MinStock)
		argIndex++
	}

	whereClause := ""
	if len(whereClauses) > 0 {
		whereClause = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY created_at DESC
	`, productColumns, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// AdjustStock applies a signed delta to the global stock quantity and returns
// the resulting quantity. The increment happens in a single statement so
// concurrent adjustments to the same product are never lost. The result is
// not clamped: a negative quantity is recorded as-is (back-order state).
func (r *productRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	query := `
		UPDATE products
		SET stock = stock + $2, updated_at = now()
		WHERE id = $1
		RETURNING stock
	`

	var stock int
	err := r.db.QueryRowContext(ctx, query, id, delta).Scan(&stock)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrProductNotFound
		}
		return 0, fmt.Errorf("failed to adjust product stock: %w", err)
	}

	return stock, nil
}
