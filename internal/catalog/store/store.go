package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmbaptista/stockwise/internal/catalog"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanProduct reads a product row from the scanner.
// Expected column order: id, name, category, unit_price, min_stock, initial_stock,
// initial_stock_date, current_stock, quantity_sold, description, created_at, updated_at, deleted_at
func scanProduct(s scanner) (*catalog.Product, error) {
	var p catalog.Product

	var initialStockDate sql.NullTime

	var description sql.NullString

	if err := s.Scan(
		&p.ID, &p.Name, &p.Category, &p.UnitPrice, &p.MinStock, &p.InitialStock,
		&initialStockDate, &p.CurrentStock, &p.QuantitySold, &description,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	); err != nil {
		return nil, err
	}

	if initialStockDate.Valid {
		d := initialStockDate.Time
		p.InitialStockDate = &d
	}

	p.Description = description.String

	return &p, nil
}

const selectProductColumns = `
	p.id, p.name, p.category, p.unit_price, p.min_stock, p.initial_stock,
	p.initial_stock_date, p.current_stock, p.quantity_sold, p.description,
	p.created_at, p.updated_at, p.deleted_at
`

func (s *Store) CreateProduct(ctx context.Context, p *catalog.Product) error {
	query := `
		INSERT INTO products (name, category, unit_price, min_stock, initial_stock, initial_stock_date,
			current_stock, quantity_sold, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.Name,
		p.Category,
		p.UnitPrice,
		p.MinStock,
		p.InitialStock,
		p.InitialStockDate,
		p.CurrentStock,
		p.QuantitySold,
		p.Description,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating product: %w", err)
	}

	return nil
}

func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	query := `SELECT ` + selectProductColumns + `
		FROM products p
		WHERE p.id = $1 AND p.deleted_at IS NULL`

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, catalog.ErrNotFound
		}

		return nil, fmt.Errorf("getting product: %w", err)
	}

	return p, nil
}

func (s *Store) ListProducts(ctx context.Context, filter catalog.ListFilter) ([]*catalog.Product, error) {
	query := `SELECT ` + selectProductColumns + `
		FROM products p
		WHERE p.deleted_at IS NULL`

	var args []any

	argIdx := 1

	if filter.Category != nil {
		query += fmt.Sprintf(" AND LOWER(TRIM(p.category)) = LOWER(TRIM($%d))", argIdx)

		args = append(args, *filter.Category)
		argIdx++
	}

	if filter.Search != nil {
		query += fmt.Sprintf(" AND p.name ILIKE '%%' || $%d || '%%'", argIdx)

		args = append(args, *filter.Search)
		argIdx++
	}

	if filter.LowStock {
		query += " AND p.current_stock <= p.min_stock"
	}

	query += " ORDER BY p.name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []*catalog.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}

		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	query := `
		UPDATE products
		SET name = $1, category = $2, unit_price = $3, min_stock = $4,
			initial_stock = $5, initial_stock_date = $6, description = $7, updated_at = NOW()
		WHERE id = $8 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query,
		p.Name,
		p.Category,
		p.UnitPrice,
		p.MinStock,
		p.InitialStock,
		p.InitialStockDate,
		p.Description,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}

	if affected == 0 {
		return catalog.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE products
		SET deleted_at = NOW()
		WHERE id = $1
	`

	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	return nil
}

// UpsertProducts writes the batch in a single database transaction so a
// failed chunk leaves no partial state behind. Conflicts on (name, category)
// refresh the stock configuration instead of duplicating the product.
func (s *Store) UpsertProducts(ctx context.Context, products []*catalog.Product) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning upsert tx: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO products (name, category, unit_price, min_stock, initial_stock, initial_stock_date,
			current_stock, quantity_sold, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (name, category) DO UPDATE SET
			unit_price = EXCLUDED.unit_price,
			min_stock = EXCLUDED.min_stock,
			initial_stock = EXCLUDED.initial_stock,
			initial_stock_date = EXCLUDED.initial_stock_date,
			description = EXCLUDED.description,
			deleted_at = NULL,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	for _, p := range products {
		err := dbTx.QueryRowContext(ctx, query,
			p.Name,
			p.Category,
			p.UnitPrice,
			p.MinStock,
			p.InitialStock,
			p.InitialStockDate,
			p.CurrentStock,
			p.QuantitySold,
			p.Description,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("upserting product %q: %w", p.Name, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing upsert tx: %w", err)
	}

	return nil
}

func (s *Store) UpdateDerived(ctx context.Context, id uuid.UUID, currentStock, quantitySold int) error {
	query := `
		UPDATE products
		SET current_stock = $1, quantity_sold = $2, updated_at = NOW()
		WHERE id = $3 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, currentStock, quantitySold, id)
	if err != nil {
		return fmt.Errorf("updating derived stock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating derived stock: %w", err)
	}

	if affected == 0 {
		return catalog.ErrNotFound
	}

	return nil
}
