package store

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/dmbaptista/stockwise/internal/sale"
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

// scanSale reads a sale row from the scanner.
// Expected column order: id, product_name, category, register_id, seller_id,
// quantity, unit_price, total, occurred_at, created_at
func scanSale(s scanner) (*sale.Sale, error) {
	var sl sale.Sale

	var category, registerID, sellerID sql.NullString

	if err := s.Scan(
		&sl.ID, &sl.ProductName, &category, &registerID, &sellerID,
		&sl.Quantity, &sl.UnitPrice, &sl.Total, &sl.OccurredAt, &sl.CreatedAt,
	); err != nil {
		return nil, err
	}

	sl.Category = category.String
	sl.RegisterID = registerID.String
	sl.SellerID = sellerID.String

	return &sl, nil
}

const selectSaleColumns = `
	s.id, s.product_name, s.category, s.register_id, s.seller_id,
	s.quantity, s.unit_price, s.total, s.occurred_at, s.created_at
`

const insertSaleQuery = `
	INSERT INTO sales (product_name, category, register_id, seller_id, quantity, unit_price, total, occurred_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	RETURNING id, created_at
`

func (s *Store) CreateSale(ctx context.Context, sl *sale.Sale) error {
	err := s.db.QueryRowContext(ctx, insertSaleQuery,
		sl.ProductName,
		sl.Category,
		sl.RegisterID,
		sl.SellerID,
		sl.Quantity,
		sl.UnitPrice,
		sl.Total,
		sl.OccurredAt,
	).Scan(&sl.ID, &sl.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating sale: %w", err)
	}

	return nil
}

func (s *Store) GetSale(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	query := `SELECT ` + selectSaleColumns + `
		FROM sales s
		WHERE s.id = $1`

	sl, err := scanSale(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sale.ErrNotFound
		}

		return nil, fmt.Errorf("getting sale: %w", err)
	}

	return sl, nil
}

func (s *Store) ListSales(ctx context.Context, filter sale.ListFilter) ([]*sale.Sale, error) {
	query := `SELECT ` + selectSaleColumns + `
		FROM sales s
		WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND s.occurred_at >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND s.occurred_at <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.Category != nil {
		query += fmt.Sprintf(" AND LOWER(TRIM(s.category)) = LOWER(TRIM($%d))", argIdx)

		args = append(args, *filter.Category)
		argIdx++
	}

	if filter.RegisterID != nil {
		query += fmt.Sprintf(" AND s.register_id = $%d", argIdx)

		args = append(args, *filter.RegisterID)
		argIdx++
	}

	query += " ORDER BY s.occurred_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	defer rows.Close()

	var sales []*sale.Sale

	for rows.Next() {
		sl, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sale: %w", err)
		}

		sales = append(sales, sl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sale rows: %w", err)
	}

	return sales, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id uuid.UUID, category string) error {
	query := `
		UPDATE sales
		SET category = $1
		WHERE id = $2
	`

	res, err := s.db.ExecContext(ctx, query, category, id)
	if err != nil {
		return fmt.Errorf("updating sale category: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating sale category: %w", err)
	}

	if affected == 0 {
		return sale.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteAllSales(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sales`)
	if err != nil {
		return 0, fmt.Errorf("deleting sales: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting sales: %w", err)
	}

	return affected, nil
}

func importLockKey(minDate, maxDate time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(minDate.Format(time.DateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(maxDate.Format(time.DateOnly)))

	return int64(h.Sum64())
}

type importTx struct {
	tx *sql.Tx
}

// BeginImport opens a transaction holding an advisory lock on the import
// date range, so two concurrent imports of the same statement cannot both
// pass duplicate detection.
func (s *Store) BeginImport(ctx context.Context, minDate, maxDate time.Time) (sale.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	lockKey := importLockKey(minDate, maxDate)
	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) FindDuplicates(ctx context.Context, params []sale.CreateParams) ([]*sale.Sale, error) {
	if len(params) == 0 {
		return nil, nil
	}

	type lookupKey struct {
		Day        string
		Name       string
		RegisterID string
		Quantity   int
		Total      int64
	}

	minDate := params[0].OccurredAt
	maxDate := params[0].OccurredAt
	keySet := make(map[lookupKey]struct{}, len(params))

	for _, p := range params {
		if p.OccurredAt.Before(minDate) {
			minDate = p.OccurredAt
		}

		if p.OccurredAt.After(maxDate) {
			maxDate = p.OccurredAt
		}

		keySet[lookupKey{
			Day:        p.OccurredAt.Format(time.DateOnly),
			Name:       p.ProductName,
			RegisterID: p.RegisterID,
			Quantity:   p.Quantity,
			Total:      p.Total,
		}] = struct{}{}
	}

	query := `SELECT ` + selectSaleColumns + `
		FROM sales s
		WHERE s.occurred_at::date >= $1::date AND s.occurred_at::date <= $2::date
		ORDER BY s.occurred_at ASC`

	rows, err := itx.tx.QueryContext(ctx, query, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*sale.Sale

	for rows.Next() {
		sl, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sale: %w", err)
		}

		k := lookupKey{
			Day:        sl.OccurredAt.Format(time.DateOnly),
			Name:       sl.ProductName,
			RegisterID: sl.RegisterID,
			Quantity:   sl.Quantity,
			Total:      sl.Total,
		}

		_, found := keySet[k]
		if !found {
			continue
		}

		duplicates = append(duplicates, sl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (itx *importTx) CreateSales(ctx context.Context, sales []*sale.Sale) error {
	for _, sl := range sales {
		err := itx.tx.QueryRowContext(ctx, insertSaleQuery,
			sl.ProductName,
			sl.Category,
			sl.RegisterID,
			sl.SellerID,
			sl.Quantity,
			sl.UnitPrice,
			sl.Total,
			sl.OccurredAt,
		).Scan(&sl.ID, &sl.CreatedAt)
		if err != nil {
			return fmt.Errorf("creating sale: %w", err)
		}
	}

	return nil
}
