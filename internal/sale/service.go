package sale

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=sale
type Repository interface {
	CreateSale(ctx context.Context, s *Sale) error
	GetSale(ctx context.Context, id uuid.UUID) (*Sale, error)
	ListSales(ctx context.Context, filter ListFilter) ([]*Sale, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, category string) error
	DeleteAllSales(ctx context.Context) (int64, error)

	BeginImport(ctx context.Context, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, params []CreateParams) ([]*Sale, error)
	CreateSales(ctx context.Context, sales []*Sale) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	ProductName string
	Category    string
	RegisterID  string
	SellerID    string
	Quantity    int
	UnitPrice   int64
	Total       int64
	OccurredAt  time.Time
}

type ListFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Category   *string
	RegisterID *string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Sale, error) {
	if strings.TrimSpace(params.ProductName) == "" {
		return nil, fmt.Errorf("product name is required")
	}

	if params.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", params.Quantity)
	}

	sl := paramsToSale(params)
	if err := s.repo.CreateSale(ctx, sl); err != nil {
		return nil, err
	}

	return sl, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Sale, error) {
	return s.repo.GetSale(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Sale, error) {
	return s.repo.ListSales(ctx, filter)
}

// Recategorize corrects the category of a recorded sale. This is the one
// permitted mutation of sale history.
func (s *Service) Recategorize(ctx context.Context, id uuid.UUID, category string) error {
	return s.repo.UpdateCategory(ctx, id, strings.TrimSpace(category))
}

// DeleteAll removes the whole sale history and returns how many records
// were dropped. Individual sales are never deleted.
func (s *Service) DeleteAll(ctx context.Context) (int64, error) {
	return s.repo.DeleteAllSales(ctx)
}

type ImportResult struct {
	Imported  []*Sale
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Sale
}

// ImportBatch inserts a batch of sales inside one repository transaction,
// reporting records that already exist instead of double-counting them.
// When conflicts are found nothing is written; the caller confirms the
// remaining new records via CreateBatch.
func (s *Service) ImportBatch(ctx context.Context, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Sale, len(duplicates))

	for _, d := range duplicates {
		lookup[dupKeyOf(d.OccurredAt, d.ProductName, d.RegisterID, d.Quantity, d.Total)] = d
	}

	var newParams []CreateParams

	var conflicts []Conflict

	for _, p := range params {
		existing, found := lookup[dupKeyOf(p.OccurredAt, p.ProductName, p.RegisterID, p.Quantity, p.Total)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	sales := paramsToSales(newParams)
	if err := itx.CreateSales(ctx, sales); err != nil {
		return nil, fmt.Errorf("create sales: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: sales}, nil
}

func (s *Service) CreateBatch(ctx context.Context, params []CreateParams) ([]*Sale, error) {
	if len(params) == 0 {
		return nil, nil
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	sales := paramsToSales(params)
	if err := itx.CreateSales(ctx, sales); err != nil {
		return nil, fmt.Errorf("create sales: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return sales, nil
}

// dupKey identifies a sale line for import deduplication. Free-text
// product names are part of the key as-is: two spellings of the same
// product on the same day are distinct POS lines, not duplicates.
type dupKey struct {
	Day        string
	Name       string
	RegisterID string
	Quantity   int
	Total      int64
}

func dupKeyOf(occurredAt time.Time, name, registerID string, quantity int, total int64) dupKey {
	return dupKey{
		Day:        occurredAt.Format(time.DateOnly),
		Name:       name,
		RegisterID: registerID,
		Quantity:   quantity,
		Total:      total,
	}
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].OccurredAt
	maxDate := params[0].OccurredAt

	for _, p := range params[1:] {
		if p.OccurredAt.Before(minDate) {
			minDate = p.OccurredAt
		}

		if p.OccurredAt.After(maxDate) {
			maxDate = p.OccurredAt
		}
	}

	return minDate, maxDate
}

func paramsToSale(p CreateParams) *Sale {
	return &Sale{
		ProductName: p.ProductName,
		Category:    p.Category,
		RegisterID:  p.RegisterID,
		SellerID:    p.SellerID,
		Quantity:    p.Quantity,
		UnitPrice:   p.UnitPrice,
		Total:       p.Total,
		OccurredAt:  p.OccurredAt,
	}
}

func paramsToSales(params []CreateParams) []*Sale {
	sales := make([]*Sale, len(params))
	for i, p := range params {
		sales[i] = paramsToSale(p)
	}

	return sales
}
