package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=catalog
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, filter ListFilter) ([]*Product, error)

	// UpsertProducts writes a batch of products in a single transaction.
	// Either the whole batch commits or none of it does.
	UpsertProducts(ctx context.Context, products []*Product) error

	UpdateDerived(ctx context.Context, id uuid.UUID, currentStock, quantitySold int) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name             string
	Category         string
	UnitPrice        int64
	MinStock         int
	InitialStock     int
	InitialStockDate *time.Time
	Description      string
}

type ListFilter struct {
	Category *string
	Search   *string
	// LowStock selects products whose cached current stock is at or below
	// their reorder threshold.
	LowStock bool
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Product, error) {
	if err := ValidateSnapshot(params.InitialStock, params.MinStock); err != nil {
		return nil, err
	}

	p := &Product{
		Name:             strings.TrimSpace(params.Name),
		Category:         strings.TrimSpace(params.Category),
		UnitPrice:        params.UnitPrice,
		MinStock:         params.MinStock,
		InitialStock:     params.InitialStock,
		InitialStockDate: params.InitialStockDate,
		// Until a reconciliation runs, the initial count is the best
		// estimate of what is on hand.
		CurrentStock: params.InitialStock,
		Description:  params.Description,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := ValidateSnapshot(p.InitialStock, p.MinStock); err != nil {
		return err
	}

	return s.repo.UpdateProduct(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteProduct(ctx, id)
}

// RefreshDerived writes reconciled stock figures back to the product row.
// Callers must pass values produced by the reconciliation engine; this is
// the only path that mutates the derived cache fields.
func (s *Service) RefreshDerived(ctx context.Context, id uuid.UUID, currentStock, quantitySold int) error {
	return s.repo.UpdateDerived(ctx, id, currentStock, quantitySold)
}

// CreateProducts persists a batch of products atomically. Used by the
// sales-to-catalog sync for its per-chunk commits.
func (s *Service) CreateProducts(ctx context.Context, products []*Product) error {
	if len(products) == 0 {
		return nil
	}

	for _, p := range products {
		if err := ValidateSnapshot(p.InitialStock, p.MinStock); err != nil {
			return err
		}
	}

	return s.repo.UpsertProducts(ctx, products)
}
