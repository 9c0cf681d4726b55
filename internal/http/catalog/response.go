package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmbaptista/stockwise/internal/catalog"
	"github.com/dmbaptista/stockwise/internal/reconcile"
	"github.com/dmbaptista/stockwise/internal/sale"
)

type productResponse struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Category         string     `json:"category"`
	UnitPrice        int64      `json:"unit_price"`
	MinStock         int        `json:"min_stock"`
	InitialStock     int        `json:"initial_stock"`
	InitialStockDate *time.Time `json:"initial_stock_date,omitempty"`
	CurrentStock     int        `json:"current_stock"`
	QuantitySold     int        `json:"quantity_sold"`
	Description      string     `json:"description,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

func toResponse(p *catalog.Product) productResponse {
	return productResponse{
		ID:               p.ID,
		Name:             p.Name,
		Category:         p.Category,
		UnitPrice:        p.UnitPrice,
		MinStock:         p.MinStock,
		InitialStock:     p.InitialStock,
		InitialStockDate: p.InitialStockDate,
		CurrentStock:     p.CurrentStock,
		QuantitySold:     p.QuantitySold,
		Description:      p.Description,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toResponseList(products []*catalog.Product) []productResponse {
	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toResponse(p)
	}

	return resp
}

type saleSummary struct {
	ID          uuid.UUID `json:"id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Total       int64     `json:"total"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type reconcileResponse struct {
	FinalStock   int           `json:"final_stock"`
	UnitsSold    int           `json:"units_sold"`
	Attributed   []saleSummary `json:"attributed"`
	Ignored      []saleSummary `json:"ignored"`
	Inconsistent bool          `json:"inconsistent"`
	Warning      string        `json:"warning,omitempty"`
}

func toReconcileResponse(res reconcile.Result, sold int) reconcileResponse {
	return reconcileResponse{
		FinalStock:   res.FinalStock,
		UnitsSold:    sold,
		Attributed:   toSaleSummaries(res.Attributed),
		Ignored:      toSaleSummaries(res.Ignored),
		Inconsistent: res.Inconsistent,
		Warning:      res.Warning,
	}
}

func toSaleSummaries(sales []*sale.Sale) []saleSummary {
	resp := make([]saleSummary, len(sales))
	for i, s := range sales {
		resp[i] = saleSummary{
			ID:          s.ID,
			ProductName: s.ProductName,
			Quantity:    s.Quantity,
			Total:       s.Total,
			OccurredAt:  s.OccurredAt,
		}
	}

	return resp
}
