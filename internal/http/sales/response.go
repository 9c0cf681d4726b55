package sales

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmbaptista/stockwise/internal/sale"
)

type saleResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductName string    `json:"product_name"`
	Category    string    `json:"category,omitempty"`
	RegisterID  string    `json:"register_id,omitempty"`
	SellerID    string    `json:"seller_id,omitempty"`
	Quantity    int       `json:"quantity"`
	UnitPrice   int64     `json:"unit_price"`
	Total       int64     `json:"total"`
	OccurredAt  time.Time `json:"occurred_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func toResponse(s *sale.Sale) saleResponse {
	return saleResponse{
		ID:          s.ID,
		ProductName: s.ProductName,
		Category:    s.Category,
		RegisterID:  s.RegisterID,
		SellerID:    s.SellerID,
		Quantity:    s.Quantity,
		UnitPrice:   s.UnitPrice,
		Total:       s.Total,
		OccurredAt:  s.OccurredAt,
		CreatedAt:   s.CreatedAt,
	}
}

func toResponseList(sales []*sale.Sale) []saleResponse {
	resp := make([]saleResponse, len(sales))
	for i, s := range sales {
		resp[i] = toResponse(s)
	}

	return resp
}
