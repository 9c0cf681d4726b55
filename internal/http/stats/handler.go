package stats

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmbaptista/stockwise/internal/catalog"
	"github.com/dmbaptista/stockwise/internal/sale"
	"github.com/dmbaptista/stockwise/internal/stats"
)

type Handler struct {
	products   *catalog.Service
	sales      *sale.Service
	aggregator *stats.Aggregator
}

func NewHandler(products *catalog.Service, sales *sale.Service, aggregator *stats.Aggregator) *Handler {
	return &Handler{products: products, sales: sales, aggregator: aggregator}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.summary)
}

type summaryResponse struct {
	TotalProducts    int   `json:"total_products"`
	TotalStock       int   `json:"total_stock"`
	TotalSold        int   `json:"total_sold"`
	TotalRevenue     int64 `json:"total_revenue"`
	OutOfStock       int   `json:"out_of_stock"`
	LowStock         int   `json:"low_stock"`
	Inconsistent     int   `json:"inconsistent"`
	UnmatchedSales   int   `json:"unmatched_sales"`
	InvalidSnapshots int   `json:"invalid_snapshots"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), catalog.ListFilter{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sales, err := h.sales.List(r.Context(), sale.ListFilter{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	summary, err := h.aggregator.Aggregate(r.Context(), products, sales)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(summaryResponse{
		TotalProducts:    summary.TotalProducts,
		TotalStock:       summary.TotalStock,
		TotalSold:        summary.TotalSold,
		TotalRevenue:     summary.TotalRevenue,
		OutOfStock:       summary.OutOfStock,
		LowStock:         summary.LowStock,
		Inconsistent:     summary.Inconsistent,
		UnmatchedSales:   summary.UnmatchedSales,
		InvalidSnapshots: summary.InvalidSnapshots,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
