package export

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmbaptista/stockwise/internal/catalog"
	"github.com/dmbaptista/stockwise/internal/export"
	"github.com/dmbaptista/stockwise/internal/reconcile"
	"github.com/dmbaptista/stockwise/internal/sale"
	"github.com/dmbaptista/stockwise/internal/stats"
)

type Handler struct {
	products   *catalog.Service
	sales      *sale.Service
	engine     *reconcile.Engine
	aggregator *stats.Aggregator
}

func NewHandler(products *catalog.Service, sales *sale.Service, engine *reconcile.Engine, aggregator *stats.Aggregator) *Handler {
	return &Handler{
		products:   products,
		sales:      sales,
		engine:     engine,
		aggregator: aggregator,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/report", h.report)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
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

	rows := make([]export.Row, 0, len(products))

	for _, p := range products {
		res, err := h.engine.Reconcile(p, sales)
		if err != nil {
			if errors.Is(err, catalog.ErrInvalidSnapshot) {
				continue
			}

			http.Error(w, err.Error(), http.StatusInternalServerError)

			return
		}

		rows = append(rows, export.FromResult(p, res))
	}

	summary, err := h.aggregator.Aggregate(r.Context(), products, sales)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Build in memory so a write failure turns into a clean 500 instead
	// of a truncated download.
	var buf bytes.Buffer
	if err := export.WriteReport(&buf, rows, summary); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("stock-report-%s.xlsx", time.Now().Format("2006-01-02"))

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))

	if _, err := buf.WriteTo(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
