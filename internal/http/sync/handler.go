package sync

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmbaptista/stockwise/internal/catalog"
	"github.com/dmbaptista/stockwise/internal/sale"
	"github.com/dmbaptista/stockwise/internal/syncer"
)

type Handler struct {
	products *catalog.Service
	sales    *sale.Service
	syncSvc  *syncer.Service
}

func NewHandler(products *catalog.Service, sales *sale.Service, syncSvc *syncer.Service) *Handler {
	return &Handler{products: products, sales: sales, syncSvc: syncSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.run)
}

type syncResponse struct {
	Groups  int      `json:"groups"`
	Missing int      `json:"missing"`
	Created []string `json:"created"`
	Summary string   `json:"summary"`
	Error   string   `json:"error,omitempty"`
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	sales, err := h.sales.List(r.Context(), sale.ListFilter{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	products, err := h.products.List(r.Context(), catalog.ListFilter{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result, runErr := h.syncSvc.Sync(r.Context(), sales, products)

	resp := syncResponse{
		Groups:  result.Groups,
		Missing: result.Missing,
		Created: make([]string, 0, len(result.Created)),
		Summary: result.Summary,
	}
	for _, p := range result.Created {
		resp.Created = append(resp.Created, p.Name)
	}

	w.Header().Set("Content-Type", "application/json")

	// A failed run can still have committed earlier chunks; report the
	// partial result alongside the error instead of discarding it.
	if runErr != nil {
		resp.Error = runErr.Error()

		w.WriteHeader(http.StatusInternalServerError)
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
