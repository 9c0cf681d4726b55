package catalog

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmbaptista/stockwise/internal/catalog"
	"github.com/dmbaptista/stockwise/internal/reconcile"
	"github.com/dmbaptista/stockwise/internal/sale"
)

type Handler struct {
	products *catalog.Service
	sales    *sale.Service
	engine   *reconcile.Engine
}

func NewHandler(products *catalog.Service, sales *sale.Service, engine *reconcile.Engine) *Handler {
	return &Handler{products: products, sales: sales, engine: engine}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/reconcile", h.reconcile)
}

type createProductRequest struct {
	Name             string     `json:"name"`
	Category         string     `json:"category"`
	UnitPrice        int64      `json:"unit_price"`
	MinStock         int        `json:"min_stock"`
	InitialStock     int        `json:"initial_stock"`
	InitialStockDate *time.Time `json:"initial_stock_date,omitempty"`
	Description      string     `json:"description,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.products.Create(r.Context(), catalog.CreateParams{
		Name:             req.Name,
		Category:         req.Category,
		UnitPrice:        req.UnitPrice,
		MinStock:         req.MinStock,
		InitialStock:     req.InitialStock,
		InitialStockDate: req.InitialStockDate,
		Description:      req.Description,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidSnapshot) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(p)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := catalog.ListFilter{}

	if s := r.URL.Query().Get("category"); s != "" {
		filter.Category = new(s)
	}

	if s := r.URL.Query().Get("search"); s != "" {
		filter.Search = new(s)
	}

	if r.URL.Query().Get("low_stock") == "true" {
		filter.LowStock = true
	}

	products, err := h.products.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(products)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(p)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateProductRequest struct {
	Name             *string    `json:"name,omitempty"`
	Category         *string    `json:"category,omitempty"`
	UnitPrice        *int64     `json:"unit_price,omitempty"`
	MinStock         *int       `json:"min_stock,omitempty"`
	InitialStock     *int       `json:"initial_stock,omitempty"`
	InitialStockDate *time.Time `json:"initial_stock_date,omitempty"`
	Description      *string    `json:"description,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if req.Name != nil {
		p.Name = *req.Name
	}

	if req.Category != nil {
		p.Category = *req.Category
	}

	if req.UnitPrice != nil {
		p.UnitPrice = *req.UnitPrice
	}

	if req.MinStock != nil {
		p.MinStock = *req.MinStock
	}

	if req.InitialStock != nil {
		p.InitialStock = *req.InitialStock
	}

	if req.InitialStockDate != nil {
		p.InitialStockDate = req.InitialStockDate
	}

	if req.Description != nil {
		p.Description = *req.Description
	}

	if err := h.products.Update(r.Context(), p); err != nil {
		if errors.Is(err, catalog.ErrInvalidSnapshot) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	// The snapshot may have changed; cached reconciliations for this
	// product are stale now.
	h.engine.Invalidate(id)

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(p)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.engine.Invalidate(id)

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	sales, err := h.sales.List(r.Context(), sale.ListFilter{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	res, err := h.engine.Reconcile(p, sales)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidSnapshot) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	sold := 0
	for _, s := range res.Attributed {
		sold += s.Quantity
	}

	if err := h.products.RefreshDerived(r.Context(), id, res.FinalStock, sold); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toReconcileResponse(res, sold)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
