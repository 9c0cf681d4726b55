package sales

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmbaptista/stockwise/internal/reconcile"
	"github.com/dmbaptista/stockwise/internal/sale"
)

type Handler struct {
	svc    *sale.Service
	engine *reconcile.Engine
}

func NewHandler(svc *sale.Service, engine *reconcile.Engine) *Handler {
	return &Handler{svc: svc, engine: engine}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/category", h.recategorize)
	r.Delete("/", h.deleteAll)
}

type createSaleRequest struct {
	ProductName string    `json:"product_name"`
	Category    string    `json:"category"`
	RegisterID  string    `json:"register_id"`
	SellerID    string    `json:"seller_id"`
	Quantity    int       `json:"quantity"`
	UnitPrice   int64     `json:"unit_price"`
	Total       int64     `json:"total"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sl, err := h.svc.Create(r.Context(), sale.CreateParams{
		ProductName: req.ProductName,
		Category:    req.Category,
		RegisterID:  req.RegisterID,
		SellerID:    req.SellerID,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		Total:       req.Total,
		OccurredAt:  req.OccurredAt,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// A new sale can change any product's reconciliation.
	h.engine.Invalidate()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(sl)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := sale.ListFilter{}

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = new(t)
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = new(t)
		}
	}

	if s := r.URL.Query().Get("category"); s != "" {
		filter.Category = new(s)
	}

	if s := r.URL.Query().Get("register_id"); s != "" {
		filter.RegisterID = new(s)
	}

	sales, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(sales)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	sl, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sale.ErrNotFound) {
			http.Error(w, "sale not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(sl)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type recategorizeRequest struct {
	Category string `json:"category"`
}

func (h *Handler) recategorize(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req recategorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Recategorize(r.Context(), id, req.Category); err != nil {
		if errors.Is(err, sale.ErrNotFound) {
			http.Error(w, "sale not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	h.engine.Invalidate()

	w.WriteHeader(http.StatusNoContent)
}

type deleteAllResponse struct {
	Deleted int64 `json:"deleted"`
}

func (h *Handler) deleteAll(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.DeleteAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.engine.Invalidate()

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(deleteAllResponse{Deleted: deleted}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
