package importsales

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmbaptista/stockwise/internal/importer"
	"github.com/dmbaptista/stockwise/internal/reconcile"
	"github.com/dmbaptista/stockwise/internal/sale"
)

type Handler struct {
	importSvc *importer.Service
	saleSvc   *sale.Service
	engine    *reconcile.Engine
}

func NewHandler(importSvc *importer.Service, saleSvc *sale.Service, engine *reconcile.Engine) *Handler {
	return &Handler{
		importSvc: importSvc,
		saleSvc:   saleSvc,
		engine:    engine,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importFile)
	r.Post("/confirm", h.confirmImport)
}

type saleResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductName string    `json:"product_name"`
	Category    string    `json:"category,omitempty"`
	RegisterID  string    `json:"register_id,omitempty"`
	Quantity    int       `json:"quantity"`
	UnitPrice   int64     `json:"unit_price"`
	Total       int64     `json:"total"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type importSuccessResponse struct {
	Imported int            `json:"imported"`
	Sales    []saleResponse `json:"sales"`
}

type createParamsDTO struct {
	ProductName string    `json:"product_name"`
	Category    string    `json:"category"`
	RegisterID  string    `json:"register_id"`
	SellerID    string    `json:"seller_id"`
	Quantity    int       `json:"quantity"`
	UnitPrice   int64     `json:"unit_price"`
	Total       int64     `json:"total"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type conflictDTO struct {
	Incoming createParamsDTO `json:"incoming"`
	Existing saleResponse    `json:"existing"`
}

type importConflictResponse struct {
	New       []createParamsDTO `json:"new"`
	Conflicts []conflictDTO     `json:"conflicts"`
}

type confirmRequest struct {
	Params []createParamsDTO `json:"params"`
}

func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	format := importer.Format(r.FormValue("format"))
	if format == "" {
		format = formatFromFilename(header.Filename)
	}

	params, err := h.importSvc.Import(format, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.saleSvc.ImportBatch(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]createParamsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}
		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: toSaleResponse(c.Existing),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("failed to encode response", "error", err)
		}

		return
	}

	h.engine.Invalidate()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toSuccessResponse(result.Imported)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	params := make([]sale.CreateParams, 0, len(req.Params))
	for _, p := range req.Params {
		params = append(params, sale.CreateParams{
			ProductName: p.ProductName,
			Category:    p.Category,
			RegisterID:  p.RegisterID,
			SellerID:    p.SellerID,
			Quantity:    p.Quantity,
			UnitPrice:   p.UnitPrice,
			Total:       p.Total,
			OccurredAt:  p.OccurredAt,
		})
	}

	sales, err := h.saleSvc.CreateBatch(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.engine.Invalidate()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toSuccessResponse(sales)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func formatFromFilename(name string) importer.Format {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return importer.FormatXLSX
	}

	return importer.FormatCSV
}

func toSuccessResponse(sales []*sale.Sale) importSuccessResponse {
	responses := make([]saleResponse, 0, len(sales))
	for _, s := range sales {
		responses = append(responses, toSaleResponse(s))
	}

	return importSuccessResponse{
		Imported: len(sales),
		Sales:    responses,
	}
}

func toSaleResponse(s *sale.Sale) saleResponse {
	return saleResponse{
		ID:          s.ID,
		ProductName: s.ProductName,
		Category:    s.Category,
		RegisterID:  s.RegisterID,
		Quantity:    s.Quantity,
		UnitPrice:   s.UnitPrice,
		Total:       s.Total,
		OccurredAt:  s.OccurredAt,
	}
}

func toParamsDTO(p sale.CreateParams) createParamsDTO {
	return createParamsDTO{
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
