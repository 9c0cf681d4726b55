// Package poscsv reads semicolon-delimited POS register CSV exports.
package poscsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	enc "github.com/dmbaptista/stockwise/internal/encoding"
	"github.com/dmbaptista/stockwise/internal/importer/posfmt"
	"github.com/dmbaptista/stockwise/internal/sale"
)

// Column headers as the registers export them. Matching is
// case-insensitive and accepts the English spellings some vendors use.
var headerAliases = map[string]string{
	"produit":       "product",
	"article":       "product",
	"product":       "product",
	"catégorie":     "category",
	"categorie":     "category",
	"category":      "category",
	"quantité":      "quantity",
	"quantite":      "quantity",
	"qté":           "quantity",
	"quantity":      "quantity",
	"prix unitaire": "unit_price",
	"p.u.":          "unit_price",
	"unit price":    "unit_price",
	"total":         "total",
	"montant":       "total",
	"date":          "date",
	"date vente":    "date",
	"caisse":        "register",
	"register":      "register",
	"vendeur":       "seller",
	"seller":        "seller",
}

// requiredCols must all be present for a row to qualify as the header.
var requiredCols = []string{"product", "quantity", "date"}

// Parser reads POS register CSV exports and produces sale params. The
// header row is located by landmark detection so banners and metadata
// rows above it are skipped, and footer rows below the data are ignored.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// colIndex maps canonical column names to their index in the row.
type colIndex map[string]int

func (p *Parser) Parse(r io.Reader) ([]sale.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	cols, headerIdx := detectHeader(rows)
	if cols == nil {
		return nil, fmt.Errorf("no sales header found: expected columns for product, quantity and date")
	}

	return parseRows(cols, rows[headerIdx+1:]), nil
}

// detectHeader scans rows for one that carries all required columns.
func detectHeader(rows [][]string) (colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if canonical, ok := headerAliases[name]; ok {
				if _, seen := cols[canonical]; !seen {
					cols[canonical] = i
				}
			}
		}

		if hasRequired(cols) {
			return cols, rowIdx
		}
	}

	return nil, 0
}

func hasRequired(cols colIndex) bool {
	for _, name := range requiredCols {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts sales from data rows. Rows whose date or quantity
// does not parse are skipped rather than failing the whole file, since
// POS exports routinely end in subtotal and footer rows.
func parseRows(cols colIndex, rows [][]string) []sale.CreateParams {
	var params []sale.CreateParams

	for _, row := range rows {
		name := cellValue(row, cols, "product")
		if name == "" {
			continue
		}

		occurredAt, err := posfmt.ParseDate(cellValue(row, cols, "date"))
		if err != nil {
			continue
		}

		quantity, err := posfmt.ParseQuantity(cellValue(row, cols, "quantity"))
		if err != nil || quantity <= 0 {
			continue
		}

		unitPrice, _ := posfmt.ParseAmount(cellValue(row, cols, "unit_price"))

		total, err := posfmt.ParseAmount(cellValue(row, cols, "total"))
		if err != nil {
			// The total column is authoritative but not every vendor
			// exports it; reconstruct from the unit price when absent.
			total = unitPrice * int64(quantity)
		}

		params = append(params, sale.CreateParams{
			ProductName: name,
			Category:    cellValue(row, cols, "category"),
			RegisterID:  cellValue(row, cols, "register"),
			SellerID:    cellValue(row, cols, "seller"),
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			Total:       total,
			OccurredAt:  occurredAt,
		})
	}

	return params
}

// cellValue safely gets a trimmed cell value for a canonical column.
func cellValue(row []string, cols colIndex, name string) string {
	idx, ok := cols[name]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
