// Package posxlsx reads POS register XLSX exports.
package posxlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dmbaptista/stockwise/internal/importer/posfmt"
	"github.com/dmbaptista/stockwise/internal/sale"
)

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

var requiredCols = []string{"product", "quantity", "date"}

// Parser reads the first sheet of an XLSX export. Like the CSV parser it
// locates the header row by landmark detection so title rows above the
// table are tolerated.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]sale.CreateParams, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}

	cols, headerIdx := detectHeader(rows)
	if cols == nil {
		return nil, fmt.Errorf("no sales header found: expected columns for product, quantity and date")
	}

	return parseRows(cols, rows[headerIdx+1:]), nil
}

func detectHeader(rows [][]string) (map[string]int, int) {
	for rowIdx, row := range rows {
		cols := make(map[string]int)

		for i, cell := range row {
			name := normalizeHeader(cell)
			canonical, ok := headerAliases[name]
			if !ok {
				continue
			}

			if _, seen := cols[canonical]; !seen {
				cols[canonical] = i
			}
		}

		if hasRequired(cols) {
			return cols, rowIdx
		}
	}

	return nil, 0
}

func hasRequired(cols map[string]int) bool {
	for _, name := range requiredCols {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func normalizeHeader(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\ufeff")
	value = strings.ToLower(value)
	value = strings.Join(strings.Fields(value), " ")

	return value
}

func parseRows(cols map[string]int, rows [][]string) []sale.CreateParams {
	var params []sale.CreateParams

	for _, row := range rows {
		name := readCell(row, cols, "product")
		if name == "" {
			continue
		}

		occurredAt, err := posfmt.ParseDate(readCell(row, cols, "date"))
		if err != nil {
			continue
		}

		quantity, err := posfmt.ParseQuantity(readCell(row, cols, "quantity"))
		if err != nil || quantity <= 0 {
			continue
		}

		unitPrice, _ := posfmt.ParseAmount(readCell(row, cols, "unit_price"))

		total, err := posfmt.ParseAmount(readCell(row, cols, "total"))
		if err != nil {
			total = unitPrice * int64(quantity)
		}

		params = append(params, sale.CreateParams{
			ProductName: name,
			Category:    readCell(row, cols, "category"),
			RegisterID:  readCell(row, cols, "register"),
			SellerID:    readCell(row, cols, "seller"),
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			Total:       total,
			OccurredAt:  occurredAt,
		})
	}

	return params
}

func readCell(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
