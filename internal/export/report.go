// Package export writes stock reports as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dmbaptista/stockwise/internal/catalog"
	"github.com/dmbaptista/stockwise/internal/reconcile"
	"github.com/dmbaptista/stockwise/internal/stats"
)

const (
	sheetStock   = "Stock"
	sheetSummary = "Summary"
)

// Row is one product line of the stock sheet.
type Row struct {
	Name             string
	Category         string
	UnitPrice        int64
	InitialStock     int
	InitialStockDate *time.Time
	UnitsSold        int
	UnitsIgnored     int
	FinalStock       int
	MinStock         int
	Status           string
	Warning          string
}

// FromResult flattens a product and its reconciliation into a report row.
func FromResult(p *catalog.Product, res reconcile.Result) Row {
	sold := 0
	for _, s := range res.Attributed {
		sold += s.Quantity
	}

	ignored := 0
	for _, s := range res.Ignored {
		ignored += s.Quantity
	}

	return Row{
		Name:             p.Name,
		Category:         p.Category,
		UnitPrice:        p.UnitPrice,
		InitialStock:     p.InitialStock,
		InitialStockDate: p.InitialStockDate,
		UnitsSold:        sold,
		UnitsIgnored:     ignored,
		FinalStock:       res.FinalStock,
		MinStock:         p.MinStock,
		Status:           status(p, res),
		Warning:          res.Warning,
	}
}

func status(p *catalog.Product, res reconcile.Result) string {
	switch {
	case res.Inconsistent:
		return "inconsistent"
	case res.FinalStock == 0:
		return "out of stock"
	case res.FinalStock > 0 && res.FinalStock <= p.MinStock:
		return "low stock"
	default:
		return "ok"
	}
}

var stockHeader = []any{
	"Product", "Category", "Unit price (EUR)", "Initial stock", "Counted on",
	"Units sold", "Units ignored", "Final stock", "Min stock", "Status", "Warning",
}

// WriteReport writes the stock sheet and a summary sheet to w.
func WriteReport(w io.Writer, rows []Row, summary stats.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeStockSheet(f, rows); err != nil {
		return err
	}

	if err := writeSummarySheet(f, summary); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	return nil
}

func writeStockSheet(f *excelize.File, rows []Row) error {
	if err := f.SetSheetName(f.GetSheetName(0), sheetStock); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := setRow(f, sheetStock, 1, stockHeader); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := f.SetRowStyle(sheetStock, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range rows {
		countedOn := ""
		if row.InitialStockDate != nil {
			countedOn = row.InitialStockDate.Format(time.DateOnly)
		}

		cells := []any{
			row.Name,
			row.Category,
			float64(row.UnitPrice) / 100,
			row.InitialStock,
			countedOn,
			row.UnitsSold,
			row.UnitsIgnored,
			row.FinalStock,
			row.MinStock,
			row.Status,
			row.Warning,
		}

		if err := setRow(f, sheetStock, i+2, cells); err != nil {
			return err
		}
	}

	return nil
}

func writeSummarySheet(f *excelize.File, summary stats.Summary) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	lines := [][]any{
		{"Products", summary.TotalProducts},
		{"Total stock (units)", summary.TotalStock},
		{"Units sold", summary.TotalSold},
		{"Revenue (EUR)", float64(summary.TotalRevenue) / 100},
		{"Out of stock", summary.OutOfStock},
		{"Low stock", summary.LowStock},
		{"Inconsistent", summary.Inconsistent},
		{"Unmatched sales", summary.UnmatchedSales},
		{"Invalid snapshots", summary.InvalidSnapshots},
	}

	for i, line := range lines {
		if err := setRow(f, sheetSummary, i+1, line); err != nil {
			return err
		}
	}

	return nil
}

func setRow(f *excelize.File, sheet string, num int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, num)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}

	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("set row %d: %w", num, err)
	}

	return nil
}
