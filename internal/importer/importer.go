// Package importer parses point-of-sale export files into sale records.
package importer

import (
	"fmt"
	"io"

	"github.com/dmbaptista/stockwise/internal/importer/poscsv"
	"github.com/dmbaptista/stockwise/internal/importer/posxlsx"
	"github.com/dmbaptista/stockwise/internal/sale"
)

// Format identifies the file format of a POS export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

type Importer interface {
	Parse(r io.Reader) ([]sale.CreateParams, error)
}

type Service struct {
	csvImporter  Importer
	xlsxImporter Importer
}

func NewService() *Service {
	return &Service{
		csvImporter:  poscsv.NewParser(),
		xlsxImporter: posxlsx.NewParser(),
	}
}

func (s *Service) Import(format Format, r io.Reader) ([]sale.CreateParams, error) {
	var imp Importer

	switch format {
	case FormatCSV:
		imp = s.csvImporter
	case FormatXLSX:
		imp = s.xlsxImporter
	default:
		return nil, fmt.Errorf("unknown import format: %s", format)
	}

	return imp.Parse(r)
}
