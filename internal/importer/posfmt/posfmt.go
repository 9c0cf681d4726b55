// Package posfmt parses the field formats shared by POS export files.
package posfmt

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a POS monetary string to cents. Accepts French
// formatting ("1 234,56", "1.234,56") as well as plain "1234.56"; a
// trailing currency sign is tolerated.
func ParseAmount(s string) (int64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.TrimSuffix(clean, "€")

	if strings.Contains(clean, ",") {
		// Dots are thousand separators when a decimal comma is present.
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

// dateFormats are tried in order. POS exports mix day-first French
// formats with ISO dates depending on the register vendor.
var dateFormats = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.DateOnly,
}

// ParseDate parses a POS timestamp string.
func ParseDate(s string) (time.Time, error) {
	clean := strings.TrimSpace(s)

	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, clean); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseQuantity parses an integer count. Some registers export counts
// with a decimal part ("2,00"); those are accepted when whole.
func ParseQuantity(s string) (int, error) {
	clean := strings.TrimSpace(s)
	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("parse quantity %q: %w", s, err)
	}

	if !d.IsInteger() {
		return 0, fmt.Errorf("quantity %q is not a whole number", s)
	}

	return int(d.IntPart()), nil
}
