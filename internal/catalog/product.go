package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a product does not exist or was deleted.
	ErrNotFound = errors.New("product not found")

	// ErrInvalidSnapshot is returned when a product's stock configuration
	// is structurally invalid (negative counts). Reconciliation refuses to
	// run on such a snapshot.
	ErrInvalidSnapshot = errors.New("invalid stock snapshot")
)

// Product represents a stocked catalog item.
//
// CurrentStock and QuantitySold are derived caches written back after
// reconciliation. The reconciliation engine is the only writer of these
// fields; any persisted value is a cache, never a source of truth.
type Product struct {
	ID           uuid.UUID
	Name         string
	Category     string
	UnitPrice    int64 // Price in cents
	MinStock     int   // Reorder threshold
	InitialStock int
	// InitialStockDate is the day the InitialStock count was taken, at day
	// resolution. Nil means the count predates all recorded sales.
	InitialStockDate *time.Time
	CurrentStock     int
	QuantitySold     int
	Description      string
	CreatedAt        time.Time
	UpdatedAt        *time.Time
	DeletedAt        *time.Time
}

// ValidateSnapshot rejects stock configurations the reconciliation engine
// cannot compute a meaningful result for.
func ValidateSnapshot(initialStock, minStock int) error {
	if initialStock < 0 {
		return fmt.Errorf("%w: initial stock %d is negative", ErrInvalidSnapshot, initialStock)
	}

	if minStock < 0 {
		return fmt.Errorf("%w: min stock %d is negative", ErrInvalidSnapshot, minStock)
	}

	return nil
}
