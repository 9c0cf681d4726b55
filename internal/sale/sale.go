package sale

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a sale does not exist.
var ErrNotFound = errors.New("sale not found")

// Sale is one point-of-sale line: an immutable fact about units sold.
// Only the category may be corrected after creation; everything else is
// fixed once recorded.
type Sale struct {
	ID uuid.UUID
	// ProductName and Category are operator-entered free text and are not
	// guaranteed to match catalog spelling. Record linkage happens at
	// reconciliation time, never at write time.
	ProductName string
	Category    string
	RegisterID  string
	SellerID    string
	Quantity    int
	UnitPrice   int64 // cents
	// Total is authoritative for revenue. It is not recomputed from
	// Quantity and UnitPrice because discounts and rounding may apply.
	Total      int64 // cents
	OccurredAt time.Time
	CreatedAt  time.Time
}
