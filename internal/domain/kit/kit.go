package kit

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested kit does not exist.
var ErrNotFound = errors.New("kit not found")

// Kit represents a subscription food kit offered by a supplier.
type Kit struct {
	ID          string
	Name        string
	Description string
	BasePrice   decimal.Decimal
	Category    string
	SupplierID  string
	Serves      int
	Image       Image
	Items       []LineItem
}

// Image holds responsive image URLs for a kit.
type Image struct {
	Thumbnail string
	Mobile    string
	Tablet    string
	Desktop   string
}

// LineItem is one adjustable ingredient entry inside a kit customization.
// Required items carry a floor of quantity 1; optional items may drop to 0.
type LineItem struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Required  bool
	Unit      string
}

// Repository defines read operations for the kit catalog.
type Repository interface {
	List(ctx context.Context) ([]Kit, error)
	GetByID(ctx context.Context, id string) (*Kit, error)
	GetByIDs(ctx context.Context, ids []string) ([]Kit, error)
}
