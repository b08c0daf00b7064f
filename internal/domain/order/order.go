package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a confirmed customer order with pricing details and the
// hosted checkout session it was submitted to.
type Order struct {
	ID              string
	Items           []OrderItem
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	DeliveryFee     decimal.Decimal
	Total           decimal.Decimal
	PromoCode       string
	DeliveryAddress string
	CheckoutURL     string
	CreatedAt       time.Time
}

// OrderItem is a single priced line item in an order. UnitPrice is the final
// per-unit price after any kit customization, in major currency units.
type OrderItem struct {
	KitID     string          `json:"kit_id,omitempty"`
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	Type      string          `json:"type,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	SetCheckoutURL(ctx context.Context, id, url string) error
}
