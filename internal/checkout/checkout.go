// Package checkout builds hosted-payment checkout session requests and
// submits them to an external payment gateway. The gateway is an opaque
// collaborator: it receives line items in minor currency units and returns a
// redirect URL where the buyer completes payment.
package checkout

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PricedItem is one finalized, priced cart entry handed to the builder.
// UnitPrice is in major currency units (rupees, not paise).
type PricedItem struct {
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// SessionItem is a gateway line item with its amount in minor currency units.
type SessionItem struct {
	Name            string
	Description     string
	UnitAmountMinor int64
	Quantity        int
}

// Request is the assembled payload for a "create checkout session" call.
type Request struct {
	Items             []SessionItem
	Currency          string
	SuccessURL        string
	CancelURL         string
	ShippingCountries []string
	Metadata          map[string]string
}

// BuilderConfig holds the fixed parameters a Builder applies to every request.
type BuilderConfig struct {
	// Currency is the ISO 4217 code sent to the gateway.
	Currency string
	// MinorUnitRatio converts major-unit prices to minor units (100 for
	// rupee to paisa). Currencies with a different ratio configure it here.
	MinorUnitRatio int64
	// DeliveryFeeMinor is the flat delivery fee, already in minor units.
	DeliveryFeeMinor int64
	// DeliveryFeeLabel names the synthetic delivery-fee line item.
	DeliveryFeeLabel string
	// SuccessURLTemplate and CancelURLTemplate contain an {origin}
	// placeholder replaced with the caller's request origin. The expanded
	// strings are opaque to this package.
	SuccessURLTemplate string
	CancelURLTemplate  string
	// FallbackAddress is used when the caller supplies no delivery address.
	FallbackAddress string
	// OrderType tags every session's metadata.
	OrderType string
	// ShippingCountries restricts where the gateway may ship.
	ShippingCountries []string
}

// Builder assembles checkout session requests from priced cart items.
type Builder struct {
	cfg BuilderConfig
}

// NewBuilder creates a Builder. A zero MinorUnitRatio defaults to 100.
func NewBuilder(cfg BuilderConfig) *Builder {
	if cfg.MinorUnitRatio == 0 {
		cfg.MinorUnitRatio = 100
	}
	if cfg.DeliveryFeeLabel == "" {
		cfg.DeliveryFeeLabel = "Delivery Fee"
	}
	return &Builder{cfg: cfg}
}

// BuildRequest maps each priced item into a gateway line item, appends
// exactly one synthetic delivery-fee line with quantity 1, expands the
// success/cancel URL templates with the caller's origin, and fills the
// metadata map. It performs no I/O.
func (b *Builder) BuildRequest(items []PricedItem, origin, deliveryAddress string) Request {
	sessionItems := make([]SessionItem, 0, len(items)+1)
	for _, it := range items {
		sessionItems = append(sessionItems, SessionItem{
			Name:            it.Name,
			Description:     it.Description,
			UnitAmountMinor: b.toMinorUnits(it.UnitPrice),
			Quantity:        it.Quantity,
		})
	}

	sessionItems = append(sessionItems, SessionItem{
		Name:            b.cfg.DeliveryFeeLabel,
		Description:     "Flat delivery charge",
		UnitAmountMinor: b.cfg.DeliveryFeeMinor,
		Quantity:        1,
	})

	address := deliveryAddress
	if address == "" {
		address = b.cfg.FallbackAddress
	}

	return Request{
		Items:             sessionItems,
		Currency:          b.cfg.Currency,
		SuccessURL:        strings.ReplaceAll(b.cfg.SuccessURLTemplate, "{origin}", origin),
		CancelURL:         strings.ReplaceAll(b.cfg.CancelURLTemplate, "{origin}", origin),
		ShippingCountries: b.cfg.ShippingCountries,
		Metadata: map[string]string{
			"delivery_address": address,
			"order_type":       b.cfg.OrderType,
		},
	}
}

// DeliveryFeeMajor returns the configured delivery fee in major currency
// units, for order totals kept alongside the minor-unit session amounts.
func (b *Builder) DeliveryFeeMajor() decimal.Decimal {
	return decimal.NewFromInt(b.cfg.DeliveryFeeMinor).Div(decimal.NewFromInt(b.cfg.MinorUnitRatio))
}

// toMinorUnits converts a major-unit price to minor units, rounding to the
// nearest whole minor unit.
func (b *Builder) toMinorUnits(price decimal.Decimal) int64 {
	return price.Mul(decimal.NewFromInt(b.cfg.MinorUnitRatio)).Round(0).IntPart()
}
