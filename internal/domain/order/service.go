package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mealkart/mealkart/internal/checkout"
	"github.com/mealkart/mealkart/internal/domain/kit"
	"github.com/mealkart/mealkart/internal/domain/promo"
)

// Sentinel errors for order validation.
var (
	ErrEmptyItems = fmt.Errorf("items required")
)

// KitNotFoundError indicates a referenced kit does not exist in the catalog.
type KitNotFoundError struct {
	KitID string
}

func (e *KitNotFoundError) Error() string {
	return fmt.Sprintf("kit %s not found", e.KitID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	Name string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for item %q", e.Name)
}

// InvalidPriceError indicates a line item carries a negative unit price.
type InvalidPriceError struct {
	Name string
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("unit price must not be negative for item %q", e.Name)
}

// CartItem is one inbound cart entry. When KitID is set, the unit price is
// resolved from the catalog and UnitPrice is treated as the customized price
// only if it is higher than the base (ingredient add-ons); otherwise the
// supplied price describes a one-off customized line.
type CartItem struct {
	KitID     string
	Name      string
	Category  string
	Type      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	Items           []CartItem
	PromoCode       string
	DeliveryAddress string
	// Origin is the requesting client's origin, used for the checkout
	// session's redirect URLs.
	Origin string
}

// PlaceOrderResult holds the output of a successfully placed order.
type PlaceOrderResult struct {
	Order       *Order
	RedirectURL string
}

// Service encapsulates order placement: validation, pricing, promo
// application, persistence, and checkout session submission.
type Service struct {
	kits    kit.Repository
	promos  promo.Validator
	orders  Repository
	builder *checkout.Builder
	gateway checkout.Gateway
}

// NewService creates an order Service with the required dependencies.
func NewService(
	kits kit.Repository,
	promos promo.Validator,
	orders Repository,
	builder *checkout.Builder,
	gateway checkout.Gateway,
) *Service {
	return &Service{
		kits:    kits,
		promos:  promos,
		orders:  orders,
		builder: builder,
		gateway: gateway,
	}
}

// PlaceOrder validates the cart, resolves catalog prices, computes totals
// with an optional promo discount, persists the order, then creates a hosted
// checkout session and returns its redirect URL.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	// Subtotal and promo inputs from the resolved prices.
	promoItems := make([]promo.Item, len(items))
	subtotal := decimal.Zero
	for i, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		promoItems[i] = promo.Item{
			Name:     it.Name,
			Price:    it.UnitPrice,
			Quantity: it.Quantity,
		}
		subtotal = subtotal.Add(it.UnitPrice.Mul(qty))
	}

	discount := decimal.Zero
	if req.PromoCode != "" {
		d, err := s.promos.Validate(ctx, req.PromoCode, promoItems)
		if err != nil {
			return nil, fmt.Errorf("validate promo code: %w", err)
		}
		discount = d.Amount
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	subtotal = subtotal.Round(2)
	discount = discount.Round(2)
	deliveryFee := s.builder.DeliveryFeeMajor()
	total := subtotal.Sub(discount).Add(deliveryFee)

	o := &Order{
		ID:              uuid.New().String(),
		Items:           items,
		Subtotal:        subtotal,
		Discount:        discount,
		DeliveryFee:     deliveryFee,
		Total:           total,
		PromoCode:       req.PromoCode,
		DeliveryAddress: req.DeliveryAddress,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	sessionReq := s.builder.BuildRequest(
		pricedItems(items, subtotal, discount),
		req.Origin,
		req.DeliveryAddress,
	)

	url, err := s.gateway.CreateSession(ctx, sessionReq)
	if err != nil {
		return nil, err
	}

	if err := s.orders.SetCheckoutURL(ctx, o.ID, url); err != nil {
		return nil, fmt.Errorf("store checkout url: %w", err)
	}
	o.CheckoutURL = url

	return &PlaceOrderResult{Order: o, RedirectURL: url}, nil
}

// resolveItems validates quantities and prices and resolves catalog prices
// for items that reference a kit, batch-fetching all referenced kits at once.
func (s *Service) resolveItems(ctx context.Context, in []CartItem) ([]OrderItem, error) {
	ids := make([]string, 0, len(in))
	for _, it := range in {
		if it.Quantity <= 0 {
			return nil, &InvalidQuantityError{Name: it.Name}
		}
		if it.UnitPrice.IsNegative() {
			return nil, &InvalidPriceError{Name: it.Name}
		}
		if it.KitID != "" {
			ids = append(ids, it.KitID)
		}
	}

	kitsByID := make(map[string]kit.Kit)
	if len(ids) > 0 {
		fetched, err := s.kits.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("get kits: %w", err)
		}
		for _, k := range fetched {
			kitsByID[k.ID] = k
		}
	}

	out := make([]OrderItem, len(in))
	for i, it := range in {
		price := it.UnitPrice
		if it.KitID != "" {
			k, ok := kitsByID[it.KitID]
			if !ok {
				return nil, &KitNotFoundError{KitID: it.KitID}
			}
			// A customized kit may exceed its base price (ingredient
			// add-ons) but can never undercut it.
			if price.LessThan(k.BasePrice) {
				price = k.BasePrice
			}
		}
		out[i] = OrderItem{
			KitID:     it.KitID,
			Name:      it.Name,
			Category:  it.Category,
			Type:      it.Type,
			UnitPrice: price,
			Quantity:  it.Quantity,
		}
	}

	return out, nil
}

// pricedItems maps order items to checkout line items. When a promo discount
// applies, it is distributed across lines proportionally to each line's share
// of the subtotal, with the final line absorbing the rounding remainder; the
// discounted lines collapse to quantity 1 so amounts stay exact.
func pricedItems(items []OrderItem, subtotal, discount decimal.Decimal) []checkout.PricedItem {
	out := make([]checkout.PricedItem, len(items))

	if discount.IsZero() || subtotal.IsZero() {
		for i, it := range items {
			out[i] = checkout.PricedItem{
				Name:        it.Name,
				Description: it.Category,
				UnitPrice:   it.UnitPrice,
				Quantity:    it.Quantity,
			}
		}
		return out
	}

	remaining := discount
	for i, it := range items {
		lineTotal := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))

		share := remaining
		if i < len(items)-1 {
			share = discount.Mul(lineTotal).Div(subtotal).Round(2)
			if share.GreaterThan(remaining) {
				share = remaining
			}
			remaining = remaining.Sub(share)
		}

		discounted := lineTotal.Sub(share)
		if discounted.IsNegative() {
			discounted = decimal.Zero
		}

		out[i] = checkout.PricedItem{
			Name:        it.Name,
			Description: fmt.Sprintf("%d x %s, promo applied", it.Quantity, it.Name),
			UnitPrice:   discounted,
			Quantity:    1,
		}
	}

	return out
}
