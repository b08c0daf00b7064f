package kit

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NegativePriceError indicates a line item was constructed with a negative
// unit price. This is a caller defect and is rejected, not clamped.
type NegativePriceError struct {
	ItemID string
}

func (e *NegativePriceError) Error() string {
	return fmt.Sprintf("unit price must not be negative for item %s", e.ItemID)
}

// NegativeQuantityError indicates a line item was constructed with a negative
// quantity.
type NegativeQuantityError struct {
	ItemID string
}

func (e *NegativeQuantityError) Error() string {
	return fmt.Sprintf("quantity must not be negative for item %s", e.ItemID)
}

// RequiredBelowFloorError indicates a required line item was constructed with
// quantity 0.
type RequiredBelowFloorError struct {
	ItemID string
}

func (e *RequiredBelowFloorError) Error() string {
	return fmt.Sprintf("required item %s must start with quantity >= 1", e.ItemID)
}

// Customization is the per-session state of a kit customization: a base price
// fixed for the session and the working copy of the kit's line items. It is
// materialized once when the customization view opens, mutated only through
// AdjustQuantity, and discarded when the session closes. A Customization is
// owned by a single session and is not safe for concurrent use.
type Customization struct {
	basePrice decimal.Decimal
	items     []LineItem
}

// NewCustomization materializes a customization session from a base price and
// a caller-supplied item set. The items are copied, so later mutation of the
// input slice does not affect the session. Input-contract violations
// (negative price or quantity, required item at 0) return typed errors.
func NewCustomization(basePrice decimal.Decimal, items []LineItem) (*Customization, error) {
	if basePrice.IsNegative() {
		return nil, &NegativePriceError{ItemID: "base"}
	}
	for _, it := range items {
		if it.UnitPrice.IsNegative() {
			return nil, &NegativePriceError{ItemID: it.ID}
		}
		if it.Quantity < 0 {
			return nil, &NegativeQuantityError{ItemID: it.ID}
		}
		if it.Required && it.Quantity < 1 {
			return nil, &RequiredBelowFloorError{ItemID: it.ID}
		}
	}

	copied := make([]LineItem, len(items))
	copy(copied, items)

	return &Customization{basePrice: basePrice, items: copied}, nil
}

// AdjustQuantity applies an integer delta to the item with the given id and
// returns the session's current items. The proposed quantity is clamped at 0;
// a change that would drop a required item to 0 is rejected and the item is
// left unmodified. An unknown id is a silent no-op.
func (c *Customization) AdjustQuantity(id string, delta int) []LineItem {
	c.items = AdjustQuantity(c.items, id, delta)
	return c.Items()
}

// Total recomputes the session total from the base price and current items.
func (c *Customization) Total() decimal.Decimal {
	return ComputeTotal(c.basePrice, c.items)
}

// Items returns a copy of the session's current line items.
func (c *Customization) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// AdjustQuantity returns a new item list with delta applied to the item whose
// ID matches id. Quantities never go below 0, and a required item never
// reaches 0: a decrement that would land there leaves the item unchanged.
// When no item matches, the list is returned as-is.
func AdjustQuantity(items []LineItem, id string, delta int) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)

	for i := range out {
		if out[i].ID != id {
			continue
		}
		proposed := out[i].Quantity + delta
		if proposed < 0 {
			proposed = 0
		}
		if out[i].Required && proposed == 0 {
			break
		}
		out[i].Quantity = proposed
		break
	}

	return out
}

// ComputeTotal returns basePrice plus the sum of unitPrice * quantity across
// all items. The input slice is not mutated, and the result depends only on
// the arguments, so repeated calls with unchanged inputs are identical.
func ComputeTotal(basePrice decimal.Decimal, items []LineItem) decimal.Decimal {
	total := basePrice
	for _, it := range items {
		line := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(line)
	}
	return total
}
