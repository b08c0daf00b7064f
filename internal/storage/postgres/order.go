package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealkart/mealkart/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. The order items are serialized to JSON for
// storage in the JSONB column.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO orders (id, items, subtotal, discount, delivery_fee, total, promo_code, delivery_address, checkout_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, itemsJSON, o.Subtotal, o.Discount, o.DeliveryFee, o.Total,
		o.PromoCode, o.DeliveryAddress, o.CheckoutURL,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	return nil
}

// SetCheckoutURL stores the hosted checkout session URL returned by the
// payment gateway for an already-created order.
func (r *OrderRepository) SetCheckoutURL(ctx context.Context, id, url string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET checkout_url = $2 WHERE id = $1`, id, url)
	if err != nil {
		return fmt.Errorf("setting checkout url for order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("setting checkout url: order %q not found", id)
	}
	return nil
}
