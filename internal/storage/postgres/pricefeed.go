package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// IngredientPrice is one supplier price-feed entry.
type IngredientPrice struct {
	ID       string
	Name     string
	Unit     string
	Price    decimal.Decimal
	Supplier string
}

// PriceFeedRepository persists bulk-ingested supplier ingredient prices.
type PriceFeedRepository struct {
	pool *pgxpool.Pool
}

// NewPriceFeedRepository returns a PriceFeedRepository that uses the given pool.
func NewPriceFeedRepository(pool *pgxpool.Pool) *PriceFeedRepository {
	return &PriceFeedRepository{pool: pool}
}

// UpsertBatch writes a batch of ingredient prices in a single round trip.
func (r *PriceFeedRepository) UpsertBatch(ctx context.Context, prices []IngredientPrice) error {
	if len(prices) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range prices {
		batch.Queue(`
			INSERT INTO ingredient_prices (id, name, unit, price, supplier, updated_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, unit = EXCLUDED.unit, price = EXCLUDED.price,
			    supplier = EXCLUDED.supplier, updated_at = now()`,
			p.ID, p.Name, p.Unit, p.Price, p.Supplier)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for range prices {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upserting ingredient price: %w", err)
		}
	}
	return nil
}
