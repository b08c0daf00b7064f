package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealkart/mealkart/internal/domain/promo"
)

var _ promo.Repository = (*PromoRepository)(nil)

// PromoRepository implements promo.Repository backed by PostgreSQL.
type PromoRepository struct {
	pool *pgxpool.Pool
}

// NewPromoRepository returns a PromoRepository that uses the given pool.
func NewPromoRepository(pool *pgxpool.Pool) *PromoRepository {
	return &PromoRepository{pool: pool}
}

// FindByCode looks up an active promo rule by its code, case-insensitively.
// Returns promo.ErrInvalidCode when no matching active promo exists.
func (r *PromoRepository) FindByCode(ctx context.Context, code string) (*promo.Rule, error) {
	var rule promo.Rule
	var discountType string

	err := r.pool.QueryRow(ctx, `
		SELECT code, discount_type, value, min_items, description, valid_from, valid_until, max_uses, uses
		FROM promos
		WHERE code = UPPER($1) AND active`, code).
		Scan(&rule.Code, &discountType, &rule.Value, &rule.MinItems, &rule.Description,
			&rule.ValidFrom, &rule.ValidUntil, &rule.MaxUses, &rule.Uses)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promo.ErrInvalidCode
		}
		return nil, fmt.Errorf("finding promo by code %q: %w", code, err)
	}

	rule.DiscountType = promo.DiscountType(discountType)
	return &rule, nil
}

// Upsert inserts or updates a promo rule. Used by seeding tools.
func (r *PromoRepository) Upsert(ctx context.Context, rule promo.Rule) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO promos (code, discount_type, value, min_items, description, valid_from, valid_until, max_uses, active)
		VALUES (UPPER($1), $2, $3, $4, $5, $6, $7, $8, TRUE)
		ON CONFLICT (code) DO UPDATE
		SET discount_type = EXCLUDED.discount_type, value = EXCLUDED.value,
		    min_items = EXCLUDED.min_items, description = EXCLUDED.description,
		    valid_from = EXCLUDED.valid_from, valid_until = EXCLUDED.valid_until,
		    max_uses = EXCLUDED.max_uses, active = TRUE`,
		rule.Code, string(rule.DiscountType), rule.Value, rule.MinItems, rule.Description,
		rule.ValidFrom, rule.ValidUntil, rule.MaxUses,
	)
	if err != nil {
		return fmt.Errorf("upserting promo %q: %w", rule.Code, err)
	}
	return nil
}

// IncrementUses bumps the usage counter for a promo code.
func (r *PromoRepository) IncrementUses(ctx context.Context, code string) error {
	_, err := r.pool.Exec(ctx, `UPDATE promos SET uses = uses + 1 WHERE code = UPPER($1)`, code)
	if err != nil {
		return fmt.Errorf("incrementing uses for promo %q: %w", code, err)
	}
	return nil
}
