package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealkart/mealkart/internal/domain/analytics"
)

var _ analytics.Repository = (*AnalyticsRepository)(nil)

// AnalyticsRepository computes order aggregates directly in PostgreSQL.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository returns an AnalyticsRepository that uses the given pool.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// Summary returns order count, gross revenue, average order value, and the
// top kits by quantity for orders created in [since, until).
func (r *AnalyticsRepository) Summary(ctx context.Context, since, until time.Time, topN int) (*analytics.Summary, error) {
	if topN <= 0 {
		topN = 5
	}

	s := &analytics.Summary{Since: since, Until: until}

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total), 0), COALESCE(AVG(total), 0)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2`, since, until).
		Scan(&s.OrderCount, &s.GrossRevenue, &s.AvgOrderValue)
	if err != nil {
		return nil, fmt.Errorf("aggregating orders: %w", err)
	}
	s.AvgOrderValue = s.AvgOrderValue.Round(2)

	rows, err := r.pool.Query(ctx, `
		SELECT item->>'kit_id' AS kit_id,
		       item->>'name' AS name,
		       SUM((item->>'quantity')::BIGINT) AS quantity
		FROM orders, jsonb_array_elements(items) AS item
		WHERE created_at >= $1 AND created_at < $2
		  AND COALESCE(item->>'kit_id', '') <> ''
		GROUP BY 1, 2
		ORDER BY quantity DESC
		LIMIT $3`, since, until, topN)
	if err != nil {
		return nil, fmt.Errorf("aggregating kit sales: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ks analytics.KitSales
		if err := rows.Scan(&ks.KitID, &ks.Name, &ks.Quantity); err != nil {
			return nil, fmt.Errorf("scanning kit sales: %w", err)
		}
		s.TopKits = append(s.TopKits, ks)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading kit sales: %w", err)
	}

	return s, nil
}
