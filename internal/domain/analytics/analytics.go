// Package analytics defines supplier-facing order metrics.
package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Summary aggregates order metrics over a time window.
type Summary struct {
	Since         time.Time
	Until         time.Time
	OrderCount    int64
	GrossRevenue  decimal.Decimal
	AvgOrderValue decimal.Decimal
	TopKits       []KitSales
}

// KitSales is the total quantity sold for one kit within the window.
type KitSales struct {
	KitID    string
	Name     string
	Quantity int64
}

// Repository computes order aggregates.
type Repository interface {
	Summary(ctx context.Context, since, until time.Time, topN int) (*Summary, error)
}
