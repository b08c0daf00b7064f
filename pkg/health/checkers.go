package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DatabasePingCheck reports unhealthy when the connection pool cannot reach
// the database. Intended as a readiness check.
func DatabasePingCheck(pool *pgxpool.Pool) CheckFunc {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return errors.Wrap(err, "database ping")
		}
		return nil
	}
}

// GoroutineCountCheck reports unhealthy when the goroutine count exceeds the
// threshold. Catches goroutine leaks before they exhaust memory.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(_ context.Context) error {
		if count := runtime.NumGoroutine(); count > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", count, threshold)
		}
		return nil
	}
}

// GatewayReachableCheck reports unhealthy when the payment gateway probe
// fails. The probe function should be cheap, such as a HEAD request to the
// gateway's base URL.
func GatewayReachableCheck(probe func(ctx context.Context) error) CheckFunc {
	return func(ctx context.Context) error {
		if err := probe(ctx); err != nil {
			return errors.Wrap(err, "payment gateway")
		}
		return nil
	}
}
