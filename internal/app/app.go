// Package app wires the marketplace server: configuration, storage, domain
// services, HTTP handlers, and graceful shutdown.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/mealkart/mealkart/internal/api"
	"github.com/mealkart/mealkart/internal/checkout"
	"github.com/mealkart/mealkart/internal/domain/order"
	"github.com/mealkart/mealkart/internal/domain/promo"
	"github.com/mealkart/mealkart/internal/storage/postgres"
	"github.com/mealkart/mealkart/pkg/health"
	"github.com/mealkart/mealkart/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health checks.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.DatabasePingCheck(pool))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	kitRepo := postgres.NewKitRepository(pool)
	promoRepo := postgres.NewPromoRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	apikeyRepo := postgres.NewAPIKeyRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)

	// Checkout: session builder + gateway client. Gateway calls are traced
	// through the instrumented transport; the API key travels only in the
	// Authorization header.
	builder := checkout.NewBuilder(checkout.BuilderConfig{
		Currency:           cfg.Checkout.Currency,
		MinorUnitRatio:     cfg.Checkout.MinorUnitRatio,
		DeliveryFeeMinor:   cfg.Checkout.DeliveryFeeMinor,
		SuccessURLTemplate: cfg.Checkout.SuccessURLTemplate,
		CancelURLTemplate:  cfg.Checkout.CancelURLTemplate,
		FallbackAddress:    cfg.Checkout.FallbackAddress,
		OrderType:          cfg.Checkout.OrderType,
		ShippingCountries:  cfg.Checkout.ShippingCountries,
	})
	gateway := checkout.NewClient(checkout.ClientConfig{
		BaseURL: cfg.Gateway.BaseURL,
		APIKey:  cfg.Gateway.APIKey,
		Timeout: cfg.Gateway.Timeout,
	}, &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
	})

	// Domain services.
	promoValidator := promo.NewRepoValidator(promoRepo)
	orderService := order.NewService(kitRepo, promoValidator, orderRepo, builder, gateway)

	// HTTP handlers.
	h := api.NewHandler(
		api.Config{
			ImageBaseURL:  cfg.ImageBaseURL,
			AnalyticsTopN: cfg.AnalyticsTopN,
		},
		kitRepo,
		orderService,
		analyticsRepo,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(mux, api.APIKeyMiddleware(apikeyRepo, []byte(cfg.APIKeyPepper)))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigin: cfg.CORS.Origin,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("mealkart-api", m.TracerProvider(), m.MeterProvider()),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: fail readiness, wait out the LB, then drain.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
