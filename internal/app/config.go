package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (MEALKART_ prefix), flags, or YAML config files.
type Config struct {
	Addr          string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL   string `usage:"PostgreSQL connection URL (MEALKART_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	ImageBaseURL  string `default:"" usage:"Base URL for kit images (e.g. https://cdn.example.com/images)" flag:"image-base-url"`
	APIKeyPepper  string `usage:"HMAC pepper for API key hashing (MEALKART_API_KEY_PEPPER)" flag:"api-key-pepper"`
	AnalyticsTopN int    `default:"5" usage:"Number of kits in the analytics top list" flag:"analytics-top-n"`
	Gateway       GatewayConfig
	Checkout      CheckoutConfig
	RateLimit     RateLimitConfig
	CORS          CORSConfig
	Graceful      GracefulConfig
}

// GatewayConfig configures the hosted payment gateway client. APIKey is a
// secret: it is sent only in the Authorization header of gateway calls and
// must never be logged or included in any response.
type GatewayConfig struct {
	BaseURL string        `usage:"Payment gateway base URL" flag:"gateway-base-url"`
	APIKey  string        `usage:"Payment gateway secret API key (MEALKART_GATEWAY_API_KEY)" flag:"gateway-api-key"`
	Timeout time.Duration `default:"15s" usage:"Timeout for gateway session creation" flag:"gateway-timeout"`
}

// CheckoutConfig configures checkout session assembly.
type CheckoutConfig struct {
	Currency           string        `default:"inr" usage:"ISO 4217 currency code for sessions"`
	MinorUnitRatio     int64         `default:"100" usage:"Major to minor currency unit ratio" flag:"minor-unit-ratio"`
	DeliveryFeeMinor   int64         `default:"5000" usage:"Flat delivery fee in minor units" flag:"delivery-fee-minor"`
	SuccessURLTemplate string        `default:"{origin}/payment/success" usage:"Success redirect URL template" flag:"success-url-template"`
	CancelURLTemplate  string        `default:"{origin}/payment/cancelled" usage:"Cancel redirect URL template" flag:"cancel-url-template"`
	FallbackAddress    string        `default:"Address not provided" usage:"Delivery address used when the client omits one" flag:"fallback-address"`
	OrderType          string        `default:"food_kit_order" usage:"Order type tag in session metadata" flag:"order-type"`
	ShippingCountries  []string      `default:"IN" usage:"Allowed shipping countries" flag:"shipping-countries"`
}

// RateLimitConfig controls the per-client fixed window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origin string `default:"*" usage:"Access-Control-Allow-Origin value"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "MEALKART",
		Files:     []string{"config.yaml", "/etc/mealkart/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set MEALKART_DATABASE_URL or DATABASE_URL")
	}
	if cfg.Gateway.BaseURL == "" {
		return nil, errors.New("gateway base URL is required: set MEALKART_GATEWAY_BASE_URL")
	}
	if cfg.Gateway.APIKey == "" {
		return nil, errors.New("gateway API key is required: set MEALKART_GATEWAY_API_KEY")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's MEALKART_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
