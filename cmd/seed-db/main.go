package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/mealkart/mealkart/internal/api"
	"github.com/mealkart/mealkart/internal/domain/auth"
	"github.com/mealkart/mealkart/internal/domain/kit"
	"github.com/mealkart/mealkart/internal/domain/promo"
	"github.com/mealkart/mealkart/internal/storage/postgres"
)

type kitJSON struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	Category    string          `json:"category"`
	SupplierID  string          `json:"supplierId"`
	Serves      int             `json:"serves"`
	Image       struct {
		Thumbnail string `json:"thumbnail"`
		Mobile    string `json:"mobile"`
		Tablet    string `json:"tablet"`
		Desktop   string `json:"desktop"`
	} `json:"image"`
	Items []struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		UnitPrice decimal.Decimal `json:"unitPrice"`
		Quantity  int             `json:"quantity"`
		Required  bool            `json:"required"`
		Unit      string          `json:"unit"`
	} `json:"items"`
}

func main() {
	var (
		databaseURL  string
		kitsFile     string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&kitsFile, "kits-file", "db/seed/kits.json", "path to kits JSON file")
	flag.StringVar(&apiKey, "api-key", "", "analytics API key to seed (or MEALKART_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or MEALKART_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("MEALKART_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or MEALKART_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("MEALKART_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, kitsFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, kitsFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedKits(ctx, postgres.NewKitRepository(pool), kitsFile); err != nil {
		return errors.Wrap(err, "seed kits")
	}

	if err := seedPromos(ctx, postgres.NewPromoRepository(pool)); err != nil {
		return errors.Wrap(err, "seed promos")
	}

	if err := seedAPIKey(ctx, postgres.NewAPIKeyRepository(pool), apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func seedKits(ctx context.Context, repo *postgres.KitRepository, kitsFile string) error {
	slog.Info("reading kits file", slog.String("path", kitsFile))

	data, err := os.ReadFile(kitsFile)
	if err != nil {
		return errors.Wrap(err, "read kits file")
	}

	var kits []kitJSON
	if err := json.Unmarshal(data, &kits); err != nil {
		return errors.Wrap(err, "parse kits JSON")
	}

	slog.Info("upserting kits", slog.Int("count", len(kits)))

	for _, k := range kits {
		items := make([]kit.LineItem, len(k.Items))
		for i, it := range k.Items {
			items[i] = kit.LineItem{
				ID:        it.ID,
				Name:      it.Name,
				UnitPrice: it.UnitPrice,
				Quantity:  it.Quantity,
				Required:  it.Required,
				Unit:      it.Unit,
			}
		}

		if err := repo.Upsert(ctx, kit.Kit{
			ID:          k.ID,
			Name:        k.Name,
			Description: k.Description,
			BasePrice:   k.BasePrice,
			Category:    k.Category,
			SupplierID:  k.SupplierID,
			Serves:      k.Serves,
			Image: kit.Image{
				Thumbnail: k.Image.Thumbnail,
				Mobile:    k.Image.Mobile,
				Tablet:    k.Image.Tablet,
				Desktop:   k.Image.Desktop,
			},
			Items: items,
		}); err != nil {
			return errors.Wrapf(err, "upsert kit %s", k.ID)
		}

		slog.Info("upserted kit", slog.String("id", k.ID), slog.String("name", k.Name))
	}

	return nil
}

func seedPromos(ctx context.Context, repo *postgres.PromoRepository) error {
	slog.Info("seeding launch promos")

	rules := []promo.Rule{
		{
			Code:         "FIRSTKIT",
			DiscountType: promo.DiscountPercentage,
			Value:        decimal.NewFromInt(15),
			MinItems:     0,
			Description:  "First order: 15% off",
		},
		{
			Code:         "FAMILYFEAST",
			DiscountType: promo.DiscountFixed,
			Value:        decimal.NewFromInt(100),
			MinItems:     3,
			Description:  "Family feast: flat 100 off on 3+ kits",
		},
		{
			Code:         "TRYTWO",
			DiscountType: promo.DiscountFreeLowest,
			Value:        decimal.Zero,
			MinItems:     2,
			Description:  "Try two: lowest priced kit free",
		},
	}

	for _, rule := range rules {
		if err := repo.Upsert(ctx, rule); err != nil {
			return errors.Wrapf(err, "upsert promo %s", rule.Code)
		}

		slog.Info("upserted promo", slog.String("code", rule.Code), slog.String("description", rule.Description))
	}

	return nil
}

func seedAPIKey(ctx context.Context, repo *postgres.APIKeyRepository, apiKey, pepper string) error {
	slog.Info("seeding analytics API key")

	if err := repo.UpsertAPIKey(ctx, auth.APIKeyInfo{
		ID:      "default",
		KeyHash: api.HashAPIKey(apiKey, []byte(pepper)),
		Name:    "Default analytics key",
		Scopes:  []string{"read_analytics"},
	}); err != nil {
		return errors.Wrap(err, "upsert default API key")
	}

	slog.Info("upserted API key", slog.String("id", "default"), slog.String("name", "Default analytics key"))

	return nil
}
