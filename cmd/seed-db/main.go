// Command seed-db loads the service catalog from a JSON file and provisions
// API keys for the staff and delivery dashboards.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/freshfold/laundrokart/internal/repository"
)

type serviceJSON struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Items []struct {
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Price decimal.Decimal `json:"price"`
		Image string          `json:"image"`
	} `json:"items"`
}

func main() {
	var (
		databaseURL  string
		servicesFile string
		apiKeys      string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&servicesFile, "services-file", "db/seed/services.json", "path to services JSON file")
	flag.StringVar(&apiKeys, "api-keys", "", "comma-separated role:key pairs, e.g. staff:s3cret,delivery:d3liver (or CART_SEED_API_KEYS env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or CART_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKeys == "" {
		apiKeys = os.Getenv("CART_SEED_API_KEYS")
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("CART_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, servicesFile, apiKeys, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, servicesFile, apiKeys, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	seeder := repository.NewSeeder(pool)

	if err := seedServices(ctx, seeder, servicesFile); err != nil {
		return errors.Wrap(err, "seed services")
	}

	if apiKeys != "" {
		if err := seedAPIKeys(ctx, seeder, apiKeys, pepper); err != nil {
			return errors.Wrap(err, "seed api keys")
		}
	}

	return nil
}

func seedServices(ctx context.Context, seeder *repository.Seeder, servicesFile string) error {
	slog.Info("reading services file", slog.String("path", servicesFile))

	data, err := os.ReadFile(servicesFile)
	if err != nil {
		return errors.Wrap(err, "read services file")
	}

	var services []serviceJSON
	if err := json.Unmarshal(data, &services); err != nil {
		return errors.Wrap(err, "parse services JSON")
	}

	slog.Info("upserting services", slog.Int("count", len(services)))

	for _, s := range services {
		if err := seeder.UpsertService(ctx, s.ID, s.Slug, s.Name); err != nil {
			return errors.Wrapf(err, "upsert service %s", s.ID)
		}
		for _, item := range s.Items {
			if err := seeder.UpsertServiceItem(ctx, item.ID, s.ID, item.Name, item.Price, item.Image); err != nil {
				return errors.Wrapf(err, "upsert item %s of service %s", item.ID, s.ID)
			}
		}

		slog.Info("upserted service",
			slog.String("id", s.ID),
			slog.String("name", s.Name),
			slog.Int("items", len(s.Items)),
		)
	}

	return nil
}

// seedAPIKeys parses role:key pairs and stores their HMAC hashes. The raw key
// is never persisted.
func seedAPIKeys(ctx context.Context, seeder *repository.Seeder, pairs, pepper string) error {
	for _, pair := range strings.Split(pairs, ",") {
		role, key, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || role == "" || key == "" {
			return errors.Errorf("malformed api key pair %q, want role:key", pair)
		}

		mac := hmac.New(sha256.New, []byte(pepper))
		mac.Write([]byte(key))
		keyHash := hex.EncodeToString(mac.Sum(nil))

		id := "seed-" + role
		if err := seeder.UpsertAPIKey(ctx, id, keyHash, "Seeded "+role+" key", role); err != nil {
			return errors.Wrapf(err, "upsert %s key", role)
		}

		slog.Info("upserted API key", slog.String("id", id), slog.String("role", role))
	}

	return nil
}
