package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	upsertServiceSQL = `INSERT INTO services (id, slug, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET slug = EXCLUDED.slug, name = EXCLUDED.name`

	upsertServiceItemSQL = `INSERT INTO service_items (id, service_id, name, price, image_ref)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			service_id = EXCLUDED.service_id,
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			image_ref = EXCLUDED.image_ref`

	upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name, role, active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			key_hash = EXCLUDED.key_hash,
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			active = TRUE`
)

// Seeder provides the upsert operations used by the seed and ingest tools.
// It is not part of the serving path.
type Seeder struct {
	pool *pgxpool.Pool
}

// NewSeeder returns a Seeder that uses the given pool.
func NewSeeder(pool *pgxpool.Pool) *Seeder {
	return &Seeder{pool: pool}
}

// UpsertService inserts or updates a catalog service.
func (s *Seeder) UpsertService(ctx context.Context, id, slug, name string) error {
	if _, err := s.pool.Exec(ctx, upsertServiceSQL, id, slug, name); err != nil {
		return fmt.Errorf("upserting service %q: %w", id, err)
	}
	return nil
}

// UpsertServiceItem inserts or updates a catalog item under a service.
func (s *Seeder) UpsertServiceItem(ctx context.Context, id, serviceID, name string, price decimal.Decimal, imageRef string) error {
	if _, err := s.pool.Exec(ctx, upsertServiceItemSQL, id, serviceID, name, price, imageRef); err != nil {
		return fmt.Errorf("upserting service item %q: %w", id, err)
	}
	return nil
}

// UpsertAPIKey inserts or updates an API key row with the given role.
func (s *Seeder) UpsertAPIKey(ctx context.Context, id, keyHash, name, role string) error {
	if _, err := s.pool.Exec(ctx, upsertAPIKeySQL, id, keyHash, name, role); err != nil {
		return fmt.Errorf("upserting api key %q: %w", id, err)
	}
	return nil
}
