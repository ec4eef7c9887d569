package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/freshfold/laundrokart/internal/domain/catalog"
)

const (
	listServicesSQL = `SELECT id, slug, name FROM services ORDER BY name`

	getServiceBySlugSQL = `SELECT id, slug, name FROM services WHERE slug = $1`

	listServiceItemsSQL = `SELECT id, service_id, name, price, image_ref
		FROM service_items WHERE service_id = ANY($1) ORDER BY name`

	upsertItemPriceSQL = `UPDATE service_items SET price = $2 WHERE id = $1`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// List returns every service with its items, ordered by name.
func (r *CatalogRepository) List(ctx context.Context) ([]catalog.Service, error) {
	rows, err := r.pool.Query(ctx, listServicesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}
	services, err := pgx.CollectRows(rows, scanService)
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}
	if err := r.attachItems(ctx, services); err != nil {
		return nil, err
	}
	return services, nil
}

// GetBySlug returns a single service with its items.
// Returns catalog.ErrNotFound when the slug does not exist.
func (r *CatalogRepository) GetBySlug(ctx context.Context, slug string) (*catalog.Service, error) {
	rows, err := r.pool.Query(ctx, getServiceBySlugSQL, slug)
	if err != nil {
		return nil, fmt.Errorf("getting service %q: %w", slug, err)
	}

	svc, err := pgx.CollectExactlyOneRow(rows, scanService)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting service %q: %w", slug, err)
	}

	services := []catalog.Service{svc}
	if err := r.attachItems(ctx, services); err != nil {
		return nil, err
	}
	return &services[0], nil
}

// UpdateItemPrice sets a new unit price for a catalog item. Used by the
// price list ingest tool.
func (r *CatalogRepository) UpdateItemPrice(ctx context.Context, itemID string, price decimal.Decimal) error {
	if _, err := r.pool.Exec(ctx, upsertItemPriceSQL, itemID, price); err != nil {
		return fmt.Errorf("updating price of item %q: %w", itemID, err)
	}
	return nil
}

// attachItems loads the items for the given services in a single query.
func (r *CatalogRepository) attachItems(ctx context.Context, services []catalog.Service) error {
	if len(services) == 0 {
		return nil
	}

	ids := make([]string, len(services))
	byID := make(map[string]*catalog.Service, len(services))
	for i := range services {
		ids[i] = services[i].ID
		byID[services[i].ID] = &services[i]
	}

	rows, err := r.pool.Query(ctx, listServiceItemsSQL, ids)
	if err != nil {
		return fmt.Errorf("listing service items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item      catalog.Item
			serviceID string
			price     decimal.Decimal
		)
		if err := rows.Scan(&item.ID, &serviceID, &item.Name, &price, &item.ImageRef); err != nil {
			return fmt.Errorf("scanning service item: %w", err)
		}
		item.Price = price
		if svc, ok := byID[serviceID]; ok {
			svc.Items = append(svc.Items, item)
		}
	}
	return rows.Err()
}

func scanService(row pgx.CollectableRow) (catalog.Service, error) {
	var s catalog.Service
	err := row.Scan(&s.ID, &s.Slug, &s.Name)
	return s, err
}
