// Package catalog models the laundry service catalog: offerings such as
// "Wash & Fold" and the priced items available under each.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested service does not exist.
var ErrNotFound = errors.New("service not found")

// Item is one orderable entry of a service, e.g. "Shirt" under "Dry Cleaning".
type Item struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	ImageRef string
}

// Service is a single offering in the catalog.
type Service struct {
	ID    string
	Slug  string
	Name  string
	Items []Item
}

// Repository defines read operations for the service catalog.
type Repository interface {
	List(ctx context.Context) ([]Service, error)
	GetBySlug(ctx context.Context, slug string) (*Service, error)
}
