// Package auth models API credentials for the role-gated surfaces: staff,
// delivery, and admin dashboards authenticate with HMAC-hashed API keys.
package auth

import (
	"context"

	"github.com/go-faster/errors"
)

// Role gates which dashboard endpoints a key may call.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleDelivery Role = "delivery"
)

// ErrKeyNotFound is returned when no key matches the presented hash.
var ErrKeyNotFound = errors.New("api key not found")

// APIKeyInfo holds the identity and permission data for a validated API key.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	Role    Role
}

// Allows reports whether the key's role grants access to the required role.
// Admin keys pass every gate.
func (k *APIKeyInfo) Allows(required Role) bool {
	return k.Role == required || k.Role == RoleAdmin
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}
