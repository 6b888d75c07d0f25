// Package owners persists which account owns an entity.
package owners

import "context"

type Repository interface {
	// Claim makes accountID the owner of the entity unless another account
	// got there first, and returns the effective owner either way.
	Claim(ctx context.Context, entityType string, entityID int64, accountID string) (string, error)
	// Owner returns the owning account or common.ErrorNotFound.
	Owner(ctx context.Context, entityType string, entityID int64) (string, error)
}
