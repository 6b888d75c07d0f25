package attempts

import (
	"context"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
)

// Repository records in-flight upload credentials.
type Repository interface {
	// Record stores a, replacing any row with the same upload token.
	Record(ctx context.Context, a *models.PendingAttempt) error

	// Remove deletes the row for token. Removing an unknown token is not an error.
	Remove(ctx context.Context, token string) error

	// List returns all recorded attempts, oldest first.
	List(ctx context.Context) ([]*models.PendingAttempt, error)
}
