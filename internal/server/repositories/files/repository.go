// Package files persists confirmed file records.
package files

import (
	"context"

	"github.com/dmitrijs2005/rentkeeper/internal/server/models"
)

type Repository interface {
	// Create inserts f and fills in its ID and UploadedAt.
	Create(ctx context.Context, f *models.File) error
	// GetByID returns the record or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.File, error)
	// ListByEntity returns the entity's files, newest first. An empty
	// category matches every category.
	ListByEntity(ctx context.Context, entityType string, entityID int64, category string) ([]*models.File, error)
	// Latest returns the newest file in the slot or common.ErrorNotFound.
	Latest(ctx context.Context, entityType string, entityID int64, category string) (*models.File, error)
	// Supersede deletes every record other than f that occupies f's slot
	// (entity, category and document type) and returns their storage keys.
	Supersede(ctx context.Context, f *models.File) ([]string, error)
	// Delete removes the record or returns common.ErrorNotFound.
	Delete(ctx context.Context, id int64) error
}
