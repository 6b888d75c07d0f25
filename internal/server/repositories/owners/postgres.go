package owners

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rentkeeper/internal/common"
	"github.com/dmitrijs2005/rentkeeper/internal/dbx"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Claim is a single upsert: the no-op update on conflict lets RETURNING
// yield the row that already existed.
func (r *PostgresRepository) Claim(ctx context.Context, entityType string, entityID int64, accountID string) (string, error) {
	query := `
		INSERT INTO entity_owners (entity_type, entity_id, account_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (entity_type, entity_id)
		DO UPDATE SET entity_type = EXCLUDED.entity_type
		RETURNING account_id
	`
	var owner string
	if err := r.db.QueryRowContext(ctx, query, entityType, entityID, accountID).Scan(&owner); err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return owner, nil
}

func (r *PostgresRepository) Owner(ctx context.Context, entityType string, entityID int64) (string, error) {
	query := `SELECT account_id FROM entity_owners WHERE entity_type = $1 AND entity_id = $2`

	var owner string
	err := r.db.QueryRowContext(ctx, query, entityType, entityID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", common.ErrorNotFound
	}
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return owner, nil
}
