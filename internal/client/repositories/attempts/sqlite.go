package attempts

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Record(ctx context.Context, a *models.PendingAttempt) error {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `INSERT INTO pending_attempts (upload_token, storage_key, entity_type, entity_id, file_category, file_name, expires_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(upload_token) DO UPDATE SET storage_key = excluded.storage_key,
				entity_type = excluded.entity_type,
				entity_id = excluded.entity_id,
				file_category = excluded.file_category,
				file_name = excluded.file_name,
				expires_at = excluded.expires_at
	`
	_, err := r.db.ExecContext(ctx, query, a.UploadToken, a.StorageKey, a.EntityType, a.EntityID,
		a.FileCategory, a.FileName, a.ExpiresAt.UnixMilli(), createdAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) Remove(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_attempts WHERE upload_token = ?`, token); err != nil {
		return fmt.Errorf("failed to remove attempt: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.PendingAttempt, error) {
	query := `SELECT upload_token, storage_key, entity_type, entity_id, file_category, file_name, expires_at, created_at
			FROM pending_attempts ORDER BY created_at, upload_token`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error selecting attempts: %w", err)
	}
	defer rows.Close()

	var result []*models.PendingAttempt

	for rows.Next() {
		var (
			item               = &models.PendingAttempt{}
			expires, createdAt int64
		)
		if err := rows.Scan(&item.UploadToken, &item.StorageKey, &item.EntityType, &item.EntityID,
			&item.FileCategory, &item.FileName, &expires, &createdAt); err != nil {
			return nil, err
		}
		item.ExpiresAt = time.UnixMilli(expires).UTC()
		item.CreatedAt = time.UnixMilli(createdAt).UTC()
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
