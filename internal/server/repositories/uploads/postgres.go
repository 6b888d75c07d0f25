package uploads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/common"
	"github.com/dmitrijs2005/rentkeeper/internal/dbx"
	"github.com/dmitrijs2005/rentkeeper/internal/server/models"
)

const selectColumns = `upload_token, account_id, user_id, entity_type, entity_id, file_category,
	document_type, file_name, file_size, content_type, storage_key, max_file_size,
	status, expires_at, created_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, u *models.PendingUpload) error {
	query := `
		INSERT INTO pending_uploads (upload_token, account_id, user_id, entity_type, entity_id,
			file_category, document_type, file_name, file_size, content_type, storage_key,
			max_file_size, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		u.UploadToken, u.AccountID, u.UserID, u.EntityType, u.EntityID,
		u.FileCategory, u.DocumentType, u.FileName, u.FileSize, u.ContentType, u.StorageKey,
		u.MaxFileSize, string(u.Status), u.ExpiresAt,
	).Scan(&u.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*models.PendingUpload, error) {
	query := `SELECT ` + selectColumns + ` FROM pending_uploads WHERE upload_token = $1`

	u, err := scanUpload(r.db.QueryRowContext(ctx, query, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select upload: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Transition(ctx context.Context, token string, from, to models.UploadStatus) error {
	query := `UPDATE pending_uploads SET status = $3 WHERE upload_token = $1 AND status = $2`

	res, err := r.db.ExecContext(ctx, query, token, string(from), string(to))
	if err != nil {
		return fmt.Errorf("failed to update upload status: %w", err)
	}
	if err := dbx.AffectedOne(res); err != nil {
		if errors.Is(err, dbx.ErrNoRowsAffected) {
			return common.ErrorConflict
		}
		return err
	}
	return nil
}

func (r *PostgresRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*models.PendingUpload, error) {
	query := `SELECT ` + selectColumns + ` FROM pending_uploads
		WHERE status = $1 AND expires_at <= $2
		ORDER BY expires_at
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, string(models.UploadPending), now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select expired uploads: %w", err)
	}
	defer rows.Close()

	var result []*models.PendingUpload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(s scanner) (*models.PendingUpload, error) {
	var (
		u      models.PendingUpload
		status string
	)
	err := s.Scan(&u.UploadToken, &u.AccountID, &u.UserID, &u.EntityType, &u.EntityID, &u.FileCategory,
		&u.DocumentType, &u.FileName, &u.FileSize, &u.ContentType, &u.StorageKey, &u.MaxFileSize,
		&status, &u.ExpiresAt, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.Status = models.UploadStatus(status)
	return &u, nil
}
