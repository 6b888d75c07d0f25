package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rentkeeper/internal/common"
	"github.com/dmitrijs2005/rentkeeper/internal/dbx"
	"github.com/dmitrijs2005/rentkeeper/internal/server/models"
)

const selectColumns = `id, upload_token, account_id, entity_type, entity_id, file_category, document_type,
	file_name, file_size, content_type, storage_key, public_url, uploaded_at, uploaded_by`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, f *models.File) error {
	query := `
		INSERT INTO files (upload_token, account_id, entity_type, entity_id, file_category, document_type,
			file_name, file_size, content_type, storage_key, public_url, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, uploaded_at
	`
	err := r.db.QueryRowContext(ctx, query,
		f.UploadToken, f.AccountID, f.EntityType, f.EntityID, f.FileCategory, f.DocumentType,
		f.FileName, f.FileSize, f.ContentType, f.StorageKey, f.PublicURL, f.UploadedBy,
	).Scan(&f.ID, &f.UploadedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	query := `SELECT ` + selectColumns + ` FROM files WHERE id = $1`

	f, err := scanFile(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select file: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) ListByEntity(ctx context.Context, entityType string, entityID int64, category string) ([]*models.File, error) {
	query := `SELECT ` + selectColumns + ` FROM files
		WHERE entity_type = $1 AND entity_id = $2 AND ($3 = '' OR file_category = $3)
		ORDER BY uploaded_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, entityType, entityID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	result := []*models.File{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Latest(ctx context.Context, entityType string, entityID int64, category string) (*models.File, error) {
	query := `SELECT ` + selectColumns + ` FROM files
		WHERE entity_type = $1 AND entity_id = $2 AND file_category = $3
		ORDER BY uploaded_at DESC, id DESC
		LIMIT 1`

	f, err := scanFile(r.db.QueryRowContext(ctx, query, entityType, entityID, category))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select latest file: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) Supersede(ctx context.Context, f *models.File) ([]string, error) {
	query := `
		DELETE FROM files
		WHERE entity_type = $1 AND entity_id = $2 AND file_category = $3 AND document_type = $4 AND id <> $5
		RETURNING storage_key
	`
	rows, err := r.db.QueryContext(ctx, query, f.EntityType, f.EntityID, f.FileCategory, f.DocumentType, f.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to supersede files: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if err := dbx.AffectedOne(res); err != nil {
		if errors.Is(err, dbx.ErrNoRowsAffected) {
			return common.ErrorNotFound
		}
		return err
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*models.File, error) {
	var f models.File
	err := s.Scan(&f.ID, &f.UploadToken, &f.AccountID, &f.EntityType, &f.EntityID, &f.FileCategory, &f.DocumentType,
		&f.FileName, &f.FileSize, &f.ContentType, &f.StorageKey, &f.PublicURL, &f.UploadedAt, &f.UploadedBy)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
