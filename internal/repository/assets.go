// Package repository holds the Postgres-backed metadata stores.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharsanguruparan/designexport/internal/model"
)

const assetColumns = `id, design_file_id, project_id, name, format, scale, width, height, file_size_bytes, file_url, created_by, created_at`

// AssetRepository wraps all SQL touching exported_assets.
type AssetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository constructs a repository.
func NewAssetRepository(pool *pgxpool.Pool) *AssetRepository {
	return &AssetRepository{pool: pool}
}

// Insert writes a new row. The id is generated here and created_at by the
// database; the stored row is returned.
func (r *AssetRepository) Insert(ctx context.Context, a model.ExportedAsset) (*model.ExportedAsset, error) {
	a.ID = uuid.NewString()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO exported_assets (id, design_file_id, project_id, name, format, scale, width, height, file_size_bytes, file_url, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING `+assetColumns,
		a.ID, a.DesignFileID, a.ProjectID, a.Name, string(a.Format), int(a.Scale),
		a.Width, a.Height, a.FileSizeBytes, a.FileURL, a.CreatedBy)
	created, err := scanAsset(row)
	if err != nil {
		return nil, fmt.Errorf("insert exported asset: %w", err)
	}
	return created, nil
}

// Get returns an asset by id.
func (r *AssetRepository) Get(ctx context.Context, id string) (*model.ExportedAsset, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+assetColumns+` FROM exported_assets WHERE id=$1`, id)
	a, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("select exported asset: %w", err)
	}
	return a, nil
}

// ListByDesignFile returns the assets of a design file, newest first.
func (r *AssetRepository) ListByDesignFile(ctx context.Context, designFileID string) ([]model.ExportedAsset, error) {
	return r.list(ctx, `SELECT `+assetColumns+` FROM exported_assets WHERE design_file_id=$1 ORDER BY created_at DESC`, designFileID)
}

// ListByProject returns the assets of a project, newest first.
func (r *AssetRepository) ListByProject(ctx context.Context, projectID string) ([]model.ExportedAsset, error) {
	return r.list(ctx, `SELECT `+assetColumns+` FROM exported_assets WHERE project_id=$1 ORDER BY created_at DESC`, projectID)
}

// Delete removes a row. Deleting a missing id reports model.ErrNotFound.
func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exported_assets WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete exported asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *AssetRepository) list(ctx context.Context, query string, arg string) ([]model.ExportedAsset, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query exported assets: %w", err)
	}
	defer rows.Close()

	assets := []model.ExportedAsset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exported asset: %w", err)
		}
		assets = append(assets, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exported assets: %w", err)
	}
	return assets, nil
}

func scanAsset(row pgx.Row) (*model.ExportedAsset, error) {
	var (
		a      model.ExportedAsset
		format string
		scale  int
	)
	if err := row.Scan(&a.ID, &a.DesignFileID, &a.ProjectID, &a.Name, &format, &scale,
		&a.Width, &a.Height, &a.FileSizeBytes, &a.FileURL, &a.CreatedBy, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Format = model.Format(format)
	a.Scale = model.Scale(scale)
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}
