package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharsanguruparan/designexport/internal/model"
)

// DesignFileRepository resolves design files to their owning project.
type DesignFileRepository struct {
	pool *pgxpool.Pool
}

// NewDesignFileRepository constructs a repository.
func NewDesignFileRepository(pool *pgxpool.Pool) *DesignFileRepository {
	return &DesignFileRepository{pool: pool}
}

// ProjectForDesignFile returns the project id of a design file, or
// model.ErrNotFound.
func (r *DesignFileRepository) ProjectForDesignFile(ctx context.Context, designFileID string) (string, error) {
	var projectID string
	err := r.pool.QueryRow(ctx, `SELECT project_id FROM design_files WHERE id=$1`, designFileID).Scan(&projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", model.ErrNotFound
		}
		return "", fmt.Errorf("select design file: %w", err)
	}
	return projectID, nil
}

// Register inserts or updates a design file's project.
func (r *DesignFileRepository) Register(ctx context.Context, designFileID, projectID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO design_files (id, project_id) VALUES ($1,$2)
		ON CONFLICT (id) DO UPDATE SET project_id = EXCLUDED.project_id
	`, designFileID, projectID)
	if err != nil {
		return fmt.Errorf("upsert design file: %w", err)
	}
	return nil
}
