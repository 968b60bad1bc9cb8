package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/abenov/accounts-server/internal/model"
)

var _ model.WebsiteStore = (*WebsiteRepository)(nil)

const websiteColumns = `id, name, logo, primary_color, secondary_color, active, created_at, updated_at`

type WebsiteRepository struct {
	db *Connection
}

func NewWebsiteRepository(db *Connection) *WebsiteRepository {
	return &WebsiteRepository{
		db: db,
	}
}

func scanWebsite(row interface{ Scan(dest ...any) error }) (model.Website, error) {
	var website model.Website
	err := row.Scan(
		&website.ID, &website.Name, &website.Logo, &website.PrimaryColor, &website.SecondaryColor,
		&website.Active, &website.CreatedAt, &website.UpdatedAt,
	)
	return website, err
}

func (r *WebsiteRepository) GetByID(ctx context.Context, id int64) (model.Website, error) {
	query := `SELECT ` + websiteColumns + ` FROM websites WHERE id = $1`

	website, err := scanWebsite(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Website{}, model.ErrNotFound
		}
		return model.Website{}, fmt.Errorf("failed to get website by id: %w", err)
	}

	return website, nil
}

func (r *WebsiteRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM websites WHERE id = $1)`

	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check website existence: %w", err)
	}

	return exists, nil
}

func (r *WebsiteRepository) List(ctx context.Context) ([]model.Website, error) {
	query := `SELECT ` + websiteColumns + ` FROM websites ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query websites: %w", err)
	}
	defer rows.Close()

	var websites []model.Website
	for rows.Next() {
		website, err := scanWebsite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan website: %w", err)
		}
		websites = append(websites, website)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate websites: %w", err)
	}

	return websites, nil
}

func (r *WebsiteRepository) Create(ctx context.Context, website model.Website) (model.Website, error) {
	query := `INSERT INTO websites (name, logo, primary_color, secondary_color, active)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING ` + websiteColumns

	savedWebsite, err := scanWebsite(r.db.QueryRowContext(ctx, query,
		website.Name, website.Logo, website.PrimaryColor, website.SecondaryColor, website.Active,
	))
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			return model.Website{}, conflict
		}
		return model.Website{}, fmt.Errorf("failed to create website: %w", err)
	}

	return savedWebsite, nil
}

func (r *WebsiteRepository) Update(ctx context.Context, website model.Website) (model.Website, error) {
	query := `UPDATE websites
			  SET name = $2, logo = $3, primary_color = $4, secondary_color = $5, active = $6,
				  updated_at = now()
			  WHERE id = $1
			  RETURNING ` + websiteColumns

	savedWebsite, err := scanWebsite(r.db.QueryRowContext(ctx, query,
		website.ID, website.Name, website.Logo, website.PrimaryColor, website.SecondaryColor, website.Active,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Website{}, model.ErrNotFound
		}
		if conflict := conflictError(err); conflict != nil {
			return model.Website{}, conflict
		}
		return model.Website{}, fmt.Errorf("failed to update website: %w", err)
	}

	return savedWebsite, nil
}

func (r *WebsiteRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM websites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete website: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return model.ErrNotFound
	}

	return nil
}
