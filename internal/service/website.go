package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/abenov/accounts-server/internal/logger"
	"github.com/abenov/accounts-server/internal/model"
)

// Website provides plain CRUD over website metadata.
type Website struct {
	websites model.WebsiteStore
	logger   *logger.Logger
}

func NewWebsite(websites model.WebsiteStore, logger *logger.Logger) *Website {
	return &Website{
		websites: websites,
		logger:   logger,
	}
}

func (s *Website) Create(ctx context.Context, website model.Website) (model.Website, error) {
	savedWebsite, err := s.websites.Create(ctx, website)
	if err != nil {
		var conflict *model.ConflictError
		if errors.As(err, &conflict) {
			return model.Website{}, conflict
		}
		return model.Website{}, fmt.Errorf("failed to create website: %w", err)
	}

	s.logger.Info("Website service: website created",
		"website_id", savedWebsite.ID)

	return savedWebsite, nil
}

func (s *Website) Get(ctx context.Context, id int64) (model.Website, error) {
	website, err := s.websites.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Website{}, model.ErrNotFound
	}
	if err != nil {
		return model.Website{}, fmt.Errorf("failed to get website by id: %w", err)
	}

	return website, nil
}

func (s *Website) List(ctx context.Context) ([]model.Website, error) {
	websites, err := s.websites.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list websites: %w", err)
	}
	return websites, nil
}

func (s *Website) Update(ctx context.Context, id int64, params model.Website) (model.Website, error) {
	website, err := s.websites.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Website{}, model.ErrNotFound
	}
	if err != nil {
		return model.Website{}, fmt.Errorf("failed to get website by id: %w", err)
	}

	website.Name = params.Name
	website.Logo = params.Logo
	website.PrimaryColor = params.PrimaryColor
	website.SecondaryColor = params.SecondaryColor
	website.Active = params.Active

	savedWebsite, err := s.websites.Update(ctx, website)
	if err != nil {
		var conflict *model.ConflictError
		if errors.As(err, &conflict) {
			return model.Website{}, conflict
		}
		return model.Website{}, fmt.Errorf("failed to update website: %w", err)
	}

	return savedWebsite, nil
}

func (s *Website) Delete(ctx context.Context, id int64) (string, error) {
	exists, err := s.websites.ExistsByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to check website existence: %w", err)
	}
	if !exists {
		return "", model.ErrNotFound
	}

	if err := s.websites.Delete(ctx, id); err != nil {
		return "", fmt.Errorf("failed to delete website: %w", err)
	}

	return fmt.Sprintf("Website with id %d has been deleted successfully.", id), nil
}
