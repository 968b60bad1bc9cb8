package model

import (
	"context"
	"time"
)

// WebsiteStore defines persistence operations for website metadata.
type WebsiteStore interface {
	GetByID(ctx context.Context, id int64) (Website, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]Website, error)
	Create(ctx context.Context, website Website) (Website, error)
	Update(ctx context.Context, website Website) (Website, error)
	Delete(ctx context.Context, id int64) error
}

// Website holds per-tenant branding metadata.
type Website struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Logo           string    `json:"logo"`
	PrimaryColor   string    `json:"primaryColor"`
	SecondaryColor string    `json:"secondaryColor"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
