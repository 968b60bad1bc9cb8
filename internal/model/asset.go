package model

import "context"

// AssetStore persists a named binary blob and returns its locator. The
// locator is either a bare filename (local backend) or an absolute URL
// (remote backends); its shape, not the configured backend, decides how the
// asset is read back.
type AssetStore interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// AssetResolver retrieves a blob by its stored locator. Both locator forms
// must keep resolving indefinitely: rows written before a backend switch
// still carry the old form.
type AssetResolver interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}
