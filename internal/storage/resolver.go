package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abenov/accounts-server/internal/model"
	"github.com/abenov/accounts-server/internal/storage/local"
)

var _ model.AssetResolver = (*Resolver)(nil)

// Resolver fetches an asset by its stored locator. Dispatch is on the
// locator's shape, not on the backend configured for writes: absolute URLs
// are fetched over HTTP, bare filenames are read from the local directory.
// Rows written before a backend switch keep resolving either way.
type Resolver struct {
	local      *local.Store
	client     *http.Client
	remoteHost string
	token      string
}

// NewResolver creates a resolver over the local store. When remoteBaseURL
// and token are set, HTTP fetches against that host carry the bearer token.
func NewResolver(localStore *local.Store, remoteBaseURL, token string, timeout time.Duration) *Resolver {
	host := ""
	if remoteBaseURL != "" {
		if u, err := url.Parse(remoteBaseURL); err == nil {
			host = u.Host
		}
	}
	return &Resolver{
		local:      localStore,
		client:     &http.Client{Timeout: timeout},
		remoteHost: host,
		token:      token,
	}
}

// Fetch returns the asset bytes behind the locator.
func (r *Resolver) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if isURL(locator) {
		return r.fetchURL(ctx, locator)
	}
	return r.local.Read(locator)
}

func (r *Resolver) fetchURL(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, &model.FetchError{Err: err}
	}
	if r.token != "" && req.URL.Host == r.remoteHost {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &model.FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.FetchError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.FetchError{Err: err}
	}
	return data, nil
}

func isURL(locator string) bool {
	return strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://")
}
