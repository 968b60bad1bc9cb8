package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/abenov/accounts-server/internal/config"
	"github.com/abenov/accounts-server/internal/model"
)

var _ model.AssetStore = (*Store)(nil)

// Store uploads assets to a content store over HTTP. Content travels
// base64-encoded in a JSON body; the store answers with an absolute URL the
// asset can be fetched from later, which becomes the stored locator.
type Store struct {
	baseURL string
	token   string
	client  *http.Client
}

type uploadRequest struct {
	Content string `json:"content"`
}

type uploadResponse struct {
	DownloadURL string `json:"download_url"`
}

// NewStore creates a remote store client. The HTTP client carries the
// configured timeout so an unresponsive store cannot block a request
// indefinitely.
func NewStore(cfg config.Remote) *Store {
	return &Store{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Upload PUTs the base64-encoded payload under name and returns the
// store-provided download URL. Non-2xx responses are surfaced as
// model.BackendError with the response body attached.
func (s *Store) Upload(ctx context.Context, name string, data []byte) (string, error) {
	body, err := json.Marshal(uploadRequest{
		Content: base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal upload body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.baseURL+"/"+name, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call content store: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read content store response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &model.BackendError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var parsed uploadResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode content store response: %w", err)
	}
	if parsed.DownloadURL == "" {
		return "", fmt.Errorf("content store response carries no download url")
	}

	return parsed.DownloadURL, nil
}
