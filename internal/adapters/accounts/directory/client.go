package directory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"caregiver-access/internal/platform/httpclient"
)

var (
	ErrDirectoryNotConfigured = errors.New("accounts directory client not configured")
	ErrDirectoryUpstream      = errors.New("accounts directory upstream error")
)

type Config struct {
	BaseURL string
	APIKey  string

	APIKeyHeader string
	Timeout      time.Duration
}

// Client consulta el servicio de cuentas de la plataforma.
// Implementa accounts.Directory.
type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}

	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

// Exists responde si la cuenta de vendedor existe y está habilitada.
// Un 404 del upstream es "no existe", no un error.
func (c *Client) Exists(ctx context.Context, ownerAccountID string) (bool, error) {
	if !c.IsConfigured() {
		return false, ErrDirectoryNotConfigured
	}
	ownerAccountID = strings.TrimSpace(ownerAccountID)
	if ownerAccountID == "" {
		return false, errors.New("ownerAccountID required")
	}

	headers := map[string]string{c.apiKeyHeader: c.apiKey}

	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}

	err := c.http.DoJSON(ctx, http.MethodGet, "/v1/accounts/"+ownerAccountID, headers, nil, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrDirectoryUpstream, err)
	}

	return out.ID != "" && !strings.EqualFold(out.Status, "suspended"), nil
}
