package atenea

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"caregiver-access/internal/ports/auth"
)

var (
	ErrAteneaNotConfigured = errors.New("atenea client not configured")
	ErrAteneaUnauthorized  = errors.New("atenea unauthorized")
	ErrAteneaUpstream      = errors.New("atenea upstream error")
)

// Config del cliente Atenea (el IdP de la plataforma).
// BaseURL y APIKey normalmente vendrán de env vars en el servicio que lo instancie.
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: nombre del header donde se manda la API key.
	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	// Timeout HTTP (si http.Client es nil, se usa este).
	Timeout time.Duration
}

type Client struct {
	baseURL      string
	apiKey       string
	apiKeyHeader string
	httpClient   *http.Client
}

func NewClient(cfg Config) *Client {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.baseURL != "" && c.apiKey != ""
}

// VerifyToken llama a Atenea para verificar un token de sesión y traer claims.
// Las sesiones de cuidador vienen con grant_id; las de dueño, sin él.
func (c *Client) VerifyToken(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrAteneaNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrAteneaUnauthorized
	}

	const verifyPath = "/v1/sessions/verify"

	reqBody := map[string]string{
		"token": token,
	}
	b, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+verifyPath, bytes.NewReader(b))
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrAteneaUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(c.apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrAteneaUpstream, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// ok
	case http.StatusUnauthorized, http.StatusForbidden:
		return auth.Claims{}, ErrAteneaUnauthorized
	default:
		return auth.Claims{}, fmt.Errorf("%w: status=%d", ErrAteneaUpstream, resp.StatusCode)
	}

	var out struct {
		UserID  string `json:"user_id"`
		Email   string `json:"email"`
		GrantID string `json:"grant_id"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return auth.Claims{}, fmt.Errorf("%w: invalid json: %v", ErrAteneaUpstream, err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	out.GrantID = strings.TrimSpace(out.GrantID)
	if out.UserID == "" && out.GrantID == "" {
		return auth.Claims{}, errors.New("atenea response missing principal")
	}

	return auth.Claims{
		UserID:  out.UserID,
		Email:   strings.TrimSpace(out.Email),
		GrantID: out.GrantID,
	}, nil
}

// IssueCredentials pide a Atenea el alta de credenciales de login para un
// cuidador recién invitado. Las sesiones que emita quedarán etiquetadas
// con el grant_id.
func (c *Client) IssueCredentials(ctx context.Context, grantID, caregiverEmail, caregiverName string) error {
	if !c.IsConfigured() {
		return ErrAteneaNotConfigured
	}

	grantID = strings.TrimSpace(grantID)
	caregiverEmail = strings.TrimSpace(caregiverEmail)
	if grantID == "" || caregiverEmail == "" {
		return errors.New("grant id and caregiver email required")
	}

	const issuePath = "/v1/caregivers/credentials"

	reqBody := map[string]string{
		"grant_id": grantID,
		"email":    caregiverEmail,
		"name":     strings.TrimSpace(caregiverName),
	}
	b, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+issuePath, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAteneaUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(c.apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAteneaUpstream, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAteneaUnauthorized
	default:
		return fmt.Errorf("%w: status=%d", ErrAteneaUpstream, resp.StatusCode)
	}
}
