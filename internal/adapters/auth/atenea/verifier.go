package atenea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"caregiver-access/internal/ports/auth"
)

var (
	ErrTokenEmpty = errors.New("token is empty")
)

// Verifier implementa auth.AuthVerifier usando Atenea.
// Se instancia desde main/router cuando hay IdP configurado.
type Verifier struct {
	client *Client
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrAteneaNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	claims, err := v.client.VerifyToken(ctx, token)
	if err != nil {
		// Normalizamos un poco, pero sin inventar semantics.
		// El middleware actual ya decide si corta o no.
		return auth.Claims{}, fmt.Errorf("atenea verify failed: %w", err)
	}

	return claims, nil
}
