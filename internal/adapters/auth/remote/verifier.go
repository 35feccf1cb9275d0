package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"animal-sanctuary/internal/platform/httpclient"
	"animal-sanctuary/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("identity service not configured")
	ErrUnauthorized  = errors.New("identity service rejected token")
	ErrUpstream      = errors.New("identity service upstream error")
	ErrTokenEmpty    = errors.New("token is empty")
)

// Config del proveedor de identidad externo.
type Config struct {
	// URL absoluta del endpoint de verificación (POST {"token": "..."}).
	VerifyURL string
	APIKey    string

	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

// Verifier implementa auth.AuthVerifier delegando en el proveedor de identidad
// que emite las sesiones de staff.
type Verifier struct {
	client    *httpclient.Client
	verifyURL string
}

func NewVerifier(cfg Config, opts ...httpclient.Option) (*Verifier, error) {
	verifyURL := strings.TrimSpace(cfg.VerifyURL)
	if verifyURL == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	header := strings.TrimSpace(cfg.APIKeyHeader)
	if header == "" {
		header = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	opts = append([]httpclient.Option{httpclient.WithHeader(header, strings.TrimSpace(cfg.APIKey))}, opts...)
	client, err := httpclient.New("", timeout, opts...)
	if err != nil {
		return nil, err
	}
	return &Verifier{client: client, verifyURL: verifyURL}, nil
}

type verifyResponse struct {
	StaffID string `json:"staff_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	var out verifyResponse
	err := v.client.DoJSON(ctx, http.MethodPost, v.verifyURL,
		map[string]string{"Authorization": "Bearer " + token},
		map[string]string{"token": token},
		&out,
	)
	if err != nil {
		switch httpclient.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return auth.Claims{}, ErrUnauthorized
		default:
			return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	out.StaffID = strings.TrimSpace(out.StaffID)
	if out.StaffID == "" {
		return auth.Claims{}, fmt.Errorf("%w: response missing staff_id", ErrUpstream)
	}

	return auth.Claims{
		UserID: out.StaffID,
		Email:  strings.TrimSpace(out.Email),
		Role:   auth.Role(strings.ToLower(strings.TrimSpace(out.Role))),
	}, nil
}
