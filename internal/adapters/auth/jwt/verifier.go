package jwt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"animal-sanctuary/internal/ports/auth"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenEmpty    = errors.New("token is empty")
	ErrNotConfigured = errors.New("jwt secret not configured")
)

// staffClaims es el payload que emite el login de staff.
type staffClaims struct {
	StaffID string `json:"staff_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	jwtlib.RegisteredClaims
}

// Verifier implementa auth.AuthVerifier con tokens HS256.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(strings.TrimSpace(secret)), now: time.Now}
}

func (v *Verifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	if v == nil || len(v.secret) == 0 {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	parsed, err := jwtlib.ParseWithClaims(token, &staffClaims{}, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwtlib.WithTimeFunc(v.now), jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	if err != nil {
		return auth.Claims{}, fmt.Errorf("jwt verify failed: %w", err)
	}

	c, ok := parsed.Claims.(*staffClaims)
	if !ok || !parsed.Valid {
		return auth.Claims{}, errors.New("invalid token")
	}

	c.StaffID = strings.TrimSpace(c.StaffID)
	if c.StaffID == "" {
		return auth.Claims{}, errors.New("jwt claims missing staff_id")
	}

	return auth.Claims{
		UserID: c.StaffID,
		Email:  c.Email,
		Role:   auth.Role(strings.ToLower(strings.TrimSpace(c.Role))),
	}, nil
}

// Sign emite un token HS256 con el mismo secreto. Este servicio no emite tokens en
// producción (los firma el proveedor de identidad); acá lo usan los tests.
func (v *Verifier) Sign(c auth.Claims, ttl time.Duration) (string, error) {
	if v == nil || len(v.secret) == 0 {
		return "", ErrNotConfigured
	}
	now := v.now()
	claims := staffClaims{
		StaffID: c.UserID,
		Email:   c.Email,
		Role:    string(c.Role),
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   c.UserID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(v.secret)
}
