package auth

import "context"

// AuthVerifier valida el bearer token de staff y devuelve sus Claims.
// Implementaciones: adapters/auth/jwt (secreto compartido) y adapters/auth/remote
// (servicio de identidad). Sin verifier configurado el router acepta X-Debug-User-ID (modo dev).
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
