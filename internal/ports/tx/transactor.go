package tx

import "context"

// Transactor ejecuta fn dentro de una transacción del store.
// La transacción viaja en ctx: los repos la usan si está presente.
// Si ctx ya trae una transacción, fn se une a ella (no hay anidamiento real).
// Si fn devuelve error, se hace rollback de todo lo escrito.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
