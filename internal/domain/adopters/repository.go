package adopters

import "context"

type Repository interface {
	Create(ctx context.Context, a Adopter) (Adopter, error)
	GetByID(ctx context.Context, id int64) (Adopter, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción en curso.
	GetForUpdate(ctx context.Context, id int64) (Adopter, error)
	Update(ctx context.Context, a Adopter) error
	// List busca por nombre, apellido o email (case-insensitive).
	List(ctx context.Context, filter ListFilter) ([]Adopter, int, error)
}

type ListFilter struct {
	Search string
	Limit  int
	Offset int
}
