package habitats

import "context"

type Repository interface {
	Create(ctx context.Context, h Habitat) (Habitat, error)
	GetByID(ctx context.Context, id int64) (Habitat, error)
	List(ctx context.Context) ([]Habitat, error)

	// IncrementOccupancy es un compare-and-set: solo suma si occupancy < capacity.
	// Devuelve ErrAtCapacity si no hay lugar y ErrNotFound si no existe.
	IncrementOccupancy(ctx context.Context, id int64) error
	// DecrementOccupancy nunca baja de 0.
	DecrementOccupancy(ctx context.Context, id int64) error
}
