package applications

import "context"

type Repository interface {
	// Create devuelve ErrActiveApplicationExists si el animal ya tiene una solicitud activa.
	Create(ctx context.Context, a Application) (Application, error)
	GetByID(ctx context.Context, id int64) (Application, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción en curso.
	GetForUpdate(ctx context.Context, id int64) (Application, error)

	// UpdateStatus es un compare-and-set sobre el estado: solo escribe si sigue en from.
	// Si no, ErrStaleStatus.
	UpdateStatus(ctx context.Context, a Application, from Status) error
	// UpdateDetails escribe staff_notes e interview_date.
	UpdateDetails(ctx context.Context, a Application) error

	ListActiveByAnimal(ctx context.Context, animalID int64) ([]Application, error)
	// List ordena por fecha de creación, más nuevas primero. Limit <= 0 = sin límite.
	List(ctx context.Context, filter ListFilter) ([]Application, int, error)
}

type ListFilter struct {
	Status    *Status
	AdopterID int64
	AnimalID  int64
	Limit     int
	Offset    int
}
