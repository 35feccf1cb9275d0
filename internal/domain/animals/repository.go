package animals

import "context"

type Repository interface {
	// Create asigna el ID. Devuelve ErrDuplicateMicrochip si el chip ya existe en un animal activo.
	Create(ctx context.Context, a Animal) (Animal, error)

	// GetActive devuelve ErrNotFound si no existe o está retirado.
	GetActive(ctx context.Context, id int64) (Animal, error)

	// GetForUpdate bloquea la fila hasta el fin de la transacción en curso.
	// Devuelve también animales retirados; el caller decide.
	GetForUpdate(ctx context.Context, id int64) (Animal, error)

	// Update escribe solo si la fila sigue activa (si no, ErrNotFound).
	Update(ctx context.Context, a Animal) error

	MicrochipInUse(ctx context.Context, chip string, excludeID int64) (bool, error)
	// HasOpenApplications: alguna solicitud del animal en estado no terminal.
	HasOpenApplications(ctx context.Context, animalID int64) (bool, error)

	// List nunca incluye retirados.
	List(ctx context.Context, filter ListFilter) ([]Animal, int, error)
}

// SortKey es el allow-list de ordenamiento.
type SortKey string

const (
	SortName           SortKey = "name"
	SortSpecies        SortKey = "species"
	SortAge            SortKey = "age"
	SortArrivalDate    SortKey = "arrivalDate"
	SortAdoptionStatus SortKey = "adoptionStatus"
)

// ParseSortKey cae a SortName ante cualquier valor fuera del allow-list.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(s); k {
	case SortName, SortSpecies, SortAge, SortArrivalDate, SortAdoptionStatus:
		return k
	default:
		return SortName
	}
}

type ListFilter struct {
	Status        *Status
	Species       string
	HabitatID     *int64
	AvailableOnly bool

	Sort SortKey
	Desc bool

	Limit  int
	Offset int
}
