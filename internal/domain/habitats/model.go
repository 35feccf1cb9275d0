package habitats

import "time"

// Type define el tipo de hábitat.
// @Enum indoor, outdoor, mixed
type Type string

const (
	TypeIndoor  Type = "indoor"
	TypeOutdoor Type = "outdoor"
	TypeMixed   Type = "mixed"
)

func ParseType(s string) (Type, bool) {
	switch t := Type(s); t {
	case TypeIndoor, TypeOutdoor, TypeMixed:
		return t, true
	default:
		return "", false
	}
}

// Habitat es una unidad física con capacidad acotada.
// Invariante: 0 <= CurrentOccupancy <= Capacity.
type Habitat struct {
	ID   int64
	Name string
	Type Type

	Capacity         int
	CurrentOccupancy int

	TemperatureRange string
	SpecialFeatures  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (h Habitat) HasRoom() bool {
	return h.CurrentOccupancy < h.Capacity
}
