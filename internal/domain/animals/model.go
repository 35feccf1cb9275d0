package animals

import (
	"strings"
	"time"
)

// Status es el estado de adopción del animal.
// @Enum Available, Pending, Adopted, Not Available, Medical Hold
type Status string

const (
	StatusAvailable    Status = "Available"
	StatusPending      Status = "Pending"
	StatusAdopted      Status = "Adopted"
	StatusNotAvailable Status = "Not Available"
	StatusMedicalHold  Status = "Medical Hold"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.TrimSpace(s)); st {
	case StatusAvailable, StatusPending, StatusAdopted, StatusNotAvailable, StatusMedicalHold:
		return st, true
	default:
		return "", false
	}
}

// Gender define el sexo del animal.
// @Enum Male, Female, Unknown
type Gender string

const (
	GenderMale    Gender = "Male"
	GenderFemale  Gender = "Female"
	GenderUnknown Gender = "Unknown"
)

// ParseGender acepta cualquier capitalización ("male", "FEMALE").
func ParseGender(s string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male":
		return GenderMale, true
	case "female":
		return GenderFemale, true
	case "unknown":
		return GenderUnknown, true
	default:
		return "", false
	}
}

// Lifecycle reemplaza al viejo flag is_active.
// Un animal retirado no aparece en ningún listado ni lookup público.
type Lifecycle string

const (
	LifecycleActive  Lifecycle = "active"
	LifecycleRetired Lifecycle = "retired"
)

// Animal. Los tags json son los del snapshot que queda en el activity log.
type Animal struct {
	ID int64 `json:"animal_id"`

	Name     string   `json:"name"`
	Species  string   `json:"species"`
	Breed    string   `json:"breed"`
	Age      int      `json:"age"`
	WeightKg *float64 `json:"weight_kg"`
	Gender   Gender   `json:"gender"`
	Color    string   `json:"color"`

	ArrivalDate time.Time `json:"arrival_date"`
	Source      string    `json:"source"`

	AdoptionStatus Status  `json:"adoption_status"`
	AdoptionFee    float64 `json:"adoption_fee"`

	HabitatID *int64 `json:"habitat_id"`

	DietaryRequirements string `json:"dietary_requirements"`
	BehavioralNotes     string `json:"behavioral_notes"`
	SpecialNeeds        string `json:"special_needs"`

	// Vacío = sin microchip. Único entre animales activos.
	MicrochipNumber string `json:"microchip_number"`

	Lifecycle Lifecycle `json:"lifecycle"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a Animal) IsActive() bool {
	return a.Lifecycle == LifecycleActive
}

func (a Animal) DaysInSanctuary(now time.Time) int {
	if a.ArrivalDate.IsZero() || now.Before(a.ArrivalDate) {
		return 0
	}
	return int(now.Sub(a.ArrivalDate).Hours() / 24)
}
