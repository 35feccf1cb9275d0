package adopters

import "time"

// Reference es una referencia personal del adoptante.
type Reference struct {
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Relationship string `json:"relationship,omitempty"`
}

// Adopter nunca se borra: queda como histórico.
// El email es obligatorio pero no único (varios miembros de un hogar pueden aplicar).
type Adopter struct {
	ID int64 `json:"adopter_id"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`

	DateOfBirth *time.Time `json:"date_of_birth"`
	Occupation  string     `json:"occupation"`

	HousingType  string `json:"housing_type"`
	HousingOwned *bool  `json:"housing_owned"`
	HasYard      *bool  `json:"has_yard"`
	YardFenced   *bool  `json:"yard_fenced"`

	HasOtherPets          *bool  `json:"has_other_pets"`
	OtherPetsDetails      string `json:"other_pets_details"`
	PreviousPetExperience string `json:"previous_pet_experience"`

	References []Reference `json:"references"`
	Notes      string      `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a Adopter) FullName() string {
	return a.FirstName + " " + a.LastName
}
