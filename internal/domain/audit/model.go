package audit

import (
	"encoding/json"
	"time"

	"animal-sanctuary/internal/ports/auth"
)

type Action string

const (
	ActionInsert Action = "INSERT"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Table nombra la tabla afectada, igual que en el esquema relacional.
type Table string

const (
	TableAnimals      Table = "animals"
	TableAdopters     Table = "adopters"
	TableApplications Table = "adoption_applications"
)

// Entry es append-only: nunca se actualiza ni se borra.
type Entry struct {
	ID      int64
	EventID string

	TableName Table
	RecordID  int64
	Action    Action

	ActorType auth.ActorType
	ActorID   string
	Origin    string

	Before json.RawMessage
	After  json.RawMessage

	Timestamp time.Time
}
