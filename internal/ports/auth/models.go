package auth

type Role string

const (
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}

func (c Claims) IsStaff() bool {
	return c.Role == RoleStaff || c.Role == RoleAdmin
}

type ActorType string

const (
	ActorStaff  ActorType = "Staff"
	ActorPublic ActorType = "Public"
)

// Actor es quien origina una mutación (para el activity log).
type Actor struct {
	Type   ActorType
	ID     string
	Origin string
}

func PublicActor(origin string) Actor {
	return Actor{Type: ActorPublic, Origin: origin}
}
