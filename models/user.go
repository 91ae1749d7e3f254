package models

type UserRole string

const (
	RoleWriter UserRole = "writer"
	RoleAdmin  UserRole = "admin"
)

// Actor is the authenticated user performing a mutation.
type Actor struct {
	UserID uint
	Role   UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
