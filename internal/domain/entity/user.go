package entity

import "time"

// Roles de usuario dentro de la bodega.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
)

// User es un operario o administrador de la bodega.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string // admin | bodeguero
	Status       string // active | disabled
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
