package repository

import "github.com/jhoicas/despachos-api/internal/domain/entity"

// UserRepository define el puerto de persistencia de usuarios de la bodega.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
}
