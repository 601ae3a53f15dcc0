package repository

import (
	"context"

	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// ListActive usuarios con status=active: destinatarios de notificaciones.
	ListActive(ctx context.Context) ([]*entity.User, error)
}
