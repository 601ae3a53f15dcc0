package repository

import (
	"context"

	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
)

// NotificationRepository define el puerto de persistencia para Notification.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	// ListOpen todas las notificaciones con is_cleared = false.
	ListOpen(ctx context.Context) ([]*entity.Notification, error)
	ListOpenByUser(ctx context.Context, userID string) ([]*entity.Notification, error)
	// Clear marca la notificación como atendida (soft-clear).
	Clear(ctx context.Context, id string) error
}
