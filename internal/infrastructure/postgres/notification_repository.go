package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/cafe-stock-api/internal/domain"
	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
	"github.com/jhoicas/cafe-stock-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo implementación del puerto NotificationRepository sobre
// PostgreSQL. batch_id forma parte de la clave de dedup estructurada
// (user, ingredient, batch, type) junto con is_cleared = false.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

const notificationColumns = `id, user_id, type, priority, message, ingredient_id, batch_id, is_cleared, created_at, cleared_at`

// Create persiste una notificación nueva (abierta).
func (r *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, priority, message, ingredient_id, batch_id, is_cleared, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8)`
	_, err := r.q.Exec(ctx, query,
		n.ID, n.UserID, n.Type, n.Priority, n.Message, n.IngredientID, n.BatchID, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// GetByID obtiene una notificación por id.
func (r *NotificationRepo) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	n, err := scanNotification(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

// ListOpen todas las notificaciones abiertas (is_cleared = false).
func (r *NotificationRepo) ListOpen(ctx context.Context) ([]*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE is_cleared = false ORDER BY created_at`
	return r.list(ctx, query)
}

// ListOpenByUser notificaciones abiertas de un usuario, recientes primero.
func (r *NotificationRepo) ListOpenByUser(ctx context.Context, userID string) ([]*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE user_id = $1 AND is_cleared = false ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// Clear marca la notificación como atendida.
func (r *NotificationRepo) Clear(ctx context.Context, id string) error {
	query := `UPDATE notifications SET is_cleared = true, cleared_at = now() WHERE id = $1 AND is_cleared = false`
	tag, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("clear notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *NotificationRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Notification, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*entity.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanNotification(row pgx.Row) (*entity.Notification, error) {
	var n entity.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Priority, &n.Message,
		&n.IngredientID, &n.BatchID, &n.IsCleared, &n.CreatedAt, &n.ClearedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
