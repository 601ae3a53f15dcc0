package repository

import (
	"context"
	"time"

	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia para Batch (DIP).
// Los lotes jamás se borran: son registro histórico.
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	Update(ctx context.Context, batch *entity.Batch) error

	// ListActive lotes con status=active y currentQuantity > 0 de un
	// ingrediente, en orden FIFO total y estable: stock_in_date ASC,
	// created_at ASC, id ASC.
	ListActive(ctx context.Context, ingredientID string) ([]*entity.Batch, error)

	// ListActiveForUpdate igual que ListActive pero bloqueando las filas
	// (SELECT FOR UPDATE) para la deducción transaccional.
	ListActiveForUpdate(ctx context.Context, ingredientID string) ([]*entity.Batch, error)

	// ListExpired lotes vencidos pendientes de reconciliar: status active o
	// expired (aún no vaciado), expiration_date no nulo y anterior a now,
	// currentQuantity > 0.
	ListExpired(ctx context.Context, now time.Time) ([]*entity.Batch, error)

	// ListExpiringWithin lotes activos cuya caducidad cae dentro de los
	// próximos days días.
	ListExpiringWithin(ctx context.Context, now time.Time, days int) ([]*entity.Batch, error)

	// ListByIngredient todos los lotes de un ingrediente (histórico incluido).
	ListByIngredient(ctx context.Context, ingredientID string) ([]*entity.Batch, error)
}
