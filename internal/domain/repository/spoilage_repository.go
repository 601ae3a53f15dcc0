package repository

import (
	"context"
	"time"

	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
)

// SpoilageRepository define el puerto de persistencia para SpoilageRecord.
type SpoilageRepository interface {
	Create(ctx context.Context, rec *entity.SpoilageRecord) error
	GetByID(ctx context.Context, id string) (*entity.SpoilageRecord, error)
	// Delete elimina un registro manual; la restauración de stock asociada la
	// orquesta el caso de uso, no el repositorio.
	Delete(ctx context.Context, id string) error
	ListBetween(ctx context.Context, from, to time.Time) ([]*entity.SpoilageRecord, error)
}
