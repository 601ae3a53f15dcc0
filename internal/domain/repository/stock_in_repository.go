package repository

import (
	"context"

	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
)

// StockInRepository define el puerto de persistencia para StockIn.
type StockInRepository interface {
	Create(ctx context.Context, in *entity.StockIn) error
	GetByID(ctx context.Context, id string) (*entity.StockIn, error)
}
