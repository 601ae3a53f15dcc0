package repository

import (
	"context"

	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
)

// IngredientRepository define el puerto de persistencia para Ingredient (DIP).
type IngredientRepository interface {
	Create(ctx context.Context, ing *entity.Ingredient) error
	GetByID(ctx context.Context, id string) (*entity.Ingredient, error)
	// GetForUpdate bloquea la fila del agregado (SELECT FOR UPDATE): serializa
	// las escrituras concurrentes sobre un mismo ingrediente y sus lotes.
	GetForUpdate(ctx context.Context, id string) (*entity.Ingredient, error)
	Update(ctx context.Context, ing *entity.Ingredient) error
	ListActive(ctx context.Context) ([]*entity.Ingredient, error)
	// SoftDelete marca el ingrediente como eliminado; la fila se conserva
	// porque los lotes la referencian.
	SoftDelete(ctx context.Context, id string) error
}
