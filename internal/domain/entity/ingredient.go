package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ingredient representa el registro agregado de stock de un insumo del café.
//
// Quantity es el total corriente en la unidad canónica Unit. Para ingredientes
// con lotes, el invariante es Quantity == Σ CurrentQuantity de sus lotes no
// agotados en todo punto estable; para ingredientes nunca ingresados por la
// vía de lotes (modo legado), Quantity es autoritativo por sí solo.
type Ingredient struct {
	ID             string
	Name           string // único
	Category       string
	Quantity       decimal.Decimal // >= 0, unidad canónica
	Unit           string          // unidad canónica (ml, g, pcs, ...)
	AlertThreshold decimal.Decimal // umbral de alerta de stock bajo
	ExpirationDate *time.Time      // legado: fecha de caducidad plana, solo modo sin lotes
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time // soft-delete: nunca se borra mientras existan lotes
}

// IsDeleted indica si el ingrediente fue eliminado (soft-delete).
func (i *Ingredient) IsDeleted() bool {
	return i.DeletedAt != nil
}

// DecrementQuantity resta qty del agregado sin bajar de cero.
func (i *Ingredient) DecrementQuantity(qty decimal.Decimal, now time.Time) {
	i.Quantity = i.Quantity.Sub(qty)
	if i.Quantity.LessThan(decimal.Zero) {
		i.Quantity = decimal.Zero
	}
	i.UpdatedAt = now
}

// IncrementQuantity suma qty al agregado.
func (i *Ingredient) IncrementQuantity(qty decimal.Decimal, now time.Time) {
	i.Quantity = i.Quantity.Add(qty)
	i.UpdatedAt = now
}

// Snapshot congela los campos de identidad para guardarlos en lotes y mermas.
func (i *Ingredient) Snapshot() IngredientSnapshot {
	return IngredientSnapshot{
		Name:     i.Name,
		Category: i.Category,
		Unit:     i.Unit,
	}
}

// IngredientSnapshot copia inmutable de la identidad del ingrediente al momento
// de crear un lote o una merma; sobrevive a ediciones y borrados posteriores.
type IngredientSnapshot struct {
	Name     string
	Category string
	Unit     string
}
