package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrIngredientDeleted = errors.New("el ingrediente está eliminado")

	// ErrNoActiveBatches no es una falla: es la señal de enrutamiento con la que
	// el motor FIFO indica al caller que el ingrediente no tiene lotes activos
	// y debe deducir directamente del agregado (modo legado sin lotes).
	ErrNoActiveBatches = errors.New("el ingrediente no tiene lotes activos")

	// ErrDuplicateBatchNumber violación de unicidad al crear un lote.
	ErrDuplicateBatchNumber = errors.New("número de lote duplicado")
)

// StockShortfallError indica que la cantidad solicitada excede la disponible.
// Lleva disponible vs. solicitado (en unidad canónica) para que el caller pueda
// actuar; no expone identificadores internos.
type StockShortfallError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
	// Batch marca que el faltante es de un lote individual y no del conjunto
	// de lotes del ingrediente.
	Batch bool
}

func (e *StockShortfallError) Error() string {
	kind := "stock insuficiente"
	if e.Batch {
		kind = "stock insuficiente en el lote"
	}
	return fmt.Sprintf("%s: disponible %s, solicitado %s", kind, e.Available.String(), e.Requested.String())
}

// IsInsufficientStock indica si err es un faltante de stock (agregado o lote).
func IsInsufficientStock(err error) bool {
	var sse *StockShortfallError
	return errors.As(err, &sse)
}
