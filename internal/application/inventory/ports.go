package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cafe-stock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que las escrituras por lote y la del
// agregado del ingrediente se confirmen como una sola unidad: un crash a mitad
// de deducción no puede dejar Σ(batch.currentQuantity) ≠ ingredient.quantity.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ingRepo repository.IngredientRepository,
		batchRepo repository.BatchRepository,
		spoilRepo repository.SpoilageRepository,
		stockInRepo repository.StockInRepository,
	) error) error
}

// DeductionDetail línea por lote tocado en una deducción FIFO.
type DeductionDetail struct {
	BatchID        string
	BatchNumber    string
	Deducted       decimal.Decimal
	Remaining      decimal.Decimal // cantidad que quedó en el lote
	ExpirationDate *time.Time
}

// DeductionResult resultado de una deducción de stock.
type DeductionResult struct {
	TotalDeducted  decimal.Decimal // en unidad canónica del ingrediente
	RemainingStock decimal.Decimal // agregado del ingrediente tras la operación
	// LegacyFallback true cuando no había lotes activos y se dedujo directo
	// del agregado (ingrediente en modo legado sin lotes).
	LegacyFallback bool
	Details        []DeductionDetail
}
