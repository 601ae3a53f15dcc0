package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cafe-stock-api/internal/domain"
	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
	"github.com/jhoicas/cafe-stock-api/internal/domain/repository"
	"github.com/jhoicas/cafe-stock-api/internal/domain/unit"
	"github.com/jhoicas/cafe-stock-api/pkg/logger"
)

// DeductStockUseCase motor de deducción FIFO sobre lotes, con fallback al
// agregado para ingredientes legados sin lotes. Toda deducción corre dentro de
// una transacción con la fila del ingrediente bloqueada (SELECT FOR UPDATE),
// así dos deducciones concurrentes no pueden asignar dos veces la misma
// cantidad de un lote.
type DeductStockUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewDeductStockUseCase construye el caso de uso.
func NewDeductStockUseCase(txRunner TxRunner, log *logger.Logger) *DeductStockUseCase {
	return &DeductStockUseCase{txRunner: txRunner, log: log}
}

// DeductFIFO contrato estricto del motor: deduce amount (en la unidad dada)
// recorriendo los lotes activos del ingrediente en orden FIFO. Si el
// ingrediente no tiene lotes activos devuelve domain.ErrNoActiveBatches — señal
// de enrutamiento, no una falla: el caller debe hacer fallback a la deducción
// directa del agregado (ver Deduct).
func (uc *DeductStockUseCase) DeductFIFO(ctx context.Context, ingredientID string, amount decimal.Decimal, unitStr, reason string) (*DeductionResult, error) {
	return uc.deduct(ctx, ingredientID, amount, unitStr, reason, false)
}

// Deduct operación de cara a ventas/consumos: FIFO cuando hay lotes y, si no
// los hay, deducción directa del agregado con chequeo de stock (modo legado).
func (uc *DeductStockUseCase) Deduct(ctx context.Context, ingredientID string, amount decimal.Decimal, unitStr, reason string) (*DeductionResult, error) {
	return uc.deduct(ctx, ingredientID, amount, unitStr, reason, true)
}

func (uc *DeductStockUseCase) deduct(ctx context.Context, ingredientID string, amount decimal.Decimal, unitStr, reason string, legacyFallback bool) (*DeductionResult, error) {
	if ingredientID == "" || !amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	var result *DeductionResult
	err := uc.txRunner.Run(ctx, func(
		ingRepo repository.IngredientRepository,
		batchRepo repository.BatchRepository,
		_ repository.SpoilageRepository,
		_ repository.StockInRepository,
	) error {
		var err error
		result, err = DeductInTx(ctx, ingRepo, batchRepo, ingredientID, amount, unitStr, legacyFallback, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Debug().
		Str("ingredient_id", ingredientID).
		Str("reason", reason).
		Str("total", result.TotalDeducted.String()).
		Bool("legacy_fallback", result.LegacyFallback).
		Msg("deducción de stock aplicada")
	return result, nil
}

// DeductInTx núcleo de la deducción, ejecutado con repositorios atados a la
// transacción del caller (lo reutilizan la merma manual y los tests).
//
// Algoritmo:
//  1. Bloquea la fila del ingrediente y convierte amount a su unidad canónica;
//     una conversión no soportada falla la operación completa sin mutar nada.
//  2. Carga los lotes activos con cantidad > 0 en orden FIFO (stock_in_date
//     ASC, created_at ASC, id ASC) bloqueando las filas.
//  3. Sin lotes: ErrNoActiveBatches, o fallback directo al agregado si
//     legacyFallback es true.
//  4. Si Σ cantidades < convertido: StockShortfallError sin mutación parcial —
//     la deducción es todo-o-nada.
//  5. Recorre los lotes del más viejo al más nuevo deduciendo
//     min(restante, lote.CurrentQuantity) y registrando una línea por lote.
//  6. Decrementa el agregado por el mismo total convertido; lote(s) y agregado
//     se confirman juntos al hacer Commit la transacción.
func DeductInTx(
	ctx context.Context,
	ingRepo repository.IngredientRepository,
	batchRepo repository.BatchRepository,
	ingredientID string,
	amount decimal.Decimal,
	unitStr string,
	legacyFallback bool,
	now time.Time,
) (*DeductionResult, error) {
	ing, err := ingRepo.GetForUpdate(ctx, ingredientID)
	if err != nil {
		return nil, err
	}
	if ing == nil || ing.IsDeleted() {
		return nil, domain.ErrNotFound
	}

	converted, err := unit.Convert(amount, unitStr, ing.Unit)
	if err != nil {
		return nil, err
	}

	batches, err := batchRepo.ListActiveForUpdate(ctx, ingredientID)
	if err != nil {
		return nil, err
	}

	// Chequeo perezoso de caducidad: un lote cargado para mutación que ya
	// venció pasa a expired y queda fuera de la deducción; el job de
	// reconciliación se encargará de la merma y el vaciado.
	usable := batches[:0]
	for _, b := range batches {
		if b.RefreshStatus(now) {
			if err := batchRepo.Update(ctx, b); err != nil {
				return nil, err
			}
			continue
		}
		usable = append(usable, b)
	}

	if len(usable) == 0 {
		if !legacyFallback {
			return nil, domain.ErrNoActiveBatches
		}
		return deductAggregate(ctx, ingRepo, ing, converted, now)
	}

	available := decimal.Zero
	for _, b := range usable {
		available = available.Add(b.CurrentQuantity)
	}
	if available.LessThan(converted) {
		return nil, &domain.StockShortfallError{Available: available, Requested: converted}
	}

	result := &DeductionResult{TotalDeducted: converted}
	remaining := converted
	for _, b := range usable {
		if !remaining.GreaterThan(decimal.Zero) {
			break
		}
		take := decimal.Min(remaining, b.CurrentQuantity)
		if err := b.Deduct(take, now); err != nil {
			return nil, err
		}
		if err := batchRepo.Update(ctx, b); err != nil {
			return nil, err
		}
		result.Details = append(result.Details, DeductionDetail{
			BatchID:        b.ID,
			BatchNumber:    b.BatchNumber,
			Deducted:       take,
			Remaining:      b.CurrentQuantity,
			ExpirationDate: b.ExpirationDate,
		})
		remaining = remaining.Sub(take)
	}

	ing.DecrementQuantity(converted, now)
	if err := ingRepo.Update(ctx, ing); err != nil {
		return nil, err
	}
	result.RemainingStock = ing.Quantity
	return result, nil
}

// deductAggregate modo legado: resta directo del agregado del ingrediente,
// con chequeo de stock contra esa cantidad.
func deductAggregate(
	ctx context.Context,
	ingRepo repository.IngredientRepository,
	ing *entity.Ingredient,
	converted decimal.Decimal,
	now time.Time,
) (*DeductionResult, error) {
	if ing.Quantity.LessThan(converted) {
		return nil, &domain.StockShortfallError{Available: ing.Quantity, Requested: converted}
	}
	ing.DecrementQuantity(converted, now)
	if err := ingRepo.Update(ctx, ing); err != nil {
		return nil, err
	}
	return &DeductionResult{
		TotalDeducted:  converted,
		RemainingStock: ing.Quantity,
		LegacyFallback: true,
	}, nil
}
