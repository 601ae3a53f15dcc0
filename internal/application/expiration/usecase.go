// Package expiration implementa el job de reconciliación de lotes caducados:
// convierte lotes vencidos en registros de merma, los vacía y ajusta el
// agregado del ingrediente.
package expiration

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
	"github.com/jhoicas/cafe-stock-api/internal/domain/repository"
	"github.com/jhoicas/cafe-stock-api/pkg/logger"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Misma forma que inventory.TxRunner: el
// postgres.TxRunner satisface ambos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ingRepo repository.IngredientRepository,
		batchRepo repository.BatchRepository,
		spoilRepo repository.SpoilageRepository,
		stockInRepo repository.StockInRepository,
	) error) error
}

// Result resumen de una corrida del job.
type Result struct {
	ProcessedBatches   int
	SpoilageRecords    int
	ExpiredIngredients []string
}

// UseCase procesa los lotes vencidos pendientes. Idempotente: un lote ya
// vaciado y marcado expired no vuelve a coincidir con la consulta, así que
// corridas repetidas sobre los mismos datos no duplican mermas.
type UseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner TxRunner, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, log: log}
}

// ProcessExpiredBatches busca lotes con fecha de caducidad vencida y cantidad
// restante, los agrupa por ingrediente y, por grupo, crea un único registro de
// merma (reason "expired", atribuido a systemActorID), fuerza cada lote a
// expired / cantidad 0 y decrementa el agregado por el total del grupo. Todo
// en una transacción: misma semántica para el scheduler y el disparo manual.
func (uc *UseCase) ProcessExpiredBatches(ctx context.Context, systemActorID string) (*Result, error) {
	now := time.Now()
	result := &Result{}

	err := uc.txRunner.Run(ctx, func(
		ingRepo repository.IngredientRepository,
		batchRepo repository.BatchRepository,
		spoilRepo repository.SpoilageRepository,
		_ repository.StockInRepository,
	) error {
		expired, err := batchRepo.ListExpired(ctx, now)
		if err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		groups := make(map[string][]*entity.Batch)
		for _, b := range expired {
			groups[b.IngredientID] = append(groups[b.IngredientID], b)
		}

		// Orden determinista de ingredientes: estabiliza el orden de bloqueo
		// de filas y la salida del job.
		ingredientIDs := make([]string, 0, len(groups))
		for id := range groups {
			ingredientIDs = append(ingredientIDs, id)
		}
		sort.Strings(ingredientIDs)

		for _, ingredientID := range ingredientIDs {
			batches := groups[ingredientID]
			if err := uc.processGroup(ctx, ingRepo, batchRepo, spoilRepo, ingredientID, batches, systemActorID, now, result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int("processed_batches", result.ProcessedBatches).
		Int("spoilage_records", result.SpoilageRecords).
		Msg("reconciliación de caducados completada")
	return result, nil
}

// processGroup un ingrediente: una merma cubriendo todos sus lotes vencidos de
// la corrida, lotes a expired/0 y agregado decrementado por el mismo total.
func (uc *UseCase) processGroup(
	ctx context.Context,
	ingRepo repository.IngredientRepository,
	batchRepo repository.BatchRepository,
	spoilRepo repository.SpoilageRepository,
	ingredientID string,
	batches []*entity.Batch,
	systemActorID string,
	now time.Time,
	result *Result,
) error {
	ing, err := ingRepo.GetForUpdate(ctx, ingredientID)
	if err != nil {
		return err
	}

	rec := &entity.SpoilageRecord{
		ID:        uuid.New().String(),
		Auto:      true,
		CreatedBy: systemActorID,
		CreatedAt: now,
	}

	total := decimal.Zero
	for _, b := range batches {
		leftover := b.CurrentQuantity
		total = total.Add(leftover)

		batchID := b.ID
		rec.Items = append(rec.Items, entity.SpoilageItem{
			BatchID:      &batchID,
			BatchNumber:  b.BatchNumber,
			IngredientID: b.IngredientID,
			Snapshot:     b.Snapshot,
			Quantity:     leftover,
			Unit:         b.Unit,
			Reason:       entity.SpoilageReasonExpired,
		})

		b.MarkExpired(now)
		if err := batchRepo.Update(ctx, b); err != nil {
			return err
		}
		result.ProcessedBatches++
	}

	rec.ComputeTotal()
	if err := spoilRepo.Create(ctx, rec); err != nil {
		return err
	}
	result.SpoilageRecords++

	// El ingrediente pudo haberse eliminado (soft-delete) con lotes vivos;
	// los lotes igual se vacían, pero ya no hay agregado que ajustar.
	if ing != nil && !ing.IsDeleted() {
		ing.DecrementQuantity(total, now)
		if err := ingRepo.Update(ctx, ing); err != nil {
			return err
		}
		result.ExpiredIngredients = append(result.ExpiredIngredients, ing.Name)
	}
	return nil
}
