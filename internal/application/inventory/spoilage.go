package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cafe-stock-api/internal/application/dto"
	"github.com/jhoicas/cafe-stock-api/internal/domain"
	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
	"github.com/jhoicas/cafe-stock-api/internal/domain/repository"
	"github.com/jhoicas/cafe-stock-api/internal/domain/unit"
	"github.com/jhoicas/cafe-stock-api/pkg/logger"
)

// SpoilageUseCase merma manual: deduce el stock desperdiciado (FIFO con
// fallback legado) y deja el registro de auditoría, todo en una transacción.
type SpoilageUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewSpoilageUseCase construye el caso de uso.
func NewSpoilageUseCase(txRunner TxRunner, log *logger.Logger) *SpoilageUseCase {
	return &SpoilageUseCase{txRunner: txRunner, log: log}
}

// RegisterSpoilage deduce cada línea y crea el SpoilageRecord. Las líneas que
// consumieron lotes referencian el lote más viejo tocado; las deducidas en modo
// legado quedan con BatchID nil.
func (uc *SpoilageUseCase) RegisterSpoilage(ctx context.Context, userID string, in dto.SpoilageRequest) (*entity.SpoilageRecord, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.IngredientID == "" || !it.Quantity.GreaterThan(decimal.Zero) || it.Reason == "" {
			return nil, domain.ErrInvalidInput
		}
	}

	now := time.Now()
	rec := &entity.SpoilageRecord{
		ID:        uuid.New().String(),
		Auto:      false,
		CreatedBy: userID,
		CreatedAt: now,
	}

	err := uc.txRunner.Run(ctx, func(
		ingRepo repository.IngredientRepository,
		batchRepo repository.BatchRepository,
		spoilRepo repository.SpoilageRepository,
		_ repository.StockInRepository,
	) error {
		for _, it := range in.Items {
			ing, err := ingRepo.GetByID(ctx, it.IngredientID)
			if err != nil {
				return err
			}
			if ing == nil {
				return domain.ErrNotFound
			}

			res, err := DeductInTx(ctx, ingRepo, batchRepo, it.IngredientID, it.Quantity, it.Unit, true, now)
			if err != nil {
				return err
			}

			item := entity.SpoilageItem{
				IngredientID: it.IngredientID,
				Snapshot:     ing.Snapshot(),
				Quantity:     res.TotalDeducted,
				Unit:         ing.Unit,
				Reason:       it.Reason,
			}
			if len(res.Details) > 0 {
				first := res.Details[0]
				item.BatchID = &first.BatchID
				item.BatchNumber = first.BatchNumber
			}
			rec.Items = append(rec.Items, item)
		}
		rec.ComputeTotal()
		return spoilRepo.Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("spoilage_id", rec.ID).
		Str("total_waste", rec.TotalWaste.String()).
		Msg("merma manual registrada")
	return rec, nil
}

// DeleteSpoilage borra un registro de merma manual y restaura el stock.
//
// La restauración es deliberadamente asimétrica: la cantidad vuelve al
// agregado del ingrediente pero NO al lote de origen — comportamiento
// observado del sistema que este servicio reemplaza, conservado a propósito.
// Queda abierto si corresponde restaurar a nivel de lote.
func (uc *SpoilageUseCase) DeleteSpoilage(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	now := time.Now()

	err := uc.txRunner.Run(ctx, func(
		ingRepo repository.IngredientRepository,
		_ repository.BatchRepository,
		spoilRepo repository.SpoilageRepository,
		_ repository.StockInRepository,
	) error {
		rec, err := spoilRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		// Las mermas automáticas del job de caducados son registro histórico
		// del deterioro real; no se revierten.
		if rec.Auto {
			return domain.ErrConflict
		}

		for _, it := range rec.Items {
			ing, err := ingRepo.GetForUpdate(ctx, it.IngredientID)
			if err != nil {
				return err
			}
			if ing == nil || ing.IsDeleted() {
				// Ingrediente eliminado después de la merma: no hay agregado
				// al que devolver la cantidad.
				continue
			}
			qty, err := unit.Convert(it.Quantity, it.Unit, ing.Unit)
			if err != nil {
				return err
			}
			ing.IncrementQuantity(qty, now)
			if err := ingRepo.Update(ctx, ing); err != nil {
				return err
			}
		}
		return spoilRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	uc.log.Info().Str("spoilage_id", id).Msg("merma eliminada y stock restaurado al agregado")
	return nil
}
