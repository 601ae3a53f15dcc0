package inventory

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cafe-stock-api/internal/application/dto"
	"github.com/jhoicas/cafe-stock-api/internal/domain"
	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
	"github.com/jhoicas/cafe-stock-api/internal/domain/repository"
	"github.com/jhoicas/cafe-stock-api/internal/domain/unit"
	"github.com/jhoicas/cafe-stock-api/pkg/logger"
)

// StockInUseCase registra un ingreso de stock y crea un lote por cada línea.
// El número de cada lote se deriva del número padre:
// {parentBatchNumber}-{prefijoIngrediente}-{4 dígitos aleatorios}.
type StockInUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewStockInUseCase construye el caso de uso.
func NewStockInUseCase(txRunner TxRunner, log *logger.Logger) *StockInUseCase {
	return &StockInUseCase{txRunner: txRunner, log: log}
}

// RegisterStockIn persiste el ingreso y sus lotes en una sola transacción.
// Cada lote nace con CurrentQuantity = OriginalQuantity (en unidad canónica
// del ingrediente), snapshot de identidad congelado y status active; el
// agregado del ingrediente se incrementa por el mismo total.
// Un número de lote duplicado se propaga como ErrDuplicateBatchNumber.
func (uc *StockInUseCase) RegisterStockIn(ctx context.Context, userID string, in dto.StockInRequest) ([]*entity.Batch, error) {
	if in.BatchNumber == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.IngredientID == "" || !it.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	}

	now := time.Now()
	stockIn := &entity.StockIn{
		ID:          uuid.New().String(),
		BatchNumber: in.BatchNumber,
		Supplier:    in.Supplier,
		CreatedBy:   userID,
		CreatedAt:   now,
	}

	var created []*entity.Batch
	err := uc.txRunner.Run(ctx, func(
		ingRepo repository.IngredientRepository,
		batchRepo repository.BatchRepository,
		_ repository.SpoilageRepository,
		stockInRepo repository.StockInRepository,
	) error {
		for _, it := range in.Items {
			stockIn.Items = append(stockIn.Items, entity.StockInItem{
				IngredientID:   it.IngredientID,
				Quantity:       it.Quantity,
				Unit:           it.Unit,
				ExpirationDate: it.ExpirationDate,
			})
		}
		if err := stockInRepo.Create(ctx, stockIn); err != nil {
			return err
		}

		batches, err := CreateBatchesFromStockIn(ctx, ingRepo, batchRepo, stockIn, now)
		if err != nil {
			return err
		}
		created = batches
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("stock_in", stockIn.BatchNumber).
		Int("batches", len(created)).
		Msg("ingreso de stock registrado")
	return created, nil
}

// CreateBatchesFromStockIn convierte cada línea del ingreso en un lote e
// incrementa el agregado de su ingrediente. Se ejecuta con repositorios atados
// a la transacción del caller.
func CreateBatchesFromStockIn(
	ctx context.Context,
	ingRepo repository.IngredientRepository,
	batchRepo repository.BatchRepository,
	stockIn *entity.StockIn,
	now time.Time,
) ([]*entity.Batch, error) {
	batches := make([]*entity.Batch, 0, len(stockIn.Items))
	for _, it := range stockIn.Items {
		ing, err := ingRepo.GetForUpdate(ctx, it.IngredientID)
		if err != nil {
			return nil, err
		}
		if ing == nil || ing.IsDeleted() {
			return nil, domain.ErrNotFound
		}

		qty, err := unit.Convert(it.Quantity, it.Unit, ing.Unit)
		if err != nil {
			return nil, err
		}

		batch := &entity.Batch{
			ID:               uuid.New().String(),
			IngredientID:     ing.ID,
			BatchNumber:      DeriveBatchNumber(stockIn.BatchNumber, ing.Name),
			OriginalQuantity: qty,
			CurrentQuantity:  qty,
			Unit:             ing.Unit,
			StockInDate:      now,
			ExpirationDate:   it.ExpirationDate,
			Status:           entity.BatchStatusActive,
			Snapshot:         ing.Snapshot(),
			StockInID:        stockIn.ID,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := batchRepo.Create(ctx, batch); err != nil {
			return nil, err
		}

		ing.IncrementQuantity(qty, now)
		if err := ingRepo.Update(ctx, ing); err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// DeriveBatchNumber construye el número de lote hijo:
// {padre}-{prefijo del ingrediente}-{sufijo aleatorio de 4 dígitos}.
func DeriveBatchNumber(parent, ingredientName string) string {
	return fmt.Sprintf("%s-%s-%04d", parent, ingredientPrefix(ingredientName), rand.Intn(10000))
}

// ingredientPrefix primeras tres letras del nombre en mayúsculas (solo
// letras/dígitos); "ING" si el nombre no aporta caracteres útiles.
func ingredientPrefix(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			if b.Len() >= 3 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "ING"
	}
	return b.String()
}
