package expiration_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cafe-stock-api/internal/application/expiration"
	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
	"github.com/jhoicas/cafe-stock-api/internal/testutil/memrepo"
	"github.com/jhoicas/cafe-stock-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Job de reconciliación de caducados: agrupa por ingrediente, una merma
// automática por grupo, lotes a expired/0, agregado decrementado. Idempotente.
// ──────────────────────────────────────────────────────────────────────────────

func seedExpiredScenario(t *testing.T, store *memrepo.Store) {
	t.Helper()
	base := time.Now().AddDate(0, 0, -20)
	yesterday := time.Now().Add(-24 * time.Hour)
	nextWeek := time.Now().AddDate(0, 0, 7)

	store.SeedIngredient(&entity.Ingredient{
		ID: "milk", Name: "Leche entera", Quantity: decimal.NewFromInt(900), Unit: "ml",
	})
	store.SeedIngredient(&entity.Ingredient{
		ID: "cream", Name: "Crema de leche", Quantity: decimal.NewFromInt(250), Unit: "ml",
	})

	// Dos lotes vencidos de leche, uno vigente
	store.SeedBatch(&entity.Batch{
		ID: "m1", IngredientID: "milk", BatchNumber: "L-001-LEC-0001",
		OriginalQuantity: decimal.NewFromInt(500), CurrentQuantity: decimal.NewFromInt(300),
		Unit: "ml", StockInDate: base, CreatedAt: base,
		ExpirationDate: &yesterday, Status: entity.BatchStatusActive,
		Snapshot: entity.IngredientSnapshot{Name: "Leche entera", Unit: "ml"},
	})
	store.SeedBatch(&entity.Batch{
		ID: "m2", IngredientID: "milk", BatchNumber: "L-002-LEC-0001",
		OriginalQuantity: decimal.NewFromInt(200), CurrentQuantity: decimal.NewFromInt(200),
		Unit: "ml", StockInDate: base.AddDate(0, 0, 1), CreatedAt: base.AddDate(0, 0, 1),
		ExpirationDate: &yesterday, Status: entity.BatchStatusActive,
		Snapshot: entity.IngredientSnapshot{Name: "Leche entera", Unit: "ml"},
	})
	store.SeedBatch(&entity.Batch{
		ID: "m3", IngredientID: "milk", BatchNumber: "L-003-LEC-0001",
		OriginalQuantity: decimal.NewFromInt(400), CurrentQuantity: decimal.NewFromInt(400),
		Unit: "ml", StockInDate: base.AddDate(0, 0, 2), CreatedAt: base.AddDate(0, 0, 2),
		ExpirationDate: &nextWeek, Status: entity.BatchStatusActive,
		Snapshot: entity.IngredientSnapshot{Name: "Leche entera", Unit: "ml"},
	})

	// Un lote vencido de crema
	store.SeedBatch(&entity.Batch{
		ID: "c1", IngredientID: "cream", BatchNumber: "L-001-CRE-0001",
		OriginalQuantity: decimal.NewFromInt(250), CurrentQuantity: decimal.NewFromInt(250),
		Unit: "ml", StockInDate: base, CreatedAt: base,
		ExpirationDate: &yesterday, Status: entity.BatchStatusActive,
		Snapshot: entity.IngredientSnapshot{Name: "Crema de leche", Unit: "ml"},
	})
}

func TestProcessExpiredBatches_AgrupaPorIngrediente(t *testing.T) {
	store := memrepo.NewStore()
	seedExpiredScenario(t, store)
	uc := expiration.NewUseCase(store.TxRunner(), logger.Nop())

	res, err := uc.ProcessExpiredBatches(context.Background(), entity.SystemActorID)
	require.NoError(t, err)

	assert.Equal(t, 3, res.ProcessedBatches)
	assert.Equal(t, 2, res.SpoilageRecords, "una merma por ingrediente, no por lote")
	// Orden determinista de ingredientes (por ID: cream < milk)
	assert.Equal(t, []string{"Crema de leche", "Leche entera"}, res.ExpiredIngredients)

	// Lotes vencidos: expired y vacíos; el vigente, intacto
	for _, id := range []string{"m1", "m2", "c1"} {
		b := store.Batch(id)
		assert.Equal(t, entity.BatchStatusExpired, b.Status, "lote %s", id)
		assert.True(t, b.CurrentQuantity.IsZero(), "lote %s debe quedar vacío", id)
	}
	m3 := store.Batch("m3")
	assert.Equal(t, entity.BatchStatusActive, m3.Status)
	assert.True(t, decimal.NewFromInt(400).Equal(m3.CurrentQuantity))

	// Agregados: leche 900 - (300+200) = 400; crema 250 - 250 = 0
	assert.True(t, decimal.NewFromInt(400).Equal(store.Ingredient("milk").Quantity))
	assert.True(t, store.Ingredient("cream").Quantity.IsZero())

	// Mermas automáticas atribuidas al actor de sistema
	records := store.Spoilages()
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.True(t, rec.Auto)
		assert.Equal(t, entity.SystemActorID, rec.CreatedBy)
		for _, it := range rec.Items {
			assert.Equal(t, entity.SpoilageReasonExpired, it.Reason)
			assert.NotNil(t, it.BatchID)
		}
	}
}

func TestProcessExpiredBatches_Idempotente(t *testing.T) {
	store := memrepo.NewStore()
	seedExpiredScenario(t, store)
	uc := expiration.NewUseCase(store.TxRunner(), logger.Nop())

	_, err := uc.ProcessExpiredBatches(context.Background(), entity.SystemActorID)
	require.NoError(t, err)

	// Segunda corrida sobre el mismo estado: los lotes ya vaciados no vuelven
	// a coincidir con la consulta
	res, err := uc.ProcessExpiredBatches(context.Background(), entity.SystemActorID)
	require.NoError(t, err)

	assert.Zero(t, res.ProcessedBatches)
	assert.Zero(t, res.SpoilageRecords)
	assert.Len(t, store.Spoilages(), 2, "sin mermas duplicadas")
	assert.True(t, decimal.NewFromInt(400).Equal(store.Ingredient("milk").Quantity))
}

func TestProcessExpiredBatches_RecogeMarcadosPorAlertas(t *testing.T) {
	// El generador de alertas pudo haber marcado el lote expired (sin vaciarlo)
	// antes de que corra el job: el job igual lo procesa.
	store := memrepo.NewStore()
	yesterday := time.Now().Add(-24 * time.Hour)
	store.SeedIngredient(&entity.Ingredient{
		ID: "milk", Name: "Leche entera", Quantity: decimal.NewFromInt(100), Unit: "ml",
	})
	store.SeedBatch(&entity.Batch{
		ID: "m1", IngredientID: "milk", BatchNumber: "L-001-LEC-0001",
		OriginalQuantity: decimal.NewFromInt(100), CurrentQuantity: decimal.NewFromInt(100),
		Unit: "ml", StockInDate: yesterday, CreatedAt: yesterday,
		ExpirationDate: &yesterday, Status: entity.BatchStatusExpired,
		Snapshot: entity.IngredientSnapshot{Name: "Leche entera", Unit: "ml"},
	})
	uc := expiration.NewUseCase(store.TxRunner(), logger.Nop())

	res, err := uc.ProcessExpiredBatches(context.Background(), entity.SystemActorID)
	require.NoError(t, err)

	assert.Equal(t, 1, res.ProcessedBatches)
	assert.True(t, store.Batch("m1").CurrentQuantity.IsZero())
	assert.True(t, store.Ingredient("milk").Quantity.IsZero())
}

func TestProcessExpiredBatches_IngredienteEliminado(t *testing.T) {
	// Ingrediente soft-deleted con lotes vivos: los lotes se vacían y la merma
	// se registra, pero no hay agregado que ajustar.
	store := memrepo.NewStore()
	seedExpiredScenario(t, store)
	require.NoError(t, store.IngredientRepo().SoftDelete(context.Background(), "cream"))
	uc := expiration.NewUseCase(store.TxRunner(), logger.Nop())

	res, err := uc.ProcessExpiredBatches(context.Background(), entity.SystemActorID)
	require.NoError(t, err)

	assert.Equal(t, 3, res.ProcessedBatches)
	assert.Equal(t, 2, res.SpoilageRecords)
	assert.Equal(t, []string{"Leche entera"}, res.ExpiredIngredients, "el eliminado no figura")
	assert.True(t, store.Batch("c1").CurrentQuantity.IsZero())
	assert.True(t, decimal.NewFromInt(250).Equal(store.Ingredient("cream").Quantity),
		"el agregado del eliminado no se toca")
}

func TestProcessExpiredBatches_SinVencidos(t *testing.T) {
	store := memrepo.NewStore()
	uc := expiration.NewUseCase(store.TxRunner(), logger.Nop())

	res, err := uc.ProcessExpiredBatches(context.Background(), entity.SystemActorID)
	require.NoError(t, err)
	assert.Zero(t, res.ProcessedBatches)
	assert.Zero(t, res.SpoilageRecords)
	assert.Empty(t, res.ExpiredIngredients)
}
