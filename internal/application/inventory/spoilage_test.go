package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cafe-stock-api/internal/application/dto"
	"github.com/jhoicas/cafe-stock-api/internal/application/inventory"
	"github.com/jhoicas/cafe-stock-api/internal/domain"
	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
	"github.com/jhoicas/cafe-stock-api/internal/testutil/memrepo"
	"github.com/jhoicas/cafe-stock-api/pkg/logger"
)

func TestRegisterSpoilage_DeduceFIFOYRegistra(t *testing.T) {
	store := memrepo.NewStore()
	seedMilk(t, store)
	uc := inventory.NewSpoilageUseCase(store.TxRunner(), logger.Nop())

	rec, err := uc.RegisterSpoilage(context.Background(), "user-1", dto.SpoilageRequest{
		Items: []dto.SpoilageItemRequest{
			{IngredientID: "milk", Quantity: decimal.NewFromInt(300), Unit: "ml", Reason: entity.SpoilageReasonWaste},
		},
	})
	require.NoError(t, err)

	assert.False(t, rec.Auto)
	assert.Equal(t, "user-1", rec.CreatedBy)
	assert.True(t, decimal.NewFromInt(300).Equal(rec.TotalWaste))
	require.Len(t, rec.Items, 1)

	// La línea referencia el lote más viejo tocado
	item := rec.Items[0]
	require.NotNil(t, item.BatchID)
	assert.Equal(t, "b1", *item.BatchID)
	assert.Equal(t, "L-001-LEC-0001", item.BatchNumber)
	assert.Equal(t, "Leche entera", item.Snapshot.Name)

	// Y la deducción realmente salió de los lotes
	assert.True(t, decimal.NewFromInt(700).Equal(store.Batch("b1").CurrentQuantity))
	assert.True(t, decimal.NewFromInt(1200).Equal(store.Ingredient("milk").Quantity))

	require.Len(t, store.Spoilages(), 1)
}

func TestRegisterSpoilage_SinLotesUsaFallback(t *testing.T) {
	store := memrepo.NewStore()
	store.SeedIngredient(&entity.Ingredient{
		ID: "sugar", Name: "Azúcar", Quantity: decimal.NewFromInt(500), Unit: "g",
	})
	uc := inventory.NewSpoilageUseCase(store.TxRunner(), logger.Nop())

	rec, err := uc.RegisterSpoilage(context.Background(), "user-1", dto.SpoilageRequest{
		Items: []dto.SpoilageItemRequest{
			{IngredientID: "sugar", Quantity: decimal.NewFromInt(100), Unit: "g", Reason: entity.SpoilageReasonDamaged},
		},
	})
	require.NoError(t, err)

	// Modo legado: sin lote de referencia
	require.Len(t, rec.Items, 1)
	assert.Nil(t, rec.Items[0].BatchID)
	assert.Empty(t, rec.Items[0].BatchNumber)
	assert.True(t, decimal.NewFromInt(400).Equal(store.Ingredient("sugar").Quantity))
}

func TestDeleteSpoilage_RestauraSoloAlAgregado(t *testing.T) {
	store := memrepo.NewStore()
	seedMilk(t, store)
	uc := inventory.NewSpoilageUseCase(store.TxRunner(), logger.Nop())

	rec, err := uc.RegisterSpoilage(context.Background(), "user-1", dto.SpoilageRequest{
		Items: []dto.SpoilageItemRequest{
			{IngredientID: "milk", Quantity: decimal.NewFromInt(400), Unit: "ml", Reason: entity.SpoilageReasonWaste},
		},
	})
	require.NoError(t, err)
	b1AfterSpoilage := store.Batch("b1").CurrentQuantity // 600

	require.NoError(t, uc.DeleteSpoilage(context.Background(), rec.ID))

	// Restauración asimétrica: el agregado vuelve a 1500, el lote queda en 600
	assert.True(t, decimal.NewFromInt(1500).Equal(store.Ingredient("milk").Quantity))
	assert.True(t, b1AfterSpoilage.Equal(store.Batch("b1").CurrentQuantity),
		"la cantidad no vuelve al lote de origen")
	assert.Empty(t, store.Spoilages())
}

func TestDeleteSpoilage_AutomaticaNoSeElimina(t *testing.T) {
	store := memrepo.NewStore()
	auto := &entity.SpoilageRecord{
		ID:        "auto-1",
		Auto:      true,
		CreatedBy: entity.SystemActorID,
		CreatedAt: time.Now(),
		Items: []entity.SpoilageItem{
			{IngredientID: "milk", Quantity: decimal.NewFromInt(100), Unit: "ml", Reason: entity.SpoilageReasonExpired},
		},
	}
	auto.ComputeTotal()
	require.NoError(t, store.SpoilageRepo().Create(context.Background(), auto))

	uc := inventory.NewSpoilageUseCase(store.TxRunner(), logger.Nop())

	err := uc.DeleteSpoilage(context.Background(), "auto-1")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Len(t, store.Spoilages(), 1, "el registro automático se conserva")
}

func TestDeleteSpoilage_IngredienteEliminadoSeOmite(t *testing.T) {
	store := memrepo.NewStore()
	seedMilk(t, store)
	uc := inventory.NewSpoilageUseCase(store.TxRunner(), logger.Nop())

	rec, err := uc.RegisterSpoilage(context.Background(), "user-1", dto.SpoilageRequest{
		Items: []dto.SpoilageItemRequest{
			{IngredientID: "milk", Quantity: decimal.NewFromInt(200), Unit: "ml", Reason: entity.SpoilageReasonWaste},
		},
	})
	require.NoError(t, err)

	require.NoError(t, store.IngredientRepo().SoftDelete(context.Background(), "milk"))

	// No hay agregado al que devolver: el borrado igual procede
	require.NoError(t, uc.DeleteSpoilage(context.Background(), rec.ID))
	assert.Empty(t, store.Spoilages())
}

func TestDeleteSpoilage_Inexistente(t *testing.T) {
	store := memrepo.NewStore()
	uc := inventory.NewSpoilageUseCase(store.TxRunner(), logger.Nop())
	assert.ErrorIs(t, uc.DeleteSpoilage(context.Background(), "ghost"), domain.ErrNotFound)
}
