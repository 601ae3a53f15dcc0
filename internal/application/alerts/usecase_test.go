package alerts_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cafe-stock-api/internal/application/alerts"
	"github.com/jhoicas/cafe-stock-api/internal/domain"
	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
	"github.com/jhoicas/cafe-stock-api/internal/testutil/memrepo"
	"github.com/jhoicas/cafe-stock-api/pkg/logger"
)

func newAlertsUseCase(store *memrepo.Store) *alerts.UseCase {
	return alerts.NewUseCase(
		store.UserRepo(), store.IngredientRepo(), store.BatchRepo(), store.NotificationRepo(),
		logger.Nop(),
	)
}

func seedUsers(store *memrepo.Store) {
	store.SeedUser(&entity.User{ID: "u1", Email: "ana@cafe.test", Name: "Ana", Role: entity.RoleAdmin, Status: entity.UserStatusActive})
	store.SeedUser(&entity.User{ID: "u2", Email: "beto@cafe.test", Name: "Beto", Role: entity.RoleBarista, Status: entity.UserStatusActive})
	store.SeedUser(&entity.User{ID: "u3", Email: "ex@cafe.test", Name: "Ex", Role: entity.RoleBarista, Status: entity.UserStatusInactive})
}

func findByType(notifs []*entity.Notification, typ string) []*entity.Notification {
	var out []*entity.Notification
	for _, n := range notifs {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func TestGenerate_StockBajoYSinStock(t *testing.T) {
	store := memrepo.NewStore()
	seedUsers(store)
	store.SeedIngredient(&entity.Ingredient{
		ID: "milk", Name: "Leche entera", Quantity: decimal.NewFromInt(200), Unit: "ml",
		AlertThreshold: decimal.NewFromInt(500),
	})
	store.SeedIngredient(&entity.Ingredient{
		ID: "coffee", Name: "Café en grano", Quantity: decimal.Zero, Unit: "g",
		AlertThreshold: decimal.NewFromInt(100),
	})
	store.SeedIngredient(&entity.Ingredient{
		ID: "sugar", Name: "Azúcar", Quantity: decimal.NewFromInt(5000), Unit: "g",
		AlertThreshold: decimal.NewFromInt(100),
	})
	uc := newAlertsUseCase(store)

	created, err := uc.Generate(context.Background())
	require.NoError(t, err)

	// 2 usuarios activos × (1 low_stock + 1 out_of_stock); el inactivo y el
	// ingrediente con stock sano no generan nada
	assert.Len(t, created, 4)
	low := findByType(created, entity.NotificationLowStock)
	require.Len(t, low, 2)
	out := findByType(created, entity.NotificationOutOfStock)
	require.Len(t, out, 2)

	for _, n := range out {
		assert.Equal(t, entity.PriorityCritical, n.Priority)
		assert.Equal(t, "coffee", n.IngredientID)
		assert.Nil(t, n.BatchID, "alerta a nivel de ingrediente")
	}
	for _, n := range low {
		// 200 > 5: medium, no high
		assert.Equal(t, entity.PriorityMedium, n.Priority)
	}
}

func TestGenerate_PrioridadHighConStockMinimo(t *testing.T) {
	store := memrepo.NewStore()
	store.SeedUser(&entity.User{ID: "u1", Email: "a@b.c", Status: entity.UserStatusActive})
	store.SeedIngredient(&entity.Ingredient{
		ID: "vanilla", Name: "Esencia de vainilla", Quantity: decimal.NewFromInt(3), Unit: "ml",
		AlertThreshold: decimal.NewFromInt(50),
	})
	uc := newAlertsUseCase(store)

	created, err := uc.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, entity.NotificationLowStock, created[0].Type)
	assert.Equal(t, entity.PriorityHigh, created[0].Priority)
}

func TestGenerate_CaducidadPorLote(t *testing.T) {
	store := memrepo.NewStore()
	store.SeedUser(&entity.User{ID: "u1", Email: "a@b.c", Status: entity.UserStatusActive})
	store.SeedIngredient(&entity.Ingredient{
		ID: "milk", Name: "Leche entera", Quantity: decimal.NewFromInt(600), Unit: "ml",
		AlertThreshold: decimal.NewFromInt(10),
	})

	now := time.Now()
	tomorrow := now.Add(30 * time.Hour)   // ≤1 día completo → critical
	in3days := now.Add(78 * time.Hour)    // 3 días → medium
	yesterday := now.Add(-24 * time.Hour) // vencido

	store.SeedBatch(&entity.Batch{
		ID: "b1", IngredientID: "milk", BatchNumber: "L-001-LEC-0001",
		OriginalQuantity: decimal.NewFromInt(200), CurrentQuantity: decimal.NewFromInt(200),
		Unit: "ml", StockInDate: now.AddDate(0, 0, -5), CreatedAt: now.AddDate(0, 0, -5),
		ExpirationDate: &tomorrow, Status: entity.BatchStatusActive,
		Snapshot: entity.IngredientSnapshot{Name: "Leche entera", Unit: "ml"},
	})
	store.SeedBatch(&entity.Batch{
		ID: "b2", IngredientID: "milk", BatchNumber: "L-002-LEC-0001",
		OriginalQuantity: decimal.NewFromInt(200), CurrentQuantity: decimal.NewFromInt(200),
		Unit: "ml", StockInDate: now.AddDate(0, 0, -4), CreatedAt: now.AddDate(0, 0, -4),
		ExpirationDate: &in3days, Status: entity.BatchStatusActive,
		Snapshot: entity.IngredientSnapshot{Name: "Leche entera", Unit: "ml"},
	})
	store.SeedBatch(&entity.Batch{
		ID: "b3", IngredientID: "milk", BatchNumber: "L-003-LEC-0001",
		OriginalQuantity: decimal.NewFromInt(200), CurrentQuantity: decimal.NewFromInt(200),
		Unit: "ml", StockInDate: now.AddDate(0, 0, -10), CreatedAt: now.AddDate(0, 0, -10),
		ExpirationDate: &yesterday, Status: entity.BatchStatusActive,
		Snapshot: entity.IngredientSnapshot{Name: "Leche entera", Unit: "ml"},
	})
	uc := newAlertsUseCase(store)

	created, err := uc.Generate(context.Background())
	require.NoError(t, err)

	expiring := findByType(created, entity.NotificationExpiring)
	require.Len(t, expiring, 2)
	prioByBatch := map[string]string{}
	for _, n := range expiring {
		require.NotNil(t, n.BatchID)
		prioByBatch[*n.BatchID] = n.Priority
	}
	assert.Equal(t, entity.PriorityCritical, prioByBatch["b1"])
	assert.Equal(t, entity.PriorityMedium, prioByBatch["b2"])

	expired := findByType(created, entity.NotificationExpired)
	require.Len(t, expired, 1)
	assert.Equal(t, entity.PriorityCritical, expired[0].Priority)
	require.NotNil(t, expired[0].BatchID)
	assert.Equal(t, "b3", *expired[0].BatchID)

	// Efecto lateral del generador: el lote vencido queda expired con su
	// cantidad intacta (el vaciado es del job)
	b3 := store.Batch("b3")
	assert.Equal(t, entity.BatchStatusExpired, b3.Status)
	assert.True(t, decimal.NewFromInt(200).Equal(b3.CurrentQuantity))
}

func TestGenerate_DobleCorridasSinDuplicados(t *testing.T) {
	store := memrepo.NewStore()
	seedUsers(store)
	store.SeedIngredient(&entity.Ingredient{
		ID: "coffee", Name: "Café en grano", Quantity: decimal.Zero, Unit: "g",
		AlertThreshold: decimal.NewFromInt(100),
	})
	uc := newAlertsUseCase(store)

	first, err := uc.Generate(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := uc.Generate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second, "el mismo estado no debe crear notificaciones nuevas")
	assert.Len(t, store.OpenNotifications(), len(first))
}

func TestGenerate_LimpiaResueltas(t *testing.T) {
	store := memrepo.NewStore()
	store.SeedUser(&entity.User{ID: "u1", Email: "a@b.c", Status: entity.UserStatusActive})
	ing := &entity.Ingredient{
		ID: "coffee", Name: "Café en grano", Quantity: decimal.Zero, Unit: "g",
		AlertThreshold: decimal.NewFromInt(100),
	}
	store.SeedIngredient(ing)
	uc := newAlertsUseCase(store)

	_, err := uc.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, store.OpenNotifications(), 1)

	// Reponer stock: la condición desaparece y la notificación abierta se cierra
	ing.Quantity = decimal.NewFromInt(5000)
	store.SeedIngredient(ing)

	created, err := uc.Generate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, store.OpenNotifications(), "la alerta resuelta debe quedar atendida")
}

func TestGenerate_FechaPlanaLegada(t *testing.T) {
	// Ingrediente sin lotes con fecha de caducidad plana: alerta de vencido a
	// nivel de ingrediente (BatchID nil)
	store := memrepo.NewStore()
	store.SeedUser(&entity.User{ID: "u1", Email: "a@b.c", Status: entity.UserStatusActive})
	yesterday := time.Now().Add(-24 * time.Hour)
	store.SeedIngredient(&entity.Ingredient{
		ID: "syrup", Name: "Jarabe de caramelo", Quantity: decimal.NewFromInt(300), Unit: "ml",
		AlertThreshold: decimal.NewFromInt(10), ExpirationDate: &yesterday,
	})
	uc := newAlertsUseCase(store)

	created, err := uc.Generate(context.Background())
	require.NoError(t, err)

	expired := findByType(created, entity.NotificationExpired)
	require.Len(t, expired, 1)
	assert.Nil(t, expired[0].BatchID)
}

func TestClearNotification_SoloElDuenio(t *testing.T) {
	store := memrepo.NewStore()
	n := &entity.Notification{
		ID: "n1", UserID: "u1", Type: entity.NotificationLowStock,
		Priority: entity.PriorityMedium, IngredientID: "milk", CreatedAt: time.Now(),
	}
	require.NoError(t, store.NotificationRepo().Create(context.Background(), n))
	uc := newAlertsUseCase(store)

	err := uc.ClearNotification(context.Background(), "n1", "u2")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, uc.ClearNotification(context.Background(), "n1", "u1"))
	assert.Empty(t, store.OpenNotifications())

	// Re-atender una ya atendida es no-op
	require.NoError(t, uc.ClearNotification(context.Background(), "n1", "u1"))

	assert.ErrorIs(t, uc.ClearNotification(context.Background(), "ghost", "u1"), domain.ErrNotFound)
}
