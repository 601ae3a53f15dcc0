package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cafe-stock-api/internal/domain"
	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
)

func newBatch(qty int64, expiration *time.Time) *entity.Batch {
	return &entity.Batch{
		ID:               "b-1",
		IngredientID:     "ing-1",
		BatchNumber:      "L-2024-001-LEC-0001",
		OriginalQuantity: decimal.NewFromInt(qty),
		CurrentQuantity:  decimal.NewFromInt(qty),
		Unit:             "ml",
		StockInDate:      time.Now(),
		ExpirationDate:   expiration,
		Status:           entity.BatchStatusActive,
	}
}

func TestBatchDeduct_Parcial(t *testing.T) {
	b := newBatch(1000, nil)
	now := time.Now()

	require.NoError(t, b.Deduct(decimal.NewFromInt(300), now))

	assert.True(t, decimal.NewFromInt(700).Equal(b.CurrentQuantity))
	assert.Equal(t, entity.BatchStatusActive, b.Status)
	assert.True(t, decimal.NewFromInt(1000).Equal(b.OriginalQuantity), "OriginalQuantity es inmutable")
}

func TestBatchDeduct_VaciadoExactoPasaADepleted(t *testing.T) {
	b := newBatch(500, nil)

	require.NoError(t, b.Deduct(decimal.NewFromInt(500), time.Now()))

	// El paso a depleted es atómico con la escritura de cantidad: nunca se
	// observa cantidad 0 con status active.
	assert.True(t, b.CurrentQuantity.IsZero())
	assert.Equal(t, entity.BatchStatusDepleted, b.Status)
}

func TestBatchDeduct_ExcesoRechazadoSinMutar(t *testing.T) {
	b := newBatch(100, nil)

	err := b.Deduct(decimal.NewFromInt(150), time.Now())

	var shortfall *domain.StockShortfallError
	require.ErrorAs(t, err, &shortfall)
	assert.True(t, shortfall.Batch)
	assert.True(t, decimal.NewFromInt(100).Equal(shortfall.Available))
	assert.True(t, decimal.NewFromInt(150).Equal(shortfall.Requested))
	assert.True(t, decimal.NewFromInt(100).Equal(b.CurrentQuantity), "el rechazo no debe mutar el lote")
	assert.Equal(t, entity.BatchStatusActive, b.Status)
}

func TestBatchRefreshStatus_VencidoSoloCambiaStatus(t *testing.T) {
	yesterday := time.Now().Add(-24 * time.Hour)
	b := newBatch(200, &yesterday)

	changed := b.RefreshStatus(time.Now())

	require.True(t, changed)
	assert.Equal(t, entity.BatchStatusExpired, b.Status)
	// La cantidad la vacía solo el job de reconciliación, que además registra
	// la merma.
	assert.True(t, decimal.NewFromInt(200).Equal(b.CurrentQuantity))

	// Segunda evaluación: sin cambio
	assert.False(t, b.RefreshStatus(time.Now()))
}

func TestBatchRefreshStatus_SinCaducidadNuncaVence(t *testing.T) {
	b := newBatch(200, nil)
	assert.False(t, b.RefreshStatus(time.Now().AddDate(10, 0, 0)))
	assert.Equal(t, entity.BatchStatusActive, b.Status)
}

func TestBatchMarkExpired_VaciaYMarca(t *testing.T) {
	yesterday := time.Now().Add(-24 * time.Hour)
	b := newBatch(350, &yesterday)

	b.MarkExpired(time.Now())

	assert.Equal(t, entity.BatchStatusExpired, b.Status)
	assert.True(t, b.CurrentQuantity.IsZero())
}

func TestBatchDaysUntilExpiry(t *testing.T) {
	now := time.Now()

	in3days := now.Add(72*time.Hour + time.Minute)
	b := newBatch(10, &in3days)
	days, ok := b.DaysUntilExpiry(now)
	require.True(t, ok)
	assert.Equal(t, 3, days)

	b = newBatch(10, nil)
	_, ok = b.DaysUntilExpiry(now)
	assert.False(t, ok)
}
