package unit_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cafe-stock-api/internal/domain/unit"
)

// ──────────────────────────────────────────────────────────────────────────────
// Conversiones directas, recíprocas y casos frontera del servicio de unidades.
// La tabla de factores solo tiene pares directos dentro de cada familia; el
// recíproco se deriva dividiendo, y no existe conversión multi-salto.
// ──────────────────────────────────────────────────────────────────────────────

func TestConvert_FactorDirecto(t *testing.T) {
	// ml → l usa el factor directo 0.001
	got, err := unit.Convert(decimal.NewFromInt(250), "ml", "l")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(0.25).Equal(got), "250 ml deben ser 0.25 l, got %s", got)
}

func TestConvert_Reciproco(t *testing.T) {
	// kg → g no está en la tabla: se deriva del recíproco de g → kg (0.001)
	got, err := unit.Convert(decimal.NewFromInt(2), "kg", "g")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2000).Equal(got), "2 kg deben ser 2000 g, got %s", got)
}

func TestConvert_IdaYVuelta(t *testing.T) {
	// l → ml → l devuelve el valor original exacto (decimal, sin flotantes)
	original := decimal.NewFromFloat(1.5)
	ml, err := unit.Convert(original, "l", "ml")
	require.NoError(t, err)
	back, err := unit.Convert(ml, "ml", "l")
	require.NoError(t, err)
	assert.True(t, original.Equal(back), "ida y vuelta debe ser exacta: %s vs %s", original, back)
}

func TestConvert_MismaUnidad(t *testing.T) {
	v := decimal.NewFromInt(42)

	got, err := unit.Convert(v, "g", "g")
	require.NoError(t, err)
	assert.True(t, v.Equal(got))

	// Insensible a mayúsculas y espacios
	got, err = unit.Convert(v, " ML ", "ml")
	require.NoError(t, err)
	assert.True(t, v.Equal(got))
}

func TestConvert_MismaUnidadDesconocida(t *testing.T) {
	// Un ingrediente legado puede tener una unidad libre ("bolsa"); mientras se
	// opere en esa misma unidad, la conversión identidad no falla.
	v := decimal.NewFromInt(3)
	got, err := unit.Convert(v, "bolsa", "bolsa")
	require.NoError(t, err)
	assert.True(t, v.Equal(got))
}

func TestConvert_Alias(t *testing.T) {
	// "litros" y "gr" resuelven por la tabla de alias en la frontera
	got, err := unit.Convert(decimal.NewFromInt(1), "litros", "ml")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(got))

	got, err = unit.Convert(decimal.NewFromInt(500), "gr", "kilos")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(0.5).Equal(got))
}

func TestConvert_FamiliasDistintas(t *testing.T) {
	// Peso → volumen no tiene factor ni recíproco: falla con el error tipado
	_, err := unit.Convert(decimal.NewFromInt(1), "kg", "l")
	require.Error(t, err)

	var convErr *unit.UnsupportedConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "kg", convErr.From)
	assert.Equal(t, "l", convErr.To)
}

func TestConvert_SinMultiSalto(t *testing.T) {
	// g → cl: ambas familias tienen unidad base pero no hay salto compuesto
	_, err := unit.Convert(decimal.NewFromInt(100), "g", "cl")
	var convErr *unit.UnsupportedConversionError
	require.ErrorAs(t, err, &convErr)
}

func TestConvert_UnidadDesconocida(t *testing.T) {
	_, err := unit.Convert(decimal.NewFromInt(1), "galones", "l")
	var convErr *unit.UnsupportedConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "galones", convErr.From)
}

func TestParse(t *testing.T) {
	k, err := unit.Parse("  Kilogramos ")
	require.NoError(t, err)
	assert.Equal(t, unit.Kilogram, k)
	assert.Equal(t, "kg", k.String())

	_, err = unit.Parse("onzas")
	assert.Error(t, err)
}
