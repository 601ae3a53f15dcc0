// Package unit implementa el servicio de conversión de unidades del inventario.
//
// Las unidades son una enumeración cerrada (Kind); los strings de entrada se
// validan y resuelven contra la tabla de alias en la frontera (Parse), nunca
// dentro de la lógica de conversión. La tabla de factores cubre pares directos
// dentro de cada familia (volumen, peso, conteo); si no hay entrada directa se
// intenta el recíproco. No hay conversión multi-salto: gramos→cl falla aunque
// ambas familias tengan unidad base — limitación conocida que se conserva.
package unit

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind enumeración cerrada de unidades soportadas.
type Kind int

const (
	KindUnknown Kind = iota
	Milliliter
	Centiliter
	Liter
	Gram
	Kilogram
	Piece
)

// String devuelve el token canónico de la unidad.
func (k Kind) String() string {
	switch k {
	case Milliliter:
		return "ml"
	case Centiliter:
		return "cl"
	case Liter:
		return "l"
	case Gram:
		return "g"
	case Kilogram:
		return "kg"
	case Piece:
		return "pcs"
	default:
		return "?"
	}
}

// aliases mapea cada escritura aceptada (en minúsculas) a su Kind.
// El café registra unidades a mano, así que se aceptan variantes en español.
var aliases = map[string]Kind{
	"ml": Milliliter, "mililitro": Milliliter, "mililitros": Milliliter, "milliliter": Milliliter, "milliliters": Milliliter,
	"cl": Centiliter, "centilitro": Centiliter, "centilitros": Centiliter, "centiliter": Centiliter,
	"l": Liter, "lt": Liter, "litro": Liter, "litros": Liter, "liter": Liter, "liters": Liter,
	"g": Gram, "gr": Gram, "gramo": Gram, "gramos": Gram, "gram": Gram, "grams": Gram,
	"kg": Kilogram, "kilo": Kilogram, "kilos": Kilogram, "kilogramo": Kilogram, "kilogramos": Kilogram, "kilogram": Kilogram, "kilograms": Kilogram,
	"pcs": Piece, "pieza": Piece, "piezas": Piece, "unidad": Piece, "unidades": Piece, "uds": Piece, "pieces": Piece, "piece": Piece,
}

// factors tabla de factores directos: value[from] * factor = value[to].
// Solo pares dentro de la misma familia; el recíproco se intenta en Convert.
var factors = map[[2]Kind]decimal.Decimal{
	{Milliliter, Liter}:      decimal.NewFromFloat(0.001),
	{Milliliter, Centiliter}: decimal.NewFromFloat(0.1),
	{Centiliter, Liter}:      decimal.NewFromFloat(0.01),
	{Gram, Kilogram}:         decimal.NewFromFloat(0.001),
}

// UnsupportedConversionError par de unidades sin factor conocido. From y To
// conservan los strings de entrada tal cual los recibió Convert.
type UnsupportedConversionError struct {
	From string
	To   string
}

func (e *UnsupportedConversionError) Error() string {
	return fmt.Sprintf("conversión no soportada: %q → %q", e.From, e.To)
}

// Parse resuelve un string de unidad (insensible a mayúsculas y espacios) a su
// Kind. Strings desconocidos se rechazan aquí, en la frontera.
func Parse(s string) (Kind, error) {
	k, ok := aliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return KindUnknown, fmt.Errorf("unidad desconocida: %q", s)
	}
	return k, nil
}

// Convert convierte value de la unidad from a la unidad to.
// Si from == to (insensible a mayúsculas) devuelve value sin tocar, incluso si
// el string no está en la tabla: un ingrediente legado puede tener una unidad
// libre y aun así operar en su propia unidad canónica.
func Convert(value decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if strings.EqualFold(strings.TrimSpace(from), strings.TrimSpace(to)) {
		return value, nil
	}
	fromKind, errFrom := Parse(from)
	toKind, errTo := Parse(to)
	if errFrom != nil || errTo != nil {
		return decimal.Zero, &UnsupportedConversionError{From: from, To: to}
	}
	if fromKind == toKind {
		return value, nil
	}
	if f, ok := factors[[2]Kind{fromKind, toKind}]; ok {
		return value.Mul(f), nil
	}
	if f, ok := factors[[2]Kind{toKind, fromKind}]; ok {
		return value.Div(f), nil
	}
	return decimal.Zero, &UnsupportedConversionError{From: from, To: to}
}
