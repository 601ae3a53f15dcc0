package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockIn representa un ingreso de stock (recepción de mercancía). Cada línea
// genera exactamente un Batch con número derivado del BatchNumber padre.
type StockIn struct {
	ID          string
	BatchNumber string // número padre, único global
	Supplier    string
	Items       []StockInItem
	CreatedBy   string
	CreatedAt   time.Time
}

// StockInItem línea de un ingreso de stock.
type StockInItem struct {
	IngredientID   string
	Quantity       decimal.Decimal
	Unit           string
	ExpirationDate *time.Time // nil => el lote nunca caduca
}
