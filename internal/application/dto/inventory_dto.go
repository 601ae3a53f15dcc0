package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockInRequest body para POST /api/inventory/stock-in.
// Cada item genera exactamente un lote.
type StockInRequest struct {
	BatchNumber string           `json:"batch_number"` // número padre del ingreso
	Supplier    string           `json:"supplier,omitempty"`
	Items       []StockInItemDTO `json:"items"`
}

// StockInItemDTO línea de un ingreso de stock.
type StockInItemDTO struct {
	IngredientID   string          `json:"ingredient_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
	ExpirationDate *time.Time      `json:"expiration_date,omitempty"`
}

// DeductionRequest body para POST /api/inventory/deductions (ventas y consumos).
type DeductionRequest struct {
	IngredientID string          `json:"ingredient_id"`
	Amount       decimal.Decimal `json:"amount"`
	Unit         string          `json:"unit"`
	Reason       string          `json:"reason"`
}

// DeductionDetailDTO línea por lote tocado en una deducción FIFO.
type DeductionDetailDTO struct {
	BatchNumber    string          `json:"batch_number"`
	Deducted       decimal.Decimal `json:"deducted"`
	Remaining      decimal.Decimal `json:"remaining"`
	ExpirationDate *time.Time      `json:"expiration_date,omitempty"`
}

// DeductionResponse resultado de una deducción.
type DeductionResponse struct {
	TotalDeducted  decimal.Decimal      `json:"total_deducted"`
	RemainingStock decimal.Decimal      `json:"remaining_stock"`
	LegacyFallback bool                 `json:"legacy_fallback"` // true si no había lotes y se dedujo del agregado
	Details        []DeductionDetailDTO `json:"details"`
}

// SpoilageItemRequest línea de merma manual.
type SpoilageItemRequest struct {
	IngredientID string          `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	Reason       string          `json:"reason"`
}

// SpoilageRequest body para POST /api/inventory/spoilage.
type SpoilageRequest struct {
	Items []SpoilageItemRequest `json:"items"`
}

// SpoilageItemDTO línea de un registro de merma tal como la ve la API.
type SpoilageItemDTO struct {
	IngredientID   string          `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	BatchID        *string         `json:"batch_id,omitempty"`
	BatchNumber    string          `json:"batch_number,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
	Reason         string          `json:"reason"`
}

// SpoilageRecordDTO registro de merma completo.
type SpoilageRecordDTO struct {
	ID         string            `json:"id"`
	Items      []SpoilageItemDTO `json:"items"`
	TotalWaste decimal.Decimal   `json:"total_waste"`
	Auto       bool              `json:"auto"`
	CreatedBy  string            `json:"created_by"`
	CreatedAt  time.Time         `json:"created_at"`
}

// BatchDTO representación de un lote para la API.
type BatchDTO struct {
	ID               string          `json:"id"`
	IngredientID     string          `json:"ingredient_id"`
	IngredientName   string          `json:"ingredient_name"` // del snapshot, sobrevive a ediciones
	BatchNumber      string          `json:"batch_number"`
	OriginalQuantity decimal.Decimal `json:"original_quantity"`
	CurrentQuantity  decimal.Decimal `json:"current_quantity"`
	Unit             string          `json:"unit"`
	StockInDate      time.Time       `json:"stock_in_date"`
	ExpirationDate   *time.Time      `json:"expiration_date,omitempty"`
	Status           string          `json:"status"`
}

// ProcessExpiredResponse resultado de una corrida del job de caducados.
type ProcessExpiredResponse struct {
	ProcessedBatches   int      `json:"processed_batches"`
	SpoilageRecords    int      `json:"spoilage_records"`
	ExpiredIngredients []string `json:"expired_ingredients"`
}
