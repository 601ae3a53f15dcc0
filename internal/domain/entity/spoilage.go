package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Razones de merma.
const (
	SpoilageReasonExpired = "expired" // generada por el job de caducados
	SpoilageReasonWaste   = "waste"   // merma manual (derrame, rotura, etc.)
	SpoilageReasonDamaged = "damaged"
)

// SpoilageRecord registro de auditoría inmutable de stock desperdiciado.
// Se crea manualmente (usuario) o automáticamente (job de caducados). Nunca se
// muta después de creado, salvo la restauración de stock disparada por su
// borrado, que opera sobre el ingrediente y no sobre el registro.
type SpoilageRecord struct {
	ID         string
	Items      []SpoilageItem
	TotalWaste decimal.Decimal // Σ cantidades de los items
	Auto       bool            // true cuando lo generó el job de caducados
	CreatedBy  string          // usuario o actor de sistema
	CreatedAt  time.Time
}

// SpoilageItem línea de merma. BatchID es nil para consumo legado sin lotes.
type SpoilageItem struct {
	BatchID      *string
	BatchNumber  string // vacío en modo legado
	IngredientID string
	Snapshot     IngredientSnapshot
	Quantity     decimal.Decimal
	Unit         string
	Reason       string
}

// ComputeTotal recalcula TotalWaste desde los items.
func (s *SpoilageRecord) ComputeTotal() {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.Quantity)
	}
	s.TotalWaste = total
}
