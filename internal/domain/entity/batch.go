package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cafe-stock-api/internal/domain"
)

// Estados de un lote.
const (
	BatchStatusActive   = "active"
	BatchStatusExpired  = "expired"
	BatchStatusDepleted = "depleted"
)

// Batch representa un lote discreto de un ingrediente, creado por un ingreso
// de stock. Máquina de estados: active --[deducir a 0]--> depleted;
// active --[now > ExpirationDate]--> expired. Un lote sin ExpirationDate nunca
// caduca. Los lotes son registro histórico: jamás se borran físicamente.
type Batch struct {
	ID               string
	IngredientID     string
	BatchNumber      string          // único global
	OriginalQuantity decimal.Decimal // inmutable, fijada al crear
	CurrentQuantity  decimal.Decimal // >= 0, solo decrece después de la creación
	Unit             string
	StockInDate      time.Time
	ExpirationDate   *time.Time // nil => nunca caduca
	Status           string
	Snapshot         IngredientSnapshot // identidad congelada para histórico
	StockInID        string             // ingreso de stock que lo originó
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsExpired indica si el lote está vencido respecto a now.
func (b *Batch) IsExpired(now time.Time) bool {
	if b.ExpirationDate == nil {
		return false
	}
	return now.After(*b.ExpirationDate)
}

// DaysUntilExpiry días hasta la caducidad (negativo si ya venció).
// ok es false cuando el lote no tiene fecha de caducidad.
func (b *Batch) DaysUntilExpiry(now time.Time) (days int, ok bool) {
	if b.ExpirationDate == nil {
		return 0, false
	}
	return int(b.ExpirationDate.Sub(now).Hours() / 24), true
}

// Deduct resta qty del lote. Rechaza con StockShortfallError si qty excede
// CurrentQuantity. Si la deducción vacía exactamente el lote, el paso a
// depleted ocurre en la misma operación lógica que la escritura de cantidad:
// no hay estado observable con cantidad 0 y status active.
func (b *Batch) Deduct(qty decimal.Decimal, now time.Time) error {
	if qty.GreaterThan(b.CurrentQuantity) {
		return &domain.StockShortfallError{
			Available: b.CurrentQuantity,
			Requested: qty,
			Batch:     true,
		}
	}
	b.CurrentQuantity = b.CurrentQuantity.Sub(qty)
	if b.CurrentQuantity.IsZero() {
		b.Status = BatchStatusDepleted
	}
	b.UpdatedAt = now
	return nil
}

// MarkExpired fuerza el lote a expired y pone la cantidad en cero. Lo usan el
// job de reconciliación y el generador de alertas; ambos pueden correr en
// cualquier orden sobre el mismo lote.
func (b *Batch) MarkExpired(now time.Time) {
	b.Status = BatchStatusExpired
	b.CurrentQuantity = decimal.Zero
	b.UpdatedAt = now
}

// RefreshStatus evaluación perezosa de caducidad: se invoca al cargar el lote
// para mutación. Devuelve true si el status cambió a expired. No toca la
// cantidad; vaciarla es responsabilidad del job de reconciliación, que además
// registra la merma.
func (b *Batch) RefreshStatus(now time.Time) bool {
	if b.Status == BatchStatusActive && b.IsExpired(now) {
		b.Status = BatchStatusExpired
		b.UpdatedAt = now
		return true
	}
	return false
}
