package entity

import "time"

// Tipos de notificación de inventario.
const (
	NotificationLowStock   = "low_stock"
	NotificationOutOfStock = "out_of_stock"
	NotificationExpiring   = "expiring"
	NotificationExpired    = "expired"
)

// Prioridades de notificación.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
)

// Notification estado de alerta derivado del inventario para un usuario.
//
// La deduplicación usa la clave estructurada (UserID, IngredientID, BatchID,
// Type) persistida en el registro; el sistema anterior infería el lote
// buscando el batchNumber dentro del texto del mensaje, heurística frágil que
// aquí se reemplaza por la clave explícita.
type Notification struct {
	ID           string
	UserID       string
	Type         string
	Priority     string
	Message      string
	IngredientID string
	BatchID      *string // nil para alertas a nivel de ingrediente
	IsCleared    bool
	CreatedAt    time.Time
	ClearedAt    *time.Time
}

// DedupKey clave estructurada de deduplicación de una notificación abierta.
type DedupKey struct {
	UserID       string
	IngredientID string
	BatchID      string // vacío para alertas de ingrediente
	Type         string
}

// Key devuelve la clave de dedup del registro.
func (n *Notification) Key() DedupKey {
	batchID := ""
	if n.BatchID != nil {
		batchID = *n.BatchID
	}
	return DedupKey{
		UserID:       n.UserID,
		IngredientID: n.IngredientID,
		BatchID:      batchID,
		Type:         n.Type,
	}
}
