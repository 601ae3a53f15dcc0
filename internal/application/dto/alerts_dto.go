package dto

import "time"

// NotificationDTO notificación de inventario para la API.
type NotificationDTO struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`     // low_stock, out_of_stock, expiring, expired
	Priority     string    `json:"priority"` // critical, high, medium
	Message      string    `json:"message"`
	IngredientID string    `json:"ingredient_id"`
	BatchID      *string   `json:"batch_id,omitempty"`
	IsCleared    bool      `json:"is_cleared"`
	CreatedAt    time.Time `json:"created_at"`
}
