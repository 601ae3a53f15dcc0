package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin   = "admin"
	RoleBarista = "barista"
	RoleGerente = "gerente"
)

// Estados de User.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// SystemActorID actor al que se atribuyen las mermas automáticas del job de
// caducados.
const SystemActorID = "system"

// User representa un usuario del sistema. Solo los usuarios activos reciben
// notificaciones de inventario.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, gerente, barista
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive indica si el usuario debe recibir notificaciones.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
