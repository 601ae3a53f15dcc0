package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cafe-stock-api/internal/application/alerts"
	"github.com/jhoicas/cafe-stock-api/internal/application/dto"
	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
	"github.com/jhoicas/cafe-stock-api/internal/domain/repository"
)

// NotificationHandler notificaciones de inventario del usuario autenticado.
type NotificationHandler struct {
	notifRepo repository.NotificationRepository
	alerts    *alerts.UseCase
}

// NewNotificationHandler construye el handler.
func NewNotificationHandler(notifRepo repository.NotificationRepository, alertsUC *alerts.UseCase) *NotificationHandler {
	return &NotificationHandler{notifRepo: notifRepo, alerts: alertsUC}
}

// ListOpen godoc
// @Summary      Notificaciones abiertas del usuario
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.NotificationDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/notifications [get]
func (h *NotificationHandler) ListOpen(c *fiber.Ctx) error {
	notifs, err := h.notifRepo.ListOpenByUser(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.NotificationDTO, 0, len(notifs))
	for _, n := range notifs {
		out = append(out, toNotificationDTO(n))
	}
	return c.JSON(out)
}

// Generate godoc
// @Summary      Regenerar notificaciones de inventario
// @Description  Evalúa stock bajo, agotados y caducidades para todos los usuarios
//
//	activos; crea solo las alertas que faltan y cierra las ya resueltas.
//
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.NotificationDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/notifications/generate [post]
func (h *NotificationHandler) Generate(c *fiber.Ctx) error {
	created, err := h.alerts.Generate(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.NotificationDTO, 0, len(created))
	for _, n := range created {
		out = append(out, toNotificationDTO(n))
	}
	return c.JSON(out)
}

// Clear godoc
// @Summary      Marcar una notificación como atendida
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la notificación"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notifications/{id}/clear [post]
func (h *NotificationHandler) Clear(c *fiber.Ctx) error {
	if err := h.alerts.ClearNotification(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "notificación atendida"})
}

func toNotificationDTO(n *entity.Notification) dto.NotificationDTO {
	return dto.NotificationDTO{
		ID:           n.ID,
		Type:         n.Type,
		Priority:     n.Priority,
		Message:      n.Message,
		IngredientID: n.IngredientID,
		BatchID:      n.BatchID,
		IsCleared:    n.IsCleared,
		CreatedAt:    n.CreatedAt,
	}
}
