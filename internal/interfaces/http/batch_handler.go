package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cafe-stock-api/internal/application/dto"
	"github.com/jhoicas/cafe-stock-api/internal/application/expiration"
	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
	"github.com/jhoicas/cafe-stock-api/internal/domain/repository"
)

// BatchHandler consulta de lotes y disparo manual del job de caducados.
type BatchHandler struct {
	batchRepo  repository.BatchRepository
	expiration *expiration.UseCase
}

// NewBatchHandler construye el handler.
func NewBatchHandler(batchRepo repository.BatchRepository, expirationUC *expiration.UseCase) *BatchHandler {
	return &BatchHandler{batchRepo: batchRepo, expiration: expirationUC}
}

// ListByIngredient godoc
// @Summary      Lotes de un ingrediente
// @Description  Devuelve todos los lotes del ingrediente en orden FIFO, histórico incluido.
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del ingrediente"
// @Success      200  {array}   dto.BatchDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/ingredients/{id}/batches [get]
func (h *BatchHandler) ListByIngredient(c *fiber.Ctx) error {
	batches, err := h.batchRepo.ListByIngredient(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBatchDTOs(batches))
}

// ListExpiring godoc
// @Summary      Lotes próximos a caducar
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Ventana en días (default 7)"
// @Success      200  {array}   dto.BatchDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/batches/expiring [get]
func (h *BatchHandler) ListExpiring(c *fiber.Ctx) error {
	days := 7
	if q := c.Query("days"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "days debe ser un entero >= 0"})
		}
		days = n
	}
	batches, err := h.batchRepo.ListExpiringWithin(c.Context(), time.Now(), days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toBatchDTOs(batches))
}

// ProcessExpired godoc
// @Summary      Procesar lotes caducados ahora
// @Description  Corre la reconciliación de caducados fuera del horario programado:
//
//	marca lotes vencidos, pone su cantidad en cero, descuenta agregados y deja
//	el registro de merma automática.
//
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ProcessExpiredResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/process-expired [post]
func (h *BatchHandler) ProcessExpired(c *fiber.Ctx) error {
	res, err := h.expiration.ProcessExpiredBatches(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ProcessExpiredResponse{
		ProcessedBatches:   res.ProcessedBatches,
		SpoilageRecords:    res.SpoilageRecords,
		ExpiredIngredients: res.ExpiredIngredients,
	})
}

func toBatchDTOs(batches []*entity.Batch) []dto.BatchDTO {
	out := make([]dto.BatchDTO, 0, len(batches))
	for _, b := range batches {
		out = append(out, toBatchDTO(b))
	}
	return out
}
