package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cafe-stock-api/internal/application/dto"
	"github.com/jhoicas/cafe-stock-api/internal/application/inventory"
	"github.com/jhoicas/cafe-stock-api/internal/domain/entity"
)

// InventoryHandler maneja ingresos de stock, deducciones y mermas (protegido).
type InventoryHandler struct {
	stockIn  *inventory.StockInUseCase
	deduct   *inventory.DeductStockUseCase
	spoilage *inventory.SpoilageUseCase
	report   *inventory.SpoilageReportUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	stockIn *inventory.StockInUseCase,
	deduct *inventory.DeductStockUseCase,
	spoilage *inventory.SpoilageUseCase,
	report *inventory.SpoilageReportUseCase,
) *InventoryHandler {
	return &InventoryHandler{stockIn: stockIn, deduct: deduct, spoilage: spoilage, report: report}
}

// RegisterStockIn godoc
// @Summary      Registrar ingreso de stock
// @Description  Crea un lote por cada línea del ingreso y actualiza el agregado de cada ingrediente.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockInRequest  true  "batch_number, supplier, items"
// @Success      201   {array}   dto.BatchDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-in [post]
func (h *InventoryHandler) RegisterStockIn(c *fiber.Ctx) error {
	var in dto.StockInRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	batches, err := h.stockIn.RegisterStockIn(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.BatchDTO, 0, len(batches))
	for _, b := range batches {
		out = append(out, toBatchDTO(b))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RegisterDeduction godoc
// @Summary      Deducir stock (venta o consumo)
// @Description  Deduce FIFO sobre los lotes activos; si el ingrediente no tiene
//
//	lotes cae al agregado legado y la respuesta lo marca con legacy_fallback.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DeductionRequest  true  "ingredient_id, amount, unit, reason"
// @Success      200   {object}  dto.DeductionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/deductions [post]
func (h *InventoryHandler) RegisterDeduction(c *fiber.Ctx) error {
	var in dto.DeductionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.IngredientID == "" || !in.Amount.GreaterThan(decimal.Zero) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ingredient_id y amount > 0 son requeridos"})
	}
	res, err := h.deduct.Deduct(c.Context(), in.IngredientID, in.Amount, in.Unit, in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toDeductionResponse(res))
}

// RegisterSpoilage godoc
// @Summary      Registrar merma manual
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SpoilageRequest  true  "items con ingredient_id, quantity, unit, reason"
// @Success      201   {object}  dto.SpoilageRecordDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/spoilage [post]
func (h *InventoryHandler) RegisterSpoilage(c *fiber.Ctx) error {
	var in dto.SpoilageRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.spoilage.RegisterSpoilage(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSpoilageRecordDTO(rec))
}

// DeleteSpoilage godoc
// @Summary      Eliminar una merma manual
// @Description  Restaura la cantidad al agregado del ingrediente (no al lote de
//
//	origen). Las mermas automáticas del job de caducados no se pueden eliminar.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del registro de merma"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/spoilage/{id} [delete]
func (h *InventoryHandler) DeleteSpoilage(c *fiber.Ctx) error {
	if err := h.spoilage.DeleteSpoilage(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "merma eliminada y stock restaurado"})
}

// SpoilageReport godoc
// @Summary      Reporte de mermas en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        from  query  string  true   "Fecha inicial (YYYY-MM-DD)"
// @Param        to    query  string  false  "Fecha final (YYYY-MM-DD, default hoy)"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/spoilage/report [get]
func (h *InventoryHandler) SpoilageReport(c *fiber.Ctx) error {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser YYYY-MM-DD"})
	}
	to := time.Now()
	if q := c.Query("to"); q != "" {
		day, err := time.Parse("2006-01-02", q)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser YYYY-MM-DD"})
		}
		// fin del día, inclusive
		to = day.Add(24*time.Hour - time.Nanosecond)
	}
	pdfBytes, err := h.report.GenerateReport(c.Context(), from, to)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="reporte-mermas.pdf"`)
	return c.Send(pdfBytes)
}

func toBatchDTO(b *entity.Batch) dto.BatchDTO {
	return dto.BatchDTO{
		ID:               b.ID,
		IngredientID:     b.IngredientID,
		IngredientName:   b.Snapshot.Name,
		BatchNumber:      b.BatchNumber,
		OriginalQuantity: b.OriginalQuantity,
		CurrentQuantity:  b.CurrentQuantity,
		Unit:             b.Unit,
		StockInDate:      b.StockInDate,
		ExpirationDate:   b.ExpirationDate,
		Status:           b.Status,
	}
}

func toDeductionResponse(res *inventory.DeductionResult) dto.DeductionResponse {
	out := dto.DeductionResponse{
		TotalDeducted:  res.TotalDeducted,
		RemainingStock: res.RemainingStock,
		LegacyFallback: res.LegacyFallback,
		Details:        make([]dto.DeductionDetailDTO, 0, len(res.Details)),
	}
	for _, d := range res.Details {
		out.Details = append(out.Details, dto.DeductionDetailDTO{
			BatchNumber:    d.BatchNumber,
			Deducted:       d.Deducted,
			Remaining:      d.Remaining,
			ExpirationDate: d.ExpirationDate,
		})
	}
	return out
}

func toSpoilageRecordDTO(rec *entity.SpoilageRecord) dto.SpoilageRecordDTO {
	out := dto.SpoilageRecordDTO{
		ID:         rec.ID,
		Items:      make([]dto.SpoilageItemDTO, 0, len(rec.Items)),
		TotalWaste: rec.TotalWaste,
		Auto:       rec.Auto,
		CreatedBy:  rec.CreatedBy,
		CreatedAt:  rec.CreatedAt,
	}
	for _, it := range rec.Items {
		out.Items = append(out.Items, dto.SpoilageItemDTO{
			IngredientID:   it.IngredientID,
			IngredientName: it.Snapshot.Name,
			BatchID:        it.BatchID,
			BatchNumber:    it.BatchNumber,
			Quantity:       it.Quantity,
			Unit:           it.Unit,
			Reason:         it.Reason,
		})
	}
	return out
}
