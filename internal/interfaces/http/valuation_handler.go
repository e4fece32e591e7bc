package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
)

// ValuationHandler consultas de valorización: vigente, a una fecha, costo estimado y reporte PDF.
type ValuationHandler struct {
	reporter *inventory.ValuationReporter
	engine   *inventory.MovementEngine
}

// NewValuationHandler construye el handler.
func NewValuationHandler(reporter *inventory.ValuationReporter, engine *inventory.MovementEngine) *ValuationHandler {
	return &ValuationHandler{reporter: reporter, engine: engine}
}

// Valuation godoc
// @Summary      Valorización del inventario de un ítem
// @Description  Existencias y valor total por replay del ledger. Con as_of solo cuenta los movimientos hasta esa fecha.
// @Tags         valuation
// @Security     Bearer
// @Produce      json
// @Param        id     path      string  true   "ID del ítem"
// @Param        as_of  query     string  false  "Fecha de corte (RFC3339)"
// @Success      200    {object}  dto.ValuationResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/items/{id}/valuation [get]
func (h *ValuationHandler) Valuation(c *fiber.Ctx) error {
	asOf, err := parseTimeParam("as_of", c.Query("as_of"))
	if err != nil {
		return writeError(c, err)
	}
	v, err := h.reporter.Valuation(c.UserContext(), c.Params("id"), asOf)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewValuationResponse(v))
}

// Report godoc
// @Summary      Reporte PDF de valorización
// @Tags         valuation
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path      string  true  "ID del ítem"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/valuation/report [get]
func (h *ValuationHandler) Report(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.reporter.ValuationReport(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="valuation-`+id+`.pdf"`)
	return c.Send(pdf)
}

// OutputCost godoc
// @Summary      Costo estimado de una salida
// @Description  Calcula el costo que tendría una salida sin registrarla.
// @Tags         valuation
// @Security     Bearer
// @Produce      json
// @Param        id        path      string  true  "ID del ítem"
// @Param        quantity  query     int     true  "Cantidad"
// @Success      200       {object}  dto.OutputCostResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Failure      404       {object}  dto.ErrorResponse
// @Failure      409       {object}  dto.ErrorResponse
// @Failure      422       {object}  dto.ErrorResponse
// @Router       /api/items/{id}/output-cost [get]
func (h *ValuationHandler) OutputCost(c *fiber.Ctx) error {
	qty, err := strconv.ParseInt(c.Query("quantity"), 10, 64)
	if err != nil {
		return writeError(c, domain.InvalidInputf("quantity debe ser un entero"))
	}
	id := c.Params("id")
	res, err := h.engine.PreviewOutputCost(c.UserContext(), id, qty)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewOutputCostResponse(id, res))
}
