package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

// MovementHandler expone el Movement Engine: entradas, salidas, consultas y correcciones.
type MovementHandler struct {
	engine *inventory.MovementEngine
}

// NewMovementHandler construye el handler.
func NewMovementHandler(engine *inventory.MovementEngine) *MovementHandler {
	return &MovementHandler{engine: engine}
}

// RecordInput godoc
// @Summary      Registrar entrada (reposición)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RecordInputRequest  true  "Ítem, cantidad y costo unitario"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/movements/input [post]
func (h *MovementHandler) RecordInput(c *fiber.Ctx) error {
	var in dto.RecordInputRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	mov, err := h.engine.RecordInput(c.UserContext(), inventory.RecordInputCommand{
		ItemID:   in.ItemID,
		Quantity: in.Quantity,
		UnitCost: *in.UnitCost,
		UserID:   GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(mov))
}

// RecordOutput godoc
// @Summary      Registrar salida (despacho)
// @Description  Costea la salida con el método del ítem. Sin existencias suficientes responde 409 y no registra nada.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RecordOutputRequest  true  "Ítem y cantidad"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/movements/output [post]
func (h *MovementHandler) RecordOutput(c *fiber.Ctx) error {
	var in dto.RecordOutputRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	mov, err := h.engine.RecordOutput(c.UserContext(), inventory.RecordOutputCommand{
		ItemID:   in.ItemID,
		Quantity: in.Quantity,
		UserID:   GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(mov))
}

// GetByID godoc
// @Summary      Obtener movimiento por ID
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	mov, err := h.engine.GetMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewMovementResponse(mov))
}

// List godoc
// @Summary      Listar movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        item_id  query     string  false  "ID del ítem"
// @Param        kind     query     string  false  "INPUT | OUTPUT"
// @Param        from     query     string  false  "Desde (RFC3339)"
// @Param        to       query     string  false  "Hasta (RFC3339)"
// @Param        limit    query     int     false  "Límite"  default(50)
// @Param        offset   query     int     false  "Offset"  default(0)
// @Success      200      {object}  dto.MovementListResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var in dto.MovementListRequest
	if ok, err := parseQuery(c, &in); !ok {
		return err
	}
	from, err := parseTimeParam("from", in.From)
	if err != nil {
		return writeError(c, err)
	}
	to, err := parseTimeParam("to", in.To)
	if err != nil {
		return writeError(c, err)
	}

	filter := repository.MovementFilter{
		ItemID: in.ItemID,
		Kind:   entity.MovementKind(in.Kind),
		From:   from,
		To:     to,
		Limit:  in.Limit,
		Offset: in.Offset,
	}
	list, err := h.engine.ListMovements(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}

	limit := in.Limit
	if limit <= 0 {
		limit = inventory.DefaultListLimit
	}
	out := dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: limit, Offset: in.Offset},
	}
	for _, m := range list {
		out.Items = append(out.Items, dto.NewMovementResponse(m))
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear movimiento (administración)
// @Description  No valida existencias ni recalcula costos posteriores.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateMovementRequest  true  "Movimiento"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	cmd := inventory.CreateMovementCommand{
		ItemID:    in.ItemID,
		Kind:      entity.MovementKind(in.Kind),
		Quantity:  in.Quantity,
		TotalCost: in.TotalCost,
		UserID:    GetUserID(c),
	}
	if in.UnitCost != nil {
		cmd.UnitCost = *in.UnitCost
	}
	mov, err := h.engine.CreateMovement(c.UserContext(), cmd)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(mov))
}

// Update godoc
// @Summary      Actualizar movimiento (administración)
// @Description  Actualización parcial; no recalcula los costos de salidas posteriores.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true  "ID del movimiento"
// @Param        body  body      dto.UpdateMovementRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [put]
func (h *MovementHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMovementRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	cmd := inventory.UpdateMovementCommand{
		ItemID:    in.ItemID,
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
		TotalCost: in.TotalCost,
		UserID:    GetUserID(c),
	}
	if in.Kind != nil {
		k := entity.MovementKind(*in.Kind)
		cmd.Kind = &k
	}
	mov, err := h.engine.UpdateMovement(c.UserContext(), c.Params("id"), cmd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewMovementResponse(mov))
}

// Delete godoc
// @Summary      Eliminar movimiento (administración)
// @Tags         movements
// @Security     Bearer
// @Param        id   path  string  true  "ID del movimiento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [delete]
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	if err := h.engine.DeleteMovement(c.UserContext(), c.Params("id"), GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseTimeParam interpreta un query param RFC3339. Valor vacío → nil.
func parseTimeParam(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, domain.InvalidInputf("%s debe tener formato RFC3339", name)
	}
	t = t.UTC()
	return &t, nil
}
