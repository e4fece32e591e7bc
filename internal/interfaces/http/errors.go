package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	appinventory "github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
)

// writeError traduce un error de dominio a su respuesta HTTP. Es el único punto de clasificación.
func writeError(c *fiber.Ctx, err error) error {
	var stockErr *domain.InsufficientStockError
	var storageErr *domain.StorageError

	switch {
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: domain.ErrInsufficientStock.Error(),
			Details: map[string]any{
				"item_id":   stockErr.ItemID,
				"requested": stockErr.Requested,
				"available": stockErr.Available,
			},
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrNoInputHistory):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "NO_INPUT_HISTORY", Message: err.Error()})
	case errors.Is(err, appinventory.ErrReportUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "REPORT_UNAVAILABLE", Message: err.Error()})
	case errors.As(err, &storageErr):
		log.Error().Err(err).Str("op", storageErr.Op).Bool("retryable", storageErr.Retryable).
			Str("path", c.Path()).Msg("falla del ledger store")
		if domain.IsRetryable(err) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code: "STORAGE_RETRYABLE", Message: "conflicto de concurrencia, reintente la operación",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "STORAGE", Message: "error de almacenamiento"})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("error no clasificado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
