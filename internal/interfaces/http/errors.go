package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain"
)

// statusByCode estado HTTP de cada código de la taxonomía.
var statusByCode = map[string]int{
	"EMPTY_CART":             fiber.StatusBadRequest,
	"INVALID_LINE_ITEM":      fiber.StatusBadRequest,
	"INVALID_PAYMENT_METHOD": fiber.StatusBadRequest,
	"INVALID_RETURN_LINE":    fiber.StatusBadRequest,
	"INVALID_EXPENSE":        fiber.StatusBadRequest,
	"INVALID_COUNTED_CASH":   fiber.StatusBadRequest,
	"VALIDATION":             fiber.StatusBadRequest,
	"INSUFFICIENT_PAYMENT":   fiber.StatusUnprocessableEntity,
	"SALE_NOT_FOUND":         fiber.StatusNotFound,
	"EXPENSE_NOT_FOUND":      fiber.StatusNotFound,
	"PRODUCT_NOT_FOUND":      fiber.StatusNotFound,
	"SNAPSHOT_NOT_FOUND":     fiber.StatusNotFound,
	"PRODUCT_UNAVAILABLE":    fiber.StatusConflict,
	"ALREADY_VOIDED":         fiber.StatusConflict,
	"ALREADY_CLOSED":         fiber.StatusConflict,
	"SESSION_CLOSED":         fiber.StatusConflict,
	"PERSISTENCE":            fiber.StatusServiceUnavailable,
}

// writeError responde con el código estable del error. Los fallos internos no exponen detalle.
func writeError(c *fiber.Ctx, err error) error {
	code := domain.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
	msg := err.Error()
	if code == "PERSISTENCE" {
		msg = "no se pudo guardar la operación, intente de nuevo"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
