package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/pos"
)

// ExpenseHandler gastos de caja del terminal autenticado.
type ExpenseHandler struct {
	pos *pos.Controller
}

// NewExpenseHandler construye el handler.
func NewExpenseHandler(ctrl *pos.Controller) *ExpenseHandler {
	return &ExpenseHandler{pos: ctrl}
}

// Record godoc
// @Summary      Registrar gasto
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordExpenseRequest  true  "description, amount, category (materiales|servicios|domicilios|otros)"
// @Success      201   {object}  dto.ExpenseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/pos/expenses [post]
func (h *ExpenseHandler) Record(c *fiber.Ctx) error {
	terminalID, userID := GetTerminalID(c), GetUserID(c)
	if terminalID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.RecordExpenseRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	expense, err := h.pos.RecordExpense(c.Context(), terminalID, userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(expense)
}

// Remove godoc
// @Summary      Eliminar gasto
// @Tags         pos
// @Security     Bearer
// @Param        id   path  string  true  "ID del gasto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/pos/expenses/{id} [delete]
func (h *ExpenseHandler) Remove(c *fiber.Ctx) error {
	terminalID := GetTerminalID(c)
	if terminalID == "" {
		return unauthorized(c)
	}
	if err := h.pos.RemoveExpense(c.Context(), terminalID, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
