package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/pos"
)

// SaleHandler maneja ventas, anulaciones y devoluciones del terminal autenticado.
type SaleHandler struct {
	pos *pos.Controller
}

// NewSaleHandler construye el handler.
func NewSaleHandler(ctrl *pos.Controller) *SaleHandler {
	return &SaleHandler{pos: ctrl}
}

// Complete godoc
// @Summary      Registrar venta
// @Description  Valora el carrito (precio, descuento por línea, IVA) y la registra en la caja de hoy.
//
//	amount_tendered es obligatorio cuando payment_method = efectivo.
//
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CompleteSaleRequest  true  "items, payment_method, amount_tendered, customer"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/pos/sales [post]
func (h *SaleHandler) Complete(c *fiber.Ctx) error {
	terminalID, userID := GetTerminalID(c), GetUserID(c)
	if terminalID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CompleteSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	sale, err := h.pos.CompleteSale(c.Context(), terminalID, userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sale)
}

// GetByID godoc
// @Summary      Consultar venta
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pos/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	terminalID := GetTerminalID(c)
	if terminalID == "" {
		return unauthorized(c)
	}
	sale, err := h.pos.GetSale(c.Context(), terminalID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(sale)
}

// Void godoc
// @Summary      Anular venta
// @Description  Solo supervisor o admin. La caja dueña de la venta debe seguir abierta.
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/pos/sales/{id}/void [post]
func (h *SaleHandler) Void(c *fiber.Ctx) error {
	terminalID := GetTerminalID(c)
	if terminalID == "" {
		return unauthorized(c)
	}
	sale, err := h.pos.VoidSale(c.Context(), terminalID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(sale)
}

// Return godoc
// @Summary      Registrar devolución
// @Description  Emite una nota crédito por las líneas devueltas (vacío = todas) y anula la venta.
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la venta"
// @Param        body  body  dto.ReturnRequest  true  "items devueltos y motivo"
// @Success      201   {object}  dto.CreditNoteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/pos/sales/{id}/returns [post]
func (h *SaleHandler) Return(c *fiber.Ctx) error {
	terminalID, userID := GetTerminalID(c), GetUserID(c)
	if terminalID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.ReturnRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	note, err := h.pos.IssueReturn(c.Context(), terminalID, userID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}
