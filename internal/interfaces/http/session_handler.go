package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/pos"
)

// SessionHandler caja del día, cierre e historial de cierres.
type SessionHandler struct {
	pos     *pos.Controller
	reports *pos.ClosingReportUseCase
}

// NewSessionHandler construye el handler.
func NewSessionHandler(ctrl *pos.Controller, reports *pos.ClosingReportUseCase) *SessionHandler {
	return &SessionHandler{pos: ctrl, reports: reports}
}

// Summary godoc
// @Summary      Resumen de caja
// @Description  Ventas brutas, gastos, utilidad, efectivo esperado y totales por medio de pago.
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        date  query     string  false  "YYYY-MM-DD (vacío = hoy)"
// @Success      200   {object}  dto.SessionSummaryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/pos/session [get]
func (h *SessionHandler) Summary(c *fiber.Ctx) error {
	terminalID := GetTerminalID(c)
	if terminalID == "" {
		return unauthorized(c)
	}
	summary, err := h.pos.Summary(c.Context(), terminalID, c.Query("date"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

// Sales godoc
// @Summary      Ventas de la caja
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        date  query  string  false  "YYYY-MM-DD (vacío = hoy)"
// @Success      200   {array}   dto.SaleResponse
// @Router       /api/pos/session/sales [get]
func (h *SessionHandler) Sales(c *fiber.Ctx) error {
	terminalID := GetTerminalID(c)
	if terminalID == "" {
		return unauthorized(c)
	}
	list, err := h.pos.ListSales(c.Context(), terminalID, c.Query("date"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "sales": list})
}

// Expenses godoc
// @Summary      Gastos de la caja
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        date  query  string  false  "YYYY-MM-DD (vacío = hoy)"
// @Success      200   {array}   dto.ExpenseResponse
// @Router       /api/pos/session/expenses [get]
func (h *SessionHandler) Expenses(c *fiber.Ctx) error {
	terminalID := GetTerminalID(c)
	if terminalID == "" {
		return unauthorized(c)
	}
	list, err := h.pos.ListExpenses(c.Context(), terminalID, c.Query("date"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "expenses": list})
}

// CreditNotes godoc
// @Summary      Notas crédito de la caja
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        date  query  string  false  "YYYY-MM-DD (vacío = hoy)"
// @Success      200   {array}   dto.CreditNoteResponse
// @Router       /api/pos/session/credit-notes [get]
func (h *SessionHandler) CreditNotes(c *fiber.Ctx) error {
	terminalID := GetTerminalID(c)
	if terminalID == "" {
		return unauthorized(c)
	}
	list, err := h.pos.ListCreditNotes(c.Context(), terminalID, c.Query("date"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "credit_notes": list})
}

// Close godoc
// @Summary      Cerrar caja
// @Description  Solo supervisor o admin. Congela el cierre con el efectivo contado; la caja no admite más movimientos.
// @Tags         pos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CloseSessionRequest  true  "counted_cash, notes, date (vacío = hoy)"
// @Success      201   {object}  dto.ClosingSnapshotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/pos/session/close [post]
func (h *SessionHandler) Close(c *fiber.Ctx) error {
	terminalID, userID := GetTerminalID(c), GetUserID(c)
	if terminalID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.CloseSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	snapshot, err := h.pos.CloseSession(c.Context(), terminalID, userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(snapshot)
}

// Closings godoc
// @Summary      Historial de cierres
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Máximo de resultados (20 por defecto)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  map[string]interface{}  "closings + page"
// @Router       /api/pos/closings [get]
func (h *SessionHandler) Closings(c *fiber.Ctx) error {
	terminalID := GetTerminalID(c)
	if terminalID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	list, err := h.pos.ListClosings(c.Context(), terminalID, page)
	if err != nil {
		return writeError(c, err)
	}
	page.DefaultPage()
	return c.JSON(fiber.Map{
		"closings": list,
		"page":     dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(list)},
	})
}

// Closing godoc
// @Summary      Consultar cierre
// @Tags         pos
// @Security     Bearer
// @Produce      json
// @Param        date  path      string  true  "YYYY-MM-DD"
// @Success      200   {object}  dto.ClosingSnapshotResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/pos/closings/{date} [get]
func (h *SessionHandler) Closing(c *fiber.Ctx) error {
	terminalID := GetTerminalID(c)
	if terminalID == "" {
		return unauthorized(c)
	}
	snapshot, err := h.pos.ClosingSnapshot(c.Context(), terminalID, c.Params("date"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(snapshot)
}

// ClosingPDF godoc
// @Summary      Descargar cierre en PDF
// @Tags         pos
// @Security     Bearer
// @Produce      application/pdf
// @Param        date  path  string  true  "YYYY-MM-DD"
// @Success      200   {file}    binary
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/pos/closings/{date}/pdf [get]
func (h *SessionHandler) ClosingPDF(c *fiber.Ctx) error {
	terminalID := GetTerminalID(c)
	if terminalID == "" {
		return unauthorized(c)
	}
	pdf, filename, err := h.reports.DownloadClosingPDF(c.Context(), terminalID, c.Params("date"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}
