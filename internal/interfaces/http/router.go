package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/farmacia-pos/internal/application/pos"
	"github.com/jhoicas/farmacia-pos/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	POS       *pos.Controller
	Reports   *pos.ClosingReportUseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todo /api/pos requiere Bearer Token de terminal.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	posGroup := api.Group("/pos", AuthMiddleware(deps.JWTSecret))
	supervisor := RequireRole(jwt.RoleSupervisor, jwt.RoleAdmin)

	// Ventas
	saleHandler := NewSaleHandler(deps.POS)
	sales := posGroup.Group("/sales")
	sales.Post("/", saleHandler.Complete)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Post("/:id/void", supervisor, saleHandler.Void)
	sales.Post("/:id/returns", supervisor, saleHandler.Return)

	// Gastos
	expenseHandler := NewExpenseHandler(deps.POS)
	expenses := posGroup.Group("/expenses")
	expenses.Post("/", expenseHandler.Record)
	expenses.Delete("/:id", expenseHandler.Remove)

	// Caja del día
	sessionHandler := NewSessionHandler(deps.POS, deps.Reports)
	session := posGroup.Group("/session")
	session.Get("/", sessionHandler.Summary)
	session.Get("/sales", sessionHandler.Sales)
	session.Get("/expenses", sessionHandler.Expenses)
	session.Get("/credit-notes", sessionHandler.CreditNotes)
	session.Post("/close", supervisor, sessionHandler.Close)

	// Historial de cierres
	closings := posGroup.Group("/closings")
	closings.Get("/", sessionHandler.Closings)
	closings.Get("/:date", sessionHandler.Closing)
	closings.Get("/:date/pdf", sessionHandler.ClosingPDF)
}
