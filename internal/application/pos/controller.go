package pos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/pricing"
	"github.com/jhoicas/farmacia-pos/pkg/taxid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Config parámetros de la caja.
type Config struct {
	TaxRate  decimal.Decimal
	Location *time.Location // zona horaria que define el día contable
}

// Controller fachada del punto de venta. Cada operación mutante se ejecuta bajo el
// lock exclusivo de su caja y dentro de una transacción todo-o-nada; las consultas
// de agregados toman el lock compartido.
type Controller struct {
	tx       TxRunner
	locks    *SessionLocker
	sales    *SaleLedger
	expenses *ExpenseLedger
	sessions *CashSessionManager
	catalog  Catalog
	clock    Clock
	loc      *time.Location
	log      zerolog.Logger
}

// NewController construye la fachada con sus libros y colaboradores.
func NewController(tx TxRunner, catalog Catalog, clock Clock, cfg Config, log zerolog.Logger) *Controller {
	if clock == nil {
		clock = SystemClock{}
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	calc := pricing.NewCalculator(cfg.TaxRate)
	sessions := NewCashSessionManager(clock)
	return &Controller{
		tx:       tx,
		locks:    NewSessionLocker(),
		sales:    NewSaleLedger(calc, sessions, clock),
		expenses: NewExpenseLedger(sessions, clock),
		sessions: sessions,
		catalog:  catalog,
		clock:    clock,
		loc:      loc,
		log:      log.With().Str("component", "pos").Logger(),
	}
}

// Today devuelve el día contable actual.
func (c *Controller) Today() string {
	return c.clock.Now().In(c.loc).Format(entity.BusinessDateLayout)
}

// ── Ventas ────────────────────────────────────────────────────────────────────

// CompleteSale valora el carrito con el catálogo, resuelve el cliente y registra la venta
// en la caja de hoy del terminal. La caja cerrada se verifica antes que cualquier dato
// de entrada; el cliente nuevo se crea en la misma transacción que la venta.
func (c *Controller) CompleteSale(ctx context.Context, terminalID, userID string, in dto.CompleteSaleRequest) (*dto.SaleResponse, error) {
	if terminalID == "" {
		return nil, domain.ErrInvalidInput
	}
	key := entity.SessionKey{TerminalID: terminalID, Date: c.Today()}

	unlock := c.locks.Lock(key)
	defer unlock()

	var sale *entity.Sale
	err := c.tx.RunPOS(ctx, func(repos Repositories) error {
		if _, err := c.sessions.Open(ctx, repos, key); err != nil {
			return err
		}
		method, err := entity.ParsePaymentMethod(strings.TrimSpace(in.PaymentMethod))
		if err != nil {
			return err
		}
		if len(in.Items) == 0 {
			return domain.ErrEmptyCart
		}
		lines := make([]entity.LineItem, 0, len(in.Items))
		for _, item := range in.Items {
			line, err := c.resolveLine(ctx, item)
			if err != nil {
				return err
			}
			lines = append(lines, line)
		}
		customer, err := c.resolveCustomer(ctx, repos, in.Customer)
		if err != nil {
			return err
		}
		sale, err = c.sales.Complete(ctx, repos, key, CompleteSaleInput{
			Lines:          lines,
			PaymentMethod:  method,
			AmountTendered: in.AmountTendered,
			Customer:       customer,
			CreatedBy:      userID,
		})
		return err
	})
	if err != nil {
		return nil, c.reject("complete_sale", key, err)
	}
	c.log.Info().
		Str("session", key.String()).
		Str("sale_code", sale.Code).
		Str("payment_method", string(sale.PaymentMethod)).
		Str("total", sale.Total.String()).
		Msg("venta completada")
	return toSaleResponse(sale), nil
}

// resolveCustomer normaliza el documento y resuelve el cliente con el colaborador de la
// transacción. Sin datos de cliente la venta queda a consumidor final.
func (c *Controller) resolveCustomer(ctx context.Context, repos Repositories, in *dto.CustomerRequest) (CustomerHandle, error) {
	if in == nil {
		return GenericCustomer, nil
	}
	ci := CustomerInput{TaxID: strings.TrimSpace(in.TaxID), Name: strings.TrimSpace(in.Name)}
	if ci.TaxID != "" {
		taxID, err := taxid.Normalize(ci.TaxID)
		if err != nil {
			return CustomerHandle{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		ci.TaxID = taxID
	}
	if ci.IsEmpty() {
		return GenericCustomer, nil
	}
	customer, err := repos.Customers.ResolveOrCreate(ctx, ci)
	if err != nil {
		return CustomerHandle{}, fmt.Errorf("resolver cliente: %w", err)
	}
	return customer, nil
}

// resolveLine obtiene nombre y precio del catálogo. Un precio explícito en la línea
// (capturado al agregarla al carrito) tiene prioridad sobre el del catálogo.
func (c *Controller) resolveLine(ctx context.Context, item dto.SaleItemRequest) (entity.LineItem, error) {
	ref := strings.TrimSpace(item.ProductRef)
	if ref == "" {
		return entity.LineItem{}, domain.ErrInvalidLineItem
	}
	product, err := c.catalog.ResolveProduct(ctx, ref)
	if err != nil {
		return entity.LineItem{}, err
	}
	if product == nil {
		return entity.LineItem{}, domain.ErrProductNotFound
	}
	if !product.Available {
		return entity.LineItem{}, domain.ErrProductUnavailable
	}
	price := product.UnitPrice
	if item.UnitPrice != nil {
		price = *item.UnitPrice
	}
	return entity.LineItem{
		ProductRef:      ref,
		ProductName:     product.Name,
		UnitPrice:       price,
		Quantity:        item.Quantity,
		DiscountPercent: item.DiscountPercent,
	}, nil
}

// GetSale obtiene una venta del terminal.
func (c *Controller) GetSale(ctx context.Context, terminalID, saleID string) (*dto.SaleResponse, error) {
	sale, err := c.findSale(ctx, terminalID, saleID)
	if err != nil {
		return nil, c.reject("get_sale", entity.SessionKey{TerminalID: terminalID}, err)
	}
	return toSaleResponse(sale), nil
}

// VoidSale anula una venta completada mientras su caja siga abierta.
func (c *Controller) VoidSale(ctx context.Context, terminalID, saleID string) (*dto.SaleResponse, error) {
	found, err := c.findSale(ctx, terminalID, saleID)
	if err != nil {
		return nil, c.reject("void_sale", entity.SessionKey{TerminalID: terminalID}, err)
	}
	key := found.SessionKey()

	unlock := c.locks.Lock(key)
	defer unlock()

	var sale *entity.Sale
	err = c.tx.RunPOS(ctx, func(repos Repositories) error {
		var err error
		sale, err = c.sales.Void(ctx, repos, saleID)
		return err
	})
	if err != nil {
		return nil, c.reject("void_sale", key, err)
	}
	c.log.Info().
		Str("session", key.String()).
		Str("sale_code", sale.Code).
		Str("total", sale.Total.String()).
		Msg("venta anulada")
	return toSaleResponse(sale), nil
}

// IssueReturn emite una nota crédito y anula la venta de origen.
func (c *Controller) IssueReturn(ctx context.Context, terminalID, userID, saleID string, in dto.ReturnRequest) (*dto.CreditNoteResponse, error) {
	found, err := c.findSale(ctx, terminalID, saleID)
	if err != nil {
		return nil, c.reject("issue_return", entity.SessionKey{TerminalID: terminalID}, err)
	}
	key := found.SessionKey()
	returned := make([]ReturnLine, 0, len(in.Items))
	for _, it := range in.Items {
		returned = append(returned, ReturnLine{ProductRef: strings.TrimSpace(it.ProductRef), Quantity: it.Quantity})
	}

	unlock := c.locks.Lock(key)
	defer unlock()

	var (
		note *entity.CreditNote
		sale *entity.Sale
	)
	err = c.tx.RunPOS(ctx, func(repos Repositories) error {
		var err error
		note, sale, err = c.sales.IssueReturn(ctx, repos, saleID, returned, in.Reason, userID)
		return err
	})
	if err != nil {
		return nil, c.reject("issue_return", key, err)
	}
	c.log.Info().
		Str("session", key.String()).
		Str("sale_code", sale.Code).
		Str("credit_note", note.Code).
		Str("refunded", note.AmountRefunded.String()).
		Msg("devolución registrada")
	resp := toCreditNoteResponse(note)
	resp.Sale = toSaleResponse(sale)
	return resp, nil
}

// ListCreditNotes lista las notas crédito de la caja del día indicado.
func (c *Controller) ListCreditNotes(ctx context.Context, terminalID, date string) ([]*dto.CreditNoteResponse, error) {
	key, err := c.sessionKey(terminalID, date)
	if err != nil {
		return nil, err
	}
	unlock := c.locks.RLock(key)
	defer unlock()

	var out []*dto.CreditNoteResponse
	err = c.tx.ReadPOS(ctx, func(repos Repositories) error {
		notes, err := repos.CreditNotes.ListBySession(ctx, key)
		if err != nil {
			return err
		}
		out = make([]*dto.CreditNoteResponse, 0, len(notes))
		for _, n := range notes {
			out = append(out, toCreditNoteResponse(n))
		}
		return nil
	})
	if err != nil {
		return nil, c.reject("list_credit_notes", key, err)
	}
	return out, nil
}

// ListSales lista las ventas de la caja del día indicado (vacío = hoy).
func (c *Controller) ListSales(ctx context.Context, terminalID, date string) ([]*dto.SaleResponse, error) {
	key, err := c.sessionKey(terminalID, date)
	if err != nil {
		return nil, err
	}
	unlock := c.locks.RLock(key)
	defer unlock()

	var out []*dto.SaleResponse
	err = c.tx.ReadPOS(ctx, func(repos Repositories) error {
		sales, err := repos.Sales.ListBySession(ctx, key)
		if err != nil {
			return err
		}
		out = make([]*dto.SaleResponse, 0, len(sales))
		for _, s := range sales {
			out = append(out, toSaleResponse(s))
		}
		return nil
	})
	if err != nil {
		return nil, c.reject("list_sales", key, err)
	}
	return out, nil
}

// ── Gastos ────────────────────────────────────────────────────────────────────

// RecordExpense registra un gasto en la caja de hoy del terminal.
func (c *Controller) RecordExpense(ctx context.Context, terminalID, userID string, in dto.RecordExpenseRequest) (*dto.ExpenseResponse, error) {
	if terminalID == "" {
		return nil, domain.ErrInvalidInput
	}
	key := entity.SessionKey{TerminalID: terminalID, Date: c.Today()}

	unlock := c.locks.Lock(key)
	defer unlock()

	var expense *entity.Expense
	err := c.tx.RunPOS(ctx, func(repos Repositories) error {
		var err error
		expense, err = c.expenses.Record(ctx, repos, key, RecordExpenseInput{
			Description: in.Description,
			Amount:      in.Amount,
			Category:    entity.ExpenseCategory(strings.TrimSpace(in.Category)),
			CreatedBy:   userID,
		})
		return err
	})
	if err != nil {
		return nil, c.reject("record_expense", key, err)
	}
	c.log.Info().
		Str("session", key.String()).
		Str("category", string(expense.Category)).
		Str("amount", expense.Amount.String()).
		Msg("gasto registrado")
	return toExpenseResponse(expense), nil
}

// RemoveExpense elimina un gasto del terminal mientras su caja siga abierta.
func (c *Controller) RemoveExpense(ctx context.Context, terminalID, expenseID string) error {
	var found *entity.Expense
	err := c.tx.ReadPOS(ctx, func(repos Repositories) error {
		var err error
		found, err = repos.Expenses.GetByID(ctx, expenseID)
		return err
	})
	if err == nil && (found == nil || found.TerminalID != terminalID) {
		err = domain.ErrExpenseNotFound
	}
	if err != nil {
		return c.reject("remove_expense", entity.SessionKey{TerminalID: terminalID}, err)
	}
	key := found.SessionKey()

	unlock := c.locks.Lock(key)
	defer unlock()

	err = c.tx.RunPOS(ctx, func(repos Repositories) error {
		_, err := c.expenses.Remove(ctx, repos, expenseID)
		return err
	})
	if err != nil {
		return c.reject("remove_expense", key, err)
	}
	c.log.Info().Str("session", key.String()).Str("expense_id", expenseID).Msg("gasto eliminado")
	return nil
}

// ListExpenses lista los gastos de la caja del día indicado (vacío = hoy).
func (c *Controller) ListExpenses(ctx context.Context, terminalID, date string) ([]*dto.ExpenseResponse, error) {
	key, err := c.sessionKey(terminalID, date)
	if err != nil {
		return nil, err
	}
	unlock := c.locks.RLock(key)
	defer unlock()

	var out []*dto.ExpenseResponse
	err = c.tx.ReadPOS(ctx, func(repos Repositories) error {
		expenses, err := repos.Expenses.ListBySession(ctx, key)
		if err != nil {
			return err
		}
		out = make([]*dto.ExpenseResponse, 0, len(expenses))
		for _, e := range expenses {
			out = append(out, toExpenseResponse(e))
		}
		return nil
	})
	if err != nil {
		return nil, c.reject("list_expenses", key, err)
	}
	return out, nil
}

// ── Caja ──────────────────────────────────────────────────────────────────────

// Summary devuelve los agregados actuales de la caja (vacío = hoy).
func (c *Controller) Summary(ctx context.Context, terminalID, date string) (*dto.SessionSummaryResponse, error) {
	key, err := c.sessionKey(terminalID, date)
	if err != nil {
		return nil, err
	}
	unlock := c.locks.RLock(key)
	defer unlock()

	var summary *SessionSummary
	err = c.tx.ReadPOS(ctx, func(repos Repositories) error {
		var err error
		summary, err = c.sessions.Summary(ctx, repos, key)
		return err
	})
	if err != nil {
		return nil, c.reject("summary", key, err)
	}
	return toSummaryResponse(summary), nil
}

// CloseSession cierra la caja (vacío = hoy) y devuelve el cierre inmutable.
// Se permite cerrar días pasados pendientes, nunca un día futuro.
func (c *Controller) CloseSession(ctx context.Context, terminalID, userID string, in dto.CloseSessionRequest) (*dto.ClosingSnapshotResponse, error) {
	key, err := c.sessionKey(terminalID, in.Date)
	if err != nil {
		return nil, err
	}
	if key.Date > c.Today() {
		return nil, c.reject("close_session", key, fmt.Errorf("%w: no se puede cerrar la caja del %s antes de ese día", domain.ErrInvalidInput, key.Date))
	}

	unlock := c.locks.Lock(key)
	defer unlock()

	var snapshot *entity.ClosingSnapshot
	err = c.tx.RunPOS(ctx, func(repos Repositories) error {
		var err error
		snapshot, err = c.sessions.Close(ctx, repos, key, in.CountedCash, in.Notes, userID)
		return err
	})
	if err != nil {
		return nil, c.reject("close_session", key, err)
	}
	ev := c.log.Info()
	if !snapshot.Variance.IsZero() {
		ev = c.log.Warn()
	}
	ev.Str("session", key.String()).
		Str("gross_sales", snapshot.GrossSales.String()).
		Str("expected_cash", snapshot.ExpectedCash.String()).
		Str("counted_cash", snapshot.CountedCash.String()).
		Str("variance", snapshot.Variance.String()).
		Msg("caja cerrada")
	return toSnapshotResponse(snapshot), nil
}

// ClosingSnapshot devuelve el cierre de una caja ya cerrada.
func (c *Controller) ClosingSnapshot(ctx context.Context, terminalID, date string) (*dto.ClosingSnapshotResponse, error) {
	snapshot, err := c.closingSnapshot(ctx, terminalID, date)
	if err != nil {
		return nil, err
	}
	return toSnapshotResponse(snapshot), nil
}

// ListClosings historial de cierres del terminal, más reciente primero.
func (c *Controller) ListClosings(ctx context.Context, terminalID string, page dto.PageRequest) ([]*dto.ClosingSnapshotResponse, error) {
	if terminalID == "" {
		return nil, domain.ErrInvalidInput
	}
	page.DefaultPage()
	var out []*dto.ClosingSnapshotResponse
	err := c.tx.ReadPOS(ctx, func(repos Repositories) error {
		list, err := repos.Sessions.ListSnapshots(ctx, terminalID, page.Limit, page.Offset)
		if err != nil {
			return err
		}
		out = make([]*dto.ClosingSnapshotResponse, 0, len(list))
		for _, s := range list {
			out = append(out, toSnapshotResponse(s))
		}
		return nil
	})
	if err != nil {
		return nil, c.reject("list_closings", entity.SessionKey{TerminalID: terminalID}, err)
	}
	return out, nil
}

func (c *Controller) closingSnapshot(ctx context.Context, terminalID, date string) (*entity.ClosingSnapshot, error) {
	key, err := c.sessionKey(terminalID, date)
	if err != nil {
		return nil, err
	}
	var snapshot *entity.ClosingSnapshot
	err = c.tx.ReadPOS(ctx, func(repos Repositories) error {
		var err error
		snapshot, err = c.sessions.Snapshot(ctx, repos, key)
		return err
	})
	if err != nil {
		return nil, c.reject("closing_snapshot", key, err)
	}
	return snapshot, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// sessionKey valida el terminal y el día (YYYY-MM-DD, vacío = hoy).
func (c *Controller) sessionKey(terminalID, date string) (entity.SessionKey, error) {
	if terminalID == "" {
		return entity.SessionKey{}, domain.ErrInvalidInput
	}
	date = strings.TrimSpace(date)
	if date == "" {
		return entity.SessionKey{TerminalID: terminalID, Date: c.Today()}, nil
	}
	if _, err := time.ParseInLocation(entity.BusinessDateLayout, date, c.loc); err != nil {
		return entity.SessionKey{}, fmt.Errorf("%w: fecha %q", domain.ErrInvalidInput, date)
	}
	return entity.SessionKey{TerminalID: terminalID, Date: date}, nil
}

// findSale obtiene la venta y verifica que pertenezca al terminal.
func (c *Controller) findSale(ctx context.Context, terminalID, saleID string) (*entity.Sale, error) {
	if saleID == "" {
		return nil, domain.ErrSaleNotFound
	}
	var sale *entity.Sale
	err := c.tx.ReadPOS(ctx, func(repos Repositories) error {
		var err error
		sale, err = repos.Sales.GetByID(ctx, saleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if sale == nil || sale.TerminalID != terminalID {
		return nil, domain.ErrSaleNotFound
	}
	return sale, nil
}

// reject traduce el error a la taxonomía del punto de venta: los rechazos de negocio
// pasan tal cual y cualquier otro fallo se reporta como domain.ErrPersistence.
func (c *Controller) reject(op string, key entity.SessionKey, err error) error {
	if domain.IsDomainError(err) {
		c.log.Warn().Str("op", op).Str("session", key.String()).Str("code", domain.Code(err)).Msg("operación rechazada")
		return err
	}
	c.log.Error().Err(err).Str("op", op).Str("session", key.String()).Msg("operación fallida")
	if errors.Is(err, domain.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrPersistence, op, err)
}
