package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BusinessDateLayout formato del día contable de una caja.
const BusinessDateLayout = "2006-01-02"

// Estados de la caja. Closed es terminal.
const (
	SessionOpen   SessionStatus = "OPEN"
	SessionClosed SessionStatus = "CLOSED"
)

// SessionStatus estado de una caja.
type SessionStatus string

// SessionKey identifica la caja de un terminal en un día.
type SessionKey struct {
	TerminalID string
	Date       string // YYYY-MM-DD
}

func (k SessionKey) String() string { return k.TerminalID + "/" + k.Date }

// CashSession caja diaria de un terminal. Se abre implícitamente con la primera
// operación del día y se cierra una sola vez.
type CashSession struct {
	TerminalID    string
	Date          string
	Status        SessionStatus
	OpenedAt      time.Time
	ClosedAt      *time.Time
	SaleSeq       int // último consecutivo de venta emitido
	CreditNoteSeq int // último consecutivo de nota crédito emitido
}

// Key devuelve la llave (terminal, día) de la caja.
func (s *CashSession) Key() SessionKey {
	return SessionKey{TerminalID: s.TerminalID, Date: s.Date}
}

// IsClosed indica si la caja ya fue cerrada.
func (s *CashSession) IsClosed() bool { return s.Status == SessionClosed }

// NextSaleCode reserva el siguiente consecutivo de venta: <TERMINAL>-<YYYYMMDD>-<NNNN>.
func (s *CashSession) NextSaleCode() string {
	s.SaleSeq++
	return fmt.Sprintf("%s-%s-%04d", strings.ToUpper(s.TerminalID), compactDate(s.Date), s.SaleSeq)
}

// NextCreditNoteCode reserva el siguiente consecutivo de nota crédito.
func (s *CashSession) NextCreditNoteCode() string {
	s.CreditNoteSeq++
	return fmt.Sprintf("NC-%s-%s-%04d", strings.ToUpper(s.TerminalID), compactDate(s.Date), s.CreditNoteSeq)
}

func compactDate(date string) string { return strings.ReplaceAll(date, "-", "") }

// ClosingSnapshot registro inmutable del cierre de una caja (arqueo).
// Variance = CountedCash − ExpectedCash.
type ClosingSnapshot struct {
	TerminalID     string
	Date           string
	GrossSales     decimal.Decimal
	TotalExpenses  decimal.Decimal
	NetProfit      decimal.Decimal
	ExpectedCash   decimal.Decimal
	CountedCash    decimal.Decimal
	Variance       decimal.Decimal
	SalesByMethod  map[PaymentMethod]decimal.Decimal
	CompletedSales int
	VoidedSales    int
	ExpenseCount   int
	Notes          string
	ClosedAt       time.Time
	ClosedBy       string
}

// Key devuelve la caja a la que corresponde el cierre.
func (c *ClosingSnapshot) Key() SessionKey {
	return SessionKey{TerminalID: c.TerminalID, Date: c.Date}
}
