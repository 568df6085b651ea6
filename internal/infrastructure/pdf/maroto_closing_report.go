// Package pdf genera el comprobante imprimible del cierre de caja.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Farmacia + Terminal  │  CIERRE DE CAJA + Fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESULTADO: Ventas brutas / Gastos / Utilidad neta           │
//	│  ARQUEO: Efectivo esperado / contado / Diferencia            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Medio de pago | Total                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONTEOS + Observaciones                                     │
//	│  FOOTER: QR de verificación + firma                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/farmacia-pos/internal/application/pos"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 110, Blue: 80}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

var methodLabels = map[entity.PaymentMethod]string{
	entity.PaymentCash:       "Efectivo",
	entity.PaymentDebitCard:  "Tarjeta débito",
	entity.PaymentCreditCard: "Tarjeta crédito",
	entity.PaymentTransfer:   "Transferencia",
	entity.PaymentNequi:      "Nequi",
	entity.PaymentDaviplata:  "Daviplata",
}

// ── Generator ─────────────────────────────────────────────────────────────────

var _ pos.ClosingReportGenerator = (*MarotoClosingReport)(nil)

// MarotoClosingReport implementa pos.ClosingReportGenerator usando Maroto v2.
type MarotoClosingReport struct {
	storeName string
	loc       *time.Location
	printer   *message.Printer
}

// NewMarotoClosingReport construye el generador. loc define la hora impresa del cierre.
func NewMarotoClosingReport(storeName string, loc *time.Location) *MarotoClosingReport {
	if loc == nil {
		loc = time.Local
	}
	return &MarotoClosingReport{
		storeName: storeName,
		loc:       loc,
		printer:   message.NewPrinter(language.MustParse("es-CO")),
	}
}

// GenerateClosingPDF genera el PDF y devuelve sus bytes.
func (g *MarotoClosingReport) GenerateClosingPDF(_ context.Context, s *entity.ClosingSnapshot) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("pdf: cierre nil")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Cierre de caja "+s.TerminalID+" "+s.Date, true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(s))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(sectionTitle("RESULTADO DEL DÍA"))
	m.AddRows(
		g.amountRow("Ventas brutas", s.GrossSales, false),
		g.amountRow("Gastos", s.TotalExpenses, false),
		g.amountRow("Utilidad neta", s.NetProfit, true),
	)
	m.AddRows(sectionTitle("ARQUEO DE EFECTIVO"))
	m.AddRows(
		g.amountRow("Efectivo esperado", s.ExpectedCash, false),
		g.amountRow("Efectivo contado", s.CountedCash, false),
		g.varianceRow(s.Variance),
	)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("VENTAS POR MEDIO DE PAGO"))
	for _, r := range g.methodRows(s.SalesByMethod) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(countsRow(s))
	if strings.TrimSpace(s.Notes) != "" {
		m.AddRows(row.New(12).Add(col.New(12).Add(
			text.New("Observaciones:", props.Text{Style: fontstyle.Bold, Size: 8, Top: 1}),
			text.New(s.Notes, props.Text{Size: 8, Top: 6, Color: colorGray}),
		)))
	}

	m.AddRows(line.NewRow(4))
	m.AddRows(footerRow(s))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoClosingReport) headerRow(s *entity.ClosingSnapshot) core.Row {
	closedBy := s.ClosedBy
	if closedBy == "" {
		closedBy = "—"
	}
	return row.New(20).Add(
		col.New(7).Add(
			text.New(g.storeName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Terminal: "+s.TerminalID, props.Text{Size: 9, Top: 9, Color: colorGray}),
			text.New("Cerrada por: "+closedBy, props.Text{Size: 8, Top: 14, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("CIERRE DE CAJA", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(s.Date, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Hora de cierre: "+s.ClosedAt.In(g.loc).Format("15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func sectionTitle(title string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 3}),
	))
}

func (g *MarotoClosingReport) amountRow(label string, v decimal.Decimal, bold bool) core.Row {
	style := fontstyle.Normal
	if bold {
		style = fontstyle.Bold
	}
	return row.New(6).Add(
		col.New(2),
		col.New(5).Add(text.New(label+":", props.Text{Style: style, Size: 9, Top: 1})),
		col.New(3).Add(text.New(g.formatPesos(v), props.Text{Style: style, Size: 9, Align: align.Right, Top: 1})),
		col.New(2),
	)
}

func (g *MarotoClosingReport) varianceRow(v decimal.Decimal) core.Row {
	label := "Diferencia (cuadrada)"
	color := colorPrimary
	switch {
	case v.IsPositive():
		label, color = "Diferencia (sobrante)", colorAlert
	case v.IsNegative():
		label, color = "Diferencia (faltante)", colorAlert
	}
	return row.New(7).Add(
		col.New(2),
		col.New(5).Add(text.New(label+":", props.Text{Style: fontstyle.Bold, Size: 10, Color: color, Top: 1})),
		col.New(3).Add(text.New(g.formatPesos(v), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: color, Top: 1,
		})),
		col.New(2),
	)
}

// methodRows una fila por medio de pago, en el orden del catálogo de medios.
func (g *MarotoClosingReport) methodRows(byMethod map[entity.PaymentMethod]decimal.Decimal) []core.Row {
	rows := make([]core.Row, 0, len(entity.PaymentMethods()))
	for _, m := range entity.PaymentMethods() {
		total, ok := byMethod[m]
		if !ok {
			total = decimal.Zero
		}
		rows = append(rows, row.New(6).Add(
			col.New(2),
			col.New(5).Add(text.New(methodLabels[m], props.Text{Size: 9, Top: 1})),
			col.New(3).Add(text.New(g.formatPesos(total), props.Text{Size: 9, Align: align.Right, Top: 1})),
			col.New(2),
		))
	}
	return rows
}

func countsRow(s *entity.ClosingSnapshot) core.Row {
	return row.New(8).Add(
		col.New(4).Add(text.New(fmt.Sprintf("Ventas completadas: %d", s.CompletedSales), props.Text{Size: 8, Top: 2})),
		col.New(4).Add(text.New(fmt.Sprintf("Ventas anuladas: %d", s.VoidedSales), props.Text{Size: 8, Top: 2, Align: align.Center})),
		col.New(4).Add(text.New(fmt.Sprintf("Gastos registrados: %d", s.ExpenseCount), props.Text{Size: 8, Top: 2, Align: align.Right})),
	)
}

// footerRow QR con los totales del cierre para verificación en auditoría.
func footerRow(s *entity.ClosingSnapshot) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(verificationPayload(s), props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Firma cajero: ______________________________", props.Text{Size: 9, Top: 8, Left: 4}),
			text.New("Firma supervisor: __________________________", props.Text{Size: 9, Top: 20, Left: 4}),
			text.New("Documento interno de cuadre de caja. No es factura de venta.", props.Text{
				Size: 6.5, Top: 32, Left: 4, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// verificationPayload contenido del QR: terminal|día|bruto|esperado|contado|diferencia.
func verificationPayload(s *entity.ClosingSnapshot) string {
	return strings.Join([]string{
		s.TerminalID, s.Date,
		s.GrossSales.StringFixed(0), s.ExpectedCash.StringFixed(0),
		s.CountedCash.StringFixed(0), s.Variance.StringFixed(0),
	}, "|")
}

// formatPesos formatea en pesos colombianos sin decimales. Ej: 45000 → "$45.000".
func (g *MarotoClosingReport) formatPesos(v decimal.Decimal) string {
	n := v.Round(0).IntPart()
	if n < 0 {
		return "-$" + g.printer.Sprintf("%d", -n)
	}
	return "$" + g.printer.Sprintf("%d", n)
}
