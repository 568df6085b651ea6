package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() *entity.ClosingSnapshot {
	d := decimal.RequireFromString
	return &entity.ClosingSnapshot{
		TerminalID:    "caja1",
		Date:          "2026-10-19",
		GrossSales:    d("27423"),
		TotalExpenses: d("6000"),
		NetProfit:     d("21423"),
		ExpectedCash:  d("9141"),
		CountedCash:   d("9000"),
		Variance:      d("-141"),
		SalesByMethod: map[entity.PaymentMethod]decimal.Decimal{
			entity.PaymentCash:      d("9141"),
			entity.PaymentDebitCard: d("9141"),
		},
		CompletedSales: 3,
		VoidedSales:    1,
		ExpenseCount:   1,
		Notes:          "faltante de monedas",
		ClosedAt:       time.Date(2026, 10, 19, 21, 30, 0, 0, time.UTC),
		ClosedBy:       "supervisor-1",
	}
}

func TestGenerateClosingPDF_DocumentoValido(t *testing.T) {
	g := NewMarotoClosingReport("Droguería Central", time.UTC)

	pdf, err := g.GenerateClosingPDF(context.Background(), sampleSnapshot())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")), "debe ser un PDF")
}

func TestGenerateClosingPDF_CierreNil(t *testing.T) {
	_, err := NewMarotoClosingReport("Droguería Central", nil).GenerateClosingPDF(context.Background(), nil)
	assert.Error(t, err)
}

func TestFormatPesos(t *testing.T) {
	g := NewMarotoClosingReport("x", time.UTC)
	assert.Equal(t, "$45.000", g.formatPesos(decimal.RequireFromString("45000")))
	assert.Equal(t, "$1.250.000", g.formatPesos(decimal.RequireFromString("1250000")))
	assert.Equal(t, "-$45.000", g.formatPesos(decimal.RequireFromString("-45000")))
	assert.Equal(t, "$0", g.formatPesos(decimal.Zero))
}

func TestVerificationPayload(t *testing.T) {
	assert.Equal(t, "caja1|2026-10-19|27423|9141|9000|-141", verificationPayload(sampleSnapshot()))
}
