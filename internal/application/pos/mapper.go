package pos

import (
	"time"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:             s.ID,
		Code:           s.Code,
		TerminalID:     s.TerminalID,
		BusinessDate:   s.BusinessDate,
		Timestamp:      s.Timestamp.Format(time.RFC3339),
		CustomerID:     s.CustomerID,
		CustomerName:   s.CustomerName,
		PaymentMethod:  string(s.PaymentMethod),
		Items:          toLineResponses(s.Lines),
		Subtotal:       s.Subtotal,
		DiscountTotal:  s.DiscountTotal,
		TaxableBase:    s.TaxableBase,
		Tax:            s.Tax,
		Total:          s.Total,
		AmountTendered: s.AmountTendered,
		ChangeDue:      s.ChangeDue,
		Status:         string(s.Status),
	}
	if s.VoidedAt != nil {
		v := s.VoidedAt.Format(time.RFC3339)
		resp.VoidedAt = &v
	}
	return resp
}

func toLineResponses(lines []entity.LineItem) []dto.LineItemResponse {
	out := make([]dto.LineItemResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.LineItemResponse{
			ProductRef:      l.ProductRef,
			ProductName:     l.ProductName,
			UnitPrice:       l.UnitPrice,
			Quantity:        l.Quantity,
			DiscountPercent: l.DiscountPercent,
			Gross:           l.Gross,
			Discount:        l.Discount,
			LineTotal:       l.LineTotal,
		})
	}
	return out
}

func toCreditNoteResponse(n *entity.CreditNote) *dto.CreditNoteResponse {
	return &dto.CreditNoteResponse{
		ID:             n.ID,
		Code:           n.Code,
		SaleID:         n.SaleID,
		Timestamp:      n.Timestamp.Format(time.RFC3339),
		Items:          toLineResponses(n.Lines),
		Subtotal:       n.Subtotal,
		DiscountTotal:  n.DiscountTotal,
		Tax:            n.Tax,
		AmountRefunded: n.AmountRefunded,
		Reason:         n.Reason,
	}
}

func toExpenseResponse(e *entity.Expense) *dto.ExpenseResponse {
	return &dto.ExpenseResponse{
		ID:           e.ID,
		BusinessDate: e.BusinessDate,
		Timestamp:    e.Timestamp.Format(time.RFC3339),
		Description:  e.Description,
		Amount:       e.Amount,
		Category:     string(e.Category),
	}
}

func toSummaryResponse(s *SessionSummary) *dto.SessionSummaryResponse {
	return &dto.SessionSummaryResponse{
		TerminalID:     s.Key.TerminalID,
		Date:           s.Key.Date,
		Status:         string(s.Status),
		GrossSales:     s.GrossSales,
		TotalExpenses:  s.TotalExpenses,
		NetProfit:      s.NetProfit,
		ExpectedCash:   s.ExpectedCash,
		SalesByMethod:  byMethod(s.SalesByMethod),
		CompletedSales: s.CompletedSales,
		VoidedSales:    s.VoidedSales,
		ExpenseCount:   s.ExpenseCount,
	}
}

func toSnapshotResponse(s *entity.ClosingSnapshot) *dto.ClosingSnapshotResponse {
	return &dto.ClosingSnapshotResponse{
		TerminalID:     s.TerminalID,
		Date:           s.Date,
		GrossSales:     s.GrossSales,
		TotalExpenses:  s.TotalExpenses,
		NetProfit:      s.NetProfit,
		ExpectedCash:   s.ExpectedCash,
		CountedCash:    s.CountedCash,
		Variance:       s.Variance,
		SalesByMethod:  byMethod(s.SalesByMethod),
		CompletedSales: s.CompletedSales,
		VoidedSales:    s.VoidedSales,
		ExpenseCount:   s.ExpenseCount,
		Notes:          s.Notes,
		ClosedAt:       s.ClosedAt.Format(time.RFC3339),
		ClosedBy:       s.ClosedBy,
	}
}

func byMethod(m map[entity.PaymentMethod]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}
