package memory

import (
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Las entidades guardadas no comparten punteros ni slices con las del llamador.

func copySale(s *entity.Sale) entity.Sale {
	c := *s
	c.Lines = append([]entity.LineItem(nil), s.Lines...)
	if s.CustomerID != nil {
		id := *s.CustomerID
		c.CustomerID = &id
	}
	c.AmountTendered = copyDecimal(s.AmountTendered)
	c.ChangeDue = copyDecimal(s.ChangeDue)
	c.VoidedAt = copyTime(s.VoidedAt)
	return c
}

func copySnapshot(s *entity.ClosingSnapshot) entity.ClosingSnapshot {
	c := *s
	c.SalesByMethod = make(map[entity.PaymentMethod]decimal.Decimal, len(s.SalesByMethod))
	for k, v := range s.SalesByMethod {
		c.SalesByMethod[k] = v
	}
	return c
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
