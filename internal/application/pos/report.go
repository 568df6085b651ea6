package pos

import (
	"context"
	"fmt"
)

// ClosingReportUseCase genera la representación PDF de un cierre de caja.
// Solo se permite para cajas ya cerradas.
type ClosingReportUseCase struct {
	pos       *Controller
	generator ClosingReportGenerator
}

// NewClosingReportUseCase construye el caso de uso.
func NewClosingReportUseCase(pos *Controller, generator ClosingReportGenerator) *ClosingReportUseCase {
	return &ClosingReportUseCase{pos: pos, generator: generator}
}

// DownloadClosingPDF genera el PDF del cierre.
//
// Retorna:
//   - (pdfBytes, filename, nil)      si la caja está cerrada.
//   - domain.ErrSnapshotNotFound     si la caja no se ha cerrado.
//   - domain.ErrInvalidInput         si la fecha no es YYYY-MM-DD.
func (uc *ClosingReportUseCase) DownloadClosingPDF(ctx context.Context, terminalID, date string) ([]byte, string, error) {
	snapshot, err := uc.pos.closingSnapshot(ctx, terminalID, date)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.generator.GenerateClosingPDF(ctx, snapshot)
	if err != nil {
		return nil, "", uc.pos.reject("closing_pdf", snapshot.Key(), fmt.Errorf("generar PDF: %w", err))
	}
	filename := fmt.Sprintf("cierre-%s-%s.pdf", snapshot.TerminalID, snapshot.Date)
	return pdf, filename, nil
}
