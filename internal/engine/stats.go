package engine

import (
	"github.com/aethra/acueducto/internal/models"
	"github.com/shopspring/decimal"
)

// InvoiceStats summarises the unfiltered invoice snapshot
type InvoiceStats struct {
	Total      int             `json:"total"`
	Pendientes int             `json:"pendientes"`
	Vencidas   int             `json:"vencidas"`
	TotalDeuda decimal.Decimal `json:"total_deuda"`
}

// ComputeInvoiceStats counts pending and overdue invoices and sums valor_total
// over every invoice that is not paid.
func ComputeInvoiceStats(rows []InvoiceRow) InvoiceStats {
	s := InvoiceStats{Total: len(rows), TotalDeuda: decimal.Zero}
	for _, r := range rows {
		switch r.Status {
		case models.InvoicePending:
			s.Pendientes++
		case models.InvoiceOverdue:
			s.Vencidas++
		}
		if r.Status != models.InvoicePaid {
			s.TotalDeuda = s.TotalDeuda.Add(r.ValorTotal)
		}
	}
	return s
}
