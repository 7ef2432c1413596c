package engine

import (
	"time"

	"github.com/aethra/acueducto/internal/models"
	"github.com/shopspring/decimal"
)

// DaysPerMonth is the fixed month length used for arrears
const DaysPerMonth = 30

const secondsPerDay = 24 * 60 * 60

// Arrears is how far behind an invoice is and what is owed
type Arrears struct {
	DiasVencido         int             `json:"dias_vencido"`
	MesesAtrasados      int             `json:"meses_atrasados"`
	ValorMensual        decimal.Decimal `json:"valor_mensual"`
	ValorMesesAtrasados decimal.Decimal `json:"valor_meses_atrasados"`
	ValorTotal          decimal.Decimal `json:"valor_total"`
}

// ComputeArrears derives arrears for an invoice due on due with monthly amount valor.
// A missing due date counts as not overdue; a non-numeric amount counts as zero.
func ComputeArrears(due models.Timestamp, valor models.Amount, now time.Time) Arrears {
	days := 0
	if due.Valid() {
		// whole seconds, not time.Duration, which saturates after ~292 years
		secs := now.Unix() - due.Unix()
		if now.Nanosecond() < due.Nanosecond() {
			secs--
		}
		if secs > 0 {
			days = int(secs / secondsPerDay)
		}
	}
	months := days / DaysPerMonth

	monthly := valor.Decimal()
	back := monthly.Mul(decimal.NewFromInt(int64(months)))
	return Arrears{
		DiasVencido:         days,
		MesesAtrasados:      months,
		ValorMensual:        monthly,
		ValorMesesAtrasados: back,
		ValorTotal:          monthly.Add(back),
	}
}
