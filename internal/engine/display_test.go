package engine

import (
	"testing"
	"time"

	"github.com/aethra/acueducto/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatterFailsClosed(t *testing.T) {
	f := NewFormatter("CO")

	assert.Equal(t, Placeholder, f.Plain(Null))
	assert.Equal(t, Placeholder, f.Plain(Text("")))
	assert.Equal(t, Placeholder, f.Date(Null))
	assert.Equal(t, Placeholder, f.Date(Text("2024-01-15")))
	assert.Equal(t, "$0", f.Currency(Null))
	assert.Equal(t, "$0", f.Currency(Text("no numérico")))
	assert.Equal(t, "abc", f.Phone(Text("abc")))
	assert.Equal(t, Placeholder, f.Phone(Null))
}

func TestCurrencyKeepsDecimalPrecision(t *testing.T) {
	f := NewFormatter("CO")

	big := decimal.RequireFromString("12345678901234567.89")
	assert.Equal(t, "$12.345.678.901.234.567,89", f.Currency(Number(big)))
	assert.Equal(t, "$1.500,5", f.Currency(Text("1500.50")))
	assert.Equal(t, "$-2.500", f.Currency(Number(decimal.NewFromInt(-2500))))
	assert.Equal(t, "$999", f.Currency(Number(decimal.NewFromInt(999))))
	assert.Equal(t, "$0,01", f.Currency(Text("0.005")))

	// zero Formatter still renders
	assert.Equal(t, "$150.000", Formatter{}.Currency(Number(decimal.NewFromInt(150000))))
}

func TestFormatterValues(t *testing.T) {
	f := NewFormatter("CO")

	day := models.NewTimestamp(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "15/1/2024", f.Date(Time(day)))
	assert.Equal(t, "$150.000", f.Currency(Number(decimal.NewFromInt(150000))))
	assert.Equal(t, "42", f.Plain(Int(42)))

	text, tone := f.Badge(Text("Vencida"))
	assert.Equal(t, "Vencida", text)
	assert.Equal(t, ToneDanger, tone)
	_, tone = f.Badge(Text("Otro"))
	assert.Equal(t, ToneNeutral, tone)
}

func TestArrearsLabel(t *testing.T) {
	label, tone := ArrearsLabel(0)
	assert.Equal(t, "Al día", label)
	assert.Equal(t, ToneSuccess, tone)

	label, tone = ArrearsLabel(1)
	assert.Equal(t, "1 mes", label)
	assert.Equal(t, ToneWarning, tone)

	label, tone = ArrearsLabel(4)
	assert.Equal(t, "4 meses", label)
	assert.Equal(t, ToneDanger, tone)
}

func TestCellUsesColumnType(t *testing.T) {
	f := NewFormatter("CO")

	c := f.Cell(Column{Key: "meses_atrasados", Type: DisplayArrears}, Int(2))
	assert.Equal(t, "2 meses", c.Text)
	assert.Equal(t, ToneDanger, c.Tone)
	assert.Equal(t, "meses_atrasados", c.Key)

	c = f.Cell(Column{Key: "estado", Type: DisplayBadge}, Text("Activa"))
	assert.Equal(t, ToneSuccess, c.Tone)

	c = f.Cell(Column{Key: "nombre_completo", Type: DisplayComputed}, Text("Ana Ruiz"))
	assert.Equal(t, "Ana Ruiz", c.Text)
}

func TestDatasetViewRendersCells(t *testing.T) {
	fx := newFixture()
	ds := NewInvoicesDataset(EnrichInvoices(fx.invoices, fx.registrations, fx.properties, fx.users, testNow), NewFormatter("CO"))

	v := ds.View(Query{Filter: "vencidas", Sort: Sort{Key: "id", Direction: SortAsc}}, 1, 10)
	assert.Equal(t, KindInvoices, v.Kind)
	assert.Equal(t, "Facturas del Sistema", v.Title)
	assert.Equal(t, 2, v.TotalRows)
	assert.Equal(t, 1, v.TotalPages)
	assert.Equal(t, "vencidas", v.Query.Filter)
	assert.False(t, v.Error)

	first := v.Rows[0]
	assert.Len(t, first.Cells, len(v.Columns))
	byKey := map[string]Cell{}
	for _, c := range first.Cells {
		byKey[c.Key] = c
	}
	assert.Equal(t, "1", byKey["id"].Text)
	assert.Equal(t, "Ana Ruiz", byKey["propietario"].Text)
	assert.Equal(t, "$150.000", byKey["valor_total"].Text)
	assert.Equal(t, "2 meses", byKey["meses_atrasados"].Text)
	assert.Equal(t, ToneDanger, byKey["estado"].Tone)

	row, ok := first.Data.(InvoiceRow)
	assert.True(t, ok)
	assert.Equal(t, int64(1), row.ID)
}

func TestDescribeEveryKind(t *testing.T) {
	for _, k := range Kinds() {
		d := Describe(k)
		assert.NotEmpty(t, d.Title, k)
		assert.NotEmpty(t, d.Columns, k)
		assert.Equal(t, FilterAll, d.Filters[0].Value, k)
	}
	assert.Len(t, Describe(KindRegistrations).Filters, 4)
	assert.Len(t, Describe(KindInvoices).Filters, 3)
	assert.Len(t, Describe(KindRequests).Filters, 2)

	_, ok := ParseKind("facturas")
	assert.True(t, ok)
	_, ok = ParseKind("clientes")
	assert.False(t, ok)
}

func TestInvoiceStats(t *testing.T) {
	fx := newFixture()
	stats := ComputeInvoiceStats(EnrichInvoices(fx.invoices, fx.registrations, fx.properties, fx.users, testNow))

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Pendientes)
	assert.Equal(t, 2, stats.Vencidas)
	// 150000 + 20000 + 50000; the paid invoice is excluded
	assert.Equal(t, "220000", stats.TotalDeuda.String())
}
