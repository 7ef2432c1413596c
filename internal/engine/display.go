package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DisplayType tells the presentation layer how a column is rendered
type DisplayType string

const (
	DisplayPlain    DisplayType = "plain"
	DisplayComputed DisplayType = "computed"
	DisplayDate     DisplayType = "date"
	DisplayCurrency DisplayType = "currency"
	DisplayBadge    DisplayType = "badge"
	DisplayPhone    DisplayType = "phone"
	DisplayArrears  DisplayType = "arrears"
)

// Tone is the colour family of a badge
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
	ToneInfo    Tone = "info"
	ToneNeutral Tone = "neutral"
)

// Placeholder is shown for missing values
const Placeholder = "-"

var badgeTones = map[string]Tone{
	"Activa":      ToneSuccess,
	"Pagada":      ToneSuccess,
	"Completado":  ToneSuccess,
	"Baja":        ToneSuccess,
	"Suspendida":  ToneWarning,
	"Pendiente":   ToneWarning,
	"Media":       ToneWarning,
	"Alta":        ToneWarning,
	"Cancelada":   ToneDanger,
	"Vencida":     ToneDanger,
	"Urgente":     ToneDanger,
	"En Proceso":  ToneInfo,
	"Residencial": ToneInfo,
	"Comercial":   ToneInfo,
	"Industrial":  ToneInfo,
}

// Cell is a display-ready value
type Cell struct {
	Key  string      `json:"key"`
	Type DisplayType `json:"type"`
	Text string      `json:"text"`
	Tone Tone        `json:"tone,omitempty"`
}

// Formatter converts resolved values into cells. Conversions never fail; bad
// input renders as a placeholder.
type Formatter struct {
	PhoneRegion string
	marks       numberMarks
}

// numberMarks are the digit grouping and decimal separators of a locale
type numberMarks struct {
	group   string
	decimal string
}

var currencyLocale = language.MustParse("es-CO")

// localeMarks reads the separators the locale uses when printing a number
func localeMarks(tag language.Tag) numberMarks {
	m := numberMarks{group: ".", decimal: ","}
	var found []rune
	for _, r := range message.NewPrinter(tag).Sprintf("%v", number.Decimal(1234567.5)) {
		if r < '0' || r > '9' {
			found = append(found, r)
		}
	}
	if len(found) >= 2 {
		m.group, m.decimal = string(found[0]), string(found[len(found)-1])
	}
	return m
}

// NewFormatter builds a formatter for Colombian pesos and the given phone region
func NewFormatter(phoneRegion string) Formatter {
	if phoneRegion == "" {
		phoneRegion = "CO"
	}
	return Formatter{
		PhoneRegion: strings.ToUpper(phoneRegion),
		marks:       localeMarks(currencyLocale),
	}
}

// Cell formats v for col
func (f Formatter) Cell(col Column, v Value) Cell {
	c := Cell{Key: col.Key, Type: col.Type}
	switch col.Type {
	case DisplayDate:
		c.Text = f.Date(v)
	case DisplayCurrency:
		c.Text = f.Currency(v)
	case DisplayBadge:
		c.Text, c.Tone = f.Badge(v)
	case DisplayPhone:
		c.Text = f.Phone(v)
	case DisplayArrears:
		c.Text, c.Tone = ArrearsLabel(int(v.Decimal().IntPart()))
	default:
		c.Text = f.Plain(v)
	}
	return c
}

// Plain is the string form or the placeholder
func (f Formatter) Plain(v Value) string {
	if v.IsNull() {
		return Placeholder
	}
	return v.String()
}

// Date renders d/m/yyyy
func (f Formatter) Date(v Value) string {
	t, ok := v.TimeValue()
	if !ok {
		return Placeholder
	}
	return t.Format("2/1/2006")
}

// Currency renders pesos with es-CO grouping; missing or non-numeric values are $0
func (f Formatter) Currency(v Value) string {
	d := v.Decimal()
	if v.kind == kindText {
		if parsed, err := decimal.NewFromString(strings.TrimSpace(v.text)); err == nil {
			d = parsed
		}
	}
	marks := f.marks
	if marks.group == "" {
		marks = localeMarks(currencyLocale)
	}

	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	frac := strings.TrimRight(strings.TrimPrefix(d.Sub(whole).StringFixed(2), "0."), "0")

	out := "$" + sign + groupDigits(whole.String(), marks.group)
	if frac != "" {
		out += marks.decimal + frac
	}
	return out
}

// groupDigits inserts sep every three digits from the right
func groupDigits(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Badge returns the label and its tone
func (f Formatter) Badge(v Value) (string, Tone) {
	if v.IsNull() {
		return Placeholder, ToneNeutral
	}
	tone, ok := badgeTones[v.String()]
	if !ok {
		tone = ToneNeutral
	}
	return v.String(), tone
}

// Phone renders a number in national format, falling back to the raw text
func (f Formatter) Phone(v Value) string {
	if v.IsNull() {
		return Placeholder
	}
	raw := v.String()
	num, err := libphonenumber.Parse(raw, f.PhoneRegion)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return raw
	}
	return libphonenumber.Format(num, libphonenumber.NATIONAL)
}

// ArrearsLabel describes months overdue
func ArrearsLabel(months int) (string, Tone) {
	switch {
	case months <= 0:
		return "Al día", ToneSuccess
	case months == 1:
		return "1 mes", ToneWarning
	default:
		return fmt.Sprintf("%d meses", months), ToneDanger
	}
}
