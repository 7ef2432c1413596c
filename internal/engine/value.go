package engine

import (
	"strings"
	"time"

	"github.com/aethra/acueducto/internal/models"
	"github.com/shopspring/decimal"
)

type valueKind uint8

const (
	kindNull valueKind = iota
	kindText
	kindNumber
	kindTime
)

// Value is a resolved cell. Empty text counts as null so that blanks sort last.
type Value struct {
	kind valueKind
	text string
	num  decimal.Decimal
	at   time.Time
}

// Null is the missing value
var Null = Value{}

// Text wraps s
func Text(s string) Value {
	return Value{kind: kindText, text: s}
}

// Number wraps d
func Number(d decimal.Decimal) Value {
	return Value{kind: kindNumber, num: d}
}

// Int wraps n as a Number
func Int(n int64) Value {
	return Number(decimal.NewFromInt(n))
}

// Time wraps t; a zero time is null
func Time(t models.Timestamp) Value {
	if !t.Valid() {
		return Null
	}
	return Value{kind: kindTime, at: t.Time}
}

// IsNull reports a missing value or empty text
func (v Value) IsNull() bool {
	return v.kind == kindNull || (v.kind == kindText && v.text == "")
}

// String is the form used by search and by mixed-kind comparisons
func (v Value) String() string {
	switch v.kind {
	case kindText:
		return v.text
	case kindNumber:
		return v.num.String()
	case kindTime:
		return v.at.Format(time.RFC3339)
	}
	return ""
}

// Decimal returns the numeric value, zero for other kinds
func (v Value) Decimal() decimal.Decimal {
	if v.kind == kindNumber {
		return v.num
	}
	return decimal.Zero
}

// TimeValue returns the wrapped time and whether v holds one
func (v Value) TimeValue() (time.Time, bool) {
	return v.at, v.kind == kindTime
}

// Compare orders two non-null values: -1, 0 or +1
func (v Value) Compare(o Value) int {
	if v.kind == o.kind {
		switch v.kind {
		case kindNumber:
			return v.num.Cmp(o.num)
		case kindTime:
			return v.at.Compare(o.at)
		}
	}
	return strings.Compare(v.String(), o.String())
}

// contains is the case-insensitive substring test used by search; needle is already lowered
func (v Value) contains(needle string) bool {
	if v.IsNull() {
		return false
	}
	return strings.Contains(strings.ToLower(v.String()), needle)
}
