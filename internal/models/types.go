package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// timestampLayouts are tried in order; PostgREST omits the zone on timestamp columns
// and returns bare dates for date columns.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp is a lenient point in time. The zero value means missing or unparseable;
// decoding never fails on bad input.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp returns the zero Timestamp when s matches no known layout
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}
		}
	}
	return Timestamp{}
}

// Valid reports whether a time was present and parsed
func (t Timestamp) Valid() bool {
	return !t.Time.IsZero()
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(t.Time.Format(time.RFC3339Nano))), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*t = Timestamp{}
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	*t = ParseTimestamp(s)
	return nil
}

// Value implements the driver.Valuer interface
func (t Timestamp) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, nil
	}
	return t.Time, nil
}

// Scan implements the sql.Scanner interface
func (t *Timestamp) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = Timestamp{}
	case time.Time:
		*t = Timestamp{Time: v}
	case string:
		*t = ParseTimestamp(v)
	case []byte:
		*t = ParseTimestamp(string(v))
	default:
		*t = Timestamp{}
	}
	return nil
}

// GormDataType maps Timestamp to the dialect's time column
func (Timestamp) GormDataType() string {
	return "time"
}

// Amount is a monetary value as the backend sent it. It may arrive as a number
// or as text, and is only interpreted on demand through Decimal.
type Amount string

// Decimal parses the amount; non-numeric or missing input is zero
func (a Amount) Decimal() decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(string(a)))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// AmountFrom formats d as an Amount
func AmountFrom(d decimal.Decimal) Amount {
	return Amount(d.String())
}

// MarshalJSON implements json.Marshaler
func (a Amount) MarshalJSON() ([]byte, error) {
	raw := strings.TrimSpace(string(a))
	if raw == "" {
		return []byte("null"), nil
	}
	if d, err := decimal.NewFromString(raw); err == nil {
		return []byte(d.String()), nil
	}
	return []byte(strconv.Quote(raw)), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*a = ""
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	*a = Amount(s)
	return nil
}

// Value implements the driver.Valuer interface
func (a Amount) Value() (driver.Value, error) {
	raw := strings.TrimSpace(string(a))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("models.Amount: %q is not numeric", raw)
	}
	return d.String(), nil
}

// Scan implements the sql.Scanner interface
func (a *Amount) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*a = ""
	case int64:
		*a = Amount(strconv.FormatInt(v, 10))
	case float64:
		*a = Amount(decimal.NewFromFloat(v).String())
	case []byte:
		*a = Amount(v)
	case string:
		*a = Amount(v)
	default:
		*a = Amount(fmt.Sprint(v))
	}
	return nil
}

// GormDataType maps Amount to a numeric column
func (Amount) GormDataType() string {
	return "numeric"
}
