// Package value models the closed set of SQL value variants used for
// parameter binding and row decoding. Values travel exclusively on the
// driver's parameter channel; they are never formatted into statement text.
package value

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/ekaya-inc/pgsafe/pkg/apperrors"
)

// Kind tags one of the closed value variants.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindInt
	KindFloat
	KindDecimal
	KindBool
	KindDate
	KindTime
	KindTimestamp
	KindJSON
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindBool:
		return "boolean"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindTimestamp:
		return "timestamp"
	case KindJSON:
		return "json"
	default:
		return "unknown"
	}
}

// TypeMismatchError reports a value that cannot be represented in the
// requested variant. A decode failure rejects the whole row.
type TypeMismatchError struct {
	Expected Kind
	Raw      any
	Reason   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("cannot represent %T as %s: %s", e.Raw, e.Expected, e.Reason)
}

// Is makes errors.Is(err, apperrors.ErrTypeMismatch) hold.
func (e *TypeMismatchError) Is(target error) bool {
	return target == apperrors.ErrTypeMismatch
}

// Value is one tagged value. The zero Value is Null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	dec  decimal.Decimal
	b    bool
	t    time.Time
	raw  json.RawMessage
}

// Null returns the explicit null value. Binding it still consumes a
// placeholder position; it is never folded into literal NULL text.
func Null() Value {
	return Value{kind: KindNull}
}

// Text returns a text value.
func Text(s string) Value {
	return Value{kind: KindText, s: s}
}

// Int returns an integer value. All PostgreSQL integer widths map onto int64.
func Int(i int64) Value {
	return Value{kind: KindInt, i: i}
}

// Float returns a double-precision floating-point value.
func Float(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

// Decimal returns a fixed-point decimal value.
func Decimal(d decimal.Decimal) Value {
	return Value{kind: KindDecimal, dec: d}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Date returns a date value; the time-of-day portion of t is discarded.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Time returns a time-of-day value; the date portion of t is discarded.
func Time(t time.Time) Value {
	return Value{kind: KindTime, t: time.Date(0, time.January, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)}
}

// Timestamp returns a timestamp value.
func Timestamp(t time.Time) Value {
	return Value{kind: KindTimestamp, t: t}
}

// JSON returns a JSON value. Malformed input fails with a TypeMismatchError.
func JSON(raw []byte) (Value, error) {
	if !json.Valid(raw) {
		return Value{}, &TypeMismatchError{Expected: KindJSON, Raw: raw, Reason: "malformed JSON"}
	}
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return Value{kind: KindJSON, raw: cp}, nil
}

// Kind returns the variant tag.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is the explicit null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Driver returns the native argument handed to the driver's parameter
// channel. Null yields nil, which the driver transmits as SQL NULL.
func (v Value) Driver() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindText:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindDecimal:
		return v.dec
	case KindBool:
		return v.b
	case KindDate, KindTimestamp:
		return v.t
	case KindTime:
		usec := int64(v.t.Hour())*3600*1e6 +
			int64(v.t.Minute())*60*1e6 +
			int64(v.t.Second())*1e6 +
			int64(v.t.Nanosecond())/1e3
		return pgtype.Time{Microseconds: usec, Valid: true}
	case KindJSON:
		return v.raw
	default:
		return nil
	}
}

// AsText returns the text payload.
func (v Value) AsText() (string, bool) {
	return v.s, v.kind == KindText
}

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindInt
}

// AsFloat returns the floating-point payload.
func (v Value) AsFloat() (float64, bool) {
	return v.f, v.kind == KindFloat
}

// AsDecimal returns the decimal payload.
func (v Value) AsDecimal() (decimal.Decimal, bool) {
	return v.dec, v.kind == KindDecimal
}

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsTime returns the temporal payload of a date, time, or timestamp value.
func (v Value) AsTime() (time.Time, bool) {
	return v.t, v.kind == KindDate || v.kind == KindTime || v.kind == KindTimestamp
}

// AsJSON returns the raw JSON payload.
func (v Value) AsJSON() (json.RawMessage, bool) {
	return v.raw, v.kind == KindJSON
}

// Equal reports whether two values have the same variant and payload.
// Timestamps compare with time.Time.Equal, decimals with decimal.Equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return v.s == o.s
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindDecimal:
		return v.dec.Equal(o.dec)
	case KindBool:
		return v.b == o.b
	case KindDate, KindTime, KindTimestamp:
		return v.t.Equal(o.t)
	case KindJSON:
		return string(v.raw) == string(o.raw)
	default:
		return false
	}
}

// String renders the payload for logs and error messages.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindText:
		return v.s
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindDecimal:
		return v.dec.String()
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindDate:
		return v.t.Format("2006-01-02")
	case KindTime:
		return v.t.Format("15:04:05.999999")
	case KindTimestamp:
		return v.t.Format("2006-01-02 15:04:05.999999")
	case KindJSON:
		return string(v.raw)
	default:
		return "unknown"
	}
}

// MarshalJSON renders the value for result serialization. Decimals are
// emitted as bare numbers to preserve precision-relevant digits; temporal
// variants use their SQL text forms.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindText:
		return json.Marshal(v.s)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindDecimal:
		return []byte(v.dec.String()), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindDate, KindTime, KindTimestamp:
		return json.Marshal(v.String())
	case KindJSON:
		return v.raw, nil
	default:
		return nil, fmt.Errorf("unmarshalable value kind %d", v.kind)
	}
}
