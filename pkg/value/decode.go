package value

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Decode maps one raw cell from the driver's row representation to the
// expected variant. Unrepresentable conversions fail with a
// TypeMismatchError; callers reject the whole row rather than keep a
// partially decoded one. A nil cell decodes to Null regardless of the
// expected kind.
func Decode(raw any, expected Kind) (Value, error) {
	if raw == nil {
		return Null(), nil
	}

	switch expected {
	case KindText:
		return decodeText(raw)
	case KindInt:
		return decodeInt(raw)
	case KindFloat:
		return decodeFloat(raw)
	case KindDecimal:
		return decodeDecimal(raw)
	case KindBool:
		if b, ok := raw.(bool); ok {
			return Bool(b), nil
		}
	case KindDate:
		if t, ok := raw.(time.Time); ok {
			return Date(t), nil
		}
	case KindTime:
		return decodeTime(raw)
	case KindTimestamp:
		if t, ok := raw.(time.Time); ok {
			return Timestamp(t), nil
		}
	case KindJSON:
		return decodeJSON(raw)
	}

	return Value{}, &TypeMismatchError{Expected: expected, Raw: raw, Reason: "unsupported raw representation"}
}

func decodeText(raw any) (Value, error) {
	switch r := raw.(type) {
	case string:
		return Text(r), nil
	case []byte:
		return Text(string(r)), nil
	case [16]byte:
		// UUID cells surface as raw bytes; render the canonical form.
		return Text(uuid.UUID(r).String()), nil
	}
	return Value{}, &TypeMismatchError{Expected: KindText, Raw: raw, Reason: "not a textual cell"}
}

func decodeInt(raw any) (Value, error) {
	switch r := raw.(type) {
	case int64:
		return Int(r), nil
	case int32:
		return Int(int64(r)), nil
	case int16:
		return Int(int64(r)), nil
	case int:
		return Int(int64(r)), nil
	}
	return Value{}, &TypeMismatchError{Expected: KindInt, Raw: raw, Reason: "not an integer cell"}
}

func decodeFloat(raw any) (Value, error) {
	switch r := raw.(type) {
	case float64:
		return Float(r), nil
	case float32:
		return Float(float64(r)), nil
	}
	return Value{}, &TypeMismatchError{Expected: KindFloat, Raw: raw, Reason: "not a floating-point cell"}
}

func decodeDecimal(raw any) (Value, error) {
	switch r := raw.(type) {
	case pgtype.Numeric:
		if !r.Valid {
			return Null(), nil
		}
		if r.NaN || r.InfinityModifier != pgtype.Finite {
			return Value{}, &TypeMismatchError{Expected: KindDecimal, Raw: raw, Reason: "NaN or infinity is not representable"}
		}
		return Decimal(decimal.NewFromBigInt(r.Int, r.Exp)), nil
	case string:
		d, err := decimal.NewFromString(r)
		if err != nil {
			return Value{}, &TypeMismatchError{Expected: KindDecimal, Raw: raw, Reason: err.Error()}
		}
		return Decimal(d), nil
	case int64:
		return Decimal(decimal.NewFromInt(r)), nil
	}
	return Value{}, &TypeMismatchError{Expected: KindDecimal, Raw: raw, Reason: "not a numeric cell"}
}

func decodeTime(raw any) (Value, error) {
	switch r := raw.(type) {
	case pgtype.Time:
		if !r.Valid {
			return Null(), nil
		}
		usec := r.Microseconds
		return Time(time.Date(0, time.January, 1,
			int(usec/3_600_000_000),
			int(usec/60_000_000%60),
			int(usec/1_000_000%60),
			int(usec%1_000_000)*1_000,
			time.UTC)), nil
	case time.Time:
		return Time(r), nil
	}
	return Value{}, &TypeMismatchError{Expected: KindTime, Raw: raw, Reason: "not a time-of-day cell"}
}

func decodeJSON(raw any) (Value, error) {
	if b, ok := raw.([]byte); ok {
		v, err := JSON(b)
		if err != nil {
			return Value{}, err
		}
		return v, nil
	}
	// The driver decodes json/jsonb cells into generic Go values; re-marshal
	// to recover the raw document.
	b, err := json.Marshal(raw)
	if err != nil {
		return Value{}, &TypeMismatchError{Expected: KindJSON, Raw: raw, Reason: err.Error()}
	}
	return Value{kind: KindJSON, raw: b}, nil
}
