package executor

import "github.com/ekaya-inc/pgsafe/pkg/value"

// kindFromOID maps PostgreSQL type OIDs to value variants. Unlisted types
// fall back to text; decoding then rejects cells that are not textual.
func kindFromOID(oid uint32) value.Kind {
	switch oid {
	case 16: // bool
		return value.KindBool
	case 20, 21, 23: // int8, int2, int4
		return value.KindInt
	case 700, 701: // float4, float8
		return value.KindFloat
	case 790, 1700: // money, numeric
		return value.KindDecimal
	case 1082: // date
		return value.KindDate
	case 1083: // time
		return value.KindTime
	case 1114, 1184: // timestamp, timestamptz
		return value.KindTimestamp
	case 114, 3802: // json, jsonb
		return value.KindJSON
	case 18, 25, 1042, 1043, 2950: // char, text, bpchar, varchar, uuid
		return value.KindText
	default:
		return value.KindText
	}
}
