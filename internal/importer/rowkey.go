package importer

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate columns get their own numeric normalization so that "45",
// "45.0" and the stored float 45.0 compare equal.
const (
	columnLatitude  = "location_latitude"
	columnLongitude = "location_longitude"
)

// Key is a semantic deduplication key: an order-sensitive encoding of the
// normalized values of a fixed field list. Two rows are duplicates iff
// their keys are equal.
type Key string

// MakeKey builds the semantic key of a row over the given fields, in field
// order. Coordinate fields are normalized through their floating point
// representation; all other fields through Normalize.
func MakeKey(row map[string]any, fields []string, intFold bool) Key {
	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		var v any
		if field == columnLatitude || field == columnLongitude {
			v = normalizeCoordinate(row[field])
		} else {
			v = Normalize(row[field], intFold)
		}
		writeKeyElem(&b, v)
	}
	return Key(b.String())
}

// writeKeyElem encodes one key element with a type tag so that nil, 1,
// 1.0 and "1" stay distinct.
func writeKeyElem(b *strings.Builder, v any) {
	switch t := v.(type) {
	case nil:
		b.WriteByte('~')
	case int:
		b.WriteByte('i')
		b.WriteString(strconv.Itoa(t))
	case float64:
		b.WriteByte('f')
		b.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
	case string:
		b.WriteByte('s')
		b.WriteString(t)
	default:
		b.WriteByte('s')
		fmt.Fprint(b, t)
	}
}

// normalizeCoordinate maps a latitude/longitude cell to its canonical
// string form: numeric values and numeric strings go through the float
// formatter, non-numeric strings are kept trimmed, empty becomes nil.
func normalizeCoordinate(value any) any {
	switch v := coerce(value).(type) {
	case nil:
		return nil
	case int:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return v
	default:
		return nil
	}
}
