package importer

import (
	"regexp"
	"strconv"
	"strings"
)

var digitRunRe = regexp.MustCompile(`\d+`)

// Clean coerces a raw cell value into a typed value, more aggressively than
// Normalize: it is used for identifier and count columns where inputs like
// "ft_1" must become 1. Returns nil for empty or missing input. When intFold
// is true floating point values are folded to integers.
func Clean(value any, intFold bool) any {
	switch v := coerce(value).(type) {
	case nil:
		return nil
	case int:
		return v
	case float64:
		if intFold {
			return int(v)
		}
		return v
	case string:
		if v == "" {
			return nil
		}
		v = strings.TrimSpace(v)
		if isDigits(v) {
			n, err := strconv.Atoi(v)
			if err == nil {
				return n
			}
		}
		if strings.Contains(v, "_") {
			if match := digitRunRe.FindString(v); match != "" {
				if n, err := strconv.Atoi(match); err == nil {
					return n
				}
			}
			return v
		}
		return v
	default:
		return nil
	}
}

// Normalize cleans a raw cell value for comparison: strings have internal
// whitespace runs collapsed to single spaces and are trimmed, numeric values
// are folded to integers when intFold is true. Returns nil for empty or
// missing input.
func Normalize(value any, intFold bool) any {
	switch v := coerce(value).(type) {
	case nil:
		return nil
	case string:
		collapsed := strings.Join(strings.Fields(v), " ")
		if collapsed == "" {
			return nil
		}
		return collapsed
	case int:
		if intFold {
			return v
		}
		return strconv.Itoa(v)
	case float64:
		if intFold {
			return int(v)
		}
		return strings.TrimSpace(strconv.FormatFloat(v, 'g', -1, 64))
	default:
		return nil
	}
}

// coerce narrows the value types the rest of the package deals with: raw
// cells are strings, store projections yield sql driver types.
func coerce(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return v
	case int:
		return v
	case *int:
		if v == nil {
			return nil
		}
		return *v
	case *float64:
		if v == nil {
			return nil
		}
		return *v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	case float32:
		return float64(v)
	case float64:
		return v
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		return value
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
