// Package dataset holds the uploaded table: ordered rows of JSON scalars, their
// display formatting and the numerical/categorical feature heuristic.
package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Value is a decoded JSON scalar: nil, float64, string or bool
type Value = interface{}

// TypeTag names the runtime type of a cell as shown in the schema panel
type TypeTag string

const (
	TypeNumber    TypeTag = "number"
	TypeString    TypeTag = "string"
	TypeBoolean   TypeTag = "boolean"
	TypeNull      TypeTag = "null"
	TypeUndefined TypeTag = "undefined"
	TypeObject    TypeTag = "object"
)

// TypeOf tags v. present is false when the row has no such key.
func TypeOf(v Value, present bool) TypeTag {
	if !present {
		return TypeUndefined
	}
	switch v.(type) {
	case nil:
		return TypeNull
	case float64, float32, int, int64:
		return TypeNumber
	case string:
		return TypeString
	case bool:
		return TypeBoolean
	default:
		return TypeObject
	}
}

// FormatValue renders a cell the way a browser template literal would
func FormatValue(v Value, present bool) string {
	if !present {
		return "undefined"
	}
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return FormatNumber(x)
	case float32:
		return FormatNumber(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case []interface{}:
		parts := make([]string, len(x))
		for i, item := range x {
			if item != nil {
				parts[i] = FormatValue(item, true)
			}
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

// FormatNumber gives the shortest round-tripping decimal form, switching to
// exponent notation outside [1e-6, 1e21)
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[0]
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mantissa + "e" + string(sign) + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// AsFloat reports the numeric reading of v: numbers as-is, strings when they parse
func AsFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		return parseNumber(x)
	default:
		return 0, false
	}
}

// parseNumber reads a whole trimmed string as a number. NaN never counts and
// the only infinity spelling accepted is "Infinity".
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	if math.IsInf(f, 0) && strings.TrimLeft(s, "+-") != "Infinity" {
		return 0, false
	}
	return f, true
}
