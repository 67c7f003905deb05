package variables

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/dukex/operion-studio/pkg/models"
)

// MaskedValue replaces sensitive values in logs and API responses.
const MaskedValue = "********"

const (
	msgRequired  = "is required"
	msgNotNumber = "must be a number"
	msgNotJSON   = "must be valid JSON"
)

type validateOptions struct {
	strictJSON bool
}

// ValidateOption tunes runtime validation.
type ValidateOption func(*validateOptions)

// WithStrictJSON makes unparsable json/list strings an error instead of passing
// them through as plain strings.
func WithStrictJSON() ValidateOption {
	return func(o *validateOptions) {
		o.strictJSON = true
	}
}

// Validate checks submitted values against the declared variables and returns
// every problem found. An empty result means the values may be dispatched.
func Validate(values map[string]any, defs []models.VariableDefinition, opts ...ValidateOption) []models.VariableError {
	_, errs := Coerce(values, defs, opts...)

	return errs
}

// Coerce validates values and returns them converted to their declared types:
// numbers become float64, JSON strings become structured values, booleans become
// bool and absent values take their default. Undeclared keys pass through.
func Coerce(
	values map[string]any,
	defs []models.VariableDefinition,
	opts ...ValidateOption,
) (map[string]any, []models.VariableError) {
	var o validateOptions
	for _, opt := range opts {
		opt(&o)
	}

	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}

	errs := []models.VariableError{}

	for _, def := range defs {
		raw, present := values[def.Name]
		if present && isBlank(raw, def.Type) {
			present = false
		}

		if !present {
			if !def.HasDefault() {
				if def.Required {
					errs = append(errs, models.VariableError{Variable: def.Name, Error: msgRequired})
				}

				continue
			}

			raw = def.DefaultValue
		}

		value, msg := coerceValue(raw, def.Type, o)
		if msg != "" {
			errs = append(errs, models.VariableError{Variable: def.Name, Error: msg})

			continue
		}

		out[def.Name] = value
	}

	return out, errs
}

// isBlank reports values that count as not supplied: nil, and empty strings for numbers.
func isBlank(v any, t models.VariableType) bool {
	if v == nil {
		return true
	}

	if t == models.VariableTypeNumber {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			return true
		}
	}

	return false
}

func coerceValue(v any, t models.VariableType, o validateOptions) (any, string) {
	switch t {
	case models.VariableTypeNumber:
		n, ok := toNumber(v)
		if !ok {
			return nil, msgNotNumber
		}

		return n, ""
	case models.VariableTypeBoolean:
		return toBool(v), ""
	case models.VariableTypeJSON, models.VariableTypeList:
		s, isString := v.(string)
		if !isString {
			return v, ""
		}

		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			if o.strictJSON {
				return nil, msgNotJSON
			}

			return s, ""
		}

		return parsed, ""
	default:
		return v, ""
	}
}

func toNumber(v any) (float64, bool) {
	var n float64

	switch val := v.(type) {
	case float64:
		n = val
	case float32:
		n = float64(val)
	case int:
		n = float64(val)
	case int32:
		n = float64(val)
	case int64:
		n = float64(val)
	case uint:
		n = float64(val)
	case uint64:
		n = float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}

		n = f
	case string:
		f, ok := parseDecimal(val)
		if !ok {
			return 0, false
		}

		n = f
	case bool:
		if val {
			n = 1
		}
	default:
		return 0, false
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}

	return n, true
}

// parseDecimal accepts decimal and exponent notation only. strconv also takes
// hex floats such as "0x1p3"; those are rejected.
func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)

	unsigned := strings.TrimLeft(s, "+-")
	if strings.HasPrefix(unsigned, "0x") || strings.HasPrefix(unsigned, "0X") {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return f, true
}

// toBool never fails: strconv.ParseBool spellings are honoured, anything else
// is judged by truthiness.
func toBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			return b
		}

		return val != ""
	case nil:
		return false
	default:
		if n, ok := toNumber(val); ok {
			return n != 0
		}

		return true
	}
}

// Mask returns a copy of values with every sensitive or secret variable hidden.
func Mask(values map[string]any, defs []models.VariableDefinition) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}

	for _, def := range defs {
		if !def.Sensitive && def.Type != models.VariableTypeSecret {
			continue
		}

		if _, ok := out[def.Name]; ok {
			out[def.Name] = MaskedValue
		}
	}

	return out
}
