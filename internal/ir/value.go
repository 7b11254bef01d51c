package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"
	"unicode/utf16"
)

// IRValue is a sealed interface representing constrained value types.
// Only IRNull, IRString, IRInt, IRBool, IRDate, IRDecimal, IRArray and
// IRObject implement it. There is no float type.
type IRValue interface {
	irValue() // Sealed - only these types implement it
}

// IRNull represents a missing value (an empty optional cell).
type IRNull struct{}

func (IRNull) irValue() {}

// MarshalJSON implements json.Marshaler for IRNull.
func (IRNull) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// IRString represents a string value.
type IRString string

func (IRString) irValue() {}

// IRInt represents an integer value. Always int64.
type IRInt int64

func (IRInt) irValue() {}

// IRBool represents a boolean value.
type IRBool bool

func (IRBool) irValue() {}

// IRArray represents an ordered list of values, used by In and Between.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject represents a map of string keys to values.
// Use SortedKeys() for deterministic iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// NewIRArray creates an IRArray from values.
func NewIRArray(vals ...IRValue) IRArray {
	return IRArray(vals)
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings orders by UTF-8 bytes, which differs for
// supplementary-plane characters.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units.
func compareKeysRFC8785(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

// MarshalIRValue marshals an IRValue to plain JSON for display.
// Not canonical: use MarshalCanonical for hashing.
func MarshalIRValue(v IRValue) ([]byte, error) {
	switch val := v.(type) {
	case IRNull:
		return []byte("null"), nil
	case IRString:
		return json.Marshal(string(val))
	case IRInt:
		return json.Marshal(int64(val))
	case IRBool:
		return json.Marshal(bool(val))
	case IRDate:
		return json.Marshal(val.String())
	case IRDecimal:
		// Decimal text is always a valid JSON number.
		return []byte(val.String()), nil
	case IRArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			elemBytes, err := MarshalIRValue(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			buf.Write(elemBytes)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case IRObject:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyBytes, err := json.Marshal(k)
			if err != nil {
				return nil, fmt.Errorf("marshal key %q: %w", k, err)
			}
			buf.Write(keyBytes)
			buf.WriteByte(':')
			valBytes, err := MarshalIRValue(val[k])
			if err != nil {
				return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
			}
			buf.Write(valBytes)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown IRValue type: %T", v)
	}
}

// FromAny converts a value decoded by encoding/json, yaml.v3 or CUE into an
// IRValue.
//
// Decoders hand back float64 for any number with a fraction; those become
// IRDecimal when they fit three decimal places, otherwise an error is
// returned. A nil input becomes IRNull.
func FromAny(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return IRNull{}, nil
	case IRValue:
		return val, nil
	case string:
		return IRString(val), nil
	case bool:
		return IRBool(val), nil
	case int:
		return IRInt(val), nil
	case int64:
		return IRInt(val), nil
	case uint64:
		if val > 1<<63-1 {
			return nil, fmt.Errorf("number out of int64 range: %d", val)
		}
		return IRInt(val), nil
	case float64:
		return decimalFromFloat(val)
	case float32:
		return decimalFromFloat(float64(val))
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return IRInt(n), nil
		}
		return parseDecimalValue(val.String())
	case time.Time:
		return DateOf(val), nil
	case []any:
		arr := make(IRArray, len(val))
		for i, elem := range val {
			irElem, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = irElem
		}
		return arr, nil
	case []string:
		arr := make(IRArray, len(val))
		for i, elem := range val {
			arr[i] = IRString(elem)
		}
		return arr, nil
	case map[string]any:
		obj := make(IRObject, len(val))
		for k, elem := range val {
			irElem, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = irElem
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// decimalFromFloat converts a decoder float into IRDecimal without going
// through float arithmetic: the shortest decimal text is parsed instead.
func decimalFromFloat(f float64) (IRValue, error) {
	if f == float64(int64(f)) {
		return IRInt(int64(f)), nil
	}
	return parseDecimalValue(strconv.FormatFloat(f, 'f', -1, 64))
}

func parseDecimalValue(s string) (IRValue, error) {
	d, err := ParseIRDecimal(s)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Text renders a scalar value as plain text, the way it appears in a CSV
// cell or a group key. IRNull renders as the empty string.
func Text(v IRValue) string {
	switch val := v.(type) {
	case nil, IRNull:
		return ""
	case IRString:
		return string(val)
	case IRInt:
		return strconv.FormatInt(int64(val), 10)
	case IRBool:
		return strconv.FormatBool(bool(val))
	case IRDate:
		return val.String()
	case IRDecimal:
		return val.String()
	default:
		b, err := MarshalIRValue(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
