// Package record defines the single-row input handed to the prediction
// pipeline and its encoded counterpart.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind is the type of a raw cell value.
type Kind uint8

const (
	// KindInvalid is the zero Value.
	KindInvalid Kind = iota
	// KindString holds a categorical string.
	KindString
	// KindInt holds an integer (tenure, SeniorCitizen, encoded codes).
	KindInt
	// KindFloat holds a real number (MonthlyCharges, TotalCharges).
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "invalid"
	}
}

// Value is one raw cell of a record.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
}

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int returns an integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Parse infers a Value from text: integers, then floats, then strings.
// It is what CLI flags and CSV cells go through.
func Parse(s string) Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Float(f)
	}
	return String(s)
}

// Kind reports the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v was built by one of the constructors.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// Str returns the string payload when v is a string.
func (v Value) Str() (string, bool) {
	return v.s, v.kind == KindString
}

// Float64 returns the numeric payload of an int or float value.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Text is the canonical text form used for category lookups: strings
// verbatim, integers in base 10, floats in the shortest form that
// round-trips (70.0 becomes "70").
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.kind == KindString {
		return strconv.Quote(v.s)
	}
	return v.Text()
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return math.Float64bits(v.f) == math.Float64bits(o.f)
	default:
		return true
	}
}

// MarshalJSON encodes strings as JSON strings and numbers as JSON numbers.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.s)
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("record: cannot encode non-finite float %v", v.f)
		}
		return json.Marshal(v.f)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a JSON string or number. Numbers without a
// fraction or exponent become integers.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("record: empty value")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	case 't', 'f', 'n', '{', '[':
		return fmt.Errorf("record: unsupported value %s (want string or number)", data)
	}
	return v.fromNumber(json.Number(data))
}

func (v *Value) fromNumber(n json.Number) error {
	if i, err := n.Int64(); err == nil {
		*v = Int(i)
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("record: invalid number %q: %w", n.String(), err)
	}
	*v = Float(f)
	return nil
}
