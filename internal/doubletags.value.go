package internal

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Kind is the closed set of value shapes the engine distinguishes
type Kind int

// Kind constants
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindText
	KindSequence
	KindMapping
	KindCallable
	KindObject
)

var kindNames = [...]string{"null", "bool", "number", "text", "sequence", "mapping", "callable", "object"}

// String returns the lowercase kind name
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindObject]
}

// Lambda is a lazily evaluated view value. It receives the context it was
// looked up from and its result replaces it.
type Lambda func(ctx map[string]any) any

// KindOf classifies a view value
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case string:
		return KindText
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return KindNumber
	case []any:
		return KindSequence
	case map[string]any, map[string]string:
		return KindMapping
	case Lambda, func(map[string]any) any, func() any, func() string:
		return KindCallable
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return KindNull
		}
		return KindObject
	case reflect.Bool:
		return KindBool
	case reflect.String:
		return KindText
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.Slice, reflect.Array:
		return KindSequence
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return KindMapping
		}
		return KindObject
	default:
		return KindObject
	}
}

// IsTruthy reports whether a value selects the main branch of a section
func IsTruthy(v any) bool {
	switch KindOf(v) {
	case KindNull:
		return false
	case KindBool:
		return reflect.ValueOf(v).Bool()
	case KindNumber:
		f, ok := toFloat(v)
		return ok && f != 0 && !math.IsNaN(f)
	case KindText:
		return reflect.ValueOf(v).Len() > 0
	case KindSequence:
		return reflect.ValueOf(v).Len() > 0
	default:
		return true
	}
}

// Items returns the elements of a sequence in order
func Items(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items
}

// Index returns the i-th element of a sequence, or nil when out of range
func Index(v any, i int) any {
	if s, ok := v.([]any); ok {
		if i < len(s) {
			return s[i]
		}
		return nil
	}
	rv := reflect.ValueOf(v)
	if (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || i >= rv.Len() {
		return nil
	}
	return rv.Index(i).Interface()
}

// MapGet returns the value stored under key in a mapping
func MapGet(v any, key string) (any, bool) {
	switch m := v.(type) {
	case map[string]any:
		val, ok := m[key]
		return val, ok
	case map[string]string:
		val, ok := m[key]
		return val, ok
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	val := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
	if !val.IsValid() {
		return nil, false
	}
	return val.Interface(), true
}

// AsMapping returns a mapping value as map[string]any.
// map[string]any values are returned as-is, other string-keyed maps are copied.
func AsMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// Call invokes a callable value with the given receiver context
func Call(v any, receiver map[string]any) any {
	switch fn := v.(type) {
	case Lambda:
		return fn(receiver)
	case func(map[string]any) any:
		return fn(receiver)
	case func() any:
		return fn()
	case func() string:
		return fn()
	}
	return v
}

// Stringify converts a value to its rendered text form
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return StringValueEmpty
	case string:
		return val
	case bool:
		if val {
			return StringValueTrue
		}
		return StringValueFalse
	case json.Number:
		return val.String()
	case fmt.Stringer:
		return val.String()
	case error:
		return val.Error()
	}

	switch KindOf(v) {
	case KindNull:
		return StringValueEmpty
	case KindBool:
		return Stringify(reflect.ValueOf(v).Bool())
	case KindText:
		return reflect.ValueOf(v).String()
	case KindNumber:
		return formatNumber(reflect.ValueOf(v))
	case KindSequence:
		items := Items(v)
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, SeqSeparator)
	case KindMapping:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(v)
}

func formatNumber(rv reflect.Value) string {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), IntBase10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), IntBase10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), FloatFormatFlag, FloatPrecisionAll, FloatBitSize32)
	default:
		return strconv.FormatFloat(rv.Float(), FloatFormatFlag, FloatPrecisionAll, FloatBitSize64)
	}
}

func toFloat(v any) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
