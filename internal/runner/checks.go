package runner

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// TypeTag is the closed set of response value types a case may assert.
type TypeTag string

const (
	TagString TypeTag = "string"
	TagInt    TypeTag = "int"
	TagFloat  TypeTag = "float"
)

// typePredicates maps each tag to its runtime check. Unknown tags are
// rejected before lookup. A boolean satisfies no numeric tag: the
// bool-is-an-int behavior of earlier versions of this tool was an
// accident of the host language, not a contract.
var typePredicates = map[TypeTag]func(any) bool{
	TagString: func(v any) bool { _, ok := v.(string); return ok },
	TagInt: func(v any) bool {
		n, ok := v.(json.Number)
		return ok && isIntLiteral(n)
	},
	TagFloat: func(v any) bool {
		n, ok := v.(json.Number)
		return ok && !isIntLiteral(n)
	},
}

// isIntLiteral splits numbers the way a JSON lexer does: a fraction or
// exponent makes the literal a float, anything else is an int.
func isIntLiteral(n json.Number) bool {
	return !strings.ContainsAny(n.String(), ".eE")
}

// describeType names a decoded JSON value's runtime type for error text.
func describeType(v any) string {
	switch t := v.(type) {
	case string:
		return "string"
	case json.Number:
		if isIntLiteral(t) {
			return "int"
		}
		return "float"
	case bool:
		return "bool"
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// jsonEqual compares two decoded JSON values with JSON semantics:
// numbers by value (1 equals 1.0), strings by content, booleans only
// against booleans, containers structurally. Both sides must come from
// a UseNumber decoder.
func jsonEqual(a, b any) bool {
	switch av := a.(type) {
	case json.Number:
		bn, ok := b.(json.Number)
		if !ok {
			return false
		}
		af, errA := av.Float64()
		bf, errB := bn.Float64()
		if errA != nil || errB != nil {
			return av.String() == bn.String()
		}
		return af == bf
	case string:
		bs, ok := b.(string)
		return ok && av == bs
	case bool:
		bb, ok := b.(bool)
		return ok && av == bb
	case nil:
		return b == nil
	case map[string]any:
		bm, ok := b.(map[string]any)
		if !ok || len(av) != len(bm) {
			return false
		}
		for k, v := range av {
			bv, present := bm[k]
			if !present || !jsonEqual(v, bv) {
				return false
			}
		}
		return true
	case []any:
		bl, ok := b.([]any)
		if !ok || len(av) != len(bl) {
			return false
		}
		for i := range av {
			if !jsonEqual(av[i], bl[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// checkValues runs the exact-value assertions in sorted key order so
// the first reported failure is deterministic, and stops at the first
// failing key.
func checkValues(expected map[string]any, resp map[string]any) error {
	for _, key := range sortedKeys(expected) {
		actual, ok := resp[key]
		if !ok {
			return &KeyNotFoundError{Key: key}
		}
		if !jsonEqual(expected[key], actual) {
			return &ValueMismatchError{Key: key, Expected: expected[key], Actual: actual}
		}
	}
	return nil
}

// checkTypes runs the type-tag assertions in sorted key order and
// stops at the first failing key.
func checkTypes(expected map[string]string, resp map[string]any) error {
	for _, key := range sortedKeys(expected) {
		tag := TypeTag(expected[key])
		pred, known := typePredicates[tag]
		if !known {
			return &MalformedTestError{Reason: "Expected types allowed: 'string', 'int', 'float'"}
		}
		actual, ok := resp[key]
		if !ok {
			return &KeyNotFoundError{Key: key}
		}
		if !pred(actual) {
			return &TypeMismatchError{Key: key, Expected: tag, Actual: describeType(actual)}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
