package signature

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// SignField carries the signature inside inbound notifications.
const SignField = "sign"

// Params is a flat request parameter set. Outbound, a nil value stands for an
// absent field.
type Params map[string]any

// CanonicalizeOutbound builds the signing string for a request. Fields whose
// value is falsy (nil, "", numeric zero, false) are left out.
func CanonicalizeOutbound(p Params) string {
	return canonicalize(p, func(_ string, v any) bool {
		return !isFalsy(v)
	})
}

// CanonicalizeInbound builds the signing string for a notification. Only the
// sign field is left out; "", 0 and null are kept, null rendering as "null".
// An absent field is simply not a key of n.
func CanonicalizeInbound(n map[string]any) string {
	return canonicalize(n, func(k string, _ any) bool {
		return k != SignField
	})
}

func canonicalize(fields map[string]any, keep func(k string, v any) bool) string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if keep(k, v) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(FormatValue(fields[k]))
	}
	return b.String()
}

// FormatValue renders a scalar the way it appears in the canonical string.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int8:
		return strconv.FormatInt(int64(t), 10)
	case int16:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint8:
		return strconv.FormatUint(uint64(t), 10)
	case uint16:
		return strconv.FormatUint(uint64(t), 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(raw)
	}
}

func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case json.Number:
		f, err := t.Float64()
		return err == nil && (f == 0 || math.IsNaN(f))
	case int:
		return t == 0
	case int8:
		return t == 0
	case int16:
		return t == 0
	case int32:
		return t == 0
	case int64:
		return t == 0
	case uint:
		return t == 0
	case uint8:
		return t == 0
	case uint16:
		return t == 0
	case uint32:
		return t == 0
	case uint64:
		return t == 0
	case float32:
		return t == 0 || math.IsNaN(float64(t))
	case float64:
		return t == 0 || math.IsNaN(t)
	}
	return false
}
