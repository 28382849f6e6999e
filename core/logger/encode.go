package logger

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// keys lists the record's keys: those named in order first, the rest sorted.
func (rec record) keys(order []string) []string {
	keys := make([]string, 0, len(rec))
	seen := make(map[string]bool, len(rec))
	for _, k := range order {
		if _, ok := rec[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	fixed := len(keys)
	for k := range rec {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys[fixed:])
	return keys
}

func (rec record) encodeJSON(order []string) ([]byte, error) {
	b := []byte{'{'}
	for i, k := range rec.keys(order) {
		v, err := json.Marshal(rec[k])
		if err != nil {
			return nil, fmt.Errorf("logger: encode %q: %w", k, err)
		}
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendQuote(b, k)
		b = append(b, ':')
		b = append(b, v...)
	}
	return append(b, '}'), nil
}

func (rec record) encodeKV(order []string) []byte {
	var b []byte
	for i, k := range rec.keys(order) {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, k...)
		b = append(b, '=')
		b = appendKV(b, rec[k])
	}
	return b
}

func appendKV(b []byte, v any) []byte {
	var s string
	switch x := v.(type) {
	case bool:
		return strconv.AppendBool(b, x)
	case int:
		return strconv.AppendInt(b, int64(x), 10)
	case int64:
		return strconv.AppendInt(b, x, 10)
	case uint64:
		return strconv.AppendUint(b, x, 10)
	case float64:
		return strconv.AppendFloat(b, x, 'g', -1, 64)
	case string:
		s = x
	default:
		s = fmt.Sprint(x)
	}
	if strings.IndexFunc(s, needsQuote) >= 0 {
		return strconv.AppendQuote(b, s)
	}
	return append(b, s...)
}

func needsQuote(r rune) bool {
	return r <= ' ' || r == '=' || r == '"'
}
