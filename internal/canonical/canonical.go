// Package canonical encodes JSON-shaped values deterministically: object
// keys sorted by UTF-16 code units, strings in NFC, no HTML escaping and no
// insignificant whitespace. Equal content always yields equal bytes, which
// is what grid documents and snapshot digests rely on.
package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// Marshal produces canonical JSON. Only strings, booleans, integers, []any
// and map[string]any are accepted; floats and null are rejected, so callers
// spell non-integral numbers as strings.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalValue(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return marshalString(buf, val)
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case int:
		fmt.Fprintf(buf, "%d", val)
		return nil
	case int64:
		fmt.Fprintf(buf, "%d", val)
		return nil
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalValue(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	case map[string]any:
		return marshalObject(buf, val)
	case float64, float32:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// marshalObject orders keys by their NFC form, so two spellings of the
// same key sort identically. Keys that collide once normalized are rejected.
func marshalObject(buf *bytes.Buffer, obj map[string]any) error {
	normalized := make(map[string]string, len(obj))
	keys := make([]string, 0, len(obj))
	for k := range obj {
		nk := norm.NFC.String(k)
		if prev, dup := normalized[nk]; dup {
			return fmt.Errorf("keys %q and %q are equal after normalization", prev, k)
		}
		normalized[nk] = k
		keys = append(keys, nk)
	}
	sort.Slice(keys, func(i, j int) bool {
		return compareUTF16(keys[i], keys[j]) < 0
	})

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalString(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := marshalValue(buf, obj[normalized[k]]); err != nil {
			return fmt.Errorf("object[%q]: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func marshalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	// json.Encoder adds a trailing newline.
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

// compareUTF16 orders strings by UTF-16 code units.
func compareUTF16(a, b string) int {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			if ua[i] < ub[i] {
				return -1
			}
			return 1
		}
	}
	return len(ua) - len(ub)
}
