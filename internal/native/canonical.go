package native

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON for a call tree: object keys
// sorted byte-wise, strings NFC normalized, no HTML escaping, and no
// floats (types and values are rendered as their exact text). Two equal
// trees always serialize to identical bytes, which is what the golden
// snapshot tests and the CLI JSON output rely on.
func MarshalCanonical(n *CallNode) ([]byte, error) {
	if n == nil {
		return nil, fmt.Errorf("cannot marshal nil call node")
	}
	return marshalObject(n.canonicalMap())
}

// canonicalMap flattens a node to the key set that appears in snapshots.
// Optional leaf fields are omitted when empty so interior nodes stay terse.
func (n *CallNode) canonicalMap() map[string]any {
	m := map[string]any{
		"fn":  n.FnName,
		"ret": n.RetType.String(),
	}
	if n.Field != "" {
		m["field"] = n.Field
	}
	if n.Value != "" {
		m["value"] = n.Value
	}
	if len(n.Children) > 0 {
		children := make([]any, len(n.Children))
		for i, c := range n.Children {
			children[i] = c.canonicalMap()
		}
		m["children"] = children
	}
	return m
}

func marshalValue(v any) ([]byte, error) {
	switch val := v.(type) {
	case string:
		return marshalString(val)
	case map[string]any:
		return marshalObject(val)
	case []any:
		return marshalArray(val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

func marshalObject(obj map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalString(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshalValue(obj[k])
		if err != nil {
			return nil, fmt.Errorf("object[%q]: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		eb, err := marshalValue(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(eb)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// marshalString produces a canonical JSON string: NFC normalized at the
// serialization boundary, with HTML escaping disabled.
func marshalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder adds a trailing newline, remove it
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}
	return result, nil
}
