// Package formenc flattens nested parameter trees into bracket-notation
// form fields, a[b][c]=v, with keys sorted at every level.
package formenc

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// Tree is a nested parameter set. Values are leaves (string, bool, any
// integer or float kind, fmt.Stringer) or nested Tree / map[string]any.
type Tree map[string]any

// Flatten turns a tree into ordered key/value pairs:
//
//	{"foo": "bar", "nested": {"a": "b"}} -> foo=bar, nested[a]=b
//
// Keys are emitted in sorted order at every level so the output is stable.
func Flatten(t Tree) ([][2]string, error) {
	var out [][2]string
	if err := flatten("", map[string]any(t), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Encode flattens the tree and returns an application/x-www-form-urlencoded body.
func Encode(t Tree) (string, error) {
	pairs, err := Flatten(t)
	if err != nil {
		return "", err
	}
	v := url.Values{}
	for _, p := range pairs {
		v.Add(p[0], p[1])
	}
	return v.Encode(), nil
}

func flatten(prefix string, m map[string]any, out *[][2]string) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name := k
		if prefix != "" {
			name = prefix + "[" + k + "]"
		}
		switch v := m[k].(type) {
		case Tree:
			if err := flatten(name, map[string]any(v), out); err != nil {
				return err
			}
		case map[string]any:
			if err := flatten(name, v, out); err != nil {
				return err
			}
		case map[string]string:
			sub := make(map[string]any, len(v))
			for sk, sv := range v {
				sub[sk] = sv
			}
			if err := flatten(name, sub, out); err != nil {
				return err
			}
		default:
			s, err := leaf(v)
			if err != nil {
				return fmt.Errorf("formenc: field %q: %w", name, err)
			}
			*out = append(*out, [2]string{name, s})
		}
	}
	return nil
}

func leaf(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case fmt.Stringer:
		return x.String(), nil
	case nil:
		return "", fmt.Errorf("nil value")
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
