// Package keypath converts nested translation trees into flat dot-joined key
// maps and back.
//
// A flat key is the path from the root of a tree to a leaf with segments
// joined by ".". Literal dots and backslashes inside a segment are escaped
// ("\." and "\\") so every flat key maps back to exactly one path:
//
//	{"login": {"title": "Login"}}   ->  "login.title"  = "Login"
//	{"v1.2": {"note": "x"}}         ->  "v1\.2.note"   = "x"
package keypath

import (
	"sort"
	"strconv"
	"strings"

	"github.com/teranos/i18n-sheets/errors"
)

// Tree is a translation tree: each value is a string or another Tree.
type Tree = map[string]any

// Map is a flattened tree: flat key to leaf text.
type Map = map[string]string

const (
	separator = '.'
	escape    = '\\'
)

var (
	// ErrKeyCollision indicates two flat keys disagree on whether a path is a leaf or a container
	ErrKeyCollision = errors.New("key collision")

	// ErrInvalidKey indicates a malformed escape sequence in a flat key
	ErrInvalidKey = errors.New("invalid key")
)

// EscapeSegment escapes separators and escape characters inside one path segment.
func EscapeSegment(seg string) string {
	if !strings.ContainsAny(seg, `.\`) {
		return seg
	}
	var b strings.Builder
	b.Grow(len(seg) + 2)
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		if c == separator || c == escape {
			b.WriteByte(escape)
		}
		b.WriteByte(c)
	}
	return b.String()
}

// JoinKey builds a flat key from raw path segments.
func JoinKey(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, seg := range segments {
		escaped[i] = EscapeSegment(seg)
	}
	return strings.Join(escaped, string(separator))
}

// SplitKey splits a flat key on unescaped separators and unescapes each segment.
func SplitKey(key string) ([]string, error) {
	var segments []string
	var cur strings.Builder

	for i := 0; i < len(key); i++ {
		c := key[i]
		switch c {
		case escape:
			if i+1 >= len(key) {
				return nil, errors.Wrapf(ErrInvalidKey, "%q: trailing escape", key)
			}
			next := key[i+1]
			if next != separator && next != escape {
				return nil, errors.Wrapf(ErrInvalidKey, "%q: unknown escape \\%c", key, next)
			}
			cur.WriteByte(next)
			i++
		case separator:
			segments = append(segments, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(segments, cur.String()), nil
}

// Flatten returns one entry per leaf of tree, keyed by its flat key.
//
// Strings are copied as-is. Other scalars keep their textual form
// (json.Number literals, "true"/"false"); null becomes "". Arrays are
// containers whose segments are the element indexes.
func Flatten(tree Tree) Map {
	out := make(Map)
	for k, child := range tree {
		flattenInto(out, EscapeSegment(k), child)
	}
	return out
}

func flattenInto(out Map, key string, node any) {
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			flattenInto(out, key+string(separator)+EscapeSegment(k), child)
		}
	case []any:
		for i, child := range v {
			flattenInto(out, key+string(separator)+strconv.Itoa(i), child)
		}
	default:
		out[key] = leafText(v)
	}
}

func leafText(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case interface{ String() string }:
		return s.String()
	default:
		return ""
	}
}

// Unflatten rebuilds a tree from a flat map.
//
// Keys are applied in sorted order. A key that needs a container where another
// key already put a leaf, or the reverse, fails with ErrKeyCollision.
func Unflatten(m Map) (Tree, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	root := make(Tree)
	// owner remembers which flat key created each leaf, for error messages
	owner := make(map[string]string, len(keys))

	for _, key := range keys {
		segments, err := SplitKey(key)
		if err != nil {
			return nil, err
		}

		node := root
		for i, seg := range segments[:len(segments)-1] {
			next, exists := node[seg]
			if !exists {
				child := make(Tree)
				node[seg] = child
				node = child
				continue
			}
			child, ok := next.(Tree)
			if !ok {
				path := JoinKey(segments[:i+1]...)
				return nil, errors.Wrapf(ErrKeyCollision, "%q is a value in %q but a group in %q", path, owner[path], key)
			}
			node = child
		}

		last := segments[len(segments)-1]
		if _, exists := node[last]; exists {
			return nil, errors.Wrapf(ErrKeyCollision, "%q is both a value and a group", key)
		}
		node[last] = m[key]
		owner[key] = key
	}

	return root, nil
}
