package keypath

import (
	"bytes"
	"encoding/json"
	"io"
	"unicode/utf8"

	"github.com/teranos/i18n-sheets/errors"
)

// ErrNotObject indicates a translation file whose top level is not a JSON object
var ErrNotObject = errors.New("translation file must contain a JSON object")

// Decode parses the JSON text of a translation file.
// Number literals are kept verbatim so they flatten to the text the file had.
func Decode(data []byte) (Tree, error) {
	if !utf8.Valid(data) {
		return nil, errors.New("file is not valid UTF-8")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(err, "invalid JSON")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("invalid JSON: unexpected data after top-level value")
	}

	tree, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return tree, nil
}

// Encode renders tree as two-space indented JSON with sorted keys and a
// trailing newline. HTML characters are left unescaped.
func Encode(tree Tree) ([]byte, error) {
	if tree == nil {
		tree = Tree{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tree); err != nil {
		return nil, errors.Wrap(err, "failed to encode translations")
	}
	return buf.Bytes(), nil
}
