package upstream

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Field maps a gjson path in an upstream document onto a key of the shaped
// body.
type Field struct {
	Key  string
	Path string
}

// Pick builds a body holding only the selected fields of doc. A field missing
// from doc is an error, the upstream changed shape.
func Pick(doc []byte, fields ...Field) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(fields))
	for _, f := range fields {
		result := gjson.GetBytes(doc, f.Path)
		if !result.Exists() {
			return nil, errors.Errorf("upstream document has no '%s'", f.Path)
		}
		out[f.Key] = json.RawMessage(result.Raw)
	}
	return out, nil
}

// Wrap nests the whole of doc under key.
func Wrap(key string, doc []byte) map[string]json.RawMessage {
	return map[string]json.RawMessage{key: json.RawMessage(doc)}
}
