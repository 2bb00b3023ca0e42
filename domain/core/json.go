package core

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// DecodeObject walks a JSON object in document order, handing each member to fn.
// Column and model ordering follow the server's member order.
func DecodeObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid JSON document")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return fmt.Errorf("expected JSON object, got %s", doc.Type)
	}

	var err error
	doc.ForEach(func(key, value gjson.Result) bool {
		if ferr := fn(key.String(), json.RawMessage(value.Raw)); ferr != nil {
			err = fmt.Errorf("member %q: %w", key.String(), ferr)
			return false
		}
		return true
	})
	return err
}

// IsJSONNull reports whether raw is the literal null
func IsJSONNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
