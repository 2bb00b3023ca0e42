package dataset

import (
	"bytes"
	"encoding/json"

	"modelbench/domain/core"
)

// Field is one key/value member of a Row
type Field struct {
	Key   string
	Value Value
}

// Row is a record that remembers the key order it was built or decoded with
type Row struct {
	keys   []string
	values map[string]Value
}

// NewRow builds a row from fields in order. A repeated key keeps its first position.
func NewRow(fields ...Field) Row {
	r := Row{values: make(map[string]Value, len(fields))}
	for _, f := range fields {
		r.set(f.Key, f.Value)
	}
	return r
}

func (r *Row) set(key string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Keys returns the column names in row order
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the value for key and whether the row has it
func (r Row) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Len returns the number of columns in the row
func (r Row) Len() int {
	return len(r.keys)
}

// Equal compares key sets and values, ignoring order
func (r Row) Equal(other Row) bool {
	if len(r.values) != len(other.values) {
		return false
	}
	for k, v := range r.values {
		ov, ok := other.values[k]
		if !ok || !valuesEqual(v, ov) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b Value) bool {
	switch a.(type) {
	case nil, float64, string, bool:
		return a == b
	}
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ab, bb)
}

// MarshalJSON writes the row as an object in row order
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object, keeping member order
func (r *Row) UnmarshalJSON(data []byte) error {
	*r = Row{values: make(map[string]Value)}
	return core.DecodeObject(data, func(key string, raw json.RawMessage) error {
		var v Value
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		r.set(key, v)
		return nil
	})
}
