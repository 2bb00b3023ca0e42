package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeObject_PreservesOrder(t *testing.T) {
	var keys []string
	err := DecodeObject([]byte(`{"zeta": 1, "alpha": {"x": [1,2]}, "mid": null}`), func(key string, raw json.RawMessage) error {
		keys = append(keys, key)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys)
}

func TestDecodeObject_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "array", input: `[1,2]`},
		{name: "truncated", input: `{"a": 1`},
		{name: "empty", input: ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DecodeObject([]byte(tt.input), func(string, json.RawMessage) error { return nil })
			assert.Error(t, err)
		})
	}
}

func TestIsJSONNull(t *testing.T) {
	assert.True(t, IsJSONNull(json.RawMessage(" null ")))
	assert.False(t, IsJSONNull(json.RawMessage(`0`)))
}

func TestDecodeObject_StopsOnCallbackError(t *testing.T) {
	var seen []string
	err := DecodeObject([]byte(`{"a": 1, "b": 2, "c": 3}`), func(key string, raw json.RawMessage) error {
		seen = append(seen, key)
		if key == "b" {
			return assert.AnError
		}
		return nil
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []string{"a", "b"}, seen)
}
