package schema

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	params := Object(map[string]*openapi3.Schema{
		"path":    String("File path"),
		"limit":   Integer("Byte limit"),
		"dry_run": Boolean("Skip writes"),
	}, "path")

	t.Run("valid args pass", func(t *testing.T) {
		err := Validate(params, map[string]any{
			"path":  "notes.txt",
			"limit": float64(100), // JSON numbers decode as float64
		})
		assert.NoError(t, err)
	})

	t.Run("missing required field fails", func(t *testing.T) {
		err := Validate(params, map[string]any{"limit": float64(10)})
		require.Error(t, err)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Error(), "path")
	})

	t.Run("wrong type fails", func(t *testing.T) {
		err := Validate(params, map[string]any{"path": 42})
		require.Error(t, err)
	})

	t.Run("nil schema accepts anything", func(t *testing.T) {
		assert.NoError(t, Validate(nil, map[string]any{"whatever": true}))
	})

	t.Run("nil args validate against required", func(t *testing.T) {
		err := Validate(params, nil)
		require.Error(t, err)
	})
}

func TestEnum(t *testing.T) {
	s := Object(map[string]*openapi3.Schema{
		"mode": Enum("Operation mode", "append", "overwrite"),
	}, "mode")

	assert.NoError(t, Validate(s, map[string]any{"mode": "append"}))
	assert.Error(t, Validate(s, map[string]any{"mode": "truncate"}))
}

func TestAsMap(t *testing.T) {
	t.Run("nil schema yields empty object", func(t *testing.T) {
		m := AsMap(nil)
		assert.Equal(t, "object", m["type"])
	})

	t.Run("properties survive the round trip", func(t *testing.T) {
		m := AsMap(Object(map[string]*openapi3.Schema{
			"path": String("File path"),
		}, "path"))

		assert.Equal(t, "object", m["type"])
		props, ok := m["properties"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, props, "path")
	})
}
