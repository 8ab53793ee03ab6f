package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i2y/foxbridge/internal/domain"
)

func TestBuildRegistry(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	reg, err := domain.BuildRegistry([]domain.SchemaEntry{
		{ID: 42, ProjectID: 7, JSONSchema: json.RawMessage(`{"type":"object","properties":{"id":{"type":"integer"}}}`)},
		{ID: 43, ProjectID: 8, JSONSchema: json.RawMessage(`{"type":"string"}`)},
	})
	require.NoError(err)
	assert.Equal(2, reg.Len())
	assert.Equal(int64(7), reg.ProjectID(), "project id comes from the first entry")

	empty, err := domain.BuildRegistry(nil)
	require.NoError(err)
	assert.Equal(0, empty.Len())
	assert.Equal(int64(0), empty.ProjectID())
}

func TestBuildRegistry_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "null body", raw: `null`},
		{name: "not an object", raw: `[1,2]`},
		{name: "broken json", raw: `{"type":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.BuildRegistry([]domain.SchemaEntry{{ID: 5, JSONSchema: json.RawMessage(tt.raw)}})
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrMalformedSchema))

			var schemaErr *domain.MalformedSchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, "5", schemaErr.SchemaID)
		})
	}
}

func TestRegistry_Resolve(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	body := `{"type":"object","title":"User","properties":{"name":{"type":"string"}},"required":["name"]}`
	reg, err := domain.BuildRegistry([]domain.SchemaEntry{
		{ID: 42, JSONSchema: json.RawMessage(body)},
		{ID: 9, JSONSchema: json.RawMessage(`{"$ref":"#/definitions/42"}`)},
	})
	require.NoError(err)

	for _, ref := range []string{"#/definitions/42", "42", "definitions/42"} {
		got, err := reg.Resolve(ref)
		require.NoError(err, ref)
		assert.JSONEq(body, mustJSON(t, got), ref)
	}

	// One hop only: an alias entry comes back as the reference it holds.
	alias, err := reg.Resolve("#/definitions/9")
	require.NoError(err)
	assert.Equal("#/definitions/42", alias.Ref())
}

func TestRegistry_KeepsEveryKeyword(t *testing.T) {
	// Keywords outside the OpenAPI 3.0 schema model, and siblings of a $ref,
	// come back unchanged.
	body := `{"type":"object","required":"id","properties":{
		"age":{"type":"integer","exclusiveMinimum":0,"const":12345678901234567890},
		"owner":{"$ref":"#/definitions/1","description":"owner","x-apifox-overrides":{"name":null}}
	}}`
	reg, err := domain.BuildRegistry([]domain.SchemaEntry{{ID: 42, JSONSchema: json.RawMessage(body)}})
	require.NoError(t, err)

	got, err := reg.Resolve("42")
	require.NoError(t, err)
	encoded, err := got.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, body, encoded)
	assert.Contains(t, encoded, "12345678901234567890")
}

func TestRegistry_Resolve_ReturnsCopies(t *testing.T) {
	require := require.New(t)
	reg, err := domain.BuildRegistry([]domain.SchemaEntry{
		{ID: 1, JSONSchema: json.RawMessage(`{"type":"object","properties":{"a":{"type":"string"}}}`)},
	})
	require.NoError(err)

	first, err := reg.Resolve("#/definitions/1")
	require.NoError(err)
	props, ok := first.Child(domain.KeyProperties)
	require.True(ok)
	delete(props, "a")

	second, err := reg.Resolve("#/definitions/1")
	require.NoError(err)
	props, ok = second.Child(domain.KeyProperties)
	require.True(ok)
	assert.Contains(t, props, "a")
}

func TestRegistry_Resolve_Unresolved(t *testing.T) {
	reg, err := domain.BuildRegistry(nil)
	require.NoError(t, err)

	for _, ref := range []string{"#/definitions/404", "", "#/definitions/"} {
		_, err := reg.Resolve(ref)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrUnresolvedReference))
		assert.True(t, domain.IsDataIntegrity(err))

		var refErr *domain.UnresolvedReferenceError
		require.True(t, errors.As(err, &refErr))
		assert.Equal(t, ref, refErr.Ref)
	}
}

func TestRefKey(t *testing.T) {
	assert.Equal(t, "42", domain.RefKey("#/definitions/42"))
	assert.Equal(t, "42", domain.RefKey("42"))
	assert.Equal(t, "", domain.RefKey("#/definitions/"))
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
