package yapi_test

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i2y/foxbridge/internal/adapter/outbound/yapi"
	"github.com/i2y/foxbridge/internal/domain"
)

const (
	userSchema  = `{"type":"object","title":"User","properties":{"id":{"type":"integer"},"name":{"type":"string"}},"required":["id"]}`
	orderSchema = `{"type":"object","properties":{"x":{"type":"string","description":"order number"}}}`
)

func newGenerator() *yapi.InterfaceGenerator {
	return yapi.NewInterfaceGenerator(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func testRegistry(t *testing.T) *domain.Registry {
	reg, err := domain.BuildRegistry([]domain.SchemaEntry{
		{ID: 7, ProjectID: 70, JSONSchema: json.RawMessage(userSchema)},
		{ID: 3, ProjectID: 70, JSONSchema: json.RawMessage(orderSchema)},
	})
	require.NoError(t, err)
	return reg
}

func schema(t *testing.T, raw string) json.RawMessage {
	t.Helper()
	require.True(t, json.Valid([]byte(raw)), raw)
	return json.RawMessage(raw)
}

func descriptor(t *testing.T) domain.EndpointDescriptor {
	return domain.EndpointDescriptor{
		ID:          101,
		Name:        "list users",
		OperationID: "listUsers",
		Method:      "get",
		Path:        "/users/{org}",
		Tags:        []string{"users"},
		ProjectID:   70,
		FolderID:    1,
		Parameters: domain.Parameters{
			Path:  []domain.Parameter{{Name: "org", Description: "organisation", Required: true, Type: "string"}},
			Query: []domain.Parameter{{Name: "page", Required: false, Type: "integer"}},
		},
		Responses: []domain.Response{
			{ID: 1, Code: 404, JSONSchema: schema(t, `{"type":"object"}`)},
			{ID: 2, Code: 200, JSONSchema: schema(t, `{"type":"object","properties":{"code":{"type":"integer"},"data":{"type":"array","items":{"$ref":"#/definitions/7"}}}}`)},
		},
		CreatedAt: "2023-01-02T03:04:05.999Z",
		UpdatedAt: "2023-01-02T03:04:06+08:00",
	}
}

func TestGenerate_ResponseArrayItemRef(t *testing.T) {
	iface, err := newGenerator().Generate(descriptor(t), testRegistry(t), domain.Category{ID: 1, Name: "users"}, domain.NewProject(70))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(iface.ResBody), &body))
	items := body["properties"].(map[string]any)["data"].(map[string]any)["items"]
	assert.JSONEq(t, userSchema, mustJSON(t, items))
	assert.True(t, iface.ResBodyIsJSONSchema)
	assert.Equal(t, domain.ResponseBodyJSON, iface.ResBodyType)
}

func TestGenerate_ResponseNestedPropertyRef(t *testing.T) {
	desc := descriptor(t)
	desc.Responses[1].JSONSchema = schema(t, `{"type":"object","properties":{"data":{"type":"object","properties":{
		"users":{"type":"array","items":{"$ref":"#/definitions/7"}},
		"total":{"type":"integer"},
		"tags":{"type":"array","items":{"type":"string"}},
		"nested":{"type":"object","properties":{"deep":{"type":"array","items":{"$ref":"#/definitions/404"}}}}
	}}}}`)

	iface, err := newGenerator().Generate(desc, testRegistry(t), domain.Category{ID: 1}, domain.NewProject(70))
	require.NoError(t, err, "refs below data.<property> are not inspected")

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(iface.ResBody), &body))
	props := body["properties"].(map[string]any)["data"].(map[string]any)["properties"].(map[string]any)
	assert.JSONEq(t, userSchema, mustJSON(t, props["users"].(map[string]any)["items"]))
	assert.JSONEq(t, `{"type":"string"}`, mustJSON(t, props["tags"].(map[string]any)["items"]))
	assert.Contains(t, mustJSON(t, props["nested"]), "#/definitions/404")
}

func TestGenerate_RequestBodyComposedRef(t *testing.T) {
	desc := descriptor(t)
	desc.RequestBody = domain.RequestBody{
		Type: "application/json",
		JSONSchema: schema(t, `{"type":"object","title":"create","properties":{"A":{"$ref":"#/definitions/3"}},
			"x-apifox-refs":{"A":{"$ref":"#/definitions/3","required":["x"]},"B":{"$ref":"#/definitions/404"}},
			"x-apifox-orders":["A","B"],
			"x-apifox-folder":"orders"}`),
	}

	iface, err := newGenerator().Generate(desc, testRegistry(t), domain.Category{ID: 1}, domain.NewProject(70))
	require.NoError(t, err, "keys after the first ordering key are ignored")

	assert.Equal(t, domain.RequestBodyJSON, iface.ReqBodyType)
	assert.True(t, iface.ReqBodyIsJSONSchema)
	require.Equal(t, []domain.Header{{Name: "Content-Type", Value: "application/json", Required: domain.RequiredTrue}}, iface.ReqHeaders)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(iface.ReqBodyOther), &body))
	assert.JSONEq(t, `{"x":{"type":"string","description":"order number"}}`, mustJSON(t, body["properties"]))
	assert.Equal(t, []any{"x"}, body["required"])
	assert.NotContains(t, body, "x-apifox-refs")
	assert.NotContains(t, body, "x-apifox-orders")
	assert.Equal(t, "orders", body["x-apifox-folder"])
	assert.Equal(t, "create", body["title"])
}

func TestGenerate_KeepsReferenceSiblings(t *testing.T) {
	owner := `{"$ref":"#/definitions/7","description":"the <owner>","x-apifox-overrides":{"name":null}}`
	desc := descriptor(t)
	desc.Responses[1].JSONSchema = schema(t, `{"type":"object","properties":{"data":{"type":"object","properties":{"owner":`+owner+`}}}}`)
	desc.RequestBody = domain.RequestBody{
		Type:       "application/json",
		JSONSchema: schema(t, `{"type":"object","properties":{"owner":`+owner+`},"x-apifox-orders":["owner"]}`),
	}

	iface, err := newGenerator().Generate(desc, testRegistry(t), domain.Category{ID: 1}, domain.NewProject(70))
	require.NoError(t, err, "a ref outside the substitution sites is left alone")

	assert.JSONEq(t, `{"type":"object","properties":{"data":{"type":"object","properties":{"owner":`+owner+`}}}}`, iface.ResBody)
	assert.JSONEq(t, `{"type":"object","properties":{"owner":`+owner+`},"x-apifox-orders":["owner"]}`, iface.ReqBodyOther)
	assert.Contains(t, iface.ResBody, `"the <owner>"`, "no HTML escaping")
}

func TestGenerate_SubstitutesRegistryBodyVerbatim(t *testing.T) {
	body := `{"type":"object","description":"page of users","properties":{
		"owner":{"$ref":"#/definitions/3","description":"kept as is"},
		"age":{"type":"integer","exclusiveMinimum":0,"maximum":9007199254740993}
	},"x-apifox-orders":["owner","age"]}`
	reg, err := domain.BuildRegistry([]domain.SchemaEntry{{ID: 8, ProjectID: 70, JSONSchema: json.RawMessage(body)}})
	require.NoError(t, err)

	desc := descriptor(t)
	desc.Responses[1].JSONSchema = schema(t, `{"properties":{"data":{"type":"array","items":{"$ref":"#/definitions/8"}}}}`)
	iface, err := newGenerator().Generate(desc, reg, domain.Category{ID: 1}, domain.NewProject(70))
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(iface.ResBody), &res))
	assert.JSONEq(t, body, mustJSON(t, res["properties"].(map[string]any)["data"].(map[string]any)["items"]))
	assert.Contains(t, iface.ResBody, "9007199254740993", "numbers keep their digits")
}

func TestGenerate_EmptyComposedReferenceSet(t *testing.T) {
	desc := descriptor(t)
	desc.RequestBody = domain.RequestBody{
		Type: "application/json",
		JSONSchema: schema(t, `{"type":"object","properties":{"name":{"type":"string"}},"required":["name"],
			"x-apifox-refs":{},"x-apifox-orders":["name"]}`),
	}

	iface, err := newGenerator().Generate(desc, testRegistry(t), domain.Category{ID: 1}, domain.NewProject(70))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","properties":{"name":{"type":"string"}},"required":["name"],"x-apifox-orders":["name"]}`, iface.ReqBodyOther)
}

func TestGenerate_DoesNotMutateDescriptor(t *testing.T) {
	desc := descriptor(t)
	before := string(desc.Responses[1].JSONSchema)
	_, err := newGenerator().Generate(desc, testRegistry(t), domain.Category{ID: 1}, domain.NewProject(70))
	require.NoError(t, err)
	assert.Equal(t, before, string(desc.Responses[1].JSONSchema))
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, d *domain.EndpointDescriptor)
		check  func(t *testing.T, err error)
	}{
		{
			name: "unresolved response reference",
			mutate: func(t *testing.T, d *domain.EndpointDescriptor) {
				d.Responses[1].JSONSchema = schema(t, `{"properties":{"data":{"type":"array","items":{"$ref":"#/definitions/99"}}}}`)
			},
			check: func(t *testing.T, err error) {
				var refErr *domain.UnresolvedReferenceError
				require.True(t, errors.As(err, &refErr))
				assert.Equal(t, "#/definitions/99", refErr.Ref)
				assert.Equal(t, int64(101), refErr.EndpointID)
			},
		},
		{
			name: "unresolved composed reference",
			mutate: func(t *testing.T, d *domain.EndpointDescriptor) {
				d.RequestBody.JSONSchema = schema(t, `{"type":"object","x-apifox-refs":{"A":{"$ref":"#/definitions/55"}},"x-apifox-orders":["A"]}`)
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrUnresolvedReference)
			},
		},
		{
			name: "composed reference without ordering",
			mutate: func(t *testing.T, d *domain.EndpointDescriptor) {
				d.RequestBody.JSONSchema = schema(t, `{"type":"object","x-apifox-refs":{"A":{"$ref":"#/definitions/3"}}}`)
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrMalformedSchema)
			},
		},
		{
			name: "ordering key missing from refs",
			mutate: func(t *testing.T, d *domain.EndpointDescriptor) {
				d.RequestBody.JSONSchema = schema(t, `{"type":"object","x-apifox-refs":{"A":{"$ref":"#/definitions/3"}},"x-apifox-orders":["Z"]}`)
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrMalformedSchema)
			},
		},
		{
			name: "response schema is not an object",
			mutate: func(t *testing.T, d *domain.EndpointDescriptor) {
				d.Responses[1].JSONSchema = schema(t, `[1,2]`)
			},
			check: func(t *testing.T, err error) {
				var malformed *domain.MalformedSchemaError
				require.True(t, errors.As(err, &malformed))
				assert.Equal(t, int64(101), malformed.EndpointID)
			},
		},
		{
			name: "no success response",
			mutate: func(t *testing.T, d *domain.EndpointDescriptor) {
				d.Responses = d.Responses[:1]
			},
			check: func(t *testing.T, err error) {
				var missing *domain.MissingSuccessResponseError
				require.True(t, errors.As(err, &missing))
				assert.Equal(t, int64(101), missing.EndpointID)
			},
		},
		{
			name: "unparseable timestamp",
			mutate: func(t *testing.T, d *domain.EndpointDescriptor) {
				d.UpdatedAt = "yesterday"
			},
			check: func(t *testing.T, err error) {
				var malformed *domain.MalformedDescriptorError
				require.True(t, errors.As(err, &malformed))
				assert.Equal(t, "updatedAt", malformed.Field)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := descriptor(t)
			tt.mutate(t, &desc)
			_, err := newGenerator().Generate(desc, testRegistry(t), domain.Category{ID: 1}, domain.NewProject(70))
			require.Error(t, err)
			assert.True(t, domain.IsDataIntegrity(err))
			tt.check(t, err)
		})
	}
}

func TestSynthesize(t *testing.T) {
	assert := assert.New(t)

	project := domain.NewProject(70)
	category := domain.Category{ID: 1, Name: "users", Desc: "apiDetailFolder.1"}
	iface, err := yapi.Synthesize(descriptor(t), category, project)
	require.NoError(t, err)

	assert.Equal(int64(101), iface.ID)
	assert.Equal("list users", iface.Title)
	assert.Equal("listUsers", iface.Markdown)
	assert.Equal(domain.StatusUndone, iface.Status)
	assert.Equal(domain.Method("GET"), iface.Method)
	assert.Equal(int64(70), iface.ProjectID)
	assert.Equal(int64(1), iface.CatID)
	assert.Equal([]string{"users"}, iface.Tag)
	assert.Equal(int64(0), iface.UID)

	assert.Equal([]domain.Param{{Name: "org", Desc: "organisation", Required: domain.RequiredTrue, Type: domain.ParamTypeString}}, iface.ReqParams)
	assert.Equal([]domain.Param{{Name: "page", Required: domain.RequiredFalse, Type: domain.ParamTypeNumber}}, iface.ReqQuery)

	// No request body schema and no body type.
	assert.Equal([]domain.Header{}, iface.ReqHeaders)
	assert.Equal(domain.RequestBodyRaw, iface.ReqBodyType)
	assert.False(iface.ReqBodyIsJSONSchema)
	assert.Equal("", iface.ReqBodyOther)
	assert.Equal([]domain.FormField{}, iface.ReqBodyForm)

	// Truncated, not rounded.
	assert.Equal(int64(1672628645), iface.AddTime)
	assert.Equal(int64(1672599846), iface.UpTime)

	assert.Equal(int64(70), iface.Project.ID)
	assert.Equal(category.Name, iface.Category.Name)
	assert.Equal([]domain.Interface{}, iface.Category.List)

	data, err := json.Marshal(iface)
	require.NoError(t, err)
	for _, key := range []string{`"_id":101`, `"_category":{`, `"_project":{`, `"req_body_form":[]`, `"catid":1`, `"res_body_is_json_schema":true`} {
		assert.Contains(string(data), key)
	}
}

func TestSynthesize_CopiesProject(t *testing.T) {
	project := domain.NewProject(70)
	first, err := yapi.Synthesize(descriptor(t), domain.Category{ID: 1}, project)
	require.NoError(t, err)
	second, err := yapi.Synthesize(descriptor(t), domain.Category{ID: 1}, project)
	require.NoError(t, err)

	first.Project.Env[0].Domain = "mutated"
	first.Project.Tag = append(first.Project.Tag, "mutated")
	assert.Equal(t, "", second.Project.Env[0].Domain)
	assert.Empty(t, second.Project.Tag)
	assert.Equal(t, "", project.Env[0].Domain)
}

func TestSynthesize_EmptyTimestamps(t *testing.T) {
	desc := descriptor(t)
	desc.CreatedAt, desc.UpdatedAt = "", ""
	iface, err := yapi.Synthesize(desc, domain.Category{ID: 1}, domain.NewProject(70))
	require.NoError(t, err)
	assert.Zero(t, iface.AddTime)
	assert.Zero(t, iface.UpTime)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
