package domain

import "encoding/json"

// SchemaEntry is one reusable schema fragment from the flat schema list.
// JSONSchema stays raw until the registry parses it.
type SchemaEntry struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	DisplayName string          `json:"displayName"`
	JSONSchema  json.RawMessage `json:"jsonSchema"`
	FolderID    int64           `json:"folderId"`
	ProjectID   int64           `json:"projectId"`
}

// Parameter is one path or query parameter of an endpoint descriptor.
type Parameter struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Enable      bool   `json:"enable"`
	Type        string `json:"type"`
}

// Parameters groups descriptor parameters by location.
type Parameters struct {
	Path  []Parameter `json:"path"`
	Query []Parameter `json:"query"`
}

// RequestBody is the request body of an endpoint descriptor.
// JSONSchema is empty when the body carries no schema.
type RequestBody struct {
	Type       string          `json:"type"`
	JSONSchema json.RawMessage `json:"jsonSchema"`
	Example    string          `json:"example"`
}

// Response is one response of an endpoint descriptor, keyed by status Code.
type Response struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Code        int             `json:"code"`
	ContentType string          `json:"contentType"`
	JSONSchema  json.RawMessage `json:"jsonSchema"`
}

// EndpointDescriptor is the full description of one endpoint as the gateway returns it.
type EndpointDescriptor struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	OperationID string      `json:"operationId"`
	Description string      `json:"description"`
	Method      string      `json:"method"`
	Path        string      `json:"path"`
	Tags        []string    `json:"tags"`
	Status      string      `json:"status"`
	ProjectID   int64       `json:"projectId"`
	FolderID    int64       `json:"folderId"`
	Parameters  Parameters  `json:"parameters"`
	RequestBody RequestBody `json:"requestBody"`
	Responses   []Response  `json:"responses"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt"`
}

// SuccessStatus is the status code whose response becomes the Interface response body.
const SuccessStatus = 200

// SuccessResponse returns the index of the first response with status 200.
func (d *EndpointDescriptor) SuccessResponse() (int, bool) {
	for i, r := range d.Responses {
		if r.Code == SuccessStatus {
			return i, true
		}
	}
	return -1, false
}

// DecodeSchemas decodes the schemas the Interface record is built from: the
// success response schema and the request body schema. Either is nil when
// absent. A blob that is not a JSON object is a *MalformedSchemaError.
func (d *EndpointDescriptor) DecodeSchemas() (response, requestBody Schema, err error) {
	if idx, ok := d.SuccessResponse(); ok {
		response, err = DecodeSchema(d.Responses[idx].JSONSchema)
		if err != nil {
			return nil, nil, &MalformedSchemaError{EndpointID: d.ID, Message: "response schema", Cause: err}
		}
	}
	requestBody, err = DecodeSchema(d.RequestBody.JSONSchema)
	if err != nil {
		return nil, nil, &MalformedSchemaError{EndpointID: d.ID, Message: "request body schema", Cause: err}
	}
	return response, requestBody, nil
}
