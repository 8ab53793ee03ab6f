package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrUnresolvedReference indicates a $ref whose key is missing from the schema registry.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrCircularReference indicates a reference chain that revisits a key.
	ErrCircularReference = errors.New("circular reference")

	// ErrMissingSuccessResponse indicates an endpoint without a status 200 response.
	ErrMissingSuccessResponse = errors.New("missing success response")

	// ErrMalformedSchema indicates a schema body or annotation that does not have the expected shape.
	ErrMalformedSchema = errors.New("malformed schema")

	// ErrMalformedDescriptor indicates an endpoint descriptor field that cannot be interpreted.
	ErrMalformedDescriptor = errors.New("malformed descriptor")
)

// UnresolvedReferenceError reports a reference that has no registry entry.
type UnresolvedReferenceError struct {
	// Ref is the reference string as written in the source schema
	Ref string
	// EndpointID is the endpoint whose schema carried the reference (0 if unknown)
	EndpointID int64
	// Circular is true when the reference chain looped back on itself
	Circular bool
}

func (e *UnresolvedReferenceError) Error() string {
	msg := "unresolved reference"
	if e.Circular {
		msg = "circular reference"
	}
	msg += ": " + e.Ref
	if e.EndpointID != 0 {
		msg += fmt.Sprintf(" (endpoint %d)", e.EndpointID)
	}
	return msg
}

func (e *UnresolvedReferenceError) Is(target error) bool {
	if e.Circular && target == ErrCircularReference {
		return true
	}
	return target == ErrUnresolvedReference
}

// MissingSuccessResponseError reports an endpoint that has no status 200 response.
type MissingSuccessResponseError struct {
	EndpointID int64
}

func (e *MissingSuccessResponseError) Error() string {
	return fmt.Sprintf("missing success response: endpoint %d has no response with status %d", e.EndpointID, SuccessStatus)
}

func (e *MissingSuccessResponseError) Is(target error) bool {
	return target == ErrMissingSuccessResponse
}

// MalformedSchemaError reports a schema that could not be parsed or interpreted.
type MalformedSchemaError struct {
	// SchemaID is the registry id, for registry entries
	SchemaID string
	// EndpointID is the endpoint, for descriptor schemas
	EndpointID int64
	Message    string
	Cause      error
}

func (e *MalformedSchemaError) Error() string {
	msg := "malformed schema"
	if e.SchemaID != "" {
		msg += " " + e.SchemaID
	}
	if e.EndpointID != 0 {
		msg += fmt.Sprintf(" in endpoint %d", e.EndpointID)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *MalformedSchemaError) Unwrap() error { return e.Cause }

func (e *MalformedSchemaError) Is(target error) bool {
	return target == ErrMalformedSchema
}

// MalformedDescriptorError reports a descriptor field that cannot be interpreted.
type MalformedDescriptorError struct {
	EndpointID int64
	Field      string
	Cause      error
}

func (e *MalformedDescriptorError) Error() string {
	msg := fmt.Sprintf("malformed descriptor: endpoint %d field %s", e.EndpointID, e.Field)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *MalformedDescriptorError) Unwrap() error { return e.Cause }

func (e *MalformedDescriptorError) Is(target error) bool {
	return target == ErrMalformedDescriptor
}

// IsDataIntegrity reports whether err comes from malformed source documents
// rather than from transport or configuration.
func IsDataIntegrity(err error) bool {
	return errors.Is(err, ErrUnresolvedReference) ||
		errors.Is(err, ErrMissingSuccessResponse) ||
		errors.Is(err, ErrMalformedSchema) ||
		errors.Is(err, ErrMalformedDescriptor)
}
