package yapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/i2y/foxbridge/internal/domain"
)

// Apifox annotations on a request body composed from a referenced schema.
const (
	extRefs   = "x-apifox-refs"
	extOrders = "x-apifox-orders"
)

// responseDataKey is the envelope property whose schema carries the payload.
const responseDataKey = "data"

// composedRef is one entry of the x-apifox-refs annotation.
type composedRef struct {
	Ref      string   `json:"$ref"`
	Required []string `json:"required,omitempty"`
}

// resolveReferences substitutes the known $ref sites of freshly decoded
// schemas in place. Either schema may be nil.
func (g *InterfaceGenerator) resolveReferences(log *slog.Logger, endpointID int64, response, requestBody domain.Schema, reg *domain.Registry) error {
	if err := g.resolveResponse(log, endpointID, response, reg); err != nil {
		return err
	}
	return g.resolveRequestBody(log, endpointID, requestBody, reg)
}

// resolveResponse handles the array item ref on data and the array item refs
// on the direct children of data.properties. Refs anywhere else are left as
// they are, siblings included.
func (g *InterfaceGenerator) resolveResponse(log *slog.Logger, endpointID int64, schema domain.Schema, reg *domain.Registry) error {
	props, _ := schema.Child(domain.KeyProperties)
	data, ok := props.Child(responseDataKey)
	if !ok {
		return nil
	}

	if items, ok := data.Child(domain.KeyItems); ok && items.Ref() != "" {
		resolved, err := resolve(reg, items.Ref(), endpointID)
		if err != nil {
			return err
		}
		log.Debug("Substituted response item reference", slog.String("ref", items.Ref()))
		data.Set(domain.KeyItems, resolved)
	}

	dataProps, ok := data.Child(domain.KeyProperties)
	if !ok {
		return nil
	}
	for _, name := range dataProps.Keys() {
		child, ok := dataProps.Child(name)
		if !ok || !child.HasType(openapi3.TypeArray) {
			continue
		}
		items, ok := child.Child(domain.KeyItems)
		if !ok || items.Ref() == "" {
			continue
		}
		resolved, err := resolve(reg, items.Ref(), endpointID)
		if err != nil {
			return err
		}
		log.Debug("Substituted nested item reference", slog.String("property", name), slog.String("ref", items.Ref()))
		child.Set(domain.KeyItems, resolved)
	}
	return nil
}

// resolveRequestBody expands an x-apifox-refs composition. Only the first
// ordering key is honoured; later keys are left out of the result. An empty
// reference set carries no composition and is dropped.
func (g *InterfaceGenerator) resolveRequestBody(log *slog.Logger, endpointID int64, schema domain.Schema, reg *domain.Registry) error {
	rawRefs, ok := schema[extRefs]
	if !ok {
		return nil
	}

	var refs map[string]composedRef
	if err := reencode(rawRefs, &refs); err != nil {
		return &domain.MalformedSchemaError{EndpointID: endpointID, Message: extRefs, Cause: err}
	}
	if len(refs) == 0 {
		log.Debug("Dropping empty composed reference set")
		delete(schema, extRefs)
		return nil
	}

	var orders []string
	if err := reencode(schema[extOrders], &orders); err != nil {
		return &domain.MalformedSchemaError{EndpointID: endpointID, Message: extOrders, Cause: err}
	}
	if len(orders) == 0 {
		return &domain.MalformedSchemaError{EndpointID: endpointID, Message: extRefs + " without " + extOrders}
	}
	entry, ok := refs[orders[0]]
	if !ok || entry.Ref == "" {
		return &domain.MalformedSchemaError{EndpointID: endpointID, Message: fmt.Sprintf("%s has no reference for key %q", extRefs, orders[0])}
	}
	if len(orders) > 1 {
		log.Debug("Ignoring additional composed references", slog.Int("ignored", len(orders)-1))
	}

	resolved, err := resolve(reg, entry.Ref, endpointID)
	if err != nil {
		return err
	}
	if props, ok := resolved[domain.KeyProperties]; ok {
		schema[domain.KeyProperties] = props
	} else {
		delete(schema, domain.KeyProperties)
	}
	if entry.Required != nil {
		required := make([]any, len(entry.Required))
		for i, name := range entry.Required {
			required[i] = name
		}
		schema[domain.KeyRequired] = required
	} else {
		delete(schema, domain.KeyRequired)
	}

	delete(schema, extRefs)
	delete(schema, extOrders)
	log.Debug("Expanded composed request body", slog.String("ref", entry.Ref))
	return nil
}

// resolve looks up ref and tags a failure with the endpoint it came from.
func resolve(reg *domain.Registry, ref string, endpointID int64) (domain.Schema, error) {
	resolved, err := reg.Resolve(ref)
	if err != nil {
		var refErr *domain.UnresolvedReferenceError
		if errors.As(err, &refErr) {
			tagged := *refErr
			tagged.EndpointID = endpointID
			return nil, &tagged
		}
		return nil, &domain.MalformedSchemaError{EndpointID: endpointID, Message: "reference " + ref, Cause: err}
	}
	return resolved, nil
}

// reencode converts a generically decoded annotation value into a typed one.
func reencode(in any, out any) error {
	if in == nil {
		return nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
