package domain

import (
	"strconv"
	"strings"
)

// MaxRefHops bounds how many references Resolve follows. Exactly one hop is
// supported: a resolved body is substituted as-is and never re-scanned.
const MaxRefHops = 1

// Registry maps schema ids to parsed schema bodies. It is built once per
// project load and only read afterwards, so concurrent readers are safe.
type Registry struct {
	entries   map[string]Schema
	projectID int64
}

// BuildRegistry parses every entry of the flat schema list in a single pass.
// Ids are assumed unique; a repeated id overwrites the earlier entry. The first
// entry's project id is taken as the project of the whole document.
func BuildRegistry(list []SchemaEntry) (*Registry, error) {
	r := &Registry{entries: make(map[string]Schema, len(list))}
	if len(list) > 0 {
		r.projectID = list[0].ProjectID
	}
	for _, entry := range list {
		key := strconv.FormatInt(entry.ID, 10)
		body, err := DecodeSchema(entry.JSONSchema)
		if err == nil && body == nil {
			err = errEmptySchema
		}
		if err != nil {
			return nil, &MalformedSchemaError{SchemaID: key, Cause: err}
		}
		r.entries[key] = body
	}
	return r, nil
}

// ProjectID returns the project id surfaced from the first schema entry.
func (r *Registry) ProjectID() int64 { return r.projectID }

// Len returns the number of registered schemas.
func (r *Registry) Len() int { return len(r.entries) }

// Resolve returns a copy of the schema body that ref points at, with every
// keyword of the entry kept. Only the trailing path segment of ref is
// significant: "#/definitions/42" and "42" both resolve registry id 42.
func (r *Registry) Resolve(ref string) (Schema, error) {
	visited := make(map[string]struct{}, MaxRefHops)
	current := ref
	var body Schema
	for hop := 0; hop < MaxRefHops; hop++ {
		key := RefKey(current)
		if _, seen := visited[key]; seen {
			return nil, &UnresolvedReferenceError{Ref: ref, Circular: true}
		}
		visited[key] = struct{}{}

		entry, ok := r.entries[key]
		if !ok || key == "" {
			return nil, &UnresolvedReferenceError{Ref: current}
		}
		body = entry
		if body.Ref() == "" {
			break
		}
		current = body.Ref()
	}
	return body.Clone(), nil
}

// RefKey returns the registry key of a reference string.
func RefKey(ref string) string {
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
