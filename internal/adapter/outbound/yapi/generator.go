package yapi

import (
	"log/slog"
	"strings"
	"time"

	"github.com/i2y/foxbridge/internal/domain"
)

// contentTypeHeader is the only request header a synthesized record carries.
const contentTypeHeader = "Content-Type"

// InterfaceGenerator implements the usecase.InterfaceGenerator interface for YApi records.
type InterfaceGenerator struct {
	logger *slog.Logger
}

// NewInterfaceGenerator creates a new YApi InterfaceGenerator.
func NewInterfaceGenerator(logger *slog.Logger) *InterfaceGenerator {
	return &InterfaceGenerator{
		logger: logger.With("component", "yapi_generator"),
	}
}

// Generate resolves the references of one endpoint descriptor against the
// registry and synthesizes its Interface record. The descriptor is not modified.
func (g *InterfaceGenerator) Generate(desc domain.EndpointDescriptor, reg *domain.Registry, category domain.Category, project domain.Project) (domain.Interface, error) {
	log := g.logger.With(slog.Int64("endpoint_id", desc.ID), slog.String("path", desc.Path))

	if _, ok := desc.SuccessResponse(); !ok {
		log.Warn("Endpoint has no success response")
		return domain.Interface{}, &domain.MissingSuccessResponseError{EndpointID: desc.ID}
	}
	response, requestBody, err := desc.DecodeSchemas()
	if err != nil {
		log.Warn("Failed to decode schemas", slog.Any("error", err))
		return domain.Interface{}, err
	}
	if err := g.resolveReferences(log, desc.ID, response, requestBody, reg); err != nil {
		log.Warn("Failed to resolve schema references", slog.Any("error", err))
		return domain.Interface{}, err
	}

	iface, err := synthesize(desc, response, requestBody, category, project)
	if err != nil {
		log.Warn("Failed to synthesize interface", slog.Any("error", err))
		return domain.Interface{}, err
	}
	log.Debug("Synthesized interface", slog.String("method", string(iface.Method)))
	return iface, nil
}

// Synthesize builds the Interface record of an already resolved descriptor.
// Schemas are serialized with every keyword they carry. Project and category
// are embedded as copies.
func Synthesize(desc domain.EndpointDescriptor, category domain.Category, project domain.Project) (domain.Interface, error) {
	if _, ok := desc.SuccessResponse(); !ok {
		return domain.Interface{}, &domain.MissingSuccessResponseError{EndpointID: desc.ID}
	}
	response, requestBody, err := desc.DecodeSchemas()
	if err != nil {
		return domain.Interface{}, err
	}
	return synthesize(desc, response, requestBody, category, project)
}

func synthesize(desc domain.EndpointDescriptor, response, requestBody domain.Schema, category domain.Category, project domain.Project) (domain.Interface, error) {
	resBody, err := response.Encode()
	if err != nil {
		return domain.Interface{}, &domain.MalformedSchemaError{EndpointID: desc.ID, Message: "response schema", Cause: err}
	}

	addTime, err := unixSeconds(desc.CreatedAt)
	if err != nil {
		return domain.Interface{}, &domain.MalformedDescriptorError{EndpointID: desc.ID, Field: "createdAt", Cause: err}
	}
	upTime, err := unixSeconds(desc.UpdatedAt)
	if err != nil {
		return domain.Interface{}, &domain.MalformedDescriptorError{EndpointID: desc.ID, Field: "updatedAt", Cause: err}
	}

	iface := domain.Interface{
		ID:                  desc.ID,
		Category:            copyCategory(category),
		Project:             project.Clone(),
		Title:               desc.Name,
		Status:              domain.StatusUndone,
		Markdown:            desc.OperationID,
		Path:                desc.Path,
		Method:              domain.Method(strings.ToUpper(desc.Method)),
		ProjectID:           desc.ProjectID,
		CatID:               category.ID,
		Tag:                 append([]string{}, desc.Tags...),
		ReqHeaders:          requestHeaders(desc.RequestBody.Type),
		ReqParams:           params(desc.Parameters.Path),
		ReqQuery:            params(desc.Parameters.Query),
		ReqBodyType:         domain.RequestBodyRaw,
		ReqBodyForm:         []domain.FormField{},
		ResBodyType:         domain.ResponseBodyJSON,
		ResBodyIsJSONSchema: true,
		ResBody:             resBody,
		AddTime:             addTime,
		UpTime:              upTime,
	}

	if requestBody != nil {
		body, err := requestBody.Encode()
		if err != nil {
			return domain.Interface{}, &domain.MalformedSchemaError{EndpointID: desc.ID, Message: "request body schema", Cause: err}
		}
		iface.ReqBodyType = domain.RequestBodyJSON
		iface.ReqBodyIsJSONSchema = true
		iface.ReqBodyOther = body
	}
	return iface, nil
}

func requestHeaders(bodyType string) []domain.Header {
	if bodyType == "" {
		return []domain.Header{}
	}
	return []domain.Header{{
		Name:     contentTypeHeader,
		Value:    bodyType,
		Required: domain.RequiredTrue,
	}}
}

func params(in []domain.Parameter) []domain.Param {
	out := make([]domain.Param, 0, len(in))
	for _, p := range in {
		out = append(out, domain.Param{
			Name:     p.Name,
			Desc:     p.Description,
			Required: domain.RequiredFrom(p.Required),
			Type:     domain.ParamTypeFrom(p.Type),
		})
	}
	return out
}

func copyCategory(c domain.Category) domain.Category {
	c.List = []domain.Interface{}
	return c
}

// unixSeconds converts an ISO-8601 timestamp to Unix seconds, dropping the
// sub-second part. An empty timestamp is 0.
func unixSeconds(ts string) (int64, error) {
	if ts == "" {
		return 0, nil
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}
