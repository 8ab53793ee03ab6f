package domain

import "github.com/getkin/kin-openapi/openapi3"

// Method is an upper-case HTTP verb.
type Method string

// Required is YApi's boolean-like enum for parameters and headers.
type Required string

const (
	RequiredTrue  Required = "1"
	RequiredFalse Required = "0"
)

// RequiredFrom maps a boolean onto Required.
func RequiredFrom(b bool) Required {
	if b {
		return RequiredTrue
	}
	return RequiredFalse
}

// ParamType is the primitive kind of a path or query parameter.
// Only strings are distinguished; every other declared type becomes a number.
type ParamType string

const (
	ParamTypeString ParamType = "string"
	ParamTypeNumber ParamType = "number"
)

// ParamTypeFrom maps a declared source type onto ParamType.
func ParamTypeFrom(declared string) ParamType {
	if declared == openapi3.TypeString {
		return ParamTypeString
	}
	return ParamTypeNumber
}

// RequestBodyType is the kind of request body of an Interface.
type RequestBodyType string

const (
	RequestBodyJSON RequestBodyType = "json"
	RequestBodyRaw  RequestBodyType = "raw"
)

// ResponseBodyType is the kind of response body of an Interface.
type ResponseBodyType string

const ResponseBodyJSON ResponseBodyType = "json"

// InterfaceStatus is the YApi completion status; synthesized records are always "undone".
type InterfaceStatus string

const StatusUndone InterfaceStatus = "undone"

// Header is one request header of an Interface.
type Header struct {
	Name     string   `json:"name"`
	Value    string   `json:"value"`
	Desc     string   `json:"desc"`
	Example  string   `json:"example"`
	Required Required `json:"required"`
}

// Param is one path or query parameter of an Interface.
type Param struct {
	Name     string    `json:"name"`
	Desc     string    `json:"desc"`
	Example  string    `json:"example"`
	Required Required  `json:"required"`
	Type     ParamType `json:"type"`
}

// FormField is one form-data field; synthesized records never carry any.
type FormField struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Example  string   `json:"example"`
	Desc     string   `json:"desc"`
	Required Required `json:"required"`
}

// Env is one deployment environment of a Project.
type Env struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// Project is the owning project snapshot embedded into every Interface.
type Project struct {
	ID       int64    `json:"_id"`
	URL      string   `json:"_url"`
	Name     string   `json:"name"`
	Desc     string   `json:"desc"`
	BasePath string   `json:"basepath"`
	Tag      []string `json:"tag"`
	Env      []Env    `json:"env"`
}

// DefaultProjectName is the name given to every project built from an Apifox share.
const DefaultProjectName = "ApifoxProject"

// NewProject returns the project template with the given id.
func NewProject(id int64) Project {
	return Project{
		ID:   id,
		Name: DefaultProjectName,
		Tag:  []string{},
		Env:  []Env{{}},
	}
}

// Clone returns a deep copy so records never share slices with each other.
func (p Project) Clone() Project {
	c := p
	c.Tag = append([]string{}, p.Tag...)
	c.Env = append([]Env{}, p.Env...)
	return c
}

// Category is a folder as YApi sees it.
type Category struct {
	ID      int64       `json:"_id"`
	URL     string      `json:"_url"`
	Name    string      `json:"name"`
	Desc    string      `json:"desc"`
	List    []Interface `json:"list"`
	AddTime int64       `json:"add_time"`
	UpTime  int64       `json:"up_time"`
}

// Interface is the canonical endpoint record produced by synthesis.
type Interface struct {
	ID                  int64            `json:"_id"`
	Category            Category         `json:"_category"`
	Project             Project          `json:"_project"`
	URL                 string           `json:"_url"`
	Title               string           `json:"title"`
	Status              InterfaceStatus  `json:"status"`
	Markdown            string           `json:"markdown"`
	Path                string           `json:"path"`
	Method              Method           `json:"method"`
	ProjectID           int64            `json:"project_id"`
	CatID               int64            `json:"catid"`
	Tag                 []string         `json:"tag"`
	ReqHeaders          []Header         `json:"req_headers"`
	ReqParams           []Param          `json:"req_params"`
	ReqQuery            []Param          `json:"req_query"`
	ReqBodyType         RequestBodyType  `json:"req_body_type"`
	ReqBodyIsJSONSchema bool             `json:"req_body_is_json_schema"`
	ReqBodyForm         []FormField      `json:"req_body_form"`
	ReqBodyOther        string           `json:"req_body_other"`
	ResBodyType         ResponseBodyType `json:"res_body_type"`
	ResBodyIsJSONSchema bool             `json:"res_body_is_json_schema"`
	ResBody             string           `json:"res_body"`
	AddTime             int64            `json:"add_time"`
	UpTime              int64            `json:"up_time"`
	UID                 int64            `json:"uid"`
}

// ProjectInfo is the project identity plus its top-level categories.
// URL derivation is not supported for Apifox shares, so the builders return "".
type ProjectInfo struct {
	Project
	Categories []Category `json:"cats"`
}

func (ProjectInfo) MockURL() string { return "" }

func (ProjectInfo) DevURL(env string) string { return "" }

func (ProjectInfo) ProdURL(env string) string { return "" }

// CategoryConfig selects folders by id; an empty IDs list selects everything.
type CategoryConfig struct {
	IDs []int64 `json:"ids" yaml:"ids"`
}

func (c CategoryConfig) set() map[int64]struct{} {
	if len(c.IDs) == 0 {
		return nil
	}
	s := make(map[int64]struct{}, len(c.IDs))
	for _, id := range c.IDs {
		s[id] = struct{}{}
	}
	return s
}

// SyntheticalConfig names the category whose interfaces are listed.
type SyntheticalConfig struct {
	ID int64 `json:"id" yaml:"id"`
}
