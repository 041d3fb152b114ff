// Package normalize turns a raw OpenAPI/Swagger specification tree into a
// closed, dependency-annotated value graph: resolved endpoints, schemas,
// security schemes, and the dependency edges between them. See parse.go for
// the entry point.
package normalize

import (
	"fmt"
	"time"
)

// Dialect identifies the specification version family.
type Dialect string

const (
	DialectSwagger2 Dialect = "2.0"
	DialectOpenAPI3 Dialect = "3.0.x"
	DialectOpenAPI31 Dialect = "3.1.x"
)

// NormalizedAPI is the acyclic value graph produced by Normalize: one
// SpecificationDocument's endpoints, schemas, security schemes, and the
// dependency edges between them.
type NormalizedAPI struct {
	Document        Document
	Endpoints       []*Endpoint
	Schemas         map[string]*Schema
	SecuritySchemes map[string]*SecurityScheme
	Dependencies    []DependencyEdge
	Tags            []Tag
	TagGroups       []TagGroup
}

// Document mirrors SpecificationDocument: one per input file.
type Document struct {
	Title             string
	Version           string
	Dialect           Dialect
	Description       string
	Servers           []Server
	ContactName       string
	ContactEmail      string
	LicenseName       string
	LicenseURL        string
	ContentHash       string
	SourceFilePath    string
	ByteSize          int64
	IngestedAt        time.Time
}

// Server is one entry of Document.Servers.
type Server struct {
	URL         string
	Description string
	Variables   map[string]string
}

// Tag is a root-level tag definition.
type Tag struct {
	Name        string
	Description string
}

// TagGroup is one entry of the x-tagGroups extension.
type TagGroup struct {
	Name string
	Tags []string
}

// HTTPMethod is one of the eight OpenAPI operation verbs.
type HTTPMethod string

const (
	MethodGet     HTTPMethod = "GET"
	MethodPost    HTTPMethod = "POST"
	MethodPut     HTTPMethod = "PUT"
	MethodDelete  HTTPMethod = "DELETE"
	MethodPatch   HTTPMethod = "PATCH"
	MethodHead    HTTPMethod = "HEAD"
	MethodOptions HTTPMethod = "OPTIONS"
	MethodTrace   HTTPMethod = "TRACE"
)

// ParameterLocation is one of {query, path, header, cookie}.
type ParameterLocation string

const (
	LocationQuery  ParameterLocation = "query"
	LocationPath   ParameterLocation = "path"
	LocationHeader ParameterLocation = "header"
	LocationCookie ParameterLocation = "cookie"
)

// Parameter is a single Endpoint input.
type Parameter struct {
	Name        string
	Location    ParameterLocation
	Required    bool
	Schema      *Schema
	SchemaRef   string
	Description string
	Examples    map[string]interface{}
}

// RequestBody is an Endpoint's optional request payload.
type RequestBody struct {
	Description string
	Required    bool
	// ContentTypes maps a media type ("application/json") to the schema
	// name it references, or "" if the content is schema-less.
	ContentTypes map[string]string
}

// Response is one entry of an Endpoint's status-code-to-response map.
type Response struct {
	Description string
	ContentTypes map[string]string // media type -> schema name
}

// SecurityRequirement names a security scheme and, for oauth2/openIdConnect,
// the scopes demanded.
type SecurityRequirement struct {
	SchemeName string
	Scopes     []string
}

// Endpoint is one (path, method) operation.
type Endpoint struct {
	ID           string // stable identifier, see endpointID in endpoints.go
	Path         string
	Method       HTTPMethod
	OperationID  string
	Synthesized  bool // true if OperationID was synthesized, not authored
	Summary      string
	Description  string
	Tags         []string
	Parameters   []Parameter
	RequestBody  *RequestBody
	Responses    map[string]Response // status code -> Response
	Security     []SecurityRequirement
	Deprecated   bool
	Extensions   map[string]interface{}

	// CategoryKey/CategoryGroup are populated by the categorization
	// engine, not by the normalizer.
	CategoryKey   string
	CategoryGroup string

	// Derived search fields, populated by searchfields.go
	// (SchemaDependencies by crossref.go).
	SearchableText     string
	ParameterNames     []string
	ResponseCodes      []string
	ContentTypes       []string
	SchemaDependencies []string
}

// SchemaType is one of the seven JSON Schema primitive types this system
// recognizes.
type SchemaType string

const (
	SchemaTypeObject  SchemaType = "object"
	SchemaTypeArray   SchemaType = "array"
	SchemaTypeString  SchemaType = "string"
	SchemaTypeNumber  SchemaType = "number"
	SchemaTypeInteger SchemaType = "integer"
	SchemaTypeBoolean SchemaType = "boolean"
	SchemaTypeNull    SchemaType = "null"
)

// Schema is a normalized JSON Schema node, unique by name within a
// SpecificationDocument (inline schemas carry a synthesized name).
type Schema struct {
	Name        string
	Type        SchemaType
	Format      string
	Title       string
	Description string

	Properties map[string]*Schema
	Required   []string

	Items *Schema

	Enum []interface{}

	AllOf []*Schema
	OneOf []*Schema
	AnyOf []*Schema
	Not   *Schema

	// Composition-slot references, kept as names rather than inlined, per
	// the "replace with a handle, do not inline" resolver policy.
	AllOfRefs []string
	OneOfRefs []string
	AnyOfRefs []string
	NotRef    string
	ItemsRef  string
	PropertyRefs map[string]string

	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum bool
	ExclusiveMaximum bool
	MinLength        *int
	MaxLength        *int
	Pattern          string
	MinItems         *int
	MaxItems         *int
	UniqueItems      bool

	ReadOnly      bool
	WriteOnly     bool
	Discriminator string
	Example       interface{}
	Extensions    map[string]interface{}
	UnknownKeywords map[string]interface{}

	ReferenceCount int
	Dependencies   []string // schema names this one directly references

	// CycleEdges records back-references discovered during the DFS walk
	// that point at an ancestor already on the stack.
	CycleEdges []string

	SearchableText string
	PropertyNames  []string
}

// SecuritySchemeType identifies the variant of SecurityScheme.
type SecuritySchemeType string

const (
	SecurityTypeAPIKey        SecuritySchemeType = "apiKey"
	SecurityTypeHTTP          SecuritySchemeType = "http"
	SecurityTypeOAuth2        SecuritySchemeType = "oauth2"
	SecurityTypeOpenIDConnect SecuritySchemeType = "openIdConnect"
	SecurityTypeMutualTLS     SecuritySchemeType = "mutualTLS"
)

// OAuth2Flow is one named OAuth2 flow (authorizationCode, implicit,
// password, clientCredentials).
type OAuth2Flow struct {
	AuthorizationURL string
	TokenURL         string
	RefreshURL       string
	Scopes           map[string]string
}

// SecurityScheme is a normalized authentication mechanism.
type SecurityScheme struct {
	Name string
	Type SecuritySchemeType

	// apiKey
	KeyName     string
	KeyLocation ParameterLocation

	// http
	Scheme       string
	BearerFormat string

	// oauth2
	Flows map[string]OAuth2Flow

	// openIdConnect
	OpenIDConnectURL string

	ReferenceCount int
}

// DependencyRole tags a DependencyEdge with the site that introduced it.
type DependencyRole string

const (
	RoleParameter   DependencyRole = "parameter"
	RoleRequestBody DependencyRole = "requestBody"
	RoleResponse    DependencyRole = "response"
	RoleCallback    DependencyRole = "callback"
)

// DependencyEdge is a directed edge from an Endpoint to a Schema.
type DependencyEdge struct {
	EndpointID string
	SchemaName string
	Role       DependencyRole
	StatusCode string // set only when Role == RoleResponse
}

// Report accumulates errors, warnings, and counters produced while
// normalizing one document.
type Report struct {
	Errors   []string
	Warnings []string
	Counters map[string]int
}

func newReport() *Report {
	return &Report{Counters: make(map[string]int)}
}

func (r *Report) addError(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) addWarning(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Report) incr(counter string) {
	r.Counters[counter]++
}
