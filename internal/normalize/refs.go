package normalize

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// refResolver holds a name-to-node map for every top-level component, built
// once per document, used to validate that every $ref encountered during
// the walk names a real entity (kin-openapi's loader already resolves
// refs to shared pointers; this resolver is the explicit presence check
// the cross-reference validator needs, and the name index schemas.go
// walks for composition-slot refs).
type refResolver struct {
	schemas         map[string]*openapi3.SchemaRef
	responses       map[string]*openapi3.ResponseRef
	parameters      map[string]*openapi3.ParameterRef
	requestBodies   map[string]*openapi3.RequestBodyRef
	headers         map[string]*openapi3.HeaderRef
	securitySchemes map[string]*openapi3.SecuritySchemeRef
}

func newRefResolver(doc *openapi3.T) *refResolver {
	r := &refResolver{
		schemas:         make(map[string]*openapi3.SchemaRef),
		responses:       make(map[string]*openapi3.ResponseRef),
		parameters:      make(map[string]*openapi3.ParameterRef),
		requestBodies:   make(map[string]*openapi3.RequestBodyRef),
		headers:         make(map[string]*openapi3.HeaderRef),
		securitySchemes: make(map[string]*openapi3.SecuritySchemeRef),
	}
	if doc.Components == nil {
		return r
	}
	for name, s := range doc.Components.Schemas {
		r.schemas[name] = s
	}
	for name, s := range doc.Components.Responses {
		r.responses[name] = s
	}
	for name, s := range doc.Components.Parameters {
		r.parameters[name] = s
	}
	for name, s := range doc.Components.RequestBodies {
		r.requestBodies[name] = s
	}
	for name, s := range doc.Components.Headers {
		r.headers[name] = s
	}
	for name, s := range doc.Components.SecuritySchemes {
		r.securitySchemes[name] = s
	}
	return r
}

// schemaNameFromRef extracts the component name from a JSON pointer like
// "#/components/schemas/Pet", or "" if ref is not a local schema pointer.
func schemaNameFromRef(ref string) string {
	const prefix = "#/components/schemas/"
	if strings.HasPrefix(ref, prefix) {
		return strings.TrimPrefix(ref, prefix)
	}
	return ""
}

// hasSchema reports whether name is a known component schema.
func (r *refResolver) hasSchema(name string) bool {
	_, ok := r.schemas[name]
	return ok
}
