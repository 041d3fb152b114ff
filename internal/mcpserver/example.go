package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/salacoste/swagger-mcp-server/internal/apperr"
	"github.com/salacoste/swagger-mcp-server/internal/normalize"
)

var supportedExampleLanguages = map[string]bool{
	"curl": true, "javascript": true, "python": true, "typescript": true,
}

// GetExample renders a runnable request example for one endpoint in the
// requested client language, spec.md §6.
func (c *Catalog) GetExample(ctx context.Context, args GetExampleArgs) (GetExampleResult, error) {
	language := strings.ToLower(args.Language)
	if language == "" {
		language = "curl"
	}
	if !supportedExampleLanguages[language] {
		return GetExampleResult{}, apperr.Input(nil, "unsupported example language: %s", args.Language)
	}

	ep, ok := c.Endpoints[args.EndpointID]
	if !ok {
		return GetExampleResult{}, apperr.NotFound("endpoint", args.EndpointID)
	}

	req := buildRequestExample(ep, c.Schemas)
	req.IncludeAuth = args.IncludeAuth

	var rendered string
	switch language {
	case "curl":
		rendered = renderCurl(req)
	case "javascript":
		rendered = renderJavaScript(req)
	case "python":
		rendered = renderPython(req)
	case "typescript":
		rendered = renderTypeScript(req)
	}

	return GetExampleResult{
		EndpointID:  ep.ID,
		Language:    language,
		Method:      string(ep.Method),
		Path:        ep.Path,
		Example:     rendered,
		Description: ep.Summary,
	}, nil
}

// requestExample is the language-neutral intermediate form every renderer
// consumes.
type requestExample struct {
	Method      string
	URL         string
	Headers     map[string]string
	QueryParams map[string]string
	Body        interface{}
	AuthHeader  string // "Authorization" when the endpoint has any security requirement, else empty
	IncludeAuth bool
}

func buildRequestExample(ep *normalize.Endpoint, schemas map[string]*normalize.Schema) requestExample {
	r := requestExample{
		Method:      string(ep.Method),
		URL:         substitutePathParams(ep.Path, ep.Parameters),
		Headers:     map[string]string{},
		QueryParams: map[string]string{},
	}

	for _, p := range ep.Parameters {
		value := exampleParamValue(p)
		switch p.Location {
		case normalize.LocationQuery:
			r.QueryParams[p.Name] = value
		case normalize.LocationHeader:
			r.Headers[p.Name] = value
		}
	}

	if ep.RequestBody != nil {
		for ct, schemaName := range ep.RequestBody.ContentTypes {
			r.Headers["Content-Type"] = ct
			if schemaName != "" {
				r.Body = generateSchemaExample(schemas[schemaName], schemas, map[string]bool{})
			}
			break
		}
	}

	if len(ep.Security) > 0 {
		r.AuthHeader = "Authorization"
	}
	return r
}

func substitutePathParams(path string, params []normalize.Parameter) string {
	out := path
	for _, p := range params {
		if p.Location != normalize.LocationPath {
			continue
		}
		out = strings.ReplaceAll(out, "{"+p.Name+"}", exampleParamValue(p))
	}
	return out
}

func exampleParamValue(p normalize.Parameter) string {
	if p.Schema != nil {
		if v := generateSchemaExample(p.Schema, nil, map[string]bool{}); v != nil {
			return fmt.Sprintf("%v", v)
		}
	}
	return "example-" + p.Name
}

// generateSchemaExample produces a representative value for schema,
// resolving one $ref hop against registry when present, matching the
// pack's own by-type example generator. visited guards cyclic schemas.
func generateSchemaExample(schema *normalize.Schema, registry map[string]*normalize.Schema, visited map[string]bool) interface{} {
	if schema == nil {
		return nil
	}
	if schema.Example != nil {
		return schema.Example
	}
	if visited[schema.Name] {
		return nil
	}
	visited[schema.Name] = true
	defer delete(visited, schema.Name)

	switch schema.Type {
	case normalize.SchemaTypeString:
		return exampleStringByFormat(schema)
	case normalize.SchemaTypeInteger:
		return 1
	case normalize.SchemaTypeNumber:
		return 1.0
	case normalize.SchemaTypeBoolean:
		return true
	case normalize.SchemaTypeArray:
		item := schema.Items
		if item == nil && schema.ItemsRef != "" && registry != nil {
			item = registry[schema.ItemsRef]
		}
		if item == nil {
			return []interface{}{}
		}
		return []interface{}{generateSchemaExample(item, registry, visited)}
	case normalize.SchemaTypeObject:
		obj := make(map[string]interface{}, len(schema.Properties))
		names := make([]string, 0, len(schema.Properties))
		for name := range schema.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			obj[name] = generateSchemaExample(schema.Properties[name], registry, visited)
		}
		for name, ref := range schema.PropertyRefs {
			if _, ok := obj[name]; !ok && registry != nil {
				obj[name] = generateSchemaExample(registry[ref], registry, visited)
			}
		}
		return obj
	default:
		return nil
	}
}

func exampleStringByFormat(schema *normalize.Schema) string {
	if len(schema.Enum) > 0 {
		if s, ok := schema.Enum[0].(string); ok {
			return s
		}
	}
	switch schema.Format {
	case "date":
		return "2024-01-15"
	case "date-time":
		return "2024-01-15T10:30:00Z"
	case "email":
		return "user@example.com"
	case "uuid":
		return "550e8400-e29b-41d4-a716-446655440000"
	default:
		return "string"
	}
}

func renderCurl(r requestExample) string {
	var b strings.Builder
	fmt.Fprintf(&b, "curl -X %s \\\n  '%s%s'", r.Method, r.URL, encodeQuery(r.QueryParams))
	for name, value := range sortedHeaders(r) {
		fmt.Fprintf(&b, " \\\n  -H '%s: %s'", name, value)
	}
	if r.Body != nil {
		body, _ := json.MarshalIndent(r.Body, "", "  ")
		fmt.Fprintf(&b, " \\\n  -d '%s'", string(body))
	}
	return b.String()
}

func renderJavaScript(r requestExample) string {
	var b strings.Builder
	fmt.Fprintf(&b, "const response = await fetch('%s%s', {\n  method: '%s',\n", r.URL, encodeQuery(r.QueryParams), r.Method)
	b.WriteString("  headers: {\n")
	for name, value := range sortedHeaders(r) {
		fmt.Fprintf(&b, "    '%s': '%s',\n", name, value)
	}
	b.WriteString("  },\n")
	if r.Body != nil {
		body, _ := json.MarshalIndent(r.Body, "  ", "  ")
		fmt.Fprintf(&b, "  body: JSON.stringify(%s),\n", string(body))
	}
	b.WriteString("});\nconst data = await response.json();")
	return b.String()
}

func renderPython(r requestExample) string {
	var b strings.Builder
	b.WriteString("import requests\n\n")
	fmt.Fprintf(&b, "response = requests.%s(\n    '%s',\n", strings.ToLower(r.Method), r.URL)
	if len(r.QueryParams) > 0 {
		b.WriteString("    params=")
		encodePythonDict(&b, stringMapToAny(r.QueryParams))
		b.WriteString(",\n")
	}
	if len(sortedHeaders(r)) > 0 {
		b.WriteString("    headers=")
		encodePythonDict(&b, stringMapToAny(sortedHeaders(r)))
		b.WriteString(",\n")
	}
	if r.Body != nil {
		body, _ := json.Marshal(r.Body)
		fmt.Fprintf(&b, "    json=%s,\n", string(body))
	}
	b.WriteString(")\ndata = response.json()")
	return b.String()
}

func renderTypeScript(r requestExample) string {
	var b strings.Builder
	fmt.Fprintf(&b, "const response: Response = await fetch('%s%s', {\n  method: '%s',\n", r.URL, encodeQuery(r.QueryParams), r.Method)
	b.WriteString("  headers: {\n")
	for name, value := range sortedHeaders(r) {
		fmt.Fprintf(&b, "    '%s': '%s',\n", name, value)
	}
	b.WriteString("  },\n")
	if r.Body != nil {
		body, _ := json.MarshalIndent(r.Body, "  ", "  ")
		fmt.Fprintf(&b, "  body: JSON.stringify(%s),\n", string(body))
	}
	b.WriteString("});\nconst data: unknown = await response.json();")
	return b.String()
}

func sortedHeaders(r requestExample) map[string]string {
	headers := make(map[string]string, len(r.Headers)+1)
	for k, v := range r.Headers {
		headers[k] = v
	}
	if r.IncludeAuth && r.AuthHeader != "" {
		headers[r.AuthHeader] = "Bearer YOUR_TOKEN"
	}
	return headers
}

func encodeQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	var parts []string
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%s", name, params[name]))
	}
	return "?" + strings.Join(parts, "&")
}

func stringMapToAny(m map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func encodePythonDict(b *strings.Builder, m map[string]interface{}) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	b.WriteString("{")
	for i, name := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "'%s': '%v'", name, m[name])
	}
	b.WriteString("}")
}
