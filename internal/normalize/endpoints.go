package normalize

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

type methodOp struct {
	method HTTPMethod
	op     *openapi3.Operation
}

var pathPlaceholderRe = regexp.MustCompile(`\{([^}]+)\}`)

// normalizeEndpoints extracts one Endpoint per (path, method) pair present
// in the document, merging path-item and operation-level parameters and
// security requirements.
func normalizeEndpoints(doc *openapi3.T, resolver *refResolver, api *NormalizedAPI, report *Report, strict bool) error {
	if doc.Paths == nil {
		return nil
	}
	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for p := range pathMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	w := &schemaWalker{resolver: resolver, api: api, report: report, inlineSeq: len(api.Schemas)}
	seenOperationIDs := map[string]bool{}

	for _, path := range paths {
		item := pathMap[path]
		if item == nil {
			continue
		}
		ops := []methodOp{
			{MethodGet, item.Get}, {MethodPost, item.Post}, {MethodPut, item.Put},
			{MethodDelete, item.Delete}, {MethodPatch, item.Patch}, {MethodHead, item.Head},
			{MethodOptions, item.Options}, {MethodTrace, item.Trace},
		}
		for _, mo := range ops {
			if mo.op == nil {
				continue
			}
			ep, err := buildEndpoint(path, mo.method, item, mo.op, doc.Security, resolver, w, report, strict)
			if err != nil {
				return err
			}
			if !ep.Synthesized {
				if seenOperationIDs[ep.OperationID] {
					report.addWarning("duplicate operationId %q at %s %s", ep.OperationID, ep.Method, ep.Path)
				}
				seenOperationIDs[ep.OperationID] = true
			}
			api.Endpoints = append(api.Endpoints, ep)
		}
	}
	return nil
}

func buildEndpoint(path string, method HTTPMethod, item *openapi3.PathItem, op *openapi3.Operation, globalSecurity openapi3.SecurityRequirements, resolver *refResolver, w *schemaWalker, report *Report, strict bool) (*Endpoint, error) {
	ep := &Endpoint{
		ID:          endpointID(method, path),
		Path:        path,
		Method:      method,
		OperationID: op.OperationID,
		Summary:     op.Summary,
		Description: op.Description,
		Tags:        append([]string{}, op.Tags...),
		Deprecated:  op.Deprecated,
		Responses:   map[string]Response{},
		Extensions:  captureExtensions(op.Extensions),
	}
	if ep.OperationID == "" {
		ep.OperationID = synthesizeOperationID(method, path)
		ep.Synthesized = true
	}

	params, err := mergeParameters(item.Parameters, op.Parameters, resolver, w, report)
	if err != nil {
		return nil, err
	}
	ep.Parameters = params
	if err := reconcilePathParameters(path, ep.Parameters, report); err != nil {
		return nil, err
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		rb := &RequestBody{
			Description:  op.RequestBody.Value.Description,
			Required:     op.RequestBody.Value.Required,
			ContentTypes: map[string]string{},
		}
		for mediaType, content := range op.RequestBody.Value.Content {
			schemaName, err := resolveContentSchema(content, resolver, w)
			if err != nil {
				return nil, err
			}
			rb.ContentTypes[mediaType] = schemaName
		}
		ep.RequestBody = rb
	}

	for code, respRef := range op.Responses.Map() {
		if respRef == nil || respRef.Value == nil {
			continue
		}
		resp := Response{Description: valueOrEmpty(respRef.Value.Description), ContentTypes: map[string]string{}}
		for mediaType, content := range respRef.Value.Content {
			schemaName, err := resolveContentSchema(content, resolver, w)
			if err != nil {
				return nil, err
			}
			resp.ContentTypes[mediaType] = schemaName
		}
		ep.Responses[code] = resp
	}

	if op.Security != nil {
		// Operation specifies security explicitly, even if empty ("no auth").
		ep.Security = mergeSecurity(*op.Security)
	} else {
		ep.Security = mergeSecurity(globalSecurity)
	}

	return ep, nil
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func resolveContentSchema(content *openapi3.MediaType, resolver *refResolver, w *schemaWalker) (string, error) {
	if content == nil || content.Schema == nil {
		return "", nil
	}
	stack := map[string]bool{}
	return w.resolveChild(content.Schema, stack, map[string]bool{}, map[string]bool{})
}

func mergeParameters(pathParams, opParams openapi3.Parameters, resolver *refResolver, w *schemaWalker, report *Report) ([]Parameter, error) {
	byKey := map[string]Parameter{}
	order := []string{}

	add := func(refs openapi3.Parameters) error {
		for _, ref := range refs {
			if ref == nil || ref.Value == nil {
				continue
			}
			v := ref.Value
			key := v.In + ":" + v.Name
			p := Parameter{
				Name:        v.Name,
				Location:    ParameterLocation(v.In),
				Required:    v.Required,
				Description: v.Description,
			}
			if v.Schema != nil {
				stack := map[string]bool{}
				name, err := w.resolveChild(v.Schema, stack, map[string]bool{}, map[string]bool{})
				if err != nil {
					return err
				}
				p.SchemaRef = name
				p.Schema = w.api.Schemas[name]
			}
			if existing, ok := byKey[key]; ok && existing.Required != p.Required {
				report.addWarning("parameter %s has contradictory required flags; operation-level wins", key)
			}
			if _, ok := byKey[key]; !ok {
				order = append(order, key)
			}
			byKey[key] = p // operation-level shadows path-level by (name, location)
		}
		return nil
	}

	if err := add(pathParams); err != nil {
		return nil, err
	}
	if err := add(opParams); err != nil {
		return nil, err
	}

	out := make([]Parameter, 0, len(order))
	for _, key := range order {
		out = append(out, byKey[key])
	}
	return out, nil
}

func reconcilePathParameters(path string, params []Parameter, report *Report) error {
	tokens := pathPlaceholderRe.FindAllStringSubmatch(path, -1)
	declared := map[string]bool{}
	for _, p := range params {
		if p.Location == LocationPath {
			declared[p.Name] = true
		}
	}
	for _, t := range tokens {
		name := t[1]
		if !declared[name] {
			report.addWarning("path template token %q in %q has no matching path parameter", name, path)
		}
	}
	return nil
}

func mergeSecurity(requirements openapi3.SecurityRequirements) []SecurityRequirement {
	var reqs []SecurityRequirement
	for _, requirement := range requirements {
		names := make([]string, 0, len(requirement))
		for name := range requirement {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			reqs = append(reqs, SecurityRequirement{SchemeName: name, Scopes: requirement[name]})
		}
	}
	return reqs
}

// endpointID is the stable identifier used as the FTS/index document key and
// the dependency edge anchor: unaffected by operationId presence.
func endpointID(method HTTPMethod, path string) string {
	return strings.ToLower(string(method)) + " " + path
}

// synthesizeOperationID builds {method}_{path-with-placeholders-replaced},
// lowercase, never used for deduplication.
func synthesizeOperationID(method HTTPMethod, path string) string {
	cleaned := pathPlaceholderRe.ReplaceAllStringFunc(path, func(m string) string {
		return "by_" + strings.Trim(m, "{}")
	})
	cleaned = strings.ReplaceAll(cleaned, "/", "_")
	cleaned = strings.Trim(cleaned, "_")
	return fmt.Sprintf("%s_%s", strings.ToLower(string(method)), strings.ToLower(cleaned))
}
