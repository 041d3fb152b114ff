package normalize

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// loadSwagger2 translates a Swagger 2.0 document into the 3.x shape so the
// rest of the pipeline (built on openapi3.T) needs no v2-specific branches
// beyond this file, which also translates securityDefinitions
// (convertV2SecurityDefinitions).
func loadSwagger2(raw []byte) (*openapi3.T, error) {
	var v2 map[string]interface{}
	if err := unmarshalAny(raw, &v2); err != nil {
		return nil, fmt.Errorf("parse swagger 2.0 document: %w", err)
	}

	v3 := map[string]interface{}{
		"openapi": "3.0.3",
		"info":    v2["info"],
	}
	if tags, ok := v2["tags"]; ok {
		v3["tags"] = tags
	}
	v3["servers"] = swagger2Servers(v2)

	components := map[string]interface{}{}
	if defs, ok := v2["definitions"].(map[string]interface{}); ok {
		components["schemas"] = defs
	}
	if params, ok := v2["parameters"].(map[string]interface{}); ok {
		components["parameters"] = convertV2Parameters(params)
	}
	if resps, ok := v2["responses"].(map[string]interface{}); ok {
		components["responses"] = convertV2Responses(resps, defaultProduces(v2))
	}
	if secDefs, ok := v2["securityDefinitions"].(map[string]interface{}); ok {
		components["securitySchemes"] = convertV2SecurityDefinitions(secDefs)
	}
	v3["components"] = components

	if paths, ok := v2["paths"].(map[string]interface{}); ok {
		v3["paths"] = convertV2Paths(paths, defaultConsumes(v2), defaultProduces(v2))
	}
	if sec, ok := v2["security"]; ok {
		v3["security"] = sec
	}

	rewriteV2Refs(v3)

	data, err := json.Marshal(v3)
	if err != nil {
		return nil, fmt.Errorf("re-encode translated swagger 2.0 document: %w", err)
	}

	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false
	return loader.LoadFromData(data)
}

func defaultProduces(v2 map[string]interface{}) []string {
	return stringListOf(v2["produces"])
}

func defaultConsumes(v2 map[string]interface{}) []string {
	return stringListOf(v2["consumes"])
}

func stringListOf(v interface{}) []string {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func swagger2Servers(v2 map[string]interface{}) []map[string]interface{} {
	host, _ := v2["host"].(string)
	basePath, _ := v2["basePath"].(string)
	schemes := stringListOf(v2["schemes"])
	if len(schemes) == 0 {
		schemes = []string{"https"}
	}
	if host == "" {
		host = "localhost"
	}
	servers := make([]map[string]interface{}, 0, len(schemes))
	for _, scheme := range schemes {
		servers = append(servers, map[string]interface{}{
			"url": scheme + "://" + host + basePath,
		})
	}
	return servers
}

var v2ParamLocationsWithBody = map[string]bool{"body": true, "formData": true}

// convertV2Paths rewrites each v2 operation's body/formData parameters into
// a 3.x requestBody and tags response bodies with the document's produces.
func convertV2Paths(paths map[string]interface{}, consumes, produces []string) map[string]interface{} {
	out := make(map[string]interface{}, len(paths))
	for path, rawItem := range paths {
		item, ok := rawItem.(map[string]interface{})
		if !ok {
			continue
		}
		out[path] = convertV2PathItem(item, consumes, produces)
	}
	return out
}

func convertV2PathItem(item map[string]interface{}, consumes, produces []string) map[string]interface{} {
	out := map[string]interface{}{}
	for key, val := range item {
		if key == "parameters" {
			out["parameters"] = convertV2ParameterList(val, consumes, nil)
			continue
		}
		if op, ok := val.(map[string]interface{}); ok && isHTTPMethodKey(key) {
			out[key] = convertV2Operation(op, consumes, produces)
			continue
		}
		out[key] = val
	}
	return out
}

func isHTTPMethodKey(key string) bool {
	switch key {
	case "get", "post", "put", "delete", "patch", "head", "options", "trace":
		return true
	}
	return false
}

func convertV2Operation(op map[string]interface{}, docConsumes, docProduces []string) map[string]interface{} {
	out := map[string]interface{}{}
	consumes := docConsumes
	if c, ok := op["consumes"]; ok {
		consumes = stringListOf(c)
	}
	produces := docProduces
	if p, ok := op["produces"]; ok {
		produces = stringListOf(p)
	}

	var bodySchema interface{}
	var nonBodyParams []interface{}
	if rawParams, ok := op["parameters"].([]interface{}); ok {
		for _, rp := range rawParams {
			p, ok := rp.(map[string]interface{})
			if !ok {
				nonBodyParams = append(nonBodyParams, rp)
				continue
			}
			in, _ := p["in"].(string)
			if in == "body" {
				bodySchema = p["schema"]
				continue
			}
			if in == "formData" {
				continue // formData parameters are dropped; no request body is built from them
			}
			nonBodyParams = append(nonBodyParams, p)
		}
	}
	out["parameters"] = nonBodyParams

	if bodySchema != nil {
		out["requestBody"] = map[string]interface{}{
			"content": contentMap(consumes, bodySchema),
		}
	}

	for key, val := range op {
		switch key {
		case "parameters", "consumes", "produces", "responses":
			continue
		default:
			out[key] = val
		}
	}

	if rawResponses, ok := op["responses"].(map[string]interface{}); ok {
		out["responses"] = convertV2Responses(rawResponses, produces)
	}
	return out
}

func contentMap(mediaTypes []string, schema interface{}) map[string]interface{} {
	if len(mediaTypes) == 0 {
		mediaTypes = []string{"application/json"}
	}
	content := make(map[string]interface{}, len(mediaTypes))
	for _, mt := range mediaTypes {
		content[mt] = map[string]interface{}{"schema": schema}
	}
	return content
}

func convertV2Responses(responses map[string]interface{}, produces []string) map[string]interface{} {
	out := make(map[string]interface{}, len(responses))
	for code, rawResp := range responses {
		resp, ok := rawResp.(map[string]interface{})
		if !ok {
			out[code] = rawResp
			continue
		}
		converted := map[string]interface{}{}
		if desc, ok := resp["description"]; ok {
			converted["description"] = desc
		} else {
			converted["description"] = ""
		}
		if schema, ok := resp["schema"]; ok {
			converted["content"] = contentMap(produces, schema)
		}
		out[code] = converted
	}
	return out
}

func convertV2ParameterList(val interface{}, consumes []string, _ interface{}) []interface{} {
	list, ok := val.([]interface{})
	if !ok {
		return nil
	}
	out := make([]interface{}, 0, len(list))
	for _, item := range list {
		p, ok := item.(map[string]interface{})
		if !ok {
			out = append(out, item)
			continue
		}
		in, _ := p["in"].(string)
		if v2ParamLocationsWithBody[in] {
			continue // body/formData handled per-operation, not at path-item level
		}
		out = append(out, p)
	}
	return out
}

func convertV2Parameters(params map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(params))
	for name, raw := range params {
		p, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if in, _ := p["in"].(string); v2ParamLocationsWithBody[in] {
			continue
		}
		out[name] = p
	}
	return out
}

func convertV2SecurityDefinitions(defs map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(defs))
	for name, raw := range defs {
		d, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		typ, _ := d["type"].(string)
		switch typ {
		case "basic":
			out[name] = map[string]interface{}{"type": "http", "scheme": "basic"}
		case "apiKey":
			out[name] = map[string]interface{}{"type": "apiKey", "name": d["name"], "in": d["in"]}
		case "oauth2":
			out[name] = convertV2OAuth2(d)
		default:
			out[name] = d
		}
	}
	return out
}

func convertV2OAuth2(d map[string]interface{}) map[string]interface{} {
	flowName, _ := d["flow"].(string)
	v3Flow := map[string]interface{}{"scopes": d["scopes"]}
	if url, ok := d["authorizationUrl"]; ok {
		v3Flow["authorizationUrl"] = url
	}
	if url, ok := d["tokenUrl"]; ok {
		v3Flow["tokenUrl"] = url
	}
	flows := map[string]interface{}{}
	switch flowName {
	case "implicit":
		flows["implicit"] = v3Flow
	case "password":
		flows["password"] = v3Flow
	case "application":
		flows["clientCredentials"] = v3Flow
	case "accessCode":
		flows["authorizationCode"] = v3Flow
	}
	return map[string]interface{}{"type": "oauth2", "flows": flows}
}

// rewriteV2Refs rewrites every "$ref" string in place from v2 component
// paths (#/definitions/..., #/parameters/..., #/responses/...) to their 3.x
// equivalents under #/components/....
func rewriteV2Refs(node interface{}) {
	switch v := node.(type) {
	case map[string]interface{}:
		for key, val := range v {
			if key == "$ref" {
				if s, ok := val.(string); ok {
					v[key] = rewriteV2RefString(s)
				}
				continue
			}
			rewriteV2Refs(val)
		}
	case []interface{}:
		for _, item := range v {
			rewriteV2Refs(item)
		}
	}
}

func rewriteV2RefString(ref string) string {
	switch {
	case hasPrefix(ref, "#/definitions/"):
		return "#/components/schemas/" + ref[len("#/definitions/"):]
	case hasPrefix(ref, "#/parameters/"):
		return "#/components/parameters/" + ref[len("#/parameters/"):]
	case hasPrefix(ref, "#/responses/"):
		return "#/components/responses/" + ref[len("#/responses/"):]
	default:
		return ref
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
