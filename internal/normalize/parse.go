package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/salacoste/swagger-mcp-server/internal/apperr"
)

// dialectPeek is the minimal shape needed to classify a document before
// committing to a parser.
type dialectPeek struct {
	OpenAPI string `json:"openapi" yaml:"openapi"`
	Swagger string `json:"swagger" yaml:"swagger"`
}

// Normalize parses raw OpenAPI/Swagger bytes and produces a NormalizedAPI, a
// Report of warnings/errors/counters, or a fatal *apperr.Error.
//
// strict controls whether invariant violations abort normalization
// (SpecInvariantError) or are demoted to warnings.
func Normalize(raw []byte, sourcePath string, strict bool) (*NormalizedAPI, *Report, error) {
	report := newReport()

	dialect, err := detectDialect(raw)
	if err != nil {
		return nil, report, apperr.Input(err, "could not determine specification dialect for %s", sourcePath)
	}

	var doc *openapi3.T
	switch dialect {
	case DialectSwagger2:
		doc, err = loadSwagger2(raw)
	default:
		doc, err = loadOpenAPI3(raw)
	}
	if err != nil {
		return nil, report, apperr.Input(err, "failed to parse specification %s", sourcePath)
	}

	api := &NormalizedAPI{
		Schemas:         make(map[string]*Schema),
		SecuritySchemes: make(map[string]*SecurityScheme),
	}
	api.Document = buildDocument(doc, dialect, sourcePath, raw)
	api.Tags, api.TagGroups = extractTagsAndGroups(doc)

	resolver := newRefResolver(doc)

	if err := normalizeSchemas(doc, resolver, api, report); err != nil {
		return nil, report, err
	}
	if err := normalizeSecuritySchemes(doc, api, report); err != nil {
		return nil, report, err
	}
	if err := normalizeEndpoints(doc, resolver, api, report, strict); err != nil {
		return nil, report, err
	}
	if err := crossReferenceValidate(api, report, strict); err != nil {
		return nil, report, err
	}
	deriveSearchFields(api)

	report.incr("endpoints")
	report.Counters["endpoints"] = len(api.Endpoints)
	report.Counters["schemas"] = len(api.Schemas)
	report.Counters["security_schemes"] = len(api.SecuritySchemes)

	return api, report, nil
}

func detectDialect(raw []byte) (Dialect, error) {
	var peek dialectPeek
	if err := unmarshalAny(raw, &peek); err != nil {
		return "", fmt.Errorf("malformed specification document: %w", err)
	}
	switch {
	case peek.Swagger == "2.0":
		return DialectSwagger2, nil
	case len(peek.OpenAPI) >= 1 && peek.OpenAPI[0] == '3':
		if len(peek.OpenAPI) >= 3 && peek.OpenAPI[:3] == "3.1" {
			return DialectOpenAPI31, nil
		}
		return DialectOpenAPI3, nil
	default:
		return "", fmt.Errorf("unrecognized or unsupported dialect (openapi=%q swagger=%q)", peek.OpenAPI, peek.Swagger)
	}
}

func loadOpenAPI3(raw []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, err
	}
	// Structural invariant checking beyond parsing is this package's own
	// cross-reference validator (crossref.go), not kin-openapi's stricter
	// Validate(), which rejects documents this system should still be able
	// to ingest in non-strict mode.
	return doc, nil
}

func buildDocument(doc *openapi3.T, dialect Dialect, sourcePath string, raw []byte) Document {
	d := Document{
		Dialect:        dialect,
		SourceFilePath: sourcePath,
		ByteSize:       int64(len(raw)),
		ContentHash:    contentHash(raw),
	}
	if doc.Info != nil {
		d.Title = doc.Info.Title
		d.Version = doc.Info.Version
		d.Description = doc.Info.Description
		if doc.Info.Contact != nil {
			d.ContactName = doc.Info.Contact.Name
			d.ContactEmail = doc.Info.Contact.Email
		}
		if doc.Info.License != nil {
			d.LicenseName = doc.Info.License.Name
			d.LicenseURL = doc.Info.License.URL
		}
	}
	for _, s := range doc.Servers {
		srv := Server{URL: s.URL, Description: s.Description, Variables: make(map[string]string)}
		for name, v := range s.Variables {
			if v != nil {
				srv.Variables[name] = v.Default
			}
		}
		d.Servers = append(d.Servers, srv)
	}
	return d
}

func contentHash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func extractTagsAndGroups(doc *openapi3.T) ([]Tag, []TagGroup) {
	var tags []Tag
	for _, t := range doc.Tags {
		tags = append(tags, Tag{Name: t.Name, Description: t.Description})
	}
	var groups []TagGroup
	if raw, ok := doc.Extensions["x-tagGroups"]; ok {
		if list, ok := raw.([]interface{}); ok {
			for _, item := range list {
				m, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				group := TagGroup{}
				if name, ok := m["name"].(string); ok {
					group.Name = name
				}
				if rawTags, ok := m["tags"].([]interface{}); ok {
					for _, rt := range rawTags {
						if s, ok := rt.(string); ok {
							group.Tags = append(group.Tags, s)
						}
					}
				}
				groups = append(groups, group)
			}
		}
	}
	return tags, groups
}
