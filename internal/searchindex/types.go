// Package searchindex is the keyword-weighted inverted index behind the
// MCP server's searchEndpoints tool: one posting list per analyzed field,
// a BM25F-family scorer, and a batched build/optimize/validate protocol.
// Separate from internal/store's FTS5 mirror tables, which exist for a
// different surface (ad hoc SQL search) with a different field set and no
// relevance weighting.
package searchindex

// FieldWeights are the per-field multiplicative boosts applied to a
// document's free-text field scores.
type FieldWeights struct {
	EndpointPath          float64
	ResourceName          float64
	OperationSummary      float64
	OperationDescription  float64
	ParameterNames        float64
	ParameterDescriptions float64
	Keywords              float64
	Tags                  float64
	OperationID           float64
	SearchableText        float64
}

// DefaultFieldWeights returns the pinned weight table.
func DefaultFieldWeights() FieldWeights {
	return FieldWeights{
		EndpointPath:          1.8,
		ResourceName:          1.4,
		OperationSummary:      1.5,
		OperationDescription:  1.2,
		ParameterNames:        0.9,
		ParameterDescriptions: 0.8,
		Keywords:              0.8,
		Tags:                  0.7,
		OperationID:           0.6,
		SearchableText:        1.0,
	}
}

// freeTextFields lists every field contributing to the weighted free-text
// score, in the order their weight is looked up.
var freeTextFields = []string{
	"endpoint_path", "resource_name", "operation_summary", "operation_description",
	"parameter_names", "parameter_descriptions", "keywords", "tags",
	"operation_id", "searchable_text",
}

func (w FieldWeights) of(field string) float64 {
	switch field {
	case "endpoint_path":
		return w.EndpointPath
	case "resource_name":
		return w.ResourceName
	case "operation_summary":
		return w.OperationSummary
	case "operation_description":
		return w.OperationDescription
	case "parameter_names":
		return w.ParameterNames
	case "parameter_descriptions":
		return w.ParameterDescriptions
	case "keywords":
		return w.Keywords
	case "tags":
		return w.Tags
	case "operation_id":
		return w.OperationID
	case "searchable_text":
		return w.SearchableText
	default:
		return 0
	}
}

// Document is one SearchDocument: the flat, denormalized record the index
// stores per endpoint.
type Document struct {
	ID string

	EndpointPath          string
	Method                string
	ResourceName          string
	OperationSummary      string
	OperationDescription  string
	ParameterNames        []string
	ParameterDescriptions []string
	Keywords              []string
	Tags                  []string
	OperationID           string
	SearchableText        string

	// Filter-only fields, matched exactly rather than analyzed for
	// relevance.
	ContentTypes           []string
	StatusCodes            []string
	SecuritySchemes        []string
	RequiredParameterNames []string
	Deprecated             bool
	HasRequestBody         bool
	HasExamples            bool
}

func (d Document) fieldText(field string) string {
	switch field {
	case "endpoint_path":
		return d.EndpointPath
	case "resource_name":
		return d.ResourceName
	case "operation_summary":
		return d.OperationSummary
	case "operation_description":
		return d.OperationDescription
	case "parameter_names":
		return join(d.ParameterNames)
	case "parameter_descriptions":
		return join(d.ParameterDescriptions)
	case "keywords":
		return join(d.Keywords)
	case "tags":
		return join(d.Tags)
	case "operation_id":
		return d.OperationID
	case "searchable_text":
		return d.SearchableText
	default:
		return ""
	}
}

func join(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}
