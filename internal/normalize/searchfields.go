package normalize

import (
	"sort"
	"strings"
)

// deriveSearchFields populates each Endpoint's derived search fields.
// Schemas already have SearchableText set during the walk.
func deriveSearchFields(api *NormalizedAPI) {
	for _, ep := range api.Endpoints {
		var text strings.Builder
		text.WriteString(ep.Path)
		text.WriteString(" ")
		text.WriteString(ep.Summary)
		text.WriteString(" ")
		text.WriteString(ep.Description)
		text.WriteString(" ")
		text.WriteString(ep.OperationID)
		for _, t := range ep.Tags {
			text.WriteString(" ")
			text.WriteString(t)
		}

		paramNames := make([]string, 0, len(ep.Parameters))
		for _, p := range ep.Parameters {
			paramNames = append(paramNames, p.Name)
			text.WriteString(" ")
			text.WriteString(p.Name)
			text.WriteString(" ")
			text.WriteString(p.Description)
		}
		ep.ParameterNames = paramNames

		codes := make([]string, 0, len(ep.Responses))
		for code := range ep.Responses {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		ep.ResponseCodes = codes

		contentTypeSet := map[string]bool{}
		if ep.RequestBody != nil {
			for mt := range ep.RequestBody.ContentTypes {
				contentTypeSet[mt] = true
			}
		}
		for _, resp := range ep.Responses {
			for mt := range resp.ContentTypes {
				contentTypeSet[mt] = true
			}
		}
		contentTypes := make([]string, 0, len(contentTypeSet))
		for mt := range contentTypeSet {
			contentTypes = append(contentTypes, mt)
		}
		sort.Strings(contentTypes)
		ep.ContentTypes = contentTypes

		ep.SearchableText = text.String()
	}
}

// pathResourceSegments splits a path template into its resource segments,
// skipping empty segments, {placeholders}, version segments and "api".
func pathResourceSegments(path string) []string {
	var segs []string
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "{") {
			continue
		}
		if isVersionSegment(seg) || seg == "api" {
			continue
		}
		segs = append(segs, seg)
	}
	return segs
}

func isVersionSegment(seg string) bool {
	if len(seg) < 2 || (seg[0] != 'v' && seg[0] != 'V') {
		return false
	}
	for _, r := range seg[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
