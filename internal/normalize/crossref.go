package normalize

import "github.com/salacoste/swagger-mcp-server/internal/apperr"

// crossReferenceValidate computes each Endpoint's schema_dependencies,
// increments schema/security reference counts, and fails if strict mode is
// on and a dependency name is missing from its component map (a consistency
// error distinct from an unresolved $ref caught during the walk).
func crossReferenceValidate(api *NormalizedAPI, report *Report, strict bool) error {
	for _, ep := range api.Endpoints {
		depSet := map[string]bool{}

		for _, p := range ep.Parameters {
			if p.SchemaRef == "" {
				continue
			}
			if !addDependency(api, report, strict, depSet, ep.ID, p.SchemaRef, RoleParameter, "") {
				return apperr.SpecInvariant(nil, "endpoint %s %s references missing schema %q via parameter %q", ep.Method, ep.Path, p.SchemaRef, p.Name)
			}
		}
		if ep.RequestBody != nil {
			for _, schemaName := range ep.RequestBody.ContentTypes {
				if schemaName == "" {
					continue
				}
				if !addDependency(api, report, strict, depSet, ep.ID, schemaName, RoleRequestBody, "") {
					return apperr.SpecInvariant(nil, "endpoint %s %s references missing schema %q via request body", ep.Method, ep.Path, schemaName)
				}
			}
		}
		for code, resp := range ep.Responses {
			for _, schemaName := range resp.ContentTypes {
				if schemaName == "" {
					continue
				}
				if !addDependency(api, report, strict, depSet, ep.ID, schemaName, RoleResponse, code) {
					return apperr.SpecInvariant(nil, "endpoint %s %s references missing schema %q via response %s", ep.Method, ep.Path, schemaName, code)
				}
			}
		}

		deps := make([]string, 0, len(depSet))
		for d := range depSet {
			deps = append(deps, d)
		}
		ep.SchemaDependencies = deps
	}

	// Schema-to-schema reference counts (property/items/composition deps).
	for name, schema := range api.Schemas {
		for _, dep := range schema.Dependencies {
			target, ok := api.Schemas[dep]
			if !ok {
				report.addWarning("schema %q depends on missing schema %q", name, dep)
				if strict {
					return apperr.SpecInvariant(nil, "schema %q depends on missing schema %q", name, dep)
				}
				continue
			}
			target.ReferenceCount++
		}
	}

	// Security reference counts.
	for _, ep := range api.Endpoints {
		for _, sec := range ep.Security {
			if scheme, ok := api.SecuritySchemes[sec.SchemeName]; ok {
				scheme.ReferenceCount++
			} else {
				report.addWarning("endpoint %s %s references unknown security scheme %q", ep.Method, ep.Path, sec.SchemeName)
			}
		}
	}

	return nil
}

func addDependency(api *NormalizedAPI, report *Report, strict bool, depSet map[string]bool, endpointID, schemaName string, role DependencyRole, statusCode string) bool {
	schema, ok := api.Schemas[schemaName]
	if !ok {
		report.addWarning("dependency names missing schema %q", schemaName)
		return !strict
	}
	schema.ReferenceCount++
	depSet[schemaName] = true
	api.Dependencies = append(api.Dependencies, DependencyEdge{
		EndpointID: endpointID,
		SchemaName: schemaName,
		Role:       role,
		StatusCode: statusCode,
	})
	return true
}
