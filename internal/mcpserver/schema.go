package mcpserver

import (
	"context"
	"strings"

	"github.com/salacoste/swagger-mcp-server/internal/apperr"
	"github.com/salacoste/swagger-mcp-server/internal/normalize"
)

// GetSchema looks up a named schema, spec.md §6: `NotFound` when the
// schema is absent, case-insensitive name match as a fallback (matching
// the lenient lookup the pack's own getSchema handlers use).
func (c *Catalog) GetSchema(ctx context.Context, args GetSchemaArgs) (GetSchemaResult, error) {
	schema, ok := c.Schemas[args.SchemaName]
	if !ok {
		for name, s := range c.Schemas {
			if strings.EqualFold(name, args.SchemaName) {
				schema, ok = s, true
				break
			}
		}
	}
	if !ok {
		return GetSchemaResult{}, apperr.NotFound("schema", args.SchemaName)
	}

	def := schema
	if args.ResolveRefs {
		def = resolveSchemaRefs(schema, c.Schemas, map[string]bool{})
	}

	result := GetSchemaResult{
		Name:            schema.Name,
		Type:            string(schema.Type),
		Definition:      def,
		Description:     schema.Description,
		RequiredFields:  schema.Required,
		PropertiesCount: len(schema.Properties),
	}
	if args.IncludeExamples {
		result.Examples = collectSchemaExamples(schema)
	}
	return result, nil
}

// resolveSchemaRefs returns a copy of schema with every composition-slot
// reference (AllOfRefs/OneOfRefs/AnyOfRefs/NotRef/ItemsRef/PropertyRefs)
// inlined from the registry, one hop at a time. visited guards against
// the cyclic schema graphs spec.md requires surviving without a stack
// overflow: a reference back onto a schema already being resolved is left
// as a reference rather than expanded again.
func resolveSchemaRefs(schema *normalize.Schema, registry map[string]*normalize.Schema, visited map[string]bool) *normalize.Schema {
	if schema == nil || visited[schema.Name] {
		return schema
	}
	visited[schema.Name] = true
	defer delete(visited, schema.Name)

	cp := *schema
	if len(schema.Properties) > 0 {
		cp.Properties = make(map[string]*normalize.Schema, len(schema.Properties))
		for name, prop := range schema.Properties {
			cp.Properties[name] = resolveSchemaRefs(prop, registry, visited)
		}
	}
	for name, ref := range schema.PropertyRefs {
		if _, ok := schema.Properties[name]; ok {
			continue
		}
		if len(schema.Properties) == 0 && len(cp.Properties) == 0 {
			cp.Properties = make(map[string]*normalize.Schema, len(schema.PropertyRefs))
		}
		cp.Properties[name] = resolveSchemaRefs(registry[ref], registry, visited)
	}
	if schema.Items != nil {
		cp.Items = resolveSchemaRefs(schema.Items, registry, visited)
	} else if schema.ItemsRef != "" {
		cp.Items = resolveSchemaRefs(registry[schema.ItemsRef], registry, visited)
	}
	cp.AllOf = resolveRefList(schema.AllOf, schema.AllOfRefs, registry, visited)
	cp.OneOf = resolveRefList(schema.OneOf, schema.OneOfRefs, registry, visited)
	cp.AnyOf = resolveRefList(schema.AnyOf, schema.AnyOfRefs, registry, visited)
	if schema.Not == nil && schema.NotRef != "" {
		cp.Not = resolveSchemaRefs(registry[schema.NotRef], registry, visited)
	}
	return &cp
}

func resolveRefList(existing []*normalize.Schema, refs []string, registry map[string]*normalize.Schema, visited map[string]bool) []*normalize.Schema {
	if len(existing) > 0 {
		out := make([]*normalize.Schema, len(existing))
		for i, s := range existing {
			out[i] = resolveSchemaRefs(s, registry, visited)
		}
		return out
	}
	if len(refs) == 0 {
		return nil
	}
	out := make([]*normalize.Schema, 0, len(refs))
	for _, ref := range refs {
		out = append(out, resolveSchemaRefs(registry[ref], registry, visited))
	}
	return out
}

// collectSchemaExamples gathers the schema's own top-level example plus
// any examples attached to its immediate properties.
func collectSchemaExamples(schema *normalize.Schema) []interface{} {
	var examples []interface{}
	if schema.Example != nil {
		examples = append(examples, schema.Example)
	}
	for _, prop := range schema.Properties {
		if prop.Example != nil {
			examples = append(examples, prop.Example)
		}
	}
	return examples
}
