package normalize

import (
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/salacoste/swagger-mcp-server/internal/apperr"
)

// normalizeSchemas walks every component schema (inline schemas are
// reachable transitively and named lazily) and populates api.Schemas.
func normalizeSchemas(doc *openapi3.T, resolver *refResolver, api *NormalizedAPI, report *Report) error {
	if doc.Components == nil {
		return nil
	}
	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	w := &schemaWalker{resolver: resolver, api: api, report: report, inlineSeq: 0}
	for _, name := range names {
		ref := doc.Components.Schemas[name]
		stack := map[string]bool{}
		if _, err := w.walk(name, ref, stack); err != nil {
			return err
		}
	}
	return nil
}

type schemaWalker struct {
	resolver  *refResolver
	api       *NormalizedAPI
	report    *Report
	inlineSeq int
}

// walk normalizes the schema named name (synthesizing a name for inline
// schemas), memoized in w.api.Schemas, with cycle detection via the DFS
// stack set. Returns the schema name, so callers track dependencies by
// name even before the referenced schema is fully built.
func (w *schemaWalker) walk(name string, ref *openapi3.SchemaRef, stack map[string]bool) (string, error) {
	if existing, ok := w.api.Schemas[name]; ok && existing.Type != "" {
		return name, nil
	}
	if stack[name] {
		// Cycle: caller records the edge, does not descend further.
		return name, nil
	}
	if ref == nil || ref.Value == nil {
		return "", apperr.UnresolvableReference(name)
	}

	stack[name] = true
	defer delete(stack, name)

	s := &Schema{Name: name}
	w.api.Schemas[name] = s // memoize before recursing, breaks cycles
	v := ref.Value

	s.Type = schemaTypeOf(v)
	s.Format = v.Format
	s.Title = v.Title
	s.Description = v.Description
	s.Enum = v.Enum
	s.ReadOnly = v.ReadOnly
	s.WriteOnly = v.WriteOnly
	s.Required = append([]string{}, v.Required...)
	s.Pattern = v.Pattern
	s.UniqueItems = v.UniqueItems
	s.Example = v.Example
	if v.Min != nil {
		s.Minimum = v.Min
	}
	if v.Max != nil {
		s.Maximum = v.Max
	}
	s.ExclusiveMinimum = v.ExclusiveMin
	s.ExclusiveMaximum = v.ExclusiveMax
	if v.MinLength != 0 {
		ml := int(v.MinLength)
		s.MinLength = &ml
	}
	if v.MaxLength != nil {
		ml := int(*v.MaxLength)
		s.MaxLength = &ml
	}
	if v.MinItems != 0 {
		mi := int(v.MinItems)
		s.MinItems = &mi
	}
	if v.MaxItems != nil {
		mi := int(*v.MaxItems)
		s.MaxItems = &mi
	}
	if v.Discriminator != nil {
		s.Discriminator = v.Discriminator.PropertyName
	}
	s.Extensions = captureExtensions(v.Extensions)
	s.UnknownKeywords = map[string]interface{}{}

	dependencySet := map[string]bool{}
	cycleSet := map[string]bool{}

	if v.Properties != nil {
		s.Properties = make(map[string]*Schema)
		s.PropertyRefs = make(map[string]string)
		propNames := make([]string, 0, len(v.Properties))
		for pname := range v.Properties {
			propNames = append(propNames, pname)
		}
		sort.Strings(propNames)
		for _, pname := range propNames {
			pref := v.Properties[pname]
			childName, err := w.resolveChild(pref, stack, dependencySet, cycleSet)
			if err != nil {
				return "", err
			}
			s.PropertyRefs[pname] = childName
			if child, ok := w.api.Schemas[childName]; ok && !stack[childName] {
				s.Properties[pname] = child
			}
		}
		s.PropertyNames = propNames
	}

	if v.Items != nil {
		childName, err := w.resolveChild(v.Items, stack, dependencySet, cycleSet)
		if err != nil {
			return "", err
		}
		s.ItemsRef = childName
		if !stack[childName] {
			s.Items = w.api.Schemas[childName]
		}
	}

	for _, ref := range v.AllOf {
		childName, err := w.resolveChild(ref, stack, dependencySet, cycleSet)
		if err != nil {
			return "", err
		}
		s.AllOfRefs = append(s.AllOfRefs, childName)
		if child, ok := w.api.Schemas[childName]; ok && !stack[childName] {
			s.AllOf = append(s.AllOf, child)
		}
	}
	for _, ref := range v.OneOf {
		childName, err := w.resolveChild(ref, stack, dependencySet, cycleSet)
		if err != nil {
			return "", err
		}
		s.OneOfRefs = append(s.OneOfRefs, childName)
		if child, ok := w.api.Schemas[childName]; ok && !stack[childName] {
			s.OneOf = append(s.OneOf, child)
		}
	}
	for _, ref := range v.AnyOf {
		childName, err := w.resolveChild(ref, stack, dependencySet, cycleSet)
		if err != nil {
			return "", err
		}
		s.AnyOfRefs = append(s.AnyOfRefs, childName)
		if child, ok := w.api.Schemas[childName]; ok && !stack[childName] {
			s.AnyOf = append(s.AnyOf, child)
		}
	}
	if v.Not != nil {
		childName, err := w.resolveChild(v.Not, stack, dependencySet, cycleSet)
		if err != nil {
			return "", err
		}
		s.NotRef = childName
		if !stack[childName] {
			s.Not = w.api.Schemas[childName]
		}
	}

	deps := make([]string, 0, len(dependencySet))
	for dep := range dependencySet {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	s.Dependencies = deps

	cycles := make([]string, 0, len(cycleSet))
	for dep := range cycleSet {
		cycles = append(cycles, dep)
	}
	sort.Strings(cycles)
	s.CycleEdges = cycles

	s.SearchableText = schemaSearchableText(s)

	w.api.Schemas[name] = s
	return name, nil
}

// resolveChild resolves a schema reference encountered inside a parent
// (property, item, composition slot), naming inline schemas lazily, and
// records the dependency in dependencySet.
func (w *schemaWalker) resolveChild(ref *openapi3.SchemaRef, stack map[string]bool, dependencySet, cycleSet map[string]bool) (string, error) {
	if ref == nil {
		return "", apperr.UnresolvableReference("<nil>")
	}
	name := schemaNameFromRef(ref.Ref)
	if name != "" {
		if !w.resolver.hasSchema(name) {
			return "", apperr.UnresolvableReference(name)
		}
		dependencySet[name] = true
		if stack[name] {
			// name is an ancestor on the current DFS stack: this is a back
			// edge, i.e. a cycle. Record it and stop descending that branch.
			cycleSet[name] = true
			return name, nil
		}
		if _, ok := w.api.Schemas[name]; !ok {
			if _, err := w.walk(name, w.resolver.schemas[name], stack); err != nil {
				return "", err
			}
		}
		return name, nil
	}

	// Inline schema: synthesize a name, walk it directly (no ref lookup).
	w.inlineSeq++
	inlineName := fmt.Sprintf("inline_%d", w.inlineSeq)
	dependencySet[inlineName] = true
	if _, err := w.walk(inlineName, ref, stack); err != nil {
		return "", err
	}
	return inlineName, nil
}

func schemaTypeOf(v *openapi3.Schema) SchemaType {
	if v.Type == nil || len(*v.Type) == 0 {
		return ""
	}
	t := (*v.Type)[0]
	switch t {
	case "object":
		return SchemaTypeObject
	case "array":
		return SchemaTypeArray
	case "string":
		return SchemaTypeString
	case "number":
		return SchemaTypeNumber
	case "integer":
		return SchemaTypeInteger
	case "boolean":
		return SchemaTypeBoolean
	case "null":
		return SchemaTypeNull
	default:
		return SchemaType(t)
	}
}

func schemaSearchableText(s *Schema) string {
	text := s.Name + " " + s.Title + " " + s.Description
	for _, p := range s.PropertyNames {
		text += " " + p
	}
	return text
}
