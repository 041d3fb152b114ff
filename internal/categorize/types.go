// Package categorize assigns each normalized Endpoint a category and
// category group, and builds the ordered catalog of categories for a
// SpecificationDocument. See classify.go for the classification rules; its
// Categorize also assembles the catalog.
package categorize

import "github.com/salacoste/swagger-mcp-server/internal/normalize"

// Category is one entry of a Catalog.
type Category struct {
	Key               string
	DisplayName       string
	Group             string
	EndpointCount     int
	MethodDistribution map[string]int
}

// Catalog is the ordered set of all categories for a SpecificationDocument,
// sorted by EndpointCount descending, then Key lexicographically.
type Catalog struct {
	Categories []Category
}

// tagDefinition carries a root-level tag's declared display name, used to
// prefer the tag's own description over the raw tag string.
type tagDefinition struct {
	displayName string
}
