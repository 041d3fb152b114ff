package mcpserver

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/salacoste/swagger-mcp-server/internal/apperr"
)

// APIInfo renders the swagger://api-info resource: a human-readable text
// summary of the loaded specification.
func (c *Catalog) APIInfo(ctx context.Context) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", c.Document.Title, c.Document.Version)
	if c.Document.Description != "" {
		fmt.Fprintf(&b, "%s\n", c.Document.Description)
	}
	fmt.Fprintf(&b, "\nDialect: %s\n", c.Document.Dialect)
	fmt.Fprintf(&b, "Endpoints: %d\n", len(c.Endpoints))
	fmt.Fprintf(&b, "Schemas: %d\n", len(c.Schemas))
	fmt.Fprintf(&b, "Security schemes: %d\n", len(c.SecuritySchemes))

	if len(c.Document.Servers) > 0 {
		b.WriteString("\nServers:\n")
		for _, s := range c.Document.Servers {
			fmt.Fprintf(&b, "  - %s", s.URL)
			if s.Description != "" {
				fmt.Fprintf(&b, " (%s)", s.Description)
			}
			b.WriteString("\n")
		}
	}

	methodCounts := map[string]int{}
	for _, ep := range c.Endpoints {
		methodCounts[string(ep.Method)]++
	}
	if len(methodCounts) > 0 {
		methods := make([]string, 0, len(methodCounts))
		for m := range methodCounts {
			methods = append(methods, m)
		}
		sort.Strings(methods)
		b.WriteString("\nEndpoints by method:\n")
		for _, m := range methods {
			fmt.Fprintf(&b, "  %s: %d\n", m, methodCounts[m])
		}
	}

	return b.String(), nil
}

// Health renders the swagger://health resource: table counts plus the
// on-disk database file size, grounded on the original system's CLI
// health handler and reimplemented against this system's own schema.
func (c *Catalog) Health(ctx context.Context) (HealthResult, error) {
	result := HealthResult{
		Status:          "ok",
		Endpoints:       len(c.Endpoints),
		Schemas:         len(c.Schemas),
		SecuritySchemes: len(c.SecuritySchemes),
		IndexGeneration: c.Generation,
		UptimeSeconds:   time.Since(c.StartedAt).Seconds(),
		APIs:            1,
	}

	if c.DB != nil {
		if err := c.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM apis").Scan(&result.APIs); err != nil {
			return HealthResult{}, apperr.Storage(err, "count apis table")
		}
		var endpointCount int
		if err := c.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM endpoints").Scan(&endpointCount); err != nil {
			return HealthResult{}, apperr.Storage(err, "count endpoints table")
		}
		result.Endpoints = endpointCount
		var schemaCount int
		if err := c.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM schemas").Scan(&schemaCount); err != nil {
			return HealthResult{}, apperr.Storage(err, "count schemas table")
		}
		result.Schemas = schemaCount
	}

	if c.DBPath != "" {
		if info, err := os.Stat(c.DBPath); err == nil {
			result.DatabaseBytes = info.Size()
		}
	}

	return result, nil
}
