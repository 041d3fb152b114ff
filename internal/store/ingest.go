package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/salacoste/swagger-mcp-server/internal/apperr"
	"github.com/salacoste/swagger-mcp-server/internal/categorize"
	"github.com/salacoste/swagger-mcp-server/internal/logging"
	"github.com/salacoste/swagger-mcp-server/internal/normalize"
)

// IngestDocument writes one SpecificationDocument's normalized graph and
// category catalog to the relational store in a single transaction,
// ordered apis -> schemas -> security_schemes -> endpoints ->
// endpoint_dependencies -> endpoint_categories. On re-ingest with the same
// content hash this is a no-op; with a different hash for the same source
// path, the prior rows are replaced (cascade delete, then a fresh insert)
// inside the same transaction, so readers never observe a half-replaced
// document.
func (s *Store) IngestDocument(api *normalize.NormalizedAPI, catalog *categorize.Catalog) (apiID int64, err error) {
	timer := logging.StartTimer(logging.CategoryStore, "IngestDocument")
	defer timer.Stop()

	existingID, existingHash, err := s.findBySourcePath(api.Document.SourceFilePath)
	if err != nil {
		return 0, apperr.Storage(err, "look up existing document %s", api.Document.SourceFilePath)
	}
	if existingID != 0 && existingHash == api.Document.ContentHash {
		logging.Store("ingest no-op, content hash unchanged: %s", api.Document.SourceFilePath)
		return existingID, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, apperr.Storage(err, "begin ingest transaction")
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if existingID != 0 {
		if _, err = tx.Exec("DELETE FROM apis WHERE id = ?", existingID); err != nil {
			return 0, apperr.Storage(err, "replace existing document %s", api.Document.SourceFilePath)
		}
		logging.Store("replacing document %s (content hash changed)", api.Document.SourceFilePath)
	}

	apiID, err = insertAPI(tx, api.Document)
	if err != nil {
		return 0, apperr.Storage(err, "insert api row")
	}

	schemaIDs, err := insertSchemas(tx, apiID, api.Schemas)
	if err != nil {
		return 0, apperr.Storage(err, "insert schemas")
	}

	if err = insertSecuritySchemes(tx, apiID, api.SecuritySchemes); err != nil {
		return 0, apperr.Storage(err, "insert security schemes")
	}

	endpointIDs, err := insertEndpoints(tx, apiID, api.Endpoints)
	if err != nil {
		return 0, apperr.Storage(err, "insert endpoints")
	}

	if err = insertDependencies(tx, api.Endpoints, endpointIDs, schemaIDs); err != nil {
		return 0, apperr.Storage(err, "insert endpoint dependencies")
	}

	if catalog != nil {
		if err = insertCategories(tx, apiID, catalog); err != nil {
			return 0, apperr.Storage(err, "insert endpoint categories")
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, apperr.Storage(err, "commit ingest transaction")
	}
	logging.Store("ingested document %s: %d endpoints, %d schemas", api.Document.SourceFilePath, len(api.Endpoints), len(api.Schemas))
	return apiID, nil
}

func (s *Store) findBySourcePath(path string) (id int64, contentHash string, err error) {
	row := s.db.QueryRow("SELECT id, content_hash FROM apis WHERE source_file_path = ?", path)
	err = row.Scan(&id, &contentHash)
	if err == sql.ErrNoRows {
		return 0, "", nil
	}
	if err != nil {
		return 0, "", err
	}
	return id, contentHash, nil
}

func insertAPI(tx *sql.Tx, doc normalize.Document) (int64, error) {
	serversJSON, err := json.Marshal(doc.Servers)
	if err != nil {
		return 0, fmt.Errorf("marshal servers: %w", err)
	}
	res, err := tx.Exec(
		`INSERT INTO apis (title, version, dialect, description, contact_name, contact_email,
			license_name, license_url, servers_json, content_hash, source_file_path, byte_size, ingested_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.Title, doc.Version, string(doc.Dialect), doc.Description, doc.ContactName, doc.ContactEmail,
		doc.LicenseName, doc.LicenseURL, string(serversJSON), doc.ContentHash, doc.SourceFilePath, doc.ByteSize,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// insertSchemas writes schemas in dependency-ascending order (leaves
// first) so that by the time a schema with dependents is inserted, its
// own row already exists for endpoint_dependencies to reference; returns
// a name -> row id map for insertDependencies.
func insertSchemas(tx *sql.Tx, apiID int64, schemas map[string]*normalize.Schema) (map[string]int64, error) {
	order := dependencyAscendingOrder(schemas)
	ids := make(map[string]int64, len(schemas))

	for _, name := range order {
		sch := schemas[name]
		depsJSON, err := json.Marshal(sch.Dependencies)
		if err != nil {
			return nil, fmt.Errorf("marshal dependencies for schema %s: %w", name, err)
		}
		bodyJSON, err := json.Marshal(sch)
		if err != nil {
			return nil, fmt.Errorf("marshal schema body %s: %w", name, err)
		}
		res, err := tx.Exec(
			`INSERT INTO schemas (api_id, name, type, title, description, reference_count, dependencies_json, searchable_text, body_json)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			apiID, name, string(sch.Type), sch.Title, sch.Description, sch.ReferenceCount,
			string(depsJSON), sch.SearchableText, string(bodyJSON),
		)
		if err != nil {
			return nil, fmt.Errorf("insert schema %s: %w", name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids[name] = id
	}
	return ids, nil
}

// dependencyAscendingOrder topologically sorts schema names so that a
// schema with no unresolved dependents is written first; cycles (which
// the normalizer permits) break ties by name so the sort always
// terminates.
func dependencyAscendingOrder(schemas map[string]*normalize.Schema) []string {
	visited := make(map[string]bool, len(schemas))
	var order []string

	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	var visit func(name string, stack map[string]bool)
	visit = func(name string, stack map[string]bool) {
		if visited[name] || stack[name] {
			return
		}
		sch, ok := schemas[name]
		if !ok {
			return
		}
		stack[name] = true
		deps := append([]string{}, sch.Dependencies...)
		sort.Strings(deps)
		for _, dep := range deps {
			if dep == name {
				continue // self-reference: nothing to order against
			}
			visit(dep, stack)
		}
		delete(stack, name)
		if !visited[name] {
			visited[name] = true
			order = append(order, name)
		}
	}
	for _, name := range names {
		visit(name, map[string]bool{})
	}
	return order
}

func insertSecuritySchemes(tx *sql.Tx, apiID int64, schemes map[string]*normalize.SecurityScheme) error {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sec := schemes[name]
		bodyJSON, err := json.Marshal(sec)
		if err != nil {
			return fmt.Errorf("marshal security scheme %s: %w", name, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO security_schemes (api_id, name, type, reference_count, body_json) VALUES (?, ?, ?, ?, ?)`,
			apiID, name, string(sec.Type), sec.ReferenceCount, string(bodyJSON),
		); err != nil {
			return fmt.Errorf("insert security scheme %s: %w", name, err)
		}
	}
	return nil
}

func insertEndpoints(tx *sql.Tx, apiID int64, endpoints []*normalize.Endpoint) (map[string]int64, error) {
	ids := make(map[string]int64, len(endpoints))
	for _, ep := range endpoints {
		tagsJSON, _ := json.Marshal(ep.Tags)
		paramsJSON, _ := json.Marshal(ep.Parameters)
		bodyJSON, _ := json.Marshal(ep.RequestBody)
		responsesJSON, _ := json.Marshal(ep.Responses)
		securityJSON, _ := json.Marshal(ep.Security)
		extensionsJSON, _ := json.Marshal(ep.Extensions)
		paramNamesJSON, _ := json.Marshal(ep.ParameterNames)
		responseCodesJSON, _ := json.Marshal(ep.ResponseCodes)
		contentTypesJSON, _ := json.Marshal(ep.ContentTypes)
		schemaDepsJSON, _ := json.Marshal(ep.SchemaDependencies)

		res, err := tx.Exec(
			`INSERT INTO endpoints (api_id, path, method, operation_id, synthesized_operation_id, summary,
				description, deprecated, category_key, category_group, tags_json, parameters_json,
				request_body_json, responses_json, security_json, extensions_json, searchable_text,
				parameter_names_json, response_codes_json, content_types_json, schema_dependencies_json)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			apiID, ep.Path, string(ep.Method), ep.OperationID, ep.Synthesized, ep.Summary,
			ep.Description, ep.Deprecated, ep.CategoryKey, ep.CategoryGroup, string(tagsJSON), string(paramsJSON),
			string(bodyJSON), string(responsesJSON), string(securityJSON), string(extensionsJSON), ep.SearchableText,
			string(paramNamesJSON), string(responseCodesJSON), string(contentTypesJSON), string(schemaDepsJSON),
		)
		if err != nil {
			return nil, fmt.Errorf("insert endpoint %s %s: %w", ep.Method, ep.Path, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids[ep.ID] = id
	}
	return ids, nil
}

func insertDependencies(tx *sql.Tx, endpoints []*normalize.Endpoint, endpointIDs, schemaIDs map[string]int64) error {
	for _, ep := range endpoints {
		endpointRowID, ok := endpointIDs[ep.ID]
		if !ok {
			continue
		}
		for _, dep := range dependencyEdgesOf(ep) {
			schemaRowID, ok := schemaIDs[dep.SchemaName]
			if !ok {
				continue // dangling dependency would already be fatal upstream in strict mode
			}
			if _, err := tx.Exec(
				`INSERT OR IGNORE INTO endpoint_dependencies (endpoint_id, schema_id, role, status_code) VALUES (?, ?, ?, ?)`,
				endpointRowID, schemaRowID, string(dep.Role), dep.StatusCode,
			); err != nil {
				return fmt.Errorf("insert dependency edge %s -> %s: %w", ep.ID, dep.SchemaName, err)
			}
		}
	}
	return nil
}

// dependencyEdgesOf reconstructs the per-endpoint dependency edges from
// its parameters, request body, and responses the same way the
// normalizer's own cross-reference pass walked them.
func dependencyEdgesOf(ep *normalize.Endpoint) []normalize.DependencyEdge {
	var edges []normalize.DependencyEdge
	for _, p := range ep.Parameters {
		if p.SchemaRef != "" {
			edges = append(edges, normalize.DependencyEdge{EndpointID: ep.ID, SchemaName: p.SchemaRef, Role: normalize.RoleParameter})
		}
	}
	if ep.RequestBody != nil {
		for _, schemaName := range ep.RequestBody.ContentTypes {
			if schemaName != "" {
				edges = append(edges, normalize.DependencyEdge{EndpointID: ep.ID, SchemaName: schemaName, Role: normalize.RoleRequestBody})
			}
		}
	}
	for code, resp := range ep.Responses {
		for _, schemaName := range resp.ContentTypes {
			if schemaName != "" {
				edges = append(edges, normalize.DependencyEdge{EndpointID: ep.ID, SchemaName: schemaName, Role: normalize.RoleResponse, StatusCode: code})
			}
		}
	}
	return edges
}

func insertCategories(tx *sql.Tx, apiID int64, catalog *categorize.Catalog) error {
	for _, cat := range catalog.Categories {
		distJSON, err := json.Marshal(cat.MethodDistribution)
		if err != nil {
			return fmt.Errorf("marshal method distribution for %s: %w", cat.Key, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO endpoint_categories (api_id, category_key, display_name, category_group, endpoint_count, method_distribution_json)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			apiID, cat.Key, cat.DisplayName, cat.Group, cat.EndpointCount, string(distJSON),
		); err != nil {
			return fmt.Errorf("insert category %s: %w", cat.Key, err)
		}
	}
	return nil
}
