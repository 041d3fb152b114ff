package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salacoste/swagger-mcp-server/internal/categorize"
	"github.com/salacoste/swagger-mcp-server/internal/normalize"
)

func sampleAPI() *normalize.NormalizedAPI {
	return &normalize.NormalizedAPI{
		Document: normalize.Document{
			Title: "Petstore", Version: "1.0.0", Dialect: normalize.DialectOpenAPI3,
			ContentHash: "hash-1", SourceFilePath: "petstore.json",
		},
		Schemas: map[string]*normalize.Schema{
			"Pet": {Name: "Pet", Type: normalize.SchemaTypeObject, ReferenceCount: 1},
		},
		SecuritySchemes: map[string]*normalize.SecurityScheme{
			"apiKeyAuth": {Name: "apiKeyAuth", Type: normalize.SecurityTypeAPIKey},
		},
		Endpoints: []*normalize.Endpoint{
			{
				ID: "get /pets", Path: "/pets", Method: normalize.MethodGet, OperationID: "listPets",
				Responses: map[string]normalize.Response{
					"200": {ContentTypes: map[string]string{"application/json": "Pet"}},
				},
			},
		},
	}
}

func TestOpenAppliesMigrations(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	defer s.Close()

	var count int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM database_migrations").Scan(&count))
	require.Equal(t, len(migrations), count)
}

func TestIngestDocumentWritesAllTables(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	defer s.Close()

	api := sampleAPI()
	catalog := &categorize.Catalog{Categories: []categorize.Category{
		{Key: "pets", DisplayName: "Pets", EndpointCount: 1, MethodDistribution: map[string]int{"GET": 1}},
	}}

	apiID, err := s.IngestDocument(api, catalog)
	require.NoError(t, err)
	require.NotZero(t, apiID)

	var endpointCount, schemaCount, secCount, depCount, catCount int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM endpoints WHERE api_id = ?", apiID).Scan(&endpointCount))
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM schemas WHERE api_id = ?", apiID).Scan(&schemaCount))
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM security_schemes WHERE api_id = ?", apiID).Scan(&secCount))
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM endpoint_dependencies").Scan(&depCount))
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM endpoint_categories WHERE api_id = ?", apiID).Scan(&catCount))

	require.Equal(t, 1, endpointCount)
	require.Equal(t, 1, schemaCount)
	require.Equal(t, 1, secCount)
	require.Equal(t, 1, depCount)
	require.Equal(t, 1, catCount)
}

func TestIngestDocumentSameHashIsNoOp(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	defer s.Close()

	api := sampleAPI()
	id1, err := s.IngestDocument(api, nil)
	require.NoError(t, err)
	id2, err := s.IngestDocument(api, nil)
	require.NoError(t, err)
	require.Equal(t, id1, id2)

	var count int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM apis").Scan(&count))
	require.Equal(t, 1, count)
}

func TestIngestDocumentDifferentHashReplaces(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	defer s.Close()

	api := sampleAPI()
	_, err = s.IngestDocument(api, nil)
	require.NoError(t, err)

	api.Document.ContentHash = "hash-2"
	_, err = s.IngestDocument(api, nil)
	require.NoError(t, err)

	var count int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM apis").Scan(&count))
	require.Equal(t, 1, count)
}

func TestCreateBackupAndRestore(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	s, err := Open(dbPath)
	require.NoError(t, err)
	s.Close()

	backupPath, err := CreateBackup(dbPath)
	require.NoError(t, err)
	require.FileExists(t, backupPath)

	require.NoError(t, RestoreBackup(dbPath, backupPath))
	require.FileExists(t, dbPath)
}
