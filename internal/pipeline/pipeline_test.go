package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salacoste/swagger-mcp-server/internal/config"
)

const petstoreSpec = `{
  "openapi": "3.0.0",
  "info": {"title": "Petstore", "version": "1.0.0"},
  "paths": {
    "/pets": {
      "get": {
        "operationId": "listPets",
        "summary": "List all pets",
        "tags": ["pets"],
        "responses": {"200": {"description": "ok"}}
      },
      "post": {
        "operationId": "createPet",
        "summary": "Create a pet",
        "tags": ["pets"],
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Pet"}}}
        },
        "responses": {"201": {"description": "created"}}
      }
    }
  },
  "components": {
    "schemas": {
      "Pet": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": {"type": "integer"},
          "name": {"type": "string"}
        }
      }
    }
  }
}`

func writeTempSpec(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "petstore.json")
	require.NoError(t, os.WriteFile(path, []byte(petstoreSpec), 0644))
	return path
}

func testConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "mcp_server.db")
	cfg.Search.IndexDirectory = filepath.Join(dir, "search_index")
	return cfg
}

func TestRunBuildsCatalogFromSpecification(t *testing.T) {
	dir := t.TempDir()
	specPath := writeTempSpec(t, dir)
	cfg := testConfig(dir)

	result, err := Run(context.Background(), specPath, cfg, nil)
	require.NoError(t, err)
	defer result.Store.Close()

	require.Equal(t, "Petstore", result.Catalog.Document.Title)
	require.Len(t, result.Catalog.Endpoints, 2)
	require.Contains(t, result.Catalog.Schemas, "Pet")
	require.NotNil(t, result.Catalog.Engine)
}

func TestRunEmitsProgressThroughReadyStage(t *testing.T) {
	dir := t.TempDir()
	specPath := writeTempSpec(t, dir)
	cfg := testConfig(dir)

	events := make(chan ProgressEvent, 32)
	result, err := Run(context.Background(), specPath, cfg, events)
	require.NoError(t, err)
	defer result.Store.Close()
	close(events)

	var sawReady bool
	for ev := range events {
		require.NoError(t, ev.Err)
		if ev.Stage == StageReady {
			sawReady = true
		}
	}
	require.True(t, sawReady)
}

func TestRunWritesCurrentGenerationSymlink(t *testing.T) {
	dir := t.TempDir()
	specPath := writeTempSpec(t, dir)
	cfg := testConfig(dir)

	result, err := Run(context.Background(), specPath, cfg, nil)
	require.NoError(t, err)
	defer result.Store.Close()

	target, err := os.Readlink(filepath.Join(cfg.Search.IndexDirectory, "current"))
	require.NoError(t, err)
	require.Equal(t, result.Catalog.Generation, target)
}

func TestRunFailsOnMissingFile(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	_, err := Run(context.Background(), filepath.Join(dir, "absent.json"), cfg, nil)
	require.Error(t, err)
}

func TestRunFailsOnMalformedSpecification(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	cfg := testConfig(dir)

	_, err := Run(context.Background(), path, cfg, nil)
	require.Error(t, err)
}
