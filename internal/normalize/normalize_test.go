package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const petstoreSpec = `{
  "openapi": "3.0.3",
  "info": {"title": "Petstore", "version": "1.0.0"},
  "paths": {
    "/pets": {
      "get": {
        "operationId": "listPets",
        "summary": "List pets",
        "tags": ["pets"],
        "responses": {
          "200": {
            "description": "ok",
            "content": {"application/json": {"schema": {"type": "array", "items": {"$ref": "#/components/schemas/Pet"}}}}
          }
        }
      }
    },
    "/pets/{petId}": {
      "get": {
        "operationId": "getPet",
        "summary": "Get a pet",
        "tags": ["pets"],
        "parameters": [{"name": "petId", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {
          "200": {
            "description": "ok",
            "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Pet"}}}
          }
        }
      }
    },
    "/pets/{petId}/orders": {
      "get": {
        "operationId": "listPetOrders",
        "summary": "List orders for a pet",
        "tags": ["pets"],
        "parameters": [{"name": "petId", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {
          "200": {
            "description": "ok",
            "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Pet"}}}
          }
        }
      }
    }
  },
  "components": {
    "schemas": {
      "Pet": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": {"type": "string"},
          "name": {"type": "string"}
        }
      }
    }
  }
}`

func TestNormalizePetstoreSanity(t *testing.T) {
	api, report, err := Normalize([]byte(petstoreSpec), "petstore.json", true)
	require.NoError(t, err)
	require.Empty(t, report.Errors)
	require.Len(t, api.Endpoints, 3)

	pet, ok := api.Schemas["Pet"]
	require.True(t, ok)
	require.Equal(t, 3, pet.ReferenceCount)
	require.ElementsMatch(t, []string{"id", "name"}, pet.Required)
}

const cyclicSchemaSpec = `{
  "openapi": "3.0.3",
  "info": {"title": "Cyclic", "version": "1.0.0"},
  "paths": {
    "/nodes": {
      "get": {
        "operationId": "listNodes",
        "responses": {
          "200": {
            "description": "ok",
            "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Node"}}}
          }
        }
      }
    }
  },
  "components": {
    "schemas": {
      "Node": {
        "type": "object",
        "properties": {
          "next": {"$ref": "#/components/schemas/Node"}
        }
      }
    }
  }
}`

func TestNormalizeSchemaCycleCompletes(t *testing.T) {
	api, _, err := Normalize([]byte(cyclicSchemaSpec), "cyclic.json", true)
	require.NoError(t, err)

	node, ok := api.Schemas["Node"]
	require.True(t, ok)
	require.Contains(t, node.Dependencies, "Node")
}

const missingRefSpec = `{
  "openapi": "3.0.3",
  "info": {"title": "Broken", "version": "1.0.0"},
  "paths": {
    "/ghosts": {
      "get": {
        "operationId": "listGhosts",
        "responses": {
          "200": {
            "description": "ok",
            "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Ghost"}}}
          }
        }
      }
    }
  },
  "components": {"schemas": {}}
}`

func TestNormalizeMissingReferenceIsFatal(t *testing.T) {
	_, _, err := Normalize([]byte(missingRefSpec), "broken.json", true)
	require.Error(t, err)
}

func TestSynthesizeOperationIDReplacesPlaceholders(t *testing.T) {
	id := synthesizeOperationID(MethodGet, "/pets/{petId}/orders")
	require.Equal(t, "get_pets_by_petid_orders", id)
}

func TestPathResourceSegmentsSkipsVersionAndPlaceholders(t *testing.T) {
	segs := pathResourceSegments("/api/v1/pets/{petId}/orders")
	require.Equal(t, []string{"pets", "orders"}, segs)
}
