package categorize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salacoste/swagger-mcp-server/internal/normalize"
)

func TestCategorizePrefersTag(t *testing.T) {
	api := &normalize.NormalizedAPI{
		Tags: []normalize.Tag{{Name: "pets", Description: "Pet operations"}},
		Endpoints: []*normalize.Endpoint{
			{Method: normalize.MethodGet, Path: "/pets", Tags: []string{"pets"}},
			{Method: normalize.MethodPost, Path: "/pets", Tags: []string{"pets"}},
		},
	}
	catalog, err := Categorize(api)
	require.NoError(t, err)
	require.Len(t, catalog.Categories, 1)
	require.Equal(t, "pets", catalog.Categories[0].Key)
	require.Equal(t, "Pet operations", catalog.Categories[0].DisplayName)
	require.Equal(t, 2, catalog.Categories[0].EndpointCount)
	require.Equal(t, 1, catalog.Categories[0].MethodDistribution["GET"])
	require.Equal(t, 1, catalog.Categories[0].MethodDistribution["POST"])
}

func TestCategorizeFallsBackToOperationIDResourceNoun(t *testing.T) {
	api := &normalize.NormalizedAPI{
		Endpoints: []*normalize.Endpoint{
			{Method: normalize.MethodGet, Path: "/x", OperationID: "listUserOrders"},
		},
	}
	catalog, err := Categorize(api)
	require.NoError(t, err)
	require.Len(t, catalog.Categories, 1)
	require.Equal(t, "order", catalog.Categories[0].Key)
}

func TestCategorizeFallsBackToPathSegment(t *testing.T) {
	api := &normalize.NormalizedAPI{
		Endpoints: []*normalize.Endpoint{
			{Method: normalize.MethodGet, Path: "/api/v1/widgets/{id}"},
		},
	}
	catalog, err := Categorize(api)
	require.NoError(t, err)
	require.Equal(t, "widgets", catalog.Categories[0].Key)
}

func TestCategorizeUncategorizedFallback(t *testing.T) {
	api := &normalize.NormalizedAPI{
		Endpoints: []*normalize.Endpoint{
			{Method: normalize.MethodGet, Path: "/"},
		},
	}
	catalog, err := Categorize(api)
	require.NoError(t, err)
	require.Equal(t, "uncategorized", catalog.Categories[0].Key)
}

func TestCategorizeOrdersByCountDescThenKey(t *testing.T) {
	api := &normalize.NormalizedAPI{
		Endpoints: []*normalize.Endpoint{
			{Method: normalize.MethodGet, Path: "/a", Tags: []string{"alpha"}},
			{Method: normalize.MethodGet, Path: "/b", Tags: []string{"beta"}},
			{Method: normalize.MethodPost, Path: "/b", Tags: []string{"beta"}},
		},
	}
	catalog, err := Categorize(api)
	require.NoError(t, err)
	require.Len(t, catalog.Categories, 2)
	require.Equal(t, "beta", catalog.Categories[0].Key)
	require.Equal(t, "alpha", catalog.Categories[1].Key)
}

func TestCategorizeAssignsOtherGroupWhenGroupsDefined(t *testing.T) {
	api := &normalize.NormalizedAPI{
		Tags:      []normalize.Tag{{Name: "pets"}, {Name: "orphan"}},
		TagGroups: []normalize.TagGroup{{Name: "Core", Tags: []string{"pets"}}},
		Endpoints: []*normalize.Endpoint{
			{Method: normalize.MethodGet, Path: "/pets", Tags: []string{"pets"}},
			{Method: normalize.MethodGet, Path: "/orphans", Tags: []string{"orphan"}},
		},
	}
	catalog, err := Categorize(api)
	require.NoError(t, err)
	byKey := map[string]Category{}
	for _, c := range catalog.Categories {
		byKey[c.Key] = c
	}
	require.Equal(t, "Core", byKey["pets"].Group)
	require.Equal(t, "Other", byKey["orphan"].Group)
}

func TestSlugifyCollapsesAndTrims(t *testing.T) {
	require.Equal(t, "foo-bar", slugify("  Foo_Bar!! "))
	require.Equal(t, "a-b", slugify("A.B"))
}
