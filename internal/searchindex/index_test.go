package searchindex

import "testing"

func sampleDocs() []Document {
	return []Document{
		{
			ID:               "get /pets",
			EndpointPath:     "/pets",
			Method:           "GET",
			ResourceName:     "pet",
			OperationSummary: "List all pets",
			OperationID:      "listPets",
			SearchableText:   "list all pets in the store",
			ContentTypes:     []string{"application/json"},
			StatusCodes:      []string{"200"},
			Tags:             []string{"pets"},
		},
		{
			ID:               "post /pets",
			EndpointPath:     "/pets",
			Method:           "POST",
			ResourceName:     "pet",
			OperationSummary: "Create a pet",
			OperationID:      "createPet",
			SearchableText:   "create a new pet entry",
			ContentTypes:     []string{"application/json"},
			StatusCodes:      []string{"201"},
			Tags:             []string{"pets"},
			Deprecated:       true,
			HasRequestBody:   true,
		},
		{
			ID:               "get /orders",
			EndpointPath:     "/orders",
			Method:           "GET",
			ResourceName:     "order",
			OperationSummary: "List all orders",
			OperationID:      "listOrders",
			SearchableText:   "list all orders placed by customers",
			ContentTypes:     []string{"application/json"},
			StatusCodes:      []string{"200"},
			Tags:             []string{"orders"},
		},
	}
}

func buildIndex(t *testing.T) *Index {
	t.Helper()
	idx := NewIndex(DefaultFieldWeights(), 2)
	for _, d := range sampleDocs() {
		if err := idx.AddDocument(d); err != nil {
			t.Fatalf("AddDocument: %v", err)
		}
	}
	if err := idx.Optimize(); err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	return idx
}

func TestAddDocumentFlushesAcrossBatchBoundary(t *testing.T) {
	idx := buildIndex(t)
	documents, fields, _ := idx.Stats()
	if documents != 3 {
		t.Fatalf("documents = %d, want 3", documents)
	}
	if fields != len(freeTextFields) {
		t.Fatalf("fields = %d, want %d", fields, len(freeTextFields))
	}
}

func TestSearchRanksExactResourceMatchHighest(t *testing.T) {
	idx := buildIndex(t)
	hits := idx.Search([]string{"pet"}, nil, nil, 10)
	if len(hits) < 2 {
		t.Fatalf("expected at least 2 hits, got %d", len(hits))
	}
	for _, h := range hits {
		if h.DocID == "get /orders" {
			t.Fatalf("orders endpoint should not match query 'pet'")
		}
	}
}

func TestSearchAppliesMustFilter(t *testing.T) {
	idx := buildIndex(t)
	hits := idx.Search([]string{"pet"}, map[string][]string{"method": {"POST"}}, nil, 10)
	if len(hits) != 1 || hits[0].DocID != "post /pets" {
		t.Fatalf("hits = %+v, want exactly post /pets", hits)
	}
}

func TestSearchAppliesMustNotFilter(t *testing.T) {
	idx := buildIndex(t)
	hits := idx.Search([]string{"pet"}, nil, map[string][]string{"deprecated": {"true"}}, 10)
	for _, h := range hits {
		if h.DocID == "post /pets" {
			t.Fatalf("deprecated endpoint should have been excluded: %+v", hits)
		}
	}
}

func TestSearchRespectsLimit(t *testing.T) {
	idx := buildIndex(t)
	hits := idx.Search([]string{"list"}, nil, nil, 1)
	if len(hits) != 1 {
		t.Fatalf("len(hits) = %d, want 1", len(hits))
	}
}

func TestSearchWithNoFreeTextReturnsAllFilterMatches(t *testing.T) {
	idx := buildIndex(t)
	hits := idx.Search(nil, map[string][]string{"method": {"GET"}}, nil, 10)
	if len(hits) != 2 {
		t.Fatalf("hits = %+v, want 2 GET endpoints", hits)
	}
	for _, h := range hits {
		if h.Score != 0 {
			t.Fatalf("expected neutral score for filter-only query, got %v", h.Score)
		}
	}
}

func TestValidateDetectsMismatch(t *testing.T) {
	idx := buildIndex(t)
	if err := idx.Validate(3); err != nil {
		t.Fatalf("Validate(3) = %v, want nil", err)
	}
	if err := idx.Validate(4); err == nil {
		t.Fatalf("Validate(4) = nil, want mismatch error")
	}
}

func TestRemoveDropsDocumentFromPostingsAndFilters(t *testing.T) {
	idx := buildIndex(t)
	idx.Remove("post /pets")
	documents, _, _ := idx.Stats()
	if documents != 2 {
		t.Fatalf("documents after remove = %d, want 2", documents)
	}
	hits := idx.Search([]string{"pet"}, map[string][]string{"method": {"POST"}}, nil, 10)
	if len(hits) != 0 {
		t.Fatalf("expected no hits after removal, got %+v", hits)
	}
}

func TestVocabularyContainsStemmedTerms(t *testing.T) {
	idx := buildIndex(t)
	vocab := idx.Vocabulary()
	found := false
	for _, term := range vocab {
		if term == stem("orders") {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("vocabulary missing stemmed term for 'orders': %v", vocab)
	}
}
