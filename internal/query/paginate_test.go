package query

import "testing"

func makeResults(n int) []ResultItem {
	out := make([]ResultItem, n)
	for i := range out {
		out[i] = ResultItem{ID: string(rune('a' + i))}
	}
	return out
}

func TestPaginateMatchesFortySevenResultPageThree(t *testing.T) {
	results := makeResults(47)
	page, info := paginate(results, 3, 20, 100)
	if len(page) != 7 {
		t.Fatalf("len(page) = %d, want 7", len(page))
	}
	if info.TotalResults != 47 || info.TotalPages != 3 {
		t.Fatalf("info = %+v", info)
	}
	if info.HasNext {
		t.Fatalf("HasNext = true, want false")
	}
	if !info.HasPrevious || info.PreviousPage != 2 {
		t.Fatalf("HasPrevious/PreviousPage = %v/%d", info.HasPrevious, info.PreviousPage)
	}
}

func TestPaginateExactPerPageHasNoNext(t *testing.T) {
	results := makeResults(20)
	_, info := paginate(results, 1, 20, 100)
	if info.HasNext {
		t.Fatalf("HasNext = true, want false when total == per_page")
	}
}

func TestPaginateClampsToMaxPerPage(t *testing.T) {
	results := makeResults(5)
	_, info := paginate(results, 1, 500, 100)
	if info.PerPage != 100 {
		t.Fatalf("PerPage = %d, want clamped to 100", info.PerPage)
	}
}

func TestPaginatePartitionsWithoutOverlap(t *testing.T) {
	results := makeResults(25)
	seen := map[string]bool{}
	perPage := 7
	totalPages := (len(results) + perPage - 1) / perPage
	for p := 1; p <= totalPages; p++ {
		page, _ := paginate(results, p, perPage, 100)
		for _, r := range page {
			if seen[r.ID] {
				t.Fatalf("result %s appeared on more than one page", r.ID)
			}
			seen[r.ID] = true
		}
	}
	if len(seen) != len(results) {
		t.Fatalf("seen %d results across all pages, want %d", len(seen), len(results))
	}
}
