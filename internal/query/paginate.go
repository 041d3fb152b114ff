package query

const defaultPerPage = 10

// paginate slices results to the requested page, clamping per-page to
// [1, maxPerPage], and computes the accompanying PageInfo.
func paginate(results []ResultItem, page, perPage, maxPerPage int) ([]ResultItem, PageInfo) {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	if page <= 0 {
		page = 1
	}

	total := len(results)
	totalPages := 0
	if perPage > 0 {
		totalPages = (total + perPage - 1) / perPage
	}

	info := PageInfo{
		Page:         page,
		PerPage:      perPage,
		TotalResults: total,
		TotalPages:   totalPages,
	}
	if page > 1 && page <= totalPages+1 {
		info.HasPrevious = true
		info.PreviousPage = page - 1
	}
	if page < totalPages {
		info.HasNext = true
		info.NextPage = page + 1
	}

	start := (page - 1) * perPage
	if start < 0 || start >= total {
		return nil, info
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return results[start:end], info
}
