package query

// filterByComplexity drops results whose computed complexity doesn't
// match level, applied after enrichment since complexity is an
// enrichment output rather than an indexed field.
func filterByComplexity(results []ResultItem, level string) []ResultItem {
	if level == "" {
		return results
	}
	out := results[:0:0]
	for _, r := range results {
		if r.Enrichment.Complexity == level {
			out = append(out, r)
		}
	}
	return out
}

// organize produces clusters keyed by tag, resource group, complexity,
// method, operation type, and auth requirement; each cluster is a view
// over the same result list in rank order.
func organize(results []ResultItem) []Cluster {
	clusters := map[string]*Cluster{}
	order := []string{}

	add := func(kind, key, id string) {
		ck := kind + ":" + key
		c, ok := clusters[ck]
		if !ok {
			c = &Cluster{Key: key, Kind: kind}
			clusters[ck] = c
			order = append(order, ck)
		}
		c.ResultIDs = append(c.ResultIDs, id)
	}

	for _, r := range results {
		for _, tag := range r.Tags {
			add("tag", tag, r.ID)
		}
		add("resource_group", r.Enrichment.ResourceGroup, r.ID)
		add("complexity", r.Enrichment.Complexity, r.ID)
		add("method", r.Method, r.ID)
		add("operation_type", r.Enrichment.OperationType, r.ID)
		if r.Enrichment.Auth.Required {
			add("auth", "required", r.ID)
		} else {
			add("auth", "none", r.ID)
		}
	}

	out := make([]Cluster, 0, len(order))
	for _, key := range order {
		out = append(out, *clusters[key])
	}
	return out
}
