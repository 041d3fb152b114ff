package query

import "time"

// assembleSummary computes the counts and aggregate score spec.md §4.4
// step 11 calls for, over the full result pool (not just the current
// page) so the counts reflect the whole match set.
func assembleSummary(pool []ResultItem, elapsed time.Duration) Summary {
	s := Summary{
		ResultsByMethod:     map[string]int{},
		ResultsByAuth:       map[string]int{},
		ResultsByComplexity: map[string]int{},
		ProcessingTime:      elapsed,
	}

	var totalScore float64
	for _, r := range pool {
		s.ResultsByMethod[r.Method]++
		if r.Enrichment.Auth.Required {
			s.ResultsByAuth["required"]++
		} else {
			s.ResultsByAuth["none"]++
		}
		s.ResultsByComplexity[r.Enrichment.Complexity]++
		totalScore += r.Score
	}
	if len(pool) > 0 {
		s.AverageScore = totalScore / float64(len(pool))
	}
	return s
}
