package searchindex

import (
	"math"
	"sort"
	"sync"

	"github.com/salacoste/swagger-mcp-server/internal/apperr"
)

const (
	bm25k1 = 1.2
	bm25b  = 0.75
)

// fieldIndex is one free-text field's posting lists and per-document
// token counts, the inputs a BM25F-family scorer needs.
type fieldIndex struct {
	postings map[string]map[string]int // term -> docID -> term frequency
	docLen   map[string]int            // docID -> token count in this field
	totalLen int
}

func newFieldIndex() *fieldIndex {
	return &fieldIndex{postings: map[string]map[string]int{}, docLen: map[string]int{}}
}

func (fi *fieldIndex) add(docID string, tokens []string) {
	fi.docLen[docID] = len(tokens)
	fi.totalLen += len(tokens)
	counts := map[string]int{}
	for _, t := range tokens {
		counts[t]++
	}
	for term, freq := range counts {
		if fi.postings[term] == nil {
			fi.postings[term] = map[string]int{}
		}
		fi.postings[term][docID] = freq
	}
}

func (fi *fieldIndex) avgLen() float64 {
	if len(fi.docLen) == 0 {
		return 0
	}
	return float64(fi.totalLen) / float64(len(fi.docLen))
}

// Index is the built keyword-weighted inverted index: one fieldIndex per
// free-text field, exact-match posting sets per filter field, and the
// stored documents themselves for hit assembly.
type Index struct {
	mu sync.RWMutex

	weights FieldWeights
	fields  map[string]*fieldIndex
	filters map[string]map[string]map[string]bool // filterField -> value -> set of docIDs
	docs    map[string]*Document

	batch     []Document
	batchSize int

	optimized  bool
	totalBytes int64
}

// NewIndex creates an empty index with the given field weights and batch
// size; AddDocument buffers up to batchSize documents before indexing
// them together.
func NewIndex(weights FieldWeights, batchSize int) *Index {
	if batchSize <= 0 {
		batchSize = 500
	}
	fields := make(map[string]*fieldIndex, len(freeTextFields))
	for _, f := range freeTextFields {
		fields[f] = newFieldIndex()
	}
	return &Index{
		weights:   weights,
		fields:    fields,
		filters:   map[string]map[string]map[string]bool{},
		docs:      map[string]*Document{},
		batchSize: batchSize,
	}
}

// AddDocument buffers doc and flushes the batch once it reaches
// batchSize.
func (idx *Index) AddDocument(doc Document) error {
	idx.mu.Lock()
	idx.batch = append(idx.batch, doc)
	shouldFlush := len(idx.batch) >= idx.batchSize
	idx.mu.Unlock()

	if shouldFlush {
		return idx.Flush()
	}
	return nil
}

// Flush indexes every buffered document.
func (idx *Index) Flush() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, doc := range idx.batch {
		idx.indexDocumentLocked(doc)
	}
	idx.batch = nil
	return nil
}

func (idx *Index) indexDocumentLocked(doc Document) {
	d := doc
	idx.docs[d.ID] = &d
	idx.totalBytes += int64(len(d.SearchableText))

	for _, field := range freeTextFields {
		text := d.fieldText(field)
		var tokens []string
		if field == "endpoint_path" || field == "operation_id" {
			tokens = analyzeIdentifier(text)
		} else {
			tokens = analyzeFreeText(text)
		}
		idx.fields[field].add(d.ID, tokens)
	}

	idx.addFilter("method", analyzeKeyword(d.Method), d.ID)
	idx.addFilter("deprecated", boolKeyword(d.Deprecated), d.ID)
	idx.addFilter("has_request_body", boolKeyword(d.HasRequestBody), d.ID)
	idx.addFilter("has_examples", boolKeyword(d.HasExamples), d.ID)
	for _, ct := range d.ContentTypes {
		idx.addFilter("content_type", analyzeKeyword(ct), d.ID)
	}
	for _, code := range d.StatusCodes {
		idx.addFilter("status_code", analyzeKeyword(code), d.ID)
	}
	for _, scheme := range d.SecuritySchemes {
		idx.addFilter("security_scheme", analyzeKeyword(scheme), d.ID)
	}
	for _, tag := range d.Tags {
		idx.addFilter("tag", analyzeKeyword(tag), d.ID)
	}
	for _, name := range d.RequiredParameterNames {
		idx.addFilter("required_param", analyzeKeyword(name), d.ID)
	}
	for _, name := range d.ParameterNames {
		idx.addFilter("param", analyzeKeyword(name), d.ID)
	}
}

func boolKeyword(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (idx *Index) addFilter(field, value, docID string) {
	if value == "" {
		return
	}
	if idx.filters[field] == nil {
		idx.filters[field] = map[string]map[string]bool{}
	}
	if idx.filters[field][value] == nil {
		idx.filters[field][value] = map[string]bool{}
	}
	idx.filters[field][value][docID] = true
}

// Optimize flushes any remaining buffered documents; this system's
// "merge" step, since the index is held entirely in memory rather than
// in on-disk segments.
func (idx *Index) Optimize() error {
	if err := idx.Flush(); err != nil {
		return err
	}
	idx.mu.Lock()
	idx.optimized = true
	idx.mu.Unlock()
	return nil
}

// Stats reports the document count, field count, and total indexed byte
// size.
func (idx *Index) Stats() (documents, fields int, bytes int64) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs), len(freeTextFields), idx.totalBytes
}

// Validate compares relationalCount (the number of endpoint rows in the
// relational store) to the index's document count; any mismatch is a
// hard error.
func (idx *Index) Validate(relationalCount int) error {
	idx.mu.RLock()
	docCount := len(idx.docs)
	idx.mu.RUnlock()
	if docCount != relationalCount {
		return apperr.Index(nil, "index document count %d does not match relational endpoint count %d", docCount, relationalCount)
	}
	return nil
}

// Remove deletes a single document by ID, supporting incremental
// single-document updates (re-ingest of an already-indexed API).
func (idx *Index) Remove(docID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.docs, docID)
	for _, fi := range idx.fields {
		delete(fi.docLen, docID)
		for term, posting := range fi.postings {
			delete(posting, docID)
			if len(posting) == 0 {
				delete(fi.postings, term)
			}
		}
	}
	for _, values := range idx.filters {
		for value, docs := range values {
			delete(docs, docID)
			if len(docs) == 0 {
				delete(values, value)
			}
		}
	}
}

// Hit is one scored search result.
type Hit struct {
	DocID string
	Score float64
}

// Search runs freeTextTerms as an OR-group across the weighted free-text
// fields using a BM25F-family scorer, intersects with must/mustNot exact
// filter clauses, and returns the top results by score descending (ties
// broken by DocID for determinism), capped at limit.
func (idx *Index) Search(freeTextTerms []string, must, mustNot map[string][]string, limit int) []Hit {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	candidates := idx.eligibleDocsLocked(must, mustNot)
	if candidates == nil {
		// No filters applied: every indexed document is a candidate.
		candidates = make(map[string]bool, len(idx.docs))
		for id := range idx.docs {
			candidates[id] = true
		}
	}

	if len(freeTextTerms) == 0 {
		// A filter-only query (no free-text component): every candidate
		// matches with a neutral score, ranking falls back to doc ID.
		hits := make([]Hit, 0, len(candidates))
		for docID := range candidates {
			hits = append(hits, Hit{DocID: docID, Score: 0})
		}
		sort.Slice(hits, func(i, j int) bool { return hits[i].DocID < hits[j].DocID })
		if limit > 0 && len(hits) > limit {
			hits = hits[:limit]
		}
		return hits
	}

	scores := map[string]float64{}
	for _, raw := range freeTextTerms {
		term := stem(raw)
		idf := idx.idf(term)
		if idf <= 0 {
			continue
		}
		for _, field := range freeTextFields {
			weight := idx.weights.of(field)
			if weight == 0 {
				continue
			}
			fi := idx.fields[field]
			avg := fi.avgLen()
			for docID, tf := range fi.postings[term] {
				if !candidates[docID] {
					continue
				}
				length := float64(fi.docLen[docID])
				norm := 1 - bm25b + bm25b*safeRatio(length, avg)
				contribution := weight * idf * (float64(tf) * (bm25k1 + 1)) / (float64(tf) + bm25k1*norm)
				scores[docID] += contribution
			}
		}
	}

	hits := make([]Hit, 0, len(scores))
	for docID, score := range scores {
		hits = append(hits, Hit{DocID: docID, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocID < hits[j].DocID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func safeRatio(a, b float64) float64 {
	if b == 0 {
		return 1
	}
	return a / b
}

// idf computes a BM25-style inverse document frequency across the union
// of all free-text fields' postings for term (a document is "containing"
// the term if any field contains it).
func (idx *Index) idf(term string) float64 {
	containing := map[string]bool{}
	for _, field := range freeTextFields {
		for docID := range idx.fields[field].postings[term] {
			containing[docID] = true
		}
	}
	n := float64(len(idx.docs))
	df := float64(len(containing))
	if n == 0 || df == 0 {
		return 0
	}
	return math.Log(1 + (n-df+0.5)/(df+0.5))
}

// eligibleDocsLocked intersects must-clauses and subtracts mustNot
// clauses; returns nil when there are no must clauses at all (caller
// then treats every document as a candidate, still subject to mustNot).
func (idx *Index) eligibleDocsLocked(must, mustNot map[string][]string) map[string]bool {
	var result map[string]bool
	for field, values := range must {
		for _, value := range values {
			docs := idx.filters[field][analyzeKeyword(value)]
			if result == nil {
				result = map[string]bool{}
				for id := range docs {
					result[id] = true
				}
				continue
			}
			for id := range result {
				if !docs[id] {
					delete(result, id)
				}
			}
		}
	}
	if len(mustNot) > 0 {
		if result == nil {
			result = map[string]bool{}
			for id := range idx.docs {
				result[id] = true
			}
		}
		for field, values := range mustNot {
			for _, value := range values {
				docs := idx.filters[field][analyzeKeyword(value)]
				for id := range docs {
					delete(result, id)
				}
			}
		}
	}
	return result
}

// ContainsTerm reports whether docID's analyzed free-text fields contain
// term in any field, used by the query engine to enforce a default
// AND-join of free-text tokens on top of the OR-style ranking score.
func (idx *Index) ContainsTerm(docID, term string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	for _, field := range freeTextFields {
		if _, ok := idx.fields[field].postings[term][docID]; ok {
			return true
		}
	}
	return false
}

// Document returns the stored document for a hit, for result enrichment.
func (idx *Index) Document(docID string) (*Document, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	d, ok := idx.docs[docID]
	return d, ok
}

// Vocabulary returns every distinct stemmed term across all free-text
// fields, used by the query engine's typo-suggestion pass.
func (idx *Index) Vocabulary() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	seen := map[string]bool{}
	for _, fi := range idx.fields {
		for term := range fi.postings {
			seen[term] = true
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
