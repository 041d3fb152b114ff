// Package pipeline is the single-writer ingest orchestrator: one
// specification file goes in, a fully populated mcpserver.Catalog comes
// out. Run drives the four components in sequence (normalize, categorize,
// persist, index) and reports progress on an optional channel, mirroring
// the teacher's logging.StartTimer-per-stage pattern.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/salacoste/swagger-mcp-server/internal/apperr"
	"github.com/salacoste/swagger-mcp-server/internal/categorize"
	"github.com/salacoste/swagger-mcp-server/internal/config"
	"github.com/salacoste/swagger-mcp-server/internal/logging"
	"github.com/salacoste/swagger-mcp-server/internal/mcpserver"
	"github.com/salacoste/swagger-mcp-server/internal/normalize"
	"github.com/salacoste/swagger-mcp-server/internal/query"
	"github.com/salacoste/swagger-mcp-server/internal/searchindex"
	"github.com/salacoste/swagger-mcp-server/internal/store"
)

// Stage names one of the six phases of a conversion run.
type Stage string

const (
	StageValidate  Stage = "validating_input"
	StageParse     Stage = "parsing_specification"
	StageNormalize Stage = "normalizing_structure"
	StagePersist   Stage = "persisting_to_store"
	StageIndex     Stage = "building_search_index"
	StageReady     Stage = "ready"
)

var stageOrder = []Stage{
	StageValidate, StageParse, StageNormalize, StagePersist, StageIndex, StageReady,
}

// ProgressEvent is one update emitted on a Run's progress channel.
type ProgressEvent struct {
	Stage   Stage
	Message string
	Percent float64
	Err     error
}

func emit(progress chan<- ProgressEvent, stage Stage, message string, err error) {
	if progress == nil {
		return
	}
	percent := 0.0
	for i, s := range stageOrder {
		if s == stage {
			percent = float64(i+1) / float64(len(stageOrder)) * 100
			break
		}
	}
	select {
	case progress <- ProgressEvent{Stage: stage, Message: message, Percent: percent, Err: err}:
	default:
		// A slow or absent reader never blocks the ingest; the caller that
		// wants every event should provide a buffered or actively-drained
		// channel.
	}
}

// Result bundles everything a successful Run produces: the catalog ready
// to back the MCP server, and the open store handle the health resource
// queries.
type Result struct {
	Catalog *mcpserver.Catalog
	Store   *store.Store
}

// Run converts one specification file end to end: read, normalize,
// categorize, persist to the relational store, build the keyword index,
// and assemble the in-memory Catalog the MCP handlers run against.
// progress may be nil.
func Run(ctx context.Context, specPath string, cfg *config.Config, progress chan<- ProgressEvent) (*Result, error) {
	timer := logging.StartTimer(logging.CategoryBoot, "pipeline.Run")
	defer timer.Stop()

	emit(progress, StageValidate, fmt.Sprintf("validating %s", specPath), nil)
	info, err := os.Stat(specPath)
	if err != nil {
		wrapped := apperr.Input(err, "specification file not accessible: %s", specPath)
		emit(progress, StageValidate, "validation failed", wrapped)
		return nil, wrapped
	}
	if info.IsDir() {
		wrapped := apperr.Input(nil, "specification path is a directory: %s", specPath)
		emit(progress, StageValidate, "validation failed", wrapped)
		return nil, wrapped
	}

	emit(progress, StageParse, "reading specification", nil)
	raw, err := os.ReadFile(specPath)
	if err != nil {
		wrapped := apperr.Input(err, "read specification: %s", specPath)
		emit(progress, StageParse, "read failed", wrapped)
		return nil, wrapped
	}

	emit(progress, StageNormalize, "parsing and normalizing", nil)
	api, report, err := normalize.Normalize(raw, specPath, false)
	if err != nil {
		emit(progress, StageNormalize, "normalization failed", err)
		return nil, err
	}
	for _, w := range report.Warnings {
		logging.BootWarn("normalize warning: %s", w)
	}

	catalog, err := categorize.Categorize(api)
	if err != nil {
		emit(progress, StageNormalize, "categorization failed", err)
		return nil, err
	}
	emit(progress, StageNormalize, fmt.Sprintf("normalized %d endpoints, %d schemas", len(api.Endpoints), len(api.Schemas)), nil)

	if err := ctx.Err(); err != nil {
		return nil, apperr.Timeout("ingest cancelled during normalization: %v", err)
	}

	emit(progress, StagePersist, "opening relational store", nil)
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		emit(progress, StagePersist, "store open failed", err)
		return nil, err
	}

	if _, err := st.IngestDocument(api, catalog); err != nil {
		st.Close()
		emit(progress, StagePersist, "ingest failed", err)
		return nil, err
	}
	emit(progress, StagePersist, "persisted to relational store", nil)

	emit(progress, StageIndex, "building search index", nil)
	weights := fieldWeightsFromConfig(cfg.Search.FieldWeights)
	idx := searchindex.NewIndex(weights, 500)
	endpoints := make(map[string]*normalize.Endpoint, len(api.Endpoints))
	for _, ep := range api.Endpoints {
		endpoints[ep.ID] = ep
		if err := idx.AddDocument(documentFromEndpoint(ep, api.Schemas)); err != nil {
			st.Close()
			wrapped := apperr.Index(err, "index endpoint %s", ep.ID)
			emit(progress, StageIndex, "index build failed", wrapped)
			return nil, wrapped
		}
	}
	if err := idx.Optimize(); err != nil {
		st.Close()
		wrapped := apperr.Index(err, "optimize index")
		emit(progress, StageIndex, "index build failed", wrapped)
		return nil, wrapped
	}
	if err := idx.Validate(len(api.Endpoints)); err != nil {
		st.Close()
		emit(progress, StageIndex, "index validation failed", err)
		return nil, err
	}

	generation := generationStamp(api.Document.ContentHash)
	if err := writeGenerationMarker(cfg.Search.IndexDirectory, generation, len(api.Endpoints)); err != nil {
		logging.BootWarn("generation marker write failed: %v", err)
	}
	emit(progress, StageIndex, fmt.Sprintf("index built, generation %s", generation), nil)

	engine := query.NewEngine(idx, endpoints, generation, query.DefaultConfig())

	securitySchemes := api.SecuritySchemes
	schemas := api.Schemas

	mc := &mcpserver.Catalog{
		Document:        api.Document,
		Endpoints:       endpoints,
		Schemas:         schemas,
		SecuritySchemes: securitySchemes,
		Engine:          engine,
		Index:           idx,
		DB:              st.DB(),
		DBPath:          cfg.Database.Path,
		Generation:      generation,
		StartedAt:       time.Now(),
	}

	emit(progress, StageReady, "server ready", nil)
	return &Result{Catalog: mc, Store: st}, nil
}

// fieldWeightsFromConfig overrides the pinned defaults with any non-zero
// values named under search.field_weights.*, spec.md §6 / SPEC_FULL.md §5
// ("these are meant to be tunable, not fixed constants").
func fieldWeightsFromConfig(c config.FieldWeightsConfig) searchindex.FieldWeights {
	w := searchindex.DefaultFieldWeights()
	if c.EndpointPath > 0 {
		w.EndpointPath = c.EndpointPath
	}
	if c.Summary > 0 {
		w.OperationSummary = c.Summary
	}
	if c.Description > 0 {
		w.OperationDescription = c.Description
	}
	if c.Parameters > 0 {
		w.ParameterNames = c.Parameters
		w.ParameterDescriptions = c.Parameters
	}
	if c.Tags > 0 {
		w.Tags = c.Tags
	}
	return w
}

// generationStamp derives a short, stable generation id from the
// document's content hash so re-ingesting the same bytes reuses the same
// cache-invalidating stamp instead of minting a new one every run.
func generationStamp(contentHash string) string {
	if len(contentHash) >= 12 {
		return "gen-" + contentHash[:12]
	}
	return "gen-" + contentHash
}

// writeGenerationMarker records the built generation under
// search_index/<generation>/meta.json and repoints the search_index/current
// symlink at it, per spec.md §6's persisted state layout. The index
// itself lives in memory for the server's lifetime; this marker is the
// on-disk trace of which generation is live, re-derivable by re-running
// the ingest over the same specification.
func writeGenerationMarker(indexDir, generation string, endpointCount int) error {
	genDir := filepath.Join(indexDir, generation)
	if err := os.MkdirAll(genDir, 0755); err != nil {
		return fmt.Errorf("create generation directory: %w", err)
	}
	meta := fmt.Sprintf(`{"generation":%q,"endpoint_count":%d,"built_at":%q}`,
		generation, endpointCount, time.Now().UTC().Format(time.RFC3339))
	if err := os.WriteFile(filepath.Join(genDir, "meta.json"), []byte(meta), 0644); err != nil {
		return fmt.Errorf("write generation meta: %w", err)
	}

	current := filepath.Join(indexDir, "current")
	tmp := current + ".tmp"
	_ = os.Remove(tmp)
	if err := os.Symlink(generation, tmp); err != nil {
		return fmt.Errorf("create candidate symlink: %w", err)
	}
	if err := os.Rename(tmp, current); err != nil {
		return fmt.Errorf("swap current symlink: %w", err)
	}
	return nil
}

// documentFromEndpoint flattens a normalized Endpoint into the
// denormalized record searchindex.Index indexes, pulling in the property
// names of every schema it depends on as part of the free-text surface.
func documentFromEndpoint(ep *normalize.Endpoint, schemas map[string]*normalize.Schema) searchindex.Document {
	doc := searchindex.Document{
		ID:                     ep.ID,
		EndpointPath:           ep.Path,
		Method:                 string(ep.Method),
		ResourceName:           ep.CategoryKey,
		OperationSummary:       ep.Summary,
		OperationDescription:   ep.Description,
		OperationID:            ep.OperationID,
		SearchableText:         ep.SearchableText,
		Tags:                   ep.Tags,
		ParameterNames:         ep.ParameterNames,
		ContentTypes:           ep.ContentTypes,
		StatusCodes:            ep.ResponseCodes,
		Deprecated:             ep.Deprecated,
		HasRequestBody:         ep.RequestBody != nil,
	}

	for _, p := range ep.Parameters {
		if p.Description != "" {
			doc.ParameterDescriptions = append(doc.ParameterDescriptions, p.Description)
		}
		if p.Required {
			doc.RequiredParameterNames = append(doc.RequiredParameterNames, p.Name)
		}
	}
	for _, req := range ep.Security {
		doc.SecuritySchemes = append(doc.SecuritySchemes, req.SchemeName)
	}
	for _, schemaName := range ep.SchemaDependencies {
		if s, ok := schemas[schemaName]; ok && len(s.PropertyNames) > 0 {
			doc.Keywords = append(doc.Keywords, s.PropertyNames...)
			if s.Example != nil {
				doc.HasExamples = true
			}
		}
	}
	return doc
}
