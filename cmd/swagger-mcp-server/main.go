// Command swagger-mcp-server converts an OpenAPI/Swagger specification into
// a queryable MCP server: searchEndpoints, getSchema, and getExample tools,
// plus the swagger://api-info and swagger://health resources. This package
// (main.go and respond.go) is the only place the wire-level
// mark3labs/mcp-go types are touched —
// everything else in the request path runs against internal/mcpserver's
// plain Go types.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/semaphore"

	"github.com/salacoste/swagger-mcp-server/internal/apperr"
	"github.com/salacoste/swagger-mcp-server/internal/config"
	"github.com/salacoste/swagger-mcp-server/internal/logging"
	"github.com/salacoste/swagger-mcp-server/internal/mcpserver"
	"github.com/salacoste/swagger-mcp-server/internal/pipeline"
	"github.com/salacoste/swagger-mcp-server/internal/store"
)

// ingestTimeout bounds a whole conversion run; spec.md names 600s as the
// point past which an ingest is presumed stuck rather than merely slow.
const ingestTimeout = 600 * time.Second

// shutdownGrace is how long in-flight requests get to finish once a
// shutdown signal arrives before the process exits anyway.
const shutdownGrace = 30 * time.Second

var (
	configPath string
	specPath   string

	// logger is the top-level structured startup/shutdown logger, kept
	// separate from internal/logging's per-category file logger the same
	// way the teacher keeps a CLI-facing zap logger distinct from its own
	// file-based telemetry system.
	logger *zap.Logger
)

// newTopLevelLogger builds the CLI-facing zap logger, honoring
// logging.level the same way the teacher toggles its zap level off a
// --verbose flag.
func newTopLevelLogger(level string) *zap.Logger {
	zapCfg := zap.NewProductionConfig()
	if level == "DEBUG" || level == "debug" {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	built, err := zapCfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return built
}

var rootCmd = &cobra.Command{
	Use:   "swagger-mcp-server",
	Short: "Convert an OpenAPI/Swagger specification into an MCP server",
	Long: `swagger-mcp-server ingests an OpenAPI or Swagger 2.0 specification,
builds a relational store and keyword-weighted search index over its
endpoints and schemas, and serves the result over the Model Context
Protocol: searchEndpoints, getSchema, and getExample tools, plus the
swagger://api-info and swagger://health resources.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Convert a specification and serve it over MCP on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger = newTopLevelLogger(cfg.Logging.Level)
		defer logger.Sync()
		if cfg.Logging.File != "" {
			if err := logging.Initialize(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.JSONFormat, cfg.Logging.Categories); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to initialize logging: %v\n", err)
			}
			defer logging.CloseAll()
		}

		if specPath == "" {
			return fmt.Errorf("--spec is required")
		}

		ingestCtx, cancelIngest := context.WithTimeout(cmd.Context(), ingestTimeout)
		result, err := pipeline.Run(ingestCtx, specPath, cfg, nil)
		cancelIngest()
		if err != nil {
			correlationID := apperr.NewCorrelationID()
			logger.Error("ingest failed", zap.String("correlation_id", correlationID), zap.Error(err))
			fmt.Fprintln(os.Stderr, apperr.UserMessage(err, correlationID))
			return err
		}

		var catalogRef atomic.Pointer[mcpserver.Catalog]
		catalogRef.Store(result.Catalog)
		var storeRef atomic.Pointer[store.Store]
		storeRef.Store(result.Store)
		defer storeRef.Load().Close()

		watcher, err := pipeline.NewGenerationWatcher(cfg.Search.IndexDirectory)
		if err != nil {
			logger.Warn("generation watcher unavailable", zap.Error(err))
		} else {
			defer watcher.Stop()
			if err := watcher.Start(cmd.Context(), func() {
				reloadCatalog(cmd.Context(), specPath, cfg, &catalogRef, &storeRef)
			}); err != nil {
				logger.Warn("generation watcher failed to start", zap.Error(err))
			}
		}

		mcpServer := server.NewMCPServer(
			"swagger-mcp-server",
			"1.0.0",
			server.WithToolCapabilities(true),
			server.WithResourceCapabilities(true, false),
		)
		limiter := newRequestLimiter(cfg.Server.MaxConnections, cfg.ServerTimeout())
		registerTools(mcpServer, &catalogRef, limiter)
		registerResources(mcpServer, &catalogRef, limiter)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			logger.Info("shutdown signal received, draining in-flight requests", zap.Duration("grace", shutdownGrace))
			time.AfterFunc(shutdownGrace, func() {
				logger.Warn("shutdown grace period elapsed, exiting")
				os.Exit(0)
			})
		}()

		logger.Info("serving over stdio",
			zap.String("title", result.Catalog.Document.Title),
			zap.Int("endpoints", len(result.Catalog.Endpoints)),
			zap.Int("schemas", len(result.Catalog.Schemas)),
		)
		return server.ServeStdio(mcpServer)
	},
}

// reloadCatalog re-runs the ingest pipeline against the same specification
// and swaps the live catalog pointer the registered handlers read from, so
// a generation change detected by the fsnotify watcher reaches in-flight
// servers without a restart. The previous store is closed only after the
// swap, once no new handler call can observe it.
func reloadCatalog(ctx context.Context, specPath string, cfg *config.Config, catalogRef *atomic.Pointer[mcpserver.Catalog], storeRef *atomic.Pointer[store.Store]) {
	ctx, cancel := context.WithTimeout(ctx, ingestTimeout)
	defer cancel()

	result, err := pipeline.Run(ctx, specPath, cfg, nil)
	if err != nil {
		correlationID := apperr.NewCorrelationID()
		logger.Error("catalog reload failed", zap.String("correlation_id", correlationID), zap.Error(err))
		return
	}

	old := storeRef.Swap(result.Store)
	catalogRef.Store(result.Catalog)
	logger.Info("catalog reloaded",
		zap.String("generation", result.Catalog.Generation),
		zap.Int("endpoints", len(result.Catalog.Endpoints)),
	)
	if old != nil {
		old.Close()
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the YAML configuration file")
	serveCmd.Flags().StringVar(&specPath, "spec", "", "Path to the OpenAPI/Swagger specification to convert and serve")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// registerTools binds the three MCP tools to internal/mcpserver's plain Go
// handlers, translating mcp-go's request/result wire types at the
// boundary only. catalogRef is loaded once per call so a generation
// reload swapped in by the fsnotify watcher takes effect on the very next
// request, with no handler re-registration.
func registerTools(s *server.MCPServer, catalogRef *atomic.Pointer[mcpserver.Catalog], limiter *requestLimiter) {
	s.AddTool(
		mcp.NewTool("searchEndpoints",
			mcp.WithDescription("Search API endpoints by keyword, boolean, or field-scoped query (e.g. 'path:/users method:POST')."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
			mcp.WithString("method", mcp.Description("Filter by HTTP method"), mcp.Enum("GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS", "TRACE")),
			mcp.WithNumber("limit", mcp.Description("Maximum results per page, 1-100 (default 10)")),
			mcp.WithNumber("page", mcp.Description("Page number, 1-based (default 1)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			release, err := limiter.acquire(ctx)
			if err != nil {
				return mcp.NewToolResultError(apperr.UserMessage(err, apperr.NewCorrelationID())), nil
			}
			defer release()
			ctx, cancel := limiter.deadline(ctx)
			defer cancel()

			catalog := catalogRef.Load()
			query, _ := req.RequireString("query")
			args := mcpserver.SearchEndpointsArgs{
				Query:  query,
				Method: argString(req, "method", ""),
				Limit:  int(argFloat(req, "limit", 0)),
				Page:   int(argFloat(req, "page", 0)),
			}
			result, err := catalog.SearchEndpoints(ctx, args)
			if err != nil {
				return mcp.NewToolResultError(apperr.UserMessage(err, apperr.NewCorrelationID())), nil
			}
			return jsonToolResult(result)
		},
	)

	s.AddTool(
		mcp.NewTool("getSchema",
			mcp.WithDescription("Retrieve a named schema's definition, optionally resolving $ref composition slots and including examples."),
			mcp.WithString("schema_name", mcp.Required(), mcp.Description("Schema name, case-insensitive")),
			mcp.WithBoolean("include_examples", mcp.Description("Include example values (default true)")),
			mcp.WithBoolean("resolve_refs", mcp.Description("Inline composition-slot references (default true)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			release, err := limiter.acquire(ctx)
			if err != nil {
				return mcp.NewToolResultError(apperr.UserMessage(err, apperr.NewCorrelationID())), nil
			}
			defer release()
			ctx, cancel := limiter.deadline(ctx)
			defer cancel()

			catalog := catalogRef.Load()
			name, _ := req.RequireString("schema_name")
			args := mcpserver.GetSchemaArgs{
				SchemaName:      name,
				IncludeExamples: argBool(req, "include_examples", true),
				ResolveRefs:     argBool(req, "resolve_refs", true),
			}
			result, err := catalog.GetSchema(ctx, args)
			if err != nil {
				return mcp.NewToolResultError(apperr.UserMessage(err, apperr.NewCorrelationID())), nil
			}
			return jsonToolResult(result)
		},
	)

	s.AddTool(
		mcp.NewTool("getExample",
			mcp.WithDescription("Generate a runnable request example for one endpoint in curl, javascript, python, or typescript."),
			mcp.WithString("endpoint_id", mcp.Required(), mcp.Description("Endpoint id, e.g. 'get /pets/{petId}'")),
			mcp.WithString("language", mcp.Description("Target client language (default curl)"), mcp.Enum("curl", "javascript", "python", "typescript")),
			mcp.WithBoolean("include_auth", mcp.Description("Include an auth header placeholder when the endpoint requires security (default true)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			release, err := limiter.acquire(ctx)
			if err != nil {
				return mcp.NewToolResultError(apperr.UserMessage(err, apperr.NewCorrelationID())), nil
			}
			defer release()
			ctx, cancel := limiter.deadline(ctx)
			defer cancel()

			catalog := catalogRef.Load()
			id, _ := req.RequireString("endpoint_id")
			args := mcpserver.GetExampleArgs{
				EndpointID:  id,
				Language:    argString(req, "language", "curl"),
				IncludeAuth: argBool(req, "include_auth", true),
			}
			result, err := catalog.GetExample(ctx, args)
			if err != nil {
				return mcp.NewToolResultError(apperr.UserMessage(err, apperr.NewCorrelationID())), nil
			}
			return jsonToolResult(result)
		},
	)
}

// registerResources binds the two MCP resources to internal/mcpserver's
// plain Go handlers.
func registerResources(s *server.MCPServer, catalogRef *atomic.Pointer[mcpserver.Catalog], limiter *requestLimiter) {
	s.AddResource(
		mcp.NewResource("swagger://api-info", "API Info",
			mcp.WithResourceDescription("Human-readable summary of the loaded specification"),
			mcp.WithMIMEType("text/plain"),
		),
		func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			release, err := limiter.acquire(ctx)
			if err != nil {
				return nil, err
			}
			defer release()
			ctx, cancel := limiter.deadline(ctx)
			defer cancel()

			catalog := catalogRef.Load()
			info, err := catalog.APIInfo(ctx)
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{URI: "swagger://api-info", MIMEType: "text/plain", Text: info},
			}, nil
		},
	)

	s.AddResource(
		mcp.NewResource("swagger://health", "Health",
			mcp.WithResourceDescription("Server health: table counts, index generation, database size, uptime"),
			mcp.WithMIMEType("application/json"),
		),
		func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			release, err := limiter.acquire(ctx)
			if err != nil {
				return nil, err
			}
			defer release()
			ctx, cancel := limiter.deadline(ctx)
			defer cancel()

			catalog := catalogRef.Load()
			health, err := catalog.Health(ctx)
			if err != nil {
				return nil, err
			}
			result, err := jsonToolResult(health)
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{URI: "swagger://health", MIMEType: "application/json", Text: resultText(result)},
			}, nil
		},
	)
}
