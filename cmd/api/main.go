// Package main implements the OrgAtlas API server: employee Q&A over the
// loaded org chart plus bulk data loading.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/OrgAtlasAI/orgatlas/engine/graph"
	"github.com/OrgAtlasAI/orgatlas/engine/ingest"
	"github.com/OrgAtlasAI/orgatlas/engine/query"
	"github.com/OrgAtlasAI/orgatlas/engine/semantic"
	"github.com/OrgAtlasAI/orgatlas/engine/store"
	"github.com/OrgAtlasAI/orgatlas/pkg/metrics"
	"github.com/OrgAtlasAI/orgatlas/pkg/mid"
	"github.com/OrgAtlasAI/orgatlas/pkg/ollama"
	"github.com/OrgAtlasAI/orgatlas/pkg/resilience"
)

// Config holds all environment-based configuration.
type Config struct {
	Port         string
	DataFile     string
	SnapshotPath string
	OllamaURL    string
	EmbedModel   string
	Neo4jURL     string
	Neo4jUser    string
	Neo4jPass    string
	QdrantURL    string
	Collection   string
	NATSURL      string
	CORSOrigin   string
	TopK         int
	QueryRate    float64
	QueryBurst   int
}

func loadConfig() Config {
	return Config{
		Port:         envOr("PORT", "8080"),
		DataFile:     envOr("DATA_FILE", "data/employees.json"),
		SnapshotPath: envOr("SNAPSHOT_PATH", "data/index.snapshot"),
		OllamaURL:    envOr("OLLAMA_URL", "http://localhost:11434"),
		EmbedModel:   envOr("EMBED_MODEL", "nomic-embed-text"),
		Neo4jURL:     envOr("NEO4J_URL", "neo4j://localhost:7687"),
		Neo4jUser:    envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:    envOr("NEO4J_PASS", "password"),
		QdrantURL:    envOr("QDRANT_URL", "localhost:6334"),
		Collection:   envOr("QDRANT_COLLECTION", "employees"),
		NATSURL:      os.Getenv("NATS_URL"), // empty disables messaging
		CORSOrigin:   envOr("CORS_ORIGIN", "*"),
		TopK:         envInt("QUERY_TOP_K", 5),
		QueryRate:    float64(envInt("QUERY_RATE", 20)),
		QueryBurst:   envInt("QUERY_BURST", 40),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Embedding client (Ollama), breaker-guarded ---
	embedder := &guardedEmbedder{
		inner:   ollama.NewEmbedClient(cfg.OllamaURL, cfg.EmbedModel, ollama.WithRateLimit(10, 20)),
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
	}

	// --- Connect to Neo4j ---
	neo4jDriver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
	if err != nil {
		return fmt.Errorf("neo4j driver: %w", err)
	}
	defer neo4jDriver.Close(ctx)

	graphStore := graph.New(neo4jDriver)

	// --- Connect to Qdrant ---
	vectorStore, err := semantic.New(cfg.QdrantURL, cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer vectorStore.Close()

	deps := ingest.Deps{
		Embedder:    embedder,
		VectorStore: vectorStore,
		GraphStore:  graphStore,
		Model:       cfg.EmbedModel,
		Logger:      logger,
	}

	// --- Initial load: snapshot if present, otherwise the data file ---
	ms, err := loadStore(ctx, cfg, deps, logger)
	if err != nil {
		return fmt.Errorf("initial load: %w", err)
	}
	handle := store.NewHandle(ms)
	logger.Info("store loaded", "employees", ms.Len(), "dims", ms.Dims())

	// --- Query engine ---
	reg := metrics.New()
	engine := query.New(handle, handle, query.Options{TopK: cfg.TopK}, logger, reg)

	// --- Optional NATS reload consumer ---
	var nc *nats.Conn
	if cfg.NATSURL != "" {
		nc, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Close()

		sub, err := ingest.StartReloadConsumer(nc, deps, cfg.DataFile, func(next *store.MemoryStore) {
			handle.Swap(next)
			if err := next.WriteSnapshot(cfg.SnapshotPath, cfg.EmbedModel); err != nil {
				logger.Warn("snapshot write failed", "err", err)
			}
		})
		if err != nil {
			return fmt.Errorf("reload subscribe: %w", err)
		}
		defer sub.Unsubscribe()
	}

	// --- Build HTTP server ---
	srvState := &server{
		cfg:     cfg,
		engine:  engine,
		handle:  handle,
		deps:    deps,
		nc:      nc,
		limiter: resilience.NewLimiter(resilience.LimiterOpts{Rate: cfg.QueryRate, Burst: cfg.QueryBurst}),
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", srvState.handleRoot)
	mux.HandleFunc("GET /api/health", srvState.handleHealth)
	mux.HandleFunc("POST /api/query", srvState.handleQuery)
	mux.HandleFunc("POST /api/load-data", srvState.handleLoadData)
	mux.Handle("GET /metrics", reg.Handler())

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.RequestID(),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("orgatlas-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// loadStore restores from snapshot when possible, falling back to a full
// data-file load (which also refreshes the mirrors and rewrites the snapshot).
func loadStore(ctx context.Context, cfg Config, deps ingest.Deps, logger *slog.Logger) (*store.MemoryStore, error) {
	if ms, err := store.ReadSnapshot(cfg.SnapshotPath, cfg.EmbedModel, deps.Embedder); err == nil {
		logger.Info("restored from snapshot", "path", cfg.SnapshotPath, "employees", ms.Len())
		return ms, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		logger.Warn("snapshot unusable, reloading data file", "path", cfg.SnapshotPath, "err", err)
	}

	ms, err := ingest.LoadFile(ctx, deps, cfg.DataFile)
	if err != nil {
		return nil, err
	}
	if err := ms.WriteSnapshot(cfg.SnapshotPath, cfg.EmbedModel); err != nil {
		logger.Warn("snapshot write failed", "err", err)
	}
	return ms, nil
}

// --- Handlers ---

type server struct {
	cfg     Config
	engine  *query.Engine
	handle  *store.Handle
	deps    ingest.Deps
	nc      *nats.Conn
	limiter *resilience.Limiter
	logger  *slog.Logger
}

func (s *server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":   "orgatlas",
		"employees": s.handle.Load().Len(),
		"model":     s.cfg.EmbedModel,
		"endpoints": map[string]string{
			"query":     "/api/query (POST)",
			"load_data": "/api/load-data (POST)",
			"health":    "/api/health (GET)",
			"metrics":   "/metrics (GET)",
		},
	})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// QueryRequest is the JSON body for POST /api/query.
type QueryRequest struct {
	Query string `json:"query"`
}

func (s *server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query cannot be empty"})
		return
	}

	resp, err := s.engine.Answer(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("query failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// LoadDataRequest is the JSON body for POST /api/load-data. Path is optional
// and defaults to the configured data file.
type LoadDataRequest struct {
	Path string `json:"path,omitempty"`
}

// LoadDataResponse reports the outcome of a bulk load.
type LoadDataResponse struct {
	Status    string `json:"status"`
	Employees int    `json:"employees_loaded"`
}

func (s *server) handleLoadData(w http.ResponseWriter, r *http.Request) {
	var req LoadDataRequest
	if r.Body != nil {
		// An empty body means "reload the configured file".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	path := req.Path
	if path == "" {
		path = s.cfg.DataFile
	}

	ms, err := ingest.LoadFile(r.Context(), s.deps, path)
	if err != nil {
		s.logger.Error("load failed", "path", path, "err", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.handle.Swap(ms)
	if err := ms.WriteSnapshot(s.cfg.SnapshotPath, s.cfg.EmbedModel); err != nil {
		s.logger.Warn("snapshot write failed", "err", err)
	}
	if s.nc != nil {
		event := ingest.LoadedEvent{Count: ms.Len(), Model: s.cfg.EmbedModel, LoadedAt: time.Now().UTC()}
		data, _ := json.Marshal(event)
		if err := s.nc.Publish(ingest.LoadedSubject, data); err != nil {
			s.logger.Warn("loaded event publish failed", "err", err)
		}
	}

	writeJSON(w, http.StatusOK, LoadDataResponse{Status: "loaded", Employees: ms.Len()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// --- Adapters ---

// guardedEmbedder wraps the Ollama client with a circuit breaker so a dead
// model server fails fast instead of piling up timeouts.
type guardedEmbedder struct {
	inner   *ollama.EmbedClient
	breaker *resilience.Breaker
}

func (g *guardedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := g.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		out, err = g.inner.Embed(ctx, text)
		return err
	})
	return out, err
}

func (g *guardedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := g.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		out, err = g.inner.EmbedBatch(ctx, texts)
		return err
	})
	return out, err
}
