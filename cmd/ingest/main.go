// Package main implements the one-shot bulk loader: read the employee data
// file, embed it, write the snapshot, and mirror the org into Qdrant and
// Neo4j. Run it to (re)build every index outside the API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/OrgAtlasAI/orgatlas/engine/graph"
	"github.com/OrgAtlasAI/orgatlas/engine/ingest"
	"github.com/OrgAtlasAI/orgatlas/engine/semantic"
	"github.com/OrgAtlasAI/orgatlas/pkg/natsutil"
	"github.com/OrgAtlasAI/orgatlas/pkg/ollama"
)

// Config holds all environment-based configuration.
type Config struct {
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
}

func loadConfig() Config {
	return Config{
		DataFile:     envOr("DATA_FILE", "data/employees.json"),
		SnapshotPath: envOr("SNAPSHOT_PATH", "data/index.snapshot"),
		OllamaURL:    envOr("OLLAMA_URL", "http://localhost:11434"),
		EmbedModel:   envOr("EMBED_MODEL", "nomic-embed-text"),
		Neo4jURL:     envOr("NEO4J_URL", "neo4j://localhost:7687"),
		Neo4jUser:    envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:    envOr("NEO4J_PASS", "password"),
		QdrantURL:    envOr("QDRANT_URL", "localhost:6334"),
		Collection:   envOr("QDRANT_COLLECTION", "employees"),
		NATSURL:      os.Getenv("NATS_URL"), // empty disables the loaded event
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()
	// An optional positional argument overrides the data file.
	if len(os.Args) > 1 {
		cfg.DataFile = os.Args[1]
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("load failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx := context.Background()

	embedder := ollama.NewEmbedClient(cfg.OllamaURL, cfg.EmbedModel, ollama.WithRateLimit(10, 20))

	neo4jDriver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
	if err != nil {
		return fmt.Errorf("neo4j driver: %w", err)
	}
	defer neo4jDriver.Close(ctx)
	graphStore := graph.New(neo4jDriver)

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

	start := time.Now()
	ms, err := ingest.LoadFile(ctx, deps, cfg.DataFile)
	if err != nil {
		return err
	}
	if err := ms.WriteSnapshot(cfg.SnapshotPath, cfg.EmbedModel); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	nodes, err := graphStore.NodeCount(ctx)
	if err != nil {
		logger.Warn("node count unavailable", "err", err)
	}
	logger.Info("load complete",
		"file", cfg.DataFile,
		"employees", ms.Len(),
		"dims", ms.Dims(),
		"graph_nodes", nodes,
		"duration", time.Since(start),
	)

	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Close()

		event := ingest.LoadedEvent{Count: ms.Len(), Model: cfg.EmbedModel, LoadedAt: time.Now().UTC()}
		if err := natsutil.Publish(ctx, nc, ingest.LoadedSubject, event); err != nil {
			return fmt.Errorf("publish loaded event: %w", err)
		}
		if err := nc.Flush(); err != nil {
			return fmt.Errorf("nats flush: %w", err)
		}
	}
	return nil
}
