// Package ingest provides the bulk-load pipeline: decode the employee data
// file, transform and validate the records, embed them, build the in-memory
// store, and mirror the result into the vector and graph databases.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/OrgAtlasAI/orgatlas/engine/domain"
	"github.com/OrgAtlasAI/orgatlas/engine/graph"
	"github.com/OrgAtlasAI/orgatlas/engine/semantic"
	"github.com/OrgAtlasAI/orgatlas/engine/store"
	"github.com/OrgAtlasAI/orgatlas/pkg/fn"
	"github.com/OrgAtlasAI/orgatlas/pkg/natsutil"
)

// EmbedBatchSize is the max records per embedding request.
const EmbedBatchSize = 100

// Deps holds the external dependencies for the load pipeline. VectorStore and
// GraphStore are optional mirrors; nil skips them.
type Deps struct {
	Embedder    store.Embedder
	VectorStore *semantic.VectorStore
	GraphStore  *graph.GraphStore
	Model       string
	Logger      *slog.Logger
}

// --- Pipeline stages ---

// Transform converts source records into a Batch of domain employees.
var Transform fn.Stage[[]domain.SourceRecord, Batch] = func(_ context.Context, records []domain.SourceRecord) fn.Result[Batch] {
	b, err := buildBatch(records)
	if err != nil {
		return fn.Err[Batch](err)
	}
	return fn.Ok(b)
}

// ValidateBatch enforces the forest invariant over the whole batch: unique
// ids, resolvable manager references, no cycles.
var ValidateBatch fn.Stage[Batch, Batch] = func(_ context.Context, b Batch) fn.Result[Batch] {
	if err := domain.Validate(b.Employees); err != nil {
		return fn.Err[Batch](err)
	}
	return fn.Ok(b)
}

// NewEmbed creates a stage that embeds the batch texts in groups.
func NewEmbed(embedder store.Embedder) fn.Stage[Batch, EmbeddedBatch] {
	return func(ctx context.Context, b Batch) fn.Result[EmbeddedBatch] {
		vectors := make([][]float32, 0, len(b.Texts))
		for i, group := range fn.Chunk(b.Texts, EmbedBatchSize) {
			embedded, err := embedder.EmbedBatch(ctx, group)
			if err != nil {
				return fn.Err[EmbeddedBatch](fmt.Errorf("ingest: embed group %d: %w", i, err))
			}
			vectors = append(vectors, embedded...)
		}
		return fn.Ok(EmbeddedBatch{Batch: b, Vectors: vectors})
	}
}

// NewBuild creates a stage that assembles the in-memory store from an
// embedded batch.
func NewBuild(embedder store.Embedder) fn.Stage[EmbeddedBatch, *store.MemoryStore] {
	return func(_ context.Context, b EmbeddedBatch) fn.Result[*store.MemoryStore] {
		ms, err := store.FromParts(embedder, b.Employees, b.Vectors)
		if err != nil {
			return fn.Err[*store.MemoryStore](err)
		}
		return fn.Ok(ms)
	}
}

// NewMirror creates a stage that writes the embedded batch into the vector
// and graph mirrors. Both are cleared first so a reload replaces, never
// accumulates.
func NewMirror(vs *semantic.VectorStore, gs *graph.GraphStore) fn.Stage[EmbeddedBatch, EmbeddedBatch] {
	return func(ctx context.Context, b EmbeddedBatch) fn.Result[EmbeddedBatch] {
		if vs != nil {
			dims := 0
			if len(b.Vectors) > 0 {
				dims = len(b.Vectors[0])
			}
			if err := vs.DeleteCollection(ctx); err != nil {
				slog.Warn("ingest: delete collection", "error", err)
			}
			if err := vs.EnsureCollection(ctx, dims); err != nil {
				return fn.Err[EmbeddedBatch](err)
			}
			if err := vs.Upsert(ctx, employeePoints(b)); err != nil {
				return fn.Err[EmbeddedBatch](err)
			}
		}
		if gs != nil {
			if err := gs.Clear(ctx); err != nil {
				return fn.Err[EmbeddedBatch](err)
			}
			if err := gs.SaveBatch(ctx, b.Employees); err != nil {
				return fn.Err[EmbeddedBatch](err)
			}
		}
		return fn.Ok(b)
	}
}

// LoggedTap returns a stage that logs entry/exit with duration.
func LoggedTap[T any](name string, log *slog.Logger) fn.Stage[T, T] {
	return func(ctx context.Context, t T) fn.Result[T] {
		log.Info("stage.enter", "stage", name)
		start := time.Now()
		defer func() {
			log.Info("stage.exit", "stage", name, "duration", time.Since(start))
		}()
		return fn.Ok(t)
	}
}

// NewPipeline composes the full load pipeline:
// Transform → Validate → Embed → Mirror → Build.
func NewPipeline(deps Deps) fn.Stage[[]domain.SourceRecord, *store.MemoryStore] {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	// Embedding retries: the model server is the flaky dependency here.
	embedStage := fn.RetryStage(fn.RetryOpts{
		MaxAttempts: 3,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     5 * time.Second,
		Jitter:      true,
	}, NewEmbed(deps.Embedder))

	transformed := fn.Then(LoggedTap[[]domain.SourceRecord]("transform", log), Transform)
	validated := fn.Then(transformed, ValidateBatch)
	embedded := fn.Then(validated, fn.Then(LoggedTap[Batch]("embed", log), embedStage))
	mirrored := fn.Then(embedded, fn.Then(LoggedTap[EmbeddedBatch]("mirror", log), NewMirror(deps.VectorStore, deps.GraphStore)))
	return fn.Then(mirrored, NewBuild(deps.Embedder))
}

// Load runs the pipeline over decoded source records.
func Load(ctx context.Context, deps Deps, records []domain.SourceRecord) (*store.MemoryStore, error) {
	result := NewPipeline(deps)(ctx, records)
	ms, err := result.Unwrap()
	if err != nil {
		return nil, err
	}
	return ms, nil
}

// ReadDataFile decodes a data file from disk.
func ReadDataFile(path string) ([]domain.SourceRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", path, err)
	}
	var f DataFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("ingest: decode %s: %w", path, err)
	}
	return f.Results, nil
}

// LoadFile reads a data file and runs it through the pipeline.
func LoadFile(ctx context.Context, deps Deps, path string) (*store.MemoryStore, error) {
	records, err := ReadDataFile(path)
	if err != nil {
		return nil, err
	}
	return Load(ctx, deps, records)
}

// StartReloadConsumer subscribes to ReloadSubject. Each message triggers a
// fresh load of the data file; on success the new store goes to swap and a
// LoadedEvent is published.
func StartReloadConsumer(nc *nats.Conn, deps Deps, path string, swap func(*store.MemoryStore)) (*nats.Subscription, error) {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	return nc.Subscribe(ReloadSubject, func(msg *nats.Msg) {
		ctx := context.Background()
		ms, err := LoadFile(ctx, deps, path)
		if err != nil {
			log.Error("ingest: reload failed", "path", path, "error", err)
			return
		}
		swap(ms)
		log.Info("ingest: reload complete", "count", ms.Len())

		event := LoadedEvent{Count: ms.Len(), Model: deps.Model, LoadedAt: time.Now().UTC()}
		if err := natsutil.Publish(ctx, nc, LoadedSubject, event); err != nil {
			log.Error("ingest: loaded event publish failed", "error", err)
		}
	})
}
