// Package store provides the in-memory employee store: id lookup, ordered
// listing, attribute filters, and brute-force cosine similarity search over
// per-record embeddings. A store is immutable once built and therefore safe
// for concurrent readers; reloads swap a whole new store via Handle.
package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/OrgAtlasAI/orgatlas/engine/domain"
	"github.com/OrgAtlasAI/orgatlas/pkg/fn"
)

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Hit is a single similarity search result.
type Hit struct {
	Employee domain.Employee `json:"employee"`
	Score    float32         `json:"score"`
}

// MemoryStore holds the loaded employees and their unit-normalised embeddings.
// employees[i] corresponds to vectors[i]; slice order is insertion order.
type MemoryStore struct {
	embedder  Embedder
	employees []domain.Employee
	vectors   [][]float32
	byID      map[string]int
	dims      int
}

// New builds a store from validated employees and their embedding texts.
// texts[i] is the rendering of employees[i].
func New(ctx context.Context, embedder Embedder, employees []domain.Employee, texts []string) (*MemoryStore, error) {
	if len(texts) != len(employees) {
		return nil, fmt.Errorf("store: %d employees but %d texts", len(employees), len(texts))
	}
	if err := domain.Validate(employees); err != nil {
		return nil, err
	}

	var vectors [][]float32
	if len(texts) > 0 {
		embedded, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("store: embed %d records: %w", len(texts), err)
		}
		vectors = embedded
	}
	return FromParts(embedder, employees, vectors)
}

// FromParts builds a store from employees and pre-computed embeddings, e.g.
// restored from a snapshot. Vectors are normalised in place.
func FromParts(embedder Embedder, employees []domain.Employee, vectors [][]float32) (*MemoryStore, error) {
	if len(vectors) != len(employees) {
		return nil, fmt.Errorf("store: %d employees but %d vectors", len(employees), len(vectors))
	}
	if err := domain.Validate(employees); err != nil {
		return nil, err
	}

	dims := 0
	for i, v := range vectors {
		if i == 0 {
			dims = len(v)
		}
		if len(v) != dims || dims == 0 {
			return nil, fmt.Errorf("store: vector %d has %d dims, want %d", i, len(v), dims)
		}
		normalize(v)
	}

	byID := make(map[string]int, len(employees))
	for i, e := range employees {
		byID[e.ID] = i
	}
	return &MemoryStore{
		embedder:  embedder,
		employees: employees,
		vectors:   vectors,
		byID:      byID,
		dims:      dims,
	}, nil
}

// Len returns the number of loaded employees.
func (s *MemoryStore) Len() int { return len(s.employees) }

// Dims returns the embedding dimensionality.
func (s *MemoryStore) Dims() int { return s.dims }

// Get returns the employee with the given id.
func (s *MemoryStore) Get(id string) (domain.Employee, error) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Employee{}, fmt.Errorf("store: id %q: %w", id, domain.ErrNotFound)
	}
	return s.employees[i], nil
}

// All returns every employee in insertion order.
func (s *MemoryStore) All() []domain.Employee {
	out := make([]domain.Employee, len(s.employees))
	copy(out, s.employees)
	return out
}

// Search embeds the query text and returns the top-k nearest employees by
// cosine similarity, descending. Ties break by insertion order. k is clamped
// to [1, Len].
func (s *MemoryStore) Search(ctx context.Context, text string, k int) ([]Hit, error) {
	if len(s.employees) == 0 {
		return nil, nil
	}
	if k < 1 {
		k = 1
	}
	if k > len(s.employees) {
		k = len(s.employees)
	}

	q, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("store: embed query: %w", err)
	}
	if len(q) != s.dims {
		return nil, fmt.Errorf("store: query vector has %d dims, index has %d", len(q), s.dims)
	}
	normalize(q)

	hits := make([]Hit, len(s.employees))
	for i, v := range s.vectors {
		hits[i] = Hit{Employee: s.employees[i], Score: dot(q, v)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return hits[:k], nil
}

// FilterByType returns employees with the given employment type, in
// insertion order.
func (s *MemoryStore) FilterByType(t domain.EmploymentType) []domain.Employee {
	return fn.Filter(s.employees, func(e domain.Employee) bool {
		return e.EmploymentType == t
	})
}

// FilterByCompany returns employees whose company matches, case-insensitively.
func (s *MemoryStore) FilterByCompany(name string) []domain.Employee {
	want := strings.ToLower(strings.TrimSpace(name))
	return fn.Filter(s.employees, func(e domain.Employee) bool {
		return strings.ToLower(e.Company) == want
	})
}

// MatchName returns employees whose name contains the fragment,
// case-insensitively, in insertion order.
func (s *MemoryStore) MatchName(fragment string) []domain.Employee {
	frag := strings.ToLower(strings.TrimSpace(fragment))
	if frag == "" {
		return nil
	}
	return fn.Filter(s.employees, func(e domain.Employee) bool {
		return strings.Contains(strings.ToLower(e.Name), frag)
	})
}

func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
