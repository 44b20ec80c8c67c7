package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/OrgAtlasAI/orgatlas/engine/domain"
)

func ptr(s string) *string { return &s }

// stubEmbedder returns canned vectors per text, falling back to def.
type stubEmbedder struct {
	vecs map[string][]float32
	def  []float32
	err  error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vecs[text]; ok {
		out := make([]float32, len(v))
		copy(out, v)
		return out, nil
	}
	out := make([]float32, len(s.def))
	copy(out, s.def)
	return out, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func testEmployees() []domain.Employee {
	return []domain.Employee{
		{ID: "emp_001", Name: "Alice Martin", EmploymentType: domain.FullTime, Company: "Acme", ManagerID: ptr("emp_003")},
		{ID: "emp_002", Name: "Bob Stone", EmploymentType: domain.PartTime, Company: "Acme"},
		{ID: "emp_003", Name: "Carol Diaz", EmploymentType: domain.FullTime, Company: "Globex"},
	}
}

func testStore(t *testing.T, vectors [][]float32, query []float32) *MemoryStore {
	t.Helper()
	emb := &stubEmbedder{def: query}
	ms, err := FromParts(emb, testEmployees(), vectors)
	if err != nil {
		t.Fatalf("FromParts: %v", err)
	}
	return ms
}

func TestGet(t *testing.T) {
	ms := testStore(t, [][]float32{{1, 0}, {0, 1}, {1, 1}}, []float32{1, 0})

	e, err := ms.Get("emp_002")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Name != "Bob Stone" {
		t.Errorf("expected Bob Stone, got %s", e.Name)
	}

	_, err = ms.Get("emp_999")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAll_InsertionOrder(t *testing.T) {
	ms := testStore(t, [][]float32{{1, 0}, {0, 1}, {1, 1}}, []float32{1, 0})
	all := ms.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 employees, got %d", len(all))
	}
	for i, want := range []string{"emp_001", "emp_002", "emp_003"} {
		if all[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, all[i].ID)
		}
	}
	// Mutating the returned slice must not affect the store.
	all[0].Name = "changed"
	if e, _ := ms.Get("emp_001"); e.Name == "changed" {
		t.Error("All returned internal slice")
	}
}

func TestSearch_Ordering(t *testing.T) {
	// Query aligns exactly with emp_002's vector, partially with emp_003's.
	ms := testStore(t, [][]float32{{1, 0}, {0, 1}, {1, 1}}, []float32{0, 1})

	hits, err := ms.Search(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].Employee.ID != "emp_002" {
		t.Errorf("expected emp_002 first, got %s", hits[0].Employee.ID)
	}
	if hits[0].Score < hits[1].Score || hits[1].Score < hits[2].Score {
		t.Errorf("scores not descending: %v %v %v", hits[0].Score, hits[1].Score, hits[2].Score)
	}
}

func TestSearch_TiesBreakByInsertionOrder(t *testing.T) {
	// All records identical: every score ties; order must follow insertion.
	ms := testStore(t, [][]float32{{1, 1}, {1, 1}, {1, 1}}, []float32{1, 1})

	hits, err := ms.Search(context.Background(), "x", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range []string{"emp_001", "emp_002", "emp_003"} {
		if hits[i].Employee.ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, hits[i].Employee.ID)
		}
	}
}

func TestSearch_KClamped(t *testing.T) {
	ms := testStore(t, [][]float32{{1, 0}, {0, 1}, {1, 1}}, []float32{1, 0})

	hits, err := ms.Search(context.Background(), "x", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("k=0: expected 1 hit, got %d", len(hits))
	}

	hits, err = ms.Search(context.Background(), "x", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("k=100: expected 3 hits, got %d", len(hits))
	}
}

func TestSearch_EmbedError(t *testing.T) {
	emb := &stubEmbedder{def: []float32{1, 0}}
	ms, err := FromParts(emb, testEmployees(), [][]float32{{1, 0}, {0, 1}, {1, 1}})
	if err != nil {
		t.Fatalf("FromParts: %v", err)
	}
	emb.err = fmt.Errorf("embedder down")
	if _, err := ms.Search(context.Background(), "x", 2); err == nil {
		t.Fatal("expected error")
	}
}

func TestFromParts_DimsMismatch(t *testing.T) {
	emb := &stubEmbedder{def: []float32{1, 0}}
	_, err := FromParts(emb, testEmployees(), [][]float32{{1, 0}, {0, 1, 2}, {1, 1}})
	if err == nil {
		t.Fatal("expected dims mismatch error")
	}
}

func TestFromParts_RejectsInvalidGraph(t *testing.T) {
	emb := &stubEmbedder{def: []float32{1}}
	employees := []domain.Employee{{ID: "a", Name: "A", ManagerID: ptr("missing")}}
	_, err := FromParts(emb, employees, [][]float32{{1}})
	if !errors.Is(err, domain.ErrBrokenRef) {
		t.Fatalf("expected ErrBrokenRef, got %v", err)
	}
}

func TestFilters(t *testing.T) {
	ms := testStore(t, [][]float32{{1, 0}, {0, 1}, {1, 1}}, []float32{1, 0})

	ft := ms.FilterByType(domain.FullTime)
	if len(ft) != 2 || ft[0].ID != "emp_001" || ft[1].ID != "emp_003" {
		t.Errorf("unexpected full-time set: %+v", ft)
	}

	acme := ms.FilterByCompany("acme")
	if len(acme) != 2 {
		t.Errorf("expected 2 Acme employees, got %d", len(acme))
	}

	if got := ms.FilterByCompany("Initech"); len(got) != 0 {
		t.Errorf("expected no Initech employees, got %d", len(got))
	}
}

func TestMatchName(t *testing.T) {
	ms := testStore(t, [][]float32{{1, 0}, {0, 1}, {1, 1}}, []float32{1, 0})

	if got := ms.MatchName("carol"); len(got) != 1 || got[0].ID != "emp_003" {
		t.Errorf("unexpected match for carol: %+v", got)
	}
	// Fragment matching several employees returns all of them.
	if got := ms.MatchName("o"); len(got) < 2 {
		t.Errorf("expected multiple matches for %q, got %d", "o", len(got))
	}
	if got := ms.MatchName(""); got != nil {
		t.Errorf("expected nil for empty fragment, got %+v", got)
	}
}

func TestHandleSwap(t *testing.T) {
	ms1 := testStore(t, [][]float32{{1, 0}, {0, 1}, {1, 1}}, []float32{1, 0})
	h := NewHandle(ms1)
	if h.Load().Len() != 3 {
		t.Fatalf("expected 3, got %d", h.Load().Len())
	}

	emb := &stubEmbedder{def: []float32{1}}
	ms2, err := FromParts(emb, []domain.Employee{{ID: "x", Name: "X", EmploymentType: domain.Contract}}, [][]float32{{1}})
	if err != nil {
		t.Fatalf("FromParts: %v", err)
	}
	h.Swap(ms2)
	if h.Load().Len() != 1 {
		t.Fatalf("expected swapped store with 1 employee, got %d", h.Load().Len())
	}
	if _, err := h.Get("x"); err != nil {
		t.Fatalf("handle should delegate to swapped store: %v", err)
	}
}
