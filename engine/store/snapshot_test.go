package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")

	ms := testStore(t, [][]float32{{1, 0}, {0, 1}, {3, 4}}, []float32{0, 1})
	if err := ms.WriteSnapshot(path, "test-model"); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	restored, err := ReadSnapshot(path, "test-model", &stubEmbedder{def: []float32{0, 1}})
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if restored.Len() != 3 || restored.Dims() != 2 {
		t.Fatalf("unexpected restored store: len=%d dims=%d", restored.Len(), restored.Dims())
	}

	// Search must behave identically on the restored store.
	hits, err := restored.Search(context.Background(), "q", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if hits[0].Employee.ID != "emp_002" {
		t.Errorf("expected emp_002, got %s", hits[0].Employee.ID)
	}
}

func TestReadSnapshot_ModelMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")

	ms := testStore(t, [][]float32{{1, 0}, {0, 1}, {1, 1}}, []float32{1, 0})
	if err := ms.WriteSnapshot(path, "model-a"); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if _, err := ReadSnapshot(path, "model-b", &stubEmbedder{def: []float32{1, 0}}); err == nil {
		t.Fatal("expected model mismatch error")
	}
}

func TestReadSnapshot_Corrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadSnapshot(path, "", &stubEmbedder{}); err == nil {
		t.Fatal("expected decode error")
	}
}
