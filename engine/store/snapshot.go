package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/OrgAtlasAI/orgatlas/engine/domain"
)

// Snapshot is the on-disk form of a built store. Persisting it lets a restart
// skip re-embedding the whole data set.
type Snapshot struct {
	Model     string            `json:"model"`
	Dims      int               `json:"dims"`
	Employees []domain.Employee `json:"employees"`
	Vectors   [][]float32       `json:"vectors"`
}

// WriteSnapshot serialises the store to path. The file is written whole; a
// partial write fails rather than leaving a readable truncated snapshot.
func (s *MemoryStore) WriteSnapshot(path, model string) error {
	snap := Snapshot{
		Model:     model,
		Dims:      s.dims,
		Employees: s.employees,
		Vectors:   s.vectors,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("store: marshal snapshot: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("store: finalize snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot rebuilds a store from a snapshot file. The embedder is still
// required because queries are embedded at search time; model is checked so a
// snapshot from a different embedding model is rejected.
func ReadSnapshot(path, model string, embedder Embedder) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("store: decode snapshot: %w", err)
	}
	if model != "" && snap.Model != model {
		return nil, fmt.Errorf("store: snapshot model %q does not match %q", snap.Model, model)
	}
	ms, err := FromParts(embedder, snap.Employees, snap.Vectors)
	if err != nil {
		return nil, err
	}
	if snap.Dims != 0 && ms.dims != snap.Dims {
		return nil, fmt.Errorf("store: snapshot dims %d do not match vectors (%d)", snap.Dims, ms.dims)
	}
	return ms, nil
}
