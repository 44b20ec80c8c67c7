package store

import (
	"context"
	"sync/atomic"

	"github.com/OrgAtlasAI/orgatlas/engine/domain"
)

// Handle is an atomically swappable pointer to the current store. Reloading
// is a point-in-time swap: readers see either the old complete store or the
// new one, never a partially loaded state.
type Handle struct {
	cur atomic.Pointer[MemoryStore]
}

// NewHandle creates a handle pointing at the given store.
func NewHandle(s *MemoryStore) *Handle {
	h := &Handle{}
	h.cur.Store(s)
	return h
}

// Load returns the current store.
func (h *Handle) Load() *MemoryStore { return h.cur.Load() }

// Swap atomically replaces the current store.
func (h *Handle) Swap(s *MemoryStore) { h.cur.Store(s) }

// The delegating methods below let a Handle stand in wherever a store is
// consumed, so long-lived components always read the freshest load.

func (h *Handle) Get(id string) (domain.Employee, error) { return h.Load().Get(id) }

func (h *Handle) All() []domain.Employee { return h.Load().All() }

func (h *Handle) Search(ctx context.Context, text string, k int) ([]Hit, error) {
	return h.Load().Search(ctx, text, k)
}

func (h *Handle) FilterByType(t domain.EmploymentType) []domain.Employee {
	return h.Load().FilterByType(t)
}

func (h *Handle) FilterByCompany(name string) []domain.Employee {
	return h.Load().FilterByCompany(name)
}

func (h *Handle) MatchName(fragment string) []domain.Employee {
	return h.Load().MatchName(fragment)
}
