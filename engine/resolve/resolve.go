// Package resolve walks manager references in the loaded org. The walk is an
// explicit bounded loop with a visited set, so cycles in corrupted data are
// detected rather than looping or recursing without bound.
package resolve

import (
	"fmt"

	"github.com/OrgAtlasAI/orgatlas/engine/domain"
	"github.com/OrgAtlasAI/orgatlas/pkg/fn"
)

// Directory is the subset of the employee store the resolver reads.
type Directory interface {
	Get(id string) (domain.Employee, error)
	All() []domain.Employee
}

// ManagerChain follows manager references exactly hops times starting at id
// and returns the employee reached.
//
// The chain ending early is a reportable outcome, not a fault: it returns a
// NoManagerError naming the employee where the chain stopped. A manager id
// that does not resolve yields ErrBrokenRef, and revisiting an employee (or
// exceeding the population size) yields ErrCycleDetected; both indicate the
// loaded data violates the forest invariant.
func ManagerChain(dir Directory, id string, hops int) (domain.Employee, error) {
	if hops < 1 {
		return domain.Employee{}, fmt.Errorf("resolve: hops must be >= 1, got %d", hops)
	}
	cur, err := dir.Get(id)
	if err != nil {
		return domain.Employee{}, err
	}

	limit := len(dir.All())
	visited := map[string]bool{cur.ID: true}

	for h := 1; h <= hops; h++ {
		if !cur.HasManager() {
			return domain.Employee{}, &domain.NoManagerError{Employee: cur, Hop: h}
		}
		next, err := dir.Get(*cur.ManagerID)
		if err != nil {
			return domain.Employee{}, fmt.Errorf("resolve: manager %q of %q: %w",
				*cur.ManagerID, cur.ID, domain.ErrBrokenRef)
		}
		if visited[next.ID] || h > limit {
			return domain.Employee{}, fmt.Errorf("resolve: chain from %q revisits %q: %w",
				id, next.ID, domain.ErrCycleDetected)
		}
		visited[next.ID] = true
		cur = next
	}
	return cur, nil
}

// Unmanaged returns every employee with no manager, in store order. The
// result is recomputed per call; repeated calls over an unchanged store are
// identical.
func Unmanaged(dir Directory) []domain.Employee {
	return fn.Filter(dir.All(), func(e domain.Employee) bool {
		return !e.HasManager()
	})
}
