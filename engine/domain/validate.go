package domain

import "fmt"

// Validate checks the forest invariant over a freshly loaded set of employees:
// ids are unique, every non-null manager_id resolves to a loaded employee, and
// following manager references always terminates.
func Validate(employees []Employee) error {
	byID := make(map[string]Employee, len(employees))
	for _, e := range employees {
		if _, dup := byID[e.ID]; dup {
			return fmt.Errorf("validate: id %q: %w", e.ID, ErrDuplicateID)
		}
		byID[e.ID] = e
	}

	for _, e := range employees {
		if !e.HasManager() {
			continue
		}
		if _, ok := byID[*e.ManagerID]; !ok {
			return fmt.Errorf("validate: employee %q references manager %q: %w",
				e.ID, *e.ManagerID, ErrBrokenRef)
		}
	}

	// Walk each chain with a visited set. The dangling check above guarantees
	// every step resolves, so a walk can only fail by revisiting a node.
	for _, e := range employees {
		visited := map[string]bool{e.ID: true}
		cur := e
		for cur.HasManager() {
			next := byID[*cur.ManagerID]
			if visited[next.ID] {
				return fmt.Errorf("validate: chain from %q revisits %q: %w",
					e.ID, next.ID, ErrCycleDetected)
			}
			visited[next.ID] = true
			cur = next
		}
	}
	return nil
}
