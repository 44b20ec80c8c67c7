package classify

import (
	"fmt"
	"strings"

	"github.com/OrgAtlasAI/orgatlas/engine/domain"
)

// Directory is the subset of the employee store needed to resolve references.
type Directory interface {
	Get(id string) (domain.Employee, error)
	All() []domain.Employee
	MatchName(fragment string) []domain.Employee
}

// ResolveRef resolves an extracted employee reference to a single employee.
// Resolution order: exact id, unique id suffix ("001" resolves "emp_001"),
// then name fragment. A fragment matching more than one employee yields
// AmbiguousError with every candidate rather than a guess.
func ResolveRef(dir Directory, ref string) (domain.Employee, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Employee{}, fmt.Errorf("classify: empty employee reference: %w", domain.ErrNotFound)
	}

	if e, err := dir.Get(ref); err == nil {
		return e, nil
	}

	lref := strings.ToLower(ref)
	var matches []domain.Employee
	for _, e := range dir.All() {
		if strings.HasSuffix(strings.ToLower(e.ID), lref) {
			matches = append(matches, e)
		}
	}
	switch {
	case len(matches) == 1:
		return matches[0], nil
	case len(matches) > 1:
		return domain.Employee{}, &domain.AmbiguousError{Ref: ref, Candidates: matches}
	}

	matches = dir.MatchName(ref)
	switch {
	case len(matches) == 1:
		return matches[0], nil
	case len(matches) > 1:
		return domain.Employee{}, &domain.AmbiguousError{Ref: ref, Candidates: matches}
	}
	return domain.Employee{}, fmt.Errorf("classify: reference %q: %w", ref, domain.ErrNotFound)
}
