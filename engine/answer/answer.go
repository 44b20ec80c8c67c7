// Package answer is the pure formatting layer: it renders a classified intent
// and its resolution result into one natural-language sentence plus the
// employee summaries returned alongside it. No lookups beyond the single
// manager-name resolution in Summaries, no side effects.
package answer

import (
	"fmt"
	"strings"

	"github.com/OrgAtlasAI/orgatlas/engine/domain"
)

// Directory is the single-lookup dependency Summaries needs.
type Directory interface {
	Get(id string) (domain.Employee, error)
}

// Summaries projects employees into caller-facing summaries, resolving each
// manager name with one extra store lookup. A manager id that does not
// resolve is a data-integrity fault and surfaces as ErrBrokenRef.
func Summaries(dir Directory, employees []domain.Employee) ([]domain.EmployeeSummary, error) {
	out := make([]domain.EmployeeSummary, len(employees))
	for i, e := range employees {
		s := domain.EmployeeSummary{
			ID:             e.ID,
			Name:           e.Name,
			EmploymentType: string(e.EmploymentType),
		}
		if e.HasManager() {
			m, err := dir.Get(*e.ManagerID)
			if err != nil {
				return nil, fmt.Errorf("answer: manager %q of %q: %w",
					*e.ManagerID, e.ID, domain.ErrBrokenRef)
			}
			name := m.Name
			s.ManagerName = &name
		}
		out[i] = s
	}
	return out, nil
}

// ManagerFound renders a resolved manager chain of the given depth.
func ManagerFound(employee, manager domain.Employee, hops int) string {
	phrase := "The " + strings.Repeat("manager of the ", hops-1) + "manager of"
	return fmt.Sprintf("%s %s is %s.", phrase, employee.Name, manager.Name)
}

// NoManager renders a chain that ended before the requested depth.
func NoManager(start domain.Employee, nm *domain.NoManagerError) string {
	if nm.Hop == 1 {
		return fmt.Sprintf("%s has no manager.", nm.Employee.Name)
	}
	return fmt.Sprintf("The chain above %s ends at %s, who has no manager.",
		start.Name, nm.Employee.Name)
}

// FilterByType renders an employment-type filter result.
func FilterByType(t domain.EmploymentType, n int) string {
	label := strings.ReplaceAll(strings.ToLower(string(t)), "_", "-")
	if n == 0 {
		return fmt.Sprintf("No %s employees found.", label)
	}
	return fmt.Sprintf("Found %d %s employee(s).", n, label)
}

// FilterByCompany renders a company filter result.
func FilterByCompany(company string, n int) string {
	if n == 0 {
		return fmt.Sprintf("No employees found working at %s.", company)
	}
	return fmt.Sprintf("Found %d employee(s) working at %s.", n, company)
}

// Unmanaged renders the find-unmanaged result.
func Unmanaged(n int) string {
	if n == 0 {
		return "Every employee has a manager."
	}
	return fmt.Sprintf("Found %d employee(s) with no manager.", n)
}

// FreeText renders a similarity-search result from the returned summaries.
func FreeText(summaries []domain.EmployeeSummary) string {
	switch len(summaries) {
	case 0:
		return "No relevant employees found for your query."
	case 1:
		s := summaries[0]
		if s.ManagerName != nil {
			return fmt.Sprintf("Found employee: %s (%s). Their manager is %s.",
				s.Name, s.EmploymentType, *s.ManagerName)
		}
		return fmt.Sprintf("Found employee: %s (%s). They have no manager.",
			s.Name, s.EmploymentType)
	}

	top := summaries
	if len(top) > 3 {
		top = top[:3]
	}
	names := make([]string, len(top))
	for i, s := range top {
		names[i] = s.Name
	}
	return fmt.Sprintf("Found %d relevant employee(s). Top matches: %s.",
		len(summaries), strings.Join(names, ", "))
}

// NotFound renders an unresolvable employee reference.
func NotFound(ref string) string {
	return fmt.Sprintf("I couldn't find an employee matching %q.", ref)
}

// Ambiguous renders a reference that matched several employees, listing every
// candidate so the caller can disambiguate.
func Ambiguous(amb *domain.AmbiguousError) string {
	names := make([]string, len(amb.Candidates))
	for i, c := range amb.Candidates {
		names[i] = fmt.Sprintf("%s (%s)", c.Name, c.ID)
	}
	return fmt.Sprintf("%q matches %d employees: %s. Please be more specific.",
		amb.Ref, len(amb.Candidates), strings.Join(names, ", "))
}
