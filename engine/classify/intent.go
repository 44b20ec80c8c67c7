// Package classify turns a raw query string into a structured Intent and
// resolves employee references against the loaded store. Structured patterns
// are checked before the free-text fallback because relationship questions
// have exact answers and must not be approximated by similarity search.
package classify

import "github.com/OrgAtlasAI/orgatlas/engine/domain"

// Kind enumerates the closed set of intent variants.
type Kind int

const (
	// KindManagerOf asks who manages an employee, possibly several hops up.
	KindManagerOf Kind = iota
	// KindFilterByEmploymentType lists employees of one employment type.
	KindFilterByEmploymentType
	// KindFilterByCompany lists employees of one company.
	KindFilterByCompany
	// KindUnmanaged lists employees with no manager.
	KindUnmanaged
	// KindFreeText is the fallback that triggers similarity search.
	KindFreeText
)

func (k Kind) String() string {
	switch k {
	case KindManagerOf:
		return "manager_of"
	case KindFilterByEmploymentType:
		return "filter_employment_type"
	case KindFilterByCompany:
		return "filter_company"
	case KindUnmanaged:
		return "unmanaged"
	case KindFreeText:
		return "free_text"
	default:
		return "unknown"
	}
}

// Intent is the classified meaning of a query. Only the fields belonging to
// its Kind are set.
type Intent struct {
	Kind Kind

	// ManagerOf
	Ref  string // employee id token or name fragment, as written in the query
	Hops int    // >= 1; "manager of the manager of" counts each level

	// FilterByEmploymentType
	EmploymentType domain.EmploymentType

	// FilterByCompany
	Company string

	// FreeText
	Raw string
}
