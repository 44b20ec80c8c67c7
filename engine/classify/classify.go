package classify

import (
	"regexp"
	"strings"

	"github.com/OrgAtlasAI/orgatlas/engine/domain"
)

var (
	spaceRe   = regexp.MustCompile(`\s+`)
	companyRe = regexp.MustCompile(`(?:works?|working|employed)\s+(?:at|for|by)\s+(.+)$`)

	typePatterns = []struct {
		re *regexp.Regexp
		t  domain.EmploymentType
	}{
		{regexp.MustCompile(`\bfull[- ]?time\b`), domain.FullTime},
		{regexp.MustCompile(`\bpart[- ]?time\b`), domain.PartTime},
		{regexp.MustCompile(`\bcontract(?:or)?s?\b`), domain.Contract},
		{regexp.MustCompile(`\bintern(?:ship)?s?\b`), domain.Intern},
		{regexp.MustCompile(`\btemp(?:orary)?s?\b`), domain.Temporary},
	}

	unmanagedPhrases = []string{"no manager", "without a manager", "without manager", "unmanaged", "top-level", "top level"}
)

const managerOf = "manager of"

// Normalize lower-cases a query and collapses runs of whitespace.
func Normalize(q string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(strings.ToLower(q), " "))
}

// Classify maps a raw query to exactly one Intent. Patterns are tried in a
// fixed priority order: manager-of, employment-type filter, company filter,
// unmanaged, then the free-text fallback.
func Classify(query string) Intent {
	norm := Normalize(query)

	if hops := strings.Count(norm, managerOf); hops >= 1 {
		last := strings.LastIndex(norm, managerOf)
		if ref := extractRef(norm[last+len(managerOf):]); ref != "" {
			return Intent{Kind: KindManagerOf, Ref: ref, Hops: hops}
		}
	}

	for _, p := range typePatterns {
		if p.re.MatchString(norm) {
			return Intent{Kind: KindFilterByEmploymentType, EmploymentType: p.t}
		}
	}

	if m := companyRe.FindStringSubmatch(norm); m != nil {
		if name := extractRef(m[1]); name != "" {
			return Intent{Kind: KindFilterByCompany, Company: name}
		}
	}

	for _, phrase := range unmanagedPhrases {
		if strings.Contains(norm, phrase) {
			return Intent{Kind: KindUnmanaged}
		}
	}

	return Intent{Kind: KindFreeText, Raw: query}
}

// extractRef cleans the tail of a matched pattern into an employee or company
// reference: leading articles and the word "employee" are dropped, trailing
// punctuation is trimmed.
func extractRef(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"the ", "employee id ", "employee "} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.Trim(s, " ?.,!;:'\"")
	return s
}
