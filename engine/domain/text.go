package domain

import (
	"fmt"
	"strings"
)

// RecordText renders a source record into the deterministic text that gets
// embedded. All text fields participate so that similarity search can match
// on name, status, type, company, or manager.
func RecordText(r SourceRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Employee ID: %s\n", r.ID)
	fmt.Fprintf(&b, "Name: %s\n", r.DisplayFullName)
	if r.FirstName != "" {
		fmt.Fprintf(&b, "First Name: %s\n", r.FirstName)
	}
	if r.LastName != "" {
		fmt.Fprintf(&b, "Last Name: %s\n", r.LastName)
	}
	if r.EmploymentStatus != "" {
		fmt.Fprintf(&b, "Employment Status: %s\n", r.EmploymentStatus)
	}
	fmt.Fprintf(&b, "Employment Type: %s\n", r.EmploymentType)
	if r.StartDate != "" {
		fmt.Fprintf(&b, "Start Date: %s\n", r.StartDate)
	}
	if r.Company != nil && r.Company.Name != "" {
		fmt.Fprintf(&b, "Company: %s\n", r.Company.Name)
	}
	if r.Manager != nil {
		fmt.Fprintf(&b, "Manager: %s (ID: %s)", r.Manager.DisplayFullName, r.Manager.ID)
	} else {
		b.WriteString("No manager (top-level employee)")
	}
	return b.String()
}
