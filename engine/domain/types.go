// Package domain defines the employee records, enumerations, and load-time
// validation shared by every stage of the engine. It acts as the validation
// gate for bulk-loaded data.
package domain

import "strings"

// EmploymentType classifies how an employee is engaged.
type EmploymentType string

const (
	FullTime  EmploymentType = "FULL_TIME"
	PartTime  EmploymentType = "PART_TIME"
	Contract  EmploymentType = "CONTRACT"
	Intern    EmploymentType = "INTERN"
	Temporary EmploymentType = "TEMPORARY"
)

// ValidEmploymentTypes is the set of recognised employment types.
var ValidEmploymentTypes = map[EmploymentType]bool{
	FullTime: true, PartTime: true, Contract: true,
	Intern: true, Temporary: true,
}

// ParseEmploymentType normalises raw values like "full-time", "Full Time" or
// "FULL_TIME" into the closed enum. Returns false for unknown values.
func ParseEmploymentType(raw string) (EmploymentType, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	switch s {
	case "TEMP":
		s = string(Temporary)
	case "CONTRACTOR":
		s = string(Contract)
	}
	t := EmploymentType(s)
	if ValidEmploymentTypes[t] {
		return t, true
	}
	return "", false
}

// Employee is one person in the loaded org.
type Employee struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	EmploymentType EmploymentType `json:"employment_type"`
	Company        string         `json:"company,omitempty"` // empty means unknown
	ManagerID      *string        `json:"manager_id"`        // nil means no manager
}

// HasManager reports whether the employee references a manager.
func (e Employee) HasManager() bool {
	return e.ManagerID != nil && *e.ManagerID != ""
}

// EmployeeSummary is the caller-facing projection of an employee.
type EmployeeSummary struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	EmploymentType string  `json:"employment_type"`
	ManagerName    *string `json:"manager_name"`
}

// CompanyRef is the nested company object of a source record.
type CompanyRef struct {
	Name string `json:"name"`
}

// ManagerRef is the nested manager object of a source record.
type ManagerRef struct {
	ID              string `json:"id"`
	DisplayFullName string `json:"display_full_name"`
}

// SourceRecord mirrors one entry of the external data file.
type SourceRecord struct {
	ID               string      `json:"id"`
	DisplayFullName  string      `json:"display_full_name"`
	FirstName        string      `json:"first_name,omitempty"`
	LastName         string      `json:"last_name,omitempty"`
	EmploymentStatus string      `json:"employment_status,omitempty"`
	EmploymentType   string      `json:"employment_type"`
	StartDate        string      `json:"start_date,omitempty"`
	Company          *CompanyRef `json:"company,omitempty"`
	Manager          *ManagerRef `json:"manager,omitempty"`
}

// EmployeeFromRecord converts a source record into an Employee.
func EmployeeFromRecord(r SourceRecord) (Employee, error) {
	if r.ID == "" {
		return Employee{}, NewRecordError("id", r.ID, ErrMissingField)
	}
	if r.DisplayFullName == "" {
		return Employee{}, NewRecordError("display_full_name", r.ID, ErrMissingField)
	}
	t, ok := ParseEmploymentType(r.EmploymentType)
	if !ok {
		return Employee{}, NewRecordError("employment_type", r.EmploymentType, ErrUnknownEmploymentType)
	}
	e := Employee{
		ID:             r.ID,
		Name:           r.DisplayFullName,
		EmploymentType: t,
	}
	if r.Company != nil {
		e.Company = r.Company.Name
	}
	if r.Manager != nil && r.Manager.ID != "" {
		id := r.Manager.ID
		e.ManagerID = &id
	}
	return e, nil
}
