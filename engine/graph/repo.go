package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/OrgAtlasAI/orgatlas/engine/domain"
	"github.com/OrgAtlasAI/orgatlas/pkg/repo"
)

// newEmployeeRepo creates a Neo4j-backed repository for Employee nodes.
func newEmployeeRepo(driver neo4j.DriverWithContext) *repo.Neo4jRepo[domain.Employee, string] {
	return repo.NewNeo4jRepo[domain.Employee, string](
		driver,
		"Employee",
		employeeToMap,
		employeeFromRecord,
	)
}

func employeeToMap(e domain.Employee) map[string]any {
	m := map[string]any{
		"id":              e.ID,
		"name":            e.Name,
		"employment_type": string(e.EmploymentType),
		"company":         e.Company,
	}
	if e.HasManager() {
		m["manager_id"] = *e.ManagerID
	}
	return m
}

func employeeFromRecord(rec *neo4j.Record) (domain.Employee, error) {
	node, _, err := neo4j.GetRecordValue[dbtype.Node](rec, "n")
	if err != nil {
		return domain.Employee{}, err
	}
	return employeeFromProps(node.Props), nil
}

// employeeFromProps constructs an Employee from Neo4j node properties.
func employeeFromProps(props map[string]any) domain.Employee {
	e := domain.Employee{
		ID:             strProp(props, "id"),
		Name:           strProp(props, "name"),
		EmploymentType: domain.EmploymentType(strProp(props, "employment_type")),
		Company:        strProp(props, "company"),
	}
	if mgr := strProp(props, "manager_id"); mgr != "" {
		e.ManagerID = &mgr
	}
	return e
}

func strProp(props map[string]any, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
