// Package graph mirrors the employee hierarchy into Neo4j. Employee nodes
// carry the record fields; a REPORTS_TO relationship points from each
// employee to their manager. The in-memory store answers queries; this mirror
// lets other consumers walk the same org chart.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/OrgAtlasAI/orgatlas/engine/domain"
	"github.com/OrgAtlasAI/orgatlas/pkg/repo"
)

// GraphStore provides org-chart operations on top of the generic Neo4j repository.
type GraphStore struct {
	driver    neo4j.DriverWithContext
	employees *repo.Neo4jRepo[domain.Employee, string]
}

// New creates a new GraphStore.
func New(driver neo4j.DriverWithContext) *GraphStore {
	return &GraphStore{
		driver:    driver,
		employees: newEmployeeRepo(driver),
	}
}

// GetEmployee returns an employee node by id.
func (g *GraphStore) GetEmployee(ctx context.Context, id string) (domain.Employee, error) {
	return g.employees.Get(ctx, id)
}

// FindByCompany returns all employees at the given company.
func (g *GraphStore) FindByCompany(ctx context.Context, company string) ([]domain.Employee, error) {
	return g.employees.FindBy(ctx, "company", company)
}

// FindByType returns all employees with the given employment type.
func (g *GraphStore) FindByType(ctx context.Context, t domain.EmploymentType) ([]domain.Employee, error) {
	return g.employees.FindBy(ctx, "employment_type", string(t))
}

// SaveEmployee creates or updates an employee node.
func (g *GraphStore) SaveEmployee(ctx context.Context, e domain.Employee) error {
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MERGE (n:Employee {id: $id}) SET n += $props`
	_, err := sess.Run(ctx, cypher, map[string]any{
		"id":    e.ID,
		"props": employeeToMap(e),
	})
	return err
}

// SaveReportsTo creates or updates the REPORTS_TO edge from an employee to
// their manager.
func (g *GraphStore) SaveReportsTo(ctx context.Context, employeeID, managerID string) error {
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MATCH (e:Employee {id: $employee}), (m:Employee {id: $manager})
			   MERGE (e)-[:REPORTS_TO]->(m)`
	_, err := sess.Run(ctx, cypher, map[string]any{
		"employee": employeeID,
		"manager":  managerID,
	})
	return err
}

// SaveBatch writes all employee nodes and their REPORTS_TO edges in a single
// transaction. Nodes go first so every edge endpoint exists.
func (g *GraphStore) SaveBatch(ctx context.Context, employees []domain.Employee) error {
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	_, err := sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, e := range employees {
			cypher := `MERGE (n:Employee {id: $id}) SET n += $props`
			if _, err := tx.Run(ctx, cypher, map[string]any{
				"id":    e.ID,
				"props": employeeToMap(e),
			}); err != nil {
				return nil, err
			}
		}
		for _, e := range employees {
			if !e.HasManager() {
				continue
			}
			cypher := `MATCH (a:Employee {id: $employee}), (b:Employee {id: $manager})
					   MERGE (a)-[:REPORTS_TO]->(b)`
			if _, err := tx.Run(ctx, cypher, map[string]any{
				"employee": e.ID,
				"manager":  *e.ManagerID,
			}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// ManagerChain returns the management chain above an employee, nearest
// manager first, up to the given number of hops.
func (g *GraphStore) ManagerChain(ctx context.Context, employeeID string, hops int) ([]domain.Employee, error) {
	if hops <= 0 {
		hops = 1
	}
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := fmt.Sprintf(
		`MATCH (start:Employee {id: $id})-[:REPORTS_TO*1..%d]->(n:Employee)
		 RETURN n`, hops)
	res, err := sess.Run(ctx, cypher, map[string]any{"id": employeeID})
	if err != nil {
		return nil, err
	}
	return collectEmployees(ctx, res)
}

// DirectReports returns the employees whose manager is the given employee.
func (g *GraphStore) DirectReports(ctx context.Context, managerID string) ([]domain.Employee, error) {
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MATCH (n:Employee)-[:REPORTS_TO]->(:Employee {id: $id}) RETURN n`
	res, err := sess.Run(ctx, cypher, map[string]any{"id": managerID})
	if err != nil {
		return nil, err
	}
	return collectEmployees(ctx, res)
}

// Unmanaged returns the roots of the forest: employees with no outgoing
// REPORTS_TO edge.
func (g *GraphStore) Unmanaged(ctx context.Context) ([]domain.Employee, error) {
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MATCH (n:Employee) WHERE NOT (n)-[:REPORTS_TO]->() RETURN n`
	res, err := sess.Run(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}
	return collectEmployees(ctx, res)
}

// NodeCount returns the number of employee nodes in the mirror.
func (g *GraphStore) NodeCount(ctx context.Context) (int64, error) {
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	res, err := sess.Run(ctx, `MATCH (n:Employee) RETURN count(n) AS count`, nil)
	if err != nil {
		return 0, err
	}
	if !res.Next(ctx) {
		return 0, fmt.Errorf("graph: count query returned no rows")
	}
	val, ok := res.Record().Get("count")
	if !ok {
		return 0, fmt.Errorf("graph: count missing from result")
	}
	n, ok := val.(int64)
	if !ok {
		return 0, fmt.Errorf("graph: unexpected count type %T", val)
	}
	return n, nil
}

// Clear removes all employee nodes and their relationships. A bulk reload
// clears first so the mirror never mixes two loads.
func (g *GraphStore) Clear(ctx context.Context) error {
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	_, err := sess.Run(ctx, `MATCH (n:Employee) DETACH DELETE n`, nil)
	return err
}

// collectEmployees reads all Employee nodes from a result set.
func collectEmployees(ctx context.Context, res neo4j.ResultWithContext) ([]domain.Employee, error) {
	var items []domain.Employee
	for res.Next(ctx) {
		node, _, err := neo4j.GetRecordValue[dbtype.Node](res.Record(), "n")
		if err != nil {
			return nil, err
		}
		items = append(items, employeeFromProps(node.Props))
	}
	return items, nil
}
