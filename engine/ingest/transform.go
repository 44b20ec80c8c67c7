package ingest

import (
	"fmt"

	"github.com/OrgAtlasAI/orgatlas/engine/domain"
	"github.com/OrgAtlasAI/orgatlas/engine/semantic"
)

// buildBatch converts source records into domain employees plus their
// embedding texts, preserving file order.
func buildBatch(records []domain.SourceRecord) (Batch, error) {
	b := Batch{
		Records:   records,
		Employees: make([]domain.Employee, len(records)),
		Texts:     make([]string, len(records)),
	}
	for i, r := range records {
		e, err := domain.EmployeeFromRecord(r)
		if err != nil {
			return Batch{}, fmt.Errorf("ingest: record %d: %w", i, err)
		}
		b.Employees[i] = e
		b.Texts[i] = domain.RecordText(r)
	}
	return b, nil
}

// employeePoints pairs each employee with its embedding for the vector
// mirror. Manager names resolve within the batch itself.
func employeePoints(b EmbeddedBatch) []semantic.EmployeePoint {
	names := make(map[string]string, len(b.Employees))
	for _, e := range b.Employees {
		names[e.ID] = e.Name
	}

	points := make([]semantic.EmployeePoint, len(b.Employees))
	for i, e := range b.Employees {
		p := semantic.EmployeePoint{
			ID:             e.ID,
			Embedding:      b.Vectors[i],
			Name:           e.Name,
			EmploymentType: string(e.EmploymentType),
			Company:        e.Company,
		}
		if e.HasManager() {
			p.ManagerID = *e.ManagerID
			p.ManagerName = names[*e.ManagerID]
		}
		points[i] = p
	}
	return points
}
