package ingest

import (
	"time"

	"github.com/OrgAtlasAI/orgatlas/engine/domain"
)

// DataFile mirrors the employee data file layout: a top-level "results" array
// of source records.
type DataFile struct {
	Results []domain.SourceRecord `json:"results"`
}

// Batch is a decoded data file transformed into domain employees plus the
// rendered text for each, in file order.
type Batch struct {
	Records   []domain.SourceRecord
	Employees []domain.Employee
	Texts     []string
}

// EmbeddedBatch is a validated batch with one embedding per employee.
type EmbeddedBatch struct {
	Batch
	Vectors [][]float32
}

// NATS subjects for load coordination.
const (
	// ReloadSubject asks the service to re-read its data file.
	ReloadSubject = "org.employees.reload"
	// LoadedSubject announces a completed load.
	LoadedSubject = "org.employees.loaded"
)

// LoadedEvent is published on LoadedSubject after a successful load.
type LoadedEvent struct {
	Count    int       `json:"count"`
	Model    string    `json:"model"`
	LoadedAt time.Time `json:"loaded_at"`
}
