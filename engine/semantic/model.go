package semantic

// SearchResult is a single vector search hit from the persisted index.
type SearchResult struct {
	ID             string  `json:"id"`
	Score          float32 `json:"score"`
	Name           string  `json:"name"`
	EmploymentType string  `json:"employment_type"`
	Company        string  `json:"company"`
	ManagerID      string  `json:"manager_id"`
	ManagerName    string  `json:"manager_name"`
}

// EmployeePoint is one employee record plus its embedding, as stored in Qdrant.
type EmployeePoint struct {
	ID             string
	Embedding      []float32
	Name           string
	EmploymentType string
	Company        string
	ManagerID      string
	ManagerName    string
}
