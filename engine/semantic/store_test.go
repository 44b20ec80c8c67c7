package semantic

import (
	"context"
	"errors"
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
)

// --- Mocks ---

type mockPoints struct {
	pb.PointsClient
	upsertResp *pb.PointsOperationResponse
	upsertErr  error
	searchResp *pb.SearchResponse
	searchErr  error
	lastUpsert *pb.UpsertPoints
	lastSearch *pb.SearchPoints
}

func (m *mockPoints) Upsert(_ context.Context, req *pb.UpsertPoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	m.lastUpsert = req
	return m.upsertResp, m.upsertErr
}

func (m *mockPoints) Search(_ context.Context, req *pb.SearchPoints, _ ...grpc.CallOption) (*pb.SearchResponse, error) {
	m.lastSearch = req
	return m.searchResp, m.searchErr
}

type mockCollections struct {
	pb.CollectionsClient
	listResp   *pb.ListCollectionsResponse
	listErr    error
	createResp *pb.CollectionOperationResponse
	createErr  error
	deleteResp *pb.CollectionOperationResponse
	deleteErr  error
}

func (m *mockCollections) List(_ context.Context, _ *pb.ListCollectionsRequest, _ ...grpc.CallOption) (*pb.ListCollectionsResponse, error) {
	return m.listResp, m.listErr
}

func (m *mockCollections) Create(_ context.Context, _ *pb.CreateCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	return m.createResp, m.createErr
}

func (m *mockCollections) Delete(_ context.Context, _ *pb.DeleteCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	return m.deleteResp, m.deleteErr
}

// --- Tests ---

func TestNewWithClients(t *testing.T) {
	vs := NewWithClients(&mockPoints{}, &mockCollections{}, "employees")
	if vs == nil {
		t.Fatal("expected non-nil")
	}
	if err := vs.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestEnsureCollection_AlreadyExists(t *testing.T) {
	cols := &mockCollections{
		listResp: &pb.ListCollectionsResponse{
			Collections: []*pb.CollectionDescription{{Name: "employees"}},
		},
	}
	vs := NewWithClients(&mockPoints{}, cols, "employees")
	if err := vs.EnsureCollection(context.Background(), 384); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureCollection_Creates(t *testing.T) {
	cols := &mockCollections{
		listResp:   &pb.ListCollectionsResponse{Collections: []*pb.CollectionDescription{}},
		createResp: &pb.CollectionOperationResponse{Result: true},
	}
	vs := NewWithClients(&mockPoints{}, cols, "employees")
	if err := vs.EnsureCollection(context.Background(), 384); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureCollection_Errors(t *testing.T) {
	vs := NewWithClients(&mockPoints{}, &mockCollections{listErr: errors.New("rpc fail")}, "employees")
	if err := vs.EnsureCollection(context.Background(), 4); err == nil {
		t.Fatal("expected list error")
	}

	cols := &mockCollections{
		listResp:  &pb.ListCollectionsResponse{Collections: []*pb.CollectionDescription{}},
		createErr: errors.New("create fail"),
	}
	vs = NewWithClients(&mockPoints{}, cols, "employees")
	if err := vs.EnsureCollection(context.Background(), 4); err == nil {
		t.Fatal("expected create error")
	}
}

func TestDeleteCollection(t *testing.T) {
	vs := NewWithClients(&mockPoints{}, &mockCollections{deleteResp: &pb.CollectionOperationResponse{Result: true}}, "employees")
	if err := vs.DeleteCollection(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vs = NewWithClients(&mockPoints{}, &mockCollections{deleteErr: errors.New("fail")}, "employees")
	if err := vs.DeleteCollection(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestUpsert_Empty(t *testing.T) {
	vs := NewWithClients(&mockPoints{}, &mockCollections{}, "employees")
	if err := vs.Upsert(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpsert_BuildsPayload(t *testing.T) {
	pts := &mockPoints{upsertResp: &pb.PointsOperationResponse{}}
	vs := NewWithClients(pts, &mockCollections{}, "employees")

	records := []EmployeePoint{{
		ID:             "emp_001",
		Embedding:      []float32{1, 0, 0},
		Name:           "Alice Martin",
		EmploymentType: "FULL_TIME",
		Company:        "Acme",
		ManagerID:      "emp_003",
		ManagerName:    "Carol Diaz",
	}}
	if err := vs.Upsert(context.Background(), records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pts.lastUpsert.GetPoints()) != 1 {
		t.Fatalf("expected 1 point, got %d", len(pts.lastUpsert.GetPoints()))
	}
	payload := pts.lastUpsert.GetPoints()[0].GetPayload()
	if payload["name"].GetStringValue() != "Alice Martin" {
		t.Errorf("unexpected name payload: %v", payload["name"])
	}
	if payload["manager_name"].GetStringValue() != "Carol Diaz" {
		t.Errorf("unexpected manager_name payload: %v", payload["manager_name"])
	}
}

func TestUpsert_StablePointIDs(t *testing.T) {
	if pointID("emp_001") != pointID("emp_001") {
		t.Error("point id must be deterministic")
	}
	if pointID("emp_001") == pointID("emp_002") {
		t.Error("distinct employees must map to distinct point ids")
	}
}

func TestUpsert_Error(t *testing.T) {
	vs := NewWithClients(&mockPoints{upsertErr: errors.New("fail")}, &mockCollections{}, "employees")
	if err := vs.Upsert(context.Background(), []EmployeePoint{{ID: "x", Embedding: []float32{1}}}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearch(t *testing.T) {
	pts := &mockPoints{
		searchResp: &pb.SearchResponse{
			Result: []*pb.ScoredPoint{
				{
					Score: 0.93,
					Payload: map[string]*pb.Value{
						"id":              strValue("emp_001"),
						"name":            strValue("Alice Martin"),
						"employment_type": strValue("FULL_TIME"),
						"company":         strValue("Acme"),
						"manager_id":      strValue("emp_003"),
						"manager_name":    strValue("Carol Diaz"),
					},
				},
			},
		},
	}
	vs := NewWithClients(pts, &mockCollections{}, "employees")

	results, err := vs.Search(context.Background(), []float32{0.1, 0.2}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.ID != "emp_001" || r.Name != "Alice Martin" || r.ManagerName != "Carol Diaz" {
		t.Errorf("unexpected result: %+v", r)
	}
	if r.Score != 0.93 {
		t.Errorf("unexpected score: %v", r.Score)
	}
	// topK < 1 is clamped to 1.
	if pts.lastSearch.GetLimit() != 1 {
		t.Errorf("expected limit clamped to 1, got %d", pts.lastSearch.GetLimit())
	}
}

func TestSearch_Error(t *testing.T) {
	vs := NewWithClients(&mockPoints{searchErr: errors.New("fail")}, &mockCollections{}, "employees")
	if _, err := vs.Search(context.Background(), []float32{1}, 3); err == nil {
		t.Fatal("expected error")
	}
}
