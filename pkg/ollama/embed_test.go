package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func embedServer(t *testing.T, embedding []float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req embedReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model == "" || req.Prompt == "" {
			t.Errorf("request missing model or prompt: %+v", req)
		}
		json.NewEncoder(w).Encode(embedResp{Embedding: embedding})
	}))
}

func TestEmbed(t *testing.T) {
	srv := embedServer(t, []float64{0.1, 0.2, 0.3})
	defer srv.Close()

	c := NewEmbedClient(srv.URL, "nomic-embed-text")
	v, err := c.Embed(context.Background(), "Alice Martin is a full-time employee")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v) != 3 {
		t.Fatalf("expected 3 dims, got %d", len(v))
	}
	if v[0] != float32(0.1) {
		t.Errorf("unexpected first value: %v", v[0])
	}
}

func TestEmbed_EmptyEmbedding(t *testing.T) {
	srv := embedServer(t, nil)
	defer srv.Close()

	if _, err := NewEmbedClient(srv.URL, "m").Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error for empty embedding")
	}
}

func TestEmbed_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewEmbedClient(srv.URL, "missing").Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected status error")
	}
}

func TestEmbedBatch(t *testing.T) {
	srv := embedServer(t, []float64{1, 0})
	defer srv.Close()

	out, err := NewEmbedClient(srv.URL, "m", WithRateLimit(100, 10)).
		EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 embeddings, got %d", len(out))
	}
}

func TestModel(t *testing.T) {
	if got := NewEmbedClient("http://localhost", "nomic-embed-text").Model(); got != "nomic-embed-text" {
		t.Errorf("unexpected model: %s", got)
	}
}
