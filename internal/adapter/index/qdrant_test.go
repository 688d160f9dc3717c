package index

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docqa/internal/port"
)

func newQdrant(t *testing.T, handler http.Handler) *Qdrant {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewQdrant(QdrantConfig{URL: srv.URL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestQdrantConfigRequiresURL(t *testing.T) {
	if _, err := NewQdrant(QdrantConfig{}); err == nil {
		t.Fatal("expected error for missing URL")
	}
}

func TestQdrantExists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /collections/full", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"points_count":42}}`))
	})
	mux.HandleFunc("GET /collections/empty", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"points_count":0}}`))
	})
	mux.HandleFunc("GET /collections/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	s := newQdrant(t, mux)

	cases := []struct {
		collection string
		want       bool
	}{
		{"full", true},
		{"empty", false},
		{"missing", false},
	}
	for _, tc := range cases {
		got, err := s.Exists(tc.collection)
		if err != nil {
			t.Fatalf("%s: %v", tc.collection, err)
		}
		if got != tc.want {
			t.Errorf("%s: expected exists=%v, got %v", tc.collection, tc.want, got)
		}
	}
}

func TestQdrantUpsertCreatesCollectionAndPoints(t *testing.T) {
	var createdSchema map[string]any
	var upserted struct {
		Points []struct {
			ID      string         `json:"id"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /collections/docs", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&createdSchema)
		w.Write([]byte(`{"result":true}`))
	})
	mux.HandleFunc("PUT /collections/docs/points", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&upserted)
		w.Write([]byte(`{"result":{}}`))
	})

	s := newQdrant(t, mux)

	n, err := s.Upsert("docs", []port.Record{
		record("chunk-1", []float32{1, 0, 0}),
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 written, got %d", n)
	}

	vectors, ok := createdSchema["vectors"].(map[string]any)
	if !ok || vectors["size"].(float64) != 3 {
		t.Errorf("collection not created with dimension 3: %v", createdSchema)
	}

	if len(upserted.Points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(upserted.Points))
	}
	first := upserted.Points[0].ID

	// Re-upserting the same chunk must target the same point ID.
	if _, err := s.Upsert("docs", []port.Record{record("chunk-1", []float32{1, 0, 0})}); err != nil {
		t.Fatal(err)
	}
	if upserted.Points[0].ID != first {
		t.Errorf("point ID not deterministic: %s vs %s", first, upserted.Points[0].ID)
	}

	if upserted.Points[0].Payload["chunk_id"] != "chunk-1" {
		t.Errorf("payload missing chunk_id: %v", upserted.Points[0].Payload)
	}
	if upserted.Points[0].Payload["meta_source"] != "chunk-1.txt" {
		t.Errorf("payload missing metadata: %v", upserted.Points[0].Payload)
	}
}

func TestQdrantQueryParsesPayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /collections/docs/points/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[
			{"score":0.92,"payload":{"chunk_id":"c1","text":"hello","meta_source":"a.txt"}},
			{"score":0.80,"payload":{"chunk_id":"c2","text":"world","meta_source":"b.txt"}}
		]}`))
	})

	s := newQdrant(t, mux)

	results, err := s.Query("docs", []float32{1, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ChunkID != "c1" || results[0].Text != "hello" {
		t.Errorf("first result mangled: %+v", results[0])
	}
	if results[0].Metadata["source"] != "a.txt" {
		t.Errorf("metadata prefix not stripped: %v", results[0].Metadata)
	}
	if results[0].Score < results[1].Score {
		t.Error("results out of order")
	}
}

func TestQdrantDeleteToleratesMissing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /collections/docs", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	s := newQdrant(t, mux)
	if err := s.Delete("docs"); err != nil {
		t.Errorf("deleting a missing collection must not fail: %v", err)
	}
}
