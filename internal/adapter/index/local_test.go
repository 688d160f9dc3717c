package index

import (
	"os"
	"path/filepath"
	"testing"

	"docqa/internal/port"
)

func newLocal(t *testing.T) *Local {
	t.Helper()
	s, err := NewLocal(filepath.Join(t.TempDir(), "data", "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func record(id string, vector []float32) port.Record {
	return port.Record{
		ChunkID:  id,
		Vector:   vector,
		Text:     "text for " + id,
		Metadata: map[string]string{"source": id + ".txt"},
	}
}

func TestLocalExistsOnMissingCollection(t *testing.T) {
	s := newLocal(t)

	exists, err := s.Exists("nope")
	if err != nil {
		t.Fatalf("Exists must not fail for a missing collection: %v", err)
	}
	if exists {
		t.Error("missing collection reported as existing")
	}
}

func TestLocalUpsertAndQuery(t *testing.T) {
	s := newLocal(t)

	n, err := s.Upsert("docs", []port.Record{
		record("a", []float32{1, 0}),
		record("b", []float32{0, 1}),
		record("c", []float32{0.9, 0.1}),
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected 3 written, got %d", n)
	}

	exists, err := s.Exists("docs")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("populated collection reported as missing")
	}

	results, err := s.Query("docs", []float32{1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ChunkID != "a" {
		t.Errorf("expected best match 'a', got %q", results[0].ChunkID)
	}
	if results[0].Score < results[1].Score {
		t.Error("results not ordered by descending similarity")
	}
	if results[0].Metadata["source"] != "a.txt" {
		t.Errorf("payload metadata lost: %v", results[0].Metadata)
	}
}

func TestLocalUpsertIdempotent(t *testing.T) {
	s := newLocal(t)

	recs := []port.Record{
		record("a", []float32{1, 0}),
		record("b", []float32{0, 1}),
	}
	if _, err := s.Upsert("docs", recs); err != nil {
		t.Fatal(err)
	}
	// Same IDs again with a changed payload: overwrite, not duplicate.
	recs[0].Text = "updated"
	if _, err := s.Upsert("docs", recs); err != nil {
		t.Fatal(err)
	}

	results, err := s.Query("docs", []float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 records after re-upsert, got %d", len(results))
	}
	if results[0].Text != "updated" {
		t.Errorf("last write did not win: %q", results[0].Text)
	}
}

func TestLocalQueryTiesBreakByInsertionOrder(t *testing.T) {
	s := newLocal(t)

	// Identical vectors produce identical scores.
	if _, err := s.Upsert("docs", []port.Record{
		record("first", []float32{1, 1}),
		record("second", []float32{1, 1}),
		record("third", []float32{1, 1}),
	}); err != nil {
		t.Fatal(err)
	}

	results, err := s.Query("docs", []float32{1, 1}, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if results[i].ChunkID != w {
			t.Errorf("position %d: expected %q, got %q", i, w, results[i].ChunkID)
		}
	}
}

func TestLocalPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	s, err := NewLocal(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Upsert("docs", []port.Record{record("a", []float32{1, 0})}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewLocal(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	exists, err := reopened.Exists("docs")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("collection did not survive reopen")
	}

	results, err := reopened.Query("docs", []float32{1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ChunkID != "a" {
		t.Errorf("persisted record not found after reopen: %v", results)
	}
}

func TestLocalDelete(t *testing.T) {
	s := newLocal(t)

	if _, err := s.Upsert("docs", []port.Record{record("a", []float32{1})}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("docs"); err != nil {
		t.Fatal(err)
	}

	exists, err := s.Exists("docs")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("deleted collection still exists")
	}

	// Deleting again is a no-op, not an error.
	if err := s.Delete("docs"); err != nil {
		t.Errorf("second delete failed: %v", err)
	}
}

func TestLocalCloseIdempotent(t *testing.T) {
	s, err := NewLocal(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}
}

func TestLocalDestroyRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "index.db")
	s, err := NewLocal(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Upsert("docs", []port.Record{record("a", []float32{1, 0})}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("docs"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected the file to survive a bucket delete: %v", err)
	}

	if err := s.Destroy(); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected the index file to be gone after Destroy, got %v", err)
	}

	// Reopening the same path starts empty.
	s2, err := NewLocal(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	exists, err := s2.Exists("docs")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("destroyed index should reopen empty")
	}
}

func TestLocalDestroyOnMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	s, err := NewLocal(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Destroy(); err != nil {
		t.Fatal(err)
	}
	if err := s.Destroy(); err != nil {
		t.Errorf("second destroy failed: %v", err)
	}
}
