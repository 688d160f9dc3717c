package loader

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMatchesTextAndMarkdown(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "first document")
	writeFile(t, dir, "sub/b.md", "second document")
	writeFile(t, dir, "c.log", "ignored")

	docs, err := NewFS(dir, nil, nil).Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	sources := map[string]bool{}
	for _, d := range docs {
		if d.ID == "" {
			t.Error("document has empty ID")
		}
		if d.Content == "" {
			t.Error("document has empty content")
		}
		sources[d.Metadata["source"]] = true
	}
	if !sources["a.txt"] {
		t.Error("a.txt not loaded")
	}
	if !sources[filepath.Join("sub", "b.md")] && !sources["sub/b.md"] {
		t.Error("sub/b.md not loaded")
	}
}

func TestLoadExcludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.txt", "keep")
	writeFile(t, dir, "drafts/skip.txt", "skip")

	docs, err := NewFS(dir, nil, []string{"drafts/**"}).Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Metadata["source"] != "keep.txt" {
		t.Errorf("wrong document survived: %s", docs[0].Metadata["source"])
	}
}

func TestLoadEmptyDirIsNotAnError(t *testing.T) {
	docs, err := NewFS(t.TempDir(), nil, nil).Load()
	if err != nil {
		t.Fatalf("empty corpus must not be an I/O error, got %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no documents, got %d", len(docs))
	}
}

func TestLoadMissingRootIsAnError(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "nope"), nil, nil).Load()
	if err == nil {
		t.Fatal("expected error for missing documents path")
	}
}

func TestLoadStableIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "stable")

	first, err := NewFS(dir, nil, nil).Load()
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewFS(dir, nil, nil).Load()
	if err != nil {
		t.Fatal(err)
	}
	if first[0].ID != second[0].ID {
		t.Errorf("document IDs not stable across runs: %s vs %s", first[0].ID, second[0].ID)
	}
}
