package loader

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"docqa/internal/domain"
)

// FS loads plain-text documents from a directory tree. Files are matched
// against doublestar include/exclude patterns relative to the root.
type FS struct {
	root     string
	includes []string
	excludes []string
}

// NewFS creates a loader rooted at dir. With no include patterns it picks
// up .txt and .md files, the formats the corpus is expected to hold.
func NewFS(root string, includes, excludes []string) *FS {
	if len(includes) == 0 {
		includes = []string{"**/*.txt", "**/*.md"}
	}
	return &FS{
		root:     root,
		includes: includes,
		excludes: excludes,
	}
}

// Load reads every matching file under the root. An empty directory yields
// an empty slice and a nil error; a missing or unreadable root is an error.
func (l *FS) Load() ([]domain.Document, error) {
	root, err := filepath.Abs(l.root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("documents path unavailable: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("documents path is not a directory: %s", root)
	}

	var docs []domain.Document
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if l.shouldExclude(relPath + "/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !l.shouldInclude(relPath) || l.shouldExclude(relPath) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", relPath, err)
		}

		docs = append(docs, domain.Document{
			ID:      docID(relPath),
			Content: string(data),
			Metadata: map[string]string{
				"source": relPath,
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}

func (l *FS) shouldInclude(path string) bool {
	for _, pattern := range l.includes {
		matched, err := doublestar.Match(pattern, filepath.ToSlash(path))
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (l *FS) shouldExclude(path string) bool {
	for _, pattern := range l.excludes {
		matched, err := doublestar.Match(pattern, filepath.ToSlash(path))
		if err == nil && matched {
			return true
		}
	}
	return false
}

// docID derives a stable ID from the file's path relative to the root, so
// re-indexing the same corpus produces the same document IDs.
func docID(relPath string) string {
	hash := sha256.Sum256([]byte(filepath.ToSlash(relPath)))
	return hex.EncodeToString(hash[:8])
}
