package index

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.etcd.io/bbolt"

	"docqa/internal/port"
)

// Local is a durable on-disk vector index backed by BoltDB. Each
// collection maps to one bucket; records are JSON values keyed by chunk
// ID. Search is brute-force cosine over an in-memory cache, which is fine
// at document-corpus scale.
type Local struct {
	db   *bbolt.DB
	path string

	mu          sync.RWMutex
	collections map[string]*localCollection

	closeOnce sync.Once
	closeErr  error
}

type localCollection struct {
	byID    map[string]int
	records []localRecord
	nextSeq uint64
}

type localRecord struct {
	id       string
	vector   []float32
	text     string
	metadata map[string]string
	seq      uint64
}

// storedRecord is the on-disk representation. Seq preserves insertion
// order across restarts so tie-breaking stays stable.
type storedRecord struct {
	Vector   []float32         `json:"v"`
	Text     string            `json:"t"`
	Metadata map[string]string `json:"m,omitempty"`
	Seq      uint64            `json:"s"`
}

// NewLocal opens (creating if needed) the index database at path.
func NewLocal(path string) (*Local, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open index db: %w", err)
	}

	return &Local{
		db:          db,
		path:        path,
		collections: make(map[string]*localCollection),
	}, nil
}

// Path returns the database file location.
func (s *Local) Path() string {
	return s.path
}

func (s *Local) Exists(collection string) (bool, error) {
	var exists bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		exists = b != nil && b.Stats().KeyN > 0
		return nil
	})
	return exists, err
}

func (s *Local) Upsert(collection string, records []port.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.loadLocked(collection)
	if err != nil {
		return 0, err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return fmt.Errorf("failed to create collection %q: %w", collection, err)
		}

		for _, r := range records {
			seq := col.nextSeq
			if idx, ok := col.byID[r.ChunkID]; ok {
				// Last write wins; the original insertion slot keeps
				// the record's position for tie-breaking.
				seq = col.records[idx].seq
			}

			data, err := json.Marshal(storedRecord{
				Vector:   r.Vector,
				Text:     r.Text,
				Metadata: r.Metadata,
				Seq:      seq,
			})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(r.ChunkID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, r := range records {
		rec := localRecord{
			id:       r.ChunkID,
			vector:   r.Vector,
			text:     r.Text,
			metadata: r.Metadata,
		}
		if idx, ok := col.byID[r.ChunkID]; ok {
			rec.seq = col.records[idx].seq
			col.records[idx] = rec
			continue
		}
		rec.seq = col.nextSeq
		col.nextSeq++
		col.byID[r.ChunkID] = len(col.records)
		col.records = append(col.records, rec)
	}

	return len(records), nil
}

func (s *Local) Query(collection string, vector []float32, k int) ([]port.ScoredRecord, error) {
	s.mu.Lock()
	col, err := s.loadLocked(collection)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(col.records) == 0 || k <= 0 {
		return nil, nil
	}

	scored := make([]port.ScoredRecord, 0, len(col.records))
	for _, r := range col.records {
		scored = append(scored, port.ScoredRecord{
			Record: port.Record{
				ChunkID:  r.id,
				Vector:   r.vector,
				Text:     r.text,
				Metadata: r.metadata,
			},
			Score: cosineSimilarity(vector, r.vector),
		})
	}

	// records are ordered by insertion seq, so the stable sort breaks
	// score ties by insertion order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

func (s *Local) Delete(collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections, collection)

	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(collection)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(collection))
	})
}

func (s *Local) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

// Destroy closes the store and removes its file from disk. The next
// NewLocal on the same path starts from nothing. A missing file is not
// an error.
func (s *Local) Destroy() error {
	if err := s.Close(); err != nil {
		return err
	}

	s.mu.Lock()
	s.collections = make(map[string]*localCollection)
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// loadLocked brings a collection's records into memory, sorted by
// insertion seq. Caller holds s.mu.
func (s *Local) loadLocked(collection string) (*localCollection, error) {
	if col, ok := s.collections[collection]; ok {
		return col, nil
	}

	col := &localCollection{byID: make(map[string]int)}
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var stored storedRecord
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil // skip corrupted entries
			}
			col.records = append(col.records, localRecord{
				id:       string(k),
				vector:   stored.Vector,
				text:     stored.Text,
				metadata: stored.Metadata,
				seq:      stored.Seq,
			})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load collection %q: %w", collection, err)
	}

	sort.Slice(col.records, func(i, j int) bool {
		return col.records[i].seq < col.records[j].seq
	})
	for i, r := range col.records {
		col.byID[r.id] = i
		if r.seq >= col.nextSeq {
			col.nextSeq = r.seq + 1
		}
	}

	s.collections[collection] = col
	return col, nil
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
