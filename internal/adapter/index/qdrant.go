package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// Qdrant is a minimal REST client to a Qdrant deployment. Collections use
// cosine distance and are created on first upsert. Point IDs are SHA1
// UUIDs of the chunk ID, so re-upserting a chunk overwrites its point.
type Qdrant struct {
	url    string
	apiKey string
	client *http.Client

	mu    sync.Mutex
	ready map[string]bool
}

// QdrantConfig holds connection parameters for a remote index.
type QdrantConfig struct {
	URL       string
	APIKeyEnv string
	Timeout   time.Duration
}

// NewQdrant creates a remote index client. The URL is required; the API
// key is optional (local deployments run without auth).
func NewQdrant(cfg QdrantConfig) (*Qdrant, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("remote index URL is required: %w", domain.ErrInvalidConfig)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	var apiKey string
	if cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
	}

	return &Qdrant{
		url:    cfg.URL,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		ready:  make(map[string]bool),
	}, nil
}

type collectionInfoResponse struct {
	Result struct {
		PointsCount int `json:"points_count"`
	} `json:"result"`
}

func (s *Qdrant) Exists(collection string) (bool, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/collections/%s", s.url, collection), nil)
	if err != nil {
		return false, err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to query collection metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("collection metadata request failed: %s", resp.Status)
	}

	var info collectionInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return false, fmt.Errorf("failed to decode collection metadata: %w", err)
	}
	return info.Result.PointsCount > 0, nil
}

func (s *Qdrant) Upsert(collection string, records []port.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	if err := s.ensureCollection(collection, len(records[0].Vector)); err != nil {
		return 0, err
	}

	points := make([]map[string]any, len(records))
	for i, r := range records {
		payload := map[string]any{
			"chunk_id": r.ChunkID,
			"text":     r.Text,
		}
		for k, v := range r.Metadata {
			payload["meta_"+k] = v
		}
		points[i] = map[string]any{
			"id":      pointID(r.ChunkID),
			"vector":  r.Vector,
			"payload": payload,
		}
	}

	body := map[string]any{"points": points}
	if err := s.putJSON(fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, collection), body); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *Qdrant) Query(collection string, vector []float32, k int) ([]port.ScoredRecord, error) {
	if k <= 0 {
		return nil, nil
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
		"with_vector":  false,
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(fmt.Sprintf("%s/collections/%s/points/search", s.url, collection), req, &resp); err != nil {
		return nil, err
	}

	results := make([]port.ScoredRecord, 0, len(resp.Result))
	for _, r := range resp.Result {
		rec := port.Record{Metadata: map[string]string{}}
		for key, val := range r.Payload {
			str, ok := val.(string)
			if !ok {
				continue
			}
			switch {
			case key == "chunk_id":
				rec.ChunkID = str
			case key == "text":
				rec.Text = str
			case len(key) > 5 && key[:5] == "meta_":
				rec.Metadata[key[5:]] = str
			}
		}
		results = append(results, port.ScoredRecord{Record: rec, Score: r.Score})
	}
	return results, nil
}

func (s *Qdrant) Delete(collection string) error {
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, collection), nil)
	if err != nil {
		return err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	defer resp.Body.Close()

	// Deleting a missing collection is already the desired end state.
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("collection delete failed: %s", resp.Status)
	}

	s.mu.Lock()
	delete(s.ready, collection)
	s.mu.Unlock()
	return nil
}

func (s *Qdrant) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *Qdrant) ensureCollection(collection string, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready[collection] {
		return nil
	}
	if dimension <= 0 {
		return fmt.Errorf("invalid vector dimension %d: %w", dimension, domain.ErrInvalidConfig)
	}

	// Qdrant returns 200 for an existing collection with the same schema.
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if err := s.putJSON(fmt.Sprintf("%s/collections/%s", s.url, collection), body); err != nil {
		return err
	}
	s.ready[collection] = true
	return nil
}

func (s *Qdrant) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
}

func (s *Qdrant) putJSON(url string, body any) error {
	return s.send(http.MethodPut, url, body, nil)
}

func (s *Qdrant) postJSON(url string, body any, out any) error {
	return s.send(http.MethodPost, url, body, out)
}

func (s *Qdrant) send(method, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s failed: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("qdrant throttled the request: %w", domain.ErrRateLimited)
	}
	if resp.StatusCode >= 300 {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("qdrant %s %s failed: %s: %s", method, url, resp.Status, string(preview))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// pointID maps a chunk ID onto the UUID space Qdrant requires for point
// IDs. The mapping is deterministic, which is what makes upserts by chunk
// ID idempotent on the remote side.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
}
