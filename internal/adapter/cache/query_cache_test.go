package cache

import (
	"fmt"
	"testing"
	"time"

	"docqa/internal/domain"
)

func chunks(ids ...string) []domain.RetrievedChunk {
	out := make([]domain.RetrievedChunk, len(ids))
	for i, id := range ids {
		out[i] = domain.RetrievedChunk{ChunkID: id}
	}
	return out
}

func TestCacheHitAndMiss(t *testing.T) {
	c := NewQueryCache(10, time.Minute)

	if _, hit := c.Get("q", 5); hit {
		t.Error("unexpected hit on empty cache")
	}

	c.Put("q", 5, chunks("a", "b"))

	got, hit := c.Get("q", 5)
	if !hit {
		t.Fatal("expected hit")
	}
	if len(got) != 2 || got[0].ChunkID != "a" {
		t.Errorf("wrong cached chunks: %v", got)
	}

	// Same query, different k is a different entry.
	if _, hit := c.Get("q", 3); hit {
		t.Error("k must be part of the cache key")
	}
}

func TestCacheRecentUseBlocksEviction(t *testing.T) {
	c := NewQueryCache(2, time.Minute)
	c.Put("q0", 5, chunks("a"))
	c.Put("q1", 5, chunks("b"))

	// Touch q0 so q1 becomes the eviction candidate.
	if _, hit := c.Get("q0", 5); !hit {
		t.Fatal("expected hit on q0")
	}
	c.Put("q2", 5, chunks("c"))

	if _, hit := c.Get("q0", 5); !hit {
		t.Error("recently used entry was evicted")
	}
	if _, hit := c.Get("q1", 5); hit {
		t.Error("least recently used entry survived")
	}
}

func TestCachePutRefreshesEntry(t *testing.T) {
	c := NewQueryCache(10, time.Minute)
	c.Put("q", 5, chunks("a"))
	c.Put("q", 5, chunks("b", "c"))

	got, hit := c.Get("q", 5)
	if !hit {
		t.Fatal("expected hit")
	}
	if len(got) != 2 || got[0].ChunkID != "b" {
		t.Errorf("expected the replacement chunks, got %v", got)
	}
	if c.Size() != 1 {
		t.Errorf("replacement must not grow the cache, size %d", c.Size())
	}
}

func TestCacheEvictsOldest(t *testing.T) {
	c := NewQueryCache(3, time.Minute)

	for i := 0; i < 4; i++ {
		c.Put(fmt.Sprintf("q%d", i), 5, chunks("x"))
	}

	if c.Size() != 3 {
		t.Fatalf("expected size 3, got %d", c.Size())
	}
	if _, hit := c.Get("q0", 5); hit {
		t.Error("oldest entry not evicted")
	}
	if _, hit := c.Get("q3", 5); !hit {
		t.Error("newest entry missing")
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	c := NewQueryCache(10, 10*time.Millisecond)
	c.Put("q", 5, chunks("a"))

	time.Sleep(20 * time.Millisecond)

	if _, hit := c.Get("q", 5); hit {
		t.Error("expired entry served from cache")
	}
}
