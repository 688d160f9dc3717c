package cache

import (
	"container/list"
	"strconv"
	"sync"
	"time"

	"docqa/internal/domain"
)

// QueryCache memoizes retrieval results per (query, top-k) pair so a
// repeated question skips the embedding call and the index scan. Least
// recently used entries are evicted at capacity; every entry expires
// after the TTL, which also bounds how long a hit can outlive a purged
// or rebuilt index.
type QueryCache struct {
	mu      sync.Mutex
	byKey   map[string]*list.Element
	order   *list.List // front is most recently used
	maxSize int
	ttl     time.Duration
}

type entry struct {
	key     string
	chunks  []domain.RetrievedChunk
	expires time.Time
}

func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache{
		byKey:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// cacheKey folds top-k into the key so the same query at a different k
// is a distinct entry. NUL cannot appear in a decimal, so the join is
// unambiguous.
func cacheKey(query string, topK int) string {
	return strconv.Itoa(topK) + "\x00" + query
}

func (c *QueryCache) Get(query string, topK int) ([]domain.RetrievedChunk, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.byKey[cacheKey(query, topK)]
	if !ok {
		return nil, false
	}

	e := el.Value.(*entry)
	if time.Now().After(e.expires) {
		c.order.Remove(el)
		delete(c.byKey, e.key)
		return nil, false
	}

	c.order.MoveToFront(el)
	return e.chunks, true
}

func (c *QueryCache) Put(query string, topK int, chunks []domain.RetrievedChunk) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(query, topK)
	expires := time.Now().Add(c.ttl)

	if el, ok := c.byKey[key]; ok {
		e := el.Value.(*entry)
		e.chunks = chunks
		e.expires = expires
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.byKey, oldest.Value.(*entry).key)
		}
	}

	c.byKey[key] = c.order.PushFront(&entry{key: key, chunks: chunks, expires: expires})
}

func (c *QueryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
