// Package cache memoizes full pipeline results by exact prompt text.
//
// The cache is bounded: once the entry limit is reached the least recently
// used entry is evicted. Concurrent requests for the same novel prompt
// coalesce onto a single computation, so at most one analysis per distinct
// prompt text reaches the detectors at a time. Side effects of a computation
// (downstream generation, logging, alerting) are not replayed on a hit; only
// the cached result is returned, and callers decide independently what to
// log or alert.
package cache

import (
	"container/list"
	"context"
	"sync"

	"github.com/modguard/promptgate/internal/models"
	"golang.org/x/sync/singleflight"
)

// ComputeFunc runs the full analysis pipeline for one prompt.
type ComputeFunc func(ctx context.Context, prompt string) models.AnalysisResult

type entry struct {
	prompt string
	result models.AnalysisResult
}

type Cache struct {
	capacity int

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used

	group singleflight.Group
}

func New(capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// GetOrCompute returns the cached result for prompt, or runs compute exactly
// once per distinct prompt across concurrent callers and caches its result.
// Results are immutable after construction, so the cached value is returned
// without copying.
func (c *Cache) GetOrCompute(ctx context.Context, prompt string, compute ComputeFunc) models.AnalysisResult {
	if result, ok := c.get(prompt); ok {
		return result
	}

	value, _, _ := c.group.Do(prompt, func() (any, error) {
		// A racing caller may have stored the result between the miss and
		// the flight starting.
		if result, ok := c.get(prompt); ok {
			return result, nil
		}
		result := compute(ctx, prompt)
		c.put(prompt, result)
		return result, nil
	})

	return value.(models.AnalysisResult)
}

// Len reports the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) get(prompt string) (models.AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[prompt]
	if !ok {
		return models.AnalysisResult{}, false
	}
	c.order.MoveToFront(element)
	return element.Value.(*entry).result, true
}

func (c *Cache) put(prompt string, result models.AnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.entries[prompt]; ok {
		element.Value.(*entry).result = result
		c.order.MoveToFront(element)
		return
	}

	c.entries[prompt] = c.order.PushFront(&entry{prompt: prompt, result: result})

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).prompt)
	}
}
