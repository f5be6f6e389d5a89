package queue

import (
	"sync"

	"github.com/contre95/downsort/src/features/organizing"
)

// InMemoryReviewList is an in-memory implementation of organizing.ReviewList
type InMemoryReviewList struct {
	mu    sync.Mutex // serializes Add so Attempts counts every failure
	items sync.Map   // map[string]organizing.ReviewItem
}

// NewInMemoryReviewList creates a new in-memory review list
func NewInMemoryReviewList() *InMemoryReviewList {
	return &InMemoryReviewList{}
}

// Add records a failed move, replacing any earlier entry for the same path
func (q *InMemoryReviewList) Add(item organizing.ReviewItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	item.Attempts = 1
	if value, ok := q.items.Load(item.Path); ok {
		if prev, ok := value.(organizing.ReviewItem); ok {
			item.Attempts = prev.Attempts + 1
		}
	}
	q.items.Store(item.Path, item)
	return nil
}

// Get returns the entry for path, if any
func (q *InMemoryReviewList) Get(path string) (organizing.ReviewItem, bool) {
	value, ok := q.items.Load(path)
	if !ok {
		return organizing.ReviewItem{}, false
	}
	item, ok := value.(organizing.ReviewItem)
	return item, ok
}

// GetAll returns all items in the list
func (q *InMemoryReviewList) GetAll() map[string]organizing.ReviewItem {
	items := make(map[string]organizing.ReviewItem)
	q.items.Range(func(key, value any) bool {
		if item, ok := value.(organizing.ReviewItem); ok {
			if keyStr, ok := key.(string); ok {
				items[keyStr] = item
			}
		}
		return true
	})
	return items
}

// Remove drops a path from the list
func (q *InMemoryReviewList) Remove(path string) error {
	if _, loaded := q.items.LoadAndDelete(path); !loaded {
		return organizing.ErrNotInReview
	}
	return nil
}

// Clear removes all items from the list
func (q *InMemoryReviewList) Clear() error {
	q.items.Clear()
	return nil
}
