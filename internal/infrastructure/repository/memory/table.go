package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/golf-ingest/internal/domain/storage"
)

type keyed interface {
	Key() string
}

// table keeps rows by conflict key. Ignore tables keep the first write;
// merge tables replace the stored row.
type table[T keyed] struct {
	mu         sync.RWMutex
	resolution storage.Resolution
	rows       map[string]T
	order      []string
}

func newTable[T keyed](resolution storage.Resolution) *table[T] {
	return &table[T]{resolution: resolution, rows: make(map[string]T)}
}

func (t *table[T]) upsert(ctx context.Context, items []T) (storage.Result, error) {
	if err := ctx.Err(); err != nil {
		return storage.Result{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var out storage.Result
	for _, item := range items {
		key := item.Key()
		if _, ok := t.rows[key]; ok {
			if t.resolution == storage.MergeDuplicates {
				t.rows[key] = item
				out.Written++
				continue
			}
			out.Duplicates++
			continue
		}
		t.rows[key] = item
		t.order = append(t.order, key)
		out.Written++
	}
	return out, nil
}

func (t *table[T]) list() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.rows[key])
	}
	return out
}

func (t *table[T]) get(key string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	item, ok := t.rows[key]
	return item, ok
}

func (t *table[T]) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}
