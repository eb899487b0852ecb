// Package memview keeps a view in memory. It implements the executor
// contract exactly and is meant for tests, fixtures and small read-mostly
// datasets.
package memview

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/Alp4ka/viewpager"
)

// View is a sorted set of view rows ordered by (key, id).
type View[K, V, T any] struct {
	mu      sync.RWMutex
	compare func(a, b K) int
	rows    []viewpager.Row[K, V, T]
}

// New creates an empty view ordering keys with compare.
func New[K, V, T any](compare func(a, b K) int) *View[K, V, T] {
	return &View[K, V, T]{compare: compare}
}

// NewOrdered creates an empty view over naturally ordered keys.
func NewOrdered[K cmp.Ordered, V, T any]() *View[K, V, T] {
	return New[K, V, T](cmp.Compare[K])
}

// Put inserts rows, replacing rows with the same (key, id).
func (v *View[K, V, T]) Put(rows ...viewpager.Row[K, V, T]) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, row := range rows {
		idx, found := slices.BinarySearchFunc(v.rows, row, v.compareRows)
		if found {
			v.rows[idx] = row
			continue
		}

		v.rows = slices.Insert(v.rows, idx, row)
	}
}

// Delete removes the row with the given (key, id). Returns false if no such
// row exists.
func (v *View[K, V, T]) Delete(key K, id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	idx, found := slices.BinarySearchFunc(v.rows, viewpager.Row[K, V, T]{ID: id, Key: key}, v.compareRows)
	if !found {
		return false
	}

	v.rows = slices.Delete(v.rows, idx, idx+1)

	return true
}

// Len returns the number of rows in the view.
func (v *View[K, V, T]) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return len(v.rows)
}

// QueryView - implements viewpager.ViewExecutor.
func (v *View[K, V, T]) QueryView(ctx context.Context, params viewpager.QueryParams) (*viewpager.ViewQueryResult[K, V, T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	// Scan order copy; the backing slice stays ascending.
	scan := slices.Clone(v.rows)
	if params.Descending {
		slices.Reverse(scan)
	}

	start := 0
	if params.HasStartKey() {
		var key K
		if err := json.Unmarshal(params.StartKey, &key); err != nil {
			return nil, fmt.Errorf("cannot unmarshal start key: %w", err)
		}

		start = v.startIndex(scan, key, params.StartKeyDocID, params.Descending)
	}

	end := len(scan)
	if params.Limit > 0 {
		end = min(end, start+params.Limit)
	}

	return &viewpager.ViewQueryResult[K, V, T]{
		Rows: lo.Map(scan[start:end], func(row viewpager.Row[K, V, T], _ int) viewpager.Row[K, V, T] {
			if !params.IncludeDocs {
				row.Doc = nil
			}

			return row
		}),
		TotalRows: int64(len(scan)),
		Offset:    int64(start),
	}, nil
}

// startIndex returns the position of the first row at or after (key, id) in
// scan order. An empty id matches every row with an equal key.
func (v *View[K, V, T]) startIndex(scan []viewpager.Row[K, V, T], key K, id string, descending bool) int {
	idx, _ := slices.BinarySearchFunc(scan, struct{}{}, func(row viewpager.Row[K, V, T], _ struct{}) int {
		c := v.compare(row.Key, key)
		if c == 0 && id != "" {
			c = cmp.Compare(row.ID, id)
		}
		if descending {
			c = -c
		}
		if c == 0 && id == "" {
			// Land before the first row with an equal key.
			return 1
		}

		return c
	})

	return idx
}

func (v *View[K, V, T]) compareRows(a, b viewpager.Row[K, V, T]) int {
	if c := v.compare(a.Key, b.Key); c != 0 {
		return c
	}

	return cmp.Compare(a.ID, b.ID)
}

var _ viewpager.ViewExecutor[string, any, any] = (*View[string, any, any])(nil)
