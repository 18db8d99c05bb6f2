package inmemorystore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/cyclegrid/internal/taskstore"
)

// Store is an in-memory implementation of taskstore.Store.
type Store struct {
	rows sync.Map // map[taskstore.Key]entry
	seq  atomic.Uint64
}

type entry struct {
	row taskstore.Row
	seq uint64
}

// New creates a new, empty in-memory task store.
func New() taskstore.Store {
	return &Store{}
}

// PutTaskState inserts or replaces a row, keeping the original write order.
func (s *Store) PutTaskState(ctx context.Context, row taskstore.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if row.Name == "" || row.Cycle == "" {
		return fmt.Errorf("task state row needs a name and a cycle point, got %q/%q", row.Cycle, row.Name)
	}
	key := row.Key()
	for {
		prev, loaded := s.rows.LoadOrStore(key, entry{row: row, seq: s.seq.Add(1)})
		if !loaded {
			return nil
		}
		old := prev.(entry)
		if s.rows.CompareAndSwap(key, old, entry{row: row, seq: old.seq}) {
			return nil
		}
	}
}

// SelectTaskStates returns matching rows in first-write order.
func (s *Store) SelectTaskStates(ctx context.Context, filter taskstore.Filter) ([]taskstore.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var found []entry
	s.rows.Range(func(_, value any) bool {
		e := value.(entry)
		if filter.Match(e.row) {
			found = append(found, e)
		}
		return true
	})
	sort.Slice(found, func(i, j int) bool { return found[i].seq < found[j].seq })
	out := make([]taskstore.Row, len(found))
	for i, e := range found {
		out[i] = e.row
	}
	return out, nil
}
