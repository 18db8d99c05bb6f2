package inmemorystore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/specialistvlad/cyclegrid/internal/taskstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutAndSelect(t *testing.T) {
	s := New()
	ctx := context.Background()

	// Nothing stored yet
	rows, err := s.SelectTaskStates(ctx, taskstore.Filter{})
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, s.PutTaskState(ctx, taskstore.Row{Cycle: "1", Name: "foo", Status: "waiting"}))
	require.NoError(t, s.PutTaskState(ctx, taskstore.Row{Cycle: "1", Name: "bar", Status: "waiting"}))

	rows, err = s.SelectTaskStates(ctx, taskstore.Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "foo", rows[0].Name)
	assert.Equal(t, "bar", rows[1].Name)
}

func TestReplaceKeepsOrder(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.PutTaskState(ctx, taskstore.Row{Cycle: "1", Name: "a", Status: "waiting"}))
	require.NoError(t, s.PutTaskState(ctx, taskstore.Row{Cycle: "1", Name: "b", Status: "waiting"}))
	require.NoError(t, s.PutTaskState(ctx, taskstore.Row{Cycle: "1", Name: "a", Status: "held", HoldSwap: "waiting"}))

	rows, err := s.SelectTaskStates(ctx, taskstore.Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].Name)
	assert.Equal(t, "held", rows[0].Status)
	assert.Equal(t, "waiting", rows[0].HoldSwap)
}

func TestSubmitNumIsPartOfKey(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.PutTaskState(ctx, taskstore.Row{Cycle: "2", Name: "a", SubmitNum: 1, Status: "failed"}))
	require.NoError(t, s.PutTaskState(ctx, taskstore.Row{Cycle: "2", Name: "a", SubmitNum: 2, Status: "running"}))

	rows, err := s.SelectTaskStates(ctx, taskstore.Filter{Name: "a"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestFilter(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, r := range []taskstore.Row{
		{Cycle: "1", Name: "a", Status: "succeeded"},
		{Cycle: "1", Name: "b", Status: "failed"},
		{Cycle: "2", Name: "a", Status: "waiting"},
	} {
		require.NoError(t, s.PutTaskState(ctx, r))
	}

	testCases := []struct {
		name   string
		filter taskstore.Filter
		want   []string
	}{
		{"by cycle", taskstore.Filter{Cycle: "1"}, []string{"1/a", "1/b"}},
		{"by name", taskstore.Filter{Name: "a"}, []string{"1/a", "2/a"}},
		{"by status", taskstore.Filter{Statuses: []string{"failed", "waiting"}}, []string{"1/b", "2/a"}},
		{"combined", taskstore.Filter{Cycle: "2", Statuses: []string{"succeeded"}}, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := s.SelectTaskStates(ctx, tc.filter)
			require.NoError(t, err)
			var got []string
			for _, r := range rows {
				got = append(got, r.Cycle+"/"+r.Name)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRejectsIncompleteRows(t *testing.T) {
	s := New()
	err := s.PutTaskState(context.Background(), taskstore.Row{Name: "a"})
	assert.Error(t, err)
}

func TestCancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.PutTaskState(ctx, taskstore.Row{Cycle: "1", Name: "a"}), context.Canceled)
	_, err := s.SelectTaskStates(ctx, taskstore.Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	ctx := context.Background()
	var wg sync.WaitGroup
	numGoroutines := 50

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("task%d", i)
			assert.NoError(t, s.PutTaskState(ctx, taskstore.Row{Cycle: "1", Name: name, Status: "waiting"}))
			assert.NoError(t, s.PutTaskState(ctx, taskstore.Row{Cycle: "1", Name: name, Status: "running"}))
		}(i)
	}
	wg.Wait()

	rows, err := s.SelectTaskStates(ctx, taskstore.Filter{Statuses: []string{"running"}})
	require.NoError(t, err)
	assert.Len(t, rows, numGoroutines)
}
