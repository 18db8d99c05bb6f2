package taskstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterMatch(t *testing.T) {
	row := Row{Cycle: "3", Name: "foo", SubmitNum: 1, Status: "running"}
	assert.True(t, Filter{}.Match(row))
	assert.True(t, Filter{Cycle: "3", Name: "foo"}.Match(row))
	assert.False(t, Filter{Cycle: "4"}.Match(row))
	assert.False(t, Filter{Name: "bar"}.Match(row))
	assert.True(t, Filter{Statuses: []string{"waiting", "running"}}.Match(row))
	assert.False(t, Filter{Statuses: []string{"waiting"}}.Match(row))
	assert.Equal(t, Key{Cycle: "3", Name: "foo", SubmitNum: 1}, row.Key())
}
