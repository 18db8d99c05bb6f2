package loader

import (
	"testing"

	"github.com/specialistvlad/cyclegrid/internal/cycling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		mode string
		want cycling.Mode
	}{
		{"", cycling.ModeInteger},
		{"integer", cycling.ModeInteger},
		{"gregorian", cycling.ModeGregorian},
		{"ISO8601", cycling.ModeGregorian},
		{"datetime", cycling.ModeGregorian},
	}
	for _, tc := range testCases {
		t.Run(tc.mode, func(t *testing.T) {
			sys, err := New(tc.mode)
			require.NoError(t, err)
			assert.Equal(t, tc.want, sys.Mode())
		})
	}

	_, err := New("lunar")
	assert.ErrorContains(t, err, "unknown cycling mode")
}

func TestCachedSystem(t *testing.T) {
	sys, err := New("integer", WithCacheSize(2))
	require.NoError(t, err)
	cs, ok := sys.(*cachedSystem)
	require.True(t, ok)

	p, err := sys.ParsePoint("5")
	require.NoError(t, err)
	assert.Equal(t, "5", p.String())
	assert.Equal(t, 1, cs.points.Len())

	_, err = sys.ParsePoint("five")
	assert.Error(t, err)
	assert.Equal(t, 1, cs.points.Len(), "failures are not cached")

	rel, err := sys.RelativePoint("+P2", p)
	require.NoError(t, err)
	assert.Equal(t, "7", rel.String())

	seq, err := sys.NewSequence("P2", p, nil)
	require.NoError(t, err)
	assert.Equal(t, "9", seq.NextPoint(rel).String())
}

func TestCacheDisabled(t *testing.T) {
	sys, err := New("gregorian", WithCacheSize(0))
	require.NoError(t, err)
	_, cached := sys.(*cachedSystem)
	assert.False(t, cached)
}
