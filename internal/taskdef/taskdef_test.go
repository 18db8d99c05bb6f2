package taskdef

import (
	"testing"

	"github.com/specialistvlad/cyclegrid/internal/cycling"
	"github.com/specialistvlad/cyclegrid/internal/cycling/integer"
	"github.com/specialistvlad/cyclegrid/internal/prerequisite"
	"github.com/specialistvlad/cyclegrid/internal/taskstate"
	"github.com/specialistvlad/cyclegrid/internal/trigger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(t *testing.T, expr string, start, stop int64) cycling.Sequence {
	t.Helper()
	seq, err := integer.New().NewSequence(expr, integer.Point(start), integer.Point(stop))
	require.NoError(t, err)
	return seq
}

func dependency(t *testing.T, expr string, suicide bool) Dependency {
	t.Helper()
	e, err := trigger.ParseExpr(expr)
	require.NoError(t, err)
	return NewDependency(e, suicide)
}

func TestTaskTriggerPoint(t *testing.T) {
	sys := integer.New()
	initial, final := integer.Point(1), integer.Point(10)
	testCases := []struct {
		offset string
		want   int64
	}{
		{"", 5},
		{"-P1", 4},
		{"+P2", 7},
		{"^", 1},
		{"^+P1", 2},
		{"$", 10},
		{"$-P1", 9},
		{"3", 3},
	}
	for _, tc := range testCases {
		t.Run(tc.offset, func(t *testing.T) {
			tt := TaskTrigger{Task: "a", Offset: tc.offset, Output: "succeeded"}
			got, err := tt.Point(integer.Point(5), sys, initial, final)
			require.NoError(t, err)
			assert.Equal(t, integer.Point(tc.want), got)
		})
	}

	_, err := TaskTrigger{Task: "a", Offset: "$"}.Point(integer.Point(5), sys, initial, nil)
	assert.Error(t, err)

	assert.True(t, TaskTrigger{Offset: "^"}.IsAbsolute())
	assert.False(t, TaskTrigger{Offset: "-P1"}.IsAbsolute())
	assert.Equal(t, "a[-P1]:failed", TaskTrigger{Task: "a", Offset: "-P1", Output: "failed"}.String())
}

func TestNewDependencyDeduplicatesConditions(t *testing.T) {
	d := dependency(t, "a:succeed | (a:succeed & b:fail)", false)
	assert.Equal(t, []TaskTrigger{
		{Task: "a", Output: "succeeded"},
		{Task: "b", Output: "failed"},
	}, d.Triggers)
}

func TestPrerequisitesAtStart(t *testing.T) {
	sys := integer.New()
	def := New("foo", sys, integer.Point(1), integer.Point(5))
	seq := sequence(t, "P1", 1, 5)
	def.AddDependency(dependency(t, "foo[-P1] & bar", false), seq)

	prereqs, suicides, err := def.Prerequisites(integer.Point(1))
	require.NoError(t, err)
	require.Len(t, prereqs, 1)
	assert.Empty(t, suicides)

	p := prereqs[0]
	st, ok := p.StateOf(prerequisite.Key{Task: "foo", Point: "0", Output: "succeeded"})
	require.True(t, ok)
	assert.Equal(t, prerequisite.PreInitial, st)
	assert.False(t, p.IsSatisfied())

	p.SatisfyMe(map[prerequisite.Key]struct{}{{Task: "bar", Point: "1", Output: "succeeded"}: {}})
	assert.True(t, p.IsSatisfied())

	later, _, err := def.Prerequisites(integer.Point(2))
	require.NoError(t, err)
	st, _ = later[0].StateOf(prerequisite.Key{Task: "foo", Point: "1", Output: "succeeded"})
	assert.Equal(t, prerequisite.Unsatisfied, st)
}

func TestDependenciesOnlyApplyOnTheirSequence(t *testing.T) {
	def := New("foo", integer.New(), integer.Point(1), integer.Point(9))
	def.AddDependency(dependency(t, "prep", false), sequence(t, "R1", 1, 9))
	def.AddSequence(sequence(t, "P1", 1, 9))

	first, _, err := def.Prerequisites(integer.Point(1))
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, _, err := def.Prerequisites(integer.Point(2))
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestSequentialPrerequisite(t *testing.T) {
	def := New("foo", integer.New(), integer.Point(1), integer.Point(9))
	def.Sequential = true
	def.AddSequence(sequence(t, "P2", 1, 9))

	prereqs, _, err := def.Prerequisites(integer.Point(5))
	require.NoError(t, err)
	require.Len(t, prereqs, 1)
	assert.Equal(t, []prerequisite.Key{{Task: "foo", Point: "3", Output: "succeeded"}}, prereqs[0].Keys())

	first, _, err := def.Prerequisites(integer.Point(1))
	require.NoError(t, err)
	assert.Empty(t, first, "the first instance has nothing before it")
}

func TestPointsAcrossSequences(t *testing.T) {
	def := New("foo", integer.New(), integer.Point(1), integer.Point(20))
	def.AddSequence(sequence(t, "R1", 1, 20))
	def.AddSequence(sequence(t, "2/P3", 1, 20))
	def.AddSequence(sequence(t, "2/P3", 1, 20))
	assert.Len(t, def.Sequences, 2)

	assert.Equal(t, integer.Point(1), def.FirstPoint(nil))
	assert.Equal(t, integer.Point(2), def.NextPoint(integer.Point(1)))
	assert.Equal(t, integer.Point(5), def.NextPoint(integer.Point(2)))
	assert.Equal(t, integer.Point(5), def.NextPoint(integer.Point(3)))
	assert.Equal(t, integer.Point(2), def.NearestPrevPoint(integer.Point(4)))
	assert.True(t, def.IsValidPoint(integer.Point(8)))
	assert.False(t, def.IsValidPoint(integer.Point(3)))
}

func TestNewState(t *testing.T) {
	def := New("foo", integer.New(), integer.Point(1), integer.Point(5))
	seq := sequence(t, "P1", 1, 5)
	def.AddDependency(dependency(t, "a", false), seq)
	def.AddDependency(dependency(t, "b:fail", true), seq)
	def.Outputs["out1"] = "file ready"
	def.ExternalTriggers = []string{"go-$CYLC_TASK_CYCLE_POINT"}
	def.AddXTrigger("clock")
	def.AddXTrigger("clock")

	s, err := def.NewState(integer.Point(3), taskstate.Waiting, nil)
	require.NoError(t, err)
	assert.Equal(t, "foo.3", s.ID().String())
	assert.Len(t, s.Prerequisites(), 1)
	assert.Len(t, s.SuicidePrerequisites(), 1)
	assert.True(t, s.Outputs().Exists("out1"))
	assert.Equal(t, []string{"go-3"}, s.ExternalTriggers())
	assert.Equal(t, []string{"clock"}, s.XTriggers())
}
