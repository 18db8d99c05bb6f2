package prerequisite

import (
	"testing"

	"github.com/specialistvlad/cyclegrid/internal/cycling/integer"
	"github.com/specialistvlad/cyclegrid/internal/trigger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func set(keys ...Key) map[Key]struct{} {
	out := map[Key]struct{}{}
	for _, k := range keys {
		out[k] = struct{}{}
	}
	return out
}

func TestAllConditionsRequiredByDefault(t *testing.T) {
	p := New(integer.Point(2))
	a := p.Add("a", integer.Point(2), "succeeded", false)
	b := p.Add("b", integer.Point(1), "succeeded", false)
	assert.False(t, p.IsSatisfied())

	changed := p.SatisfyMe(set(a))
	assert.Equal(t, []Key{a}, changed)
	assert.False(t, p.IsSatisfied())

	assert.Empty(t, p.SatisfyMe(set(a)), "already satisfied conditions do not change")

	p.SatisfyMe(set(b))
	assert.True(t, p.IsSatisfied())
	assert.Equal(t, []Key{a, b}, p.Resolved())
}

func TestConditionalExpression(t *testing.T) {
	expr, err := trigger.ParseExpr("a:succeed | b:fail")
	require.NoError(t, err)

	p := New(integer.Point(1))
	a := p.Add("a", integer.Point(1), "succeeded", false)
	b := p.Add("b", integer.Point(1), "failed", false)
	p.SetCondition(expr, map[trigger.Condition]Key{
		{Task: "a", Qualifier: "succeed"}: a,
		{Task: "b", Qualifier: "fail"}:    b,
	})

	assert.False(t, p.IsSatisfied())
	p.SatisfyMe(set(b))
	assert.True(t, p.IsSatisfied())
}

func TestPreInitialConditionsArePruned(t *testing.T) {
	expr, err := trigger.ParseExpr("a[-P1]:succeed & b:succeed")
	require.NoError(t, err)

	p := New(integer.Point(1))
	a := p.Add("a", integer.Point(0), "succeeded", true)
	b := p.Add("b", integer.Point(1), "succeeded", false)
	p.SetCondition(expr, map[trigger.Condition]Key{
		{Task: "a", Offset: "-P1", Qualifier: "succeed"}: a,
		{Task: "b", Qualifier: "succeed"}:                b,
	})
	assert.False(t, p.IsSatisfied())
	p.SatisfyMe(set(b))
	assert.True(t, p.IsSatisfied())

	only := New(integer.Point(1))
	only.Add("a", integer.Point(0), "succeeded", true)
	assert.True(t, only.IsSatisfied(), "a prerequisite of only pre-initial conditions is satisfied")
}

func TestPreInitialDroppedFromOr(t *testing.T) {
	expr, err := trigger.ParseExpr("a[-P1]:succeed | b:succeed")
	require.NoError(t, err)

	p := New(integer.Point(1))
	a := p.Add("a", integer.Point(0), "succeeded", true)
	b := p.Add("b", integer.Point(1), "succeeded", false)
	p.SetCondition(expr, map[trigger.Condition]Key{
		{Task: "a", Offset: "-P1", Qualifier: "succeed"}: a,
		{Task: "b", Qualifier: "succeed"}:                b,
	})
	assert.False(t, p.IsSatisfied(), "the remaining branch still has to be met")
}

func TestForceAndReset(t *testing.T) {
	p := New(integer.Point(3))
	a := p.Add("a", integer.Point(3), "succeeded", false)
	pre := p.Add("x", integer.Point(0), "succeeded", true)

	p.SetSatisfied()
	assert.True(t, p.IsSatisfied())
	st, _ := p.StateOf(a)
	assert.Equal(t, ForceSatisfied, st)

	p.SetNotSatisfied()
	assert.False(t, p.IsSatisfied())
	st, _ = p.StateOf(pre)
	assert.Equal(t, PreInitial, st)
}

func TestTargetPointsAndDump(t *testing.T) {
	p := New(integer.Point(5))
	p.Add("b", integer.Point(5), "succeeded", false)
	p.Add("a", integer.Point(4), "succeeded", false)
	p.Add("c", integer.Point(4), "failed", false)

	pts := p.TargetPoints()
	require.Len(t, pts, 2)
	assert.Equal(t, "4", pts[0].String())
	assert.Equal(t, "5", pts[1].String())

	dump := p.Dump()
	require.Len(t, dump, 3)
	assert.Equal(t, "4/a succeeded", dump[0].Key.String())
	assert.Equal(t, Unsatisfied, dump[0].State)
}
