package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/launchdeck/internal/ir"
)

func TestQuery_SealedInterface(t *testing.T) {
	queries := []Query{Select{}, &Select{}, Aggregate{}, &Aggregate{}}
	for _, q := range queries {
		switch q.(type) {
		case Select, *Select, Aggregate, *Aggregate:
		default:
			t.Fatalf("unexpected query type %T", q)
		}
	}
}

func TestPredicate_SealedInterface(t *testing.T) {
	preds := []Predicate{
		Equals{}, Compare{}, Between{}, In{}, Contains{}, IsNull{},
		And{}, Or{}, Not{}, &Equals{}, &Not{},
	}
	assert.Len(t, preds, 11)
}

func TestParseStat(t *testing.T) {
	for _, st := range Stats() {
		got, err := ParseStat(string(st))
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}

	got, err := ParseStat("")
	require.NoError(t, err)
	assert.Equal(t, StatCount, got)

	_, err = ParseStat("median")
	assert.Error(t, err)
}

func TestStat_NeedsField(t *testing.T) {
	assert.True(t, StatSum.NeedsField())
	assert.True(t, StatAvg.NeedsField())
	assert.True(t, StatMin.NeedsField())
	assert.True(t, StatMax.NeedsField())
	assert.False(t, StatCount.NeedsField())
	assert.False(t, StatSuccessRate.NeedsField())
}

func TestParseSort(t *testing.T) {
	for _, so := range Sorts() {
		got, err := ParseSort(string(so))
		require.NoError(t, err)
		assert.Equal(t, so, got)
	}

	got, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, SortNone, got)

	_, err = ParseSort("random")
	assert.Error(t, err)
}

func TestCompareOp_Holds(t *testing.T) {
	testCases := []struct {
		op       CompareOp
		c        int
		expected bool
	}{
		{OpLT, -1, true}, {OpLT, 0, false}, {OpLT, 1, false},
		{OpLE, -1, true}, {OpLE, 0, true}, {OpLE, 1, false},
		{OpGT, -1, false}, {OpGT, 0, false}, {OpGT, 1, true},
		{OpGE, -1, false}, {OpGE, 0, true}, {OpGE, 1, true},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, tc.op.Holds(tc.c), "%s %d", tc.op, tc.c)
	}
	assert.False(t, CompareOp("eq").Holds(0))
	assert.Equal(t, ">=", OpGE.Symbol())
}

func TestAll(t *testing.T) {
	eq := Equals{Field: "company", Value: ir.IRString("SpaceX")}
	null := IsNull{Field: "price"}

	assert.Nil(t, All())
	assert.Nil(t, All(nil, nil))
	assert.Equal(t, eq, All(nil, eq))
	assert.Equal(t, And{Predicates: []Predicate{eq, null}}, All(eq, nil, null))
}

func TestNegate(t *testing.T) {
	eq := Equals{Field: "company", Value: ir.IRString("SpaceX")}
	assert.Equal(t, Not{Predicate: eq}, Negate(eq))
	assert.Equal(t, Or{}, Negate(nil))
}

func TestFilterOf(t *testing.T) {
	eq := Equals{Field: "company", Value: ir.IRString("SpaceX")}

	assert.Equal(t, eq, FilterOf(Select{Filter: eq}))
	assert.Equal(t, eq, FilterOf(&Select{Filter: eq}))
	assert.Equal(t, eq, FilterOf(Aggregate{Filter: eq}))
	assert.Equal(t, eq, FilterOf(&Aggregate{Filter: eq}))
	assert.Nil(t, FilterOf(nil))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "falcon 9", Fold("FALCON 9"))
	assert.Equal(t, Fold("Française"), Fold("FRANÇAISE"))
	assert.Equal(t, "strasse", Fold("Straße"))
}
