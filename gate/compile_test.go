package gate

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func mustElement(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func TestCompileRejectsEmptyGate(t *testing.T) {
	_, err := Compile(SourceGate{})
	require.Error(t, err)
}

func TestCompileSimpleAdditionGate(t *testing.T) {
	// q * (a + b - c) = 0
	poly := Mul(Sel(0), Add(Add(Adv(0, 0), Adv(1, 0)), Neg(Adv(2, 0))))
	cg, err := Compile(SourceGate{Polys: []*SourceExpr{poly}})
	require.NoError(t, err)

	require.NotNil(t, cg.SimpleSelector)
	require.Equal(t, 0, *cg.SimpleSelector)
	require.Len(t, cg.Polys, 1)
	require.Equal(t, []ColumnRef{{Column: 0, Rotation: 0}, {Column: 1, Rotation: 0}, {Column: 2, Rotation: 0}}, cg.Query.Advice)
	require.Empty(t, cg.Query.Selectors, "the shared selector is peeled off, not left in the query table")
}

func TestCompileNoSharedSelectorLeavesPolysUnpeeled(t *testing.T) {
	polyA := Mul(Sel(0), Adv(0, 0))
	polyB := Mul(Sel(1), Adv(1, 0))
	cg, err := Compile(SourceGate{Polys: []*SourceExpr{polyA, polyB}})
	require.NoError(t, err)

	require.Nil(t, cg.SimpleSelector)
	require.Equal(t, []int{0, 1}, cg.Query.Selectors)
}

func TestCompileFlattensChallengeProducts(t *testing.T) {
	// c * (c * c) should collapse to a single Challenge(index=0, power=3) leaf.
	poly := Mul(Chal(0), Mul(Chal(0), Chal(0)))
	cg, err := Compile(SourceGate{Polys: []*SourceExpr{poly}})
	require.NoError(t, err)

	require.Len(t, cg.Query.Challenges, 1)
	require.Equal(t, ChallengeRef{Index: 0, Power: 3}, cg.Query.Challenges[0])
	require.Equal(t, 1, cg.Degrees[0], "a challenge leaf is folding degree 1 regardless of its power: "+
		"challenge powers are themselves linearly interpolated along the fold line, not raised to a power of an interpolant")
	require.Len(t, cg.Polys[0].Nodes, 1, "the whole gate reduces to a single challenge leaf")
}

func TestCompileDistinctChallengeIndicesDoNotMerge(t *testing.T) {
	poly := Mul(Chal(0), Chal(1))
	cg, err := Compile(SourceGate{Polys: []*SourceExpr{poly}})
	require.NoError(t, err)

	require.Len(t, cg.Query.Challenges, 2)
	require.Equal(t, ChallengeRef{Index: 0, Power: 1}, cg.Query.Challenges[0])
	require.Equal(t, ChallengeRef{Index: 1, Power: 1}, cg.Query.Challenges[1])
	require.Equal(t, 2, cg.Degrees[0])
}

func TestCompileQueryTablesAreSortedAndDeduplicated(t *testing.T) {
	poly := Add(
		Add(Fix(2, 0), Fix(0, 1)),
		Add(Fix(0, 1), Scale(Adv(3, -1), mustElement(7))),
	)
	cg, err := Compile(SourceGate{Polys: []*SourceExpr{poly}})
	require.NoError(t, err)

	require.Equal(t, []ColumnRef{{Column: 0, Rotation: 1}, {Column: 2, Rotation: 0}}, cg.Query.Fixed,
		"duplicate Fix(0,1) leaves must collapse to a single query table entry")
	require.Equal(t, []ColumnRef{{Column: 3, Rotation: -1}}, cg.Query.Advice)
}

func TestCompileDegreeOfConstantIsZero(t *testing.T) {
	poly := Const(mustElement(5))
	cg, err := Compile(SourceGate{Polys: []*SourceExpr{poly}})
	require.NoError(t, err)
	require.Equal(t, 0, cg.Degrees[0])
}
