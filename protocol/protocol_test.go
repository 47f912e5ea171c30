package protocol

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/giuliop/protofold/accumulator"
	"github.com/giuliop/protofold/gate"
	"github.com/giuliop/protofold/keygen"
	"github.com/giuliop/protofold/pk"
	"github.com/giuliop/protofold/transcript"
)

func el(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func repeat(v fr.Element, n int) []fr.Element {
	out := make([]fr.Element, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func allRows(n int, v bool) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// buildMulKey compiles q*(a*b-c)=0 over an 8-row domain with selector
// column 0 true on every row.
func buildMulKey(t *testing.T) *pk.ProvingKey {
	poly := gate.Mul(gate.Sel(0), gate.Add(gate.Mul(gate.Adv(0, 0), gate.Adv(1, 0)), gate.Neg(gate.Adv(2, 0))))
	key, err := keygen.Build([]gate.SourceGate{{Polys: []*gate.SourceExpr{poly}}},
		pk.ConstraintShape{DomainSize: 8},
		keygen.Columns{Selectors: [][]bool{allRows(8, true)}})
	require.NoError(t, err)
	return key
}

// satisfyingMulAccumulator returns a ProverAccumulator whose three advice
// columns hold a=2, b=3, c=6 on every row (so the gate is satisfied
// everywhere) with Error set to the true value (zero).
func satisfyingMulAccumulator() *accumulator.ProverAccumulator {
	return &accumulator.ProverAccumulator{
		Instance:          [][]fr.Element{},
		AdviceColumns:     [][]fr.Element{repeat(el(2), 8), repeat(el(3), 8), repeat(el(6), 8)},
		AdviceCommitments: []bn254.G1Affine{{}, {}, {}},
		Challenges:        [][]fr.Element{},
		Ys:                []fr.Element{el(1)},
		Error:             el(0),
	}
}

func TestFoldTrivialIdentityHasZeroError(t *testing.T) {
	key := buildMulKey(t)
	acc0 := satisfyingMulAccumulator()
	acc1 := acc0.Clone()

	p := NewProver(key)
	tr := transcript.NewProverTranscript(16)
	acc2, err := p.Fold(acc0, acc1, tr)
	require.NoError(t, err)

	var zero fr.Element
	zero.SetZero()
	require.Equal(t, zero, acc2.Error)
}

func TestFoldSameAccumulatorEqualsOriginal(t *testing.T) {
	key := buildMulKey(t)
	acc := satisfyingMulAccumulator()
	clone := acc.Clone()

	p := NewProver(key)
	tr := transcript.NewProverTranscript(16)
	acc2, err := p.Fold(acc, clone, tr)
	require.NoError(t, err)

	require.Equal(t, acc.Instance, acc2.Instance)
	require.Equal(t, acc.AdviceColumns, acc2.AdviceColumns)
	require.Equal(t, acc.AdviceCommitments, acc2.AdviceCommitments)
	require.Equal(t, acc.Challenges, acc2.Challenges)
	require.Equal(t, acc.Ys, acc2.Ys)
	require.Equal(t, acc.Error, acc2.Error)
	require.Equal(t, acc.Beta, acc2.Beta)
}

func TestFoldSelectorGatedOnlyActiveRowContributes(t *testing.T) {
	// s*(a-1)=0, selector true only on row 7.
	poly := gate.Mul(gate.Sel(0), gate.Add(gate.Adv(0, 0), gate.Neg(gate.Const(el(1)))))
	selectors := allRows(8, false)
	selectors[7] = true
	key, err := keygen.Build([]gate.SourceGate{{Polys: []*gate.SourceExpr{poly}}},
		pk.ConstraintShape{DomainSize: 8},
		keygen.Columns{Selectors: [][]bool{selectors}})
	require.NoError(t, err)

	a0 := []fr.Element{el(9), el(9), el(9), el(9), el(9), el(9), el(9), el(1)}
	a1 := []fr.Element{el(3), el(3), el(3), el(3), el(3), el(3), el(3), el(1)}
	acc0 := &accumulator.ProverAccumulator{
		Instance:      [][]fr.Element{},
		AdviceColumns: [][]fr.Element{a0},
		Challenges:    [][]fr.Element{},
		Ys:            []fr.Element{el(1)},
		Error:         el(0),
	}
	acc1 := &accumulator.ProverAccumulator{
		Instance:      [][]fr.Element{},
		AdviceColumns: [][]fr.Element{a1},
		Challenges:    [][]fr.Element{},
		Ys:            []fr.Element{el(1)},
		Error:         el(0),
	}

	p := NewProver(key)
	tr := transcript.NewProverTranscript(16)
	acc2, err := p.Fold(acc0, acc1, tr)
	require.NoError(t, err)

	var zero fr.Element
	zero.SetZero()
	require.Equal(t, zero, acc2.Error, "rows 0-6 disagree on the disabled advice value, but the selector must gate them out")
}

func TestVerifierReplayMatchesProver(t *testing.T) {
	key := buildMulKey(t)
	acc0 := satisfyingMulAccumulator()
	acc1 := acc0.Clone()

	p := NewProver(key)
	tr := transcript.NewProverTranscript(16)
	acc2, err := p.Fold(acc0, acc1, tr)
	require.NoError(t, err)

	vacc0 := &accumulator.VerifierAccumulator{
		Instance:          acc0.Instance,
		AdviceCommitments: acc0.AdviceCommitments,
		Challenges:        acc0.Challenges,
		Ys:                acc0.Ys,
		Error:             acc0.Error,
		Beta:              acc0.Beta,
	}
	vacc1 := &accumulator.VerifierAccumulator{
		Instance:          acc1.Instance,
		AdviceCommitments: acc1.AdviceCommitments,
		Challenges:        acc1.Challenges,
		Ys:                acc1.Ys,
		Error:             acc1.Error,
		Beta:              acc1.Beta,
	}

	v := NewVerifier(key.VerifyingKey())
	vt := transcript.NewVerifierTranscript(tr.Bytes(), 16)
	vacc2, err := v.Fold(vacc0, vacc1, vt)
	require.NoError(t, err)

	require.Equal(t, acc2.Error, vacc2.Error)
	require.Equal(t, acc2.Ys, vacc2.Ys)
	require.Equal(t, acc2.Challenges, vacc2.Challenges)
	require.Equal(t, acc2.AdviceCommitments, vacc2.AdviceCommitments)
	require.Equal(t, acc2.Beta, vacc2.Beta)
}
