package row

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/giuliop/protofold/accumulator"
	"github.com/giuliop/protofold/gate"
	"github.com/giuliop/protofold/pk"
)

func el(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func simpleMulGate(t *testing.T) *gate.CompiledGate {
	// q * (a*b - c) = 0, selector column 0, advice columns 0,1,2.
	poly := gate.Mul(gate.Sel(0), gate.Add(gate.Mul(gate.Adv(0, 0), gate.Adv(1, 0)), gate.Neg(gate.Adv(2, 0))))
	cg, err := gate.Compile(gate.SourceGate{Polys: []*gate.SourceExpr{poly}})
	require.NoError(t, err)
	return cg
}

func TestEvaluateSkipsWhenSimpleSelectorFalse(t *testing.T) {
	cg := simpleMulGate(t)
	ev := NewEvaluator(cg, 0)

	key := &pk.ProvingKey{
		Selectors: [][]bool{{false, true}},
	}
	acc := &accumulator.ProverAccumulator{
		AdviceColumns: [][]fr.Element{{el(2), el(3)}, {el(4), el(5)}, {el(8), el(20)}},
		Challenges:    [][]fr.Element{},
	}
	new := &accumulator.ProverAccumulator{
		AdviceColumns: [][]fr.Element{{el(2), el(3)}, {el(4), el(5)}, {el(8), el(20)}},
		Challenges:    [][]fr.Element{},
	}
	require.NoError(t, ev.Prepare(acc, new))

	out, ok, err := ev.Evaluate(0, 2, key, acc, new)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, out)
}

func TestEvaluateEndpointsReproduceAccAndNew(t *testing.T) {
	cg := simpleMulGate(t)
	ev := NewEvaluator(cg, 0)

	key := &pk.ProvingKey{
		Selectors: [][]bool{{true}},
	}
	// acc satisfies a*b=c: 2*3=6. new satisfies 4*5=20.
	acc := &accumulator.ProverAccumulator{
		AdviceColumns: [][]fr.Element{{el(2)}, {el(3)}, {el(6)}},
		Challenges:    [][]fr.Element{},
	}
	new := &accumulator.ProverAccumulator{
		AdviceColumns: [][]fr.Element{{el(4)}, {el(5)}, {el(20)}},
		Challenges:    [][]fr.Element{},
	}
	require.NoError(t, ev.Prepare(acc, new))

	out, ok, err := ev.Evaluate(0, 1, key, acc, new)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, out, 1)

	var zero fr.Element
	zero.SetZero()
	require.Equal(t, zero, out[0][0], "row satisfies the constraint against acc at X=0")
	require.Equal(t, zero, out[0][1], "row satisfies the constraint against new at X=1")
}

func TestEvaluateRotation(t *testing.T) {
	// fixed[0] queried at rotation +1 and -1.
	poly := gate.Add(gate.Fix(0, 1), gate.Fix(0, -1))
	cg, err := gate.Compile(gate.SourceGate{Polys: []*gate.SourceExpr{poly}})
	require.NoError(t, err)

	ev := NewEvaluator(cg, 0)
	key := &pk.ProvingKey{
		Fixed: [][]fr.Element{{el(10), el(20), el(30)}},
	}
	acc := &accumulator.ProverAccumulator{Challenges: [][]fr.Element{}}
	new := &accumulator.ProverAccumulator{Challenges: [][]fr.Element{}}
	require.NoError(t, ev.Prepare(acc, new))

	// row 0: rotation +1 -> row 1 (20), rotation -1 -> row N-1 = row 2 (30).
	out, ok, err := ev.Evaluate(0, 3, key, acc, new)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, el(50), out[0][0])
}

func TestEvaluateDegreeBoundNumEvals(t *testing.T) {
	// degree-2 gate: a*b (advice * advice), kExtra=1 -> numEvals = 2+1+1 = 4.
	poly := gate.Mul(gate.Adv(0, 0), gate.Adv(1, 0))
	cg, err := gate.Compile(gate.SourceGate{Polys: []*gate.SourceExpr{poly}})
	require.NoError(t, err)

	ev := NewEvaluator(cg, 1)
	key := &pk.ProvingKey{}
	acc := &accumulator.ProverAccumulator{
		AdviceColumns: [][]fr.Element{{el(1)}, {el(2)}},
		Challenges:    [][]fr.Element{},
	}
	new := &accumulator.ProverAccumulator{
		AdviceColumns: [][]fr.Element{{el(3)}, {el(4)}},
		Challenges:    [][]fr.Element{},
	}
	require.NoError(t, ev.Prepare(acc, new))

	out, ok, err := ev.Evaluate(0, 1, key, acc, new)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, out[0], 4)
}
