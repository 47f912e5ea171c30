package accumulator

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func el(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func TestLerpScalarExtremes(t *testing.T) {
	x0, x1 := el(3), el(11)

	var zero, one fr.Element
	zero.SetZero()
	one.SetOne()

	require.Equal(t, x0, LerpScalar(x0, x1, zero))
	require.Equal(t, x1, LerpScalar(x0, x1, one))
}

func TestLerpPointExtremes(t *testing.T) {
	_, _, g1, _ := bn254.Generators()
	var p1 bn254.G1Affine
	p1.ScalarMultiplication(&g1, big.NewInt(2))

	var zero, one fr.Element
	zero.SetZero()
	one.SetOne()

	require.True(t, LerpPoint(g1, p1, zero).Equal(&g1))
	require.True(t, LerpPoint(g1, p1, one).Equal(&p1))
}

func TestCloneProverAccumulatorIsIndependent(t *testing.T) {
	a := &ProverAccumulator{
		Instance:   [][]fr.Element{{el(1), el(2)}},
		Challenges: [][]fr.Element{{el(5)}},
		Ys:         []fr.Element{el(1), el(1)},
		Error:      el(0),
	}
	b := a.Clone()
	b.Instance[0][0] = el(99)
	require.Equal(t, el(1), a.Instance[0][0], "mutating the clone must not affect the original")
}
