package keygen

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/giuliop/protofold/gate"
	"github.com/giuliop/protofold/pk"
)

func TestBuildComputesMaxChallengePower(t *testing.T) {
	// gate A references challenge 0 at power 2, gate B at power 3.
	gateA := gate.SourceGate{Polys: []*gate.SourceExpr{gate.Mul(gate.Chal(0), gate.Chal(0))}}
	gateB := gate.SourceGate{Polys: []*gate.SourceExpr{gate.Mul(gate.Chal(0), gate.Mul(gate.Chal(0), gate.Chal(0)))}}

	shape := pk.ConstraintShape{NumChallenges: 1}
	key, err := Build([]gate.SourceGate{gateA, gateB}, shape, Columns{
		Selectors: [][]bool{{true}},
		Fixed:     [][]fr.Element{},
	})
	require.NoError(t, err)
	require.Equal(t, []int{3}, key.Shape.MaxChallengePower)
	require.Len(t, key.Gates, 2)
}

func TestBuildRejectsEmptyGateList(t *testing.T) {
	_, err := Build(nil, pk.ConstraintShape{}, Columns{})
	require.Error(t, err)
}

func TestBuildRejectsChallengeOutOfShape(t *testing.T) {
	g := gate.SourceGate{Polys: []*gate.SourceExpr{gate.Chal(5)}}
	_, err := Build([]gate.SourceGate{g}, pk.ConstraintShape{NumChallenges: 1}, Columns{})
	require.Error(t, err)
}

func TestProvingKeyVerifyingKeyProjection(t *testing.T) {
	g := gate.SourceGate{Polys: []*gate.SourceExpr{gate.Mul(gate.Sel(0), gate.Adv(0, 0))}}
	key, err := Build([]gate.SourceGate{g}, pk.ConstraintShape{}, Columns{
		Selectors: [][]bool{{true}},
	})
	require.NoError(t, err)

	vk := key.VerifyingKey()
	require.Equal(t, key.Gates, vk.Gates)
	require.Equal(t, key.MaxFoldingConstraintsDegree(), vk.MaxFoldingConstraintsDegree())
}
