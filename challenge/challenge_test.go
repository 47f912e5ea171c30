package challenge

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func el(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func TestTableInterpolatesLinearly(t *testing.T) {
	acc := []fr.Element{el(2), el(10)}
	new := []fr.Element{el(5), el(4)}

	table := Table(acc, new, 4)
	require.Len(t, table, 4)

	require.Equal(t, acc, table[0])
	require.Equal(t, new, table[1])

	// X=2 continues the same linear step: acc + 2*(new-acc)
	var want0, want1, diff0, diff1 fr.Element
	diff0.Sub(&new[0], &acc[0])
	diff1.Sub(&new[1], &acc[1])
	want0.Add(&new[0], &diff0)
	want1.Add(&new[1], &diff1)
	require.Equal(t, want0, table[2][0])
	require.Equal(t, want1, table[2][1])
}

func TestTableEmptyChallengeSet(t *testing.T) {
	table := Table(nil, nil, 3)
	require.Len(t, table, 3)
	for _, row := range table {
		require.Empty(t, row)
	}
}

func TestTableZeroEvals(t *testing.T) {
	table := Table([]fr.Element{el(1)}, []fr.Element{el(2)}, 0)
	require.Empty(t, table)
}
