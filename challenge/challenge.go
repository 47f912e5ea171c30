// Package challenge implements ChallengePowerInterpolator: it produces the
// table of already-exponentiated challenge values at every evaluation point
// along a fold line, without ever re-exponentiating the interpolant.
package challenge

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// Table returns, for each evaluation point X in 0..numEvals-1, the vector of
// queried challenge powers at that point. acc and new hold the same
// challenge powers at X=0 and X=1 respectively; row X>=1 is obtained by
// adding the X=1..X=0 difference onto row X-1, so every row is a genuine
// linear interpolation of already-exponentiated values, not a power applied
// to an interpolated base.
func Table(acc, new []fr.Element, numEvals int) [][]fr.Element {
	diff := make([]fr.Element, len(acc))
	for i := range acc {
		diff[i].Sub(&new[i], &acc[i])
	}

	evals := make([][]fr.Element, numEvals)
	if numEvals == 0 {
		return evals
	}

	row0 := make([]fr.Element, len(acc))
	copy(row0, acc)
	evals[0] = row0

	for x := 1; x < numEvals; x++ {
		prev := evals[x-1]
		row := make([]fr.Element, len(acc))
		for i := range row {
			row[i].Add(&prev[i], &diff[i])
		}
		evals[x] = row
	}
	return evals
}
