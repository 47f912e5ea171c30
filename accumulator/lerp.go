package accumulator

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// LerpScalar computes x0 + alpha*(x1-x0), the field-element interpolation
// every accumulator scalar field folds with.
func LerpScalar(x0, x1, alpha fr.Element) fr.Element {
	var diff, out fr.Element
	diff.Sub(&x1, &x0)
	out.Mul(&diff, &alpha)
	out.Add(&out, &x0)
	return out
}

// LerpScalars applies LerpScalar element-wise; a and b must have equal
// length.
func LerpScalars(a, b []fr.Element, alpha fr.Element) []fr.Element {
	out := make([]fr.Element, len(a))
	for i := range a {
		out[i] = LerpScalar(a[i], b[i], alpha)
	}
	return out
}

// LerpMatrix applies LerpScalars row-wise; a and b must have equal shape.
func LerpMatrix(a, b [][]fr.Element, alpha fr.Element) [][]fr.Element {
	out := make([][]fr.Element, len(a))
	for i := range a {
		out[i] = LerpScalars(a[i], b[i], alpha)
	}
	return out
}

// LerpPoint computes p0 + alpha*(p1-p0) in the group, the commitment
// analogue of LerpScalar.
func LerpPoint(p0, p1 bn254.G1Affine, alpha fr.Element) bn254.G1Affine {
	var p0Jac, p1Jac, diff bn254.G1Jac
	p0Jac.FromAffine(&p0)
	p1Jac.FromAffine(&p1)
	diff.Set(&p1Jac).SubAssign(&p0Jac)

	var alphaInt big.Int
	alpha.BigInt(&alphaInt)
	diff.ScalarMultiplication(&diff, &alphaInt)
	diff.AddAssign(&p0Jac)

	var out bn254.G1Affine
	out.FromJacobian(&diff)
	return out
}

// LerpPoints applies LerpPoint element-wise; a and b must have equal
// length.
func LerpPoints(a, b []bn254.G1Affine, alpha fr.Element) []bn254.G1Affine {
	out := make([]bn254.G1Affine, len(a))
	for i := range a {
		out[i] = LerpPoint(a[i], b[i], alpha)
	}
	return out
}
