package accumulator

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ScalePoint returns s*p in the group.
func ScalePoint(p bn254.G1Affine, s fr.Element) bn254.G1Affine {
	var sInt big.Int
	s.BigInt(&sInt)
	var out bn254.G1Affine
	out.ScalarMultiplication(&p, &sInt)
	return out
}

// AddPoints returns a+b in the group.
func AddPoints(a, b bn254.G1Affine) bn254.G1Affine {
	var aJac, bJac bn254.G1Jac
	aJac.FromAffine(&a)
	bJac.FromAffine(&b)
	aJac.AddAssign(&bJac)
	var out bn254.G1Affine
	out.FromJacobian(&aJac)
	return out
}

// SubPoints returns a-b in the group.
func SubPoints(a, b bn254.G1Affine) bn254.G1Affine {
	var aJac, bJac bn254.G1Jac
	aJac.FromAffine(&a)
	bJac.FromAffine(&b)
	aJac.SubAssign(&bJac)
	var out bn254.G1Affine
	out.FromJacobian(&aJac)
	return out
}
