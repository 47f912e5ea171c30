// Package accumulator implements the relaxed-instance data model the
// folding protocol folds: the prover's view carries committed polynomials,
// the verifier's view carries only their commitments.
package accumulator

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// BetaState holds the beta challenge, its commitment, and the accumulated
// beta-error commitment. Shared shape between prover and verifier views
// because beta is itself only ever known as a scalar plus commitments.
type BetaState struct {
	Beta           fr.Element
	BetaCommitment bn254.G1Affine
	BetaError      bn254.G1Affine
}

// Clone returns a deep copy of s. BetaState has no slice fields, so a
// value copy already suffices; Clone exists for symmetry with the other
// accumulator types and to make call sites' intent explicit.
func (s BetaState) Clone() BetaState {
	return s
}

// ProverLookupAccumulator mirrors one lookup argument's folding state with
// concrete polynomials, alongside the commitments to them.
type ProverLookupAccumulator struct {
	M           []fr.Element
	MCommitment bn254.G1Affine
	R           fr.Element
	Thetas      []fr.Element
	G           []fr.Element
	GCommitment bn254.G1Affine
	H           []fr.Element
	HCommitment bn254.G1Affine
}

// Clone returns a deep copy of l.
func (l ProverLookupAccumulator) Clone() ProverLookupAccumulator {
	out := l
	out.M = append([]fr.Element(nil), l.M...)
	out.Thetas = append([]fr.Element(nil), l.Thetas...)
	out.G = append([]fr.Element(nil), l.G...)
	out.H = append([]fr.Element(nil), l.H...)
	return out
}

// VerifierLookupAccumulator is the same shape, with commitments in place of
// the polynomials they commit to.
type VerifierLookupAccumulator struct {
	MCommitment bn254.G1Affine
	R           fr.Element
	Thetas      []fr.Element
	GCommitment bn254.G1Affine
	HCommitment bn254.G1Affine
}

// Clone returns a deep copy of l.
func (l VerifierLookupAccumulator) Clone() VerifierLookupAccumulator {
	out := l
	out.Thetas = append([]fr.Element(nil), l.Thetas...)
	return out
}

// ProverAccumulator is the prover's view of a relaxed instance: concrete
// instance values, advice polynomials plus their commitments, flattened
// challenge powers, lookup state, the beta state, the constraint
// random-linear-combination coefficients, and the running error scalar.
type ProverAccumulator struct {
	// Instance[col][row] holds the public instance values.
	Instance [][]fr.Element
	// AdviceColumns[col][row] holds the witness advice polynomials in
	// evaluation form, one per advice column, with a parallel commitment.
	AdviceColumns     [][]fr.Element
	AdviceCommitments []bn254.G1Affine
	// Challenges[idx][power-1] holds challenge idx raised to power.
	Challenges [][]fr.Element
	Lookups    []ProverLookupAccumulator
	Beta       BetaState
	Ys         []fr.Element
	Error      fr.Element
}

// Clone returns a deep, independent copy of a.
func (a *ProverAccumulator) Clone() *ProverAccumulator {
	out := &ProverAccumulator{
		Beta:  a.Beta.Clone(),
		Error: a.Error,
	}
	out.Instance = cloneMatrix(a.Instance)
	out.AdviceColumns = cloneMatrix(a.AdviceColumns)
	out.AdviceCommitments = append([]bn254.G1Affine(nil), a.AdviceCommitments...)
	out.Challenges = cloneMatrix(a.Challenges)
	out.Ys = append([]fr.Element(nil), a.Ys...)
	out.Lookups = make([]ProverLookupAccumulator, len(a.Lookups))
	for i, l := range a.Lookups {
		out.Lookups[i] = l.Clone()
	}
	return out
}

// VerifierAccumulator is the verifier's view of a relaxed instance: the
// same shape as ProverAccumulator, but commitments stand in for advice and
// lookup polynomials. Instance values remain concrete because they are
// public.
type VerifierAccumulator struct {
	Instance          [][]fr.Element
	AdviceCommitments []bn254.G1Affine
	Challenges        [][]fr.Element
	Lookups           []VerifierLookupAccumulator
	Beta              BetaState
	Ys                []fr.Element
	Error             fr.Element
}

// Clone returns a deep, independent copy of a.
func (a *VerifierAccumulator) Clone() *VerifierAccumulator {
	out := &VerifierAccumulator{
		Beta:  a.Beta.Clone(),
		Error: a.Error,
	}
	out.Instance = cloneMatrix(a.Instance)
	out.AdviceCommitments = append([]bn254.G1Affine(nil), a.AdviceCommitments...)
	out.Challenges = cloneMatrix(a.Challenges)
	out.Ys = append([]fr.Element(nil), a.Ys...)
	out.Lookups = make([]VerifierLookupAccumulator, len(a.Lookups))
	for i, l := range a.Lookups {
		out.Lookups[i] = l.Clone()
	}
	return out
}

func cloneMatrix(m [][]fr.Element) [][]fr.Element {
	if m == nil {
		return nil
	}
	out := make([][]fr.Element, len(m))
	for i, row := range m {
		out[i] = append([]fr.Element(nil), row...)
	}
	return out
}
