// Package pk defines the proving/verifying key shapes the folding core
// consumes: compiled gates, column shapes, and lookup descriptors. Circuit
// synthesis, floor planning and lookup-argument construction are external
// collaborators; this package only holds their output in the form the
// folding core needs to read it back.
package pk

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/giuliop/protofold/gate"
)

// LookupShape describes one lookup argument's contribution to folding: how
// many input expressions it has (hence how many `theta` challenges it
// squeezes) and the folding degree of its constraint, both fixed at key-generation
// time by the lookup-argument builder.
type LookupShape struct {
	InputExpressionsLen int
	Degree              int
}

// ConstraintShape is the column/phase/challenge geometry shared by the
// proving key and the verifying key. It is everything `new_from_prover`
// style construction needs that is not a concrete fixed-column value.
type ConstraintShape struct {
	NumInstanceColumns int
	NumAdviceColumns   int
	NumChallenges      int

	// Phases lists the distinct synthesis phases in ascending order.
	Phases []int
	// AdviceColumnPhase[col] is the phase advice column col is assigned in.
	AdviceColumnPhase []int
	// ChallengePhase[idx] is the phase challenge idx is squeezed in.
	ChallengePhase []int

	// MaxChallengePower[idx] is the highest power any compiled gate queries
	// challenge idx at. Accumulators size their per-challenge power vector
	// to this length so `challenges[idx][power-1]` is always in bounds.
	MaxChallengePower []int

	Lookups []LookupShape

	DomainSize      int
	BlindingFactors int
}

// MaxFoldingConstraintsDegree returns D-1 in the notation of the folding
// protocol: the maximum folding degree over every gate constraint and every
// lookup constraint.
func (s ConstraintShape) MaxFoldingConstraintsDegree(gateDegrees [][]int) int {
	max := 0
	for _, degrees := range gateDegrees {
		for _, d := range degrees {
			if d > max {
				max = d
			}
		}
	}
	for _, l := range s.Lookups {
		if l.Degree > max {
			max = l.Degree
		}
	}
	return max
}

// NumFoldingConstraints returns the total count of gate constraints plus
// lookup constraints: the length of the accumulator's `ys` sequence.
func (s ConstraintShape) NumFoldingConstraints(gateDegrees [][]int) int {
	n := 0
	for _, degrees := range gateDegrees {
		n += len(degrees)
	}
	n += len(s.Lookups)
	return n
}

// ProvingKey is the prover's view: compiled gates, concrete selector and
// fixed-column values indexed [column][row], and the shared shape.
type ProvingKey struct {
	Shape     ConstraintShape
	Gates     []*gate.CompiledGate
	Selectors [][]bool
	Fixed     [][]fr.Element
}

// MaxFoldingConstraintsDegree returns D-1 for this key.
func (k *ProvingKey) MaxFoldingConstraintsDegree() int {
	return k.Shape.MaxFoldingConstraintsDegree(k.gateDegrees())
}

// NumFoldingConstraints returns the length of the accumulator's ys sequence.
func (k *ProvingKey) NumFoldingConstraints() int {
	return k.Shape.NumFoldingConstraints(k.gateDegrees())
}

func (k *ProvingKey) gateDegrees() [][]int {
	out := make([][]int, len(k.Gates))
	for i, g := range k.Gates {
		out[i] = g.Degrees
	}
	return out
}

// VerifyingKey is the verifier's view: the same compiled gates (query
// tables and degrees are public) and shape, but no selector or fixed-column
// values. This resolves an open question in the source material, where the
// verifier's reconstruction routine was handed a full ProvingKey though it
// never reads a fixed-column value — only shapes.
type VerifyingKey struct {
	Shape ConstraintShape
	Gates []*gate.CompiledGate
}

// MaxFoldingConstraintsDegree returns D-1 for this key.
func (k *VerifyingKey) MaxFoldingConstraintsDegree() int {
	return k.Shape.MaxFoldingConstraintsDegree(k.gateDegrees())
}

// NumFoldingConstraints returns the length of the accumulator's ys sequence.
func (k *VerifyingKey) NumFoldingConstraints() int {
	return k.Shape.NumFoldingConstraints(k.gateDegrees())
}

func (k *VerifyingKey) gateDegrees() [][]int {
	out := make([][]int, len(k.Gates))
	for i, g := range k.Gates {
		out[i] = g.Degrees
	}
	return out
}

// VerifyingKey projects k down to the verifier's view: compiled gates and
// shape, with every selector and fixed-column value dropped.
func (k *ProvingKey) VerifyingKey() *VerifyingKey {
	return &VerifyingKey{Shape: k.Shape, Gates: k.Gates}
}
