package protocol

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/giuliop/protofold/accumulator"
	"github.com/giuliop/protofold/foldfrerr"
	"github.com/giuliop/protofold/pk"
	"github.com/giuliop/protofold/transcript"
)

// Verifier runs the verifier side of a fold step against a fixed verifying
// key.
type Verifier struct {
	Key *pk.VerifyingKey
}

// NewVerifier returns a Verifier bound to key.
func NewVerifier(key *pk.VerifyingKey) *Verifier {
	return &Verifier{Key: key}
}

// Fold replays the prover's fold step: it reads the quotient's coefficients
// and the squeezed alpha off t in the same order the prover wrote them, and
// reconstructs the same new accumulator field by field. It never evaluates
// a constraint polynomial itself: it holds commitments in place of advice
// and lookup polynomials, and folds those alongside the public instance
// values and the scalar fields.
func (v *Verifier) Fold(acc0, acc1 *accumulator.VerifierAccumulator, t *transcript.VerifierTranscript) (*accumulator.VerifierAccumulator, error) {
	if len(acc0.Instance) != v.Key.Shape.NumInstanceColumns || len(acc1.Instance) != v.Key.Shape.NumInstanceColumns {
		return nil, fmt.Errorf("protocol: instance column count disagrees with key: %w", foldfrerr.ErrInvalidInstances)
	}

	d := degreeD(v.Key)
	numPoints := d - 1
	eprimeCoeffs := make([]fr.Element, 0, numPoints)
	for i := 0; i < numPoints; i++ {
		c, err := t.ReadScalar()
		if err != nil {
			return nil, err
		}
		eprimeCoeffs = append(eprimeCoeffs, c)
	}

	alpha, err := t.SqueezeChallengeScalar()
	if err != nil {
		return nil, err
	}

	return foldVerifierAccumulators(acc0, acc1, alpha, eprimeCoeffs), nil
}

func foldVerifierAccumulators(acc0, acc1 *accumulator.VerifierAccumulator, alpha fr.Element, eprimeCoeffs []fr.Element) *accumulator.VerifierAccumulator {
	eprimeAtAlpha := hornerEval(eprimeCoeffs, alpha)

	var oneMinusAlpha fr.Element
	oneMinusAlpha.SetOne()
	oneMinusAlpha.Sub(&oneMinusAlpha, &alpha)

	var alphaOneMinusAlpha, term, errOut fr.Element
	alphaOneMinusAlpha.Mul(&alpha, &oneMinusAlpha)
	errOut.Mul(&alphaOneMinusAlpha, &eprimeAtAlpha)
	term.Mul(&oneMinusAlpha, &acc0.Error)
	errOut.Add(&errOut, &term)
	term.Mul(&alpha, &acc1.Error)
	errOut.Add(&errOut, &term)

	out := &accumulator.VerifierAccumulator{
		Instance:          accumulator.LerpMatrix(acc0.Instance, acc1.Instance, alpha),
		AdviceCommitments: accumulator.LerpPoints(acc0.AdviceCommitments, acc1.AdviceCommitments, alpha),
		Challenges:        accumulator.LerpMatrix(acc0.Challenges, acc1.Challenges, alpha),
		Ys:                accumulator.LerpScalars(acc0.Ys, acc1.Ys, alpha),
		Error:             errOut,
	}
	out.Lookups = make([]accumulator.VerifierLookupAccumulator, len(acc0.Lookups))
	for i := range acc0.Lookups {
		l0, l1 := acc0.Lookups[i], acc1.Lookups[i]
		out.Lookups[i] = accumulator.VerifierLookupAccumulator{
			MCommitment: accumulator.LerpPoint(l0.MCommitment, l1.MCommitment, alpha),
			R:           accumulator.LerpScalar(l0.R, l1.R, alpha),
			Thetas:      accumulator.LerpScalars(l0.Thetas, l1.Thetas, alpha),
			GCommitment: accumulator.LerpPoint(l0.GCommitment, l1.GCommitment, alpha),
			HCommitment: accumulator.LerpPoint(l0.HCommitment, l1.HCommitment, alpha),
		}
	}

	out.Beta = accumulator.BetaState{
		Beta:           accumulator.LerpScalar(acc0.Beta.Beta, acc1.Beta.Beta, alpha),
		BetaCommitment: accumulator.LerpPoint(acc0.Beta.BetaCommitment, acc1.Beta.BetaCommitment, alpha),
		BetaError:      foldBetaError(acc0.Beta, acc1.Beta, alpha, oneMinusAlpha, alphaOneMinusAlpha),
	}
	return out
}
