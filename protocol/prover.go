package protocol

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/giuliop/protofold/accumulator"
	"github.com/giuliop/protofold/foldfrerr"
	"github.com/giuliop/protofold/internal/logging"
	"github.com/giuliop/protofold/pk"
	"github.com/giuliop/protofold/transcript"
)

// Prover runs the prover side of a fold step against a fixed proving key.
type Prover struct {
	Key *pk.ProvingKey
}

// NewProver returns a Prover bound to key.
func NewProver(key *pk.ProvingKey) *Prover {
	return &Prover{Key: key}
}

// Fold combines acc0 and acc1 into a new relaxed accumulator, writing the
// quotient error polynomial's coefficients and reading back the squeezed
// fold challenge alpha from t. On error no new accumulator is produced.
func (p *Prover) Fold(acc0, acc1 *accumulator.ProverAccumulator, t *transcript.ProverTranscript) (*accumulator.ProverAccumulator, error) {
	domainSize := p.Key.Shape.DomainSize
	if err := validateProverShape(acc0, domainSize); err != nil {
		return nil, err
	}
	if err := validateProverShape(acc1, domainSize); err != nil {
		return nil, err
	}
	if len(acc0.Instance) != p.Key.Shape.NumInstanceColumns || len(acc1.Instance) != p.Key.Shape.NumInstanceColumns {
		return nil, fmt.Errorf("protocol: instance column count disagrees with key: %w", foldfrerr.ErrInvalidInstances)
	}

	d := degreeD(p.Key)
	numSamples := d + 1
	log := logging.Logger()
	log.Debug().Int("degree", d).Int("domainSize", domainSize).Msg("protocol: folding accumulator pair")

	eSamples, err := sumRowErrors(p.Key, acc0, acc1, numSamples)
	if err != nil {
		return nil, err
	}

	eprimeCoeffs, err := quotientCoefficients(eSamples, acc0.Error, acc1.Error, d)
	if err != nil {
		return nil, err
	}
	for _, c := range eprimeCoeffs {
		if err := t.WriteScalar(c); err != nil {
			return nil, err
		}
	}

	alpha, err := t.SqueezeChallengeScalar()
	if err != nil {
		return nil, err
	}

	out := foldAccumulators(acc0, acc1, alpha, eprimeCoeffs)
	log.Debug().Str("error", out.Error.String()).Msg("protocol: fold complete")
	return out, nil
}

// quotientCoefficients computes the monomial coefficients of e'(X), the
// polynomial such that
//
//	e(X) = (1-X)*e0 + X*e1 + X(1-X)*e'(X)
//
// from eSamples = e(0..d), using the known endpoints e0, e1 rather than
// eSamples[0] and eSamples[1] directly, since those two are definitionally
// equal to e0 and e1 for a well-formed accumulator pair. e' has degree
// d-2, so d-1 points (nodes 2..d) fully determine it.
func quotientCoefficients(eSamples []fr.Element, e0, e1 fr.Element, d int) ([]fr.Element, error) {
	if len(eSamples) != d+1 {
		return nil, fmt.Errorf("protocol: expected %d error samples, got %d: %w", d+1, len(eSamples), foldfrerr.ErrInternalInvariantViolated)
	}
	numPoints := d - 1
	if numPoints <= 0 {
		return nil, nil
	}
	xs := make([]fr.Element, numPoints)
	ys := make([]fr.Element, numPoints)
	for idx := 0; idx < numPoints; idx++ {
		i := idx + 2
		x := intElement(i)
		xs[idx] = x

		var oneMinusX, line, numerator, denom fr.Element
		oneMinusX.SetOne()
		oneMinusX.Sub(&oneMinusX, &x)
		line.Mul(&oneMinusX, &e0)
		var xe1 fr.Element
		xe1.Mul(&x, &e1)
		line.Add(&line, &xe1)

		numerator.Sub(&eSamples[i], &line)
		denom.Mul(&x, &oneMinusX)
		denom.Inverse(&denom)
		ys[idx].Mul(&numerator, &denom)
	}
	return coeffsFromPoints(xs, ys), nil
}

// foldAccumulators linearly interpolates every field of acc0 and acc1 at
// alpha, reconciling the error scalar with the quotient evaluated at alpha
// and the beta-error commitment with its cross-term formula.
func foldAccumulators(acc0, acc1 *accumulator.ProverAccumulator, alpha fr.Element, eprimeCoeffs []fr.Element) *accumulator.ProverAccumulator {
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

	out := &accumulator.ProverAccumulator{
		Instance:          accumulator.LerpMatrix(acc0.Instance, acc1.Instance, alpha),
		AdviceColumns:     accumulator.LerpMatrix(acc0.AdviceColumns, acc1.AdviceColumns, alpha),
		AdviceCommitments: accumulator.LerpPoints(acc0.AdviceCommitments, acc1.AdviceCommitments, alpha),
		Challenges:        accumulator.LerpMatrix(acc0.Challenges, acc1.Challenges, alpha),
		Ys:                accumulator.LerpScalars(acc0.Ys, acc1.Ys, alpha),
		Error:             errOut,
	}
	out.Lookups = make([]accumulator.ProverLookupAccumulator, len(acc0.Lookups))
	for i := range acc0.Lookups {
		l0, l1 := acc0.Lookups[i], acc1.Lookups[i]
		out.Lookups[i] = accumulator.ProverLookupAccumulator{
			M:           accumulator.LerpScalars(l0.M, l1.M, alpha),
			MCommitment: accumulator.LerpPoint(l0.MCommitment, l1.MCommitment, alpha),
			R:           accumulator.LerpScalar(l0.R, l1.R, alpha),
			Thetas:      accumulator.LerpScalars(l0.Thetas, l1.Thetas, alpha),
			G:           accumulator.LerpScalars(l0.G, l1.G, alpha),
			GCommitment: accumulator.LerpPoint(l0.GCommitment, l1.GCommitment, alpha),
			H:           accumulator.LerpScalars(l0.H, l1.H, alpha),
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

// foldBetaError computes the beta-error cross-term formula
//
//	beta_error2 = (1-a)*beta_error0 + a*beta_error1 + a(1-a)*(C0*(b1-b0) + C1*(b0-b1))
//
// where Ci = acc_i.BetaCommitment and bi = acc_i.Beta. Since
// C0*(b1-b0) + C1*(b0-b1) = C0*(b1-b0) - C1*(b1-b0) = (C0-C1)*(b1-b0),
// the cross term reduces to a single point subtraction and scalar mult
// rather than two of each.
func foldBetaError(b0, b1 accumulator.BetaState, alpha, oneMinusAlpha, alphaOneMinusAlpha fr.Element) bn254.G1Affine {
	var diff1 fr.Element
	diff1.Sub(&b1.Beta, &b0.Beta)

	var crossScalar fr.Element
	crossScalar.Mul(&diff1, &alphaOneMinusAlpha)

	commitmentDiff := accumulator.SubPoints(b0.BetaCommitment, b1.BetaCommitment)
	crossTerm := accumulator.ScalePoint(commitmentDiff, crossScalar)

	out := accumulator.AddPoints(
		accumulator.ScalePoint(b0.BetaError, oneMinusAlpha),
		accumulator.ScalePoint(b1.BetaError, alpha),
	)
	return accumulator.AddPoints(out, crossTerm)
}
