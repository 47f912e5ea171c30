package accumulator

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/giuliop/protofold/foldfrerr"
	"github.com/giuliop/protofold/pk"
)

// LookupWitness bundles one lookup argument's already-committed
// polynomials: circuit synthesis and the lookup-argument builder are
// external collaborators, so by the time a fold step runs, every
// commitment here already exists. Ingest only sequences them onto the
// transcript and assembles the resulting accumulator.
type LookupWitness struct {
	M []fr.Element
	G []fr.Element
	H []fr.Element
}

// FreshWitness is everything circuit synthesis hands the folding core for
// one instance: instance column values, advice polynomials grouped by
// phase in the order pk.Shape.Phases lists them, their commitments in the
// same order, and one LookupWitness per lookup argument. CommitBeta
// computes the beta commitment once beta itself has been squeezed, since
// that commitment depends on beta and cannot be precomputed.
type FreshWitness struct {
	Instance          [][]fr.Element
	AdviceByPhase     [][][]fr.Element
	AdviceCommitments [][]bn254.G1Affine
	Lookups           []LookupWitness
	LookupCommitments []LookupCommitmentSet
	CommitBeta        func(beta fr.Element) bn254.G1Affine
}

// LookupCommitmentSet holds the already-computed commitments for one
// lookup argument's m, g and h polynomials.
type LookupCommitmentSet struct {
	M bn254.G1Affine
	G bn254.G1Affine
	H bn254.G1Affine
}

// ProverTranscript is the subset of transcript.ProverTranscript that
// ingestion needs; declared locally so this package does not import
// transcript and create a cycle with packages that depend on both.
type ProverTranscript interface {
	CommonScalar(fr.Element) error
	WritePoint(bn254.G1Affine) error
	SqueezeChallengeScalar() (fr.Element, error)
}

// IngestFresh writes a fresh witness onto the transcript in the wire order
// the verifier will replay and assembles the resulting ProverAccumulator:
// all instance scalars via CommonScalar, then per phase the advice
// commitments followed by a squeezed phase challenge, then every lookup's m
// commitment, then one squeezed r shared by all lookups followed by one
// squeezed theta per input expression of each lookup, then every lookup's
// (g, h) commitments, then a squeezed beta, the beta commitment, and
// finally a squeezed y used to derive the ys random-linear-combination
// powers.
func IngestFresh(t ProverTranscript, key *pk.ProvingKey, w FreshWitness) (*ProverAccumulator, error) {
	if len(w.Instance) != key.Shape.NumInstanceColumns {
		return nil, fmt.Errorf("ingest: got %d instance columns, key wants %d: %w",
			len(w.Instance), key.Shape.NumInstanceColumns, foldfrerr.ErrInvalidInstances)
	}
	for _, col := range w.Instance {
		for _, v := range col {
			if err := t.CommonScalar(v); err != nil {
				return nil, err
			}
		}
	}

	acc := &ProverAccumulator{Instance: w.Instance}

	challenges := make([][]fr.Element, key.Shape.NumChallenges)
	for phaseIdx := range key.Shape.Phases {
		for _, c := range w.AdviceCommitments[phaseIdx] {
			if err := t.WritePoint(c); err != nil {
				return nil, err
			}
		}
		acc.AdviceColumns = append(acc.AdviceColumns, w.AdviceByPhase[phaseIdx]...)
		acc.AdviceCommitments = append(acc.AdviceCommitments, w.AdviceCommitments[phaseIdx]...)

		for idx, phase := range key.Shape.ChallengePhase {
			if phase != key.Shape.Phases[phaseIdx] {
				continue
			}
			c, err := t.SqueezeChallengeScalar()
			if err != nil {
				return nil, err
			}
			challenges[idx] = challengePowers(c, key.Shape.MaxChallengePower[idx])
		}
	}
	acc.Challenges = challenges

	for i := range w.Lookups {
		if err := t.WritePoint(w.LookupCommitments[i].M); err != nil {
			return nil, err
		}
	}

	r, err := t.SqueezeChallengeScalar()
	if err != nil {
		return nil, err
	}
	thetaCounts := make([]int, len(w.Lookups))
	for i, l := range key.Shape.Lookups {
		thetaCounts[i] = l.InputExpressionsLen
	}
	thetasByLookup := make([][]fr.Element, len(w.Lookups))
	for i := range w.Lookups {
		thetas := make([]fr.Element, thetaCounts[i])
		for j := range thetas {
			th, err := t.SqueezeChallengeScalar()
			if err != nil {
				return nil, err
			}
			thetas[j] = th
		}
		thetasByLookup[i] = thetas
	}

	for i, l := range w.Lookups {
		if err := t.WritePoint(w.LookupCommitments[i].G); err != nil {
			return nil, err
		}
		if err := t.WritePoint(w.LookupCommitments[i].H); err != nil {
			return nil, err
		}
		acc.Lookups = append(acc.Lookups, ProverLookupAccumulator{
			M:           l.M,
			MCommitment: w.LookupCommitments[i].M,
			R:           r,
			Thetas:      thetasByLookup[i],
			G:           l.G,
			GCommitment: w.LookupCommitments[i].G,
			H:           l.H,
			HCommitment: w.LookupCommitments[i].H,
		})
	}

	beta, err := t.SqueezeChallengeScalar()
	if err != nil {
		return nil, err
	}
	betaCommitment := w.CommitBeta(beta)
	if err := t.WritePoint(betaCommitment); err != nil {
		return nil, err
	}
	acc.Beta = BetaState{Beta: beta, BetaCommitment: betaCommitment}

	y, err := t.SqueezeChallengeScalar()
	if err != nil {
		return nil, err
	}
	acc.Ys = powersOf(y, key.NumFoldingConstraints())

	return acc, nil
}

// powersOf returns [x^0, x^1, ..., x^(n-1)]. Used for the ys
// random-linear-combination coefficients, where the first constraint's
// weight is conventionally 1.
func powersOf(x fr.Element, n int) []fr.Element {
	out := make([]fr.Element, n)
	if n == 0 {
		return out
	}
	out[0].SetOne()
	for i := 1; i < n; i++ {
		out[i].Mul(&out[i-1], &x)
	}
	return out
}

// challengePowers returns [x^1, x^2, ..., x^maxPower], so that index p-1
// holds x^p, matching the query table's (index, power) addressing where
// a leaf for power p reads challenges[idx][power-1].
func challengePowers(x fr.Element, maxPower int) []fr.Element {
	out := make([]fr.Element, maxPower)
	if maxPower == 0 {
		return out
	}
	out[0] = x
	for i := 1; i < maxPower; i++ {
		out[i].Mul(&out[i-1], &x)
	}
	return out
}
