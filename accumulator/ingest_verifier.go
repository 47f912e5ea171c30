package accumulator

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/giuliop/protofold/foldfrerr"
	"github.com/giuliop/protofold/pk"
)

// VerifierTranscript is the subset of transcript.VerifierTranscript that
// ingestion needs.
type VerifierTranscript interface {
	CommonScalar(fr.Element) error
	ReadPoint() (bn254.G1Affine, error)
	SqueezeChallengeScalar() (fr.Element, error)
}

// IngestFreshVerifier replays the wire layout IngestFresh wrote and
// reconstructs the corresponding VerifierAccumulator. instance is supplied
// directly because instance values are public and never appear encoded in
// the proof; key must be the proving key's VerifyingKey projection, never
// the proving key itself, so the verifier can never observe a fixed-column
// value.
func IngestFreshVerifier(t VerifierTranscript, key *pk.VerifyingKey, instance [][]fr.Element) (*VerifierAccumulator, error) {
	if len(instance) != key.Shape.NumInstanceColumns {
		return nil, fmt.Errorf("ingest: got %d instance columns, key wants %d: %w",
			len(instance), key.Shape.NumInstanceColumns, foldfrerr.ErrInvalidInstances)
	}
	for _, col := range instance {
		for _, v := range col {
			if err := t.CommonScalar(v); err != nil {
				return nil, err
			}
		}
	}

	acc := &VerifierAccumulator{Instance: instance}
	challenges := make([][]fr.Element, key.Shape.NumChallenges)

	for _, phase := range key.Shape.Phases {
		numAdviceThisPhase := 0
		for _, p := range key.Shape.AdviceColumnPhase {
			if p == phase {
				numAdviceThisPhase++
			}
		}
		for i := 0; i < numAdviceThisPhase; i++ {
			c, err := t.ReadPoint()
			if err != nil {
				return nil, err
			}
			acc.AdviceCommitments = append(acc.AdviceCommitments, c)
		}

		for idx, p := range key.Shape.ChallengePhase {
			if p != phase {
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

	numLookups := len(key.Shape.Lookups)
	mCommitments := make([]bn254.G1Affine, numLookups)
	for i := range mCommitments {
		c, err := t.ReadPoint()
		if err != nil {
			return nil, err
		}
		mCommitments[i] = c
	}

	r, err := t.SqueezeChallengeScalar()
	if err != nil {
		return nil, err
	}
	thetasByLookup := make([][]fr.Element, numLookups)
	for i, l := range key.Shape.Lookups {
		thetas := make([]fr.Element, l.InputExpressionsLen)
		for j := range thetas {
			th, err := t.SqueezeChallengeScalar()
			if err != nil {
				return nil, err
			}
			thetas[j] = th
		}
		thetasByLookup[i] = thetas
	}

	for i := 0; i < numLookups; i++ {
		g, err := t.ReadPoint()
		if err != nil {
			return nil, err
		}
		h, err := t.ReadPoint()
		if err != nil {
			return nil, err
		}
		acc.Lookups = append(acc.Lookups, VerifierLookupAccumulator{
			MCommitment: mCommitments[i],
			R:           r,
			Thetas:      thetasByLookup[i],
			GCommitment: g,
			HCommitment: h,
		})
	}

	beta, err := t.SqueezeChallengeScalar()
	if err != nil {
		return nil, err
	}
	betaCommitment, err := t.ReadPoint()
	if err != nil {
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
