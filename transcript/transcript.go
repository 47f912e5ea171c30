// Package transcript wraps gnark-crypto's Fiat-Shamir transcript in the
// sequential read/write/common/squeeze contract the folding core expects.
// The underlying fiat-shamir.Transcript binds named challenges; this
// package assigns each successive operation a fresh internal name so
// callers see a plain sequential interface instead of naming challenges
// themselves. The number of operations is still bounded by the count a
// transcript is constructed with; exceeding it returns ErrTranscriptError.
package transcript

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	fiatshamir "github.com/consensys/gnark-crypto/fiat-shamir"
	"golang.org/x/crypto/blake2b"

	"github.com/giuliop/protofold/foldfrerr"
)

// maxOps bounds how many bind/squeeze operations a single transcript can
// perform; the underlying fiat-shamir transcript needs its challenge names
// declared up front. A fold step's transcript traffic is fully determined
// by the proving key's shape before the transcript is constructed, so
// callers should size this to that shape rather than rely on the default.
const maxOps = 4096

func newFiatShamir(numOps int) *fiatshamir.Transcript {
	names := make([]string, numOps)
	for i := range names {
		names[i] = fmt.Sprintf("op%d", i)
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		panic("transcript: blake2b.New256 with nil key never fails")
	}
	return fiatshamir.NewTranscript(h, names...)
}

// ProverTranscript writes field elements and curve points, accumulating
// them into a proof buffer the verifier will replay.
type ProverTranscript struct {
	fs    *fiatshamir.Transcript
	op    int
	numOp int
	proof []byte
}

// NewProverTranscript returns a transcript sized for at most numOps
// bind/squeeze operations.
func NewProverTranscript(numOps int) *ProverTranscript {
	if numOps <= 0 {
		numOps = maxOps
	}
	return &ProverTranscript{fs: newFiatShamir(numOps), numOp: numOps}
}

func (t *ProverTranscript) nextName() (string, error) {
	if t.op >= t.numOp {
		return "", fmt.Errorf("transcript: exceeded %d operations: %w", t.numOp, foldfrerr.ErrTranscriptError)
	}
	name := fmt.Sprintf("op%d", t.op)
	t.op++
	return name, nil
}

// WriteScalar appends v to the proof and absorbs it into the transcript.
func (t *ProverTranscript) WriteScalar(v fr.Element) error {
	b := v.Bytes()
	t.proof = append(t.proof, b[:]...)
	return t.bind(b[:])
}

// WritePoint appends p's compressed encoding to the proof and absorbs it
// into the transcript.
func (t *ProverTranscript) WritePoint(p bn254.G1Affine) error {
	b := p.Bytes()
	t.proof = append(t.proof, b[:]...)
	return t.bind(b[:])
}

// CommonScalar absorbs v, which both parties already know, without writing
// it to the proof.
func (t *ProverTranscript) CommonScalar(v fr.Element) error {
	b := v.Bytes()
	return t.bind(b[:])
}

// CommonPoint absorbs p, which both parties already know, without writing
// it to the proof.
func (t *ProverTranscript) CommonPoint(p bn254.G1Affine) error {
	b := p.Marshal()
	return t.bind(b)
}

func (t *ProverTranscript) bind(b []byte) error {
	name, err := t.nextName()
	if err != nil {
		return err
	}
	if err := t.fs.Bind(name, b); err != nil {
		return fmt.Errorf("transcript: bind failed: %w", foldfrerr.ErrTranscriptError)
	}
	// ComputeChallenge finalizes the binding for this slot and chains the
	// hash state forward even when the result itself is discarded.
	if _, err := t.fs.ComputeChallenge(name); err != nil {
		return fmt.Errorf("transcript: finalize bind failed: %w", foldfrerr.ErrTranscriptError)
	}
	return nil
}

// SqueezeChallengeScalar derives the next challenge scalar from the
// transcript's current state.
func (t *ProverTranscript) SqueezeChallengeScalar() (fr.Element, error) {
	name, err := t.nextName()
	if err != nil {
		return fr.Element{}, err
	}
	out, err := t.fs.ComputeChallenge(name)
	if err != nil {
		return fr.Element{}, fmt.Errorf("transcript: squeeze failed: %w", foldfrerr.ErrTranscriptError)
	}
	var c fr.Element
	c.SetBytes(out)
	return c, nil
}

// Bytes returns the accumulated proof, in write order.
func (t *ProverTranscript) Bytes() []byte {
	return t.proof
}

// VerifierTranscript replays a proof buffer written by a ProverTranscript,
// reading field elements and curve points off it in the same order they
// were written while reproducing the same hash-absorption sequence.
type VerifierTranscript struct {
	fs     *fiatshamir.Transcript
	op     int
	numOp  int
	proof  []byte
	offset int
}

// NewVerifierTranscript returns a transcript over proof, sized for at most
// numOps bind/squeeze operations.
func NewVerifierTranscript(proof []byte, numOps int) *VerifierTranscript {
	if numOps <= 0 {
		numOps = maxOps
	}
	return &VerifierTranscript{fs: newFiatShamir(numOps), numOp: numOps, proof: proof}
}

func (t *VerifierTranscript) nextName() (string, error) {
	if t.op >= t.numOp {
		return "", fmt.Errorf("transcript: exceeded %d operations: %w", t.numOp, foldfrerr.ErrTranscriptError)
	}
	name := fmt.Sprintf("op%d", t.op)
	t.op++
	return name, nil
}

func (t *VerifierTranscript) take(n int) ([]byte, error) {
	if t.offset+n > len(t.proof) {
		return nil, fmt.Errorf("transcript: proof exhausted: %w", foldfrerr.ErrTranscriptError)
	}
	b := t.proof[t.offset : t.offset+n]
	t.offset += n
	return b, nil
}

// ReadScalar reads the next field element off the proof and absorbs it.
func (t *VerifierTranscript) ReadScalar() (fr.Element, error) {
	b, err := t.take(fr.Bytes)
	if err != nil {
		return fr.Element{}, err
	}
	if err := t.bind(b); err != nil {
		return fr.Element{}, err
	}
	var v fr.Element
	v.SetBytes(b)
	return v, nil
}

// pointSize is the length of a compressed bn254 G1 point encoding, equal to
// the scalar field's element size.
const pointSize = fr.Bytes

// ReadPoint reads the next curve point off the proof and absorbs it.
func (t *VerifierTranscript) ReadPoint() (bn254.G1Affine, error) {
	b, err := t.take(pointSize)
	if err != nil {
		return bn254.G1Affine{}, err
	}
	if err := t.bind(b); err != nil {
		return bn254.G1Affine{}, err
	}
	var p bn254.G1Affine
	if err := p.Unmarshal(b); err != nil {
		return bn254.G1Affine{}, fmt.Errorf("transcript: malformed point: %w", foldfrerr.ErrTranscriptError)
	}
	return p, nil
}

// CommonScalar absorbs v, which both parties already know, without reading
// it from the proof.
func (t *VerifierTranscript) CommonScalar(v fr.Element) error {
	b := v.Bytes()
	return t.bind(b[:])
}

// CommonPoint absorbs p, which both parties already know, without reading
// it from the proof.
func (t *VerifierTranscript) CommonPoint(p bn254.G1Affine) error {
	b := p.Marshal()
	return t.bind(b)
}

func (t *VerifierTranscript) bind(b []byte) error {
	name, err := t.nextName()
	if err != nil {
		return err
	}
	if err := t.fs.Bind(name, b); err != nil {
		return fmt.Errorf("transcript: bind failed: %w", foldfrerr.ErrTranscriptError)
	}
	if _, err := t.fs.ComputeChallenge(name); err != nil {
		return fmt.Errorf("transcript: finalize bind failed: %w", foldfrerr.ErrTranscriptError)
	}
	return nil
}

// SqueezeChallengeScalar derives the next challenge scalar from the
// transcript's current state. For a faithful replay this must be called in
// the exact same position the prover called it.
func (t *VerifierTranscript) SqueezeChallengeScalar() (fr.Element, error) {
	name, err := t.nextName()
	if err != nil {
		return fr.Element{}, err
	}
	out, err := t.fs.ComputeChallenge(name)
	if err != nil {
		return fr.Element{}, fmt.Errorf("transcript: squeeze failed: %w", foldfrerr.ErrTranscriptError)
	}
	var c fr.Element
	c.SetBytes(out)
	return c, nil
}
