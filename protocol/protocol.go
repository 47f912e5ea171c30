// Package protocol implements FoldingProtocol: the mirrored prover and
// verifier state machines that combine two accumulators into one relaxed
// successor over a shared Fiat-Shamir transcript.
package protocol

import (
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/giuliop/protofold/accumulator"
	"github.com/giuliop/protofold/challenge"
	"github.com/giuliop/protofold/foldfrerr"
	"github.com/giuliop/protofold/gate"
	"github.com/giuliop/protofold/pk"
	"github.com/giuliop/protofold/row"
)

// rowChunk is the number of rows a single errgroup worker evaluates before
// reporting its partial sum back; row evaluation has no suspension points,
// so the only purpose of chunking is to bound per-goroutine overhead.
const rowChunk = 256

// degreeCarrier is satisfied by both *pk.ProvingKey and *pk.VerifyingKey.
type degreeCarrier interface {
	MaxFoldingConstraintsDegree() int
}

// degreeD returns D in the notation of the folding protocol: one more than
// the maximum folding degree over every gate and lookup constraint.
func degreeD(key degreeCarrier) int {
	return key.MaxFoldingConstraintsDegree() + 1
}

// gateMaxDegree returns the largest folding degree among a gate's own
// constraint polynomials.
func gateMaxDegree(degrees []int) int {
	max := 0
	for _, d := range degrees {
		if d > max {
			max = d
		}
	}
	return max
}

// gateOffsets returns, for each gate, the global constraint index its first
// polynomial occupies; offsets[i] = sum of len(Polys) over gates before i.
// This mirrors the flattening order accumulator.IngestFresh uses to size
// ys: every gate constraint in gate order and poly order, then one slot per
// lookup.
func gateOffsets(gates []*gate.CompiledGate) []int {
	offsets := make([]int, len(gates))
	n := 0
	for i, g := range gates {
		offsets[i] = n
		n += len(g.Polys)
	}
	return offsets
}

// newRowEvaluators builds one row.Evaluator per gate, each sized so that the
// gate's own maximum-degree constraint receives exactly D+1 raw samples;
// lower degree constraints within the same gate receive fewer and are later
// extended to the full grid (see extendSamples). A constraint's own degree
// bounds G_k, not the ys-weighted term that is folded into e(X); the extra
// degree the ys weighting contributes is accounted for at the combining
// step, where each constraint's samples are first extended to the D+1 grid
// and then multiplied pointwise by the interpolated ys, not here.
func newRowEvaluators(gates []*gate.CompiledGate, d int) []*row.Evaluator {
	out := make([]*row.Evaluator, len(gates))
	for i, g := range gates {
		kExtra := d - gateMaxDegree(g.Degrees)
		out[i] = row.NewEvaluator(g, kExtra)
	}
	return out
}

// validateProverShape checks that every column in acc has exactly
// domainSize rows, returning ErrShapeMismatch otherwise.
func validateProverShape(acc *accumulator.ProverAccumulator, domainSize int) error {
	for _, col := range acc.Instance {
		if len(col) != domainSize {
			return fmt.Errorf("protocol: instance column has %d rows, want %d: %w", len(col), domainSize, foldfrerr.ErrShapeMismatch)
		}
	}
	for _, col := range acc.AdviceColumns {
		if len(col) != domainSize {
			return fmt.Errorf("protocol: advice column has %d rows, want %d: %w", len(col), domainSize, foldfrerr.ErrShapeMismatch)
		}
	}
	return nil
}

// sumRowErrors runs the row loop, row-parallel across chunks, and returns
// the combined numSamples (= D+1) samples of the overall error polynomial
//
//	e(X) = sum_k ysLine(X)[k] * G_k(line(X))
//
// where ysLine linearly interpolates acc0.Ys to acc1.Ys exactly like every
// other accumulator field: this is what makes e(0) == acc0.Error and
// e(1) == acc1.Error hold, since each accumulator's own error was produced
// by weighting its constraints with its own ys.
func sumRowErrors(key *pk.ProvingKey, acc0, acc1 *accumulator.ProverAccumulator, numSamples int) ([]fr.Element, error) {
	domainSize := key.Shape.DomainSize
	evaluators := newRowEvaluators(key.Gates, numSamples-1)
	for _, ev := range evaluators {
		if err := ev.Prepare(acc0, acc1); err != nil {
			return nil, err
		}
	}
	offsets := gateOffsets(key.Gates)
	ysLine := challenge.Table(acc0.Ys, acc1.Ys, numSamples)

	var wg errgroup.Group
	var mu sync.Mutex
	combined := make([]fr.Element, numSamples)

	for start := 0; start < domainSize; start += rowChunk {
		start := start
		end := start + rowChunk
		if end > domainSize {
			end = domainSize
		}
		workerEvaluators := make([]*row.Evaluator, len(evaluators))
		for i, ev := range evaluators {
			workerEvaluators[i] = ev.Clone()
		}
		wg.Go(func() error {
			local := make([]fr.Element, numSamples)
			for r := start; r < end; r++ {
				for gi, ev := range workerEvaluators {
					samples, ok, err := ev.Evaluate(r, domainSize, key, acc0, acc1)
					if err != nil {
						return err
					}
					if !ok {
						continue
					}
					for j, s := range samples {
						extended := extendSamples(s, numSamples)
						k := offsets[gi] + j
						if k >= len(acc0.Ys) {
							return fmt.Errorf("protocol: constraint index %d out of range of ys (%d): %w", k, len(acc0.Ys), foldfrerr.ErrInternalInvariantViolated)
						}
						for x := range local {
							var weighted fr.Element
							weighted.Mul(&extended[x], &ysLine[x][k])
							local[x].Add(&local[x], &weighted)
						}
					}
				}
			}
			mu.Lock()
			for x := range combined {
				combined[x].Add(&combined[x], &local[x])
			}
			mu.Unlock()
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return nil, err
	}
	return combined, nil
}
