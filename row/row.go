// Package row implements RowEvaluator: per-row scratch buffers and the
// routine that materializes a row's queried column data, linearly
// interpolates advice and instance values along the fold line between two
// accumulators, and evaluates every constraint polynomial at every sample
// point.
package row

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/giuliop/protofold/accumulator"
	"github.com/giuliop/protofold/challenge"
	"github.com/giuliop/protofold/expr"
	"github.com/giuliop/protofold/foldfrerr"
	"github.com/giuliop/protofold/gate"
	"github.com/giuliop/protofold/pk"
)

// ErrorEvaluations is the samples e(0), e(1), ..., e(n-1) of one
// constraint's error polynomial along the fold line.
type ErrorEvaluations = []fr.Element

// Evaluator owns the scratch buffers for evaluating one compiled gate
// across many rows. Construct once per gate per fold step via NewEvaluator
// and Prepare, then call Evaluate once per row; cloning an Evaluator for a
// parallel worker is cheap because the challenge table is shared.
type Evaluator struct {
	gate *gate.CompiledGate

	kExtra      int
	numEvals    []int
	maxNumEvals int

	selectors    []fr.Element
	fixed        []fr.Element
	instanceAcc  []fr.Element
	instanceDiff []fr.Element
	adviceAcc    []fr.Element
	adviceDiff   []fr.Element

	challengeEvals [][]fr.Element

	gateEval [][]fr.Element
}

// NewEvaluator allocates the scratch buffers for g, sized for kExtra
// additional samples beyond the minimum degrees[j]+1 each constraint needs.
func NewEvaluator(g *gate.CompiledGate, kExtra int) *Evaluator {
	numEvals := make([]int, len(g.Degrees))
	maxNumEvals := 0
	for j, d := range g.Degrees {
		numEvals[j] = d + 1 + kExtra
		if numEvals[j] > maxNumEvals {
			maxNumEvals = numEvals[j]
		}
	}
	gateEval := make([][]fr.Element, len(numEvals))
	for j, n := range numEvals {
		gateEval[j] = make([]fr.Element, n)
	}
	return &Evaluator{
		gate:         g,
		kExtra:       kExtra,
		numEvals:     numEvals,
		maxNumEvals:  maxNumEvals,
		selectors:    make([]fr.Element, len(g.Query.Selectors)),
		fixed:        make([]fr.Element, len(g.Query.Fixed)),
		instanceAcc:  make([]fr.Element, len(g.Query.Instance)),
		instanceDiff: make([]fr.Element, len(g.Query.Instance)),
		adviceAcc:    make([]fr.Element, len(g.Query.Advice)),
		adviceDiff:   make([]fr.Element, len(g.Query.Advice)),
		gateEval:     gateEval,
	}
}

// Clone returns an independent Evaluator for the same gate, suitable for
// handing to a parallel row-chunk worker. The challenge table, being
// read-only after Prepare, is shared by reference.
func (e *Evaluator) Clone() *Evaluator {
	out := NewEvaluator(e.gate, e.kExtra)
	out.challengeEvals = e.challengeEvals
	return out
}

// Prepare computes the challenge-power table for this gate from the two
// accumulators being folded. It must be called once, after construction
// and before the first Evaluate call, and again whenever acc or new change.
func (e *Evaluator) Prepare(acc, new *accumulator.ProverAccumulator) error {
	accQueried := make([]fr.Element, len(e.gate.Query.Challenges))
	newQueried := make([]fr.Element, len(e.gate.Query.Challenges))
	for i, c := range e.gate.Query.Challenges {
		if c.Index >= len(acc.Challenges) || c.Power == 0 || c.Power > len(acc.Challenges[c.Index]) {
			return fmt.Errorf("row: challenge query (%d,%d) out of range: %w", c.Index, c.Power, foldfrerr.ErrInternalInvariantViolated)
		}
		accQueried[i] = acc.Challenges[c.Index][c.Power-1]
		newQueried[i] = new.Challenges[c.Index][c.Power-1]
	}
	e.challengeEvals = challenge.Table(accQueried, newQueried, e.maxNumEvals)
	return nil
}

// rotate applies modular rotation indexing: (rowIdx+rot) mod domainSize,
// interpreted as an unsigned index.
func rotate(rowIdx, rot, domainSize int) int {
	idx := (rowIdx + rot) % domainSize
	if idx < 0 {
		idx += domainSize
	}
	return idx
}

// Evaluate materializes row rowIdx and evaluates every constraint
// polynomial of the gate at every required sample point. It returns nil,
// false, nil when the gate's simple selector is present and false on this
// row: the fast-skip path. Otherwise it returns the per-constraint
// ErrorEvaluations slices (sized numEvals[j], not maxNumEvals), true, nil.
func (e *Evaluator) Evaluate(rowIdx, domainSize int, key *pk.ProvingKey, acc, new *accumulator.ProverAccumulator) ([]ErrorEvaluations, bool, error) {
	if e.gate.SimpleSelector != nil {
		col := *e.gate.SimpleSelector
		if col >= len(key.Selectors) || rowIdx >= len(key.Selectors[col]) {
			return nil, false, fmt.Errorf("row: simple selector out of range: %w", foldfrerr.ErrBoundsFailure)
		}
		if !key.Selectors[col][rowIdx] {
			return nil, false, nil
		}
	}

	for i, s := range e.gate.Query.Selectors {
		if s >= len(key.Selectors) || rowIdx >= len(key.Selectors[s]) {
			return nil, false, fmt.Errorf("row: selector query out of range: %w", foldfrerr.ErrBoundsFailure)
		}
		if key.Selectors[s][rowIdx] {
			e.selectors[i].SetOne()
		} else {
			e.selectors[i].SetZero()
		}
	}

	for i, q := range e.gate.Query.Fixed {
		r := rotate(rowIdx, q.Rotation, domainSize)
		if q.Column >= len(key.Fixed) || r >= len(key.Fixed[q.Column]) {
			return nil, false, fmt.Errorf("row: fixed query out of range: %w", foldfrerr.ErrBoundsFailure)
		}
		e.fixed[i] = key.Fixed[q.Column][r]
	}

	for i, q := range e.gate.Query.Instance {
		r := rotate(rowIdx, q.Rotation, domainSize)
		accVal, err := lookupColumn(acc.Instance, q.Column, r)
		if err != nil {
			return nil, false, err
		}
		newVal, err := lookupColumn(new.Instance, q.Column, r)
		if err != nil {
			return nil, false, err
		}
		e.instanceAcc[i] = accVal
		e.instanceDiff[i].Sub(&newVal, &accVal)
	}

	for i, q := range e.gate.Query.Advice {
		r := rotate(rowIdx, q.Rotation, domainSize)
		accVal, err := lookupColumn(acc.AdviceColumns, q.Column, r)
		if err != nil {
			return nil, false, err
		}
		newVal, err := lookupColumn(new.AdviceColumns, q.Column, r)
		if err != nil {
			return nil, false, err
		}
		e.adviceAcc[i] = accVal
		e.adviceDiff[i].Sub(&newVal, &accVal)
	}

	handlers := e.handlers()
	exprHandlers := handlers.toExprHandlers()
	for x := 0; x < e.maxNumEvals; x++ {
		if x > 0 {
			for i := range e.instanceAcc {
				e.instanceAcc[i].Add(&e.instanceAcc[i], &e.instanceDiff[i])
			}
			for i := range e.adviceAcc {
				e.adviceAcc[i].Add(&e.adviceAcc[i], &e.adviceDiff[i])
			}
		}
		handlers.challengeRow = e.challengeEvals[x]
		for j, poly := range e.gate.Polys {
			if x > e.numEvals[j]-1 {
				continue
			}
			e.gateEval[j][x] = expr.Eval(poly, exprHandlers)
		}
	}

	out := make([]ErrorEvaluations, len(e.gateEval))
	for j, buf := range e.gateEval {
		out[j] = append(ErrorEvaluations(nil), buf[:e.numEvals[j]]...)
	}
	return out, true, nil
}

func lookupColumn(m [][]fr.Element, col, row int) (fr.Element, error) {
	if col >= len(m) || row >= len(m[col]) {
		return fr.Element{}, fmt.Errorf("row: column query out of range: %w", foldfrerr.ErrBoundsFailure)
	}
	return m[col][row], nil
}

// rowHandlers closes over the Evaluator's scratch buffers to serve as the
// leaf lookups for expr.Eval.
type rowHandlers struct {
	e            *Evaluator
	challengeRow []fr.Element
}

func (h *rowHandlers) toExprHandlers() expr.Handlers[fr.Element] {
	return expr.Handlers[fr.Element]{
		Const:     func(v fr.Element) fr.Element { return v },
		Selector:  func(idx int) fr.Element { return h.e.selectors[idx] },
		Fixed:     func(idx int) fr.Element { return h.e.fixed[idx] },
		Advice:    func(idx int) fr.Element { return h.e.adviceAcc[idx] },
		Instance:  func(idx int) fr.Element { return h.e.instanceAcc[idx] },
		Challenge: func(idx int) fr.Element { return h.challengeRow[idx] },
		Negate: func(a fr.Element) fr.Element {
			var out fr.Element
			out.Neg(&a)
			return out
		},
		Sum: func(a, b fr.Element) fr.Element {
			var out fr.Element
			out.Add(&a, &b)
			return out
		},
		Product: func(a, b fr.Element) fr.Element {
			var out fr.Element
			out.Mul(&a, &b)
			return out
		},
		Scaled: func(a fr.Element, s fr.Element) fr.Element {
			var out fr.Element
			out.Mul(&a, &s)
			return out
		},
	}
}

func (e *Evaluator) handlers() *rowHandlers {
	return &rowHandlers{e: e}
}
