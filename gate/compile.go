package gate

import (
	"sort"

	"github.com/giuliop/protofold/expr"
	"github.com/giuliop/protofold/foldfrerr"
)

// QueryTable holds the sorted, deduplicated leaf identifiers a compiled
// gate's polynomials refer to. A leaf's position in its slice is the index
// the corresponding expr.Node stores, so two gates never share a table.
type QueryTable struct {
	Selectors  []int
	Fixed      []ColumnRef
	Advice     []ColumnRef
	Instance   []ColumnRef
	Challenges []ChallengeRef
}

// CompiledGate is the output of GateCompiler: one ExprIR tree per source
// polynomial, its folding degree, an optional shared top-level selector
// peeled off every polynomial, and the query table the trees index into.
type CompiledGate struct {
	Polys          []*expr.Expr
	Degrees        []int
	SimpleSelector *int
	Query          QueryTable
}

// Compile lowers src into a CompiledGate. It runs, in order: shared-selector
// extraction, challenge-product flattening, leaf interning into sorted query
// tables, index rewriting against those tables, and folding-degree tagging.
func Compile(src SourceGate) (*CompiledGate, error) {
	if len(src.Polys) == 0 {
		return nil, foldfrerr.ErrInvalidInstances
	}

	simpleSelector, rest := extractSimpleSelector(src.Polys)

	flattened := make([]*SourceExpr, len(rest))
	for i, p := range rest {
		flattened[i], _ = flattenChallengeProducts(p)
	}

	tables := newInterner()
	for _, p := range flattened {
		tables.collect(p)
	}
	tables.finish()

	polys := make([]*expr.Expr, len(flattened))
	degrees := make([]int, len(flattened))
	for i, p := range flattened {
		b := expr.NewBuilder()
		root, err := tables.rewrite(b, p)
		if err != nil {
			return nil, err
		}
		e := b.Finish(root)
		polys[i] = e
		degrees[i] = expr.FoldingDegree(e)
	}

	return &CompiledGate{
		Polys:          polys,
		Degrees:        degrees,
		SimpleSelector: simpleSelector,
		Query:          tables.table(),
	}, nil
}

// extractSimpleSelector checks whether every polynomial is a top-level
// product with a selector leaf on one side and a common selector column
// across all polynomials. If so it returns that column and the peeled
// remainder expressions; otherwise it returns nil and polys unchanged.
func extractSimpleSelector(polys []*SourceExpr) (*int, []*SourceExpr) {
	if len(polys) == 0 {
		return nil, polys
	}
	col, ok := topLevelSelector(polys[0])
	if !ok {
		return nil, polys
	}
	for _, p := range polys[1:] {
		c, ok := topLevelSelector(p)
		if !ok || c != col {
			return nil, polys
		}
	}
	rest := make([]*SourceExpr, len(polys))
	for i, p := range polys {
		rest[i] = selectorPeeled(p)
	}
	selCol := col
	return &selCol, rest
}

// topLevelSelector reports the selector column of e if e is a top-level
// Product with a Selector leaf on either side.
func topLevelSelector(e *SourceExpr) (int, bool) {
	if e.Kind != SourceProduct {
		return 0, false
	}
	if e.Children[0].Kind == SourceSelector {
		return e.Children[0].Selector, true
	}
	if e.Children[1].Kind == SourceSelector {
		return e.Children[1].Selector, true
	}
	return 0, false
}

// selectorPeeled returns the non-selector side of a top-level selector
// product. Precondition: topLevelSelector(e) succeeded.
func selectorPeeled(e *SourceExpr) *SourceExpr {
	if e.Children[0].Kind == SourceSelector {
		return e.Children[1]
	}
	return e.Children[0]
}

// flattenChallengeProducts rewrites e so that every maximal product
// subtree composed solely of challenge leaves collapses into a single
// challenge leaf with an accumulated power, e.g. c*(c*c) becomes c^3. It
// returns the rewritten expression and, when that expression reduces
// entirely to a single challenge power, the reference describing it (so an
// enclosing Product can keep merging).
func flattenChallengeProducts(e *SourceExpr) (*SourceExpr, *ChallengeRef) {
	switch e.Kind {
	case SourceChallenge:
		ref := e.Challenge
		return e, &ref
	case SourceProduct:
		left, lref := flattenChallengeProducts(e.Children[0])
		right, rref := flattenChallengeProducts(e.Children[1])
		if lref != nil && rref != nil && lref.Index == rref.Index {
			merged := ChallengeRef{Index: lref.Index, Power: lref.Power + rref.Power}
			return &SourceExpr{Kind: SourceChallenge, Challenge: merged}, &merged
		}
		return &SourceExpr{Kind: SourceProduct, Children: []*SourceExpr{left, right}}, nil
	case SourceNegated:
		c, _ := flattenChallengeProducts(e.Children[0])
		return &SourceExpr{Kind: SourceNegated, Children: []*SourceExpr{c}}, nil
	case SourceSum:
		l, _ := flattenChallengeProducts(e.Children[0])
		r, _ := flattenChallengeProducts(e.Children[1])
		return &SourceExpr{Kind: SourceSum, Children: []*SourceExpr{l, r}}, nil
	case SourceScaled:
		c, _ := flattenChallengeProducts(e.Children[0])
		return &SourceExpr{Kind: SourceScaled, Scalar: e.Scalar, Children: []*SourceExpr{c}}, nil
	default:
		return e, nil
	}
}

// interner collects the distinct leaves a flattened gate refers to, sorts
// and deduplicates them once via finish, and then rewrites expressions
// against the resulting index.
type interner struct {
	selectors  map[int]struct{}
	fixed      map[ColumnRef]struct{}
	advice     map[ColumnRef]struct{}
	instance   map[ColumnRef]struct{}
	challenges map[ChallengeRef]struct{}

	selectorIdx  map[int]int
	fixedIdx     map[ColumnRef]int
	adviceIdx    map[ColumnRef]int
	instanceIdx  map[ColumnRef]int
	challengeIdx map[ChallengeRef]int

	sortedSelectors  []int
	sortedFixed      []ColumnRef
	sortedAdvice     []ColumnRef
	sortedInstance   []ColumnRef
	sortedChallenges []ChallengeRef
}

func newInterner() *interner {
	return &interner{
		selectors:  make(map[int]struct{}),
		fixed:      make(map[ColumnRef]struct{}),
		advice:     make(map[ColumnRef]struct{}),
		instance:   make(map[ColumnRef]struct{}),
		challenges: make(map[ChallengeRef]struct{}),
	}
}

func (in *interner) collect(e *SourceExpr) {
	switch e.Kind {
	case SourceConstant:
	case SourceSelector:
		in.selectors[e.Selector] = struct{}{}
	case SourceFixed:
		in.fixed[e.Fixed] = struct{}{}
	case SourceAdvice:
		in.advice[e.Advice] = struct{}{}
	case SourceInstance:
		in.instance[e.Instance] = struct{}{}
	case SourceChallenge:
		in.challenges[e.Challenge] = struct{}{}
	case SourceNegated, SourceScaled:
		in.collect(e.Children[0])
	case SourceSum, SourceProduct:
		in.collect(e.Children[0])
		in.collect(e.Children[1])
	}
}

func (in *interner) finish() {
	for s := range in.selectors {
		in.sortedSelectors = append(in.sortedSelectors, s)
	}
	sort.Ints(in.sortedSelectors)
	in.selectorIdx = make(map[int]int, len(in.sortedSelectors))
	for i, s := range in.sortedSelectors {
		in.selectorIdx[s] = i
	}

	in.sortedFixed = sortColumnRefs(in.fixed)
	in.fixedIdx = indexColumnRefs(in.sortedFixed)
	in.sortedAdvice = sortColumnRefs(in.advice)
	in.adviceIdx = indexColumnRefs(in.sortedAdvice)
	in.sortedInstance = sortColumnRefs(in.instance)
	in.instanceIdx = indexColumnRefs(in.sortedInstance)

	for c := range in.challenges {
		in.sortedChallenges = append(in.sortedChallenges, c)
	}
	sort.Slice(in.sortedChallenges, func(i, j int) bool {
		a, b := in.sortedChallenges[i], in.sortedChallenges[j]
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		return a.Power < b.Power
	})
	in.challengeIdx = make(map[ChallengeRef]int, len(in.sortedChallenges))
	for i, c := range in.sortedChallenges {
		in.challengeIdx[c] = i
	}
}

func sortColumnRefs(set map[ColumnRef]struct{}) []ColumnRef {
	out := make([]ColumnRef, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Column != out[j].Column {
			return out[i].Column < out[j].Column
		}
		return out[i].Rotation < out[j].Rotation
	})
	return out
}

func indexColumnRefs(sorted []ColumnRef) map[ColumnRef]int {
	idx := make(map[ColumnRef]int, len(sorted))
	for i, c := range sorted {
		idx[c] = i
	}
	return idx
}

func (in *interner) table() QueryTable {
	return QueryTable{
		Selectors:  in.sortedSelectors,
		Fixed:      in.sortedFixed,
		Advice:     in.sortedAdvice,
		Instance:   in.sortedInstance,
		Challenges: in.sortedChallenges,
	}
}

// rewrite lowers a flattened SourceExpr into the Builder's arena, replacing
// every leaf with its index in the interner's sorted tables.
func (in *interner) rewrite(b *expr.Builder, e *SourceExpr) (int, error) {
	switch e.Kind {
	case SourceConstant:
		return b.Const(e.Const), nil
	case SourceSelector:
		idx, ok := in.selectorIdx[e.Selector]
		if !ok {
			return 0, foldfrerr.ErrInternalInvariantViolated
		}
		return b.Selector(idx), nil
	case SourceFixed:
		idx, ok := in.fixedIdx[e.Fixed]
		if !ok {
			return 0, foldfrerr.ErrInternalInvariantViolated
		}
		return b.Fixed(idx), nil
	case SourceAdvice:
		idx, ok := in.adviceIdx[e.Advice]
		if !ok {
			return 0, foldfrerr.ErrInternalInvariantViolated
		}
		return b.Advice(idx), nil
	case SourceInstance:
		idx, ok := in.instanceIdx[e.Instance]
		if !ok {
			return 0, foldfrerr.ErrInternalInvariantViolated
		}
		return b.Instance(idx), nil
	case SourceChallenge:
		idx, ok := in.challengeIdx[e.Challenge]
		if !ok {
			return 0, foldfrerr.ErrInternalInvariantViolated
		}
		return b.Challenge(idx), nil
	case SourceNegated:
		child, err := in.rewrite(b, e.Children[0])
		if err != nil {
			return 0, err
		}
		return b.Negate(child), nil
	case SourceSum:
		left, err := in.rewrite(b, e.Children[0])
		if err != nil {
			return 0, err
		}
		right, err := in.rewrite(b, e.Children[1])
		if err != nil {
			return 0, err
		}
		return b.Sum(left, right), nil
	case SourceProduct:
		left, err := in.rewrite(b, e.Children[0])
		if err != nil {
			return 0, err
		}
		right, err := in.rewrite(b, e.Children[1])
		if err != nil {
			return 0, err
		}
		return b.Product(left, right), nil
	case SourceScaled:
		child, err := in.rewrite(b, e.Children[0])
		if err != nil {
			return 0, err
		}
		return b.Scaled(child, e.Scalar), nil
	default:
		return 0, foldfrerr.ErrInternalInvariantViolated
	}
}
