// Package expr implements ExprIR: an arena-indexed expression tree for
// compiled gate constraints, plus a single generic evaluator that every
// concrete use (degree computation, row evaluation) specializes via a
// Handlers value. The arena keeps a whole gate's worth of expressions in
// one contiguous allocation, so evaluation never chases pointers.
package expr

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// Kind tags the variant of a Node.
type Kind uint8

const (
	KindConstant Kind = iota
	KindSelector
	KindFixed
	KindAdvice
	KindInstance
	KindChallenge
	KindNegated
	KindSum
	KindProduct
	KindScaled
)

// noChild marks an absent child index in a Node.
const noChild = -1

// Node is one element of an Expr's arena. For leaf kinds, Leaf indexes into
// the owning gate's query table for that kind. For KindConstant, Const
// holds the value. For KindScaled, Scalar holds the multiplier. Left/Right
// index sibling nodes in the same arena; Right is unused except for Sum and
// Product.
type Node struct {
	Kind   Kind
	Leaf   int
	Const  fr.Element
	Scalar fr.Element
	Left   int
	Right  int
}

// Expr is an owned, acyclic expression tree: a flat arena of Nodes plus the
// index of the root. Node ownership is exclusive — no two Exprs share an
// arena, and no node is referenced from more than one parent.
type Expr struct {
	Nodes []Node
	Root  int
}

// Builder accumulates Nodes for a single Expr under construction. Every
// constructor returns the index of the newly appended node, which the
// caller combines into larger expressions or passes to Finish as the root.
type Builder struct {
	nodes []Node
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) push(n Node) int {
	b.nodes = append(b.nodes, n)
	return len(b.nodes) - 1
}

// Const appends a constant leaf.
func (b *Builder) Const(v fr.Element) int {
	return b.push(Node{Kind: KindConstant, Const: v, Left: noChild, Right: noChild})
}

// Selector appends a selector leaf referring to index idx in the gate's
// selector query table.
func (b *Builder) Selector(idx int) int {
	return b.push(Node{Kind: KindSelector, Leaf: idx, Left: noChild, Right: noChild})
}

// Fixed appends a fixed-column leaf referring to index idx in the gate's
// fixed query table.
func (b *Builder) Fixed(idx int) int {
	return b.push(Node{Kind: KindFixed, Leaf: idx, Left: noChild, Right: noChild})
}

// Advice appends an advice-column leaf referring to index idx in the gate's
// advice query table.
func (b *Builder) Advice(idx int) int {
	return b.push(Node{Kind: KindAdvice, Leaf: idx, Left: noChild, Right: noChild})
}

// Instance appends an instance-column leaf referring to index idx in the
// gate's instance query table.
func (b *Builder) Instance(idx int) int {
	return b.push(Node{Kind: KindInstance, Leaf: idx, Left: noChild, Right: noChild})
}

// Challenge appends a challenge leaf referring to index idx in the gate's
// challenge query table; idx already encodes (challenge index, power).
func (b *Builder) Challenge(idx int) int {
	return b.push(Node{Kind: KindChallenge, Leaf: idx, Left: noChild, Right: noChild})
}

// Negate appends the negation of the node at index a.
func (b *Builder) Negate(a int) int {
	return b.push(Node{Kind: KindNegated, Left: a, Right: noChild})
}

// Sum appends the sum of the nodes at indices a and c.
func (b *Builder) Sum(a, c int) int {
	return b.push(Node{Kind: KindSum, Left: a, Right: c})
}

// Product appends the product of the nodes at indices a and c.
func (b *Builder) Product(a, c int) int {
	return b.push(Node{Kind: KindProduct, Left: a, Right: c})
}

// Scaled appends the node at index a scaled by the field constant s.
func (b *Builder) Scaled(a int, s fr.Element) int {
	return b.push(Node{Kind: KindScaled, Left: a, Scalar: s, Right: noChild})
}

// Finish returns the Expr rooted at root, taking ownership of the
// Builder's arena. The Builder must not be reused afterwards.
func (b *Builder) Finish(root int) *Expr {
	return &Expr{Nodes: b.nodes, Root: root}
}

// Handlers is the capability set the generic evaluator needs: one callable
// per ExprIR leaf variant and one per internal variant.
type Handlers[T any] struct {
	Const     func(fr.Element) T
	Selector  func(idx int) T
	Fixed     func(idx int) T
	Advice    func(idx int) T
	Instance  func(idx int) T
	Challenge func(idx int) T
	Negate    func(T) T
	Sum       func(T, T) T
	Product   func(T, T) T
	Scaled    func(T, fr.Element) T
}

// Eval performs a pure postorder fold of e using h. It allocates nothing,
// never short-circuits, and is safe to call concurrently on the same Expr
// from multiple goroutines (h's callables must themselves be safe for that;
// the row-evaluation handlers read from per-goroutine scratch).
func Eval[T any](e *Expr, h Handlers[T]) T {
	return evalAt(e, e.Root, h)
}

func evalAt[T any](e *Expr, idx int, h Handlers[T]) T {
	n := &e.Nodes[idx]
	switch n.Kind {
	case KindConstant:
		return h.Const(n.Const)
	case KindSelector:
		return h.Selector(n.Leaf)
	case KindFixed:
		return h.Fixed(n.Leaf)
	case KindAdvice:
		return h.Advice(n.Leaf)
	case KindInstance:
		return h.Instance(n.Leaf)
	case KindChallenge:
		return h.Challenge(n.Leaf)
	case KindNegated:
		return h.Negate(evalAt(e, n.Left, h))
	case KindSum:
		return h.Sum(evalAt(e, n.Left, h), evalAt(e, n.Right, h))
	case KindProduct:
		return h.Product(evalAt(e, n.Left, h), evalAt(e, n.Right, h))
	case KindScaled:
		return h.Scaled(evalAt(e, n.Left, h), n.Scalar)
	default:
		panic("expr: node with unrecognized kind; arena was not built through Builder")
	}
}

// DegreeHandlers returns the Handlers specialization that computes
// foldingDegree: constant/fixed/selector have degree 0 (they are constant
// across the fold line), advice/instance/challenge have degree 1, negate
// preserves degree, sum takes the max of its operands, product sums them,
// and scaled preserves degree.
func DegreeHandlers() Handlers[int] {
	return Handlers[int]{
		Const:     func(fr.Element) int { return 0 },
		Selector:  func(int) int { return 0 },
		Fixed:     func(int) int { return 0 },
		Advice:    func(int) int { return 1 },
		Instance:  func(int) int { return 1 },
		Challenge: func(int) int { return 1 },
		Negate:    func(d int) int { return d },
		Sum: func(a, b int) int {
			if a > b {
				return a
			}
			return b
		},
		Product: func(a, b int) int { return a + b },
		Scaled:  func(d int, _ fr.Element) int { return d },
	}
}

// FoldingDegree computes the folding degree of e via DegreeHandlers.
func FoldingDegree(e *Expr) int {
	return Eval(e, DegreeHandlers())
}
