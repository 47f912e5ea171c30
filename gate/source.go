// Package gate implements GateCompiler: it lowers a source expression AST
// into a compact, query-indexed ExprIR per constraint, builds sorted query
// tables, extracts a shared top-level selector, and flattens products of
// identical challenges into explicit powers.
package gate

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// SourceKind tags the variant of a SourceExpr.
type SourceKind int

const (
	SourceConstant SourceKind = iota
	SourceSelector
	SourceFixed
	SourceAdvice
	SourceInstance
	SourceChallenge
	SourceNegated
	SourceSum
	SourceProduct
	SourceScaled
)

// ColumnRef identifies a fixed/instance/advice query by column and
// rotation. Selectors have no rotation.
type ColumnRef struct {
	Column   int
	Rotation int
}

// ChallengeRef identifies a challenge query by index and power.
type ChallengeRef struct {
	Index int
	Power int
}

// SourceExpr is the uncompiled AST a circuit description hands to the
// GateCompiler: column-valued leaves addressed by raw identifiers, not yet
// indexed into a query table. Ownership of Children is exclusive.
type SourceExpr struct {
	Kind      SourceKind
	Const     fr.Element
	Selector  int
	Fixed     ColumnRef
	Advice    ColumnRef
	Instance  ColumnRef
	Challenge ChallengeRef
	Scalar    fr.Element
	Children  []*SourceExpr
}

// Const builds a constant leaf.
func Const(v fr.Element) *SourceExpr {
	return &SourceExpr{Kind: SourceConstant, Const: v}
}

// Sel builds a selector leaf for column col.
func Sel(col int) *SourceExpr {
	return &SourceExpr{Kind: SourceSelector, Selector: col}
}

// Fix builds a fixed-column leaf at (col, rotation).
func Fix(col, rotation int) *SourceExpr {
	return &SourceExpr{Kind: SourceFixed, Fixed: ColumnRef{Column: col, Rotation: rotation}}
}

// Adv builds an advice-column leaf at (col, rotation).
func Adv(col, rotation int) *SourceExpr {
	return &SourceExpr{Kind: SourceAdvice, Advice: ColumnRef{Column: col, Rotation: rotation}}
}

// Ins builds an instance-column leaf at (col, rotation).
func Ins(col, rotation int) *SourceExpr {
	return &SourceExpr{Kind: SourceInstance, Instance: ColumnRef{Column: col, Rotation: rotation}}
}

// Chal builds a challenge leaf raised to power 1.
func Chal(index int) *SourceExpr {
	return &SourceExpr{Kind: SourceChallenge, Challenge: ChallengeRef{Index: index, Power: 1}}
}

// Neg builds the negation of a.
func Neg(a *SourceExpr) *SourceExpr {
	return &SourceExpr{Kind: SourceNegated, Children: []*SourceExpr{a}}
}

// Add builds the sum of a and b.
func Add(a, b *SourceExpr) *SourceExpr {
	return &SourceExpr{Kind: SourceSum, Children: []*SourceExpr{a, b}}
}

// Mul builds the product of a and b.
func Mul(a, b *SourceExpr) *SourceExpr {
	return &SourceExpr{Kind: SourceProduct, Children: []*SourceExpr{a, b}}
}

// Scale builds a scaled by the field constant s.
func Scale(a *SourceExpr, s fr.Element) *SourceExpr {
	return &SourceExpr{Kind: SourceScaled, Scalar: s, Children: []*SourceExpr{a}}
}

// SourceGate is a source gate: a non-empty list of constraint expressions.
type SourceGate struct {
	Polys []*SourceExpr
}
