package protocol

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// intElement returns the field element representing the nonnegative integer
// v, used throughout this package to address polynomial samples by their
// integer node.
func intElement(v int) fr.Element {
	var e fr.Element
	e.SetUint64(uint64(v))
	return e
}

// extendSamples returns a length-target vector of evaluations of the unique
// polynomial passing through samples (interpreted as values at integer nodes
// 0..len(samples)-1), reusing the given samples verbatim and Lagrange
// interpolating the missing high nodes. A constraint polynomial sampled at
// only its own degree+1 points is fully determined by them; extending it to
// the fold-wide D+1 grid this way is exact, not an approximation, and is
// what lets constraints of different degrees be summed pointwise into one
// combined error polynomial.
func extendSamples(samples []fr.Element, target int) []fr.Element {
	if len(samples) >= target {
		return samples[:target]
	}
	out := make([]fr.Element, target)
	copy(out, samples)
	for x := len(samples); x < target; x++ {
		out[x] = lagrangeEvalAt(samples, intElement(x))
	}
	return out
}

// lagrangeEvalAt evaluates, at x, the unique polynomial of degree
// len(samples)-1 through (0, samples[0]), (1, samples[1]), ....
func lagrangeEvalAt(samples []fr.Element, x fr.Element) fr.Element {
	var result fr.Element
	n := len(samples)
	for i := 0; i < n; i++ {
		term := samples[i]
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			ij, jj := intElement(i), intElement(j)
			var num, denom fr.Element
			num.Sub(&x, &jj)
			denom.Sub(&ij, &jj)
			denom.Inverse(&denom)
			num.Mul(&num, &denom)
			term.Mul(&term, &num)
		}
		result.Add(&result, &term)
	}
	return result
}

// polyMulLinear multiplies the polynomial coeffs (ascending degree) by
// (x - root), returning a polynomial one degree higher.
func polyMulLinear(coeffs []fr.Element, root fr.Element) []fr.Element {
	out := make([]fr.Element, len(coeffs)+1)
	for i, c := range coeffs {
		var t fr.Element
		t.Mul(&c, &root)
		out[i].Sub(&out[i], &t)
		out[i+1].Add(&out[i+1], &c)
	}
	return out
}

func polyScale(coeffs []fr.Element, s fr.Element) []fr.Element {
	out := make([]fr.Element, len(coeffs))
	for i, c := range coeffs {
		out[i].Mul(&c, &s)
	}
	return out
}

func polyAdd(a, b []fr.Element) []fr.Element {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]fr.Element, n)
	copy(out, a)
	for i, c := range b {
		out[i].Add(&out[i], &c)
	}
	return out
}

// coeffsFromPoints converts n (x,y) samples into the n monomial coefficients
// (ascending degree) of the unique degree-(n-1) polynomial through them, via
// standard Lagrange basis construction.
func coeffsFromPoints(xs, ys []fr.Element) []fr.Element {
	n := len(xs)
	result := make([]fr.Element, n)
	for i := 0; i < n; i++ {
		one := fr.Element{}
		one.SetOne()
		num := []fr.Element{one}
		var denom fr.Element
		denom.SetOne()
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			num = polyMulLinear(num, xs[j])
			var diff fr.Element
			diff.Sub(&xs[i], &xs[j])
			denom.Mul(&denom, &diff)
		}
		var denomInv, coef fr.Element
		denomInv.Inverse(&denom)
		coef.Mul(&ys[i], &denomInv)
		result = polyAdd(result, polyScale(num, coef))
	}
	return result
}

// hornerEval evaluates coeffs (ascending degree) at x via Horner's method.
func hornerEval(coeffs []fr.Element, x fr.Element) fr.Element {
	var out fr.Element
	for i := len(coeffs) - 1; i >= 0; i-- {
		out.Mul(&out, &x)
		out.Add(&out, &coeffs[i])
	}
	return out
}
