// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package fri

import (
	"math/big"
	"math/bits"

	"github.com/consensys/fri/internal/utils"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/polynomial"
)

// Layers are kept in bit-reversed domain order, the output order of
// domain.FFT(·, fft.DIF): entry i of a layer of size n holds the value at
// g^rev(i), g the generator of the size-n subgroup. In this order each
// coset {x·w^j | w^f = 1} occupies a contiguous block of f entries, so a
// query position folds to the next layer by integer division by f.
//
// Writing p(x) = Σ_{j<f} x^j·p_j(x^f), the f values of p on a coset
// determine the p_j at the reduced point y = x^f, and the folded value is
// q(y) = Σ_j α^j·p_j(y): the unique degree-<f interpolant R of the coset
// values satisfies R(X) = Σ_j p_j(y)·X^j, so q(y) = R(α).

// foldLayer applies one folding round with challenge alpha, producing the
// next layer of size len(evals)/f. gen is the generator of the subgroup
// of size len(evals).
func foldLayer(evals []fr.Element, alpha *fr.Element, f int, gen *fr.Element) []fr.Element {
	n := len(evals)
	nbCosets := n / f
	logN := bits.TrailingZeros(uint(n))
	logF := bits.TrailingZeros(uint(f))

	wrev := slotMultipliers(gen, n, f)
	res := make([]fr.Element, nbCosets)

	utils.Parallelize(nbCosets, func(start, end int) {
		xs := make([]fr.Element, f)
		var x fr.Element
		var e big.Int
		for c := start; c < end; c++ {
			e.SetUint64(reverseBits(uint64(c), logN-logF))
			x.Exp(*gen, &e)
			for j := 0; j < f; j++ {
				xs[j].Mul(&x, &wrev[j])
			}
			res[c] = foldCoset(evals[c*f:(c+1)*f], xs, alpha)
		}
	})

	return res
}

// foldCoset evaluates at alpha the degree-<f polynomial interpolating
// (xs[j], values[j]).
func foldCoset(values, xs []fr.Element, alpha *fr.Element) fr.Element {
	f := len(values)

	// t[j] <- (α - x_j)·Π_{k≠j}(x_j - x_k); q = Π(α - x_k) · Σ v_j/t[j]
	t := make([]fr.Element, f)
	var num, diff fr.Element
	num.SetOne()
	for j := 0; j < f; j++ {
		diff.Sub(alpha, &xs[j])
		if diff.IsZero() {
			// α happens to be a domain point
			return values[j]
		}
		num.Mul(&num, &diff)
		t[j].Set(&diff)
		for k := 0; k < f; k++ {
			if k == j {
				continue
			}
			diff.Sub(&xs[j], &xs[k])
			t[j].Mul(&t[j], &diff)
		}
	}
	t = fr.BatchInvert(t)

	var res, term fr.Element
	for j := 0; j < f; j++ {
		term.Mul(&values[j], &t[j])
		res.Add(&res, &term)
	}
	res.Mul(&res, &num)
	return res
}

// cosetPoints returns the domain coordinates of coset c in a layer of the
// given size: xs[j] = g^rev(c)·w^rev(j), w = g^(size/f).
func cosetPoints(gen *fr.Element, layerSize, f int, c uint64) []fr.Element {
	logN := bits.TrailingZeros(uint(layerSize))
	logF := bits.TrailingZeros(uint(f))

	wrev := slotMultipliers(gen, layerSize, f)

	var x fr.Element
	var e big.Int
	e.SetUint64(reverseBits(c, logN-logF))
	x.Exp(*gen, &e)

	xs := make([]fr.Element, f)
	for j := 0; j < f; j++ {
		xs[j].Mul(&x, &wrev[j])
	}
	return xs
}

// slotMultipliers returns the f-th roots of unity in slot order, that is
// w^rev(j) at index j.
func slotMultipliers(gen *fr.Element, layerSize, f int) []fr.Element {
	logF := bits.TrailingZeros(uint(f))

	var w fr.Element
	w.Exp(*gen, big.NewInt(int64(layerSize/f)))

	pow := make([]fr.Element, f)
	pow[0].SetOne()
	for j := 1; j < f; j++ {
		pow[j].Mul(&pow[j-1], &w)
	}
	wrev := make([]fr.Element, f)
	for j := 0; j < f; j++ {
		wrev[j] = pow[reverseBits(uint64(j), logF)]
	}
	return wrev
}

// finalPoint returns the domain coordinate of a position in the final
// layer. gen is the generator of the final (size layerSize) subgroup.
func finalPoint(gen *fr.Element, layerSize int, position uint64) fr.Element {
	var y fr.Element
	var e big.Int
	e.SetUint64(reverseBits(position, bits.TrailingZeros(uint(layerSize))))
	y.Exp(*gen, &e)
	return y
}

// remainderPoly interpolates the last (bit-reversed) layer into its
// coefficient form and trims trailing zero coefficients.
func remainderPoly(evals []fr.Element) polynomial.Polynomial {
	coeffs := make(polynomial.Polynomial, len(evals))
	copy(coeffs, evals)

	d := fft.NewDomain(uint64(len(coeffs)))
	d.FFTInverse(coeffs, fft.DIT)

	last := len(coeffs) - 1
	for last >= 0 && coeffs[last].IsZero() {
		last--
	}
	return coeffs[:last+1]
}

// reverseBits reverses the nbBits low bits of v.
func reverseBits(v uint64, nbBits int) uint64 {
	return bits.Reverse64(v) >> (64 - nbBits)
}
