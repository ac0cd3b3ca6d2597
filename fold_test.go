// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package fri

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/polynomial"
	"github.com/stretchr/testify/require"
)

func TestFoldCosetInterpolates(t *testing.T) {
	// the folded value of a coset is R(α), R the degree-<f interpolant of
	// the coset values
	const f = 4
	r := randomPoly(f - 1)

	xs := make([]fr.Element, f)
	values := make([]fr.Element, f)
	for j := range xs {
		xs[j].SetRandom()
		values[j] = r.Eval(&xs[j])
	}

	var alpha fr.Element
	alpha.SetRandom()
	got := foldCoset(values, xs, &alpha)
	want := r.Eval(&alpha)
	require.True(t, got.Equal(&want))

	// α landing on a domain point returns the committed value directly
	got = foldCoset(values, xs, &xs[2])
	require.True(t, got.Equal(&values[2]))
}

func TestFoldLayerMatchesCoefficientFolding(t *testing.T) {
	// folding the evaluations of p(x) = Σ x^j p_j(x^f) must agree with
	// evaluating q(y) = Σ α^j p_j(y) on the reduced domain
	const n, f = 64, 4
	p := randomPoly(n - 1)
	var alpha fr.Element
	alpha.SetRandom()

	evals := bitReversedEvals(p, n)
	gen := fft.NewDomain(n).Generator
	folded := foldLayer(evals, &alpha, f, &gen)

	q := make(polynomial.Polynomial, n/f)
	var pow, term fr.Element
	for i := range q {
		pow.SetOne()
		for j := 0; j < f; j++ {
			term.Mul(&p[i*f+j], &pow)
			q[i].Add(&q[i], &term)
			pow.Mul(&pow, &alpha)
		}
	}
	want := bitReversedEvals(q, n/f)

	require.Equal(t, len(want), len(folded))
	for i := range want {
		require.True(t, folded[i].Equal(&want[i]), "mismatch at index %d", i)
	}
}

func TestFoldChainReducesDegree(t *testing.T) {
	// folding a degree-<d codeword halves the coefficient count per round
	const n = 64
	p := randomPoly(15)
	evals := bitReversedEvals(p, n)
	gen := fft.NewDomain(n).Generator

	var alpha fr.Element
	cur := evals
	for len(cur) > 4 {
		alpha.SetRandom()
		cur = foldLayer(cur, &alpha, 2, &gen)
		gen.Square(&gen)
	}

	rem := remainderPoly(cur)
	require.LessOrEqual(t, len(rem), 1)
}

func TestRemainderPolyRoundTrip(t *testing.T) {
	const n = 8
	p := randomPoly(n - 1)
	rem := remainderPoly(bitReversedEvals(p, n))
	require.Equal(t, len(p), len(rem))
	for i := range p {
		require.True(t, rem[i].Equal(&p[i]))
	}

	// trailing zero coefficients are trimmed
	p2 := randomPoly(2)
	rem = remainderPoly(bitReversedEvals(p2, n))
	require.Equal(t, 3, len(rem))
}

func TestCosetPointsAreFoldPreimages(t *testing.T) {
	// the f points of coset c all map to the layer-below coordinate of c
	const n, f = 32, 4
	bigF := big.NewInt(f)
	gen := fft.NewDomain(n).Generator
	var genDown fr.Element
	genDown.Exp(gen, bigF)

	for c := uint64(0); c < n/f; c++ {
		xs := cosetPoints(&gen, n, f, c)
		y := finalPoint(&genDown, n/f, c)
		for j := range xs {
			var xf fr.Element
			xf.Exp(xs[j], bigF)
			require.True(t, xf.Equal(&y), "coset %d slot %d", c, j)
		}
	}
}

func TestReverseBits(t *testing.T) {
	require.Equal(t, uint64(0), reverseBits(0, 4))
	require.Equal(t, uint64(8), reverseBits(1, 4))
	require.Equal(t, uint64(0b0011), reverseBits(0b1100, 4))
	require.Equal(t, uint64(5), reverseBits(reverseBits(5, 6), 6))
}
