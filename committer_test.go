// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package fri

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func randomEvals(n int) []fr.Element {
	evals := make([]fr.Element, n)
	for i := range evals {
		evals[i].SetRandom()
	}
	return evals
}

func TestCommitAndOpen(t *testing.T) {
	const n, f = 64, 4
	evals := randomEvals(n)

	root, tree, err := commitLayer(testHash, evals, f)
	require.NoError(t, err)
	require.NotEmpty(t, root)

	// open an arbitrary subset of positions, in any order
	for _, pos := range []uint64{0, 63, 17, 18, 19, 32} {
		coset, path, err := tree.open(pos)
		require.NoError(t, err)
		require.Len(t, coset, f)
		require.Len(t, path, 4) // log2(64/4)

		c := pos / f
		for j := 0; j < f; j++ {
			require.True(t, coset[j].Equal(&evals[c*uint64(f)+uint64(j)]))
		}
		require.True(t, verifyOpening(testHash, root, c, coset, path))
	}

	_, _, err = tree.open(uint64(n))
	require.Error(t, err)
}

func TestVerifyOpeningRejects(t *testing.T) {
	const n, f = 32, 2
	evals := randomEvals(n)

	root, tree, err := commitLayer(testHash, evals, f)
	require.NoError(t, err)

	coset, path, err := tree.open(6)
	require.NoError(t, err)
	require.True(t, verifyOpening(testHash, root, 3, coset, path))

	// wrong coset index
	require.False(t, verifyOpening(testHash, root, 4, coset, path))

	// tampered value
	tampered := []fr.Element{coset[0], coset[1]}
	var one fr.Element
	one.SetOne()
	tampered[0].Add(&tampered[0], &one)
	require.False(t, verifyOpening(testHash, root, 3, tampered, path))

	// tampered path
	path[1][0] ^= 1
	require.False(t, verifyOpening(testHash, root, 3, coset, path))
}

func TestCommitLayerDeterministic(t *testing.T) {
	evals := randomEvals(16)
	r1, _, err := commitLayer(testHash, evals, 2)
	require.NoError(t, err)
	r2, _, err := commitLayer(testHash, evals, 2)
	require.NoError(t, err)
	require.Equal(t, r1, r2)

	// a single changed evaluation changes the root
	evals[5].SetUint64(99)
	r3, _, err := commitLayer(testHash, evals, 2)
	require.NoError(t, err)
	require.NotEqual(t, r1, r3)
}

func TestCommitLayerValidation(t *testing.T) {
	_, _, err := commitLayer(testHash, nil, 2)
	require.Error(t, err)

	_, _, err = commitLayer(testHash, randomEvals(6), 4)
	require.Error(t, err)

	// 12/2 = 6 cosets, not a power of two
	_, _, err = commitLayer(testHash, randomEvals(12), 2)
	require.Error(t, err)
}
