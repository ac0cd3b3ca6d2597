// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package transcript

import (
	"testing"

	"github.com/consensys/gnark-crypto/hash"
	"github.com/stretchr/testify/require"
)

func newTestCoin(t *testing.T, seed []byte, nbChallenges int) *Coin {
	t.Helper()
	c, err := NewCoin(hash.MIMC_BN254.New(), seed, nbChallenges)
	require.NoError(t, err)
	return c
}

func TestCoinDeterminism(t *testing.T) {
	seed := []byte("determinism seed")
	commitments := [][]byte{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}

	run := func() ([]string, []uint64) {
		c := newTestCoin(t, seed, len(commitments))
		challenges := make([]string, len(commitments))
		for i, cm := range commitments {
			require.NoError(t, c.Reseed(cm))
			e, err := c.DrawElement()
			require.NoError(t, err)
			challenges[i] = e.String()
		}
		indices, err := c.DrawIndices(10, 1024)
		require.NoError(t, err)
		return challenges, indices
	}

	c1, i1 := run()
	c2, i2 := run()
	require.Equal(t, c1, c2)
	require.Equal(t, i1, i2)
}

func TestCoinSeedSeparation(t *testing.T) {
	draw := func(seed []byte) string {
		c := newTestCoin(t, seed, 1)
		e, err := c.DrawElement()
		require.NoError(t, err)
		return e.String()
	}
	require.NotEqual(t, draw([]byte("seed-a")), draw([]byte("seed-b")))
}

func TestCoinReseedChangesChallenges(t *testing.T) {
	c1 := newTestCoin(t, nil, 2)
	c2 := newTestCoin(t, nil, 2)

	require.NoError(t, c1.Reseed([]byte("commitment-a")))
	require.NoError(t, c2.Reseed([]byte("commitment-b")))

	e1, err := c1.DrawElement()
	require.NoError(t, err)
	e2, err := c2.DrawElement()
	require.NoError(t, err)
	require.False(t, e1.Equal(&e2))
}

func TestDrawIndices(t *testing.T) {
	c := newTestCoin(t, []byte("indices"), 1)
	_, err := c.DrawElement()
	require.NoError(t, err)

	const count, bound = 64, 256
	indices, err := c.DrawIndices(count, bound)
	require.NoError(t, err)
	require.Len(t, indices, count)

	seen := make(map[uint64]struct{}, count)
	for _, idx := range indices {
		require.Less(t, idx, uint64(bound))
		_, dup := seen[idx]
		require.False(t, dup, "index %d drawn twice", idx)
		seen[idx] = struct{}{}
	}
}

func TestDrawIndicesFullRange(t *testing.T) {
	c := newTestCoin(t, nil, 0)
	indices, err := c.DrawIndices(16, 16)
	require.NoError(t, err)
	require.Len(t, indices, 16)
}

func TestCoinMisuse(t *testing.T) {
	t.Run("too-many-challenges", func(t *testing.T) {
		c := newTestCoin(t, nil, 1)
		_, err := c.DrawElement()
		require.NoError(t, err)
		_, err = c.DrawElement()
		require.Error(t, err)
		require.Error(t, c.Reseed([]byte("late")))
	})

	t.Run("indices-before-challenges", func(t *testing.T) {
		c := newTestCoin(t, nil, 2)
		_, err := c.DrawIndices(4, 64)
		require.Error(t, err)
	})

	t.Run("indices-twice", func(t *testing.T) {
		c := newTestCoin(t, nil, 0)
		_, err := c.DrawIndices(4, 64)
		require.NoError(t, err)
		_, err = c.DrawIndices(4, 64)
		require.Error(t, err)
	})

	t.Run("bad-parameters", func(t *testing.T) {
		c := newTestCoin(t, nil, 0)
		_, err := c.DrawIndices(0, 64)
		require.Error(t, err)
		_, err = c.DrawIndices(4, 63)
		require.Error(t, err)
		_, err = c.DrawIndices(65, 64)
		require.Error(t, err)
	})

	t.Run("negative-challenge-count", func(t *testing.T) {
		_, err := NewCoin(hash.MIMC_BN254.New(), nil, -1)
		require.Error(t, err)
	})
}
