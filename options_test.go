// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package fri

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewOptions(t *testing.T) {
	cases := []struct {
		name               string
		folding, blowup    int
		maxRemainderDegree int
		ok                 bool
	}{
		{"minimal", 2, 2, 0, true},
		{"typical", 2, 8, 7, true},
		{"wide-folding", 16, 16, 255, true},
		{"folding-one", 1, 4, 3, false},
		{"folding-not-pow2", 3, 4, 3, false},
		{"folding-zero", 0, 4, 3, false},
		{"blowup-below-folding", 4, 2, 3, false},
		{"blowup-not-pow2", 2, 6, 3, false},
		{"negative-remainder", 2, 4, -1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOptions(tc.folding, tc.blowup, tc.maxRemainderDegree)
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestNumRounds(t *testing.T) {
	t.Run("scenario-32k-f2", func(t *testing.T) {
		// 2^15 evaluations down to 2^3: 12 halvings
		opts := mustOptions(t, 2, 8, 7)
		n, err := opts.NumRounds(1 << 15)
		require.NoError(t, err)
		require.Equal(t, 12, n)
	})

	t.Run("scenario-32k-f4", func(t *testing.T) {
		// 2^15 / 2^8 = 2^7 is not a power of 4
		opts := mustOptions(t, 4, 4, 255)
		_, err := opts.NumRounds(1 << 15)
		require.Error(t, err)

		n, err := opts.NumRounds(1 << 16)
		require.NoError(t, err)
		require.Equal(t, 4, n)
	})

	t.Run("not-pow2-domain", func(t *testing.T) {
		opts := mustOptions(t, 2, 4, 3)
		_, err := opts.NumRounds(48)
		require.Error(t, err)
	})

	t.Run("not-a-multiple", func(t *testing.T) {
		opts := mustOptions(t, 2, 4, 7)
		_, err := opts.NumRounds(4)
		require.Error(t, err)
	})

	t.Run("nothing-to-fold", func(t *testing.T) {
		opts := mustOptions(t, 2, 4, 7)
		_, err := opts.NumRounds(8)
		require.Error(t, err)
	})
}

func TestOptionsAccessors(t *testing.T) {
	opts := mustOptions(t, 4, 8, 15)
	require.Equal(t, 4, opts.FoldingFactor())
	require.Equal(t, 8, opts.BlowupFactor())
	require.Equal(t, 15, opts.MaxRemainderDegree())
	require.Equal(t, 16, opts.RemainderSize())
}
