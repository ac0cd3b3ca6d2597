// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package fri

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func testProof(t *testing.T) *proofBundle {
	t.Helper()
	opts := mustOptions(t, 2, 4, 3)
	maxDegree := 15
	evals := bitReversedEvals(randomPoly(maxDegree), (maxDegree+1)*opts.BlowupFactor())
	return proveAt(t, opts, maxDegree, evals, []byte("serialization"), []uint64{0, 11, 42, 43})
}

func TestProofSerializationRoundTrip(t *testing.T) {
	b := testProof(t)

	var buf bytes.Buffer
	written, err := b.proof.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), written)

	var decoded Proof
	read, err := decoded.ReadFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, written, read)

	require.Empty(t, cmp.Diff(*b.proof, decoded))

	// the parsed proof verifies like the original
	restored := *b
	restored.proof = &decoded
	require.NoError(t, verifyBundle(&restored, []byte("serialization")))

	// and re-serializes byte-identically
	var buf2 bytes.Buffer
	_, err = decoded.WriteTo(&buf2)
	require.NoError(t, err)
	require.True(t, bytes.Equal(buf.Bytes(), buf2.Bytes()))
}

func TestProofReadFromRejects(t *testing.T) {
	b := testProof(t)
	var buf bytes.Buffer
	_, err := b.proof.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.Bytes()

	t.Run("truncated", func(t *testing.T) {
		for _, cut := range []int{0, 1, 4, 12, len(raw) / 2, len(raw) - 1} {
			var p Proof
			_, err := p.ReadFrom(bytes.NewReader(raw[:cut]))
			require.Error(t, err, "cut at %d", cut)
		}
	})

	t.Run("absurd-layer-count", func(t *testing.T) {
		bad := bytes.Clone(raw)
		bad[0] = 0xff
		var p Proof
		_, err := p.ReadFrom(bytes.NewReader(bad))
		require.ErrorIs(t, err, ErrMalformedProof)
	})

	t.Run("bad-folding-factor", func(t *testing.T) {
		bad := bytes.Clone(raw)
		bad[7] = 3
		var p Proof
		_, err := p.ReadFrom(bytes.NewReader(bad))
		require.ErrorIs(t, err, ErrMalformedProof)
	})

	t.Run("zero-digest-size", func(t *testing.T) {
		bad := bytes.Clone(raw)
		bad[8], bad[9], bad[10], bad[11] = 0, 0, 0, 0
		var p Proof
		_, err := p.ReadFrom(bytes.NewReader(bad))
		require.ErrorIs(t, err, ErrMalformedProof)
	})
}
