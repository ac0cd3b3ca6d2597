// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package fri

import (
	"bytes"
	"fmt"
	"math/bits"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr/polynomial"
)

// VerifierChannel exposes a proof to the verifier as a read-once message
// sequence, in the order an interactive verifier would receive them:
// layer commitments first, then the remainder, then per-layer openings.
// Construction validates the proof's structure against the externally
// communicated commitments, so the orchestrator only reasons about
// protocol semantics.
type VerifierChannel struct {
	proof       *Proof
	commitments [][]byte
	domainSize  int

	nextLayer      int
	remainderTaken bool
}

// NewVerifierChannel checks the proof against the expected per-layer
// commitments (the externally communicated ones are the source of truth)
// and the base domain size, and returns a channel positioned before the
// first layer. Any structural inconsistency is reported as
// ErrMalformedProof.
func NewVerifierChannel(proof *Proof, commitments [][]byte, domainSize, foldingFactor int) (*VerifierChannel, error) {
	if proof.FoldingFactor != foldingFactor {
		return nil, fmt.Errorf("%w: proof folding factor %d, expected %d", ErrMalformedProof, proof.FoldingFactor, foldingFactor)
	}
	if len(proof.Layers) != len(commitments) {
		return nil, fmt.Errorf("%w: proof has %d layers, expected %d", ErrMalformedProof, len(proof.Layers), len(commitments))
	}
	if domainSize <= 0 || !isPowerOfTwo(domainSize) {
		return nil, fmt.Errorf("%w: domain size %d is not a power of two", ErrMalformedProof, domainSize)
	}

	layerSize := domainSize
	f := uint64(foldingFactor)
	for i := range proof.Layers {
		layer := &proof.Layers[i]
		if !bytes.Equal(layer.Commitment, commitments[i]) {
			return nil, fmt.Errorf("%w: embedded commitment of layer %d disagrees with the communicated one", ErrMalformedProof, i)
		}
		if layerSize%foldingFactor != 0 {
			return nil, fmt.Errorf("%w: layer %d size %d is not a multiple of the folding factor", ErrMalformedProof, i, layerSize)
		}
		nbCosets := uint64(layerSize) / f
		pathLen := bits.TrailingZeros64(nbCosets)
		var prev uint64
		for j := range layer.Openings {
			o := &layer.Openings[j]
			if j > 0 && o.Position <= prev {
				return nil, fmt.Errorf("%w: openings of layer %d are not sorted by position", ErrMalformedProof, i)
			}
			prev = o.Position
			if o.Position >= nbCosets {
				return nil, fmt.Errorf("%w: opening position %d out of range in layer %d", ErrMalformedProof, o.Position, i)
			}
			if len(o.Coset) != foldingFactor {
				return nil, fmt.Errorf("%w: opening of layer %d has %d values, expected %d", ErrMalformedProof, i, len(o.Coset), foldingFactor)
			}
			if len(o.Path) != pathLen {
				return nil, fmt.Errorf("%w: opening of layer %d has a path of length %d, expected %d", ErrMalformedProof, i, len(o.Path), pathLen)
			}
		}
		layerSize /= foldingFactor
	}

	return &VerifierChannel{
		proof:       proof,
		commitments: commitments,
		domainSize:  domainSize,
	}, nil
}

// NumLayers returns the number of committed layers in the proof.
func (ch *VerifierChannel) NumLayers() int { return len(ch.proof.Layers) }

// DomainSize returns the size of the base evaluation domain.
func (ch *VerifierChannel) DomainSize() int { return ch.domainSize }

// TakeNextLayerCommitment returns the commitment of the next unread
// layer, advancing the cursor.
func (ch *VerifierChannel) TakeNextLayerCommitment() ([]byte, error) {
	if ch.nextLayer >= len(ch.commitments) {
		return nil, fmt.Errorf("%w: proof too short, no layer commitment left", ErrMalformedProof)
	}
	c := ch.commitments[ch.nextLayer]
	ch.nextLayer++
	return c, nil
}

// TakeRemainder returns the remainder polynomial. It may be taken only
// once, after all layer commitments have been consumed.
func (ch *VerifierChannel) TakeRemainder() (polynomial.Polynomial, error) {
	if ch.nextLayer < len(ch.commitments) {
		return nil, fmt.Errorf("%w: remainder taken before all layer commitments", ErrMalformedProof)
	}
	if ch.remainderTaken {
		return nil, fmt.Errorf("%w: remainder already taken", ErrMalformedProof)
	}
	ch.remainderTaken = true
	return ch.proof.Remainder, nil
}

// ReadLayerOpenings returns the opened cosets of the given layer for the
// given base-layer positions (indices into that layer, not coset
// indices), one coset per position in input order. A position whose
// coset is missing from the proof makes the proof malformed.
func (ch *VerifierChannel) ReadLayerOpenings(layer int, positions []uint64) ([]Opening, error) {
	if layer < 0 || layer >= len(ch.proof.Layers) {
		return nil, fmt.Errorf("%w: no layer %d", ErrMalformedProof, layer)
	}
	openings := ch.proof.Layers[layer].Openings
	f := uint64(ch.proof.FoldingFactor)

	res := make([]Opening, len(positions))
	for i, pos := range positions {
		c := pos / f
		k := sort.Search(len(openings), func(j int) bool { return openings[j].Position >= c })
		if k == len(openings) || openings[k].Position != c {
			return nil, fmt.Errorf("%w: layer %d has no opening for coset %d", ErrMalformedProof, layer, c)
		}
		res[i] = openings[k]
	}
	return res, nil
}
