// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package transcript implements the Fiat-Shamir random coin used by the
// FRI prover and verifier. A Coin absorbs layer commitments and emits, in
// a fixed order, one field-element challenge per folding round followed by
// a set of pairwise-distinct query positions. Both sides construct their
// own Coin from the same seed and obtain byte-identical challenge streams.
package transcript

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	fiatshamir "github.com/consensys/gnark-crypto/fiat-shamir"
	"golang.org/x/crypto/blake2b"
)

// maxDrawRounds bounds the rejection sampling loop in DrawIndices.
const maxDrawRounds = 1000

var (
	errNoChallengeLeft = errors.New("transcript: all challenges have been drawn")
	errIndicesDrawn    = errors.New("transcript: query positions have already been drawn")
)

// Coin is an owned Fiat-Shamir transcript. It is not safe for concurrent
// use; each proof (and each verification) gets its own Coin.
type Coin struct {
	fs   *fiatshamir.Transcript
	ids  []string
	next int

	queryID   string
	queriesUp bool
}

// NewCoin creates a random coin able to serve nbChallenges field-element
// challenges followed by one batch of query positions. The seed, if any,
// is bound to the first challenge so that independent protocol instances
// derive independent challenge streams.
func NewCoin(h hash.Hash, seed []byte, nbChallenges int) (*Coin, error) {
	if nbChallenges < 0 {
		return nil, errors.New("transcript: negative challenge count")
	}
	ids := make([]string, nbChallenges+1)
	for i := 0; i < nbChallenges; i++ {
		ids[i] = fmt.Sprintf("x%d", i)
	}
	ids[nbChallenges] = "s0"

	c := &Coin{
		fs:      fiatshamir.NewTranscript(h, ids...),
		ids:     ids,
		queryID: ids[nbChallenges],
	}
	if len(seed) > 0 {
		if err := c.fs.Bind(ids[0], seed); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Reseed absorbs data (typically a layer commitment) into the transcript.
// The data is bound to the next challenge to be drawn.
func (c *Coin) Reseed(data []byte) error {
	if c.next >= len(c.ids)-1 {
		return errNoChallengeLeft
	}
	return c.fs.Bind(c.ids[c.next], data)
}

// DrawElement derives the next field-element challenge from everything
// absorbed so far.
func (c *Coin) DrawElement() (fr.Element, error) {
	var e fr.Element
	if c.next >= len(c.ids)-1 {
		return e, errNoChallengeLeft
	}
	b, err := c.fs.ComputeChallenge(c.ids[c.next])
	if err != nil {
		return e, err
	}
	c.next++
	e.SetBytes(b)
	return e, nil
}

// DrawIndices derives count pairwise-distinct indices in [0, bound).
// bound must be a power of two and count must not exceed it. It may be
// called once, after all field-element challenges have been drawn, so
// that the positions depend on every commitment of the protocol.
func (c *Coin) DrawIndices(count int, bound uint64) ([]uint64, error) {
	if c.queriesUp {
		return nil, errIndicesDrawn
	}
	if count <= 0 {
		return nil, errors.New("transcript: query count must be positive")
	}
	if bound == 0 || bound&(bound-1) != 0 {
		return nil, errors.New("transcript: index bound must be a power of two")
	}
	if uint64(count) > bound {
		return nil, fmt.Errorf("transcript: cannot draw %d distinct indices below %d", count, bound)
	}
	if c.next != len(c.ids)-1 {
		return nil, errors.New("transcript: challenges must be drawn before query positions")
	}

	seed, err := c.fs.ComputeChallenge(c.queryID)
	if err != nil {
		return nil, err
	}
	c.queriesUp = true

	// expand the seed into indices with a counter-mode XOF, keeping the
	// first count distinct values
	mask := bound - 1
	positions := make([]uint64, 0, count)
	drawn := bitset.New(uint(bound))
	buf := make([]byte, len(seed)+8)
	copy(buf, seed)

	for round := uint64(0); len(positions) < count; round++ {
		if round == maxDrawRounds {
			return nil, errors.New("transcript: failed to draw enough distinct indices")
		}
		binary.BigEndian.PutUint64(buf[len(seed):], round)
		digest := blake2b.Sum512(buf)
		for off := 0; off+8 <= len(digest) && len(positions) < count; off += 8 {
			idx := binary.BigEndian.Uint64(digest[off:off+8]) & mask
			if drawn.Test(uint(idx)) {
				continue
			}
			drawn.Set(uint(idx))
			positions = append(positions, idx)
		}
	}
	return positions, nil
}
