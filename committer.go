// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package fri

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	gchash "github.com/consensys/gnark-crypto/hash"
	"golang.org/x/sync/errgroup"
)

// layerTree is the opening context of a committed layer: a Merkle tree
// whose leaves are coset digests. It is retained by the prover until
// proof assembly so that arbitrary subsets of positions can be opened
// without re-hashing the layer.
type layerTree struct {
	h     gchash.Hash
	f     int
	evals []fr.Element
	// levels[0] holds the leaf digests, the last level the root
	levels [][][]byte
}

// commitLayer groups evals into cosets of f consecutive values, hashes
// each coset into a leaf and binds all leaves into a single root digest.
// Leaves are hashed in parallel; the digest of coset c covers
// evals[c*f : (c+1)*f] in order.
func commitLayer(h gchash.Hash, evals []fr.Element, f int) ([]byte, *layerTree, error) {
	if len(evals) == 0 || len(evals)%f != 0 {
		return nil, nil, fmt.Errorf("fri: evaluation count %d is not a positive multiple of the folding factor %d", len(evals), f)
	}
	nbLeaves := len(evals) / f
	if !isPowerOfTwo(nbLeaves) {
		return nil, nil, fmt.Errorf("fri: coset count %d is not a power of two", nbLeaves)
	}

	leaves := make([][]byte, nbLeaves)
	var g errgroup.Group
	nbChunks := runtime.NumCPU()
	if nbChunks > nbLeaves {
		nbChunks = nbLeaves
	}
	chunkSize := (nbLeaves + nbChunks - 1) / nbChunks
	for start := 0; start < nbLeaves; start += chunkSize {
		start := start
		end := start + chunkSize
		if end > nbLeaves {
			end = nbLeaves
		}
		g.Go(func() error {
			hasher := h.New()
			for c := start; c < end; c++ {
				hasher.Reset()
				for j := 0; j < f; j++ {
					b := evals[c*f+j].Bytes()
					if _, err := hasher.Write(b[:]); err != nil {
						return err
					}
				}
				leaves[c] = hasher.Sum(nil)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	levels := [][][]byte{leaves}
	hasher := h.New()
	for len(levels[len(levels)-1]) > 1 {
		cur := levels[len(levels)-1]
		next := make([][]byte, len(cur)/2)
		for i := range next {
			hasher.Reset()
			if _, err := hasher.Write(cur[2*i]); err != nil {
				return nil, nil, err
			}
			if _, err := hasher.Write(cur[2*i+1]); err != nil {
				return nil, nil, err
			}
			next[i] = hasher.Sum(nil)
		}
		levels = append(levels, next)
	}

	t := &layerTree{h: h, f: f, evals: evals, levels: levels}
	return levels[len(levels)-1][0], t, nil
}

// open returns the coset containing position together with the
// authentication path binding its leaf to the root.
func (t *layerTree) open(position uint64) ([]fr.Element, [][]byte, error) {
	if position >= uint64(len(t.evals)) {
		return nil, nil, errors.New("fri: opening position out of range")
	}
	c := position / uint64(t.f)

	coset := make([]fr.Element, t.f)
	copy(coset, t.evals[c*uint64(t.f):(c+1)*uint64(t.f)])

	path := make([][]byte, 0, len(t.levels)-1)
	idx := c
	for _, lvl := range t.levels[:len(t.levels)-1] {
		path = append(path, lvl[idx^1])
		idx >>= 1
	}
	return coset, path, nil
}

// verifyOpening recomputes the digest of an opened coset and folds the
// authentication path up to the root.
func verifyOpening(h gchash.Hash, root []byte, cosetIndex uint64, coset []fr.Element, path [][]byte) bool {
	hasher := h.New()
	for j := range coset {
		b := coset[j].Bytes()
		if _, err := hasher.Write(b[:]); err != nil {
			return false
		}
	}
	node := hasher.Sum(nil)

	idx := cosetIndex
	for _, sibling := range path {
		hasher.Reset()
		var err error
		if idx&1 == 1 {
			_, err = hasher.Write(sibling)
			if err == nil {
				_, err = hasher.Write(node)
			}
		} else {
			_, err = hasher.Write(node)
			if err == nil {
				_, err = hasher.Write(sibling)
			}
		}
		if err != nil {
			return false
		}
		node = hasher.Sum(nil)
		idx >>= 1
	}
	return bytes.Equal(node, root)
}
