// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package fri

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/consensys/fri/logger"
	"github.com/consensys/fri/transcript"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/polynomial"
	gchash "github.com/consensys/gnark-crypto/hash"
	"golang.org/x/sync/errgroup"
)

type proverState uint8

const (
	// no layers yet
	stateIdle proverState = iota
	// layers and remainder retained, waiting for query positions
	stateLayersBuilt
	// retained state released
	stateProofBuilt
)

type proverLayer struct {
	root []byte
	// tree retains the layer evaluations and their digests
	tree *layerTree
}

// Prover drives the commit-then-fold rounds of the protocol. It retains
// every layer and its opening context from BuildLayers until BuildProof,
// since any domain position may be queried. A Prover proves once; it is
// not safe for concurrent use.
type Prover struct {
	opts  Options
	h     gchash.Hash
	state proverState

	domainSize int
	layers     []proverLayer
	remainder  polynomial.Polynomial
}

// NewProver returns an idle prover for the given options, committing
// layers with the given hash function.
func NewProver(opts Options, h gchash.Hash) *Prover {
	return &Prover{opts: opts, h: h}
}

// BuildLayers runs the folding rounds: for each round it commits the
// current layer, absorbs the commitment into the coin, draws the folding
// challenge and folds. The evaluations must be in bit-reversed domain
// order (the fft.DIF output order) and their length must reduce to the
// remainder size by a whole number of rounds. The final layer is
// interpolated into the remainder polynomial and never committed.
//
// Commit-then-challenge is strictly sequential across rounds; any
// parallelism lives inside a round.
func (p *Prover) BuildLayers(coin *transcript.Coin, evaluations []fr.Element) error {
	if p.state != stateIdle {
		return errors.New("fri: layers already built")
	}
	n := len(evaluations)
	if n == 0 {
		return errors.New("fri: empty evaluation vector")
	}
	if n%p.opts.FoldingFactor() != 0 {
		return fmt.Errorf("fri: evaluation count %d is not a multiple of the folding factor %d", n, p.opts.FoldingFactor())
	}
	nbRounds, err := p.opts.NumRounds(n)
	if err != nil {
		return err
	}

	log := logger.Logger().With().Str("protocol", "fri").Int("domainSize", n).Int("rounds", nbRounds).Logger()
	start := time.Now()

	f := p.opts.FoldingFactor()
	bigF := big.NewInt(int64(f))
	gen := fft.NewDomain(uint64(n)).Generator

	p.layers = make([]proverLayer, 0, nbRounds)
	cur := make([]fr.Element, n)
	copy(cur, evaluations)

	for r := 0; r < nbRounds; r++ {
		root, tree, err := commitLayer(p.h, cur, f)
		if err != nil {
			return err
		}
		if err := coin.Reseed(root); err != nil {
			return err
		}
		alpha, err := coin.DrawElement()
		if err != nil {
			return err
		}
		next := foldLayer(cur, &alpha, f, &gen)
		p.layers = append(p.layers, proverLayer{root: root, tree: tree})
		cur = next
		gen.Exp(gen, bigF)
	}

	p.remainder = remainderPoly(cur)
	p.domainSize = n
	p.state = stateLayersBuilt

	log.Debug().Dur("took", time.Since(start)).Int("remainderLen", len(p.remainder)).Msg("fri layers built")
	return nil
}

// LayerCommitments returns the per-round commitments, in round order.
// It is only available between BuildLayers and BuildProof.
func (p *Prover) LayerCommitments() ([][]byte, error) {
	if p.state != stateLayersBuilt {
		return nil, errors.New("fri: no layers available")
	}
	roots := make([][]byte, len(p.layers))
	for i := range p.layers {
		roots[i] = p.layers[i].root
	}
	return roots, nil
}

// BuildProof opens every queried position at every retained layer and
// assembles the proof, then releases the retained state. Positions index
// the base domain and fold layer by layer by integer division by the
// folding factor; positions landing in the same coset share one opening.
func (p *Prover) BuildProof(positions []uint64) (*Proof, error) {
	if p.state == stateIdle {
		return nil, errors.New("fri: build layers before building a proof")
	}
	if p.state == stateProofBuilt {
		return nil, errors.New("fri: proof already built")
	}
	if len(positions) == 0 {
		return nil, errors.New("fri: no query positions")
	}
	for _, pos := range positions {
		if pos >= uint64(p.domainSize) {
			return nil, fmt.Errorf("fri: query position %d out of range [0, %d)", pos, p.domainSize)
		}
	}

	log := logger.Logger().With().Str("protocol", "fri").Int("queries", len(positions)).Logger()
	start := time.Now()

	f := uint64(p.opts.FoldingFactor())
	proof := &Proof{
		FoldingFactor: int(f),
		Layers:        make([]ProofLayer, len(p.layers)),
		Remainder:     p.remainder,
	}

	// fold the query positions layer by layer; the cosets of layer r are
	// the positions of layer r+1
	cosetsPerLayer := make([][]uint64, len(p.layers))
	cur := positions
	for r := range p.layers {
		cosetsPerLayer[r] = foldedPositions(cur, f)
		cur = cosetsPerLayer[r]
	}

	var g errgroup.Group
	for r := range p.layers {
		r := r
		g.Go(func() error {
			layer := &p.layers[r]
			openings := make([]Opening, len(cosetsPerLayer[r]))
			for i, c := range cosetsPerLayer[r] {
				coset, path, err := layer.tree.open(c * f)
				if err != nil {
					return err
				}
				openings[i] = Opening{Position: c, Coset: coset, Path: path}
			}
			proof.Layers[r] = ProofLayer{Commitment: layer.root, Openings: openings}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.layers = nil
	p.remainder = nil
	p.state = stateProofBuilt

	log.Debug().Dur("took", time.Since(start)).Msg("fri proof built")
	return proof, nil
}

// foldedPositions maps positions one layer down (division by f),
// deduplicated and sorted.
func foldedPositions(positions []uint64, f uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(positions))
	folded := make([]uint64, 0, len(positions))
	for _, pos := range positions {
		c := pos / f
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		folded = append(folded, c)
	}
	sort.Slice(folded, func(i, j int) bool { return folded[i] < folded[j] })
	return folded
}
