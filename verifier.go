// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package fri

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/consensys/fri/internal/utils"
	"github.com/consensys/fri/logger"
	"github.com/consensys/fri/transcript"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/polynomial"
	gchash "github.com/consensys/gnark-crypto/hash"
)

// Verifier checks that a committed evaluation vector is close to a
// polynomial of degree at most maxDegree. Construction replays the
// commit-then-challenge schedule against the coin, recovering the same
// folding challenges the prover saw; Verify then spot-checks the folding
// chain at the queried positions.
type Verifier struct {
	opts      Options
	h         gchash.Hash
	maxDegree int

	domainSize int
	numRounds  int

	alphas      []fr.Element
	commitments [][]byte
	remainder   polynomial.Polynomial
	gen         fr.Element
}

// NewVerifier consumes the layer commitments and the remainder from the
// channel, replaying them through the coin to recover the folding
// challenges. The remainder degree is checked against both the options'
// bound and the degree actually claimed, accounting for the folding
// already performed.
func NewVerifier(channel *VerifierChannel, coin *transcript.Coin, opts Options, h gchash.Hash, maxDegree int) (*Verifier, error) {
	if maxDegree < 0 {
		return nil, fmt.Errorf("fri: max degree must be non-negative, got %d", maxDegree)
	}
	domainSize := channel.DomainSize()
	if domainSize != (maxDegree+1)*opts.BlowupFactor() {
		return nil, fmt.Errorf("%w: domain size %d does not match degree bound %d at blowup %d",
			ErrMalformedProof, domainSize, maxDegree, opts.BlowupFactor())
	}
	numRounds, err := opts.NumRounds(domainSize)
	if err != nil {
		return nil, err
	}
	if numRounds != channel.NumLayers() {
		return nil, fmt.Errorf("%w: proof has %d layers, protocol requires %d", ErrMalformedProof, channel.NumLayers(), numRounds)
	}

	v := &Verifier{
		opts:        opts,
		h:           h,
		maxDegree:   maxDegree,
		domainSize:  domainSize,
		numRounds:   numRounds,
		alphas:      make([]fr.Element, numRounds),
		commitments: make([][]byte, numRounds),
	}

	for r := 0; r < numRounds; r++ {
		c, err := channel.TakeNextLayerCommitment()
		if err != nil {
			return nil, err
		}
		if err := coin.Reseed(c); err != nil {
			return nil, err
		}
		if v.alphas[r], err = coin.DrawElement(); err != nil {
			return nil, err
		}
		v.commitments[r] = c
	}

	if v.remainder, err = channel.TakeRemainder(); err != nil {
		return nil, err
	}
	// the true degree shrinks by a factor f per round, possibly below the
	// options' standing bound
	foldedBound := maxDegree + 1
	for r := 0; r < numRounds; r++ {
		foldedBound /= opts.FoldingFactor()
	}
	if foldedBound < 1 {
		foldedBound = 1
	}
	if len(v.remainder) > opts.RemainderSize() || len(v.remainder) > foldedBound {
		return nil, fmt.Errorf("%w: remainder has %d coefficients", ErrRemainderDegreeTooHigh, len(v.remainder))
	}

	v.gen = fft.NewDomain(uint64(domainSize)).Generator
	return v, nil
}

// Verify checks the folding chain from the queried base-layer
// evaluations down to the remainder. queriedEvaluations[i] is the value
// the caller obtained (and authenticated elsewhere) for the base domain
// at positions[i]. Positions are checked independently in parallel; the
// error of the first failing position, in input order, is returned.
func (v *Verifier) Verify(channel *VerifierChannel, queriedEvaluations []fr.Element, positions []uint64) error {
	if len(positions) == 0 {
		return errors.New("fri: no query positions")
	}
	if len(queriedEvaluations) != len(positions) {
		return fmt.Errorf("fri: %d evaluations for %d positions", len(queriedEvaluations), len(positions))
	}
	for _, pos := range positions {
		if pos >= uint64(v.domainSize) {
			return fmt.Errorf("fri: query position %d out of range [0, %d)", pos, v.domainSize)
		}
	}

	log := logger.Logger().With().Str("protocol", "fri").Int("queries", len(positions)).Logger()
	start := time.Now()

	f := uint64(v.opts.FoldingFactor())

	// positions at layer r, then the openings for them, layer by layer
	openings := make([][]Opening, v.numRounds)
	cur := positions
	for r := 0; r < v.numRounds; r++ {
		var err error
		if openings[r], err = channel.ReadLayerOpenings(r, cur); err != nil {
			return err
		}
		next := make([]uint64, len(cur))
		for i := range cur {
			next[i] = cur[i] / f
		}
		cur = next
	}

	// per-layer generators: gen^(f^r)
	gens := make([]fr.Element, v.numRounds+1)
	gens[0] = v.gen
	bigF := big.NewInt(int64(f))
	for r := 1; r <= v.numRounds; r++ {
		gens[r].Exp(gens[r-1], bigF)
	}

	errs := make([]error, len(positions))
	utils.Parallelize(len(positions), func(start, end int) {
		for i := start; i < end; i++ {
			errs[i] = v.verifyPosition(positions[i], queriedEvaluations[i], openings, gens)
		}
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	log.Debug().Dur("took", time.Since(start)).Msg("fri verifier done")
	return nil
}

func (v *Verifier) verifyPosition(position uint64, value fr.Element, openings [][]Opening, gens []fr.Element) error {
	f := uint64(v.opts.FoldingFactor())
	layerSize := v.domainSize
	pos := position
	cur := value

	for r := 0; r < v.numRounds; r++ {
		c := pos / f
		slot := pos % f

		// openings[r] is indexed by input position; find ours by the coset
		o := findOpening(openings[r], c)
		if o == nil {
			return fmt.Errorf("%w: layer %d has no opening for coset %d", ErrMalformedProof, r, c)
		}
		if !verifyOpening(v.h, v.commitments[r], c, o.Coset, o.Path) {
			return fmt.Errorf("%w (layer %d, position %d)", ErrCommitmentMismatch, r, pos)
		}
		if !o.Coset[slot].Equal(&cur) {
			return fmt.Errorf("%w (layer %d, position %d)", ErrFoldingInconsistency, r, pos)
		}

		xs := cosetPoints(&gens[r], layerSize, int(f), c)
		cur = foldCoset(o.Coset, xs, &v.alphas[r])
		pos = c
		layerSize /= int(f)
	}

	y := finalPoint(&gens[v.numRounds], layerSize, pos)
	var expected fr.Element
	if len(v.remainder) > 0 {
		expected = v.remainder.Eval(&y)
	}
	if !expected.Equal(&cur) {
		return fmt.Errorf("%w (position %d)", ErrRemainderMismatch, position)
	}
	return nil
}

func findOpening(openings []Opening, coset uint64) *Opening {
	for i := range openings {
		if openings[i].Position == coset {
			return &openings[i]
		}
	}
	return nil
}
