// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package fri

import (
	"errors"
	"fmt"
)

// Options are the public parameters of a FRI instance. They are agreed
// out of band, shared immutably by the prover and the verifier, and
// partially echoed inside the proof for self-description.
//
// The number of query positions is a separate, caller-supplied security
// parameter: the soundness error decreases exponentially with the number
// of queries, so callers should draw at least λ/log2(blowup) positions
// for a target soundness level of 2^-λ.
type Options struct {
	foldingFactor      int
	blowupFactor       int
	maxRemainderDegree int
}

// NewOptions validates and returns a set of protocol options.
// foldingFactor and blowupFactor must be powers of two, with
// blowupFactor >= foldingFactor.
func NewOptions(foldingFactor, blowupFactor, maxRemainderDegree int) (Options, error) {
	var o Options
	if !isPowerOfTwo(foldingFactor) || foldingFactor < 2 {
		return o, fmt.Errorf("fri: folding factor must be a power of two >= 2, got %d", foldingFactor)
	}
	if !isPowerOfTwo(blowupFactor) || blowupFactor < foldingFactor {
		return o, fmt.Errorf("fri: blowup factor must be a power of two >= folding factor, got %d", blowupFactor)
	}
	if maxRemainderDegree < 0 {
		return o, fmt.Errorf("fri: max remainder degree must be non-negative, got %d", maxRemainderDegree)
	}
	o.foldingFactor = foldingFactor
	o.blowupFactor = blowupFactor
	o.maxRemainderDegree = maxRemainderDegree
	return o, nil
}

// FoldingFactor returns the number of domain points combined in one round.
func (o Options) FoldingFactor() int { return o.foldingFactor }

// BlowupFactor returns the ratio between the evaluation domain size and
// the degree bound under test.
func (o Options) BlowupFactor() int { return o.blowupFactor }

// MaxRemainderDegree returns the degree bound of the final remainder
// polynomial.
func (o Options) MaxRemainderDegree() int { return o.maxRemainderDegree }

// RemainderSize returns the domain size at which folding stops.
func (o Options) RemainderSize() int { return o.maxRemainderDegree + 1 }

// NumRounds returns the number of folding rounds needed to reduce a
// domain of the given size to the remainder size. Folding must land on
// the remainder size exactly: a domain that is not reducible by a whole
// number of rounds is a configuration error.
func (o Options) NumRounds(domainSize int) (int, error) {
	if domainSize <= 0 || !isPowerOfTwo(domainSize) {
		return 0, fmt.Errorf("fri: domain size must be a power of two, got %d", domainSize)
	}
	rs := o.RemainderSize()
	if domainSize%rs != 0 {
		return 0, fmt.Errorf("fri: domain size %d is not a multiple of the remainder size %d", domainSize, rs)
	}
	q := domainSize / rs
	nbRounds := 0
	for q > 1 {
		if q%o.foldingFactor != 0 {
			return 0, fmt.Errorf("fri: domain size %d does not fold to remainder size %d by whole rounds of factor %d",
				domainSize, rs, o.foldingFactor)
		}
		q /= o.foldingFactor
		nbRounds++
	}
	if nbRounds == 0 {
		return 0, errors.New("fri: domain size equals the remainder size, nothing to fold")
	}
	return nbRounds, nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
