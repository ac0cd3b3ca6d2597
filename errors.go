// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package fri

import "errors"

// Verification errors. These are reported by the verifier (or by proof
// parsing) when a proof is inconsistent; they are disjoint from the plain
// construction errors returned on caller misuse, which abort before any
// cryptographic check runs.
var (
	// ErrMalformedProof is returned when the proof structure disagrees
	// with the protocol options, the claimed degree, or the expected
	// commitments.
	ErrMalformedProof = errors.New("fri: malformed proof")

	// ErrCommitmentMismatch is returned when a recomputed coset digest
	// does not authenticate against a layer commitment.
	ErrCommitmentMismatch = errors.New("fri: coset digest does not match layer commitment")

	// ErrFoldingInconsistency is returned when an opened coset value
	// disagrees with the running folded value at that position.
	ErrFoldingInconsistency = errors.New("fri: opened value disagrees with folded value")

	// ErrRemainderMismatch is returned when the remainder polynomial does
	// not evaluate to the final folded value.
	ErrRemainderMismatch = errors.New("fri: remainder evaluation disagrees with folded value")

	// ErrRemainderDegreeTooHigh is returned when the remainder carries
	// more coefficients than the options or the claimed degree allow.
	ErrRemainderDegreeTooHigh = errors.New("fri: remainder degree exceeds bound")
)
