// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package fri implements the FRI low-degree testing protocol: a prover
// convinces a verifier that a function, given by its evaluations over a
// multiplicative-subgroup domain, is close to a polynomial of bounded
// degree, using a logarithmic number of folding rounds bound together by
// hash commitments and a Fiat-Shamir transcript.
//
// The transcript subpackage provides the Fiat-Shamir random coin shared
// by the prover and the verifier.
package fri

import "github.com/blang/semver/v4"

var Version = semver.MustParse("0.1.0")
