// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// manifest is the JSON sidecar written next to a proof. It carries
// everything the verifier needs besides the proof itself: the protocol
// parameters, the transcript seed, the commitments (communicated out of
// band in a real deployment) and the queried evaluations with their
// positions.
type manifest struct {
	FoldingFactor      int      `json:"foldingFactor"`
	BlowupFactor       int      `json:"blowupFactor"`
	MaxRemainderDegree int      `json:"maxRemainderDegree"`
	DomainSize         int      `json:"domainSize"`
	MaxDegree          int      `json:"maxDegree"`
	Seed               string   `json:"seed"`
	Commitments        []string `json:"commitments"`
	Positions          []uint64 `json:"positions"`
	Evaluations        []string `json:"evaluations"`
}

func (m *manifest) write(path string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func readManifest(path string) (*manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *manifest) decodeCommitments() ([][]byte, error) {
	out := make([][]byte, len(m.Commitments))
	for i, s := range m.Commitments {
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("commitment %d: %w", i, err)
		}
		out[i] = b
	}
	return out, nil
}

func (m *manifest) decodeEvaluations() ([]fr.Element, error) {
	if len(m.Evaluations) != len(m.Positions) {
		return nil, fmt.Errorf("%d evaluations for %d positions", len(m.Evaluations), len(m.Positions))
	}
	out := make([]fr.Element, len(m.Evaluations))
	for i, s := range m.Evaluations {
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("evaluation %d: %w", i, err)
		}
		out[i].SetBytes(b)
	}
	return out, nil
}

// readEvaluations parses a file of concatenated 32-byte big-endian field
// elements.
func readEvaluations(path string) ([]fr.Element, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 || len(b)%fr.Bytes != 0 {
		return nil, fmt.Errorf("%s: size %d is not a positive multiple of %d", path, len(b), fr.Bytes)
	}
	evals := make([]fr.Element, len(b)/fr.Bytes)
	for i := range evals {
		evals[i].SetBytes(b[i*fr.Bytes : (i+1)*fr.Bytes])
	}
	return evals, nil
}
