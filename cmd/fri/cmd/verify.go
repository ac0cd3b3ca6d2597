// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/consensys/fri"
	"github.com/consensys/fri/transcript"
	"github.com/consensys/gnark-crypto/hash"
	"github.com/spf13/cobra"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify [file.proof]",
	Short: "verifies a low degree proof against its manifest",
	Run:   cmdVerify,
}

var fVerifyManifestPath string

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.PersistentFlags().StringVar(&fVerifyManifestPath, "manifest", "", "path to the manifest written by prove")
	_ = verifyCmd.MarkPersistentFlagRequired("manifest")
}

func cmdVerify(cmd *cobra.Command, args []string) {
	if len(args) < 1 {
		fmt.Println("missing proof path -- fri verify -h for help")
		os.Exit(-1)
	}
	proofPath := filepath.Clean(args[0])
	if !fileExists(proofPath) {
		fmt.Println(proofPath, "not found")
		os.Exit(-1)
	}
	manifestPath := filepath.Clean(fVerifyManifestPath)
	if !fileExists(manifestPath) {
		fmt.Println(manifestPath, "not found")
		os.Exit(-1)
	}

	m, err := readManifest(manifestPath)
	if err != nil {
		fmt.Println("can't parse manifest:", err)
		os.Exit(-1)
	}
	commitments, err := m.decodeCommitments()
	if err != nil {
		fmt.Println("can't parse manifest:", err)
		os.Exit(-1)
	}
	queried, err := m.decodeEvaluations()
	if err != nil {
		fmt.Println("can't parse manifest:", err)
		os.Exit(-1)
	}
	fmt.Printf("%-30s %-30s %-d queries\n", "loaded manifest", manifestPath, len(m.Positions))

	proofFile, err := os.Open(proofPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}
	var proof fri.Proof
	if _, err := proof.ReadFrom(proofFile); err != nil {
		fmt.Println("can't parse proof:", err)
		os.Exit(-1)
	}
	_ = proofFile.Close()
	fmt.Printf("%-30s %-30s %-d layers\n", "loaded proof", proofPath, proof.NumLayers())

	opts, err := fri.NewOptions(m.FoldingFactor, m.BlowupFactor, m.MaxRemainderDegree)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}

	start := time.Now()
	channel, err := fri.NewVerifierChannel(&proof, commitments, m.DomainSize, m.FoldingFactor)
	if err != nil {
		fmt.Println("proof rejected:", err)
		os.Exit(-1)
	}
	coin, err := transcript.NewCoin(hash.MIMC_BN254.New(), []byte(m.Seed), proof.NumLayers())
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}
	v, err := fri.NewVerifier(channel, coin, opts, hash.MIMC_BN254, m.MaxDegree)
	if err != nil {
		fmt.Println("proof rejected:", err)
		os.Exit(-1)
	}

	// the query positions must come out of the verifier's own coin; the
	// manifest copy is informational only
	positions, err := coin.DrawIndices(len(m.Positions), uint64(m.DomainSize))
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}
	for i := range positions {
		if positions[i] != m.Positions[i] {
			fmt.Println("proof rejected: manifest positions do not match the transcript")
			os.Exit(-1)
		}
	}

	if err := v.Verify(channel, queried, positions); err != nil {
		fmt.Println("proof rejected:", err)
		os.Exit(-1)
	}
	fmt.Printf("%-30s %-30s %-30s\n", "proof verified", proofPath, time.Since(start))
}
