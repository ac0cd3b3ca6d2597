// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/consensys/fri"
	"github.com/consensys/fri/transcript"
	"github.com/consensys/gnark-crypto/hash"
	"github.com/spf13/cobra"
)

// proveCmd represents the prove command
var proveCmd = &cobra.Command{
	Use:   "prove [evaluations.bin]",
	Short: "proves that a committed evaluation vector is low degree",
	Run:   cmdProve,
}

var (
	fFolding            int
	fBlowup             int
	fMaxRemainderDegree int
	fQueries            int
	fSeed               string
	fProofPath          string
	fManifestPath       string
)

func init() {
	rootCmd.AddCommand(proveCmd)
	proveCmd.PersistentFlags().IntVar(&fFolding, "folding", 2, "folding factor, a power of two")
	proveCmd.PersistentFlags().IntVar(&fBlowup, "blowup", 8, "blowup factor, a power of two >= folding")
	proveCmd.PersistentFlags().IntVar(&fMaxRemainderDegree, "remainder", 7, "max degree of the remainder polynomial")
	proveCmd.PersistentFlags().IntVar(&fQueries, "queries", 30, "number of query positions")
	proveCmd.PersistentFlags().StringVar(&fSeed, "seed", "", "transcript seed")
	proveCmd.PersistentFlags().StringVar(&fProofPath, "proof", "", "output path for the proof -- default is ./[evaluations].proof")
	proveCmd.PersistentFlags().StringVar(&fManifestPath, "manifest", "", "output path for the manifest -- default is ./[evaluations].manifest.json")
}

func cmdProve(cmd *cobra.Command, args []string) {
	if len(args) < 1 {
		fmt.Println("missing evaluations path -- fri prove -h for help")
		os.Exit(-1)
	}
	evalsPath := filepath.Clean(args[0])
	if !fileExists(evalsPath) {
		fmt.Println(evalsPath, "not found")
		os.Exit(-1)
	}
	name := evalsPath[:len(evalsPath)-len(filepath.Ext(evalsPath))]

	evals, err := readEvaluations(evalsPath)
	if err != nil {
		fmt.Println("can't parse evaluations:", err)
		os.Exit(-1)
	}
	fmt.Printf("%-30s %-30s %-d evaluations\n", "loaded evaluations", evalsPath, len(evals))

	opts, err := fri.NewOptions(fFolding, fBlowup, fMaxRemainderDegree)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}
	nbRounds, err := opts.NumRounds(len(evals))
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}

	coin, err := transcript.NewCoin(hash.MIMC_BN254.New(), []byte(fSeed), nbRounds)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}

	start := time.Now()
	prover := fri.NewProver(opts, hash.MIMC_BN254)
	if err := prover.BuildLayers(coin, evals); err != nil {
		fmt.Println("error building layers:", err)
		os.Exit(-1)
	}
	commitments, err := prover.LayerCommitments()
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}
	positions, err := coin.DrawIndices(fQueries, uint64(len(evals)))
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}
	proof, err := prover.BuildProof(positions)
	if err != nil {
		fmt.Println("error building proof:", err)
		os.Exit(-1)
	}
	duration := time.Since(start)

	proofPath := name + ".proof"
	if fProofPath != "" {
		proofPath = fProofPath
	}
	manifestPath := name + ".manifest.json"
	if fManifestPath != "" {
		manifestPath = fManifestPath
	}

	proofFile, err := os.Create(proofPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}
	if _, err := proof.WriteTo(proofFile); err != nil {
		fmt.Println("error writing proof:", err)
		os.Exit(-1)
	}
	if err := proofFile.Close(); err != nil {
		fmt.Println("error:", err)
		os.Exit(-1)
	}

	m := manifest{
		FoldingFactor:      fFolding,
		BlowupFactor:       fBlowup,
		MaxRemainderDegree: fMaxRemainderDegree,
		DomainSize:         len(evals),
		MaxDegree:          len(evals)/fBlowup - 1,
		Seed:               fSeed,
		Commitments:        make([]string, len(commitments)),
		Positions:          positions,
		Evaluations:        make([]string, len(positions)),
	}
	for i, c := range commitments {
		m.Commitments[i] = hex.EncodeToString(c)
	}
	for i, pos := range positions {
		b := evals[pos].Bytes()
		m.Evaluations[i] = hex.EncodeToString(b[:])
	}
	if err := m.write(manifestPath); err != nil {
		fmt.Println("error writing manifest:", err)
		os.Exit(-1)
	}

	fmt.Printf("%-30s %-30s %-30s\n", "generated proof", proofPath, duration)
	fmt.Printf("%-30s %s\n", "generated manifest", manifestPath)
}
