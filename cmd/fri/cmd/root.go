// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package cmd is a CLI tool around the FRI prover and verifier: it
// proves an evaluation file into a proof + manifest pair and verifies
// such a pair back.
package cmd

import (
	"fmt"
	"os"

	"github.com/consensys/fri"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "fri",
	Short:   "low degree testing over BN254",
	Version: buildString(),
}

// Execute runs the root command; errors have already been printed by the
// subcommands.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

func buildString() string {
	return fri.Version.String()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
