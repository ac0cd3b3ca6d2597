// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package main

import "github.com/consensys/fri/cmd/fri/cmd"

func main() {
	cmd.Execute()
}
