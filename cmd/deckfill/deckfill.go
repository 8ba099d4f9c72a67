// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	uierrs "github.com/cppforlife/go-cli-ui/errors"

	"github.com/deckfill/deckfill/pkg/cmd"
)

func main() {
	command := cmd.NewDefaultDeckfillCmd()

	err := command.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "deckfill: Error: %s\n", uierrs.NewMultiLineError(err))
		os.Exit(1)
	}
}
