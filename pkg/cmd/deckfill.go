// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/cppforlife/cobrautil"
	"github.com/spf13/cobra"

	cmdgen "github.com/deckfill/deckfill/pkg/cmd/generate"
	"github.com/deckfill/deckfill/pkg/version"
)

type DeckfillOptions struct{}

func NewDefaultDeckfillOptions() *DeckfillOptions {
	return &DeckfillOptions{}
}

func NewDefaultDeckfillCmd() *cobra.Command {
	return NewDeckfillCmd(NewDefaultDeckfillOptions())
}

func NewDeckfillCmd(o *DeckfillOptions) *cobra.Command {
	cmd := cmdgen.NewCmd(cmdgen.NewOptions())

	cmd.Use = "deckfill"
	cmd.Aliases = nil
	cmd.Version = version.Version
	cmd.Short = "deckfill fills slide deck templates from data"
	cmd.Long = `deckfill plans and fills slide deck templates: ${...} binding expressions
in slide text are resolved against a hierarchical data object, and notes-side
directives (#foreach, #range-begin/#range-end, #alias) control how template
slides expand into output slides.`

	// Affects children as well
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	// Disable docs header
	cmd.DisableAutoGenTag = true

	cmd.AddCommand(NewVersionCmd(NewVersionOptions()))
	cmd.AddCommand(cmdgen.NewCmd(cmdgen.NewOptions()))

	// Reconfigure Commands
	cobrautil.VisitCommands(cmd, cobrautil.ReconfigureCmdWithSubcmd,
		cobrautil.DisallowExtraArgs, cobrautil.WrapRunEForCmd(cobrautil.ResolveFlagsForCmd))

	return cmd
}
