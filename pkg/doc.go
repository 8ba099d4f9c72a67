// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package pkg is the collection of packages that make up the implementation of
deckfill.

From top-down, deckfill code is layered in this way:

# Entry Point

deckfill is built into a single command-line executable:

	./cmd/deckfill

# Commands

The cobra command tree lives in pkg/cmd; the generate command (pkg/cmd/generate)
is both the root command and an explicit subcommand. pkg/cmd/core holds the
plain UI shared by commands.

# The Pipeline

Generation runs as a sequence of pure steps over an in-memory deck:

	pkg/deck       // the Document Backend verb set and the text-run tree
	pkg/analysis   // per-slide classification and pagination capacity
	pkg/plan       // ordered slide instances: clone what, under which context
	pkg/bind       // expression resolution against the data root
	pkg/reconcile  // resolved text redistributed onto fragmented runs
	pkg/engine     // ties the steps together; Apply drives the backend

# Template Surfaces

Two surfaces carry template syntax: ${...} binding expressions in slide text
(pkg/expression) and #-directives in the notes side channel (pkg/directive).

# Data

pkg/dataval is the structured value tree expressions bind against, built from
decoded YAML, JSON or TOML documents.

# Utilities

The remainder are domain-agnostic utilities:

	pkg/files      // input file plumbing
	pkg/filepos    // source positions for error messages
	pkg/orderedmap // deterministic string-keyed map
	pkg/version    // the engine version
*/
package pkg
