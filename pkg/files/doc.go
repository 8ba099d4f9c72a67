// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package files provides primitives for loading template decks and data-values
documents from various file or file-like Source's.

This allows the rest of deckfill code to process logically chunked streams of
data without becoming entangled in the details of how to read data.

deckfill processes files differently depending on their Type. For example,
File instances that are TypeYAML are decoded as YAML data values.
*/
package files
