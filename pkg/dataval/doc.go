// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package dataval models the hierarchical data object a template is bound
against as a small sum type: *Map (name to value, insertion ordered),
*Sequence (indexed values), or a plain Go scalar.

Member and Index are the only two lookup operations; they behave identically
over any shape of input data (YAML, JSON, TOML), which keeps the resolver
free of reflection and format-specific branches.
*/
package dataval
