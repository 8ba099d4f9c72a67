// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

// Package directive parses the control directives carried in a template
// slide's notes side channel. Notes never render; they exist to steer
// planning:
//
//	#foreach: <path>[, max: <int>][, offset: <int>]
//	#range-begin: <path>
//	#range-end: <path>
//	#alias: <path> as <name>
//	#requires-version: <constraint>
//
// Unknown directive keywords and malformed lines are skipped with a
// diagnostic; parsing never fails.
package directive

import (
	"github.com/deckfill/deckfill/pkg/expression"
	"github.com/deckfill/deckfill/pkg/filepos"
)

type Type int

const (
	TypeForeach Type = iota
	TypeRange
	TypeAlias
	TypeRequiresVersion
)

type RangeBoundary int

const (
	RangeSingle RangeBoundary = iota
	RangeBegin
	RangeEnd
)

// Directive is one parsed control line. Immutable once parsed.
type Directive struct {
	Type              Type
	CollectionPath    expression.DataPath
	MaxItems          int // -1 when unset
	Offset            int
	AliasName         string
	RangeBoundary     RangeBoundary
	VersionConstraint string
	Position          *filepos.Position
}
