// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package filepos provides the concept of Position: a location within a slide
deck template (a slide index, and optionally a notes line or a run locator
within that slide).

Positions are crucial when reporting diagnostics to the user. A skipped
directive or a recovered expression is only actionable if the message says
which slide and which notes line it came from.

Not all Positions point within a template (e.g. expressions parsed from
in-memory text). The zero value of Position (created via
NewUnknownPosition()) represents this case.
*/
package filepos
