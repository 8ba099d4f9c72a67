// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

// Package plan turns template analysis plus a root data object into an
// ordered, deterministic list of slide instances: which template slide to
// clone, under which iteration context, showing which page of items.
package plan

import (
	"fmt"
	"strings"
)

// SlideInstance is one planned output unit. Created during planning,
// consumed during resolution, discarded after emission.
type SlideInstance struct {
	SourceSlideID string
	Position      int
	Context       ContextPath
	// Offset shifts item indexes so successive instances show successive
	// pages of the paginated collection.
	Offset int
	// ParentIndex is the parent iteration index for nested child instances
	// (-1 otherwise).
	ParentIndex int
	// IsEmpty marks the single instance emitted for a zero-length nested
	// collection: absence is an explicit state, not silent omission.
	IsEmpty bool
}

// SlidePlan is the ordered result of one planning run.
type SlidePlan struct {
	Instances []*SlideInstance
	Aliases   *AliasTable
	// ContextChain names the nesting chain in nested mode, outermost first
	// (e.g. ["Categories", "Products"]).
	ContextChain []string
	Diagnostics  []string
}

func (p *SlidePlan) append(inst *SlideInstance) {
	inst.Position = len(p.Instances)
	p.Instances = append(p.Instances, inst)
}

func (p *SlidePlan) diag(format string, args ...interface{}) {
	p.Diagnostics = append(p.Diagnostics, fmt.Sprintf(format, args...))
}

// DebugString renders the plan one instance per line, for diagnostics and
// golden tests.
func (p *SlidePlan) DebugString() string {
	var sb strings.Builder
	for _, inst := range p.Instances {
		fmt.Fprintf(&sb, "%d: %s", inst.Position, inst.SourceSlideID)
		if !inst.Context.IsEmpty() {
			fmt.Fprintf(&sb, " ctx=%s", inst.Context.String())
		}
		if inst.Offset > 0 {
			fmt.Fprintf(&sb, " offset=%d", inst.Offset)
		}
		if inst.ParentIndex >= 0 {
			fmt.Fprintf(&sb, " parent=%d", inst.ParentIndex)
		}
		if inst.IsEmpty {
			sb.WriteString(" empty")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
