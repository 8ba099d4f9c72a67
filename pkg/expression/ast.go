// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package expression

import (
	"fmt"
	"strings"

	"github.com/deckfill/deckfill/pkg/filepos"
)

// Expression is one parsed ${...} binding. Immutable once parsed.
type Expression struct {
	Source              string // original text including ${ and }
	Path                DataPath
	Format              *FormatSpec
	UsesContextOperator bool
	IndexRefs           []IndexRef
	Position            *filepos.Position
}

// IndexRef records one Name[Index] pair seen in an expression. The analyzer
// infers per-slide pagination capacity from these.
type IndexRef struct {
	Name  string
	Index int
}

type DataPath []Segment

type Segment struct {
	Name     string
	Index    int // -1 when absent
	HasIndex bool
	// ContextJoin marks a segment joined to its predecessor with '>'
	// (resolved relative to the nearest enclosing iteration item).
	ContextJoin bool
	Call        *CallSegment
}

// CallSegment is an opaque function-call segment, e.g. image(Logo). Its
// arguments are extracted but the call itself is never interpreted by the
// core; materialization is the document backend's job.
type CallSegment struct {
	Name string
	Args []string
}

func (p DataPath) Root() string {
	if len(p) == 0 {
		return ""
	}
	return p[0].Name
}

// HasCall reports whether any segment is a function call.
func (p DataPath) HasCall() bool {
	for _, seg := range p {
		if seg.Call != nil {
			return true
		}
	}
	return false
}

func (p DataPath) String() string {
	var sb strings.Builder
	for i, seg := range p {
		if i > 0 {
			if seg.ContextJoin {
				sb.WriteString(">")
			} else {
				sb.WriteString(".")
			}
		}
		if seg.Call != nil {
			sb.WriteString(seg.Call.Name)
			sb.WriteString("(")
			sb.WriteString(strings.Join(seg.Call.Args, ", "))
			sb.WriteString(")")
			continue
		}
		sb.WriteString(seg.Name)
		if seg.HasIndex {
			sb.WriteString(fmt.Sprintf("[%d]", seg.Index))
		}
	}
	return sb.String()
}

// DeepCopy returns an independent copy of the path. Planner alias rewriting
// works on copies; parsed expressions stay untouched.
func (p DataPath) DeepCopy() DataPath {
	result := make(DataPath, len(p))
	copy(result, p)
	for i, seg := range p {
		if seg.Call != nil {
			callCopy := *seg.Call
			callCopy.Args = append([]string(nil), seg.Call.Args...)
			result[i].Call = &callCopy
		}
	}
	return result
}
