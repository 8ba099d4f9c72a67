// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"fmt"
	"strings"
)

// ContextEntry names one iteration element: which collection, which index.
type ContextEntry struct {
	Collection string
	Index      int
}

// ContextPath identifies which iteration element a planned instance belongs
// to. It is a value, never a live reference into data: resolution always
// re-derives the element from (root data, ContextPath).
type ContextPath []ContextEntry

func (p ContextPath) String() string {
	var parts []string
	for _, entry := range p {
		parts = append(parts, fmt.Sprintf("(%s,%d)", entry.Collection, entry.Index))
	}
	return strings.Join(parts, "/")
}

func (p ContextPath) IsEmpty() bool { return len(p) == 0 }

// Deepest returns the innermost entry.
func (p ContextPath) Deepest() (ContextEntry, bool) {
	if len(p) == 0 {
		return ContextEntry{}, false
	}
	return p[len(p)-1], true
}

// Lookup returns the entry for a collection name.
func (p ContextPath) Lookup(collection string) (ContextEntry, bool) {
	for _, entry := range p {
		if entry.Collection == collection {
			return entry, true
		}
	}
	return ContextEntry{}, false
}

// Child extends the path by one entry, returning a fresh value.
func (p ContextPath) Child(collection string, index int) ContextPath {
	result := make(ContextPath, len(p), len(p)+1)
	copy(result, p)
	return append(result, ContextEntry{collection, index})
}
