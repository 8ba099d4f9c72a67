// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"fmt"

	"github.com/deckfill/deckfill/pkg/directive"
	"github.com/deckfill/deckfill/pkg/expression"
	"github.com/deckfill/deckfill/pkg/orderedmap"
)

// AliasTable maps alias names to fully expanded data paths. Expansion
// happens once at build time, so Rewrite is single-step and idempotent.
type AliasTable struct {
	targets *orderedmap.Map // name -> expression.DataPath
}

func NewAliasTable() *AliasTable {
	return &AliasTable{targets: orderedmap.NewMap()}
}

// BuildAliasTable collects '#alias' directives in slide order. Aliases whose
// targets transitively reference themselves are rejected; each rejection is
// returned as a diagnostic, never an error.
func BuildAliasTable(dirs []directive.Directive) (*AliasTable, []string) {
	table := NewAliasTable()
	var diags []string

	raw := orderedmap.NewMap()
	for _, dir := range dirs {
		if dir.Type != directive.TypeAlias {
			continue
		}
		raw.Set(dir.AliasName, dir.CollectionPath)
	}

	raw.Iterate(func(name string, target interface{}) {
		expanded, err := expandAlias(name, target.(expression.DataPath), raw)
		if err != nil {
			diags = append(diags, err.Error())
			return
		}
		table.targets.Set(name, expanded)
	})

	return table, diags
}

func expandAlias(name string, target expression.DataPath, raw *orderedmap.Map) (expression.DataPath, error) {
	seen := map[string]bool{name: true}
	result := target.DeepCopy()

	for {
		rootTarget, ok := raw.Get(result.Root())
		if !ok {
			return result, nil
		}
		if seen[result.Root()] {
			return nil, fmt.Errorf("alias '%s' is transitively self-referential via '%s'", name, result.Root())
		}
		seen[result.Root()] = true
		result = splice(rootTarget.(expression.DataPath), result)
	}
}

// Rewrite replaces a path's leading token when it matches an alias: the
// alias target's segments substitute for the first segment, with the first
// segment's index carried onto the target's last segment. Applying Rewrite
// to an already-rewritten path is a no-op.
func (t *AliasTable) Rewrite(path expression.DataPath) expression.DataPath {
	if len(path) == 0 {
		return path
	}
	target, ok := t.targets.Get(path.Root())
	if !ok {
		return path
	}
	return splice(target.(expression.DataPath), path)
}

// Names returns alias names in declaration order.
func (t *AliasTable) Names() []string { return t.targets.Keys() }

// Target returns the expanded path for an alias name.
func (t *AliasTable) Target(name string) (expression.DataPath, bool) {
	target, ok := t.targets.Get(name)
	if !ok {
		return nil, false
	}
	return target.(expression.DataPath), true
}

func splice(target, path expression.DataPath) expression.DataPath {
	result := target.DeepCopy()

	head := path[0]
	if head.HasIndex {
		result[len(result)-1].Index = head.Index
		result[len(result)-1].HasIndex = true
	}

	rest := path[1:].DeepCopy()
	return append(result, rest...)
}
