// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package bind_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deckfill/deckfill/pkg/bind"
	cmdcore "github.com/deckfill/deckfill/pkg/cmd/core"
	"github.com/deckfill/deckfill/pkg/dataval"
	"github.com/deckfill/deckfill/pkg/directive"
	"github.com/deckfill/deckfill/pkg/expression"
	"github.com/deckfill/deckfill/pkg/filepos"
	"github.com/deckfill/deckfill/pkg/plan"
)

func catalogRoot() dataval.Value {
	return dataval.NewValue(map[string]interface{}{
		"Title": "Q3 Catalog",
		"Categories": []interface{}{
			map[string]interface{}{
				"Name": "Hardware",
				"Products": []interface{}{
					map[string]interface{}{"Name": "Widget", "Price": 9.5},
					map[string]interface{}{"Name": "Gadget", "Price": 1250.0},
					map[string]interface{}{"Name": "Gizmo", "Price": 42.0},
				},
			},
		},
		"Products": []interface{}{
			map[string]interface{}{"Name": "Anvil"},
			map[string]interface{}{"Name": "Bolt"},
			map[string]interface{}{"Name": "Crate"},
		},
	})
}

func mustExpr(t *testing.T, source string) expression.Expression {
	expr, err := expression.ParseOne(source, filepos.NewUnknownPosition())
	require.NoError(t, err)
	return expr
}

func newResolver(root dataval.Value) *bind.Resolver {
	return bind.NewResolver(root, &plan.SlidePlan{Aliases: plan.NewAliasTable()})
}

func TestResolveAbsolutePath(t *testing.T) {
	resolver := newResolver(catalogRoot())
	inst := &plan.SlideInstance{ParentIndex: -1}

	result := resolver.Resolve(mustExpr(t, "${Title}"), inst)
	require.False(t, result.Hidden)
	require.Equal(t, "Q3 Catalog", result.Text)

	result = resolver.Resolve(mustExpr(t, "${Products[1].Name}"), inst)
	require.Equal(t, "Bolt", result.Text)
}

func TestResolveOutOfBoundsHides(t *testing.T) {
	resolver := newResolver(catalogRoot())
	inst := &plan.SlideInstance{ParentIndex: -1}

	result := resolver.Resolve(mustExpr(t, "${Products[7].Name}"), inst)
	require.True(t, result.Hidden)
	require.Empty(t, result.Text)

	result = resolver.Resolve(mustExpr(t, "${Nowhere.Name}"), inst)
	require.True(t, result.Hidden)
}

func TestResolveOffsetShiftsDeepestIndex(t *testing.T) {
	resolver := newResolver(catalogRoot())

	// second page of a 2-per-slide layout: [0] becomes [2], [1] becomes [3]
	inst := &plan.SlideInstance{Offset: 2, ParentIndex: -1}

	result := resolver.Resolve(mustExpr(t, "${Products[0].Name}"), inst)
	require.Equal(t, "Crate", result.Text)

	result = resolver.Resolve(mustExpr(t, "${Products[1].Name}"), inst)
	require.True(t, result.Hidden)
}

func TestResolveContextJoin(t *testing.T) {
	resolver := newResolver(catalogRoot())
	inst := &plan.SlideInstance{
		Context:     plan.ContextPath{}.Child("Categories", 0),
		ParentIndex: -1,
	}

	result := resolver.Resolve(mustExpr(t, "${Categories>Name}"), inst)
	require.Equal(t, "Hardware", result.Text)

	result = resolver.Resolve(mustExpr(t, "${Categories>Products[1].Name}"), inst)
	require.Equal(t, "Gadget", result.Text)
}

func TestResolveContextEquivalence(t *testing.T) {
	resolver := newResolver(catalogRoot())
	inst := &plan.SlideInstance{
		Context:     plan.ContextPath{}.Child("Categories", 0),
		ParentIndex: 0,
	}

	joined := resolver.Resolve(mustExpr(t, "${Categories>Name}"), inst)
	explicit := resolver.Resolve(mustExpr(t, "${Categories[0].Name}"), inst)
	require.Equal(t, joined.Text, explicit.Text)
}

func TestResolveExplicitIndexOnContextRoot(t *testing.T) {
	resolver := newResolver(dataval.NewValue(map[string]interface{}{
		"Categories": []interface{}{
			map[string]interface{}{"Name": "First"},
			map[string]interface{}{"Name": "Second"},
		},
	}))
	inst := &plan.SlideInstance{
		Context:     plan.ContextPath{}.Child("Categories", 0),
		ParentIndex: -1,
	}

	// a bare join follows the context; an explicit index re-selects inside
	// the same collection, ignoring the context's index
	result := resolver.Resolve(mustExpr(t, "${Categories>Name}"), inst)
	require.Equal(t, "First", result.Text)

	result = resolver.Resolve(mustExpr(t, "${Categories[1]>Name}"), inst)
	require.Equal(t, "Second", result.Text)
}

func TestResolveFormat(t *testing.T) {
	resolver := newResolver(catalogRoot())
	inst := &plan.SlideInstance{
		Context:     plan.ContextPath{}.Child("Categories", 0),
		ParentIndex: -1,
	}

	result := resolver.Resolve(mustExpr(t, "${Categories>Products[1].Price:N0}"), inst)
	require.Equal(t, "1,250", result.Text)
	require.Empty(t, resolver.Diagnostics())
}

func TestResolveFormatFailureFallsBack(t *testing.T) {
	resolver := newResolver(catalogRoot())
	inst := &plan.SlideInstance{ParentIndex: -1}

	// a numeric format on a non-numeric value renders plainly and records a
	// diagnostic instead of failing the run
	result := resolver.Resolve(mustExpr(t, "${Title:N2}"), inst)
	require.False(t, result.Hidden)
	require.Equal(t, "Q3 Catalog", result.Text)
	require.Len(t, resolver.Diagnostics(), 1)
}

func TestResolveAliasedPath(t *testing.T) {
	aliases, diags := plan.BuildAliasTable(parseAliasDirs(t,
		"#alias: Categories[0].Products as Featured"))
	require.Empty(t, diags)

	resolver := bind.NewResolver(catalogRoot(), &plan.SlidePlan{Aliases: aliases})
	inst := &plan.SlideInstance{ParentIndex: -1}

	result := resolver.Resolve(mustExpr(t, "${Featured[2].Name}"), inst)
	require.Equal(t, "Gizmo", result.Text)
}

func TestResolveDeferredCall(t *testing.T) {
	resolver := newResolver(catalogRoot())
	inst := &plan.SlideInstance{ParentIndex: -1}

	result := resolver.Resolve(mustExpr(t, "${image(Products[1].Name)}"), inst)
	require.NotNil(t, result.Deferred)
	require.Equal(t, "image", result.Deferred.Name)
	require.Equal(t, []string{"Bolt"}, result.Deferred.Args)

	// unresolvable arguments pass through verbatim
	result = resolver.Resolve(mustExpr(t, "${chart(Missing.Series)}"), inst)
	require.NotNil(t, result.Deferred)
	require.Equal(t, []string{"Missing.Series"}, result.Deferred.Args)
}

func parseAliasDirs(t *testing.T, notes ...string) []directive.Directive {
	var result []directive.Directive
	for i, line := range notes {
		result = append(result, directive.Parse(line, i, cmdcore.NewPlainUI(false))...)
	}
	return result
}
