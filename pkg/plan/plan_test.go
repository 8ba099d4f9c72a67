// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package plan_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/k14s/difflib"
	"github.com/stretchr/testify/require"

	"github.com/deckfill/deckfill/pkg/analysis"
	cmdcore "github.com/deckfill/deckfill/pkg/cmd/core"
	"github.com/deckfill/deckfill/pkg/dataval"
	"github.com/deckfill/deckfill/pkg/deck"
	"github.com/deckfill/deckfill/pkg/directive"
	"github.com/deckfill/deckfill/pkg/expression"
	"github.com/deckfill/deckfill/pkg/plan"
)

func analyzeSlides(t *testing.T, specs ...[2]string) *analysis.Analysis {
	var slides []*deck.Slide
	for i, spec := range specs {
		par := &deck.Paragraph{}
		for _, text := range strings.Split(spec[1], "|") {
			par.Runs = append(par.Runs, &deck.Run{Text: text})
		}
		slides = append(slides, &deck.Slide{
			ID:         fmt.Sprintf("slide-%d", i),
			Index:      i,
			Notes:      spec[0],
			Paragraphs: []*deck.Paragraph{par},
		})
	}

	an, err := analysis.Analyze(slides, cmdcore.NewPlainUI(false))
	require.NoError(t, err)
	return an
}

func requirePlan(t *testing.T, result *plan.SlidePlan, expected string) {
	out := result.DebugString()
	if out != expected {
		t.Fatalf("Expected plan to match: %s",
			difflib.PPDiff(strings.Split(out, "\n"), strings.Split(expected, "\n")))
	}
}

func TestGenerateFlatPagination(t *testing.T) {
	an := analyzeSlides(t,
		[2]string{"", "Product Overview"},
		[2]string{"", "${Products[0].Name}|${Products[1].Name}"},
	)

	root := dataval.NewValue(map[string]interface{}{
		"Products": []interface{}{
			map[string]interface{}{"Name": "A"},
			map[string]interface{}{"Name": "B"},
			map[string]interface{}{"Name": "C"},
			map[string]interface{}{"Name": "D"},
			map[string]interface{}{"Name": "E"},
		},
	})

	result, err := plan.Generate(an, root)
	require.NoError(t, err)
	require.Empty(t, result.Diagnostics)

	requirePlan(t, result, `0: slide-0
1: slide-1
2: slide-1 offset=2
3: slide-1 offset=4
`)
}

func TestGenerateForeachMaxAndOffset(t *testing.T) {
	an := analyzeSlides(t,
		[2]string{"#foreach: Items, max: 2, offset: 1", "${Items[0]}"},
	)

	root := dataval.NewValue(map[string]interface{}{
		"Items": []interface{}{"a", "b", "c", "d", "e"},
	})

	result, err := plan.Generate(an, root)
	require.NoError(t, err)

	requirePlan(t, result, `0: slide-0 offset=1
1: slide-0 offset=3
`)
}

func TestGenerateFlatEmptyCollection(t *testing.T) {
	an := analyzeSlides(t,
		[2]string{"#foreach: Items", "${Items[0]}"},
	)

	root := dataval.NewValue(map[string]interface{}{
		"Items": []interface{}{},
	})

	result, err := plan.Generate(an, root)
	require.NoError(t, err)
	require.Empty(t, result.Instances)
}

func TestGenerateNested(t *testing.T) {
	an := analyzeSlides(t,
		[2]string{"#foreach: Categories", "${Categories[0].Name}"},
		[2]string{"", "${Categories>Products[0].Name}|${Categories>Products[1].Name}"},
	)

	root := dataval.NewValue(map[string]interface{}{
		"Categories": []interface{}{
			map[string]interface{}{
				"Name": "Hardware",
				"Products": []interface{}{
					map[string]interface{}{"Name": "Widget"},
				},
			},
			map[string]interface{}{
				"Name": "Software",
				"Products": []interface{}{
					map[string]interface{}{"Name": "App"},
					map[string]interface{}{"Name": "Suite"},
					map[string]interface{}{"Name": "Plugin"},
				},
			},
		},
	})

	result, err := plan.Generate(an, root)
	require.NoError(t, err)
	require.Equal(t, []string{"Categories", "Products"}, result.ContextChain)

	requirePlan(t, result, `0: slide-0 ctx=(Categories,0)
1: slide-1 ctx=(Categories,0) parent=0
2: slide-0 ctx=(Categories,1) offset=1
3: slide-1 ctx=(Categories,1) parent=1
4: slide-1 ctx=(Categories,1) offset=2 parent=1
`)
}

func TestGenerateNestedEmptyChild(t *testing.T) {
	an := analyzeSlides(t,
		[2]string{"#foreach: Categories", "${Categories[0].Name}"},
		[2]string{"", "${Categories>Products[0].Name}"},
	)

	root := dataval.NewValue(map[string]interface{}{
		"Categories": []interface{}{
			map[string]interface{}{"Name": "Empty", "Products": []interface{}{}},
		},
	})

	result, err := plan.Generate(an, root)
	require.NoError(t, err)

	requirePlan(t, result, `0: slide-0 ctx=(Categories,0)
1: slide-1 ctx=(Categories,0) parent=0 empty
`)
}

func TestGenerateRangeWindow(t *testing.T) {
	an := analyzeSlides(t,
		[2]string{"#range-begin: Products", "${Products[0].Name}"},
		[2]string{"", "static divider"},
		[2]string{"#range-end: Products", "${Products[0].Price}"},
	)

	root := dataval.NewValue(map[string]interface{}{
		"Products": []interface{}{
			map[string]interface{}{"Name": "A", "Price": 1},
			map[string]interface{}{"Name": "B", "Price": 2},
		},
	})

	result, err := plan.Generate(an, root)
	require.NoError(t, err)

	// window of three slides repeats once per item; the static divider never
	// accumulates an offset
	requirePlan(t, result, `0: slide-0
1: slide-1
2: slide-2
3: slide-0 offset=1
4: slide-1
5: slide-2 offset=1
`)
}

func TestGenerateRangeWindowWithNestedChild(t *testing.T) {
	an := analyzeSlides(t,
		[2]string{"#range-begin: Categories", "${Categories[0].Name}"},
		[2]string{"", "${Categories>Products[0].Name}|${Categories>Products[1].Name}"},
		[2]string{"#range-end: Categories", "category footer"},
	)

	root := dataval.NewValue(map[string]interface{}{
		"Categories": []interface{}{
			map[string]interface{}{
				"Name": "Hardware",
				"Products": []interface{}{
					map[string]interface{}{"Name": "Widget"},
				},
			},
			map[string]interface{}{
				"Name": "Software",
				"Products": []interface{}{
					map[string]interface{}{"Name": "App"},
					map[string]interface{}{"Name": "Suite"},
					map[string]interface{}{"Name": "Plugin"},
				},
			},
		},
	})

	result, err := plan.Generate(an, root)
	require.NoError(t, err)
	require.Empty(t, result.Diagnostics)
	require.Equal(t, []string{"Categories", "Products"}, result.ContextChain)

	// the whole window repeats per parent element; every member carries the
	// element's context path
	requirePlan(t, result, `0: slide-0 ctx=(Categories,0)
1: slide-1 ctx=(Categories,0) parent=0
2: slide-2 ctx=(Categories,0)
3: slide-0 ctx=(Categories,1) offset=1
4: slide-1 ctx=(Categories,1) parent=1
5: slide-1 ctx=(Categories,1) offset=2 parent=1
6: slide-2 ctx=(Categories,1)
`)
}

func TestGenerateUnmatchedRangeBegin(t *testing.T) {
	an := analyzeSlides(t,
		[2]string{"#range-begin: Products", "${Products[0].Name}"},
	)

	root := dataval.NewValue(map[string]interface{}{
		"Products": []interface{}{map[string]interface{}{"Name": "A"}},
	})

	result, err := plan.Generate(an, root)
	require.NoError(t, err)
	require.Empty(t, result.Instances)
	require.Len(t, result.Diagnostics, 2)
	require.Contains(t, result.Diagnostics[0], "no matching end")
}

func TestGenerateDeterministic(t *testing.T) {
	an := analyzeSlides(t,
		[2]string{"#foreach: Categories", "${Categories[0].Name}"},
		[2]string{"", "${Categories>Products[0].Name}"},
	)

	root := dataval.NewValue(map[string]interface{}{
		"Categories": []interface{}{
			map[string]interface{}{
				"Name":     "One",
				"Products": []interface{}{map[string]interface{}{"Name": "P"}},
			},
		},
	})

	first, err := plan.Generate(an, root)
	require.NoError(t, err)
	second, err := plan.Generate(an, root)
	require.NoError(t, err)

	require.Equal(t, first.DebugString(), second.DebugString())
}

func TestBuildAliasTable(t *testing.T) {
	dirs := parseDirectives(t,
		"#alias: Company.Eng.Staff as Engineers",
		"#alias: Engineers as Team",
	)

	table, diags := plan.BuildAliasTable(dirs)
	require.Empty(t, diags)
	require.Equal(t, []string{"Engineers", "Team"}, table.Names())

	rewritten := table.Rewrite(mustParsePath(t, "Team[2].Name"))
	require.Equal(t, "Company.Eng.Staff[2].Name", rewritten.String())

	// rewriting an already absolute path changes nothing
	again := table.Rewrite(rewritten)
	require.Equal(t, rewritten.String(), again.String())
}

func TestBuildAliasTableRejectsCycles(t *testing.T) {
	dirs := parseDirectives(t,
		"#alias: B.Items as A",
		"#alias: A.Items as B",
	)

	table, diags := plan.BuildAliasTable(dirs)
	require.Len(t, diags, 2)
	require.Contains(t, diags[0], "self-referential")
	require.Empty(t, table.Names())
}

func parseDirectives(t *testing.T, notes ...string) []directive.Directive {
	var result []directive.Directive
	for i, line := range notes {
		result = append(result, directive.Parse(line, i, cmdcore.NewPlainUI(false))...)
	}
	return result
}

func mustParsePath(t *testing.T, src string) expression.DataPath {
	path, err := expression.ParsePath(src)
	require.NoError(t, err)
	return path
}
