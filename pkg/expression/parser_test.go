// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package expression_test

import (
	"strings"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"

	"github.com/deckfill/deckfill/pkg/expression"
	"github.com/deckfill/deckfill/pkg/filepos"
)

func TestParseSimplePath(t *testing.T) {
	exprs := expression.Parse("Total: ${Products[0].Name}", filepos.NewSlidePosition(0))
	require.Len(t, exprs, 1)

	expr := exprs[0]
	require.Equal(t, "${Products[0].Name}", expr.Source)
	require.Equal(t, "Products[0].Name", expr.Path.String())
	require.False(t, expr.UsesContextOperator)
	require.Equal(t, []expression.IndexRef{{Name: "Products", Index: 0}}, expr.IndexRefs)
	require.Nil(t, expr.Format)
}

func TestParseContextOperator(t *testing.T) {
	exprs := expression.Parse("${Categories>Products[1].Name}", filepos.NewSlidePosition(0))
	require.Len(t, exprs, 1)

	expr := exprs[0]
	require.True(t, expr.UsesContextOperator)
	require.Equal(t, "Categories", expr.Path.Root())
	require.Equal(t, []expression.IndexRef{{Name: "Products", Index: 1}}, expr.IndexRefs)
}

func TestParseFormatSpec(t *testing.T) {
	exprs := expression.Parse("${Price:C}", filepos.NewSlidePosition(0))
	require.Len(t, exprs, 1)
	require.NotNil(t, exprs[0].Format)
	require.Equal(t, expression.FormatCurrency, exprs[0].Format.Kind)

	exprs = expression.Parse("${When:yyyy-MM-dd HH:mm}", filepos.NewSlidePosition(0))
	require.Len(t, exprs, 1)
	require.Equal(t, expression.FormatDate, exprs[0].Format.Kind)
	require.Equal(t, "yyyy-MM-dd HH:mm", exprs[0].Format.Pattern)
}

func TestParseFunctionCall(t *testing.T) {
	exprs := expression.Parse("${image(Logo, 120)}", filepos.NewSlidePosition(0))
	require.Len(t, exprs, 1)
	require.True(t, exprs[0].Path.HasCall())
	require.Equal(t, "image", exprs[0].Path[0].Call.Name)
	require.Equal(t, []string{"Logo", "120"}, exprs[0].Path[0].Call.Args)
}

func TestParseMultipleExpressions(t *testing.T) {
	exprs := expression.Parse("${A.B} and ${C[2]}", filepos.NewSlidePosition(0))
	require.Len(t, exprs, 2)
	require.Equal(t, "A.B", exprs[0].Path.String())
	require.Equal(t, "C[2]", exprs[1].Path.String())
}

func TestParseRecoversMalformed(t *testing.T) {
	// malformed brackets degrade to literal text, never an error
	for _, text := range []string{
		"${Products[.Name}",
		"${}",
		"${.}",
		"${no closing brace",
		"$ {Spaced}",
		"${Products[abc].Name}",
	} {
		exprs := expression.Parse(text, filepos.NewSlidePosition(0))
		require.Empty(t, exprs, "expected no expressions for %q", text)
	}
}

func TestFindSpans(t *testing.T) {
	spans := expression.Find("ab${X}cd${Y}")
	require.Len(t, spans, 2)
	require.Equal(t, "${X}", spans[0].Source)
	require.Equal(t, 2, spans[0].Start)
	require.Equal(t, 6, spans[0].End)
	require.Equal(t, "${Y}", spans[1].Source)

	require.Empty(t, expression.Find("no expressions here"))
	require.Empty(t, expression.Find("${unclosed"))
}

func TestParseNeverPanics(t *testing.T) {
	f := fuzz.New().NumElements(0, 200)

	for i := 0; i < 500; i++ {
		var text string
		f.Fuzz(&text)

		require.NotPanics(t, func() {
			expression.Parse(text, filepos.NewSlidePosition(0))
			expression.Find(text)
		})
	}

	// targeted nasties
	for _, text := range []string{
		"${${}}", "${a>}", "${>a}", "${a..b}", "${a[}", "${a]b}", "$}{",
		strings.Repeat("${", 1000), strings.Repeat("}", 1000),
	} {
		require.NotPanics(t, func() {
			expression.Parse(text, filepos.NewSlidePosition(0))
		})
	}
}
