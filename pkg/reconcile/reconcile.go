// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

// Package reconcile repairs binding expressions fragmented across
// independently-styled text runs and redistributes resolved text back onto
// them.
//
// One logical string may be split across several runs, so a ${...}
// expression is either wholly inside one run (the common, cheap case) or
// spans run boundaries. The guarantee either way: no emitted run ever
// contains an unmatched '${': an expression is fully resolved or left
// verbatim.
package reconcile

import (
	"strings"
	"unicode/utf8"

	"github.com/deckfill/deckfill/pkg/deck"
	"github.com/deckfill/deckfill/pkg/expression"
)

// RunPatch is the final text for one run of the paragraph.
type RunPatch struct {
	Run  int
	Text string
}

// ResolveFunc resolves one complete ${...} source string. run is the index
// of the run wholly containing the expression, or -1 when the expression
// spans run boundaries. ok=false means the expression could not be handled
// and must stay verbatim.
type ResolveFunc func(source string, run int) (text string, ok bool)

// Reconcile computes patches for every run of a paragraph that needs
// rewriting. Runs whose text holds only literal content are left alone.
func Reconcile(par *deck.Paragraph, resolve ResolveFunc) []RunPatch {
	var patches []RunPatch

	handled := make([]bool, len(par.Runs))
	anyUnhandledFragment := false

	// stage 1: runs containing complete expressions are rewritten in place
	for runIdx, run := range par.Runs {
		spans := expression.Find(run.Text)
		if len(spans) > 0 {
			patches = append(patches, RunPatch{Run: runIdx, Text: spliceSpans(run.Text, spans, runIdx, resolve)})
			handled[runIdx] = true
			continue
		}
		if strings.Contains(run.Text, "${") {
			anyUnhandledFragment = true
		}
	}

	if !anyUnhandledFragment {
		return patches
	}

	// stage 2: concatenate the unhandled runs and resolve across boundaries
	var unhandledIdx []int
	var pieces []string
	for runIdx, run := range par.Runs {
		if !handled[runIdx] {
			unhandledIdx = append(unhandledIdx, runIdx)
			pieces = append(pieces, run.Text)
		}
	}

	joined := strings.Join(pieces, "")
	spans := expression.Find(joined)
	if len(spans) == 0 {
		return patches
	}

	resolved, valueSpans := spliceSpansTracking(joined, spans, -1, resolve)

	texts := redistribute(resolved, valueSpans, pieces)
	for i, runIdx := range unhandledIdx {
		patches = append(patches, RunPatch{Run: runIdx, Text: texts[i]})
	}

	return patches
}

func spliceSpans(text string, spans []expression.Span, runIdx int, resolve ResolveFunc) string {
	result, _ := spliceSpansTracking(text, spans, runIdx, resolve)
	return result
}

// spliceSpansTracking replaces spans with their resolved values and records
// where unsplittable content (resolved values and verbatim expressions)
// lands in the output.
func spliceSpansTracking(text string, spans []expression.Span, runIdx int, resolve ResolveFunc) (string, [][2]int) {
	var sb strings.Builder
	var protected [][2]int

	prev := 0
	for _, span := range spans {
		sb.WriteString(text[prev:span.Start])

		replacement := span.Source
		if resolvedText, ok := resolve(span.Source, runIdx); ok {
			replacement = resolvedText
		}

		start := sb.Len()
		sb.WriteString(replacement)
		protected = append(protected, [2]int{start, sb.Len()})

		prev = span.End
	}
	sb.WriteString(text[prev:])

	return sb.String(), protected
}

// redistribute splits resolved text back across len(pieces) runs: by
// original length ratios when no cut lands inside a protected span, then
// one value per run, then everything into the first run.
func redistribute(resolved string, protected [][2]int, pieces []string) []string {
	if len(pieces) == 1 {
		return []string{resolved}
	}

	if texts, ok := splitByRatio(resolved, protected, pieces); ok {
		return texts
	}
	if texts, ok := splitPerValue(resolved, protected, len(pieces)); ok {
		return texts
	}

	// last resort: first run carries everything
	texts := make([]string, len(pieces))
	texts[0] = resolved
	return texts
}

func splitByRatio(resolved string, protected [][2]int, pieces []string) ([]string, bool) {
	origTotal := 0
	for _, piece := range pieces {
		origTotal += len(piece)
	}
	if origTotal == 0 {
		return nil, false
	}

	texts := make([]string, len(pieces))
	cut := 0
	for i := range pieces {
		if i == len(pieces)-1 {
			texts[i] = resolved[cut:]
			break
		}

		next := cut + len(resolved)*len(pieces[i])/origTotal
		if next > len(resolved) {
			next = len(resolved)
		}
		// never cut a multibyte rune in half
		for next > cut && next < len(resolved) && !utf8.RuneStart(resolved[next]) {
			next--
		}
		if insideProtected(next, protected) {
			return nil, false
		}

		texts[i] = resolved[cut:next]
		cut = next
	}

	return texts, true
}

// splitPerValue puts each resolved value (with its preceding literal text)
// into its own run.
func splitPerValue(resolved string, protected [][2]int, runCount int) ([]string, bool) {
	if len(protected) > runCount {
		return nil, false
	}

	texts := make([]string, runCount)
	prev := 0
	for i, span := range protected {
		end := span[1]
		if i == len(protected)-1 {
			end = len(resolved)
		}
		texts[i] = resolved[prev:end]
		prev = end
	}

	return texts, true
}

func insideProtected(cut int, protected [][2]int) bool {
	for _, span := range protected {
		if cut > span[0] && cut < span[1] {
			return true
		}
	}
	return false
}
