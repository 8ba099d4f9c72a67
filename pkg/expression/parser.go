// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package expression

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/deckfill/deckfill/pkg/filepos"
)

// Span marks one syntactically complete ${...} occurrence within text.
// Start/End are byte offsets; End points just past the closing brace.
type Span struct {
	Start  int
	End    int
	Source string
}

// Find locates every syntactically complete ${...} span in text. Fragments
// without a closing brace are not spans; callers leave them verbatim.
func Find(text string) []Span {
	var spans []Span

	var lastChar rune
	start := -1

	for i, currChar := range text {
		switch {
		case start < 0 && lastChar == '$' && currChar == '{':
			start = i - 1
		case start >= 0 && currChar == '}':
			spans = append(spans, Span{
				Start:  start,
				End:    i + 1,
				Source: text[start : i+1],
			})
			start = -1
		}
		lastChar = currChar
	}

	return spans
}

// Parse extracts every well-formed binding expression from text. Malformed
// matches are recovered by leaving them out (the text stays literal); Parse
// never fails.
func Parse(text string, pos *filepos.Position) []Expression {
	var result []Expression

	for _, span := range Find(text) {
		expr, err := parseSource(span.Source, pos)
		if err != nil {
			continue
		}
		result = append(result, expr)
	}

	return result
}

// ParseOne parses a single ${...} source string, as handed back by Find.
func ParseOne(source string, pos *filepos.Position) (Expression, error) {
	return parseSource(source, pos)
}

func parseSource(source string, pos *filepos.Position) (Expression, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(source, "${"), "}")

	pathStr, formatStr := splitFormat(inner)

	path, err := ParsePath(pathStr)
	if err != nil {
		return Expression{}, err
	}

	expr := Expression{
		Source:   source,
		Path:     path,
		Position: pos,
	}

	if len(formatStr) > 0 {
		expr.Format = NewFormatSpec(formatStr)
	}

	for _, seg := range path {
		if seg.ContextJoin {
			expr.UsesContextOperator = true
		}
		if seg.HasIndex {
			expr.IndexRefs = append(expr.IndexRefs, IndexRef{Name: seg.Name, Index: seg.Index})
		}
	}

	return expr, nil
}

// splitFormat splits "Path : FormatSpec" at the first ':' outside of
// parentheses. Format specs themselves may contain ':' (time patterns).
func splitFormat(inner string) (string, string) {
	depth := 0
	for i, ch := range inner {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		case ':':
			if depth == 0 {
				return strings.TrimSpace(inner[:i]), strings.TrimSpace(inner[i+1:])
			}
		}
	}
	return strings.TrimSpace(inner), ""
}

// ParsePath parses "Seg (('.'|'>') Seg)*" where Seg is Ident, Ident[Int],
// or Ident(args).
func ParsePath(str string) (DataPath, error) {
	if len(str) == 0 {
		return nil, fmt.Errorf("Expected non-empty path")
	}

	var path DataPath
	contextJoin := false
	rest := str

	for {
		seg, remainder, err := parseSegment(rest)
		if err != nil {
			return nil, err
		}
		seg.ContextJoin = contextJoin
		path = append(path, seg)

		if len(remainder) == 0 {
			return path, nil
		}

		switch remainder[0] {
		case '.':
			contextJoin = false
		case '>':
			contextJoin = true
		default:
			return nil, fmt.Errorf("Expected '.' or '>' at '%s' in path '%s'", remainder, str)
		}
		rest = remainder[1:]
	}
}

func parseSegment(str string) (Segment, string, error) {
	identEnd := 0
	for identEnd < len(str) && isIdentChar(rune(str[identEnd])) {
		identEnd++
	}
	if identEnd == 0 {
		return Segment{}, "", fmt.Errorf("Expected identifier at '%s'", str)
	}

	seg := Segment{Name: str[:identEnd], Index: -1}
	rest := str[identEnd:]

	switch {
	case strings.HasPrefix(rest, "["):
		closeIdx := strings.Index(rest, "]")
		if closeIdx < 0 {
			return Segment{}, "", fmt.Errorf("Missing ']' after '%s'", seg.Name)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(rest[1:closeIdx]))
		if err != nil || idx < 0 {
			return Segment{}, "", fmt.Errorf("Expected non-negative integer index after '%s'", seg.Name)
		}
		seg.Index = idx
		seg.HasIndex = true
		rest = rest[closeIdx+1:]

	case strings.HasPrefix(rest, "("):
		closeIdx := strings.Index(rest, ")")
		if closeIdx < 0 {
			return Segment{}, "", fmt.Errorf("Missing ')' after '%s'", seg.Name)
		}
		call := &CallSegment{Name: seg.Name}
		argsStr := strings.TrimSpace(rest[1:closeIdx])
		if len(argsStr) > 0 {
			for _, arg := range strings.Split(argsStr, ",") {
				call.Args = append(call.Args, strings.TrimSpace(arg))
			}
		}
		seg.Call = call
		rest = rest[closeIdx+1:]
	}

	return seg, rest, nil
}

func isIdentChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}
