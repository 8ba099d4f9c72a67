// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package directive

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/deckfill/deckfill/pkg/expression"
	"github.com/deckfill/deckfill/pkg/filepos"
	"github.com/deckfill/deckfill/pkg/files"
)

// Parse extracts directives from one slide's notes text. slideNum positions
// diagnostics; ui receives them.
func Parse(notes string, slideNum int, ui files.UI) []Directive {
	var result []Directive

	for lineIdx, line := range strings.Split(notes, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#") {
			continue
		}

		pos := filepos.NewNotesPosition(slideNum, lineIdx+1)

		colonIdx := strings.Index(line, ":")
		if colonIdx < 0 {
			ui.Debugf("directive: skipping malformed line at %s: missing ':'\n", pos.AsString())
			continue
		}

		keyword := strings.TrimSpace(line[1:colonIdx])
		args := strings.TrimSpace(line[colonIdx+1:])

		var dir Directive
		var err error

		switch keyword {
		case "foreach":
			dir, err = parseForeach(args)
		case "range-begin":
			dir, err = parseRange(args, RangeBegin)
		case "range-end":
			dir, err = parseRange(args, RangeEnd)
		case "alias":
			dir, err = parseAlias(args)
		case "requires-version":
			dir, err = parseRequiresVersion(args)
		default:
			ui.Debugf("directive: skipping unknown keyword '#%s' at %s\n", keyword, pos.AsString())
			continue
		}

		if err != nil {
			ui.Debugf("directive: skipping '#%s' at %s: %s\n", keyword, pos.AsString(), err)
			continue
		}

		dir.Position = pos
		result = append(result, dir)
	}

	return result
}

func parseForeach(args string) (Directive, error) {
	dir := Directive{Type: TypeForeach, MaxItems: -1}

	parts := strings.Split(args, ",")
	if len(parts) == 0 || len(strings.TrimSpace(parts[0])) == 0 {
		return Directive{}, fmt.Errorf("Expected collection path")
	}

	path, err := expression.ParsePath(strings.TrimSpace(parts[0]))
	if err != nil {
		return Directive{}, err
	}
	dir.CollectionPath = path

	for _, part := range parts[1:] {
		key, val, err := splitOption(part)
		if err != nil {
			return Directive{}, err
		}

		num, err := strconv.Atoi(val)
		if err != nil || num < 0 {
			return Directive{}, fmt.Errorf("Expected non-negative integer for '%s', got '%s'", key, val)
		}

		switch key {
		case "max":
			dir.MaxItems = num
		case "offset":
			dir.Offset = num
		default:
			return Directive{}, fmt.Errorf("Unknown option '%s'", key)
		}
	}

	return dir, nil
}

func parseRange(args string, boundary RangeBoundary) (Directive, error) {
	path, err := expression.ParsePath(strings.TrimSpace(args))
	if err != nil {
		return Directive{}, err
	}
	return Directive{Type: TypeRange, CollectionPath: path, MaxItems: -1, RangeBoundary: boundary}, nil
}

func parseAlias(args string) (Directive, error) {
	asIdx := strings.Index(args, " as ")
	if asIdx < 0 {
		return Directive{}, fmt.Errorf("Expected '<path> as <name>'")
	}

	path, err := expression.ParsePath(strings.TrimSpace(args[:asIdx]))
	if err != nil {
		return Directive{}, err
	}

	name := strings.TrimSpace(args[asIdx+len(" as "):])
	if len(name) == 0 {
		return Directive{}, fmt.Errorf("Expected alias name")
	}

	return Directive{Type: TypeAlias, CollectionPath: path, MaxItems: -1, AliasName: name}, nil
}

func parseRequiresVersion(args string) (Directive, error) {
	if len(args) == 0 {
		return Directive{}, fmt.Errorf("Expected version constraint")
	}
	return Directive{Type: TypeRequiresVersion, MaxItems: -1, VersionConstraint: args}, nil
}

func splitOption(part string) (string, string, error) {
	pieces := strings.SplitN(part, ":", 2)
	if len(pieces) != 2 {
		return "", "", fmt.Errorf("Expected '<option>: <value>' in '%s'", part)
	}
	return strings.TrimSpace(pieces[0]), strings.TrimSpace(pieces[1]), nil
}
