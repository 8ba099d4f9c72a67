// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

// Package analysis walks a template deck's slides and produces the
// per-slide facts planning needs: classification (static, cloning source,
// range-window member), parsed expressions and directives, and inferred
// pagination capacity.
package analysis

import (
	"fmt"

	"github.com/deckfill/deckfill/pkg/deck"
	"github.com/deckfill/deckfill/pkg/directive"
	"github.com/deckfill/deckfill/pkg/expression"
)

type SlideType int

const (
	// TypeStatic slides carry no collection-bound content and no directive;
	// they pass through unchanged.
	TypeStatic SlideType = iota
	// TypeSource slides are cloning candidates: a directive, or an
	// expression referencing an indexed collection.
	TypeSource
	// TypeCloned slides belong to a range window; they are consumed as part
	// of the window's unit, not emitted on their own.
	TypeCloned
)

func (t SlideType) String() string {
	switch t {
	case TypeStatic:
		return "static"
	case TypeSource:
		return "source"
	case TypeCloned:
		return "cloned"
	}
	return fmt.Sprintf("unknown(%d)", int(t))
}

// SlideTemplate is the read-only analysis result for one template slide.
type SlideTemplate struct {
	SlideID string
	Index   int
	Type    SlideType

	Directives  []directive.Directive
	Expressions []expression.Expression

	// PrimaryCollection is the collection this slide paginates over: the
	// foreach path when present, otherwise the first indexed root seen.
	PrimaryCollection expression.DataPath

	// MaxArrayIndex is the highest index referencing PrimaryCollection
	// (-1 when none).
	MaxArrayIndex int

	// ItemsPerSlide is the pagination capacity: the explicit directive max
	// when given, otherwise MaxArrayIndex+1, floored at 1.
	ItemsPerSlide int

	// PaginationOffset is the foreach directive's offset option.
	PaginationOffset int
}

// Foreach returns the slide's foreach directive, if any.
func (t *SlideTemplate) Foreach() (directive.Directive, bool) {
	for _, dir := range t.Directives {
		if dir.Type == directive.TypeForeach {
			return dir, true
		}
	}
	return directive.Directive{}, false
}

// RangeBoundary returns the slide's range marker, if any.
func (t *SlideTemplate) RangeBoundary() (directive.Directive, bool) {
	for _, dir := range t.Directives {
		if dir.Type == directive.TypeRange {
			return dir, true
		}
	}
	return directive.Directive{}, false
}

// UsesContextOperator reports whether any expression on the slide joins
// through the nearest enclosing iteration item.
func (t *SlideTemplate) UsesContextOperator() bool {
	for _, expr := range t.Expressions {
		if expr.UsesContextOperator {
			return true
		}
	}
	return false
}

// Analysis is the full template analysis, in template order.
type Analysis struct {
	Templates []*SlideTemplate
	Slides    []*deck.Slide
}

// Template returns the analysis entry for a slide ID.
func (a *Analysis) Template(slideID string) (*SlideTemplate, bool) {
	for _, tpl := range a.Templates {
		if tpl.SlideID == slideID {
			return tpl, true
		}
	}
	return nil, false
}

// Slide returns the slide handle for a slide ID.
func (a *Analysis) Slide(slideID string) (*deck.Slide, bool) {
	for _, s := range a.Slides {
		if s.ID == slideID {
			return s, true
		}
	}
	return nil, false
}
