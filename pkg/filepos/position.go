// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package filepos

import (
	"fmt"
)

type Position struct {
	slideNum *int // 0 based template slide index
	lineNum  *int // 1 based notes line
	locator  string
	known    bool
}

func NewSlidePosition(slideNum int) *Position {
	if slideNum < 0 {
		panic("Slide indexes are 0 based")
	}
	return &Position{slideNum: &slideNum, known: true}
}

// NewNotesPosition returns the Position of notes line "lineNum" within slide "slideNum".
func NewNotesPosition(slideNum, lineNum int) *Position {
	if lineNum <= 0 {
		panic("Notes lines are 1 based")
	}
	p := NewSlidePosition(slideNum)
	p.lineNum = &lineNum
	return p
}

// NewUnknownPosition is equivalent of zero value *Position
func NewUnknownPosition() *Position {
	return &Position{}
}

// SetLocator attaches a description of the text run the Position points into
// (e.g. "par 2, run 0").
func (p *Position) SetLocator(locator string) { p.locator = locator }

func (p *Position) GetLocator() string { return p.locator }

func (p *Position) IsKnown() bool { return p != nil && p.known }

func (p *Position) SlideNum() int {
	if !p.IsKnown() {
		panic("Position is unknown")
	}
	if p.slideNum == nil {
		panic("Position was not properly initialized")
	}
	return *p.slideNum
}

func (p *Position) HasNotesLine() bool { return p.IsKnown() && p.lineNum != nil }

func (p *Position) NotesLine() int {
	if !p.HasNotesLine() {
		panic("Position has no notes line")
	}
	return *p.lineNum
}

func (p *Position) AsString() string {
	return "slide " + p.AsCompactString()
}

func (p *Position) AsCompactString() string {
	if !p.IsKnown() {
		return "?"
	}
	result := fmt.Sprintf("%d", p.SlideNum())
	if p.lineNum != nil {
		result += fmt.Sprintf(", notes line %d", *p.lineNum)
	}
	if len(p.locator) > 0 {
		result += ", " + p.locator
	}
	return result
}

func (p *Position) DeepCopy() *Position {
	if p == nil {
		return nil
	}
	newPos := &Position{locator: p.locator, known: p.known}
	if p.slideNum != nil {
		slideVal := *p.slideNum
		newPos.slideNum = &slideVal
	}
	if p.lineNum != nil {
		lineVal := *p.lineNum
		newPos.lineNum = &lineVal
	}
	return newPos
}
