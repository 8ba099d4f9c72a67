// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

// Package deck defines the narrow verb set the engine needs from a document
// container (the Document Backend), the text-run tree it hands the engine,
// and an in-memory implementation used by the CLI and tests.
//
// The engine never touches container I/O directly: planning and resolution
// are pure, and only Apply-time code drives these verbs.
package deck

// Backend is the document container collaborator. Errors returned from
// these verbs are the only fatal error class in a generation run.
type Backend interface {
	ListTemplateSlides() ([]*Slide, error)
	CloneSlide(src *Slide, insertPos int) (*Slide, error)
	RemoveSlide(s *Slide) error
	HideOrRemoveElement(el Element) error
	MaterializeFunctionResult(tok FunctionToken) error
}

// Slide is one slide handle: a text-run tree plus the notes side channel.
type Slide struct {
	ID         string
	Index      int
	Paragraphs []*Paragraph
	Notes      string
}

type Paragraph struct {
	Runs []*Run
}

// Run is an independently-styled text fragment within a paragraph. A ${...}
// expression may be wholly inside one run or fragmented across several.
type Run struct {
	Text string
}

// Element addresses one run within a slide, for hide requests. Run of -1
// addresses the whole paragraph.
type Element struct {
	SlideID   string
	Paragraph int
	Run       int
}

// FunctionToken is a deferred function-call result: the core resolves the
// call's arguments but leaves materialization (e.g. embedding a binary
// asset) to the backend.
type FunctionToken struct {
	SlideID string
	Name    string
	Args    []string
}

func (s *Slide) DeepCopy() *Slide {
	result := &Slide{ID: s.ID, Index: s.Index, Notes: s.Notes}
	for _, par := range s.Paragraphs {
		parCopy := &Paragraph{}
		for _, run := range par.Runs {
			parCopy.Runs = append(parCopy.Runs, &Run{Text: run.Text})
		}
		result.Paragraphs = append(result.Paragraphs, parCopy)
	}
	return result
}
