// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package deck

import (
	"encoding/json"
	"fmt"
)

// MemoryDeck is the in-memory Backend. The CLI loads template decks into it
// from a JSON document model; tests build it directly.
type MemoryDeck struct {
	slides       []*Slide
	hidden       []Element
	materialized []FunctionToken
	cloneSeq     int
}

func NewMemoryDeck(slides []*Slide) *MemoryDeck {
	d := &MemoryDeck{}
	for _, s := range slides {
		d.slides = append(d.slides, s)
	}
	d.renumber()
	return d
}

var _ Backend = &MemoryDeck{}

func (d *MemoryDeck) ListTemplateSlides() ([]*Slide, error) {
	return append([]*Slide(nil), d.slides...), nil
}

func (d *MemoryDeck) CloneSlide(src *Slide, insertPos int) (*Slide, error) {
	if insertPos < 0 || insertPos > len(d.slides) {
		return nil, fmt.Errorf("Expected insert position between 0 and %d, got %d", len(d.slides), insertPos)
	}

	d.cloneSeq++
	newSlide := src.DeepCopy()
	newSlide.ID = fmt.Sprintf("%s-copy-%d", src.ID, d.cloneSeq)

	d.slides = append(d.slides, nil)
	copy(d.slides[insertPos+1:], d.slides[insertPos:])
	d.slides[insertPos] = newSlide
	d.renumber()

	return newSlide, nil
}

func (d *MemoryDeck) RemoveSlide(s *Slide) error {
	for i, candidate := range d.slides {
		if candidate.ID == s.ID {
			d.slides = append(d.slides[:i], d.slides[i+1:]...)
			d.renumber()
			return nil
		}
	}
	return fmt.Errorf("Expected to find slide '%s'", s.ID)
}

func (d *MemoryDeck) HideOrRemoveElement(el Element) error {
	slide, err := d.findSlide(el.SlideID)
	if err != nil {
		return err
	}
	if el.Paragraph < 0 || el.Paragraph >= len(slide.Paragraphs) {
		return fmt.Errorf("Expected to find par %d in slide '%s'", el.Paragraph, el.SlideID)
	}

	par := slide.Paragraphs[el.Paragraph]
	if el.Run < 0 {
		for _, run := range par.Runs {
			run.Text = ""
		}
	} else {
		if el.Run >= len(par.Runs) {
			return fmt.Errorf("Expected to find par %d, run %d in slide '%s'", el.Paragraph, el.Run, el.SlideID)
		}
		par.Runs[el.Run].Text = ""
	}

	d.hidden = append(d.hidden, el)
	return nil
}

func (d *MemoryDeck) MaterializeFunctionResult(tok FunctionToken) error {
	d.materialized = append(d.materialized, tok)
	return nil
}

// Hidden returns elements hidden so far, in request order.
func (d *MemoryDeck) Hidden() []Element { return append([]Element(nil), d.hidden...) }

// Materialized returns deferred function results recorded so far.
func (d *MemoryDeck) Materialized() []FunctionToken {
	return append([]FunctionToken(nil), d.materialized...)
}

func (d *MemoryDeck) findSlide(id string) (*Slide, error) {
	for _, s := range d.slides {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("Expected to find slide '%s'", id)
}

// slide positions stay contiguous 0..N-1 after every mutation
func (d *MemoryDeck) renumber() {
	for i, s := range d.slides {
		s.Index = i
		if len(s.ID) == 0 {
			s.ID = fmt.Sprintf("slide-%d", i)
		}
	}
}

type deckDoc struct {
	Slides []slideDoc `json:"slides"`
}

type slideDoc struct {
	ID         string         `json:"id,omitempty"`
	Notes      string         `json:"notes,omitempty"`
	Paragraphs []paragraphDoc `json:"paragraphs"`
}

type paragraphDoc struct {
	Runs []string `json:"runs"`
}

// NewMemoryDeckFromJSON builds a MemoryDeck from the JSON document model:
//
//	{"slides": [{"notes": "#foreach: Products",
//	             "paragraphs": [{"runs": ["${Products[0].Name}"]}]}]}
func NewMemoryDeckFromJSON(bs []byte) (*MemoryDeck, error) {
	var doc deckDoc
	err := json.Unmarshal(bs, &doc)
	if err != nil {
		return nil, fmt.Errorf("Unmarshaling deck: %s", err)
	}

	var slides []*Slide
	for _, slideD := range doc.Slides {
		slide := &Slide{ID: slideD.ID, Notes: slideD.Notes}
		for _, parD := range slideD.Paragraphs {
			par := &Paragraph{}
			for _, text := range parD.Runs {
				par.Runs = append(par.Runs, &Run{Text: text})
			}
			slide.Paragraphs = append(slide.Paragraphs, par)
		}
		slides = append(slides, slide)
	}

	return NewMemoryDeck(slides), nil
}

// AsDocument converts the deck back into the plain document model for
// marshaling by the CLI.
func (d *MemoryDeck) AsDocument() interface{} {
	doc := map[string]interface{}{}
	slides := []interface{}{}

	for _, s := range d.slides {
		pars := []interface{}{}
		for _, par := range s.Paragraphs {
			runs := []interface{}{}
			for _, run := range par.Runs {
				runs = append(runs, run.Text)
			}
			pars = append(pars, map[string]interface{}{"runs": runs})
		}
		slideDoc := map[string]interface{}{"id": s.ID, "paragraphs": pars}
		if len(s.Notes) > 0 {
			slideDoc["notes"] = s.Notes
		}
		slides = append(slides, slideDoc)
	}

	doc["slides"] = slides
	return doc
}
