// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

// Package engine runs the full generation pipeline: parse and analyze the
// template deck, plan slide instances against the data root, resolve every
// expression per instance, and reconcile resolved text back onto runs.
//
// Generate is pure: it mutates nothing and performs no I/O. Apply is the
// separate step that drives the document backend verbs; backend failures
// are the only fatal error class and they surface there.
package engine

import (
	"fmt"

	"github.com/deckfill/deckfill/pkg/analysis"
	"github.com/deckfill/deckfill/pkg/bind"
	"github.com/deckfill/deckfill/pkg/dataval"
	"github.com/deckfill/deckfill/pkg/deck"
	"github.com/deckfill/deckfill/pkg/expression"
	"github.com/deckfill/deckfill/pkg/files"
	"github.com/deckfill/deckfill/pkg/plan"
	"github.com/deckfill/deckfill/pkg/reconcile"
)

// ParagraphPatch carries the reconciled run texts for one paragraph.
type ParagraphPatch struct {
	Paragraph int
	Runs      []reconcile.RunPatch
}

// SlideOutput is one planned output slide with everything Apply needs:
// which template slide to clone, the resolved text, and the hide and
// deferred-call lists.
type SlideOutput struct {
	SourceSlideID string
	Position      int
	Context       plan.ContextPath
	Patches       []ParagraphPatch
	Hides         []deck.Element
	Deferred      []deck.FunctionToken
	IsEmpty       bool
}

// GenerateResult is the pure planning+resolution output, prior to any
// backend mutation.
type GenerateResult struct {
	Outputs     []SlideOutput
	Plan        *plan.SlidePlan
	Diagnostics []string
}

// Generate computes the ordered slide outputs for (template deck, data
// root) without touching the backend beyond listing template slides.
func Generate(backend deck.Backend, root dataval.Value, ui files.UI) (*GenerateResult, error) {
	slides, err := backend.ListTemplateSlides()
	if err != nil {
		return nil, fmt.Errorf("Listing template slides: %s", err)
	}

	an, err := analysis.Analyze(slides, ui)
	if err != nil {
		return nil, err
	}

	slidePlan, err := plan.Generate(an, root)
	if err != nil {
		return nil, err
	}

	resolver := bind.NewResolver(root, slidePlan)
	defer resolver.Clear()

	result := &GenerateResult{Plan: slidePlan}
	result.Diagnostics = append(result.Diagnostics, slidePlan.Diagnostics...)

	for _, inst := range slidePlan.Instances {
		output, err := resolveInstance(an, resolver, inst)
		if err != nil {
			return nil, err
		}
		result.Outputs = append(result.Outputs, output)
	}

	result.Diagnostics = append(result.Diagnostics, resolver.Diagnostics()...)

	return result, nil
}

func resolveInstance(an *analysis.Analysis, resolver *bind.Resolver, inst *plan.SlideInstance) (SlideOutput, error) {
	slide, ok := an.Slide(inst.SourceSlideID)
	if !ok {
		return SlideOutput{}, fmt.Errorf("Expected to find planned slide '%s'", inst.SourceSlideID)
	}

	output := SlideOutput{
		SourceSlideID: inst.SourceSlideID,
		Position:      inst.Position,
		Context:       inst.Context,
		IsEmpty:       inst.IsEmpty,
	}

	for parIdx, par := range slide.Paragraphs {
		parIdx := parIdx

		runPatches := reconcile.Reconcile(par, func(source string, run int) (string, bool) {
			expr, err := expression.ParseOne(source, nil)
			if err != nil {
				// malformed; stays literal
				return "", false
			}

			res := resolver.Resolve(expr, inst)

			switch {
			case res.Deferred != nil:
				output.Deferred = append(output.Deferred, deck.FunctionToken{
					SlideID: inst.SourceSlideID,
					Name:    res.Deferred.Name,
					Args:    res.Deferred.Args,
				})
				return "", true

			case res.Hidden:
				output.Hides = append(output.Hides, deck.Element{
					SlideID:   inst.SourceSlideID,
					Paragraph: parIdx,
					Run:       run,
				})
				return "", true
			}

			return res.Text, true
		})

		if len(runPatches) > 0 {
			output.Patches = append(output.Patches, ParagraphPatch{Paragraph: parIdx, Runs: runPatches})
		}
	}

	return output, nil
}

// Apply drives the backend: clone each planned slide in order, patch its
// runs, hide unavailable elements, materialize deferred function results,
// and finally remove the template slides that served as sources.
func Apply(backend deck.Backend, result *GenerateResult) error {
	templateSlides, err := backend.ListTemplateSlides()
	if err != nil {
		return fmt.Errorf("Listing template slides: %s", err)
	}

	bySourceID := map[string]*deck.Slide{}
	for _, s := range templateSlides {
		bySourceID[s.ID] = s
	}

	insertBase := len(templateSlides)

	for i, output := range result.Outputs {
		src, ok := bySourceID[output.SourceSlideID]
		if !ok {
			return fmt.Errorf("Expected to find template slide '%s'", output.SourceSlideID)
		}

		clone, err := backend.CloneSlide(src, insertBase+i)
		if err != nil {
			return fmt.Errorf("Cloning slide '%s': %s", src.ID, err)
		}

		for _, parPatch := range output.Patches {
			if parPatch.Paragraph >= len(clone.Paragraphs) {
				return fmt.Errorf("Expected paragraph %d in slide '%s'", parPatch.Paragraph, clone.ID)
			}
			par := clone.Paragraphs[parPatch.Paragraph]
			for _, runPatch := range parPatch.Runs {
				if runPatch.Run >= len(par.Runs) {
					return fmt.Errorf("Expected run %d in slide '%s'", runPatch.Run, clone.ID)
				}
				par.Runs[runPatch.Run].Text = runPatch.Text
			}
		}

		for _, hide := range output.Hides {
			hide.SlideID = clone.ID
			err := backend.HideOrRemoveElement(hide)
			if err != nil {
				return fmt.Errorf("Hiding element in slide '%s': %s", clone.ID, err)
			}
		}

		for _, tok := range output.Deferred {
			tok.SlideID = clone.ID
			err := backend.MaterializeFunctionResult(tok)
			if err != nil {
				return fmt.Errorf("Materializing function result in slide '%s': %s", clone.ID, err)
			}
		}
	}

	for _, s := range templateSlides {
		err := backend.RemoveSlide(s)
		if err != nil {
			return fmt.Errorf("Removing template slide '%s': %s", s.ID, err)
		}
	}

	return nil
}
