// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"

	"github.com/deckfill/deckfill/pkg/deck"
	"github.com/deckfill/deckfill/pkg/directive"
	"github.com/deckfill/deckfill/pkg/expression"
	"github.com/deckfill/deckfill/pkg/filepos"
	"github.com/deckfill/deckfill/pkg/files"
	"github.com/deckfill/deckfill/pkg/version"
)

// Analyze classifies each template slide and computes its pagination
// capacity. It fails only when a '#requires-version' constraint is not
// satisfied by this engine.
func Analyze(slides []*deck.Slide, ui files.UI) (*Analysis, error) {
	result := &Analysis{Slides: slides}

	for _, slide := range slides {
		tpl, err := analyzeSlide(slide, ui)
		if err != nil {
			return nil, err
		}
		result.Templates = append(result.Templates, tpl)
	}

	markRangeWindows(result.Templates)

	return result, nil
}

func analyzeSlide(slide *deck.Slide, ui files.UI) (*SlideTemplate, error) {
	tpl := &SlideTemplate{
		SlideID:       slide.ID,
		Index:         slide.Index,
		MaxArrayIndex: -1,
	}

	tpl.Directives = directive.Parse(slide.Notes, slide.Index, ui)

	for parIdx, par := range slide.Paragraphs {
		for runIdx, run := range par.Runs {
			pos := filepos.NewSlidePosition(slide.Index)
			pos.SetLocator(fmt.Sprintf("par %d, run %d", parIdx, runIdx))
			tpl.Expressions = append(tpl.Expressions, expression.Parse(run.Text, pos)...)
		}
	}

	err := checkVersionConstraints(tpl.Directives)
	if err != nil {
		return nil, err
	}

	tpl.PrimaryCollection = primaryCollection(tpl)
	tpl.Type = classify(tpl)
	computeCapacity(tpl, ui)

	return tpl, nil
}

func primaryCollection(tpl *SlideTemplate) expression.DataPath {
	if dir, ok := tpl.Foreach(); ok {
		return dir.CollectionPath
	}
	if dir, ok := tpl.RangeBoundary(); ok {
		return dir.CollectionPath
	}

	// first indexed root, in text order
	for _, expr := range tpl.Expressions {
		if len(expr.IndexRefs) > 0 {
			return expression.DataPath{{Name: expr.IndexRefs[0].Name, Index: -1}}
		}
	}
	return nil
}

func classify(tpl *SlideTemplate) SlideType {
	if _, ok := tpl.RangeBoundary(); ok {
		return TypeCloned
	}
	if _, ok := tpl.Foreach(); ok {
		return TypeSource
	}
	for _, expr := range tpl.Expressions {
		if len(expr.IndexRefs) > 0 || expr.UsesContextOperator {
			return TypeSource
		}
	}
	return TypeStatic
}

func computeCapacity(tpl *SlideTemplate, ui files.UI) {
	collectionRoot := tpl.PrimaryCollection.Root()

	for _, expr := range tpl.Expressions {
		for _, ref := range expr.IndexRefs {
			if ref.Name == collectionRoot && ref.Index > tpl.MaxArrayIndex {
				tpl.MaxArrayIndex = ref.Index
			}
		}
	}

	inferred := tpl.MaxArrayIndex + 1
	if inferred < 1 {
		inferred = 1
	}
	tpl.ItemsPerSlide = inferred

	if dir, ok := tpl.Foreach(); ok {
		tpl.PaginationOffset = dir.Offset
		if dir.MaxItems >= 0 {
			// explicit max wins over the inferred per-slide item count
			if tpl.MaxArrayIndex >= 0 && dir.MaxItems != inferred {
				ui.Debugf("analysis: slide %d: explicit max %d overrides inferred capacity %d\n",
					tpl.Index, dir.MaxItems, inferred)
			}
			tpl.ItemsPerSlide = dir.MaxItems
			if tpl.ItemsPerSlide < 1 {
				tpl.ItemsPerSlide = 1
			}
		}
	}
}

// markRangeWindows classifies every slide between a matching
// '#range-begin'/'#range-end' pair as part of that window.
func markRangeWindows(templates []*SlideTemplate) {
	for beginIdx, beginTpl := range templates {
		dir, ok := beginTpl.RangeBoundary()
		if !ok || dir.RangeBoundary != directive.RangeBegin {
			continue
		}

		for endIdx := beginIdx + 1; endIdx < len(templates); endIdx++ {
			endDir, ok := templates[endIdx].RangeBoundary()
			if !ok || endDir.RangeBoundary != directive.RangeEnd {
				continue
			}
			if endDir.CollectionPath.String() != dir.CollectionPath.String() {
				continue
			}

			for i := beginIdx; i <= endIdx; i++ {
				templates[i].Type = TypeCloned
			}
			break
		}
	}
}

func checkVersionConstraints(dirs []directive.Directive) error {
	for _, dir := range dirs {
		if dir.Type != directive.TypeRequiresVersion {
			continue
		}

		constraints, err := goversion.NewConstraint(dir.VersionConstraint)
		if err != nil {
			return fmt.Errorf("Parsing version constraint '%s' (%s): %s",
				dir.VersionConstraint, dir.Position.AsString(), err)
		}

		engineVersion, err := goversion.NewVersion(version.Version)
		if err != nil {
			return fmt.Errorf("Parsing engine version '%s': %s", version.Version, err)
		}

		if !constraints.Check(engineVersion) {
			return fmt.Errorf("Template requires engine version '%s', have '%s' (%s)",
				dir.VersionConstraint, version.Version, dir.Position.AsString())
		}
	}
	return nil
}
