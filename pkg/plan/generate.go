// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"github.com/deckfill/deckfill/pkg/analysis"
	"github.com/deckfill/deckfill/pkg/dataval"
	"github.com/deckfill/deckfill/pkg/directive"
	"github.com/deckfill/deckfill/pkg/expression"
)

// Generate computes the ordered slide plan for (template analysis, root
// data). It is deterministic: identical inputs always yield identical
// plans. Unresolvable collections degrade to empty ones with a diagnostic;
// only programmer errors surface as error.
func Generate(an *analysis.Analysis, root dataval.Value) (*SlidePlan, error) {
	var allDirs []directive.Directive
	for _, tpl := range an.Templates {
		allDirs = append(allDirs, tpl.Directives...)
	}

	aliases, aliasDiags := BuildAliasTable(allDirs)

	result := &SlidePlan{Aliases: aliases, Diagnostics: aliasDiags}

	gen := &generator{an: an, root: root, plan: result}
	gen.findWindows()

	if child := gen.detectNesting(); child != nil {
		gen.generateNested(child)
	} else {
		gen.generateFlat()
	}

	return result, nil
}

type generator struct {
	an      *analysis.Analysis
	root    dataval.Value
	plan    *SlidePlan
	windows []window
}

// nesting describes the (parent slide, child slide) pair of nested mode:
// the parent iterates a simple collection, the child paginates a collection
// reached through the parent's current element.
type nesting struct {
	parentTpl  *analysis.SlideTemplate
	childTpl   *analysis.SlideTemplate
	parentName string
	childName  string
}

// detectNesting returns non-nil when any expression joins through the
// context operator onto an indexed nested collection.
func (g *generator) detectNesting() *nesting {
	var n *nesting

	for _, tpl := range g.an.Templates {
		childName, parentName, ok := childCollectionOf(tpl)
		if ok {
			n = &nesting{childTpl: tpl, childName: childName, parentName: parentName}
			break
		}
	}
	if n == nil {
		return nil
	}

	// the parent may be a plain Source slide or a member of a range window
	// over the parent collection (range members classify as Cloned)
	for _, tpl := range g.an.Templates {
		if tpl == n.childTpl || tpl.Type == analysis.TypeStatic {
			continue
		}
		if slideCollectionRoot(tpl) == n.parentName {
			n.parentTpl = tpl
			break
		}
	}

	if n.parentTpl == nil {
		g.plan.diag("planning: no parent slide found for nested collection '%s>%s'; using flat expansion",
			n.parentName, n.childName)
		return nil
	}

	return n
}

// childCollectionOf finds a context-joined indexed segment: e.g. the slide
// expressing ${Categories>Products[0].Name} paginates Products within the
// current Categories element.
func childCollectionOf(tpl *analysis.SlideTemplate) (childName, parentName string, ok bool) {
	if dir, hasForeach := tpl.Foreach(); hasForeach {
		for _, seg := range dir.CollectionPath[1:] {
			if seg.ContextJoin {
				return seg.Name, dir.CollectionPath.Root(), true
			}
		}
	}

	for _, expr := range tpl.Expressions {
		for _, seg := range expr.Path[1:] {
			if seg.ContextJoin && seg.HasIndex {
				return seg.Name, expr.Path.Root(), true
			}
		}
	}
	return "", "", false
}

// slideCollectionRoot names the collection a slide iterates: its foreach
// root, its inferred primary collection, or the root of its context-joined
// expressions.
func slideCollectionRoot(tpl *analysis.SlideTemplate) string {
	if root := tpl.PrimaryCollection.Root(); len(root) > 0 {
		return root
	}
	for _, expr := range tpl.Expressions {
		if expr.UsesContextOperator {
			return expr.Path.Root()
		}
	}
	return ""
}

func (g *generator) generateFlat() {
	templates := g.an.Templates

	for i := 0; i < len(templates); i++ {
		if window := g.windowAt(i); window != nil {
			g.expandWindowFlat(window)
			i = window.end
			continue
		}

		tpl := templates[i]
		switch tpl.Type {
		case analysis.TypeStatic:
			g.plan.append(&SlideInstance{SourceSlideID: tpl.SlideID, ParentIndex: -1})

		case analysis.TypeSource:
			g.expandSourceFlat(tpl)

		case analysis.TypeCloned:
			// range boundary without a matching window; consumed
			g.plan.diag("planning: slide %d has an unmatched range boundary; skipping", tpl.Index)
		}
	}
}

func (g *generator) expandSourceFlat(tpl *analysis.SlideTemplate) {
	length := g.collectionLen(tpl.PrimaryCollection, tpl.Index)

	offset := tpl.PaginationOffset
	itemsPerSlide := tpl.ItemsPerSlide

	remaining := length - offset
	if remaining < 0 {
		remaining = 0
	}

	for page := 0; page < ceilDiv(remaining, itemsPerSlide); page++ {
		g.plan.append(&SlideInstance{
			SourceSlideID: tpl.SlideID,
			Offset:        offset + page*itemsPerSlide,
			ParentIndex:   -1,
		})
	}
}

func (g *generator) generateNested(n *nesting) {
	g.plan.ContextChain = []string{n.parentName, n.childName}

	templates := g.an.Templates
	unit := g.nestedUnit(n)

	unitIdx := map[int]bool{}
	for _, tpl := range unit {
		unitIdx[tpl.Index] = true
	}

	expanded := false
	for _, tpl := range templates {
		if unitIdx[tpl.Index] {
			if !expanded {
				g.expandNestedUnit(n, unit)
				expanded = true
			}
			continue
		}

		switch tpl.Type {
		case analysis.TypeStatic:
			g.plan.append(&SlideInstance{SourceSlideID: tpl.SlideID, ParentIndex: -1})
		case analysis.TypeSource:
			g.expandSourceFlat(tpl)
		case analysis.TypeCloned:
			g.plan.diag("planning: slide %d is outside the repeating unit; skipping", tpl.Index)
		}
	}
}

// nestedUnit is the list of consecutive template slides repeated per parent
// element: a range window when one names the parent collection, otherwise
// the (parent, child) pair itself.
func (g *generator) nestedUnit(n *nesting) []*analysis.SlideTemplate {
	for wi := range g.windows {
		if g.windows[wi].collection.Root() == n.parentName {
			return g.an.Templates[g.windows[wi].begin : g.windows[wi].end+1]
		}
	}

	if n.parentTpl.Index <= n.childTpl.Index {
		return []*analysis.SlideTemplate{n.parentTpl, n.childTpl}
	}
	return []*analysis.SlideTemplate{n.childTpl, n.parentTpl}
}

func (g *generator) expandNestedUnit(n *nesting, unit []*analysis.SlideTemplate) {
	parentPath := expression.DataPath{{Name: n.parentName, Index: -1}}
	if dir, ok := n.parentTpl.Foreach(); ok {
		parentPath = dir.CollectionPath
	}

	seq, ok := g.resolveCollection(parentPath)
	if !ok {
		g.plan.diag("planning: collection '%s' unresolvable; treating as empty", parentPath.String())
		return
	}

	for i := 0; i < len(seq.Items); i++ {
		elem := seq.Items[i]
		ctx := ContextPath{}.Child(n.parentName, i)

		for _, tpl := range unit {
			if isChildLike(tpl, n.childName) {
				g.expandChild(tpl, n, elem, ctx, i)
				continue
			}

			// slides indexing the parent collection track the current
			// element through the offset shift
			offset := 0
			if tpl.MaxArrayIndex >= 0 && slideCollectionRoot(tpl) == n.parentName {
				offset = i
			}
			g.plan.append(&SlideInstance{
				SourceSlideID: tpl.SlideID,
				Context:       ctx,
				Offset:        offset,
				ParentIndex:   -1,
			})
		}
	}
}

func (g *generator) expandChild(tpl *analysis.SlideTemplate, n *nesting,
	parentElem dataval.Value, ctx ContextPath, parentIdx int) {

	length := 0
	childVal, ok := dataval.Member(parentElem, n.childName)
	if ok {
		if seqLen, isSeq := dataval.Len(childVal); isSeq {
			length = seqLen
		}
	}

	// a zero-length child collection still emits one instance: absence is
	// an explicit, testable state
	if length == 0 {
		g.plan.append(&SlideInstance{
			SourceSlideID: tpl.SlideID,
			Context:       ctx,
			ParentIndex:   parentIdx,
			IsEmpty:       true,
		})
		return
	}

	itemsPerSlide := tpl.ItemsPerSlide
	for page := 0; page < ceilDiv(length, itemsPerSlide); page++ {
		g.plan.append(&SlideInstance{
			SourceSlideID: tpl.SlideID,
			Context:       ctx,
			Offset:        page * itemsPerSlide,
			ParentIndex:   parentIdx,
		})
	}
}

func isChildLike(tpl *analysis.SlideTemplate, childName string) bool {
	name, _, ok := childCollectionOf(tpl)
	return ok && name == childName
}

type window struct {
	begin, end int
	collection expression.DataPath
}

// findWindows pairs up matching '#range-begin'/'#range-end' markers once,
// ahead of expansion.
func (g *generator) findWindows() {
	templates := g.an.Templates

	for i, tpl := range templates {
		dir, ok := tpl.RangeBoundary()
		if !ok || dir.RangeBoundary != directive.RangeBegin {
			continue
		}

		matched := false
		for endIdx := i + 1; endIdx < len(templates); endIdx++ {
			endDir, hasEnd := templates[endIdx].RangeBoundary()
			if !hasEnd || endDir.RangeBoundary != directive.RangeEnd {
				continue
			}
			if endDir.CollectionPath.String() != dir.CollectionPath.String() {
				continue
			}
			g.windows = append(g.windows, window{begin: i, end: endIdx, collection: dir.CollectionPath})
			matched = true
			break
		}

		if !matched {
			g.plan.diag("planning: slide %d opens a range over '%s' with no matching end; skipping",
				tpl.Index, dir.CollectionPath.String())
		}
	}
}

// windowAt returns the range window starting at template index i, if any.
func (g *generator) windowAt(i int) *window {
	for wi := range g.windows {
		if g.windows[wi].begin == i {
			return &g.windows[wi]
		}
	}
	return nil
}

// expandWindowFlat repeats the whole window once per page of its
// collection; every slide in the repetition shares the page's offset
// against its own capacity.
func (g *generator) expandWindowFlat(w *window) {
	templates := g.an.Templates[w.begin : w.end+1]

	length := g.collectionLen(w.collection, g.an.Templates[w.begin].Index)

	unitCapacity := 1
	for _, tpl := range templates {
		if tpl.PrimaryCollection.Root() == w.collection.Root() && tpl.ItemsPerSlide > unitCapacity {
			unitCapacity = tpl.ItemsPerSlide
		}
	}

	for rep := 0; rep < ceilDiv(length, unitCapacity); rep++ {
		for _, tpl := range templates {
			offset := 0
			if tpl.MaxArrayIndex >= 0 && tpl.PrimaryCollection.Root() == w.collection.Root() {
				offset = rep * tpl.ItemsPerSlide
			}
			g.plan.append(&SlideInstance{
				SourceSlideID: tpl.SlideID,
				Offset:        offset,
				ParentIndex:   -1,
			})
		}
	}
}

func (g *generator) collectionLen(path expression.DataPath, slideIdx int) int {
	if len(path) == 0 {
		return 0
	}

	seq, ok := g.resolveCollection(path)
	if !ok {
		g.plan.diag("planning: collection '%s' unresolvable at slide %d; treating as empty",
			path.String(), slideIdx)
		return 0
	}
	return len(seq.Items)
}

// resolveCollection walks an absolute (alias-rewritten) path down to a
// sequence.
func (g *generator) resolveCollection(path expression.DataPath) (*dataval.Sequence, bool) {
	path = g.plan.Aliases.Rewrite(path)

	current := g.root
	for _, seg := range path {
		next, ok := dataval.Member(current, seg.Name)
		if !ok {
			return nil, false
		}
		current = next

		if seg.HasIndex {
			elem, inBounds := dataval.Index(current, seg.Index)
			if !inBounds {
				return nil, false
			}
			current = elem
		}
	}

	seq, ok := current.(*dataval.Sequence)
	return seq, ok
}

func ceilDiv(length, size int) int {
	if size <= 0 {
		size = 1
	}
	return (length + size - 1) / size
}
