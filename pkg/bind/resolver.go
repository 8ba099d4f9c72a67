// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

// Package bind evaluates binding expressions against a planned slide
// instance's context. Unavailable values (out-of-bounds index, missing
// member, nil intermediate) resolve to a hide outcome: a typed in-band
// signal, never an error. One failed expression never affects its siblings.
package bind

import (
	"fmt"
	"time"

	"github.com/deckfill/deckfill/pkg/dataval"
	"github.com/deckfill/deckfill/pkg/expression"
	"github.com/deckfill/deckfill/pkg/plan"
)

// Result is the outcome of resolving one (expression, instance) pair.
type Result struct {
	Text string
	// Hidden means "value unavailable: blank or remove the owning visual
	// element", distinct from a fatal error.
	Hidden bool
	// Deferred carries a function-call expression whose arguments were
	// resolved here but whose effect the document backend materializes.
	Deferred *DeferredCall
}

// DeferredCall is an opaque function result token.
type DeferredCall struct {
	Name string
	Args []string
}

// Resolver evaluates expressions for one generation run. It owns the
// current-item cache for that run and must be discarded with it; there is
// no process-wide resolver state.
type Resolver struct {
	root      dataval.Value
	slidePlan *plan.SlidePlan

	// current iteration items memoized by ContextPath, so sibling
	// expressions on one slide avoid repeat lookups
	ctxCache map[string]dataval.Value

	diags []string
}

func NewResolver(root dataval.Value, slidePlan *plan.SlidePlan) *Resolver {
	return &Resolver{
		root:      root,
		slidePlan: slidePlan,
		ctxCache:  map[string]dataval.Value{},
	}
}

// Diagnostics returns non-fatal notes accumulated while resolving.
func (r *Resolver) Diagnostics() []string { return append([]string(nil), r.diags...) }

// Clear drops the per-run cache. Call at the end of a generation run.
func (r *Resolver) Clear() { r.ctxCache = map[string]dataval.Value{} }

// Resolve evaluates one expression on one planned instance.
func (r *Resolver) Resolve(expr expression.Expression, inst *plan.SlideInstance) Result {
	path := r.slidePlan.Aliases.Rewrite(expr.Path)

	if path.HasCall() {
		return r.resolveCall(path, inst)
	}

	path = shiftDeepestIndex(path, inst.Offset)

	val, ok := r.walk(path, inst)
	if !ok {
		return Result{Hidden: true}
	}

	text, err := r.render(val, expr.Format)
	if err != nil {
		r.diags = append(r.diags, fmt.Sprintf("bind: %s: %s", expr.Source, err))
		text = plainString(val)
	}

	return Result{Text: text}
}

// resolveCall resolves the call's arguments independently; the call itself
// stays opaque for the backend to materialize.
func (r *Resolver) resolveCall(path expression.DataPath, inst *plan.SlideInstance) Result {
	for _, seg := range path {
		if seg.Call == nil {
			continue
		}

		call := &DeferredCall{Name: seg.Call.Name}
		for _, arg := range seg.Call.Args {
			call.Args = append(call.Args, r.resolveCallArg(arg, inst))
		}
		return Result{Deferred: call}
	}
	return Result{Hidden: true}
}

func (r *Resolver) resolveCallArg(arg string, inst *plan.SlideInstance) string {
	argPath, err := expression.ParsePath(arg)
	if err != nil {
		return arg
	}

	argPath = shiftDeepestIndex(r.slidePlan.Aliases.Rewrite(argPath), inst.Offset)

	val, ok := r.walk(argPath, inst)
	if !ok {
		return arg
	}

	if _, isMap := val.(*dataval.Map); isMap {
		return arg
	}
	if _, isSeq := val.(*dataval.Sequence); isSeq {
		return arg
	}
	return plainString(val)
}

// walk evaluates a path against the data root (absolute joins) or against
// the instance's current iteration item (context-relative joins).
func (r *Resolver) walk(path expression.DataPath, inst *plan.SlideInstance) (dataval.Value, bool) {
	if len(path) == 0 {
		return nil, false
	}

	current := r.root
	start := 0

	// a context-joined path substitutes the memoized current item for the
	// prefix matching the instance's context
	if pathUsesContext(path) {
		entry, found := inst.Context.Lookup(path.Root())
		if !found {
			return nil, false
		}

		item, ok := r.currentItem(inst.Context, entry.Collection)
		if !ok {
			return nil, false
		}
		current = item
		start = 1

		// an explicit index on the context root re-selects within the
		// collection instead
		if path[0].HasIndex {
			coll, collOK := r.collectionAtContext(inst.Context, entry.Collection)
			if !collOK {
				return nil, false
			}
			elem, inBounds := dataval.Index(coll, path[0].Index)
			if !inBounds {
				return nil, false
			}
			current = elem
		}
	}

	for i := start; i < len(path); i++ {
		seg := path[i]

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

	if current == nil {
		return nil, false
	}
	return current, true
}

// currentItem re-derives the iteration element for (root data, context
// path), memoized per run.
func (r *Resolver) currentItem(ctx plan.ContextPath, upTo string) (dataval.Value, bool) {
	var prefix plan.ContextPath
	for _, entry := range ctx {
		prefix = prefix.Child(entry.Collection, entry.Index)
		if entry.Collection == upTo {
			break
		}
	}

	key := prefix.String()
	if cached, ok := r.ctxCache[key]; ok {
		return cached, true
	}

	current := r.root
	for _, entry := range prefix {
		coll, ok := dataval.Member(current, entry.Collection)
		if !ok {
			return nil, false
		}
		elem, inBounds := dataval.Index(coll, entry.Index)
		if !inBounds {
			return nil, false
		}
		current = elem
	}

	r.ctxCache[key] = current
	return current, true
}

// collectionAtContext resolves the collection (not the element) named by a
// context entry.
func (r *Resolver) collectionAtContext(ctx plan.ContextPath, name string) (dataval.Value, bool) {
	current := r.root
	for _, entry := range ctx {
		coll, ok := dataval.Member(current, entry.Collection)
		if !ok {
			return nil, false
		}
		if entry.Collection == name {
			return coll, true
		}
		elem, inBounds := dataval.Index(coll, entry.Index)
		if !inBounds {
			return nil, false
		}
		current = elem
	}
	return nil, false
}

func (r *Resolver) render(val dataval.Value, format *expression.FormatSpec) (string, error) {
	if format == nil {
		return plainString(val), nil
	}
	return format.Apply(val)
}

func plainString(val dataval.Value) string {
	switch typedVal := val.(type) {
	case string:
		return typedVal
	case time.Time:
		return typedVal.Format("2006-01-02")
	case float64:
		return fmt.Sprintf("%v", typedVal)
	default:
		return fmt.Sprintf("%v", typedVal)
	}
}

// shiftDeepestIndex shifts the deepest explicit index by the instance's
// pagination offset, so successive instances show successive pages.
func shiftDeepestIndex(path expression.DataPath, offset int) expression.DataPath {
	if offset == 0 {
		return path
	}

	for i := len(path) - 1; i >= 0; i-- {
		if path[i].HasIndex {
			result := path.DeepCopy()
			result[i].Index += offset
			return result
		}
	}
	return path
}

func pathUsesContext(path expression.DataPath) bool {
	for _, seg := range path {
		if seg.ContextJoin {
			return true
		}
	}
	return false
}
