// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package dataval

import (
	"fmt"
	"sort"

	"github.com/deckfill/deckfill/pkg/orderedmap"
)

// Value is one node of the structured data tree: *Map, *Sequence, or a
// scalar (string, int64, float64, bool, time.Time, nil).
type Value interface{}

type Map struct {
	items *orderedmap.Map
}

type Sequence struct {
	Items []Value
}

func NewMapValue() *Map { return &Map{orderedmap.NewMap()} }

func (m *Map) Set(key string, val Value) { m.items.Set(key, val) }

func (m *Map) Get(key string) (Value, bool) { return m.items.Get(key) }

func (m *Map) Keys() []string { return m.items.Keys() }

func (m *Map) Len() int { return m.items.Len() }

func (m *Map) Iterate(iterFunc func(k string, v Value)) {
	m.items.Iterate(func(k string, v interface{}) { iterFunc(k, v) })
}

// Member looks up a named member of v. Returns false when v is not map-like
// or has no such member.
func Member(v Value, name string) (Value, bool) {
	typedVal, ok := v.(*Map)
	if !ok {
		return nil, false
	}
	return typedVal.Get(name)
}

// Index looks up the i-th element of v. Returns false when v is not
// sequence-like or i is out of bounds.
func Index(v Value, i int) (Value, bool) {
	typedVal, ok := v.(*Sequence)
	if !ok {
		return nil, false
	}
	if i < 0 || i >= len(typedVal.Items) {
		return nil, false
	}
	return typedVal.Items[i], true
}

// Len returns the element count of a sequence-like v.
func Len(v Value) (int, bool) {
	typedVal, ok := v.(*Sequence)
	if !ok {
		return 0, false
	}
	return len(typedVal.Items), true
}

// NewValue converts a decoded YAML/JSON/TOML object tree into a Value.
// Unordered Go maps are sorted by key so that conversion is deterministic.
func NewValue(object interface{}) Value {
	switch typedObj := object.(type) {
	case map[string]interface{}:
		result := NewMapValue()
		for _, key := range sortedStringKeys(typedObj) {
			result.Set(key, NewValue(typedObj[key]))
		}
		return result

	case map[interface{}]interface{}:
		result := NewMapValue()
		strMap := map[string]interface{}{}
		for key, val := range typedObj {
			strMap[fmt.Sprintf("%v", key)] = val
		}
		for _, key := range sortedStringKeys(strMap) {
			result.Set(key, NewValue(strMap[key]))
		}
		return result

	case *orderedmap.Map:
		result := NewMapValue()
		typedObj.Iterate(func(k string, v interface{}) {
			result.Set(k, NewValue(v))
		})
		return result

	case []interface{}:
		result := &Sequence{}
		for _, item := range typedObj {
			result.Items = append(result.Items, NewValue(item))
		}
		return result

	// TOML arrays of tables decode to this shape
	case []map[string]interface{}:
		result := &Sequence{}
		for _, item := range typedObj {
			result.Items = append(result.Items, NewValue(item))
		}
		return result

	case int:
		return int64(typedObj)

	default:
		return typedObj
	}
}

// Plain converts a Value back into plain Go maps/slices/scalars, suitable
// for marshaling.
func Plain(v Value) interface{} {
	switch typedVal := v.(type) {
	case *Map:
		result := map[string]interface{}{}
		typedVal.Iterate(func(k string, item Value) {
			result[k] = Plain(item)
		})
		return result

	case *Sequence:
		result := []interface{}{}
		for _, item := range typedVal.Items {
			result = append(result, Plain(item))
		}
		return result

	default:
		return typedVal
	}
}

func sortedStringKeys(m map[string]interface{}) []string {
	var keys []string
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
