// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package dataval_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deckfill/deckfill/pkg/dataval"
)

func TestNewValueConversion(t *testing.T) {
	root := dataval.NewValue(map[string]interface{}{
		"Company": map[string]interface{}{
			"Name": "Acme",
			"Staff": []interface{}{
				map[string]interface{}{"Name": "Ada"},
				map[string]interface{}{"Name": "Grace"},
			},
		},
		"Count": 2,
	})

	company, ok := dataval.Member(root, "Company")
	require.True(t, ok)

	name, ok := dataval.Member(company, "Name")
	require.True(t, ok)
	require.Equal(t, "Acme", name)

	staff, ok := dataval.Member(company, "Staff")
	require.True(t, ok)

	length, ok := dataval.Len(staff)
	require.True(t, ok)
	require.Equal(t, 2, length)

	second, ok := dataval.Index(staff, 1)
	require.True(t, ok)
	secondName, ok := dataval.Member(second, "Name")
	require.True(t, ok)
	require.Equal(t, "Grace", secondName)

	count, ok := dataval.Member(root, "Count")
	require.True(t, ok)
	require.Equal(t, int64(2), count)
}

func TestLookupMisses(t *testing.T) {
	root := dataval.NewValue(map[string]interface{}{
		"Items": []interface{}{"a", "b", "c"},
	})

	items, ok := dataval.Member(root, "Items")
	require.True(t, ok)

	_, ok = dataval.Index(items, 3)
	require.False(t, ok)

	_, ok = dataval.Index(items, -1)
	require.False(t, ok)

	_, ok = dataval.Member(root, "Missing")
	require.False(t, ok)

	// scalar values support neither lookup
	_, ok = dataval.Member("scalar", "X")
	require.False(t, ok)
	_, ok = dataval.Index("scalar", 0)
	require.False(t, ok)
	_, ok = dataval.Len(root)
	require.False(t, ok)
}

func TestConversionIsDeterministic(t *testing.T) {
	obj := map[string]interface{}{"b": 1, "a": 2, "c": 3}

	first := dataval.NewValue(obj).(*dataval.Map)
	second := dataval.NewValue(obj).(*dataval.Map)

	require.Equal(t, []string{"a", "b", "c"}, first.Keys())
	require.Equal(t, first.Keys(), second.Keys())
}

func TestPlainRoundTrip(t *testing.T) {
	obj := map[string]interface{}{
		"Name":  "Acme",
		"Items": []interface{}{int64(1), int64(2)},
	}

	require.Equal(t, obj, dataval.Plain(dataval.NewValue(obj)))
}
