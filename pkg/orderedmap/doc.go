// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package orderedmap provides a map implementation where the order of keys is
maintained (unlike the native Go map).

This flavor of map is crucial in keeping generated slide plans deterministic
and stable: identical (template, data) inputs must always yield identical
output.
*/
package orderedmap
