// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package version

// Version is the current deckfill engine version. Templates may pin a
// minimum engine version via the '#requires-version:' notes directive.
const Version = "0.1.0"
