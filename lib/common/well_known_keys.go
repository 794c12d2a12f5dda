// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package common

var (
	// CodeKey is the key where runtime code is stored in the trie
	CodeKey = []byte(":code")

	// TendermintAuthoritiesKey is the well-known key under which the runtime
	// persists the SCALE-encoded current authority list
	TendermintAuthoritiesKey = []byte(":tendermint_authorities")
)
