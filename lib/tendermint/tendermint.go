// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package tendermint implements the primitives of the tendermint finality
// gadget: the authority set lifecycle policy driven by consensus logs in
// block digests, and the localized payload scheme binding every vote
// signature to one round and one authority set id.
package tendermint

import (
	log "github.com/ChainSafe/log15"

	"github.com/huffmint/substrate-tendermint/dot/types"
)

var logger = log.New("pkg", "tendermint")

// KeyTypeID is the key type the finality gadget's keys are registered
// under in the keystore
const KeyTypeID = "tmnt"

// AuthorityQuerier exposes the live authority set to the embedding host,
// the same surface the runtime answers authority queries with.
type AuthorityQuerier interface {
	Authorities() types.AuthorityList
	CurrentSetID() uint64
}
