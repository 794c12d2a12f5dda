// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package digest

import (
	"github.com/huffmint/substrate-tendermint/dot/types"
)

// TendermintState is the authority set lifecycle policy fed by this handler
type TendermintState interface {
	HandleDigests(digests []types.TendermintConsensusDigest, blockNumber uint32) error
	ApplyScheduledChanges(finalizedBlockNumber uint32) (changed bool, err error)
	ApplyForcedChanges(importedBlockNumber uint32) (changed bool, err error)
}
