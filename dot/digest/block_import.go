// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package digest

import (
	"errors"
	"fmt"

	log "github.com/ChainSafe/log15"

	"github.com/huffmint/substrate-tendermint/dot/types"
)

var logger = log.New("pkg", "digest")

// BlockImportHandler scans the digests of imported and finalised blocks and
// drives the authority set lifecycle policy with the decoded signals.
type BlockImportHandler struct {
	tendermintState TendermintState
}

// NewBlockImportHandler returns a new BlockImportHandler
func NewBlockImportHandler(tendermintState TendermintState) *BlockImportHandler {
	return &BlockImportHandler{
		tendermintState: tendermintState,
	}
}

// HandleDigests handles the consensus digests of an imported block: the
// tendermint consensus logs are decoded in digest order and handed to the
// policy in a single observation, then any forced change due at this imported
// block number is applied.
func (h *BlockImportHandler) HandleDigests(blockNumber uint32, digest types.Digest) error {
	consensusLogs, decodeErrs := toTendermintConsensusLogs(digest)
	for _, decodeErr := range decodeErrs {
		// a malformed entry is scoped to itself, the scan of the
		// remaining entries already happened
		logger.Error("failed to decode tendermint consensus digest",
			"block", blockNumber, "error", decodeErr)
	}

	if len(consensusLogs) > 0 {
		err := h.tendermintState.HandleDigests(consensusLogs, blockNumber)
		if err != nil {
			return fmt.Errorf("handling tendermint consensus logs: %w", err)
		}
	}

	_, err := h.tendermintState.ApplyForcedChanges(blockNumber)
	if err != nil {
		return fmt.Errorf("applying forced changes: %w", err)
	}

	return nil
}

// HandleFinalisation applies any scheduled change, pause or resume whose
// delay has fully elapsed at the given finalised block number.
func (h *BlockImportHandler) HandleFinalisation(blockNumber uint32) error {
	_, err := h.tendermintState.ApplyScheduledChanges(blockNumber)
	if err != nil {
		return fmt.Errorf("applying scheduled changes: %w", err)
	}
	return nil
}

// toTendermintConsensusLogs extracts and decodes the tendermint consensus
// logs from the block digest, preserving digest order. Entries for other
// consensus engines and logs with an unknown codec index are skipped;
// malformed tendermint entries produce one error each without aborting the
// scan.
func toTendermintConsensusLogs(digest types.Digest) (
	logs []types.TendermintConsensusDigest, errs []error) {
	for i, item := range digest {
		if !item.IsConsensus {
			continue
		}

		if item.AsConsensus.ConsensusEngineID != types.TendermintEngineID {
			continue
		}

		decoded, err := types.DecodeTendermintConsensusDigest(item.AsConsensus.Data)
		if err != nil {
			if errors.Is(err, types.ErrUnknownConsensusLog) {
				logger.Debug("skipping unknown tendermint consensus log", "index", i)
				continue
			}
			errs = append(errs, fmt.Errorf("digest item %d: %w", i, err))
			continue
		}

		logs = append(logs, decoded)
	}

	return logs, errs
}
