// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package tendermint

import (
	"fmt"

	"github.com/huffmint/substrate-tendermint/dot/types"
)

// PendingChange is a decoded but not yet activated authority set change
type PendingChange struct {
	NextAuthorities types.AuthorityList
	Delay           uint32
	// AnnouncingBlock is the number of the block that carried the signal
	AnnouncingBlock uint32
	// BestFinalizedBlock is the base for the delay of a forced change,
	// counted in imported blocks
	BestFinalizedBlock uint32
	Forced             bool
}

// EffectiveNumber returns the block number at which the change activates.
// Scheduled changes count finalised blocks past the announcing block, forced
// changes count imported blocks past the best finalized base.
func (p *PendingChange) EffectiveNumber() uint32 {
	if p.Forced {
		return p.BestFinalizedBlock + p.Delay
	}
	return p.AnnouncingBlock + p.Delay
}

func (p *PendingChange) String() string {
	return fmt.Sprintf("pending change: announcing block: %d, delay: %d, forced: %t, "+
		"effective block number: %d, next authorities: %d",
		p.AnnouncingBlock, p.Delay, p.Forced, p.EffectiveNumber(), len(p.NextAuthorities))
}

// pendingFlagFlip is a delayed pause or resume, effective once the given
// block number is finalised
type pendingFlagFlip struct {
	announcingBlock uint32
	delay           uint32
}

func (p *pendingFlagFlip) effectiveNumber() uint32 {
	return p.announcingBlock + p.delay
}

// AuthoritySet tracks the current authority list, its set id and the pending
// lifecycle signals for a single fork. It is a plain state machine: callers
// own the instance and must serialise HandleDigests and Apply* calls per fork.
type AuthoritySet struct {
	authorities types.AuthorityList
	setID       uint64

	pendingChange *PendingChange
	pendingPause  *pendingFlagFlip
	pendingResume *pendingFlagFlip

	disabled map[uint64]struct{}
	paused   bool
}

// NewAuthoritySet returns an AuthoritySet with the given genesis authorities and set id
func NewAuthoritySet(authorities types.AuthorityList, setID uint64) *AuthoritySet {
	return &AuthoritySet{
		authorities: authorities,
		setID:       setID,
		disabled:    make(map[uint64]struct{}),
	}
}

// Authorities returns the current authority list
func (s *AuthoritySet) Authorities() types.AuthorityList {
	auths := make(types.AuthorityList, len(s.authorities))
	copy(auths, s.authorities)
	return auths
}

// SetID returns the current authority set id
func (s *AuthoritySet) SetID() uint64 {
	return s.setID
}

// PendingChange returns the currently pending change, or nil
func (s *AuthoritySet) PendingChange() *PendingChange {
	return s.pendingChange
}

// IsDisabled returns true if the authority at the given index was disabled
// during the current set's lifetime
func (s *AuthoritySet) IsDisabled(index uint64) bool {
	_, has := s.disabled[index]
	return has
}

// IsPaused returns true if voting is currently halted
func (s *AuthoritySet) IsPaused() bool {
	return s.paused
}

// HandleDigests observes all tendermint consensus logs of a single block,
// reconciling competing signals into the next pending state.
//
// The precedence rules are fixed: a forced change always wins over any
// scheduled change in the same block and unconditionally replaces an existing
// pending change; a scheduled change is only installed if no change is
// pending; among several signals of the same kind the first in digest order
// is respected and the rest ignored. The outcome depends only on the prior
// state and the ordered digests, never on the caller.
func (s *AuthoritySet) HandleDigests(digests []types.TendermintConsensusDigest, blockNumber uint32) error {
	if forced := firstForcedChange(digests); forced != nil {
		if len(forced.NextAuthorities) == 0 {
			return ErrNoNextAuthorities
		}

		// a forced change overrides whatever is pending
		s.pendingChange = &PendingChange{
			NextAuthorities:    forced.NextAuthorities,
			Delay:              forced.Delay,
			AnnouncingBlock:    blockNumber,
			BestFinalizedBlock: forced.BestFinalizedBlock,
			Forced:             true,
		}
		logger.Debug("imported forced change", "change", s.pendingChange)
	} else if scheduled := firstScheduledChange(digests); scheduled != nil {
		if len(scheduled.NextAuthorities) == 0 {
			return ErrNoNextAuthorities
		}

		if s.pendingChange == nil {
			s.pendingChange = &PendingChange{
				NextAuthorities: scheduled.NextAuthorities,
				Delay:           scheduled.Delay,
				AnnouncingBlock: blockNumber,
			}
			logger.Debug("imported scheduled change", "change", s.pendingChange)
		} else {
			// a change is already pending and its delay has not elapsed
			logger.Debug("ignoring scheduled change, another is pending",
				"block", blockNumber, "pending", s.pendingChange)
		}
	}

	for _, digest := range digests {
		if digest.IsOnDisabled {
			s.disabled[digest.AsOnDisabled.ID] = struct{}{}
		}
	}

	if pause := firstPause(digests); pause != nil && s.pendingPause == nil {
		s.pendingPause = &pendingFlagFlip{
			announcingBlock: blockNumber,
			delay:           pause.Delay,
		}
	}

	if resume := firstResume(digests); resume != nil && s.pendingResume == nil {
		s.pendingResume = &pendingFlagFlip{
			announcingBlock: blockNumber,
			delay:           resume.Delay,
		}
	}

	return nil
}

// ApplyScheduledChanges activates the pending scheduled change once its delay
// of finalised blocks has fully elapsed, and flips any due pause or resume.
// It returns whether a set change activated; if so the caller must restart
// round numbering at 0.
func (s *AuthoritySet) ApplyScheduledChanges(finalizedBlockNumber uint32) (changed bool, err error) {
	if s.pendingPause != nil && finalizedBlockNumber >= s.pendingPause.effectiveNumber() {
		s.paused = true
		s.pendingPause = nil
		logger.Info("authority set paused", "finalised block", finalizedBlockNumber)
	}

	if s.pendingResume != nil && finalizedBlockNumber >= s.pendingResume.effectiveNumber() {
		s.paused = false
		s.pendingResume = nil
		logger.Info("authority set resumed", "finalised block", finalizedBlockNumber)
	}

	if s.pendingChange == nil || s.pendingChange.Forced {
		return false, nil
	}

	if finalizedBlockNumber < s.pendingChange.EffectiveNumber() {
		return false, nil
	}

	s.applyChange()
	return true, nil
}

// ApplyForcedChanges activates the pending forced change once its delay of
// imported blocks past the best finalized base has fully elapsed. It returns
// whether a set change activated.
func (s *AuthoritySet) ApplyForcedChanges(importedBlockNumber uint32) (changed bool, err error) {
	if s.pendingChange == nil || !s.pendingChange.Forced {
		return false, nil
	}

	if importedBlockNumber < s.pendingChange.EffectiveNumber() {
		return false, nil
	}

	s.applyChange()
	return true, nil
}

func (s *AuthoritySet) applyChange() {
	logger.Info("applying authority set change",
		"set id", s.setID+1, "change", s.pendingChange)

	s.authorities = s.pendingChange.NextAuthorities
	s.setID++
	s.pendingChange = nil
	s.disabled = make(map[uint64]struct{})
}

func firstScheduledChange(digests []types.TendermintConsensusDigest) *types.TendermintScheduledChange {
	for _, digest := range digests {
		if digest.IsScheduledChange {
			change := digest.AsScheduledChange
			return &change
		}
	}
	return nil
}

func firstForcedChange(digests []types.TendermintConsensusDigest) *types.TendermintForcedChange {
	for _, digest := range digests {
		if digest.IsForcedChange {
			change := digest.AsForcedChange
			return &change
		}
	}
	return nil
}

func firstPause(digests []types.TendermintConsensusDigest) *types.TendermintPause {
	for _, digest := range digests {
		if digest.IsPause {
			pause := digest.AsPause
			return &pause
		}
	}
	return nil
}

func firstResume(digests []types.TendermintConsensusDigest) *types.TendermintResume {
	for _, digest := range digests {
		if digest.IsResume {
			resume := digest.AsResume
			return &resume
		}
	}
	return nil
}
