// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package tendermint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/huffmint/substrate-tendermint/dot/types"
	"github.com/huffmint/substrate-tendermint/lib/crypto/ed25519"
	"github.com/huffmint/substrate-tendermint/lib/keystore"
)

var kr, _ = keystore.NewEd25519Keyring()

func testAuthorities(t *testing.T, n int) types.AuthorityList {
	t.Helper()
	require.LessOrEqual(t, n, len(kr.Keys))

	auths := make(types.AuthorityList, n)
	for i := 0; i < n; i++ {
		auths[i] = kr.Keys[i].Public().(*ed25519.PublicKey).AsBytes()
	}
	return auths
}

func scheduledChangeLog(auths types.AuthorityList, delay uint32) types.TendermintConsensusDigest {
	return types.TendermintConsensusDigest{
		IsScheduledChange: true,
		AsScheduledChange: types.TendermintScheduledChange{
			NextAuthorities: auths,
			Delay:           delay,
		},
	}
}

func forcedChangeLog(bestFinalized uint32, auths types.AuthorityList, delay uint32) types.TendermintConsensusDigest {
	return types.TendermintConsensusDigest{
		IsForcedChange: true,
		AsForcedChange: types.TendermintForcedChange{
			BestFinalizedBlock: bestFinalized,
			NextAuthorities:    auths,
			Delay:              delay,
		},
	}
}

func TestScheduledChangeActivatesAfterDelay(t *testing.T) {
	genesisAuths := testAuthorities(t, 3)
	nextAuths := testAuthorities(t, 4)

	set := NewAuthoritySet(genesisAuths, 0)

	const announcedAt = 5
	err := set.HandleDigests([]types.TendermintConsensusDigest{
		scheduledChangeLog(nextAuths, 10),
	}, announcedAt)
	require.NoError(t, err)

	// state is unchanged before the 10th finalised block
	for finalized := uint32(announcedAt); finalized < announcedAt+10; finalized++ {
		changed, err := set.ApplyScheduledChanges(finalized)
		require.NoError(t, err)
		require.False(t, changed)
		require.Equal(t, uint64(0), set.SetID())
		require.True(t, genesisAuths.Equal(set.Authorities()))
	}

	changed, err := set.ApplyScheduledChanges(announcedAt + 10)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, uint64(1), set.SetID())
	require.True(t, nextAuths.Equal(set.Authorities()))
	require.Nil(t, set.PendingChange())
}

func TestForcedChangeWinsRegardlessOfOrder(t *testing.T) {
	scheduledAuths := testAuthorities(t, 4)
	forcedAuths := testAuthorities(t, 2)

	scheduledFirst := []types.TendermintConsensusDigest{
		scheduledChangeLog(scheduledAuths, 10),
		forcedChangeLog(100, forcedAuths, 2),
	}
	forcedFirst := []types.TendermintConsensusDigest{
		forcedChangeLog(100, forcedAuths, 2),
		scheduledChangeLog(scheduledAuths, 10),
	}

	for _, digests := range [][]types.TendermintConsensusDigest{scheduledFirst, forcedFirst} {
		set := NewAuthoritySet(testAuthorities(t, 3), 0)
		err := set.HandleDigests(digests, 101)
		require.NoError(t, err)

		pending := set.PendingChange()
		require.NotNil(t, pending)
		require.True(t, pending.Forced)
		require.True(t, forcedAuths.Equal(pending.NextAuthorities))
		require.Equal(t, uint32(102), pending.EffectiveNumber())
	}
}

func TestScheduledChangeDoesNotReplacePending(t *testing.T) {
	firstAuths := testAuthorities(t, 4)
	secondAuths := testAuthorities(t, 2)

	set := NewAuthoritySet(testAuthorities(t, 3), 0)

	err := set.HandleDigests([]types.TendermintConsensusDigest{
		scheduledChangeLog(firstAuths, 10),
	}, 1)
	require.NoError(t, err)

	err = set.HandleDigests([]types.TendermintConsensusDigest{
		scheduledChangeLog(secondAuths, 1),
	}, 2)
	require.NoError(t, err)

	pending := set.PendingChange()
	require.NotNil(t, pending)
	require.True(t, firstAuths.Equal(pending.NextAuthorities))
	require.Equal(t, uint32(11), pending.EffectiveNumber())
}

func TestForcedChangeReplacesPendingScheduledChange(t *testing.T) {
	genesisAuths := testAuthorities(t, 3)
	scheduledAuths := testAuthorities(t, 4)
	forcedAuths := testAuthorities(t, 2)

	set := NewAuthoritySet(genesisAuths, 0)

	const n = 20
	err := set.HandleDigests([]types.TendermintConsensusDigest{
		scheduledChangeLog(scheduledAuths, 10),
	}, n)
	require.NoError(t, err)

	err = set.HandleDigests([]types.TendermintConsensusDigest{
		forcedChangeLog(n, forcedAuths, 2),
	}, n+1)
	require.NoError(t, err)

	pending := set.PendingChange()
	require.NotNil(t, pending)
	require.True(t, pending.Forced)
	require.True(t, forcedAuths.Equal(pending.NextAuthorities))

	// forced changes count imported blocks from the best finalized base,
	// not finalised blocks from the announcing block
	changed, err := set.ApplyScheduledChanges(n + 30)
	require.NoError(t, err)
	require.False(t, changed)

	changed, err = set.ApplyForcedChanges(n + 1)
	require.NoError(t, err)
	require.False(t, changed)

	changed, err = set.ApplyForcedChanges(n + 2)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, uint64(1), set.SetID())
	require.True(t, forcedAuths.Equal(set.Authorities()))
}

func TestFirstSignalOfAKindWins(t *testing.T) {
	firstAuths := testAuthorities(t, 4)
	secondAuths := testAuthorities(t, 2)

	set := NewAuthoritySet(testAuthorities(t, 3), 0)

	err := set.HandleDigests([]types.TendermintConsensusDigest{
		scheduledChangeLog(firstAuths, 5),
		scheduledChangeLog(secondAuths, 1),
	}, 1)
	require.NoError(t, err)

	pending := set.PendingChange()
	require.NotNil(t, pending)
	require.True(t, firstAuths.Equal(pending.NextAuthorities))
}

func TestHandleDigestsIsDeterministic(t *testing.T) {
	digests := []types.TendermintConsensusDigest{
		{IsOnDisabled: true, AsOnDisabled: types.TendermintOnDisabled{ID: 1}},
		scheduledChangeLog(testAuthorities(t, 4), 7),
		forcedChangeLog(3, testAuthorities(t, 2), 4),
		{IsPause: true, AsPause: types.TendermintPause{Delay: 2}},
	}

	run := func() *AuthoritySet {
		set := NewAuthoritySet(testAuthorities(t, 3), 0)
		err := set.HandleDigests(digests, 10)
		require.NoError(t, err)
		_, err = set.ApplyForcedChanges(12)
		require.NoError(t, err)
		_, err = set.ApplyScheduledChanges(12)
		require.NoError(t, err)
		return set
	}

	first := run()
	second := run()

	require.Equal(t, first.SetID(), second.SetID())
	require.True(t, first.Authorities().Equal(second.Authorities()))
	require.Equal(t, first.IsPaused(), second.IsPaused())
	require.Equal(t, first.PendingChange(), second.PendingChange())
}

func TestOnDisabledClearedOnActivation(t *testing.T) {
	set := NewAuthoritySet(testAuthorities(t, 3), 0)

	err := set.HandleDigests([]types.TendermintConsensusDigest{
		{IsOnDisabled: true, AsOnDisabled: types.TendermintOnDisabled{ID: 2}},
		{IsOnDisabled: true, AsOnDisabled: types.TendermintOnDisabled{ID: 2}},
	}, 1)
	require.NoError(t, err)
	require.True(t, set.IsDisabled(2))
	require.False(t, set.IsDisabled(0))

	err = set.HandleDigests([]types.TendermintConsensusDigest{
		scheduledChangeLog(testAuthorities(t, 4), 0),
	}, 2)
	require.NoError(t, err)

	changed, err := set.ApplyScheduledChanges(2)
	require.NoError(t, err)
	require.True(t, changed)

	// disabled indexes only last for the lifetime of the set
	require.False(t, set.IsDisabled(2))
}

func TestPauseAndResume(t *testing.T) {
	set := NewAuthoritySet(testAuthorities(t, 3), 0)

	err := set.HandleDigests([]types.TendermintConsensusDigest{
		{IsPause: true, AsPause: types.TendermintPause{Delay: 2}},
	}, 10)
	require.NoError(t, err)

	changed, err := set.ApplyScheduledChanges(11)
	require.NoError(t, err)
	require.False(t, changed)
	require.False(t, set.IsPaused())

	_, err = set.ApplyScheduledChanges(12)
	require.NoError(t, err)
	require.True(t, set.IsPaused())

	// a pause does not touch the authorities or the set id
	require.Equal(t, uint64(0), set.SetID())

	err = set.HandleDigests([]types.TendermintConsensusDigest{
		{IsResume: true, AsResume: types.TendermintResume{Delay: 1}},
	}, 13)
	require.NoError(t, err)

	_, err = set.ApplyScheduledChanges(14)
	require.NoError(t, err)
	require.False(t, set.IsPaused())
}

func TestEmptyAuthorityListRejected(t *testing.T) {
	set := NewAuthoritySet(testAuthorities(t, 3), 0)

	err := set.HandleDigests([]types.TendermintConsensusDigest{
		scheduledChangeLog(nil, 1),
	}, 1)
	require.ErrorIs(t, err, ErrNoNextAuthorities)
	require.Nil(t, set.PendingChange())
}
