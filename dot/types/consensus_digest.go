// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// consensus log codec indexes, shared with the runtime
const (
	scheduledChangeIndex = byte(1)
	forcedChangeIndex    = byte(2)
	onDisabledIndex      = byte(3)
	pauseIndex           = byte(4)
	resumeIndex          = byte(5)
)

// ErrUnknownConsensusLog is returned when decoding a consensus digest whose
// codec index is not a known tendermint consensus log. Digest scanning skips
// these entries, they belong to a newer runtime.
var ErrUnknownConsensusLog = errors.New("unknown tendermint consensus log type")

// TendermintScheduledChange represents a scheduled authority set change.
//
// The new authority set activates after Delay further finalised blocks.
type TendermintScheduledChange struct {
	NextAuthorities AuthorityList
	Delay           uint32
}

func (s TendermintScheduledChange) String() string {
	return fmt.Sprintf("TendermintScheduledChange{NextAuthorities=%v, Delay=%d}", s.NextAuthorities, s.Delay)
}

// TendermintForcedChange represents a forced authority set change.
//
// Forced changes activate after Delay further imported blocks counted from
// BestFinalizedBlock, while scheduled changes count finalised blocks.
type TendermintForcedChange struct {
	// BestFinalizedBlock is specified by the governance mechanism, defines
	// the starting block at which Delay is applied.
	BestFinalizedBlock uint32
	NextAuthorities    AuthorityList
	Delay              uint32
}

func (f TendermintForcedChange) String() string {
	return fmt.Sprintf("TendermintForcedChange{BestFinalizedBlock=%d, NextAuthorities=%v, Delay=%d}",
		f.BestFinalizedBlock, f.NextAuthorities, f.Delay)
}

// TendermintOnDisabled represents an authority being disabled until the next change
type TendermintOnDisabled struct {
	ID uint64
}

func (d TendermintOnDisabled) String() string {
	return fmt.Sprintf("TendermintOnDisabled{ID=%d}", d.ID)
}

// TendermintPause represents an authority set pause after the given delay of finalised blocks
type TendermintPause struct {
	Delay uint32
}

func (p TendermintPause) String() string {
	return fmt.Sprintf("TendermintPause{Delay=%d}", p.Delay)
}

// TendermintResume represents an authority set resume after the given delay of finalised blocks
type TendermintResume struct {
	Delay uint32
}

func (r TendermintResume) String() string {
	return fmt.Sprintf("TendermintResume{Delay=%d}", r.Delay)
}

// TendermintConsensusDigest is the tagged union of tendermint consensus logs
// carried in a block's ConsensusDigest entries.
type TendermintConsensusDigest struct {
	IsScheduledChange bool
	AsScheduledChange TendermintScheduledChange

	IsForcedChange bool
	AsForcedChange TendermintForcedChange

	IsOnDisabled bool
	AsOnDisabled TendermintOnDisabled

	IsPause bool
	AsPause TendermintPause

	IsResume bool
	AsResume TendermintResume
}

// Encode implements scale.Encodeable
func (d TendermintConsensusDigest) Encode(encoder scale.Encoder) error {
	switch {
	case d.IsScheduledChange:
		if err := encoder.PushByte(scheduledChangeIndex); err != nil {
			return err
		}
		return encoder.Encode(d.AsScheduledChange)
	case d.IsForcedChange:
		if err := encoder.PushByte(forcedChangeIndex); err != nil {
			return err
		}
		return encoder.Encode(d.AsForcedChange)
	case d.IsOnDisabled:
		if err := encoder.PushByte(onDisabledIndex); err != nil {
			return err
		}
		return encoder.Encode(d.AsOnDisabled)
	case d.IsPause:
		if err := encoder.PushByte(pauseIndex); err != nil {
			return err
		}
		return encoder.Encode(d.AsPause)
	case d.IsResume:
		if err := encoder.PushByte(resumeIndex); err != nil {
			return err
		}
		return encoder.Encode(d.AsResume)
	}
	return fmt.Errorf("no consensus log variant set")
}

// Decode implements scale.Decodeable
func (d *TendermintConsensusDigest) Decode(decoder scale.Decoder) error {
	index, err := decoder.ReadOneByte()
	if err != nil {
		return err
	}

	switch index {
	case scheduledChangeIndex:
		d.IsScheduledChange = true
		return decoder.Decode(&d.AsScheduledChange)
	case forcedChangeIndex:
		d.IsForcedChange = true
		return decoder.Decode(&d.AsForcedChange)
	case onDisabledIndex:
		d.IsOnDisabled = true
		return decoder.Decode(&d.AsOnDisabled)
	case pauseIndex:
		d.IsPause = true
		return decoder.Decode(&d.AsPause)
	case resumeIndex:
		d.IsResume = true
		return decoder.Decode(&d.AsResume)
	}
	return fmt.Errorf("%w: %d", ErrUnknownConsensusLog, index)
}

// String returns the current consensus log as a string
func (d TendermintConsensusDigest) String() string {
	switch {
	case d.IsScheduledChange:
		return d.AsScheduledChange.String()
	case d.IsForcedChange:
		return d.AsForcedChange.String()
	case d.IsOnDisabled:
		return d.AsOnDisabled.String()
	case d.IsPause:
		return d.AsPause.String()
	case d.IsResume:
		return d.AsResume.String()
	}
	return "TendermintConsensusDigest()"
}

// DecodeTendermintConsensusDigest decodes the data of a ConsensusDigest entry
// tagged with the tendermint engine ID
func DecodeTendermintConsensusDigest(data []byte) (TendermintConsensusDigest, error) {
	var digest TendermintConsensusDigest
	decoder := scale.NewDecoder(bytes.NewReader(data))
	if err := digest.Decode(*decoder); err != nil {
		return TendermintConsensusDigest{}, err
	}
	return digest, nil
}
