// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"bytes"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// ConsensusEngineID is a 4-character identifier of the consensus engine that produced the digest.
type ConsensusEngineID [4]byte

// NewConsensusEngineID casts a byte array to ConsensusEngineID
// if the input is longer than 4 bytes, it takes the first 4 bytes
func NewConsensusEngineID(in []byte) (res ConsensusEngineID) {
	res = [4]byte{}
	copy(res[:], in)
	return res
}

// ToBytes turns ConsensusEngineID to a byte array
func (h ConsensusEngineID) ToBytes() []byte {
	b := [4]byte(h)
	return b[:]
}

// TendermintEngineID is the hard-coded tendermint finality gadget ID
var TendermintEngineID = ConsensusEngineID{'T', 'M', 'N', 'T'}

// PreRuntimeDigestType is the byte representation of PreRuntimeDigest
const PreRuntimeDigestType = byte(6)

// ConsensusDigestType is the byte representation of ConsensusDigest
const ConsensusDigestType = byte(4)

// SealDigestType is the byte representation of SealDigest
const SealDigestType = byte(5)

// DigestItem is a block digest entry: messages multiplexed between the runtime
// and the consensus engines, keyed by a type byte and an engine ID.
type DigestItem struct {
	IsPreRuntime bool
	AsPreRuntime PreRuntimeDigest

	IsConsensus bool
	AsConsensus ConsensusDigest

	IsSeal bool
	AsSeal SealDigest
}

// Encode implements scale.Encodeable
func (d DigestItem) Encode(encoder scale.Encoder) error {
	switch {
	case d.IsPreRuntime:
		if err := encoder.PushByte(PreRuntimeDigestType); err != nil {
			return err
		}
		return encoder.Encode(d.AsPreRuntime)
	case d.IsConsensus:
		if err := encoder.PushByte(ConsensusDigestType); err != nil {
			return err
		}
		return encoder.Encode(d.AsConsensus)
	case d.IsSeal:
		if err := encoder.PushByte(SealDigestType); err != nil {
			return err
		}
		return encoder.Encode(d.AsSeal)
	}
	return fmt.Errorf("no digest item variant set")
}

// Decode implements scale.Decodeable
func (d *DigestItem) Decode(decoder scale.Decoder) error {
	typ, err := decoder.ReadOneByte()
	if err != nil {
		return err
	}

	switch typ {
	case PreRuntimeDigestType:
		d.IsPreRuntime = true
		return decoder.Decode(&d.AsPreRuntime)
	case ConsensusDigestType:
		d.IsConsensus = true
		return decoder.Decode(&d.AsConsensus)
	case SealDigestType:
		d.IsSeal = true
		return decoder.Decode(&d.AsSeal)
	}
	return fmt.Errorf("invalid digest item type: %d", typ)
}

// String returns the digest item as a string
func (d DigestItem) String() string {
	switch {
	case d.IsPreRuntime:
		return d.AsPreRuntime.String()
	case d.IsConsensus:
		return d.AsConsensus.String()
	case d.IsSeal:
		return d.AsSeal.String()
	}
	return "DigestItem()"
}

// Digest represents the block digest. It consists of digest items.
type Digest []DigestItem

// NewDigest returns a new Digest from the given DigestItems
func NewDigest(items ...DigestItem) Digest {
	return items
}

// Encode returns the SCALE encoded digest
func (d Digest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	encoder := scale.NewEncoder(&buf)
	if err := encoder.Encode([]DigestItem(d)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeDigest decodes a SCALE encoded digest
func DecodeDigest(in []byte) (Digest, error) {
	decoder := scale.NewDecoder(bytes.NewReader(in))
	var items []DigestItem
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("decoding digest items: %w", err)
	}
	return items, nil
}

// PreRuntimeDigest contains messages from the consensus engines to the runtime.
type PreRuntimeDigest struct {
	ConsensusEngineID ConsensusEngineID
	Data              []byte
}

// String returns the digest as a string
func (d PreRuntimeDigest) String() string {
	return fmt.Sprintf("PreRuntimeDigest ConsensusEngineID=%s Data=0x%x", d.ConsensusEngineID.ToBytes(), d.Data)
}

// ConsensusDigest contains messages from the runtime to the consensus engines.
type ConsensusDigest struct {
	ConsensusEngineID ConsensusEngineID
	Data              []byte
}

// String returns the digest as a string
func (d ConsensusDigest) String() string {
	return fmt.Sprintf("ConsensusDigest ConsensusEngineID=%s Data=0x%x", d.ConsensusEngineID.ToBytes(), d.Data)
}

// SealDigest contains the seal or signature of the block producer.
type SealDigest struct {
	ConsensusEngineID ConsensusEngineID
	Data              []byte
}

// String returns the digest as a string
func (d SealDigest) String() string {
	return fmt.Sprintf("SealDigest ConsensusEngineID=%s Data=0x%x", d.ConsensusEngineID.ToBytes(), d.Data)
}

// NewTendermintConsensusDigestItem wraps the SCALE encoding of a tendermint
// consensus log in a ConsensusDigest digest item
func NewTendermintConsensusDigestItem(log TendermintConsensusDigest) (DigestItem, error) {
	var buf bytes.Buffer
	encoder := scale.NewEncoder(&buf)
	if err := log.Encode(*encoder); err != nil {
		return DigestItem{}, err
	}

	return DigestItem{
		IsConsensus: true,
		AsConsensus: ConsensusDigest{
			ConsensusEngineID: TendermintEngineID,
			Data:              buf.Bytes(),
		},
	}, nil
}
