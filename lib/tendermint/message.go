// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package tendermint

import (
	"bytes"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"

	"github.com/huffmint/substrate-tendermint/lib/common"
	"github.com/huffmint/substrate-tendermint/lib/crypto/ed25519"
	"github.com/huffmint/substrate-tendermint/lib/keystore"
)

// Subround is the subround within a voting round
type Subround byte

const (
	// Prevote is the first subround
	Prevote Subround = iota
	// Precommit is the second subround
	Precommit
	// PrimaryProposal is the proposal broadcast by the round's primary
	PrimaryProposal
)

func (s Subround) String() string {
	switch s {
	case Prevote:
		return "prevote"
	case Precommit:
		return "precommit"
	case PrimaryProposal:
		return "primaryProposal"
	}
	return "unknown"
}

// Vote represents a vote for a block with the given hash and number
type Vote struct {
	Hash   common.Hash
	Number uint32
}

// NewVote returns a new Vote given a block hash and number
func NewVote(hash common.Hash, number uint32) *Vote {
	return &Vote{
		Hash:   hash,
		Number: number,
	}
}

func (v Vote) String() string {
	return fmt.Sprintf("hash=%s number=%d", v.Hash, v.Number)
}

// Message is a round message: a vote qualified by its subround stage. Its
// signature never covers these fields alone, only the localized payload
// derived from them.
type Message struct {
	Stage Subround
	Vote  Vote
}

// SignedMessage is a Message with the signature and the id of the authority
// that produced it
type SignedMessage struct {
	Message   Message
	Signature ed25519.SignatureBytes
	ID        ed25519.PublicKeyBytes
}

func (m SignedMessage) String() string {
	return fmt.Sprintf("stage=%s %s signer=%s", m.Message.Stage, m.Message.Vote, m.ID)
}

// LocalizedPayload returns the SCALE encoding of the message localized to the
// given round and set id. This is the exact byte sequence that is signed, so
// a signature can never be replayed in another round or under another
// authority set.
func LocalizedPayload(round, setID uint64, message Message) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := LocalizedPayloadWithBuffer(round, setID, message, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LocalizedPayloadWithBuffer encodes the message localized to the given round
// and set id using the given buffer. The buffer is reset and the payload
// always starts at its first byte.
func LocalizedPayloadWithBuffer(round, setID uint64, message Message, buf *bytes.Buffer) error {
	buf.Reset()
	encoder := scale.NewEncoder(buf)

	if err := encoder.Encode(message); err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	if err := encoder.Encode(round); err != nil {
		return fmt.Errorf("encoding round: %w", err)
	}
	if err := encoder.Encode(setID); err != nil {
		return fmt.Errorf("encoding set id: %w", err)
	}
	return nil
}

// SignMessage localizes the message to the given round and set id and signs
// the payload with the keypair the keystore holds for the given authority.
// It returns ErrSigningKeyNotFound if the keystore has no usable key.
func SignMessage(ks keystore.Keystore, message Message, public *ed25519.PublicKey,
	round, setID uint64) (*SignedMessage, error) {
	kp := ks.GetKeypair(public)
	if kp == nil {
		return nil, fmt.Errorf("%w: %s", ErrSigningKeyNotFound, public.Hex())
	}

	payload, err := LocalizedPayload(round, setID, message)
	if err != nil {
		return nil, fmt.Errorf("creating localized payload: %w", err)
	}

	sig, err := kp.Sign(payload)
	if err != nil {
		return nil, fmt.Errorf("signing localized payload: %w", err)
	}

	if len(sig) != ed25519.SignatureLength {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidSignatureLength, len(sig))
	}

	return &SignedMessage{
		Message:   message,
		Signature: ed25519.NewSignatureBytes(sig),
		ID:        public.AsBytes(),
	}, nil
}

// CheckMessageSignature verifies the signature over the message localized to
// the given round and set id against the claimed authority id. A failed
// verification is not an error, it means the vote must be rejected.
func CheckMessageSignature(message Message, id *ed25519.PublicKey,
	signature ed25519.SignatureBytes, round, setID uint64) bool {
	return CheckMessageSignatureWithBuffer(message, id, signature, round, setID, &bytes.Buffer{})
}

// CheckMessageSignatureWithBuffer is CheckMessageSignature using the given
// buffer for the payload encoding. The buffer's original content is cleared.
func CheckMessageSignatureWithBuffer(message Message, id *ed25519.PublicKey,
	signature ed25519.SignatureBytes, round, setID uint64, buf *bytes.Buffer) bool {
	err := LocalizedPayloadWithBuffer(round, setID, message, buf)
	if err != nil {
		logger.Debug("failed to encode localized payload", "error", err)
		return false
	}

	valid, err := id.Verify(buf.Bytes(), signature[:])
	if err != nil || !valid {
		logger.Debug("bad signature on message", "from", id.Hex(), "round", round, "set id", setID)
		return false
	}

	return true
}
