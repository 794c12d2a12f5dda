// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package tendermint

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/huffmint/substrate-tendermint/lib/common"
	"github.com/huffmint/substrate-tendermint/lib/crypto"
	"github.com/huffmint/substrate-tendermint/lib/crypto/ed25519"
	"github.com/huffmint/substrate-tendermint/lib/keystore"
)

func testMessage(t *testing.T) Message {
	t.Helper()
	hash, err := common.Blake2bHash([]byte("block"))
	require.NoError(t, err)
	return Message{
		Stage: Precommit,
		Vote:  *NewVote(hash, 77),
	}
}

func newTestKeystore(t *testing.T, kps ...*ed25519.Keypair) keystore.Keystore {
	t.Helper()
	ks := keystore.NewBasicKeystore(keystore.TmntName, crypto.Ed25519Type)
	for _, kp := range kps {
		err := ks.Insert(kp)
		require.NoError(t, err)
	}
	return ks
}

func TestSignAndCheckMessageSignature(t *testing.T) {
	alice := kr.KeyAlice
	ks := newTestKeystore(t, alice)

	msg := testMessage(t)
	pub := alice.Public().(*ed25519.PublicKey)

	signed, err := SignMessage(ks, msg, pub, 3, 1)
	require.NoError(t, err)
	require.Equal(t, pub.AsBytes(), signed.ID)
	require.Equal(t, msg, signed.Message)

	ok := CheckMessageSignature(msg, pub, signed.Signature, 3, 1)
	require.True(t, ok)
}

func TestCheckMessageSignatureMutations(t *testing.T) {
	alice := kr.KeyAlice
	ks := newTestKeystore(t, alice)

	msg := testMessage(t)
	pub := alice.Public().(*ed25519.PublicKey)

	const round uint64 = 3
	const setID uint64 = 1

	signed, err := SignMessage(ks, msg, pub, round, setID)
	require.NoError(t, err)

	t.Run("wrong round", func(t *testing.T) {
		require.False(t, CheckMessageSignature(msg, pub, signed.Signature, round+1, setID))
	})

	t.Run("wrong set id", func(t *testing.T) {
		require.False(t, CheckMessageSignature(msg, pub, signed.Signature, round, setID+1))
	})

	t.Run("tampered message", func(t *testing.T) {
		tampered := msg
		tampered.Vote.Number++
		require.False(t, CheckMessageSignature(tampered, pub, signed.Signature, round, setID))
	})

	t.Run("tampered stage", func(t *testing.T) {
		tampered := msg
		tampered.Stage = Prevote
		require.False(t, CheckMessageSignature(tampered, pub, signed.Signature, round, setID))
	})

	t.Run("tampered signature", func(t *testing.T) {
		badSig := signed.Signature
		badSig[0] ^= 0xff
		require.False(t, CheckMessageSignature(msg, pub, badSig, round, setID))
	})

	t.Run("wrong signer", func(t *testing.T) {
		bob := kr.KeyBob.Public().(*ed25519.PublicKey)
		require.False(t, CheckMessageSignature(msg, bob, signed.Signature, round, setID))
	})
}

func TestSignMessageKeyNotInKeystore(t *testing.T) {
	ks := newTestKeystore(t, kr.KeyAlice)

	bob := kr.KeyBob.Public().(*ed25519.PublicKey)
	_, err := SignMessage(ks, testMessage(t), bob, 0, 0)
	require.ErrorIs(t, err, ErrSigningKeyNotFound)
}

func TestLocalizedPayloadWithBufferResetsBuffer(t *testing.T) {
	msg := testMessage(t)

	expected, err := LocalizedPayload(9, 2, msg)
	require.NoError(t, err)

	buf := bytes.NewBufferString("stale contents from a previous call")
	err = LocalizedPayloadWithBuffer(9, 2, msg, buf)
	require.NoError(t, err)
	require.Equal(t, expected, buf.Bytes())
}

func TestCheckMessageSignatureWithBufferReuse(t *testing.T) {
	alice := kr.KeyAlice
	ks := newTestKeystore(t, alice)

	msg := testMessage(t)
	pub := alice.Public().(*ed25519.PublicKey)

	signed, err := SignMessage(ks, msg, pub, 5, 2)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	for i := 0; i < 3; i++ {
		require.True(t, CheckMessageSignatureWithBuffer(msg, pub, signed.Signature, 5, 2, buf))
	}
	require.False(t, CheckMessageSignatureWithBuffer(msg, pub, signed.Signature, 6, 2, buf))
}

func TestLocalizedPayloadLayout(t *testing.T) {
	msg := testMessage(t)

	payload, err := LocalizedPayload(3, 1, msg)
	require.NoError(t, err)

	// stage byte + 32 byte hash + 4 byte number + 8 byte round + 8 byte set id
	require.Len(t, payload, 1+32+4+8+8)
	require.Equal(t, byte(Precommit), payload[0])
	require.Equal(t, msg.Vote.Hash.ToBytes(), payload[1:33])

	// round and set id are fixed-width little endian, so the same message in
	// round 3 of set 1 can never collide with any other round or set
	require.Equal(t, []byte{3, 0, 0, 0, 0, 0, 0, 0}, payload[37:45])
	require.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, payload[45:])
}
