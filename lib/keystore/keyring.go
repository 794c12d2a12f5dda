// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package keystore

import (
	"reflect"

	"github.com/huffmint/substrate-tendermint/lib/crypto"
	"github.com/huffmint/substrate-tendermint/lib/crypto/ed25519"
)

// private keys generated using `subkey inspect //Name`
var ed25519PrivateKeys = []string{
	"0xabf8e5bdbe30c65656c0a3cbd181ff8a56294a69dfedd27982aace4a76909115",
	"0x3b7b60af2abcd57ba401ab398f84f4ca54bd6b2140d2503fbcf3286535fe3ff1",
	"0x072c02fa1409dc37e03a4ed01703d4a9e6bba9c228a49a00366e9630a97cba7c",
	"0x771f47d3caf8a2ee40b0719e1c1ecbc01d73ada220cf08df12a00453ab703738",
	"0xbef5a3cd63dd36ab9792364536140e5a0cce6925969940c431934de056398556",
	"0x1441e38eb309b66e9286867a5cd05902b05413eb9723a685d4d77753d73d0a1d",
	"0x583b887078cbae4b6ac6fbee324c3d2c16f3a1f8bf18f0d234de3ac33baa4470",
	"0xb8f3de627932e28914f3bc4bc3d7d2fc95c1f95c7915343d79df68d8250de180",
	"0xfd9f15cac5ffd14ed08914c200b1744ab00bdddf45e86cd13ccf9585ffa0e3ce",
}

// Keyring represents a test keyring
type Keyring interface {
	Alice() crypto.Keypair
	Bob() crypto.Keypair
	Charlie() crypto.Keypair
	Dave() crypto.Keypair
	Eve() crypto.Keypair
	Ferdie() crypto.Keypair
	George() crypto.Keypair
	Heather() crypto.Keypair
	Ian() crypto.Keypair
}

// Ed25519Keyring represents a test ed25519 keyring
type Ed25519Keyring struct {
	KeyAlice   *ed25519.Keypair
	KeyBob     *ed25519.Keypair
	KeyCharlie *ed25519.Keypair
	KeyDave    *ed25519.Keypair
	KeyEve     *ed25519.Keypair
	KeyFerdie  *ed25519.Keypair
	KeyGeorge  *ed25519.Keypair
	KeyHeather *ed25519.Keypair
	KeyIan     *ed25519.Keypair

	Keys []*ed25519.Keypair
}

// NewEd25519Keyring returns an initialised ed25519 Keyring
func NewEd25519Keyring() (*Ed25519Keyring, error) {
	kr := new(Ed25519Keyring)
	v := reflect.ValueOf(kr).Elem()
	kr.Keys = make([]*ed25519.Keypair, v.NumField()-1)

	for i := 0; i < v.NumField()-1; i++ {
		who := v.Field(i)
		kp, err := ed25519.NewKeypairFromPrivateKeyString(ed25519PrivateKeys[i])
		if err != nil {
			return nil, err
		}
		who.Set(reflect.ValueOf(kp))

		kr.Keys[i] = kp
	}

	return kr, nil
}

// Alice returns Alice's key
func (kr *Ed25519Keyring) Alice() crypto.Keypair {
	return kr.KeyAlice
}

// Bob returns Bob's key
func (kr *Ed25519Keyring) Bob() crypto.Keypair {
	return kr.KeyBob
}

// Charlie returns Charlie's key
func (kr *Ed25519Keyring) Charlie() crypto.Keypair {
	return kr.KeyCharlie
}

// Dave returns Dave's key
func (kr *Ed25519Keyring) Dave() crypto.Keypair {
	return kr.KeyDave
}

// Eve returns Eve's key
func (kr *Ed25519Keyring) Eve() crypto.Keypair {
	return kr.KeyEve
}

// Ferdie returns Ferdie's key
func (kr *Ed25519Keyring) Ferdie() crypto.Keypair {
	return kr.KeyFerdie
}

// George returns George's key
func (kr *Ed25519Keyring) George() crypto.Keypair {
	return kr.KeyGeorge
}

// Heather returns Heather's key
func (kr *Ed25519Keyring) Heather() crypto.Keypair {
	return kr.KeyHeather
}

// Ian returns Ian's key
func (kr *Ed25519Keyring) Ian() crypto.Keypair {
	return kr.KeyIan
}
