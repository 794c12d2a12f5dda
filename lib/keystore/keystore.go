// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package keystore

import (
	"errors"

	"github.com/huffmint/substrate-tendermint/lib/common"
	"github.com/huffmint/substrate-tendermint/lib/crypto"
)

var (
	ErrInvalidKeystoreName = errors.New("invalid keystore name")
)

// Name represents a defined keystore name
type Name string

var (
	// TmntName is the keystore name the finality gadget signs votes with
	TmntName Name = "tmnt"
	// DumyName is a keystore name useful for tests
	DumyName Name = "dumy"
)

// Keystore provides key management functionality
type Keystore interface {
	Name() Name
	Typer
	Inserter
	AddressKeypairGetter
	Keypairs() []KeyPair
	GetKeypair(pub crypto.PublicKey) KeyPair
	PublicKeys() []crypto.PublicKey
	Size() int
}

// KeyPair is a key pair to sign messages and from which
// the public key and key type can be obtained.
type KeyPair interface {
	Typer
	Signer
	Public() crypto.PublicKey
}

// Signer signs messages.
type Signer interface {
	Sign(msg []byte) ([]byte, error)
}

// Typer returns the key type.
type Typer interface {
	Type() crypto.KeyType
}

// Inserter inserts a keypair.
type Inserter interface {
	Insert(kp KeyPair) error
}

// AddressKeypairGetter gets a keypair from an address.
type AddressKeypairGetter interface {
	GetKeypairFromAddress(pub common.Address) KeyPair
}

// GlobalKeystore defines the various keystores used by the node
type GlobalKeystore struct {
	Tmnt Keystore
	Dumy Keystore
}

// NewGlobalKeystore returns a new GlobalKeystore
func NewGlobalKeystore() *GlobalKeystore {
	return &GlobalKeystore{
		Tmnt: NewBasicKeystore(TmntName, crypto.Ed25519Type),
		Dumy: NewGenericKeystore(DumyName),
	}
}

// GetKeystore returns a keystore given its name
func (k *GlobalKeystore) GetKeystore(name []byte) (Keystore, error) {
	nameStr := Name(name)
	switch nameStr {
	case TmntName:
		return k.Tmnt, nil
	case DumyName:
		return k.Dumy, nil
	default:
		return nil, ErrInvalidKeystoreName
	}
}
