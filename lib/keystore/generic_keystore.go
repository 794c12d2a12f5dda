// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package keystore

import (
	"errors"
	"sync"

	"github.com/huffmint/substrate-tendermint/lib/common"
	"github.com/huffmint/substrate-tendermint/lib/crypto"
)

// ErrKeyTypeNotSupported is returned when a keypair's type does not
// match the keystore's type
var ErrKeyTypeNotSupported = errors.New("given key type is not supported by this keystore")

// GenericKeystore holds keys of any type
type GenericKeystore struct {
	name Name
	keys map[common.Address]KeyPair
	lock sync.RWMutex
}

// NewGenericKeystore creates a new GenericKeystore
func NewGenericKeystore(name Name) *GenericKeystore {
	return &GenericKeystore{
		name: name,
		keys: make(map[common.Address]KeyPair),
	}
}

// Name returns the keystore's name
func (ks *GenericKeystore) Name() Name {
	return ks.name
}

// Type returns UnknownType
func (ks *GenericKeystore) Type() crypto.KeyType {
	return crypto.UnknownType
}

// Size returns the number of keys in the keystore
func (ks *GenericKeystore) Size() int {
	return len(ks.Keypairs())
}

// Insert adds a keypair to the keystore
func (ks *GenericKeystore) Insert(kp KeyPair) error {
	ks.lock.Lock()
	defer ks.lock.Unlock()

	pub := kp.Public()
	addr := crypto.PublicKeyToAddress(pub)
	ks.keys[addr] = kp
	return nil
}

// GetKeypairFromAddress returns a keypair corresponding to the given address, or nil if it doesn't exist
func (ks *GenericKeystore) GetKeypairFromAddress(pub common.Address) KeyPair {
	ks.lock.RLock()
	defer ks.lock.RUnlock()
	return ks.keys[pub]
}

// GetKeypair returns a keypair corresponding to the given public key, or nil if it doesn't exist
func (ks *GenericKeystore) GetKeypair(pub crypto.PublicKey) KeyPair {
	ks.lock.RLock()
	defer ks.lock.RUnlock()

	for _, key := range ks.keys {
		if key.Public().Hex() == pub.Hex() {
			return key
		}
	}
	return nil
}

// PublicKeys returns all public keys in the keystore
func (ks *GenericKeystore) PublicKeys() []crypto.PublicKey {
	srkeys := []crypto.PublicKey{}
	if ks.keys == nil {
		return srkeys
	}

	ks.lock.RLock()
	defer ks.lock.RUnlock()

	for _, key := range ks.keys {
		srkeys = append(srkeys, key.Public())
	}
	return srkeys
}

// Keypairs returns all keypairs in the keystore
func (ks *GenericKeystore) Keypairs() []KeyPair {
	srkeys := []KeyPair{}
	if ks.keys == nil {
		return srkeys
	}

	ks.lock.RLock()
	defer ks.lock.RUnlock()

	for _, key := range ks.keys {
		srkeys = append(srkeys, key)
	}
	return srkeys
}
