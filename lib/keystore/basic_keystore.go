// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package keystore

import (
	"sync"

	"github.com/huffmint/substrate-tendermint/lib/common"
	"github.com/huffmint/substrate-tendermint/lib/crypto"
)

// BasicKeystore holds keys of a certain type
type BasicKeystore struct {
	name Name
	typ  crypto.KeyType
	keys map[common.Address]KeyPair
	lock sync.RWMutex
}

// NewBasicKeystore creates a new BasicKeystore with the given key type
func NewBasicKeystore(name Name, typ crypto.KeyType) *BasicKeystore {
	return &BasicKeystore{
		name: name,
		typ:  typ,
		keys: make(map[common.Address]KeyPair),
	}
}

// Name returns the keystore's name
func (ks *BasicKeystore) Name() Name {
	return ks.name
}

// Type returns the keystore's key type
func (ks *BasicKeystore) Type() crypto.KeyType {
	return ks.typ
}

// Size returns the number of keys in the keystore
func (ks *BasicKeystore) Size() int {
	return len(ks.Keypairs())
}

// Insert adds a keypair to the keystore
func (ks *BasicKeystore) Insert(kp KeyPair) error {
	if kp.Type() != ks.typ {
		return ErrKeyTypeNotSupported
	}

	ks.lock.Lock()
	defer ks.lock.Unlock()

	pub := kp.Public()
	addr := crypto.PublicKeyToAddress(pub)
	ks.keys[addr] = kp
	return nil
}

// GetKeypairFromAddress returns a keypair corresponding to the given address, or nil if it doesn't exist
func (ks *BasicKeystore) GetKeypairFromAddress(pub common.Address) KeyPair {
	ks.lock.RLock()
	defer ks.lock.RUnlock()
	return ks.keys[pub]
}

// GetKeypair returns a keypair corresponding to the given public key, or nil if it doesn't exist
func (ks *BasicKeystore) GetKeypair(pub crypto.PublicKey) KeyPair {
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
func (ks *BasicKeystore) PublicKeys() []crypto.PublicKey {
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
func (ks *BasicKeystore) Keypairs() []KeyPair {
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
